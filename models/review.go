package models

import "time"

// ReviewerRole is the side of the job the reviewer was on
type ReviewerRole string

const (
	ReviewerClient ReviewerRole = "client"
	ReviewerTradie ReviewerRole = "tradie"
)

// Review is written by one party about the other once a job is completed.
type Review struct {
	ID           string       `json:"id" gorm:"type:uuid;primaryKey"`
	JobID        string       `json:"job_id" gorm:"type:uuid;not null;uniqueIndex:idx_review_job_reviewer"`
	ReviewedID   string       `json:"reviewed_id" gorm:"type:uuid;not null;index"`
	ReviewedName string       `json:"reviewed_name" gorm:"size:100"`
	ReviewerID   string       `json:"reviewer_id" gorm:"type:uuid;not null;uniqueIndex:idx_review_job_reviewer"`
	ReviewerName string       `json:"reviewer_name" gorm:"size:100"`
	ReviewerRole ReviewerRole `json:"reviewer_role" gorm:"size:10;not null"`
	Rating       int          `json:"rating" gorm:"type:int;not null;check:rating >= 1 AND rating <= 5"`
	Comment      string       `json:"comment" gorm:"type:text"`
	CreatedAt    time.Time    `json:"created_at"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "job_reviews"
}

// RatingSummary is the aggregate shown on a tradesperson's profile.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}
