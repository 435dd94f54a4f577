package models

import (
	"time"

	"gorm.io/datatypes"
)

type ReportStatus string

const (
	ReportStatusOpen     ReportStatus = "open"
	ReportStatusResolved ReportStatus = "resolved"
)

// Report flags a user, or disputes an archived job when JobID is set.
type Report struct {
	ID         string            `json:"id" gorm:"type:uuid;primaryKey"`
	ReporterID string            `json:"reporter_id" gorm:"type:uuid;not null;index"`
	ReportedID string            `json:"reported_id" gorm:"type:uuid;index"`
	JobID      *string           `json:"job_id,omitempty" gorm:"type:uuid;index"`
	InvoiceID  string            `json:"invoice_id,omitempty" gorm:"size:40"`
	Reason     string            `json:"reason" gorm:"size:100;not null"`
	Details    datatypes.JSONMap `json:"details,omitempty"`
	Status     ReportStatus      `json:"status" gorm:"size:20;default:open"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// TableName specifies the table name for the Report model
func (Report) TableName() string {
	return "reports"
}
