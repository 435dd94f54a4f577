package models

import "time"

// JobAdvert is an open posting by a client, visible to tradespeople of the
// matching trade until one of them accepts it.
type JobAdvert struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	ClientID    string    `json:"client_id" gorm:"type:uuid;not null;index"`
	ClientName  string    `json:"client_name" gorm:"size:100"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Budget      string    `json:"budget" gorm:"size:100"`
	Trade       string    `json:"trade" gorm:"size:50;not null;index"`
	Location    string    `json:"location" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the JobAdvert model
func (JobAdvert) TableName() string {
	return "job_adverts"
}

// HiddenAdvert records a tradesperson dismissing an advert from their board.
type HiddenAdvert struct {
	TradieID  string    `json:"tradie_id" gorm:"type:uuid;primaryKey"`
	AdvertID  string    `json:"advert_id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the HiddenAdvert model
func (HiddenAdvert) TableName() string {
	return "hidden_jobs"
}
