package models

import (
	"time"

	"github.com/lib/pq"

	"tradie-match-server/calendar"
)

// Role of a profile
type Role string

const (
	RoleTradie  Role = "tradie"
	RoleAdmirer Role = "admirer"
	RoleAdmin   Role = "admin"
)

type VerificationStatus string

const (
	VerificationNone          VerificationStatus = "none"
	VerificationPendingReview VerificationStatus = "pending_review"
)

// Trades a tradesperson can list under.
var Trades = []string{
	"Electrician",
	"Plumber",
	"Carpenter",
	"Bricklayer",
	"Landscaper",
	"Roofer",
	"Painter & Decorator",
	"Labourer",
	"Other",
}

// IsKnownTrade reports whether trade is one of Trades.
func IsKnownTrade(trade string) bool {
	for _, t := range Trades {
		if t == trade {
			return true
		}
	}
	return false
}

const (
	DeletedUserName = "[Deleted User]"
	DeletedUserBio  = "[Account Deleted]"
	DefaultRating   = 5.0
)

// Profile is the public face of an account. Its ID equals the account ID.
type Profile struct {
	ID   string `json:"id" gorm:"type:uuid;primaryKey"`
	Role Role   `json:"role" gorm:"size:20;not null;index"`

	Name     string `json:"name" gorm:"size:100;not null"`
	Age      int    `json:"age"`
	Location string `json:"location" gorm:"size:255"`

	Latitude          *float64   `json:"latitude,omitempty"`
	Longitude         *float64   `json:"longitude,omitempty"`
	LocationAccuracy  *float64   `json:"location_accuracy,omitempty"`
	LocationUpdatedAt *time.Time `json:"location_updated_at,omitempty"`

	Trade      string  `json:"trade,omitempty" gorm:"size:50;index"`
	HourlyRate float64 `json:"hourly_rate,omitempty"`
	Bio        string  `json:"bio" gorm:"type:text"`

	PhotoURL   string         `json:"photo_url,omitempty"`
	Photos     pq.StringArray `json:"photos" gorm:"type:text[]"`
	IDPhotoURL string         `json:"-"`

	Verified           bool               `json:"verified" gorm:"default:false"`
	VerificationStatus VerificationStatus `json:"verification_status" gorm:"size:20;default:none"`

	Rating      float64 `json:"rating" gorm:"default:5"`
	ReviewCount int     `json:"review_count" gorm:"default:0"`

	Incognito         bool `json:"incognito"`
	HideDistance      bool `json:"hide_distance"`
	JobOnlyVisibility bool `json:"job_only_visibility"`
	BlurPhotos        bool `json:"blur_photos"`

	Calendar calendar.Calendar `json:"unavailability,omitempty" gorm:"type:jsonb"`

	Deleted   bool       `json:"deleted" gorm:"default:false;index"`
	DeletedOn *time.Time `json:"deleted_on,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Profile model
func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) IsTradie() bool {
	return p.Role == RoleTradie
}

// Public returns a copy without the coordinates, for anyone other than the
// owner.
func (p *Profile) Public() *Profile {
	cp := *p
	cp.Latitude = nil
	cp.Longitude = nil
	cp.LocationAccuracy = nil
	cp.LocationUpdatedAt = nil
	return &cp
}

// Anonymize strips personal data in place; the row itself is kept so jobs
// and reviews still resolve.
func (p *Profile) Anonymize(now time.Time) {
	p.Name = DeletedUserName
	p.Bio = DeletedUserBio
	p.PhotoURL = ""
	p.Photos = nil
	p.IDPhotoURL = ""
	p.Location = ""
	p.Latitude = nil
	p.Longitude = nil
	p.LocationAccuracy = nil
	p.LocationUpdatedAt = nil
	p.Calendar = nil
	p.Incognito = true
	p.Deleted = true
	p.DeletedOn = &now
}
