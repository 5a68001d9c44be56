package models

import (
	"time"
)

type Activity struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	LocationCity string    `gorm:"size:100;not null" json:"location_city"`
	StartTime    time.Time `gorm:"not null;index" json:"start_time"`
	EndTime      time.Time `gorm:"not null" json:"end_time"`
	ProposerID   uint      `gorm:"not null;index" json:"proposer_id"`
	Proposer     User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"proposer"`
	CategoryID   *uint     `gorm:"index" json:"category_id"` // nullable, cleared when the category is deleted
	Category     *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category"`
	Attendees    []User    `gorm:"many2many:activity_attendees;" json:"attendees"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Filled at query time, not a column
	AttendeeCount int `gorm:"-" json:"attendee_count"`
}

// HasAttendee reports whether the given user is in the loaded attendee set.
func (a *Activity) HasAttendee(userID uint) bool {
	for _, u := range a.Attendees {
		if u.ID == userID {
			return true
		}
	}
	return false
}
