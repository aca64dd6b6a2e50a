package models

import "time"

// Meal records one meal service: how many portions of which service were
// served on a given day.
type Meal struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	ServedOn time.Time `json:"served_on" gorm:"not null;index"`
	Service  string    `json:"service" gorm:"size:32;not null"` // breakfast, lunch, dinner
	Portions int       `json:"portions" gorm:"not null"`
	Notes    string    `json:"notes,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
}
