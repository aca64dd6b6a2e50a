package models

import "time"

// Stay is a lodging assignment: a guest occupying a bed between check-in and
// check-out. An open stay has a nil CheckedOutAt.
type Stay struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	GuestID      uint       `json:"guest_id" gorm:"index;not null"`
	Bed          string     `json:"bed" gorm:"size:32;not null"`
	CheckedInAt  time.Time  `json:"checked_in_at" gorm:"not null"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`

	Guest Guest `json:"guest,omitempty" gorm:"foreignKey:GuestID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Open reports whether the guest is still checked in.
func (s *Stay) Open() bool {
	return s.CheckedOutAt == nil
}
