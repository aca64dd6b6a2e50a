package models

import "time"

// Medication records a single dispensation to a guest.
type Medication struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	GuestID     uint      `json:"guest_id" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"size:128;not null"`
	Dosage      string    `json:"dosage" gorm:"size:64"`
	DispensedAt time.Time `json:"dispensed_at" gorm:"not null"`
	Notes       string    `json:"notes,omitempty" gorm:"type:text"`

	Guest Guest `json:"guest,omitempty" gorm:"foreignKey:GuestID"`

	CreatedAt time.Time `json:"created_at"`
}
