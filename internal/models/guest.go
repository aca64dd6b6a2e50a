package models

import "time"

// Guest is a person receiving services. Guests are archived, never deleted,
// so historic stays and dispensations keep a valid reference.
type Guest struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	FirstName   string     `json:"first_name" gorm:"size:100;not null"`
	LastName    string     `json:"last_name" gorm:"size:100;not null;index"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Notes       string     `json:"notes,omitempty" gorm:"type:text"`
	Active      bool       `json:"active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns "Last, First" for list views.
func (g *Guest) DisplayName() string {
	return g.LastName + ", " + g.FirstName
}
