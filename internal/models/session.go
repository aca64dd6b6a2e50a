package models

import "time"

// Session is a server-side login session. Only the opaque ID travels to the
// browser (inside a signed cookie); everything else stays in the store.
// The identity fields are a snapshot taken at login time, so later role or
// name changes do not affect an open session.
type Session struct {
	ID       string `gorm:"primaryKey;size:64"`
	UserID   uint   `gorm:"index;not null"`
	Username string `gorm:"size:64"`
	FullName string
	Role     Role      `gorm:"size:32"`
	LoginAt  time.Time `gorm:"not null"`

	// One-shot flash message shown on the next rendered page.
	FlashMessage  string
	FlashSeverity string `gorm:"size:16"`

	CreatedAt time.Time
}

// Expired reports whether the idle timeout has elapsed since login.
func (s *Session) Expired(lifetime time.Duration, now time.Time) bool {
	return now.Sub(s.LoginAt) > lifetime
}
