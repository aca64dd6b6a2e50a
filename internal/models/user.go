package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// RootAdminUsername is the reserved account that must always stay an active
// administrator. Handlers refuse to demote or deactivate it.
const RootAdminUsername = "admin"

// User represents a staff account with role-based access control.
// Accounts are never hard-deleted; Active is the only off switch.
type User struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	Username            string     `json:"username" gorm:"uniqueIndex;size:64"`
	PasswordHash        string     `json:"-"` // Never serialize password hash
	FullName            string     `json:"full_name"`
	Role                Role       `json:"role" gorm:"size:32;default:'agent'"`
	Active              bool       `json:"active" gorm:"default:true"`
	FailedLoginAttempts int        `json:"-" gorm:"default:0"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetPassword hashes and sets the user's password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares the provided password with the stored hash.
// A malformed stored hash simply fails the check.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IsRootAdmin reports whether this is the reserved root administrator account.
func (u *User) IsRootAdmin() bool {
	return u.Username == RootAdminUsername
}

// Locked reports whether the account is under a lockout window.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}
