package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/havenhq/haven/backend/internal/logger"
	"github.com/havenhq/haven/backend/internal/metrics"
	"github.com/havenhq/haven/backend/internal/models"
)

// Error taxonomy surfaced to handlers. Anything else coming out of the
// service is a persistence failure and stays server-side.
var (
	// ErrInvalidCredentials covers unknown username, wrong password, inactive
	// and locked accounts alike, so a caller can't probe which usernames exist.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("user not found")
)

const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
)

// AuthService orchestrates credential checks, session lifecycle, user
// provisioning, and the audit trail around all of it.
type AuthService struct {
	db       *gorm.DB
	sessions *SessionManager
	audit    *AuditService
	notify   *NotifyService
}

func NewAuthService(db *gorm.DB, sessions *SessionManager, audit *AuditService, notify *NotifyService) *AuthService {
	return &AuthService{db: db, sessions: sessions, audit: audit, notify: notify}
}

// Login verifies the credentials and starts a session with a fresh id.
// On success it updates last_login_at, resets the failure counter, and
// audits the login.
func (s *AuthService) Login(username, password, clientIP string) (*models.Session, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.IncLoginFailure()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	now := time.Now()
	if !user.Active || user.Locked(now) {
		metrics.IncLoginFailure()
		return nil, ErrInvalidCredentials
	}

	if !user.CheckPassword(password) {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= maxFailedLogins {
			until := now.Add(lockoutDuration)
			user.LockedUntil = &until
			logger.WithFields(map[string]interface{}{
				"username": user.Username,
				"client":   clientIP,
			}).Warn("account locked after repeated failed logins")
			s.notify.Send("Account locked",
				fmt.Sprintf("account %q locked for %s after %d failed logins", user.Username, lockoutDuration, user.FailedLoginAttempts))
		}
		if err := s.db.Save(&user).Error; err != nil {
			logger.Log().WithError(err).Error("failed to record login failure")
		}
		metrics.IncLoginFailure()
		return nil, ErrInvalidCredentials
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	sess, err := s.sessions.Start(&user)
	if err != nil {
		return nil, err
	}

	s.audit.Record(user.ID, "Login", "users", user.ID, "", clientIP)
	metrics.IncLogin()
	return sess, nil
}

// Logout audits and destroys the session. A missing or already-expired
// session is a no-op success.
func (s *AuthService) Logout(sessionID, clientIP string) error {
	sess, err := s.sessions.Current(sessionID)
	if err != nil {
		return err
	}
	if sess != nil {
		s.audit.Record(sess.UserID, "Logout", "users", sess.UserID, "", clientIP)
	}
	return s.sessions.End(sessionID)
}

// CreateUser provisions a new active account. The username pre-check gives a
// friendly error; the unique index on users.username is the real guard, and
// a constraint violation maps to the same ErrDuplicateUsername.
func (s *AuthService) CreateUser(actorID uint, username, fullName, password string, role models.Role, clientIP string) (*models.User, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateUsername
	}

	user := models.User{
		Username: username,
		FullName: fullName,
		Role:     role,
		Active:   true,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.audit.Record(actorID, "CreateUser", "users", user.ID, fmt.Sprintf("username=%s role=%s", username, role), clientIP)
	return &user, nil
}

// ChangePassword rehashes after verifying the current password.
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword, clientIP string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(oldPassword) {
		return ErrInvalidCredentials
	}
	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.Save(user).Error; err != nil {
		return fmt.Errorf("save password: %w", err)
	}
	s.audit.Record(userID, "ChangePassword", "users", userID, "", clientIP)
	return nil
}

// ResetPassword rehashes unconditionally and clears any lockout. Role
// enforcement happens at the route level before this is reachable.
func (s *AuthService) ResetPassword(actorID, userID uint, newPassword, clientIP string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	if err := s.db.Save(user).Error; err != nil {
		return fmt.Errorf("save password: %w", err)
	}
	s.audit.Record(actorID, "ResetPassword", "users", userID, "", clientIP)
	s.notify.Send("Password reset", fmt.Sprintf("password for %q was reset by an administrator", user.Username))
	return nil
}

// ToggleStatus flips the active flag. The acting user's own account and the
// root admin are off limits regardless of role.
func (s *AuthService) ToggleStatus(actorID, userID uint, active bool, clientIP string) error {
	if actorID == userID {
		return ErrForbidden
	}
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if user.IsRootAdmin() {
		return ErrForbidden
	}
	if err := s.db.Model(user).Update("active", active).Error; err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	detail := "deactivated"
	if active {
		detail = "activated"
	}
	s.audit.Record(actorID, "ToggleStatus", "users", userID, detail, clientIP)
	return nil
}

// UpdateProfile edits the display name and role. The root admin keeps the
// administrator role no matter what the request says.
func (s *AuthService) UpdateProfile(actorID, userID uint, fullName string, role models.Role, clientIP string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if user.IsRootAdmin() && role != models.RoleAdministrator {
		return ErrForbidden
	}
	user.FullName = fullName
	user.Role = role
	if err := s.db.Save(user).Error; err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	s.audit.Record(actorID, "UpdateProfile", "users", userID, fmt.Sprintf("role=%s", role), clientIP)
	return nil
}

// ListUsers returns all accounts sorted by full name. Password hashes never
// serialize (json:"-" on the model).
func (s *AuthService) ListUsers() ([]models.User, error) {
	var users []models.User
	err := s.db.Order("full_name asc").Find(&users).Error
	return users, err
}

// GetUser loads one account by id.
func (s *AuthService) GetUser(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return &user, nil
}

// Sessions exposes the session manager for handlers and middleware.
func (s *AuthService) Sessions() *SessionManager {
	return s.sessions
}
