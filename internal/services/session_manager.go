package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/havenhq/haven/backend/internal/logger"
	"github.com/havenhq/haven/backend/internal/metrics"
	"github.com/havenhq/haven/backend/internal/models"
)

// Flash severities understood by the frontend.
const (
	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// SessionManager owns the session lifecycle: start with a fresh id on login,
// resolve-and-timeout-check on every protected request, destroy on logout.
type SessionManager struct {
	store    SessionStore
	lifetime time.Duration
	secret   []byte
}

// NewSessionManager wires the store, the idle timeout, and the cookie
// signing secret.
func NewSessionManager(store SessionStore, lifetime time.Duration, secret string) *SessionManager {
	return &SessionManager{store: store, lifetime: lifetime, secret: []byte(secret)}
}

// Lifetime returns the configured idle timeout.
func (m *SessionManager) Lifetime() time.Duration {
	return m.lifetime
}

// Start creates a session for the user with a freshly generated id. A new id
// is minted on every login so a pre-login identifier can never carry over.
func (m *SessionManager) Start(user *models.User) (*models.Session, error) {
	sess := &models.Session{
		ID:       uuid.NewString(),
		UserID:   user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Role:     user.Role,
		LoginAt:  time.Now(),
	}
	if err := m.store.Save(sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// Current resolves a session id and enforces the idle timeout. An expired
// session is deleted and reported as absent, so callers see a single
// "anonymous" outcome for missing, logged-out, and timed-out sessions.
func (m *SessionManager) Current(id string) (*models.Session, error) {
	if id == "" {
		return nil, nil
	}
	sess, err := m.store.Find(id)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if sess == nil {
		return nil, nil
	}
	if sess.Expired(m.lifetime, time.Now()) {
		metrics.IncSessionExpired()
		if err := m.store.Delete(id); err != nil {
			logger.Log().WithError(err).Warn("failed to delete expired session")
		}
		return nil, nil
	}
	return sess, nil
}

// End destroys a session. Ending an unknown id is a no-op.
func (m *SessionManager) End(id string) error {
	if id == "" {
		return nil
	}
	return m.store.Delete(id)
}

// SetFlash stores a one-shot message on the session.
func (m *SessionManager) SetFlash(id, message, severity string) error {
	sess, err := m.store.Find(id)
	if err != nil || sess == nil {
		return err
	}
	sess.FlashMessage = message
	sess.FlashSeverity = severity
	return m.store.Save(sess)
}

// TakeFlash returns the pending flash and clears it, so it renders once.
func (m *SessionManager) TakeFlash(id string) (message, severity string, ok bool) {
	sess, err := m.store.Find(id)
	if err != nil || sess == nil || sess.FlashMessage == "" {
		return "", "", false
	}
	message, severity = sess.FlashMessage, sess.FlashSeverity
	sess.FlashMessage = ""
	sess.FlashSeverity = ""
	if err := m.store.Save(sess); err != nil {
		logger.Log().WithError(err).Warn("failed to clear flash message")
	}
	return message, severity, true
}

// SweepExpired deletes sessions past the idle timeout. Reads already treat
// them as absent; this only reclaims storage.
func (m *SessionManager) SweepExpired() {
	n, err := m.store.DeleteLoggedInBefore(time.Now().Add(-m.lifetime))
	if err != nil {
		logger.Log().WithError(err).Warn("session sweep failed")
		return
	}
	if n > 0 {
		logger.WithFields(map[string]interface{}{"sessions": n}).Debug("swept expired sessions")
	}
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// IssueCookie wraps the session id in a signed token for the cookie value.
// The server-side row stays authoritative: deleting it invalidates the
// cookie no matter how long the signature stays valid.
func (m *SessionManager) IssueCookie(sessionID string) (string, error) {
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ResolveCookie verifies the cookie signature and returns the embedded
// session id. Any malformed or tampered value resolves to an error.
func (m *SessionManager) ResolveCookie(value string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.SessionID == "" {
		return "", errors.New("invalid session cookie")
	}
	return claims.SessionID, nil
}
