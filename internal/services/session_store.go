package services

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/havenhq/haven/backend/internal/models"
)

// SessionStore persists sessions. The GORM store backs production; the
// in-memory store keeps tests free of database plumbing.
type SessionStore interface {
	Save(s *models.Session) error
	// Find returns (nil, nil) when no session exists for the id.
	Find(id string) (*models.Session, error)
	Delete(id string) error
	// DeleteLoggedInBefore removes sessions whose login time predates cutoff
	// and returns how many rows went away.
	DeleteLoggedInBefore(cutoff time.Time) (int64, error)
}

type gormSessionStore struct {
	db *gorm.DB
}

// NewGormSessionStore returns a store backed by the shared database handle.
func NewGormSessionStore(db *gorm.DB) SessionStore {
	return &gormSessionStore{db: db}
}

func (s *gormSessionStore) Save(sess *models.Session) error {
	return s.db.Save(sess).Error
}

func (s *gormSessionStore) Find(id string) (*models.Session, error) {
	var sess models.Session
	err := s.db.First(&sess, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *gormSessionStore) Delete(id string) error {
	return s.db.Delete(&models.Session{}, "id = ?", id).Error
}

func (s *gormSessionStore) DeleteLoggedInBefore(cutoff time.Time) (int64, error) {
	res := s.db.Delete(&models.Session{}, "login_at < ?", cutoff)
	return res.RowsAffected, res.Error
}

// MemorySessionStore is a map-backed store for tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

// NewMemorySessionStore returns an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]models.Session)}
}

func (s *MemorySessionStore) Save(sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *MemorySessionStore) Find(id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s *MemorySessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemorySessionStore) DeleteLoggedInBefore(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, sess := range s.sessions {
		if sess.LoginAt.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}
