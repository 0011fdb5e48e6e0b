// Package session owns the client's single live authentication session.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tutorlens/internal/domain"
	"tutorlens/internal/ports"
)

const (
	keyToken   = "token"
	keyProfile = "userInfo"
)

// Store holds the current session and mirrors it to persistent storage.
// Exactly one Store is live per running client.
type Store struct {
	storage ports.Storage
	log     *zap.Logger

	mu       sync.Mutex
	session  domain.Session
	profile  *domain.UserProfile
	onExpire []func()
}

func NewStore(storage ports.Storage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{storage: storage, log: log}
}

// Init restores a persisted session, if any. A missing token is not an
// error: the client simply starts unauthenticated.
func (s *Store) Init() error {
	token, err := s.storage.Read(keyToken)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	var profile *domain.UserProfile
	if raw, err := s.storage.Read(keyProfile); err == nil {
		var p domain.UserProfile
		if json.Unmarshal(raw, &p) == nil {
			profile = &p
		}
	}

	s.mu.Lock()
	s.session = domain.Session{Token: string(token)}
	s.profile = profile
	s.mu.Unlock()

	if len(token) > 0 {
		s.log.Info("session restored from storage")
	}
	return nil
}

// Set stores a new token and user identity and persists the token.
func (s *Store) Set(token string, userID string) error {
	s.mu.Lock()
	s.session = domain.Session{Token: token, UserID: userID}
	s.mu.Unlock()

	if err := s.storage.Write(keyToken, []byte(token)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// SetProfile caches the user profile and persists it alongside the token.
func (s *Store) SetProfile(profile domain.UserProfile) error {
	s.mu.Lock()
	s.profile = &profile
	s.mu.Unlock()

	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := s.storage.Write(keyProfile, raw); err != nil {
		return fmt.Errorf("failed to persist profile: %w", err)
	}
	return nil
}

// Current returns the present session value.
func (s *Store) Current() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Profile returns the cached user profile, if any.
func (s *Store) Profile() (domain.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return domain.UserProfile{}, false
	}
	return *s.profile, true
}

// OnInvalidate registers a callback fired when a live session is cleared.
func (s *Store) OnInvalidate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpire = append(s.onExpire, fn)
}

// Clear removes the in-memory and persisted session. It is idempotent and
// safe to call from both 401 handling and an explicit logout; callbacks
// fire only when a live session was actually invalidated.
func (s *Store) Clear() {
	s.mu.Lock()
	hadToken := s.session.Token != ""
	s.session = domain.Session{}
	s.profile = nil
	callbacks := append([]func(){}, s.onExpire...)
	s.mu.Unlock()

	if err := s.storage.Delete(keyToken); err != nil {
		s.log.Warn("failed to remove persisted token", zap.Error(err))
	}
	if err := s.storage.Delete(keyProfile); err != nil {
		s.log.Warn("failed to remove persisted profile", zap.Error(err))
	}

	if !hadToken {
		return
	}
	s.log.Info("session cleared")
	for _, fn := range callbacks {
		fn()
	}
}
