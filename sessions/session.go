package sessions

import (
	"sync"

	"github.com/jrsteele09/bell-client/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Persister durably mirrors the session. *persist.Bridge implements it.
type Persister interface {
	Restore() (string, *model.UserProfile, bool)
	Save(token string, user *model.UserProfile) error
	Clear() error
}

// Session is the owned handle to the authentication state: the bearer token
// and the signed-in profile. It is the only writer of both; the HTTP client
// and every store read it through this handle. The profile is only
// meaningful while a token is held.
type Session struct {
	mu        sync.RWMutex
	token     string
	user      *model.UserProfile
	persister Persister
	logger    zerolog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithPersister mirrors every change into p.
func WithPersister(p Persister) SessionOption {
	return func(s *Session) {
		s.persister = p
	}
}

// WithSessionLogger sets the logger.
func WithSessionLogger(logger zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession returns an empty, logged-out session.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{logger: log.Logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads the persisted session, replacing the held state. It reports
// whether a session was found.
func (s *Session) Restore() bool {
	if s.persister == nil {
		return false
	}
	token, user, ok := s.persister.Restore()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		s.token, s.user = "", nil
		return false
	}
	s.token, s.user = token, user
	return true
}

// Token returns the held bearer token.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// User returns a copy of the signed-in profile, or nil.
func (s *Session) User() *model.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyProfile(s.user)
}

// Set stores a new token and profile together.
func (s *Session) Set(token string, user *model.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = copyProfile(user)
	s.persist()
}

// SetUser replaces the profile, keeping the token.
func (s *Session) SetUser(user *model.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = copyProfile(user)
	s.persist()
}

// Clear drops token and profile in one step.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	if s.persister != nil {
		if err := s.persister.Clear(); err != nil {
			s.logger.Err(err).Msg("Clearing persisted session")
		}
	}
}

// IsAuthenticated is true while a token is held.
func (s *Session) IsAuthenticated() bool {
	_, ok := s.Token()
	return ok
}

// IsAdmin is true when a token is held and the profile has the admin role.
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user.IsAdmin()
}

// ForcePasswordChange reports the profile's forced change flag, false without a profile.
func (s *Session) ForcePasswordChange() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.ForcePasswordChange
}

// Facts is a point in time view of the derived session values.
type Facts struct {
	Authenticated       bool
	Admin               bool
	ForcePasswordChange bool
	Username            string
}

// Facts computes the derived values from the current state.
func (s *Session) Facts() Facts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f := Facts{Authenticated: s.token != ""}
	if s.user != nil {
		f.Admin = f.Authenticated && s.user.IsAdmin()
		f.ForcePasswordChange = s.user.ForcePasswordChange
		f.Username = s.user.Username
	}
	return f
}

// persist must be called with mu held.
func (s *Session) persist() {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(s.token, s.user); err != nil {
		s.logger.Err(err).Msg("Persisting session")
	}
}

func copyProfile(u *model.UserProfile) *model.UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
