package auth

import (
	"fmt"
	"strings"
	"time"

	"dashembed/internal/errors"
	"dashembed/sessions"
	"dashembed/users"

	"github.com/google/uuid"
)

// Repos holds the repository dependencies for the Service.
type Repos struct {
	Directory users.Directory // Read-only allowed-user directory
	Sessions  sessions.Repo   // Server-side session storage
}

// Service implements the authenticated-session boundary: login, logout and
// session-to-user resolution. The token minting layer trusts only the user
// this service resolves, never caller-supplied identity.
type Service struct {
	repos    Repos
	verifier users.CredentialVerifier
	maxAge   time.Duration
	nowTime  func() time.Time // injectable for testing
	newID    func() string    // injectable for testing
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithIDGenerator sets the session id generator (primarily for testing)
func WithIDGenerator(gen func() string) ServiceOption {
	return func(s *Service) {
		s.newID = gen
	}
}

// WithVerifier overrides the credential verifier. The default dispatches
// per directory entry between bcrypt hashes and verbatim compare.
func WithVerifier(v users.CredentialVerifier) ServiceOption {
	return func(s *Service) {
		s.verifier = v
	}
}

// NewService initializes the auth Service with required dependencies.
func NewService(repos Repos, sessionMaxAge time.Duration, options ...ServiceOption) (*Service, error) {
	if repos.Directory == nil {
		return nil, fmt.Errorf("[NewService] Directory repo is required")
	}
	if repos.Sessions == nil {
		return nil, fmt.Errorf("[NewService] Sessions repo is required")
	}

	service := &Service{
		repos:    repos,
		verifier: users.AutoVerifier{},
		maxAge:   sessionMaxAge,
		nowTime:  time.Now,
		newID:    func() string { return uuid.New().String() },
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// Login validates the credentials and, on success, creates a session bound
// to the directory user. The error is identical for an unknown email and a
// wrong password so callers cannot enumerate the directory.
func (s *Service) Login(email, password string) (*users.User, string, error) {
	email = users.NormalizeEmail(email)
	password = strings.TrimSpace(password)

	if email == "" || password == "" {
		return nil, "", errors.ErrInvalidCredentials
	}

	user, err := s.repos.Directory.GetByEmail(email)
	if err != nil {
		return nil, "", errors.ErrInvalidCredentials
	}

	if !s.verifier.Verify(user.Password, password) {
		return nil, "", errors.ErrInvalidCredentials
	}

	sessionID := s.newID()
	now := s.nowTime()
	if err := s.repos.Sessions.Upsert(sessionID, sessions.Session{
		ID:        sessionID,
		UserID:    user.ID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.maxAge),
	}); err != nil {
		return nil, "", errors.Wrapf(err, "[Service.Login] failed to create session")
	}

	return user, sessionID, nil
}

// Logout destroys the session. Calling it without a session, or with one
// that is already gone, is also a success.
func (s *Service) Logout(sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.repos.Sessions.Delete(sessionID); err != nil {
		return errors.Wrapf(err, "[Service.Logout] Sessions.Delete")
	}
	return nil
}

// CurrentUser resolves the session to its directory user. A session whose
// email no longer resolves is removed before the error is returned, so a
// stale cookie cannot be replayed.
func (s *Service) CurrentUser(sessionID string) (*users.User, error) {
	if sessionID == "" {
		return nil, errors.ErrUnauthorized
	}

	session, err := s.repos.Sessions.Get(sessionID)
	if err != nil {
		return nil, errors.ErrUnauthorized
	}

	if session.Expired(s.nowTime()) {
		_ = s.repos.Sessions.Delete(sessionID)
		return nil, errors.ErrUnauthorized
	}

	user, err := s.repos.Directory.GetByEmail(session.Email)
	if err != nil {
		_ = s.repos.Sessions.Delete(sessionID)
		return nil, errors.ErrUserNotFound
	}

	return user, nil
}
