package sessions

import "time"

// Session binds an opaque server-generated id to an authenticated user.
// The client only ever holds the id (inside a signed cookie); everything
// else stays server-side.
type Session struct {
	ID        string
	UserID    string
	Email     string // normalized login email; this is the external viewer identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(now)
}
