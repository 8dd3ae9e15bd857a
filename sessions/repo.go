package sessions

// Repo defines session storage by opaque id. The in-memory implementation
// suffices for a single process; a distributed cache-backed one is a
// drop-in replacement.
type Repo interface {
	Upsert(sessionID string, session Session) error
	Get(sessionID string) (Session, error)

	// Delete removes a session. Deleting an absent session is not an error,
	// which keeps logout idempotent.
	Delete(sessionID string) error
}
