package users

// Directory is a read-only lookup of allowed users. Implementations must
// key by normalized email and be safe for concurrent readers.
type Directory interface {
	GetByEmail(email string) (*User, error)
	List() []*User
}
