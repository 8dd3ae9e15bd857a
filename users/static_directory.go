package users

import (
	"sort"

	"dashembed/internal/errors"
)

var _ Directory = (*StaticDirectory)(nil)

// StaticDirectory is the fixed in-memory user directory. It is built once at
// process start and never mutated, so lookups need no synchronization.
type StaticDirectory struct {
	byEmail map[string]*User
}

// NewStaticDirectory builds a directory from the given entries. Entry emails
// are normalized; a later duplicate email replaces an earlier one.
func NewStaticDirectory(entries ...User) *StaticDirectory {
	byEmail := make(map[string]*User, len(entries))
	for _, e := range entries {
		u := e
		u.Email = NormalizeEmail(u.Email)
		byEmail[u.Email] = &u
	}
	return &StaticDirectory{byEmail: byEmail}
}

func (d *StaticDirectory) GetByEmail(email string) (*User, error) {
	u, ok := d.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return u, nil
}

func (d *StaticDirectory) List() []*User {
	list := make([]*User, 0, len(d.byEmail))
	for _, u := range d.byEmail {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// DemoDirectory returns the fallback directory used when ALLOWED_USERS is
// not configured. Demo credentials only.
func DemoDirectory() *StaticDirectory {
	return NewStaticDirectory(
		User{
			ID:         "user_alice",
			Name:       "Alice Rivera",
			Email:      "alice@example.com",
			Department: "Viewer",
			Password:   "demo-password-1",
		},
		User{
			ID:         "user_bruno",
			Name:       "Bruno Keller",
			Email:      "bruno@example.com",
			Department: "Viewer",
			Password:   "demo-password-2",
		},
	)
}
