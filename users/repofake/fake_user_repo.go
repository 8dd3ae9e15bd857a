package fakeuserrepo

import (
	"sync"

	"dashembed/internal/errors"
	"dashembed/users"
)

var _ users.Directory = (*FakeDirectory)(nil)

// FakeDirectory is a mutable directory for tests. Unlike the static
// directory it supports removing users mid-test, which is how the
// dangling-session invalidation paths get exercised.
type FakeDirectory struct {
	byEmail map[string]*users.User
	lock    sync.RWMutex
}

func NewFakeDirectory() *FakeDirectory {
	return &FakeDirectory{
		byEmail: make(map[string]*users.User),
	}
}

func (d *FakeDirectory) Upsert(user *users.User) {
	d.lock.Lock()
	defer d.lock.Unlock()

	u := *user
	u.Email = users.NormalizeEmail(u.Email)
	d.byEmail[u.Email] = &u
}

func (d *FakeDirectory) Delete(email string) {
	d.lock.Lock()
	defer d.lock.Unlock()

	delete(d.byEmail, users.NormalizeEmail(email))
}

func (d *FakeDirectory) GetByEmail(email string) (*users.User, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	u, ok := d.byEmail[users.NormalizeEmail(email)]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return u, nil
}

func (d *FakeDirectory) List() []*users.User {
	d.lock.RLock()
	defer d.lock.RUnlock()

	list := make([]*users.User, 0, len(d.byEmail))
	for _, u := range d.byEmail {
		list = append(list, u)
	}
	return list
}
