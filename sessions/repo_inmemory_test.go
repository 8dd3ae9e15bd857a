package sessions_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"dashembed/internal/errors"
	"dashembed/sessions"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepoRoundTrip(t *testing.T) {
	repo := sessions.NewInMemoryRepo()

	session := sessions.Session{
		ID:        uuid.New().String(),
		UserID:    "u1",
		Email:     "jane.doe@example.com",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Upsert(session.ID, session))

	got, err := repo.Get(session.ID)
	require.NoError(t, err)
	require.Equal(t, session, got)

	require.NoError(t, repo.Delete(session.ID))
	_, err = repo.Get(session.ID)
	require.ErrorIs(t, err, errors.ErrSessionNotFound)
}

func TestInMemoryRepoMissingSession(t *testing.T) {
	repo := sessions.NewInMemoryRepo()

	_, err := repo.Get(uuid.New().String())
	require.ErrorIs(t, err, errors.ErrSessionNotFound)

	require.Error(t, repo.Upsert("", sessions.Session{}))

	// Deleting something that never existed is fine
	require.NoError(t, repo.Delete("never-existed"))
	require.NoError(t, repo.Delete(""))
}

func TestInMemoryRepoConcurrentAccess(t *testing.T) {
	repo := sessions.NewInMemoryRepo()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", n)
			_ = repo.Upsert(id, sessions.Session{ID: id, UserID: "u1"})
			_, _ = repo.Get(id)
			_ = repo.Delete(id)
		}(i)
	}
	wg.Wait()
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()

	s := sessions.Session{ExpiresAt: now.Add(time.Minute)}
	require.False(t, s.Expired(now))
	require.True(t, s.Expired(now.Add(2*time.Minute)))

	// Zero expiry means no bound
	require.False(t, sessions.Session{}.Expired(now))
}
