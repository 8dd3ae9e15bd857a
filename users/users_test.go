package users_test

import (
	"encoding/json"
	"testing"

	"dashembed/internal/errors"
	"dashembed/users"

	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "jane.doe@example.com", users.NormalizeEmail("  Jane.Doe@Example.COM "))
	// Idempotent
	require.Equal(t, "jane.doe@example.com", users.NormalizeEmail(users.NormalizeEmail("Jane.Doe@Example.COM")))
	require.Equal(t, "", users.NormalizeEmail("   "))
}

func TestStaticDirectoryLookup(t *testing.T) {
	dir := users.NewStaticDirectory(
		users.User{ID: "u1", Name: "Jane Doe", Email: "Jane.Doe@Example.com", Department: "Viewer", Password: "pw"},
		users.User{ID: "u2", Name: "John Doe", Email: "john.doe@example.com", Department: "Viewer", Password: "pw"},
	)

	u, err := dir.GetByEmail("JANE.DOE@example.com ")
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.Equal(t, "jane.doe@example.com", u.Email)

	_, err = dir.GetByEmail("nobody@example.com")
	require.ErrorIs(t, err, errors.ErrUserNotFound)

	list := dir.List()
	require.Len(t, list, 2)
	require.Equal(t, "u1", list[0].ID)
	require.Equal(t, "u2", list[1].ID)
}

func TestUserSerializationStripsPassword(t *testing.T) {
	u := users.User{ID: "u1", Name: "Jane Doe", Email: "jane.doe@example.com", Department: "Viewer", Password: "hunter2"}

	data, err := json.Marshal(u)
	require.NoError(t, err)
	require.NotContains(t, string(data), "hunter2")
	require.NotContains(t, string(data), "password")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "jane.doe@example.com", decoded["email"])
}

func TestParseDirectoryJSON(t *testing.T) {
	entries, err := users.ParseDirectoryJSON([]byte(`[
		{"id":"u1","name":"Jane Doe","email":"Jane.Doe@Example.com","department":"Viewer","password":"pw1"},
		{"id":"u2","name":"John Doe","email":"john.doe@example.com","department":"Sales","password":"pw2"}
	]`))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "jane.doe@example.com", entries[0].Email)
	require.Equal(t, "pw1", entries[0].Password)

	_, err = users.ParseDirectoryJSON([]byte(`not json`))
	require.Error(t, err)

	_, err = users.ParseDirectoryJSON([]byte(`[{"id":"u1","email":"a@b.com"}]`))
	require.Error(t, err, "missing password must be rejected")
}

func TestPlaintextVerifier(t *testing.T) {
	v := users.PlaintextVerifier{}
	require.True(t, v.Verify("secret", "secret"))
	require.False(t, v.Verify("secret", "Secret"))
	require.False(t, v.Verify("secret", ""))
}

func TestBcryptVerifier(t *testing.T) {
	hash, err := users.HashPassword("secret")
	require.NoError(t, err)

	v := users.BcryptVerifier{}
	require.True(t, v.Verify(hash, "secret"))
	require.False(t, v.Verify(hash, "wrong"))
}

func TestAutoVerifier(t *testing.T) {
	hash, err := users.HashPassword("secret")
	require.NoError(t, err)

	v := users.AutoVerifier{}
	require.True(t, v.Verify(hash, "secret"), "bcrypt entries dispatch to bcrypt")
	require.True(t, v.Verify("secret", "secret"), "plain entries compare verbatim")
	require.False(t, v.Verify(hash, hash), "hash is not its own password")
}
