package users

import (
	"encoding/json"
	"fmt"
	"strings"
)

// User is an entry in the allowed-user directory. The email doubles as the
// external viewer identity forwarded to the dashboard service, so it is the
// unique key (case-insensitive).
type User struct {
	ID         string `json:"id"`         // Unique identifier for the user
	Name       string `json:"name"`       // Display name
	Email      string `json:"email"`      // Login email, unique key
	Department string `json:"department"` // Department shown in the embed user context
	Password   string `json:"-"`          // Opaque stored secret - never serialize
}

// NormalizeEmail trims and lower-cases an email for directory lookups.
// Idempotent, so session-stored emails can be passed through it again.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseDirectoryJSON decodes a directory seed from a JSON array, as supplied
// through the ALLOWED_USERS environment variable. Every entry needs an id,
// an email and a password.
func ParseDirectoryJSON(data []byte) ([]User, error) {
	var seed []struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Email      string `json:"email"`
		Department string `json:"department"`
		Password   string `json:"password"`
	}
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("[ParseDirectoryJSON] invalid directory JSON: %w", err)
	}

	entries := make([]User, 0, len(seed))
	for i, e := range seed {
		if e.ID == "" || e.Email == "" || e.Password == "" {
			return nil, fmt.Errorf("[ParseDirectoryJSON] entry %d: id, email and password are required", i)
		}
		entries = append(entries, User{
			ID:         e.ID,
			Name:       e.Name,
			Email:      NormalizeEmail(e.Email),
			Department: e.Department,
			Password:   e.Password,
		})
	}
	return entries, nil
}
