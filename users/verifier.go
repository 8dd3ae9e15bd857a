package users

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier checks a presented password against a user's stored
// secret. Abstracted so the plaintext demo scheme can be swapped for a
// hashed store without touching the session or gate logic.
type CredentialVerifier interface {
	Verify(stored, presented string) bool
}

// PlaintextVerifier compares the stored secret verbatim, in constant time.
type PlaintextVerifier struct{}

var _ CredentialVerifier = PlaintextVerifier{}

func (PlaintextVerifier) Verify(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

// BcryptVerifier treats the stored secret as a bcrypt hash.
type BcryptVerifier struct{}

var _ CredentialVerifier = BcryptVerifier{}

func (BcryptVerifier) Verify(stored, presented string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented)) == nil
}

// AutoVerifier dispatches per entry: bcrypt when the stored secret carries a
// bcrypt version prefix, verbatim compare otherwise. Lets a seeded directory
// mix hashed and plaintext entries during a migration.
type AutoVerifier struct{}

var _ CredentialVerifier = AutoVerifier{}

func (AutoVerifier) Verify(stored, presented string) bool {
	if isBcryptHash(stored) {
		return BcryptVerifier{}.Verify(stored, presented)
	}
	return PlaintextVerifier{}.Verify(stored, presented)
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// HashPassword produces a bcrypt hash for seeding hashed directory entries.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}
