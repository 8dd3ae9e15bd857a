package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionCookieName is the cookie carrying the signed session reference
const sessionCookieName = "embed_session"

type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionCookies signs and verifies the cookie that carries the opaque
// session id. The cookie value is a compact HS256 JWT whose only private
// claim is the id; everything about the user stays server-side.
type SessionCookies struct {
	secret      []byte
	maxAge      time.Duration
	crossOrigin bool
	nowTime     func() time.Time
}

func NewSessionCookies(secret []byte, maxAge time.Duration, crossOrigin bool) *SessionCookies {
	return &SessionCookies{
		secret:      secret,
		maxAge:      maxAge,
		crossOrigin: crossOrigin,
		nowTime:     time.Now,
	}
}

func (c *SessionCookies) Set(w http.ResponseWriter, sessionID string) error {
	now := c.nowTime()
	claims := sessionClaims{
		SID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return fmt.Errorf("[SessionCookies.Set] signing failed: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: c.sameSite(),
	})
	return nil
}

func (c *SessionCookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: c.sameSite(),
	})
}

// Read extracts and verifies the session id from the request cookie. A
// missing cookie, a bad signature and a tampered payload all look the same
// to the caller; the gate answers 401 for each.
func (c *SessionCookies) Read(r *http.Request) (string, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", err
	}

	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.nowTime),
	)
	if err != nil {
		return "", fmt.Errorf("[SessionCookies.Read] invalid session cookie: %w", err)
	}
	if claims.SID == "" {
		return "", fmt.Errorf("[SessionCookies.Read] session cookie missing sid")
	}
	return claims.SID, nil
}

// SameSite=None is required when the frontend embeds the dashboard from a
// different origin; Lax is the safer default everywhere else.
func (c *SessionCookies) sameSite() http.SameSite {
	if c.crossOrigin {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
