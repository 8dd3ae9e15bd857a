package config

import (
	"os"
	"strconv"
	"time"
)

type SessionConfig interface {
	GetSessionSecret() string
	GetSessionMaxAge() time.Duration
	GetCrossOriginEmbed() bool
}

type Session struct{}

var _ SessionConfig = Session{}

// GetSessionSecret returns the key used to sign session cookies.
// The default is only suitable for local development.
func (Session) GetSessionSecret() string {
	return GetEnv("SESSION_SECRET", "dev-secret-key-for-demo")
}

func (Session) GetSessionMaxAge() time.Duration {
	seconds, err := strconv.Atoi(GetEnv("SESSION_MAX_AGE", "3600"))
	if err != nil || seconds <= 0 {
		seconds = 3600
	}
	return time.Duration(seconds) * time.Second
}

// GetCrossOriginEmbed reports whether the app is served behind the hosted
// app platform, where the dashboard frontend is embedded from a different
// origin and session cookies need SameSite=None.
func (Session) GetCrossOriginEmbed() bool {
	_, ok := os.LookupEnv(appPortEnvVar)
	return ok
}
