package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	portEnvVar    = "PORT"
	appPortEnvVar = "DATABRICKS_APP_PORT"
	appNameVar    = "APP_NAME"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(appPortEnvVar, "")
	if port == "" {
		port = GetEnv(portEnvVar, "8080")
	}
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Dashboard Embed SSO")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvFallback resolves a value from a primary variable with a secondary
// fallback name, trimming any trailing slash. Workspace settings accept both
// the app-style names (INSTANCE_URL) and the Databricks SDK names
// (DATABRICKS_WORKSPACE_URL).
func GetEnvFallback(envVar, fallbackVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" && fallbackVar != "" {
		value = os.Getenv(fallbackVar)
	}
	if value == "" {
		return defaultValue
	}
	return strings.TrimRight(value, "/")
}
