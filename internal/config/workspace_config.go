package config

import (
	"strconv"
	"time"
)

// WorkspaceConfig supplies the upstream workspace identity/dashboard API
// settings used by the token minting exchange. All values are read-only and
// supplied through the environment.
type WorkspaceConfig interface {
	GetWorkspaceURL() string
	GetOAuthClientID() string
	GetOAuthClientSecret() string
	GetDashboardID() string
	GetWorkspaceID() string
	GetWarehouseID() string
	GetUpstreamTimeout() time.Duration
}

type Workspace struct{}

var _ WorkspaceConfig = Workspace{}

func (Workspace) GetWorkspaceURL() string {
	return GetEnvFallback("INSTANCE_URL", "DATABRICKS_WORKSPACE_URL", "")
}

func (Workspace) GetOAuthClientID() string {
	return GetEnvFallback("OAUTH_CLIENT_ID", "DATABRICKS_CLIENT_ID", "")
}

func (Workspace) GetOAuthClientSecret() string {
	return GetEnvFallback("OAUTH_SECRET", "DATABRICKS_CLIENT_SECRET", "")
}

func (Workspace) GetDashboardID() string {
	return GetEnvFallback("DASHBOARD_ID", "DATABRICKS_DASHBOARD_ID", "")
}

func (Workspace) GetWorkspaceID() string {
	return GetEnvFallback("WORKSPACE_ID", "DATABRICKS_WORKSPACE_ID", "")
}

func (Workspace) GetWarehouseID() string {
	return GetEnv("DATABRICKS_WAREHOUSE_ID", "")
}

// GetUpstreamTimeout bounds each of the three upstream calls made while
// minting a token. The exchange has no retries, so a hung upstream would
// otherwise hold the request open indefinitely.
func (Workspace) GetUpstreamTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv("UPSTREAM_TIMEOUT_SECONDS", "10"))
	if err != nil || seconds <= 0 {
		seconds = 10
	}
	return time.Duration(seconds) * time.Second
}
