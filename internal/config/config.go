package config

type Config interface {
	EnvConfig
	CorsConfig
	WorkspaceConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Workspace
	Session
}

func New() Config {
	return mainConfig{}
}
