package config

import "strings"

type Cors struct{}

var _ CorsConfig = Cors{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

// GetAllowedOrigins returns the local dev origins plus any deployment origin
// configured through CORS_ORIGIN.
func (Cors) GetAllowedOrigins() AllowedOrigins {
	origins := AllowedOrigins{
		"http://localhost:3000": nullValue{},
		"http://127.0.0.1:3000": nullValue{},
	}
	if extra := GetEnv("CORS_ORIGIN", ""); extra != "" {
		origins[strings.TrimRight(extra, "/")] = nullValue{}
	}
	return origins
}

func (Cors) GetAllowedMethods() string {
	return "GET, POST, OPTIONS"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type, Authorization"
}
