package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Transport failure policies for the session layer.
const (
	PolicyDeauthenticate = "deauthenticate"
	PolicyRetryLater     = "retry_later"
)

// Defaults shared by the client and the mock backend.
var (
	DefaultAPIURL           = "http://localhost:8000/api/v1"
	DefaultHTTPTimeout      = 10 * time.Second
	DefaultPageSize         = 10
	DefaultTokenTTL         = 15 * time.Minute
	DefaultRefreshTokenTTL  = 30 * 24 * time.Hour
	DefaultSecurityTokenTTL = 5 * time.Minute
)

// Client captures configuration for the SDK and CLI.
type Client struct {
	APIURL          string
	HTTPTimeout     time.Duration
	PageSize        int
	LogLevel        string
	TokenDir        string
	TransportPolicy string
}

// MockAPI captures configuration for the in-memory backend.
type MockAPI struct {
	Addr             string
	JWTSigningKey    string
	TokenTTL         time.Duration
	RefreshTokenTTL  time.Duration
	SecurityTokenTTL time.Duration
	LogLevel         string
}

// FromEnv builds a Client config from environment variables so main stays lean.
func FromEnv() Client {
	policy := os.Getenv("ADDRESSBOOK_TRANSPORT_POLICY")
	if policy != PolicyRetryLater {
		policy = PolicyDeauthenticate
	}
	return Client{
		APIURL:          getenv("ADDRESSBOOK_API_URL", DefaultAPIURL),
		HTTPTimeout:     getDuration("ADDRESSBOOK_HTTP_TIMEOUT", DefaultHTTPTimeout),
		PageSize:        getPositiveInt("ADDRESSBOOK_PAGE_SIZE", DefaultPageSize),
		LogLevel:        getenv("ADDRESSBOOK_LOG_LEVEL", "warn"),
		TokenDir:        getenv("ADDRESSBOOK_TOKEN_DIR", defaultTokenDir()),
		TransportPolicy: policy,
	}
}

// MockAPIFromEnv builds a MockAPI config from environment variables.
func MockAPIFromEnv() MockAPI {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden outside local runs
		jwtSigningKey = "dev-secret-key-change-in-production"
	}
	return MockAPI{
		Addr:             getenv("MOCKAPI_ADDR", ":8000"),
		JWTSigningKey:    jwtSigningKey,
		TokenTTL:         getDuration("TOKEN_TTL", DefaultTokenTTL),
		RefreshTokenTTL:  getDuration("REFRESH_TOKEN_TTL", DefaultRefreshTokenTTL),
		SecurityTokenTTL: getDuration("SECURITY_TOKEN_TTL", DefaultSecurityTokenTTL),
		LogLevel:         getenv("MOCKAPI_LOG_LEVEL", "info"),
	}
}

func defaultTokenDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "addressbook")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "addressbook")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func getPositiveInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
