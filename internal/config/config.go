package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// defaultJWTSecret is the placeholder value development setups tend to use.
// Booting a production deployment with it still set is a configuration
// hazard, so Load refuses to start in that case.
const defaultJWTSecret = "change-me"

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The struct is built once at startup and passed
// by value into components; nothing reads ambient environment state after
// Load returns.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign access tokens
	JWTAlg         string // HMAC signing algorithm (HS256/HS384/HS512)
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	CORSOrigins    string // comma-separated allowed origins, or "*"
	GoogleClients  string // comma-separated accepted Google OAuth client ids
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		JWTAlg:         getenv("JWT_ALG", "HS256"),
		AccessTTLMin:   intenv("ACCESS_TOKEN_TTL_MIN", 30),
		RefreshTTLDays: intenv("REFRESH_TOKEN_TTL_DAYS", 30),
		BcryptCost:     intenv("BCRYPT_COST", 12),
		CORSOrigins:    getenv("CORS_ORIGINS", "*"),
		GoogleClients:  os.Getenv("GOOGLE_OAUTH_CLIENT_IDS"),
	}
	if cfg.Env == "prod" && cfg.JWTSecret == defaultJWTSecret {
		log.Fatal("JWT_SECRET is set to the placeholder value in prod; refusing to start")
	}
	return cfg
}

// CORSOriginList expands CORSOrigins into the slice Echo's CORS middleware
// expects. "*" stays a single wildcard entry.
func (c Config) CORSOriginList() []string {
	s := strings.TrimSpace(c.CORSOrigins)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	return splitTrimmed(s)
}

// GoogleAudiences returns the accepted OAuth client ids. An empty result
// means Google sign-in is disabled.
func (c Config) GoogleAudiences() []string {
	return splitTrimmed(c.GoogleClients)
}

func splitTrimmed(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getenv returns the value of an optional environment variable, or def
// when unset.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intenv converts an optional environment variable to an integer, falling
// back to def when unset. A malformed value is fatal rather than silently
// defaulted.
func intenv(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
