package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string // sqlite|postgres|mysql|memory
	DBDSN    string

	BankFile   string // optional YAML bank; empty uses the embedded one
	AssetsPath string

	AuthHMACSecret string
	TokenTTL       time.Duration
	StrictTokens   bool

	SampleQuantum time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ShutdownTimeout time.Duration

	CORSOriginsOnline  []string
	CORSOriginsOffline []string
}

// DefaultHMACSecret signs tokens when AUTH_HMAC_SECRET is unset. Offline only.
const DefaultHMACSecret = "dev-secret-change-me"

// FromEnv reads configuration from the environment, after loading an
// optional .env file from the working directory.
func FromEnv() Config {
	_ = godotenv.Load()

	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:               mode,
		HTTPAddr:           envOr("HTTP_ADDR", ":8080"),
		DBDriver:           envOr("DB_DRIVER", "sqlite"),
		DBDSN:              envOr("DB_DSN", ""),
		BankFile:           envOr("BANK_FILE", ""),
		AssetsPath:         envOr("ASSETS_PATH", "./web"),
		AuthHMACSecret:     envOr("AUTH_HMAC_SECRET", DefaultHMACSecret),
		TokenTTL:           envDuration("TOKEN_TTL", 8*time.Hour),
		StrictTokens:       envBool("STRICT_TOKENS", mode == ModeOnline),
		SampleQuantum:      envDuration("SAMPLE_QUANTUM", time.Second),
		RedisAddr:          envOr("REDIS_ADDR", ""),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            envInt("REDIS_DB", 0),
		ShutdownTimeout:    envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://prep.mindengage.ai"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:8080"),
	}
}

// CORSOrigins returns the allow-list for the configured mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func (c Config) Validate() error {
	var errs []error
	switch c.Mode {
	case ModeOffline, ModeOnline:
	default:
		errs = append(errs, fmt.Errorf("MODE: unknown mode %q", c.Mode))
	}
	switch c.DBDriver {
	case "sqlite", "postgres", "mysql", "memory":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER: unsupported driver %q", c.DBDriver))
	}
	if c.SampleQuantum <= 0 {
		errs = append(errs, errors.New("SAMPLE_QUANTUM: must be positive"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL: must be positive"))
	}
	if c.StrictTokens && c.AuthHMACSecret == "" {
		errs = append(errs, errors.New("AUTH_HMAC_SECRET: required when STRICT_TOKENS is on"))
	}
	if c.Mode == ModeOnline && (c.AuthHMACSecret == "" || c.AuthHMACSecret == DefaultHMACSecret) {
		errs = append(errs, errors.New("AUTH_HMAC_SECRET: must be set in online mode"))
	}
	return errors.Join(errs...)
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt(k string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return n
}
func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return d
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
