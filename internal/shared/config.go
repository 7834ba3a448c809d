package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	APIBaseURL string
	APITimeout time.Duration
	APIRPS     int

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration
	// SessionTTL bounds how long a token's user stays cached.
	SessionTTL time.Duration

	MySQLDSN string

	// OfflineFallback makes a failed create-booking call still show a
	// confirmation with a locally generated id. Off by default.
	OfflineFallback bool

	ReconcileWorkers  int
	ReconcileBatch    int
	ReconcileAPIToken string
}

// Load reads the environment, after merging an optional .env file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env could not be parsed")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:            env("APP_ENV", "prod"),
		LogLevel:          env("LOG_LEVEL", "info"),
		HTTPAddr:          env("HTTP_ADDR", ":3000"),
		MetricsAddr:       env("METRICS_ADDR", ""),
		APIBaseURL:        env("API_BASE_URL", "http://localhost:8080/api"),
		APITimeout:        time.Duration(atoi("API_TIMEOUT_SECONDS", 10)) * time.Second,
		APIRPS:            atoi("API_RPS", 20),
		RedisAddr:         env("REDIS_ADDR", "localhost:6379"),
		RedisPass:         env("REDIS_PASSWORD", ""),
		RedisDB:           atoi("REDIS_DB", 0),
		CacheTTL:          time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		SessionTTL:        time.Duration(atoi("SESSION_CACHE_TTL_SECONDS", 1800)) * time.Second,
		MySQLDSN:          env("MYSQL_DSN", ""),
		OfflineFallback:   boolEnv("BOOKING_OFFLINE_FALLBACK", false),
		ReconcileWorkers:  atoi("RECONCILE_WORKERS", 4),
		ReconcileBatch:    atoi("RECONCILE_BATCH", 100),
		ReconcileAPIToken: env("RECONCILE_API_TOKEN", ""),
	}
	if c.ReconcileWorkers < 1 {
		log.Warn().Int("value", c.ReconcileWorkers).Msg("RECONCILE_WORKERS below 1; using 1")
		c.ReconcileWorkers = 1
	}
	if c.OfflineFallback {
		log.Warn().Msg("BOOKING_OFFLINE_FALLBACK is on: failed bookings will show a local confirmation")
	}
	if c.OfflineFallback && c.MySQLDSN == "" {
		log.Warn().Msg("offline fallback without MYSQL_DSN: synthesized bookings will not be journaled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func boolEnv(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("not a boolean; using default")
		return def
	}
	return b
}
