package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	JWTAccessSecret    []byte
	JWTRefreshSecret   []byte
	RegistrationSecret []byte

	KafkaBrokers []string
	RedisURL     string

	VerificationCodeTTL        time.Duration
	VerificationMaxAttempts    int
	VerificationResendInterval time.Duration

	CookieSecure bool
	CSRFEnabled  bool
}

func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}

	access := []byte(os.Getenv("JWT_SECRET"))

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "cafe"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: EnvDefault("DATABASE_URL", "cafe.db"),

		JWTAccessSecret:    access,
		JWTRefreshSecret:   []byte(os.Getenv("JWT_REFRESH_SECRET")),
		RegistrationSecret: []byte(EnvDefault("REGISTRATION_SECRET", string(access))),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		RedisURL:     os.Getenv("REDIS_URL"),

		VerificationCodeTTL:        EnvDurationDefault("VERIFICATION_CODE_TTL", 10*time.Minute),
		VerificationMaxAttempts:    EnvIntDefault("VERIFICATION_MAX_ATTEMPTS", 5),
		VerificationResendInterval: EnvDurationDefault("VERIFICATION_RESEND_INTERVAL", 30*time.Second),

		CookieSecure: EnvBoolDefault("COOKIE_SECURE", true),
		CSRFEnabled:  EnvBoolDefault("CSRF_ENABLED", true),
	}
}

// MustLoad is Load plus the checks every serving process needs.
func MustLoad() Config {
	cfg := Load()

	MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	MustNonEmptyBytes(cfg.JWTRefreshSecret, "JWT_REFRESH_SECRET")

	return cfg
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
