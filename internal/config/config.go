package config

import (
	"fmt"
	"os"
	"strconv"
)

type SMTPConfig struct {
	Host          string
	Port          string
	User          string
	Pass          string
	From          string
	FromName      string
	TLSMode       string // "", "tls", "starttls"
	SkipVerifyTLS bool
}

type Config struct {
	Addr          string
	DSN           string
	PickupCodeLen int
	SMTP          SMTPConfig
}

// Load reads configuration from the environment. DB_DSN is the only hard
// requirement; everything else has a local-dev default.
func Load() (Config, error) {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		return Config{}, fmt.Errorf("config: DB_DSN environment variable is required")
	}

	cfg := Config{
		Addr:          getenv("ADDR", ":8080"),
		DSN:           dsn,
		PickupCodeLen: getenvInt("PICKUP_CODE_LEN", 6),
		SMTP: SMTPConfig{
			Host:          getenv("SMTP_HOST", "localhost"),
			Port:          getenv("SMTP_PORT", "1025"),
			User:          os.Getenv("SMTP_USER"),
			Pass:          os.Getenv("SMTP_PASS"),
			From:          getenv("SMTP_FROM", "no-reply@mealrelay.org"),
			FromName:      getenv("SMTP_FROM_NAME", "MealRelay"),
			TLSMode:       os.Getenv("SMTP_TLS_MODE"),
			SkipVerifyTLS: os.Getenv("SMTP_TLS_SKIP_VERIFY") == "true",
		},
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}
