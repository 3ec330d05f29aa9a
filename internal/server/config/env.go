package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from the process environment. A .env
// file in the working directory is merged in first without overriding
// variables that are already set. Duration variables use Go duration
// syntax ("8h", "90m").
//
// Variables: AUTHKEEPER_ADDR, AUTHKEEPER_DATABASE_DSN,
// AUTHKEEPER_SECRET_KEY, AUTHKEEPER_ACCESS_TOKEN_VALIDITY,
// AUTHKEEPER_REFRESH_TOKEN_VALIDITY, AUTHKEEPER_VERIFICATION_TOKEN_VALIDITY,
// AUTHKEEPER_RESET_TOKEN_VALIDITY, AUTHKEEPER_MAX_LOGIN_ATTEMPTS.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("AUTHKEEPER_ADDR"); v != "" {
		cfg.EndpointAddr = v
	}
	if v := os.Getenv("AUTHKEEPER_DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("AUTHKEEPER_SECRET_KEY"); v != "" {
		cfg.SecretKey = v
	}
	overlayDuration(&cfg.AccessTokenValidityDuration, "AUTHKEEPER_ACCESS_TOKEN_VALIDITY")
	overlayDuration(&cfg.RefreshTokenValidityDuration, "AUTHKEEPER_REFRESH_TOKEN_VALIDITY")
	overlayDuration(&cfg.VerificationTokenValidityDuration, "AUTHKEEPER_VERIFICATION_TOKEN_VALIDITY")
	overlayDuration(&cfg.ResetTokenValidityDuration, "AUTHKEEPER_RESET_TOKEN_VALIDITY")
	if v := os.Getenv("AUTHKEEPER_MAX_LOGIN_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxLoginAttempts = n
		}
	}
}

func overlayDuration(dst *time.Duration, name string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}
