package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_parseEnv(t *testing.T) {
	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("AUTHKEEPER_ADDR", ":7070")
		t.Setenv("AUTHKEEPER_SECRET_KEY", "env-secret")
		t.Setenv("AUTHKEEPER_REFRESH_TOKEN_VALIDITY", "45m")
		t.Setenv("AUTHKEEPER_MAX_LOGIN_ATTEMPTS", "7")

		cfg := &Config{}
		cfg.LoadDefaults()
		parseEnv(cfg)

		assert.Equal(t, ":7070", cfg.EndpointAddr)
		assert.Equal(t, "env-secret", cfg.SecretKey)
		assert.Equal(t, 45*time.Minute, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, 7, cfg.MaxLoginAttempts)
		// untouched values survive
		assert.Equal(t, 8*time.Hour, cfg.AccessTokenValidityDuration)
	})

	t.Run("malformed values are ignored", func(t *testing.T) {
		t.Setenv("AUTHKEEPER_ACCESS_TOKEN_VALIDITY", "soon")
		t.Setenv("AUTHKEEPER_MAX_LOGIN_ATTEMPTS", "-1")

		cfg := &Config{}
		cfg.LoadDefaults()
		parseEnv(cfg)

		assert.Equal(t, 8*time.Hour, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 3, cfg.MaxLoginAttempts)
	})
}
