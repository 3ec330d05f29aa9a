package config

import (
	"encoding/json"
	"os"

	"github.com/dsavelev/authkeeper/internal/flagx"
	"github.com/dsavelev/authkeeper/internal/timex"
)

// JsonConfig is the DTO for reading JSON configuration files. Interval
// fields use timex.Duration so both "8h" strings and integer nanosecond
// values parse. After unmarshalling, values are copied into Config.
type JsonConfig struct {
	EndpointAddr                      string         `json:"endpoint_addr"`
	DatabaseDSN                       string         `json:"database_dsn"`
	SecretKey                         string         `json:"secret_key"`
	AccessTokenValidityDuration       timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration      timex.Duration `json:"refresh_token_validity_duration"`
	VerificationTokenValidityDuration timex.Duration `json:"verification_token_validity_duration"`
	ResetTokenValidityDuration        timex.Duration `json:"reset_token_validity_duration"`
	MaxLoginAttempts                  int            `json:"max_login_attempts"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into cfg. Without the flag nothing is loaded. An
// unreadable or invalid file panics: a config file that was explicitly
// requested must not be silently skipped.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		cfg.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		cfg.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		cfg.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		cfg.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration != 0 {
		cfg.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.VerificationTokenValidityDuration.Duration != 0 {
		cfg.VerificationTokenValidityDuration = c.VerificationTokenValidityDuration.Duration
	}
	if c.ResetTokenValidityDuration.Duration != 0 {
		cfg.ResetTokenValidityDuration = c.ResetTokenValidityDuration.Duration
	}
	if c.MaxLoginAttempts != 0 {
		cfg.MaxLoginAttempts = c.MaxLoginAttempts
	}
}
