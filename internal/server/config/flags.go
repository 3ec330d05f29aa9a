package config

import (
	"flag"
	"os"
	"time"

	"github.com/dsavelev/authkeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-v int      verification token validity, minutes
//	-p int      password reset token validity, minutes
//	-m int      max failed login attempts before lockout
//
// os.Args is first filtered to only the flags recognized here (via
// flagx.FilterArgs) so that the -c/-config flags of the JSON stage do
// not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-v", "-p", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidity := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")
	verificationTokenValidity := fs.Int("v", int(config.VerificationTokenValidityDuration.Minutes()), "verification token validity (in minutes)")
	resetTokenValidity := fs.Int("p", int(config.ResetTokenValidityDuration.Minutes()), "password reset token validity (in minutes)")

	fs.IntVar(&config.MaxLoginAttempts, "m", config.MaxLoginAttempts, "max failed login attempts before lockout")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidity) * time.Minute
	config.VerificationTokenValidityDuration = time.Duration(*verificationTokenValidity) * time.Minute
	config.ResetTokenValidityDuration = time.Duration(*resetTokenValidity) * time.Minute
}
