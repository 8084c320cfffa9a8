package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/noteauth/internal/flagx"
)

// parseFlags overlays command-line flags:
//
//	-a  string  gRPC bind address
//	-w  string  HTTP bind address
//	-d  string  PostgreSQL DSN
//	-s  string  access token secret
//	-rs string  refresh token secret
//	-t  int     access token validity, minutes
//	-r  int     refresh token validity, minutes
//	-b  int     bcrypt cost
//	-u  string  user service base URL
//	-l  string  log level
//
// Unknown flags are filtered out first so they can belong to other consumers.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, "a", "w", "d", "s", "rs", "t", "r", "b", "u", "l")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AccessTokenSecret, "s", config.AccessTokenSecret, "access token secret")
	fs.StringVar(&config.RefreshTokenSecret, "rs", config.RefreshTokenSecret, "refresh token secret")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidity := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.UserServiceURL, "u", config.UserServiceURL, "user service base URL")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only flags actually given override durations, so sub-minute values
	// from JSON or env survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidity) * time.Minute
		}
	})
}
