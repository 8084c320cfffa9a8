package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/noteauth/internal/flagx"
	"github.com/dmitrijs2005/noteauth/internal/timex"
)

// JsonConfig mirrors Config for JSON files; durations accept "15m" as well
// as integer nanoseconds. Absent fields leave the current value untouched.
type JsonConfig struct {
	EndpointAddrGRPC             *string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP             *string         `json:"endpoint_addr_http"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	AccessTokenSecret            *string         `json:"access_token_secret"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenSecret           *string         `json:"refresh_token_secret"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	BcryptCost                   *int            `json:"bcrypt_cost"`
	UserServiceURL               *string         `json:"user_service_url"`
	UserServiceTimeout           *timex.Duration `json:"user_service_timeout"`
	ServiceName                  *string         `json:"service_name"`
	OTelEndpoint                 *string         `json:"otel_endpoint"`
	LogLevel                     *string         `json:"log_level"`
}

// parseJson overlays the JSON file named by -c/-config in args. No flag
// means nothing to load; an unreadable or invalid file panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.AccessTokenSecret, c.AccessTokenSecret)
	setString(&config.RefreshTokenSecret, c.RefreshTokenSecret)
	setString(&config.UserServiceURL, c.UserServiceURL)
	setString(&config.ServiceName, c.ServiceName)
	setString(&config.OTelEndpoint, c.OTelEndpoint)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.UserServiceTimeout != nil {
		config.UserServiceTimeout = c.UserServiceTimeout.Duration
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
