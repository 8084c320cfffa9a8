package config

import (
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/noteauth/internal/timex"
)

// parseEnv overlays variables named by the env tags on Config. Unset
// variables keep the current value. Durations take Go syntax or a day
// suffix ("168h", "7d").
func parseEnv(config *Config) {
	opts := env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(time.Duration(0)): func(v string) (any, error) {
				return timex.ParseDuration(v)
			},
		},
	}
	if err := env.ParseWithOptions(config, opts); err != nil {
		panic(err)
	}
}
