package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/noteauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags. Only
// -a, -t and -s are looked at; anything else on the command line is left for
// other parsers.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, "a", "t", "s")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.SessionFile, "s", cfg.SessionFile, "session file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
