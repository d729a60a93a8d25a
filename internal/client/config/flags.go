package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/staffdesk/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string     API base URL
//	-d string     SQLite database path
//	-t duration   session TTL, e.g. 30m
//	-l string     log level
//
// Only these flags are considered; see flagx.FilterArgs. The crypto key is
// deliberately not accepted on the command line.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-t", "-l"})

	fs := flag.NewFlagSet("staffdesk", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database")
	fs.DurationVar(&cfg.SessionTTL, "t", cfg.SessionTTL, "session lifetime")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	return fs.Parse(args)
}
