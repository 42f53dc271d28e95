package config

import (
	"flag"

	"github.com/dmitrijs2005/cmiyc/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string    HTTP bind address (e.g. ":8080")
//	-d string    PostgreSQL DSN
//	-s string    session token HMAC secret
//	-secure      mark the session cookie Secure
//	-rl float    auth endpoints rate, requests per second per IP (0 disables)
//	-rb int      auth endpoints burst
//	-proxies     trusted reverse proxy CIDRs, comma-separated
//
// args are first filtered with flagx.FilterArgs so that -c/-config and flags
// of other components do not collide.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-secure", "-rl", "-rb", "-proxies"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "session token secret key")
	fs.BoolVar(&config.CookieSecure, "secure", config.CookieSecure, "set Secure on the session cookie")
	fs.Float64Var(&config.AuthRateLimit, "rl", config.AuthRateLimit, "auth endpoints rate limit (req/s per IP)")
	fs.IntVar(&config.AuthRateBurst, "rb", config.AuthRateBurst, "auth endpoints burst")
	fs.Func("proxies", "trusted reverse proxy CIDRs, comma-separated", func(v string) error {
		config.TrustedProxies = splitList(v)
		return nil
	})

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
