package config

import (
	"strconv"
	"strings"
)

const (
	envAddr         = "CMIYC_ADDR"
	envDatabaseDSN  = "CMIYC_DATABASE_DSN"
	envSecretKey    = "CMIYC_SECRET_KEY"
	envCookieSecure = "CMIYC_COOKIE_SECURE"
	envProxies      = "CMIYC_TRUSTED_PROXIES"
)

// parseEnv overlays values from the environment. lookup is os.LookupEnv in
// production. Unparseable booleans are ignored. CMIYC_TRUSTED_PROXIES is a
// comma-separated list of CIDRs.
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(envAddr); ok && v != "" {
		config.EndpointAddrHTTP = v
	}
	if v, ok := lookup(envDatabaseDSN); ok && v != "" {
		config.DatabaseDSN = v
	}
	if v, ok := lookup(envSecretKey); ok && v != "" {
		config.SecretKey = v
	}
	if v, ok := lookup(envCookieSecure); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			config.CookieSecure = b
		}
	}
	if v, ok := lookup(envProxies); ok && v != "" {
		config.TrustedProxies = splitList(v)
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
