package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/cmiyc/internal/flagx"
	"github.com/dmitrijs2005/cmiyc/internal/timex"
	"gopkg.in/yaml.v3"
)

// JsonConfig is the on-disk shape of the config file, JSON or YAML. Pointer
// fields keep keys that are absent from the file from overwriting earlier
// values.
type JsonConfig struct {
	EndpointAddrHTTP *string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	DatabaseDSN      *string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey        *string         `json:"secret_key" yaml:"secret_key"`
	CookieSecure     *bool           `json:"cookie_secure" yaml:"cookie_secure"`
	AuthRateLimit    *float64        `json:"auth_rate_limit" yaml:"auth_rate_limit"`
	AuthRateBurst    *int            `json:"auth_rate_burst" yaml:"auth_rate_burst"`
	TrustedProxies   []string        `json:"trusted_proxies" yaml:"trusted_proxies"`
	ShutdownTimeout  *timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// parseJson overlays values from the file named by -c/-config. Files ending
// in .yaml or .yml are read as YAML, anything else as JSON. Without the flag
// nothing is loaded. An unreadable or undecodable file panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(file, c)
	default:
		err = json.Unmarshal(file, c)
	}
	if err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != nil {
		config.EndpointAddrHTTP = *c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.AuthRateLimit != nil {
		config.AuthRateLimit = *c.AuthRateLimit
	}
	if c.AuthRateBurst != nil {
		config.AuthRateBurst = *c.AuthRateBurst
	}
	if c.TrustedProxies != nil {
		config.TrustedProxies = c.TrustedProxies
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}
