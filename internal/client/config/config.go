package config

import "time"

// Config holds runtime settings for the Krypton CLI.
//
// Fields:
//   - ServerURL: base URL of the REST API.
//   - RequestTimeout: upper bound for a single API call.
//   - Style: table rendering style ("auto", "dark", "light", "notty", ...).
//     "auto" picks dark on a terminal and notty otherwise.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	Style          string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:5000"
	c.RequestTimeout = 15 * time.Second
	c.Style = "auto"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
