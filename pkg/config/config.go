// Package config defines the runtime configuration for the SDK: the platform
// credential (bearer token and base URL), debug mode, user agent and operation
// timeouts. It also provides validation, defaulting and loading helpers.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by Load
// (ADAMA_TOKEN, ADAMA_URL, ADAMA_DEBUG, ...).
const EnvPrefix = "ADAMA"

// DefaultUserAgent is sent when Config.UserAgent is empty.
const DefaultUserAgent = "adama-sdk-go"

// Credential is the opaque bearer token plus the base URL of the platform.
// It is copied into the SDK at construction and never mutated afterwards.
type Credential struct {
	// Token is sent as "Authorization: Bearer <Token>" on every request.
	Token string `json:"token" yaml:"token" mapstructure:"token"`
	// BaseURL is the platform API root, e.g. https://api.example.org/community/v0.3
	BaseURL string `json:"url" yaml:"url" mapstructure:"url"`
}

// Config holds all SDK settings required to build a platform client.
// Use Validate to normalize it and check for required fields.
type Config struct {
	Credential `mapstructure:",squash" yaml:",inline"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug" mapstructure:"debug"`
	// UserAgent overrides the User-Agent header. Default: DefaultUserAgent.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
	// Timeouts configures per-operation deadlines. See Timeouts.WithDefaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts" mapstructure:"timeouts"`
}

// Timeouts controls SDK operation deadlines.
// Zero values will be replaced by defaults in WithDefaults.
type Timeouts struct {
	HTTP         time.Duration `json:"http" yaml:"http" mapstructure:"http"`                            // single request round trip
	Register     time.Duration `json:"register" yaml:"register" mapstructure:"register"`                // blocking registration budget
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval" mapstructure:"poll_interval"` // sleep between registration polls
}

// Validate verifies that a token and an http(s) base URL are present and
// strips trailing slashes from the base URL. It also fills UserAgent.
func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("platform token is required")
	}
	if c.BaseURL == "" {
		return errors.New("platform url is required")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid platform url %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid platform url %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid platform url %q: missing host", c.BaseURL)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return nil
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	HTTP:         30s
//	Register:     60s
//	PollInterval: 500ms
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.HTTP == 0 {
		tt.HTTP = 30 * time.Second
	}
	if tt.Register == 0 {
		tt.Register = 60 * time.Second
	}
	if tt.PollInterval == 0 {
		tt.PollInterval = 500 * time.Millisecond
	}
	return tt
}

// Load builds a Config from an optional file and ADAMA_* environment
// variables. Environment values override the file. An empty path skips the
// file. The result is validated and has default timeouts applied.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{"token", "url", "debug", "user_agent", "timeouts.http", "timeouts.register", "timeouts.poll_interval"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Timeouts = cfg.Timeouts.WithDefaults()
	return &cfg, nil
}
