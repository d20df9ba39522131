// Package config provides configuration management for the platform SDK.
//
// This package defines the Config structure that controls SDK behavior: the
// credential used to talk to the platform, logging verbosity and timeouts.
//
// # Basic Configuration
//
// The minimum required configuration is a token and the platform URL:
//
//	cfg := &config.Config{
//		Credential: config.Credential{
//			Token:   "YOUR_TOKEN",
//			BaseURL: "https://api.example.org/community/v0.3",
//		},
//	}
//
// Validate must succeed before the configuration is used. It trims trailing
// slashes from BaseURL so that request paths can be appended verbatim.
//
// # Loading From File and Environment
//
// Load reads an optional YAML, JSON or TOML file and then ADAMA_* variables:
//
//	ADAMA_TOKEN                   bearer token
//	ADAMA_URL                     platform base URL
//	ADAMA_DEBUG                   verbose logging
//	ADAMA_USER_AGENT              User-Agent override
//	ADAMA_TIMEOUTS_HTTP           per-request timeout (e.g. "10s")
//	ADAMA_TIMEOUTS_REGISTER       registration budget (e.g. "2m")
//	ADAMA_TIMEOUTS_POLL_INTERVAL  registration poll interval (e.g. "500ms")
//
// Example file:
//
//	token: YOUR_TOKEN
//	url: https://api.example.org/community/v0.3
//	debug: true
//	timeouts:
//	  register: 2m
//
// # Timeouts
//
// Zero timeouts are replaced by defaults in Timeouts.WithDefaults:
//
//	HTTP:         30s
//	Register:     60s
//	PollInterval: 500ms
//
// The registration poll interval is what bounds the overrun of a blocking
// registration: a timed-out registration returns no later than
// Register + PollInterval after it was submitted.
package config
