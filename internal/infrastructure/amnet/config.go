package amnet

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config holds the endpoint and credentials of one AM.net environment
type Config struct {
	// BaseURL is the API root, e.g. https://vscpa.amnet.example/api
	BaseURL string
	// User and Key are sent as HTTP basic credentials
	User string
	Key  string
	// Timeout bounds each HTTP request
	Timeout time.Duration
	// MaxRetries is how many times an idempotent request is repeated after
	// AM.net reports itself unavailable
	MaxRetries int
	// RetryBackoff is the wait before the first retry; it doubles per attempt
	RetryBackoff time.Duration
}

// Errors for AM.net configuration
var (
	ErrConfigMissingBaseURL = errors.New("amnet: base URL is required")
	ErrConfigInvalidBaseURL = errors.New("amnet: base URL is invalid")
	ErrConfigMissingUser    = errors.New("amnet: user is required")
	ErrConfigMissingKey     = errors.New("amnet: key is required")
)

// Validate checks the configuration and fills defaults
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrConfigMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrConfigInvalidBaseURL
	}
	if c.User == "" {
		return ErrConfigMissingUser
	}
	if c.Key == "" {
		return ErrConfigMissingKey
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 500 * time.Millisecond
	}
	return nil
}
