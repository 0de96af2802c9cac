package config

import (
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPIBase(); err != nil {
		return err
	}
	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("poll_interval_seconds must be positive, got %d", c.PollIntervalSeconds)
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive, got %d", c.RequestTimeoutSeconds)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateAPIBase() error {
	u, err := url.Parse(c.APIBase)
	if err != nil {
		return fmt.Errorf("api_base: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_base: scheme must be http or https, got %q", c.APIBase)
	}
	if u.Host == "" {
		return fmt.Errorf("api_base: missing host in %q", c.APIBase)
	}
	return nil
}
