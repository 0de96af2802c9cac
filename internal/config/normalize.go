package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables that override the config file. NEXT_PUBLIC_API_BASE
// is honoured so a .env shared with the web front-end keeps working.
const (
	EnvAPIBase        = "SHORTS_API_BASE"
	EnvWebAPIBase     = "NEXT_PUBLIC_API_BASE"
	EnvPollInterval   = "SHORTS_POLL_INTERVAL"
	EnvRequestTimeout = "SHORTS_REQUEST_TIMEOUT"
	EnvDownloadDir    = "SHORTS_DOWNLOAD_DIR"
	EnvLogLevel       = "SHORTS_LOG_LEVEL"
	EnvLogFormat      = "SHORTS_LOG_FORMAT"
)

func (c *Config) applyEnv() error {
	if value, ok := lookupEnv(EnvAPIBase); ok {
		c.APIBase = value
	} else if value, ok := lookupEnv(EnvWebAPIBase); ok {
		c.APIBase = value
	}
	if value, ok := lookupEnv(EnvPollInterval); ok {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: expected whole seconds, got %q", EnvPollInterval, value)
		}
		c.PollIntervalSeconds = n
	}
	if value, ok := lookupEnv(EnvRequestTimeout); ok {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: expected whole seconds, got %q", EnvRequestTimeout, value)
		}
		c.RequestTimeoutSeconds = n
	}
	if value, ok := lookupEnv(EnvDownloadDir); ok {
		c.DownloadDir = value
	}
	if value, ok := lookupEnv(EnvLogLevel); ok {
		c.Logging.Level = value
	}
	if value, ok := lookupEnv(EnvLogFormat); ok {
		c.Logging.Format = value
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func (c *Config) normalize() error {
	c.APIBase = strings.TrimRight(strings.TrimSpace(c.APIBase), "/")
	if c.APIBase == "" {
		c.APIBase = defaultAPIBase
	}
	if strings.TrimSpace(c.DownloadDir) == "" {
		c.DownloadDir = defaultDownloadDir
	}
	var err error
	if c.DownloadDir, err = expandPath(c.DownloadDir); err != nil {
		return fmt.Errorf("download_dir: %w", err)
	}
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console", "text":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
