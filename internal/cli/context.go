package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"shorts-studio/internal/config"
	"shorts-studio/internal/logging"
	"shorts-studio/internal/media"
	"shorts-studio/internal/studio"
	"shorts-studio/internal/studioapi"
)

type commandContext struct {
	configFlag  *string
	apiBaseFlag *string
	jsonFlag    *bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	logCloser io.Closer
}

func newCommandContext(configFlag, apiBaseFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		apiBaseFlag: apiBaseFlag,
		jsonFlag:    jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if err := config.LoadDotEnv("."); err != nil {
			c.configErr = err
			return
		}
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.apiBaseFlag != nil && strings.TrimSpace(*c.apiBaseFlag) != "" {
			cfg.APIBase = strings.TrimRight(strings.TrimSpace(*c.apiBaseFlag), "/")
			if err := cfg.Validate(); err != nil {
				c.configErr = fmt.Errorf("--api-base: %w", err)
				return
			}
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) client() (*studioapi.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return studioapi.NewClient(cfg.APIBase, studioapi.WithTimeout(cfg.RequestTimeout())), nil
}

func (c *commandContext) resolver() media.Resolver {
	cfg, err := c.ensureConfig()
	if err != nil {
		return media.NewResolver(studioapi.DefaultBaseURL)
	}
	return media.NewResolver(cfg.APIBase)
}

// logger builds the command logger once. fallback receives output when no
// log file is configured; nil discards it.
func (c *commandContext) logger(fallback io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, closer, err := logging.NewFromConfig(cfg, fallback)
	if err != nil {
		return nil, err
	}
	c.logCloser = closer
	return logger, nil
}

// synchronizer wires the API client into a synchronizer for commands that
// need reconciliation or review semantics.
func (c *commandContext) synchronizer(fallback io.Writer) (*studio.Synchronizer, error) {
	client, err := c.client()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger(fallback)
	if err != nil {
		return nil, err
	}
	return studio.NewSynchronizer(client,
		studio.WithInterval(c.config.PollInterval()),
		studio.WithLogger(logger),
	), nil
}

func (c *commandContext) close() error {
	if c.logCloser == nil {
		return nil
	}
	err := c.logCloser.Close()
	c.logCloser = nil
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
