package config

const (
	defaultConfigPath            = "~/.config/shorts-studio/config.toml"
	projectConfigName            = "shorts-studio.toml"
	defaultAPIBase               = "http://localhost:8000"
	defaultPollIntervalSeconds   = 3
	defaultRequestTimeoutSeconds = 15
	defaultDownloadDir           = "~/Videos/shorts-studio"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		APIBase:               defaultAPIBase,
		PollIntervalSeconds:   defaultPollIntervalSeconds,
		RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		DownloadDir:           defaultDownloadDir,
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
