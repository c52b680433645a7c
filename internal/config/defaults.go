package config

import (
	"os"
	"path/filepath"
)

const (
	defaultFetchTimeoutSeconds = 5
	defaultMaxImageBytes       = 8 << 20
	defaultMaxSpeakers         = 2
	defaultNtfyTimeoutSeconds  = 10
)

// Default returns a configuration populated with baseline values.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir(),
			LogDir:  defaultLogDir(),
		},
		Media: Media{
			FetchTimeout: defaultFetchTimeoutSeconds,
			MaxBytes:     defaultMaxImageBytes,
		},
		Intake: Intake{
			MaxSpeakers: defaultMaxSpeakers,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeoutSeconds,
			Ingested:       true,
			Confirmations:  true,
			Errors:         true,
		},
		Logging: Logging{
			Format: "text",
			Level:  "info",
		},
	}
}

func defaultDataDir() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && base != "" {
		return filepath.Join(base, "greenroom")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.local/share/greenroom"
	}
	return filepath.Join(home, ".local", "share", "greenroom")
}

func defaultLogDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && base != "" {
		return filepath.Join(base, "greenroom")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.local/state/greenroom"
	}
	return filepath.Join(home, ".local", "state", "greenroom")
}
