package config

import (
	"fmt"
)

type Config struct {
	Server  ServerConfig
	Gemini  GeminiConfig
	OMDB    OMDBConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OMDBConfig struct {
	APIKey string
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON config file at
// $XDG_CONFIG_HOME/reelist/config.json and applies REELIST_* environment
// variable overrides on top. Secrets (API keys) are never stored in the
// config file; they come from the secrets file or environment.
//
// The Gemini API key is required: recommendation generation cannot work
// without it. The OMDb API key is optional — without it the enricher runs
// in metadata-unavailable mode and every lookup resolves to "absent".
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()), secretsFile{})
}

// secrets abstracts the secret store for testing.
type secrets interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, sec secrets) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// Fall back to the secrets file for API keys still empty.
	if cfg.Gemini.APIKey == "" {
		if key, err := sec.Get("reelist", "gemini_api_key"); err == nil && key != "" {
			cfg.Gemini.APIKey = key
		}
	}
	if cfg.OMDB.APIKey == "" {
		if key, err := sec.Get("reelist", "omdb_api_key"); err == nil && key != "" {
			cfg.OMDB.APIKey = key
		}
	}

	if cfg.Gemini.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: Gemini API key. " +
			"Set it via environment variable REELIST_GEMINI_API_KEY")
	}

	return cfg, nil
}
