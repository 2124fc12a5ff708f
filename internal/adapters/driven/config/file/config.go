package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
)

// Environment variables carrying the API credentials.
const (
	EnvAppID  = "MATHPIX_APP_ID"
	EnvAppKey = "MATHPIX_APP_KEY"
)

// Config is the loaded tool configuration. Credentials come from the
// environment, everything else from the TOML file with defaults applied.
type Config struct {
	// AppID and AppKey are the API credentials, environment-only.
	AppID  string `toml:"-"`
	AppKey string `toml:"-"`

	// OutDir is the default output directory. Empty means next to each
	// source document.
	OutDir string `toml:"out_dir"`

	// AnonymiseUploads replaces upload filenames with generated ones.
	AnonymiseUploads bool `toml:"anonymise_uploads"`

	// Fallback overrides the poll timing of the download fallback.
	Fallback FallbackSettings `toml:"fallback"`

	// Options is merged over the default conversion options.
	Options map[string]any `toml:"options"`
}

// FallbackSettings carries the poll timing overrides, in seconds.
type FallbackSettings struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
	PollCeilingSeconds  int `toml:"poll_ceiling_seconds"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		AnonymiseUploads: true,
		Fallback: FallbackSettings{
			PollIntervalSeconds: 5,
			PollCeilingSeconds:  300,
		},
	}
}

// Load reads configuration from configDir (default ~/.pagestream) and
// the environment. A missing config file is not an error; a malformed
// one is.
func Load(configDir string) (Config, error) {
	// Best effort: a .env in the working directory may carry the keys.
	_ = godotenv.Load()

	cfg := defaultConfig()

	path, err := configPath(configDir)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file yet, defaults apply.
	case err != nil:
		return Config{}, fmt.Errorf("reading config file: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	cfg.AppID = os.Getenv(EnvAppID)
	cfg.AppKey = os.Getenv(EnvAppKey)

	return cfg, nil
}

// ConversionOptions returns the default conversion options overlaid
// with the file's options table.
func (c Config) ConversionOptions() domain.Options {
	opts := domain.DefaultOptions()
	for k, v := range c.Options {
		opts[k] = v
	}
	return opts
}

// PollInterval returns the fallback poll interval.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Fallback.PollIntervalSeconds) * time.Second
}

// PollCeiling returns the fallback poll ceiling.
func (c Config) PollCeiling() time.Duration {
	return time.Duration(c.Fallback.PollCeilingSeconds) * time.Second
}

// configPath resolves the config file location.
func configPath(configDir string) (string, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".pagestream")
	}
	return filepath.Join(configDir, "config.toml"), nil
}
