package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultConfigPath  = "config.toml"
	DefaultHTTPAddr    = ":8080"
	DefaultStorageRoot = "photos"
)

type Config struct {
	Log     LogConfig     `toml:"log"`
	Server  ServerConfig  `toml:"server"`
	Line    LineConfig    `toml:"line"`
	Storage StorageConfig `toml:"storage"`
	GCS     GCSConfig     `toml:"gcs"`
	API     APIConfig     `toml:"api"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LineConfig holds the messaging channel credentials. Both values are
// required; the service cannot verify webhook signatures or call the
// platform API without them.
type LineConfig struct {
	ChannelToken  string `toml:"channel_token" validate:"required"`
	ChannelSecret string `toml:"channel_secret" validate:"required"`
}

type StorageConfig struct {
	Root string `toml:"root" validate:"required"`
}

// GCSConfig enables mirroring to object storage when Bucket is set.
type GCSConfig struct {
	Bucket string `toml:"bucket"`
}

// APIConfig guards the read endpoints. Key is required once GCS mirroring
// is enabled, since that is the only deployment where the read API serves.
type APIConfig struct {
	Key string `toml:"key"`
}

// Mirrored reports whether object-storage mirroring is configured.
func (c Config) Mirrored() bool {
	return c.GCS.Bucket != ""
}

// Load reads the TOML config at path (DefaultConfigPath when empty),
// applies environment overrides for secrets, and validates the result.
// A missing file is not an error; missing required values are.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Storage: StorageConfig{
			Root: DefaultStorageRoot,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv lets deployment environments (Railway, Cloud Run) inject secrets
// without a config file. Environment values win over file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("LINE_CHANNEL_TOKEN"); v != "" {
		cfg.Line.ChannelToken = v
	}
	if v := os.Getenv("LINE_CHANNEL_SECRET"); v != "" {
		cfg.Line.ChannelSecret = v
	}
	if v := os.Getenv("GCS_BUCKET"); v != "" {
		cfg.GCS.Bucket = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.API.Key = v
	}
	if v := os.Getenv("STORAGE_ROOT"); v != "" {
		cfg.Storage.Root = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
}

// Validate checks required fields. Fail startup rather than run with a
// token or secret that silently breaks signature checks.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Mirrored() && c.API.Key == "" {
		return fmt.Errorf("config: api.key is required when gcs.bucket is set")
	}
	return nil
}
