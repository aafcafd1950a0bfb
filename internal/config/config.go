package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// AppConfig holds process-level settings for talking to the captioning
// service. Values come from an optional YAML file with environment
// overrides.
type AppConfig struct {
	BaseURL       string        `yaml:"base_url" env:"CAPTION_BASE_URL" env-default:"http://127.0.0.1:8000"`
	PollInterval  time.Duration `yaml:"poll_interval" env:"CAPTION_POLL_INTERVAL" env-default:"1s"`
	HTTPTimeout   time.Duration `yaml:"http_timeout" env:"CAPTION_HTTP_TIMEOUT" env-default:"30s"`
	UploadTimeout time.Duration `yaml:"upload_timeout" env:"CAPTION_UPLOAD_TIMEOUT" env-default:"10m"`
	MaxUploadMB   int64         `yaml:"max_upload_mb" env:"CAPTION_MAX_UPLOAD_MB" env-default:"250"`
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c AppConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}

// LoadAppConfig reads configuration from path when the file exists,
// otherwise from environment variables and defaults alone.
func LoadAppConfig(path string) (AppConfig, error) {
	var cfg AppConfig

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return AppConfig{}, fmt.Errorf("read config %s: %w", path, err)
			}
			return cfg, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return AppConfig{}, fmt.Errorf("stat config %s: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("read env config: %w", err)
	}
	return cfg, nil
}
