package config

import (
	"errors"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config is the environment-level configuration. CLI flags override it.
type Config struct {
	Dir           string `env:"DRAFTPAD_DIR"`
	Locale        string `env:"DRAFTPAD_LOCALE"`
	LogLevel      string `env:"DRAFTPAD_LOG_LEVEL" envDefault:"info"`
	MaxTopics     int    `env:"DRAFTPAD_MAX_TOPICS" envDefault:"0"`
	ImageMaxBytes int64  `env:"DRAFTPAD_IMAGE_MAX_BYTES" envDefault:"10485760"`
	Theme         string `env:"DRAFTPAD_THEME" envDefault:"auto"`
	NoColor       bool   `env:"DRAFTPAD_NO_COLOR"`
}

// Load reads optional dotenv files (default ".env" in the working directory)
// and then parses the environment. Variables already set win over dotenv values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if strings.TrimSpace(f) == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Theme = strings.ToLower(strings.TrimSpace(cfg.Theme))
	return cfg, nil
}
