// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Feed describes the upstream tick source and the symbols to subscribe to.
// The API token is never stored in YAML; it comes from the FINNHUB_TOKEN
// environment variable, optionally hydrated from a .env file.
type Feed struct {
	Provider string   `yaml:"provider"`
	URL      string   `yaml:"url"`
	Symbols  []string `yaml:"symbols"`
	Token    string   `yaml:"-"`
}

// Storage locates the data root under which the per-kind directories live.
type Storage struct {
	DataDir string `yaml:"data_dir"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App     App     `yaml:"app"`
	Feed    Feed    `yaml:"feed"`
	Storage Storage `yaml:"storage"`
}

// Load reads a YAML file from disk and hydrates a Config struct, then pulls
// the feed token from the environment (a .env file is honored when present).
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	_ = godotenv.Load()
	config.Feed.Token = os.Getenv("FINNHUB_TOKEN")

	if config.Storage.DataDir == "" {
		config.Storage.DataDir = "data"
	}
	if len(config.Feed.Symbols) == 0 {
		return nil, fmt.Errorf("no symbols configured")
	}
	return &config, nil
}
