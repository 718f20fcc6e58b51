package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port     int    `yaml:"port" json:"port"`
		DataDir  string `yaml:"data_dir" json:"data_dir"`
		LogLevel string `yaml:"log_level" json:"log_level"`
	} `yaml:"app" json:"app"`

	Auth struct {
		// Name of the environment variable holding the HS256 signing
		// secret shared with the identity provider.
		SecretEnv string `yaml:"secret_env" json:"secret_env"`
	} `yaml:"auth" json:"auth"`

	Provider struct {
		BaseURL        string  `yaml:"base_url" json:"base_url"`
		Host           string  `yaml:"host" json:"host"`
		KeyEnv         string  `yaml:"key_env" json:"key_env"`
		TimeoutSeconds int     `yaml:"timeout_seconds" json:"timeout_seconds"`
		RequestsPerSec float64 `yaml:"requests_per_sec" json:"requests_per_sec"`
		Burst          int     `yaml:"burst" json:"burst"`
	} `yaml:"provider" json:"provider"`

	Sync struct {
		Queries    []string `yaml:"queries" json:"queries"`
		Schedule   string   `yaml:"schedule" json:"schedule"` // cron spec
		RunOnStart bool     `yaml:"run_on_start" json:"run_on_start"`
	} `yaml:"sync" json:"sync"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
