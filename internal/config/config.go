package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maximbilan/qianxun/internal/provider"
	"github.com/spf13/viper"
)

const (
	// ConfigDirPerm is the permission for the config directory (0700 = rwx------)
	ConfigDirPerm os.FileMode = 0700
	// ConfigFilePerm is the permission for the config file (0600 = rw-------)
	// The file holds provider API keys.
	ConfigFilePerm os.FileMode = 0600

	dirName  = ".qianxun"
	fileName = "config.yaml"
)

type Config struct {
	APIBaseURL            string                       `mapstructure:"api_base_url"`
	NavPath               string                       `mapstructure:"nav_path"`
	DefaultModel          string                       `mapstructure:"default_model"`
	OpenAIAPIKey          string                       `mapstructure:"openai_api_key"`
	DeepSeekAPIKey        string                       `mapstructure:"deepseek_api_key"`
	AnthropicAPIKey       string                       `mapstructure:"anthropic_api_key"`
	Providers             map[string]provider.Override `mapstructure:"providers"`
	Theme                 string                       `mapstructure:"theme"`
	ToastDurationMs       int                          `mapstructure:"toast_duration_ms"`
	RateLimitEnabled      bool                         `mapstructure:"rate_limit_enabled"`
	RateLimitRequests     int                          `mapstructure:"rate_limit_requests"`
	RateLimitWindow       int                          `mapstructure:"rate_limit_window_seconds"`
	RequestTimeoutSeconds int                          `mapstructure:"request_timeout_seconds"`
	LogFile               string                       `mapstructure:"log_file"`
}

// APIKeys maps provider keys to the API keys configured for them.
func (c *Config) APIKeys() map[string]string {
	return map[string]string{
		provider.ChatGPT:  c.OpenAIAPIKey,
		provider.DeepSeek: c.DeepSeekAPIKey,
		provider.Claude:   c.AnthropicAPIKey,
	}
}

// Dir returns the directory holding the config file.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

func setDefaults() {
	viper.SetDefault("api_base_url", "http://localhost:3009")
	viper.SetDefault("nav_path", "/api/sites")
	viper.SetDefault("default_model", provider.DeepSeek)
	viper.SetDefault("theme", "dark")
	viper.SetDefault("toast_duration_ms", 3000)
	viper.SetDefault("rate_limit_enabled", true)
	viper.SetDefault("rate_limit_requests", 20)
	viper.SetDefault("rate_limit_window_seconds", 60)
	viper.SetDefault("request_timeout_seconds", 30)
	viper.SetDefault("log_file", "")
}

func Load() (*Config, error) {
	configPath, err := Dir()
	if err != nil {
		return nil, err
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No file yet: defaults only.
		if err := os.MkdirAll(configPath, ConfigDirPerm); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}

func Save(cfg *Config) error {
	configPath, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(configPath, ConfigDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.Set("api_base_url", cfg.APIBaseURL)
	viper.Set("nav_path", cfg.NavPath)
	viper.Set("default_model", cfg.DefaultModel)
	viper.Set("openai_api_key", cfg.OpenAIAPIKey)
	viper.Set("deepseek_api_key", cfg.DeepSeekAPIKey)
	viper.Set("anthropic_api_key", cfg.AnthropicAPIKey)
	viper.Set("theme", cfg.Theme)
	viper.Set("toast_duration_ms", cfg.ToastDurationMs)
	viper.Set("rate_limit_enabled", cfg.RateLimitEnabled)
	viper.Set("rate_limit_requests", cfg.RateLimitRequests)
	viper.Set("rate_limit_window_seconds", cfg.RateLimitWindow)
	viper.Set("request_timeout_seconds", cfg.RequestTimeoutSeconds)
	viper.Set("log_file", cfg.LogFile)
	if len(cfg.Providers) > 0 {
		providers := make(map[string]any, len(cfg.Providers))
		for key, o := range cfg.Providers {
			providers[key] = map[string]any{"url": o.URL, "model": o.Model}
		}
		viper.Set("providers", providers)
	}

	configFile := filepath.Join(configPath, fileName)
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Chmod(configFile, ConfigFilePerm); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

func Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("config key cannot be empty")
	}

	key = strings.TrimSpace(key)
	if strings.ContainsAny(key, " \t\n\r") {
		return fmt.Errorf("config key contains invalid characters")
	}

	configPath, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(configPath, ConfigDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)

	// Missing file is fine; it is created below.
	_ = viper.ReadInConfig()

	viper.Set(key, value)

	configFile := filepath.Join(configPath, fileName)
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Chmod(configFile, ConfigFilePerm); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

func Get(key string) interface{} {
	if key == "" {
		return nil
	}

	configPath, err := Dir()
	if err != nil {
		return nil
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	setDefaults()
	_ = viper.ReadInConfig()
	return viper.Get(key)
}
