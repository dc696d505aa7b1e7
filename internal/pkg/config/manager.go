package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// ConfigLoadTimeout is the timeout for loading configuration.
	ConfigLoadTimeout = 100 * time.Millisecond
)

// ViperManager implements the Manager interface using Viper.
type ViperManager struct {
	v          *viper.Viper
	configPath string
}

// NewManager creates a new configuration manager.
// If configPath is empty, it uses the default path (~/.commitcraft/config.yaml).
// A .env file in the working directory is loaded first so credentials kept
// there are visible to the environment lookups; existing variables win.
func NewManager(configPath string) (*ViperManager, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(homeDir, ".commitcraft", "config.yaml")
	}

	v.SetConfigFile(configPath)

	v.SetEnvPrefix("COMMITCRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults must exist before env binding works for nested keys.
	setDefaults(v)
	bindEnvVars(v)

	return &ViperManager{
		v:          v,
		configPath: configPath,
	}, nil
}

// bindEnvVars explicitly binds environment variables for all config keys.
// AutomaticEnv alone does not pick up nested keys reliably.
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("provider.name", "COMMITCRAFT_PROVIDER_NAME")
	_ = v.BindEnv("provider.api_key", "COMMITCRAFT_PROVIDER_API_KEY")
	_ = v.BindEnv("provider.model", "COMMITCRAFT_PROVIDER_MODEL")
	_ = v.BindEnv("provider.endpoint", "COMMITCRAFT_PROVIDER_ENDPOINT")
	_ = v.BindEnv("provider.temperature", "COMMITCRAFT_PROVIDER_TEMPERATURE")
	_ = v.BindEnv("provider.max_tokens", "COMMITCRAFT_PROVIDER_MAX_TOKENS")
	_ = v.BindEnv("provider.timeout_seconds", "COMMITCRAFT_PROVIDER_TIMEOUT_SECONDS")

	_ = v.BindEnv("git.diff_size_threshold", "COMMITCRAFT_GIT_DIFF_SIZE_THRESHOLD")

	_ = v.BindEnv("ui.editor", "COMMITCRAFT_UI_EDITOR")
	_ = v.BindEnv("ui.color_enabled", "COMMITCRAFT_UI_COLOR_ENABLED")
	_ = v.BindEnv("ui.spinner_style", "COMMITCRAFT_UI_SPINNER_STYLE")

	_ = v.BindEnv("generation.gitmoji", "COMMITCRAFT_GENERATION_GITMOJI")
	_ = v.BindEnv("generation.count", "COMMITCRAFT_GENERATION_COUNT")

	_ = v.BindEnv("security.warning_acknowledged", "COMMITCRAFT_SECURITY_WARNING_ACKNOWLEDGED")
	_ = v.BindEnv("security.host_check_done", "COMMITCRAFT_SECURITY_HOST_CHECK_DONE")
}

// setDefaults sets the default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("provider.name", "openrouter")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.model", "")
	v.SetDefault("provider.endpoint", "")
	v.SetDefault("provider.temperature", 0.7)
	v.SetDefault("provider.max_tokens", 500)
	v.SetDefault("provider.timeout_seconds", 0)

	v.SetDefault("git.diff_size_threshold", 10240) // 10KB
	v.SetDefault("git.exclude_patterns", []string{
		"*.lock",
		"go.sum",
		"package-lock.json",
		"yarn.lock",
		"pnpm-lock.yaml",
		"Cargo.lock",
	})

	v.SetDefault("ui.editor", "")
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.spinner_style", "dots")

	v.SetDefault("generation.gitmoji", false)
	v.SetDefault("generation.count", 1)

	v.SetDefault("security.warning_acknowledged", false)
	v.SetDefault("security.host_check_done", false)
}

// GetConfigPath returns the path to the configuration file.
func (m *ViperManager) GetConfigPath() string {
	return m.configPath
}

// Load loads the configuration from file, environment, and defaults.
// Priority: flags > env > file > defaults
func (m *ViperManager) Load() (*Config, error) {
	if err := m.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadWithTimeout loads the configuration with a timeout so a slow or
// wedged filesystem cannot stall startup.
func (m *ViperManager) LoadWithTimeout(ctx context.Context) (*Config, error) {
	ctx, cancel := context.WithTimeout(ctx, ConfigLoadTimeout)
	defer cancel()

	type result struct {
		cfg *Config
		err error
	}
	ch := make(chan result, 1)

	go func() {
		cfg, err := m.Load()
		ch <- result{cfg, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("config loading timed out after %v", ConfigLoadTimeout)
	case r := <-ch:
		return r.cfg, r.err
	}
}

// Init creates a new configuration file with default values.
// Sets file permissions to 0600 because the file may hold an API key.
func (m *ViperManager) Init() error {
	if _, err := os.Stat(m.configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", m.configPath)
	}

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := m.v.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Chmod(m.configPath, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// Save saves the configuration to file.
func (m *ViperManager) Save(config *Config) error {
	m.v.Set("provider", config.Provider)
	m.v.Set("git", config.Git)
	m.v.Set("ui", config.UI)
	m.v.Set("generation", config.Generation)
	m.v.Set("security", config.Security)

	if err := m.v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Set sets a configuration value by key.
// Supports nested keys using dot notation (e.g., "provider.name").
func (m *ViperManager) Set(key string, value string) error {
	if err := m.v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	existingValue := m.v.Get(key)
	convertedValue, err := convertValue(value, existingValue)
	if err != nil {
		return fmt.Errorf("failed to convert value for key %s: %w", key, err)
	}

	m.v.Set(key, convertedValue)

	if err := m.v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// convertValue converts a string value to the type of the existing value.
func convertValue(value string, existingValue interface{}) (interface{}, error) {
	if existingValue == nil {
		return value, nil
	}

	switch existingValue.(type) {
	case bool:
		return strconv.ParseBool(value)
	case int, int64:
		return strconv.ParseInt(value, 10, 64)
	case float32, float64:
		return strconv.ParseFloat(value, 64)
	case []interface{}, []string:
		return strings.Split(value, ","), nil
	default:
		return value, nil
	}
}

// Get retrieves a configuration value by key.
func (m *ViperManager) Get(key string) (string, error) {
	if err := m.v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read config file: %w", err)
		}
	}

	value := m.v.Get(key)
	if value == nil {
		return "", fmt.Errorf("key not found: %s", key)
	}

	return fmt.Sprintf("%v", value), nil
}

// List returns all configuration values as a map.
func (m *ViperManager) List() map[string]interface{} {
	_ = m.v.ReadInConfig()
	return m.v.AllSettings()
}

// SetOverride sets a temporary override for a configuration key.
// Used for command-line flag overrides that shouldn't persist.
func (m *ViperManager) SetOverride(key string, value interface{}) {
	m.v.Set(key, value)
}

// MaskAPIKey masks an API key, showing only the last 4 characters.
func MaskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// ConfigExists checks if the configuration file exists.
func (m *ViperManager) ConfigExists() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}

// AcknowledgeSecurityWarning marks the security warning as acknowledged.
func (m *ViperManager) AcknowledgeSecurityWarning() error {
	return m.Set("security.warning_acknowledged", "true")
}

// IsSecurityWarningAcknowledged checks if the security warning has been acknowledged.
func (m *ViperManager) IsSecurityWarningAcknowledged() bool {
	_ = m.v.ReadInConfig()
	return m.v.GetBool("security.warning_acknowledged")
}

// SetHostCheckDone marks the local Ollama detection as completed so it only
// runs once on first execution. Creates the config file if needed.
func (m *ViperManager) SetHostCheckDone() error {
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		f, err := os.OpenFile(m.configPath, os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		f.Close()
	}

	return m.Set("security.host_check_done", "true")
}

// IsHostCheckDone checks if the local Ollama detection has been performed.
func (m *ViperManager) IsHostCheckDone() bool {
	_ = m.v.ReadInConfig()
	return m.v.GetBool("security.host_check_done")
}
