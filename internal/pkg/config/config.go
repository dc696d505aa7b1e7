// Package config provides configuration management for CommitCraft.
package config

// Config represents the complete CommitCraft configuration.
type Config struct {
	Provider   ProviderConfig   `mapstructure:"provider"`
	Git        GitConfig        `mapstructure:"git"`
	UI         UIConfig         `mapstructure:"ui"`
	Generation GenerationConfig `mapstructure:"generation"`
	Security   SecurityConfig   `mapstructure:"security"`
}

// ProviderConfig contains AI provider settings.
type ProviderConfig struct {
	Name           string  `mapstructure:"name"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	Endpoint       string  `mapstructure:"endpoint"`
	Temperature    float32 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// GitConfig contains Git-related settings.
type GitConfig struct {
	DiffSizeThreshold int      `mapstructure:"diff_size_threshold"`
	ExcludePatterns   []string `mapstructure:"exclude_patterns"`
}

// UIConfig contains UI-related settings.
type UIConfig struct {
	Editor       string `mapstructure:"editor"`
	ColorEnabled bool   `mapstructure:"color_enabled"`
	SpinnerStyle string `mapstructure:"spinner_style"`
}

// GenerationConfig contains commit message generation settings.
type GenerationConfig struct {
	// Gitmoji asks providers to prefix the header with a gitmoji.
	Gitmoji bool `mapstructure:"gitmoji"`
	// Count is the number of candidate messages to generate.
	Count int `mapstructure:"count"`
}

// SecurityConfig contains security-related settings.
type SecurityConfig struct {
	// WarningAcknowledged indicates if the user has acknowledged the first-use security warning.
	WarningAcknowledged bool `mapstructure:"warning_acknowledged"`
	// HostCheckDone indicates the local Ollama detection already ran once.
	HostCheckDone bool `mapstructure:"host_check_done"`
}

// Manager defines the interface for configuration management.
type Manager interface {
	Load() (*Config, error)
	Save(config *Config) error
	Set(key string, value string) error
	Get(key string) (string, error)
	Init() error
	List() map[string]interface{}
	GetConfigPath() string
}
