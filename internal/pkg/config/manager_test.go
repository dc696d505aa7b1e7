package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genNonEmptyAlphaString generates non-empty lowercase strings with length
// between min and max. Avoids the high discard rate of SuchThat filters.
func genNonEmptyAlphaString(minLen, maxLen int) gopter.Gen {
	return gen.IntRange(minLen, maxLen).FlatMap(func(length interface{}) gopter.Gen {
		n := length.(int)
		return gen.SliceOfN(n, gen.Rune()).Map(func(runes []rune) string {
			for i := range runes {
				runes[i] = 'a' + (runes[i] % 26)
			}
			return string(runes)
		})
	}, reflect.TypeOf(""))
}

// Property: for any configuration key with values at multiple levels, the
// highest priority source wins. Priority order: flags > env > file > defaults.
func TestConfigPrecedence_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(42)

	properties := gopter.NewProperties(parameters)

	properties.Property("env vars override file values for provider.name", prop.ForAll(
		func(fileValue, envValue string) bool {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")

			mgr, err := NewManager(configPath)
			if err != nil {
				t.Logf("Failed to create manager: %v", err)
				return false
			}
			if err := mgr.Init(); err != nil {
				t.Logf("Failed to init config: %v", err)
				return false
			}
			if err := mgr.Set("provider.name", fileValue); err != nil {
				t.Logf("Failed to set file value: %v", err)
				return false
			}

			os.Setenv("COMMITCRAFT_PROVIDER_NAME", envValue)
			defer os.Unsetenv("COMMITCRAFT_PROVIDER_NAME")

			mgr2, err := NewManager(configPath)
			if err != nil {
				t.Logf("Failed to create second manager: %v", err)
				return false
			}
			cfg, err := mgr2.Load()
			if err != nil {
				t.Logf("Failed to load config: %v", err)
				return false
			}

			return cfg.Provider.Name == envValue
		},
		genNonEmptyAlphaString(3, 15),
		genNonEmptyAlphaString(3, 15),
	))

	properties.Property("file values override defaults for provider.model", prop.ForAll(
		func(fileValue string) bool {
			os.Unsetenv("COMMITCRAFT_PROVIDER_MODEL")

			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")

			mgr, err := NewManager(configPath)
			if err != nil {
				t.Logf("Failed to create manager: %v", err)
				return false
			}
			if err := mgr.Init(); err != nil {
				t.Logf("Failed to init config: %v", err)
				return false
			}
			if err := mgr.Set("provider.model", fileValue); err != nil {
				t.Logf("Failed to set file value: %v", err)
				return false
			}

			cfg, err := mgr.Load()
			if err != nil {
				t.Logf("Failed to load config: %v", err)
				return false
			}

			return cfg.Provider.Model == fileValue
		},
		genNonEmptyAlphaString(3, 25),
	))

	properties.Property("SetOverride (flags) override env and file values", prop.ForAll(
		func(fileValue, envValue, flagValue string) bool {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")

			mgr, err := NewManager(configPath)
			if err != nil {
				t.Logf("Failed to create manager: %v", err)
				return false
			}
			if err := mgr.Init(); err != nil {
				t.Logf("Failed to init config: %v", err)
				return false
			}
			if err := mgr.Set("provider.name", fileValue); err != nil {
				t.Logf("Failed to set file value: %v", err)
				return false
			}

			os.Setenv("COMMITCRAFT_PROVIDER_NAME", envValue)
			defer os.Unsetenv("COMMITCRAFT_PROVIDER_NAME")

			mgr2, err := NewManager(configPath)
			if err != nil {
				t.Logf("Failed to create second manager: %v", err)
				return false
			}
			mgr2.SetOverride("provider.name", flagValue)

			cfg, err := mgr2.Load()
			if err != nil {
				t.Logf("Failed to load config: %v", err)
				return false
			}

			return cfg.Provider.Name == flagValue
		},
		genNonEmptyAlphaString(3, 15),
		genNonEmptyAlphaString(3, 15),
		genNonEmptyAlphaString(3, 15),
	))

	properties.Property("env override holds for numeric config values", prop.ForAll(
		func(envValue int) bool {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")

			os.Setenv("COMMITCRAFT_PROVIDER_MAX_TOKENS", strconv.Itoa(envValue))
			defer os.Unsetenv("COMMITCRAFT_PROVIDER_MAX_TOKENS")

			mgr, err := NewManager(configPath)
			if err != nil {
				t.Logf("Failed to create manager: %v", err)
				return false
			}
			cfg, err := mgr.Load()
			if err != nil {
				t.Logf("Failed to load config: %v", err)
				return false
			}

			return cfg.Provider.MaxTokens == envValue
		},
		gen.IntRange(100, 1000),
	))

	properties.TestingRun(t)
}

func TestDefaults(t *testing.T) {
	os.Unsetenv("COMMITCRAFT_PROVIDER_NAME")
	os.Unsetenv("COMMITCRAFT_PROVIDER_MODEL")

	tmpDir := t.TempDir()
	mgr, err := NewManager(filepath.Join(tmpDir, "config.yaml"))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	cfg, err := mgr.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider.Name != "openrouter" {
		t.Errorf("Provider.Name = %q, want openrouter", cfg.Provider.Name)
	}
	if cfg.Provider.Temperature != 0.7 {
		t.Errorf("Provider.Temperature = %v, want 0.7", cfg.Provider.Temperature)
	}
	if cfg.Provider.MaxTokens != 500 {
		t.Errorf("Provider.MaxTokens = %d, want 500", cfg.Provider.MaxTokens)
	}
	if cfg.Git.DiffSizeThreshold != 10240 {
		t.Errorf("Git.DiffSizeThreshold = %d, want 10240", cfg.Git.DiffSizeThreshold)
	}
	if cfg.Generation.Count != 1 {
		t.Errorf("Generation.Count = %d, want 1", cfg.Generation.Count)
	}
	if cfg.Security.WarningAcknowledged {
		t.Error("Security.WarningAcknowledged should default to false")
	}
}

// SetOverride must only affect the current execution, never the file.
func TestSetOverrideDoesNotPersist(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	mgr, err := NewManager(configPath)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := mgr.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if err := mgr.Set("provider.name", "openai"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	mgr.SetOverride("provider.name", "deepseek")

	cfg, err := mgr.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider.Name != "deepseek" {
		t.Errorf("Provider.Name = %q, want the override", cfg.Provider.Name)
	}

	mgr2, err := NewManager(configPath)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	cfg2, err := mgr2.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg2.Provider.Name != "openai" {
		t.Errorf("override persisted to file: Provider.Name = %q", cfg2.Provider.Name)
	}
}

func TestInit(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".commitcraft", "config.yaml")

	mgr, err := NewManager(configPath)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := mgr.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %o, want 0600", info.Mode().Perm())
	}

	if err := mgr.Init(); err == nil {
		t.Error("Init() on an existing file should fail")
	}
}

func TestCustomConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	customPath := filepath.Join(tmpDir, "custom.yaml")

	customMgr, err := NewManager(customPath)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := customMgr.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := customMgr.Set("provider.name", "ollama"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	loadMgr, err := NewManager(customPath)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	cfg, err := loadMgr.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider.Name != "ollama" {
		t.Errorf("Provider.Name = %q, want ollama", cfg.Provider.Name)
	}
}

func TestGetAndList(t *testing.T) {
	tmpDir := t.TempDir()
	mgr, err := NewManager(filepath.Join(tmpDir, "config.yaml"))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := mgr.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	got, err := mgr.Get("provider.name")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "openrouter" {
		t.Errorf("Get(provider.name) = %q", got)
	}

	if _, err := mgr.Get("no.such.key"); err == nil {
		t.Error("Get() on an unknown key should fail")
	}

	settings := mgr.List()
	if _, ok := settings["provider"]; !ok {
		t.Errorf("List() = %v, missing provider section", settings)
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sk-or-v1-abcdef1234", "****************1234"},
		{"abcd", "****"},
		{"", "****"},
	}

	for _, tt := range tests {
		if got := MaskAPIKey(tt.in); got != tt.want {
			t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// Property: completing the host check persists across manager instances and
// creates the config file when missing.
func TestHostCheckDonePersistence_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(42)

	properties := gopter.NewProperties(parameters)

	properties.Property("SetHostCheckDone then IsHostCheckDone returns true", prop.ForAll(
		func(_ int) bool {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, ".commitcraft", "config.yaml")

			mgr, err := NewManager(configPath)
			if err != nil {
				t.Logf("Failed to create manager: %v", err)
				return false
			}

			if mgr.IsHostCheckDone() {
				t.Logf("Expected IsHostCheckDone to be false initially")
				return false
			}
			if err := mgr.SetHostCheckDone(); err != nil {
				t.Logf("Failed to set host check done: %v", err)
				return false
			}
			return mgr.IsHostCheckDone()
		},
		gen.Int(),
	))

	properties.Property("host_check_done persists across manager instances", prop.ForAll(
		func(_ int) bool {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, ".commitcraft", "config.yaml")

			mgr1, err := NewManager(configPath)
			if err != nil {
				t.Logf("Failed to create first manager: %v", err)
				return false
			}
			if err := mgr1.SetHostCheckDone(); err != nil {
				t.Logf("Failed to set host check done: %v", err)
				return false
			}

			mgr2, err := NewManager(configPath)
			if err != nil {
				t.Logf("Failed to create second manager: %v", err)
				return false
			}
			return mgr2.IsHostCheckDone()
		},
		gen.Int(),
	))

	properties.Property("SetHostCheckDone creates config file if not exists", prop.ForAll(
		func(_ int) bool {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, ".commitcraft", "config.yaml")

			if _, err := os.Stat(configPath); !os.IsNotExist(err) {
				t.Logf("Config file should not exist initially")
				return false
			}

			mgr, err := NewManager(configPath)
			if err != nil {
				t.Logf("Failed to create manager: %v", err)
				return false
			}
			if err := mgr.SetHostCheckDone(); err != nil {
				t.Logf("Failed to set host check done: %v", err)
				return false
			}

			_, err = os.Stat(configPath)
			return err == nil
		},
		gen.Int(),
	))

	properties.TestingRun(t)
}

func TestAcknowledgeSecurityWarning(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	mgr, err := NewManager(configPath)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := mgr.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if mgr.IsSecurityWarningAcknowledged() {
		t.Error("warning should not be acknowledged initially")
	}
	if err := mgr.AcknowledgeSecurityWarning(); err != nil {
		t.Fatalf("AcknowledgeSecurityWarning() error = %v", err)
	}
	if !mgr.IsSecurityWarningAcknowledged() {
		t.Error("warning should be acknowledged after AcknowledgeSecurityWarning")
	}
}
