// Package config handles the configuration directory and the YAML config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "daybook"

	// ConfigFile is the config filename inside the config directory.
	ConfigFile = "config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. DAYBOOK_STORAGE_BACKEND.
	EnvPrefix = "DAYBOOK"
)

// DefaultKey is the storage key holding the task collection
const DefaultKey = "daybook.tasks"

// Storage backends
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config is the full daybook configuration
type Config struct {
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	LLM     LLMConfig     `yaml:"llm" mapstructure:"llm"`
	REPL    REPLConfig    `yaml:"repl" mapstructure:"repl"`

	// Dir is the configuration directory. Not read from the file.
	Dir string `yaml:"-" mapstructure:"-"`
}

// StorageConfig selects where the task collection is persisted
type StorageConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"`
	// Path is the data directory for the file backend or the database file for sqlite
	Path string `yaml:"path" mapstructure:"path"`
	DSN  string `yaml:"dsn" mapstructure:"dsn"`
	Key  string `yaml:"key" mapstructure:"key"`
}

// LLMConfig configures the chat assistant
type LLMConfig struct {
	Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int32   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
}

// REPLConfig configures the interactive prompt
type REPLConfig struct {
	HistoryFile string `yaml:"history_file" mapstructure:"history_file"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendFile,
			Key:     DefaultKey,
		},
		LLM: LLMConfig{
			Enabled:     true,
			Model:       "gemini-2.5-flash",
			MaxTokens:   8192,
			Temperature: 0.7,
		},
		Dir: DefaultDir(),
	}
}

// DefaultDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultPath returns the default config file path
func DefaultPath() string {
	return filepath.Join(DefaultDir(), ConfigFile)
}

// Load reads the config file at path on top of the defaults and applies
// DAYBOOK_* environment overrides. An empty path means DefaultPath. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	cfg.Dir = filepath.Dir(path)

	v := viper.New()
	setDefaults(v, cfg)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("storage.dsn", cfg.Storage.DSN)
	v.SetDefault("storage.key", cfg.Storage.Key)
	v.SetDefault("llm.enabled", cfg.LLM.Enabled)
	v.SetDefault("llm.model", cfg.LLM.Model)
	v.SetDefault("llm.max_tokens", cfg.LLM.MaxTokens)
	v.SetDefault("llm.temperature", cfg.LLM.Temperature)
	v.SetDefault("repl.history_file", cfg.REPL.HistoryFile)
}

// Validate checks the values that have a fixed set of choices
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	case BackendPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage backend %q requires storage.dsn", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q (want file, sqlite, postgres or memory)", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return fmt.Errorf("storage.key must not be empty")
	}
	return nil
}

// DataPath returns where the configured backend keeps its data
func (c *Config) DataPath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	switch c.Storage.Backend {
	case BackendSQLite:
		return filepath.Join(c.Dir, "daybook.db")
	default:
		return filepath.Join(c.Dir, "data")
	}
}

// HistoryPath returns the REPL history file path
func (c *Config) HistoryPath() string {
	if c.REPL.HistoryFile != "" {
		return c.REPL.HistoryFile
	}
	return filepath.Join(c.Dir, "history")
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// Marshal renders the config as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteDefault writes the default configuration to path. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := Default().Marshal()
	if err != nil {
		return err
	}
	header := "# daybook configuration\n# storage.backend: file | sqlite | postgres | memory\n"
	return os.WriteFile(path, append([]byte(header), data...), 0600)
}
