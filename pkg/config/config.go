package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

const (
	SettingsBackendDatabase = "database"
	SettingsBackendFile     = "file"

	DefaultListen   = "127.0.0.1:8091"
	DefaultDatabase = "diary.db"
	DefaultDebounce = 250 * time.Millisecond
)

type Config struct {
	StorageDir      string       `toml:"storage_dir"`
	Database        string       `toml:"database"`
	Timezone        string       `toml:"timezone"`
	SettingsBackend string       `toml:"settings_backend"`
	SettingsFile    string       `toml:"settings_file,omitempty"`
	Server          ServerConfig `toml:"server"`
	Watch           WatchConfig  `toml:"watch"`
}

type ServerConfig struct {
	Listen string `toml:"listen"`
}

type WatchConfig struct {
	Debounce Duration `toml:"debounce"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func GetDefaultConfig() (*Config, error) {
	c := &Config{}
	if err := c.applyDefaults(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadConfig reads the file at configPath. A missing file yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := config.applyDefaults(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() error {
	if c.StorageDir == "" {
		storageDir, err := GetDefaultStorageDir()
		if err != nil {
			return fmt.Errorf("getting default storage directory: %w", err)
		}
		c.StorageDir = storageDir
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.SettingsBackend == "" {
		c.SettingsBackend = SettingsBackendDatabase
	}
	if c.SettingsBackend == SettingsBackendFile && c.SettingsFile == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return err
		}
		c.SettingsFile = filepath.Join(configDir, "settings.toml")
	}
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	if c.Watch.Debounce.Duration <= 0 {
		c.Watch.Debounce = Duration{DefaultDebounce}
	}
	return nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.SettingsBackend {
	case SettingsBackendDatabase, SettingsBackendFile:
	default:
		return fmt.Errorf("unknown settings_backend %q (want %q or %q)", c.SettingsBackend, SettingsBackendDatabase, SettingsBackendFile)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// DatabasePath returns the absolute path of the diary database.
func (c *Config) DatabasePath() string {
	if filepath.IsAbs(c.Database) {
		return c.Database
	}
	return filepath.Join(c.StorageDir, c.Database)
}

// Location resolves the configured time zone. Empty means time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template, err := c.generateConfigTemplate()
	if err != nil {
		return fmt.Errorf("generating config template: %w", err)
	}
	return os.WriteFile(configPath, []byte(template), 0644)
}

func (c *Config) generateConfigTemplate() (string, error) {
	storageDir := c.StorageDir
	if storageDir == "" {
		var err error
		storageDir, err = GetDefaultStorageDir()
		if err != nil {
			return "", fmt.Errorf("getting default storage directory: %w", err)
		}
	}

	// Replace the placeholder storage_dir with the actual path
	template := strings.Replace(configTemplate, "/home/user/.local/share/pocketdiary", storageDir, 1)
	return template, nil
}

// GetDefaultStorageDir returns the default storage directory for the database
func GetDefaultStorageDir() (string, error) {
	// Use XDG_DATA_HOME if set, otherwise use ~/.local/share
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	dir := filepath.Join(dataDir, "pocketdiary")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetConfigDir returns the configuration directory for pocketdiary
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, "pocketdiary")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
