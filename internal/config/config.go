package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"verdant/internal/eventbus"
)

// Config represents the application configuration
type Config struct {
	Version    int        `toml:"version"`
	ServerURL  string     `toml:"server_url"`
	LoginPath  string     `toml:"login_path"`
	Timezone   string     `toml:"timezone"` // IANA name; empty means local zone
	UISettings UISettings `toml:"ui"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowCareTimes      bool `toml:"show_care_times"`
	ConfirmBulkActions bool `toml:"confirm_bulk_actions"`
	ShowArchived       bool `toml:"show_archived"`
}

// Service handles configuration management
type Service interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// service is the concrete implementation
type service struct {
	bus      eventbus.EventBus
	filePath string
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Version:   1,
		ServerURL: "http://localhost:8000",
		LoginPath: "/accounts/login/",
		UISettings: UISettings{
			ShowCareTimes:      true,
			ConfirmBulkActions: true,
		},
	}
}

// Dir returns the verdant config directory, creating it if needed.
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	dir := filepath.Join(configDir, "verdant")
	os.MkdirAll(dir, 0o755)
	return dir
}

// NewService creates a new config service
func NewService() Service {
	return &service{
		filePath: filepath.Join(Dir(), "config.toml"),
	}
}

// NewServiceAt creates a config service backed by a specific file
func NewServiceAt(path string) Service {
	return &service{filePath: path}
}

// NewServiceWithBus creates a config service with event bus support
func NewServiceWithBus(bus eventbus.EventBus) Service {
	cs := NewService().(*service)
	cs.bus = bus
	return cs
}

// Path returns the path of the active config file
func (cs *service) Path() string {
	return cs.filePath
}

// Load loads the configuration from the default path
func (cs *service) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		// Return default config if file doesn't exist
		cfg := DefaultConfig()
		cs.publishLoaded(cfg)
		return cfg, nil
	}
	return cs.LoadFromPath(cs.filePath)
}

// Save saves the configuration to the default path
func (cs *service) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// LoadFromPath loads configuration from a specific path
func (cs *service) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.LoginPath == "" {
		cfg.LoginPath = DefaultConfig().LoginPath
	}

	cs.publishLoaded(&cfg)
	return &cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *service) SaveToPath(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{})
	}

	return nil
}

func (cs *service) publishLoaded(cfg *Config) {
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{ServerURL: cfg.ServerURL})
	}
}
