package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	_ "embed"
)

//go:embed config.sample.yaml
var sampleConfig []byte

const (
	ConfigDirName  = "todosync"
	ConfigFileName = "config.yaml"
	configDirPerm  = 0755
	configFilePerm = 0644
)

// Config represents the application configuration.
type Config struct {
	Server struct {
		URL string `yaml:"url" validate:"required,url"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Sync struct {
		Auto          bool `yaml:"auto"`
		ProbeInterval int  `yaml:"probe_interval" validate:"gte=1"`
	} `yaml:"sync"`
}

// DefaultPath returns the XDG-compliant config file path.
func DefaultPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, ConfigDirName, ConfigFileName), nil
}

// Load reads, env-expands, and validates the config at path. An empty
// path means the default location; a missing file there is seeded from
// the embedded sample so a first run works out of the box.
func Load(path string) (*Config, error) {
	var err error
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			if err := writeSample(path); err != nil {
				return nil, err
			}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Replace ${NAME} placeholders from the environment.
	content := string(data)
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		placeholder := "${" + pair[0] + "}"
		content = strings.ReplaceAll(content, placeholder, pair[1])
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.Sync.ProbeInterval == 0 {
		cfg.Sync.ProbeInterval = 30
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// DatabasePath returns the configured database file path, defaulting
// to the XDG data directory.
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	dataDir = filepath.Join(dataDir, ConfigDirName)
	if err := os.MkdirAll(dataDir, configDirPerm); err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "tasks.db"), nil
}

func writeSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), configDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, sampleConfig, configFilePerm); err != nil {
		return fmt.Errorf("failed to write sample config: %w", err)
	}
	return nil
}
