package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	xdgAppName = "taskboard"
	configFile = "config.json"

	BackendGitHub  = "github"
	BackendOffline = "offline"
)

type Config struct {
	// Backend is "github" or "offline".
	Backend string `json:"backend"`
	// Repository is "owner/name".
	Repository string `json:"repository,omitempty"`
	APIURL     string `json:"apiUrl,omitempty"`
	// Calendar, when set, mirrors due dates into this Google Calendar.
	Calendar      string `json:"calendar,omitempty"`
	OfflinePath   string `json:"offlinePath,omitempty"`
	LogFile       string `json:"logFile,omitempty"`
	LogLevel      string `json:"logLevel,omitempty"`
	SweepSchedule string `json:"sweepSchedule,omitempty"`
}

// Dir is the directory holding config, tokens, and local state.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, xdgAppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

// Path returns the path of a file inside Dir.
func Path(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func Default() *Config {
	cfg := &Config{
		Backend:       BackendGitHub,
		LogLevel:      "info",
		SweepSchedule: "@hourly",
	}
	if p, err := Path("board.json"); err == nil {
		cfg.OfflinePath = p
	}
	if p, err := Path("taskboard.log"); err == nil {
		cfg.LogFile = p
	}
	return cfg
}

// Load reads the config file, then a .env file in the working directory if
// present, then environment overrides. A missing config file is not an error.
func Load() (*Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	applyEnv(cfg)

	if cfg.Backend == "" {
		cfg.Backend = BackendGitHub
	}
	return cfg, nil
}

// LoadFile returns the defaults overlaid with the config file only.
func LoadFile() (*Config, error) {
	cfg := Default()

	path, err := Path(configFile)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		key    string
		target *string
	}{
		{"TASKBOARD_BACKEND", &cfg.Backend},
		{"TASKBOARD_REPO", &cfg.Repository},
		{"TASKBOARD_API_URL", &cfg.APIURL},
		{"TASKBOARD_CALENDAR", &cfg.Calendar},
		{"TASKBOARD_OFFLINE_PATH", &cfg.OfflinePath},
		{"TASKBOARD_LOG_FILE", &cfg.LogFile},
		{"TASKBOARD_LOG_LEVEL", &cfg.LogLevel},
		{"TASKBOARD_SWEEP_SCHEDULE", &cfg.SweepSchedule},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.target = v
		}
	}
}

// Validate checks the fields the selected backend needs.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendGitHub:
		if c.Repository == "" {
			return fmt.Errorf("no repository configured: run 'taskboard config set repository owner/name' or set TASKBOARD_REPO")
		}
	case BackendOffline:
		if c.OfflinePath == "" {
			return fmt.Errorf("no offline path configured")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendGitHub, BackendOffline)
	}
	return nil
}

// Set updates a field by its JSON name.
func (c *Config) Set(key, value string) error {
	switch key {
	case "backend":
		c.Backend = value
	case "repository":
		c.Repository = value
	case "apiUrl":
		c.APIURL = value
	case "calendar":
		c.Calendar = value
	case "offlinePath":
		c.OfflinePath = value
	case "logFile":
		c.LogFile = value
	case "logLevel":
		c.LogLevel = value
	case "sweepSchedule":
		c.SweepSchedule = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func Save(cfg *Config) error {
	path, err := Path(configFile)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}
