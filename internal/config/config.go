package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"todoapp/internal/theme"
	"todoapp/internal/todo"
)

const (
	AppName               = "todoapp"
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "todo.db"
	DefaultLogName        = "todoapp.log"

	// MemoryDB keeps all state in process memory for the lifetime of the run.
	MemoryDB = ":memory:"
)

type Keymap struct {
	Quit           string `toml:"quit"`
	Add            string `toml:"add"`
	Up             string `toml:"up"`
	Down           string `toml:"down"`
	Toggle         string `toml:"toggle"`
	Delete         string `toml:"delete"`
	Confirm        string `toml:"confirm"`
	Cancel         string `toml:"cancel"`
	ClearCompleted string `toml:"clear_completed"`
	FilterAll      string `toml:"filter_all"`
	FilterActive   string `toml:"filter_active"`
	FilterDone     string `toml:"filter_completed"`
	Theme          string `toml:"theme"`
	Grab           string `toml:"grab"`
}

type Config struct {
	DBPath        string `toml:"db_path"`
	DefaultFilter string `toml:"default_filter"`
	Theme         string `toml:"theme"`
	LogFile       string `toml:"log_file"`
	LogLevel      string `toml:"log_level"`
	Keys          Keymap `toml:"keys"`
}

// ResolveConfigPath picks $TODOAPP_CONFIG, then $XDG_CONFIG_HOME/todoapp,
// then ~/.config/todoapp.
func ResolveConfigPath() string {
	if p := os.Getenv("TODOAPP_CONFIG"); p != "" {
		return p
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName, DefaultConfigFileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(home, ".config", AppName, DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(path), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.LogFile == "" {
		cfg.LogFile = DefaultLogName
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg.resolve(path), nil
}

// Validate rejects values the rest of the program cannot interpret.
func (c Config) Validate() error {
	if _, err := todo.ParseFilter(c.DefaultFilter); err != nil {
		return fmt.Errorf("default_filter: %w", err)
	}
	if _, err := theme.ParseMode(c.Theme); err != nil {
		return fmt.Errorf("theme: %w", err)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	return nil
}

// Filter returns the parsed default filter.
func (c Config) Filter() todo.Filter {
	f, _ := todo.ParseFilter(c.DefaultFilter)
	return f
}

// ThemeMode returns the parsed theme override.
func (c Config) ThemeMode() theme.Mode {
	m, _ := theme.ParseMode(c.Theme)
	return m
}

// resolve anchors relative file paths next to the config file.
func (c Config) resolve(path string) Config {
	dir := filepath.Dir(path)
	if c.DBPath != MemoryDB && !filepath.IsAbs(c.DBPath) {
		c.DBPath = filepath.Join(dir, c.DBPath)
	}
	if !filepath.IsAbs(c.LogFile) {
		c.LogFile = filepath.Join(dir, c.LogFile)
	}
	return c
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:        DefaultDBName,
		DefaultFilter: "all",
		Theme:         string(theme.ModeSystem),
		LogFile:       DefaultLogName,
		LogLevel:      "info",
		Keys: Keymap{
			Quit:           "q",
			Add:            "a",
			Up:             "k",
			Down:           "j",
			Toggle:         " ",
			Delete:         "d",
			Confirm:        "enter",
			Cancel:         "esc",
			ClearCompleted: "c",
			FilterAll:      "1",
			FilterActive:   "2",
			FilterDone:     "3",
			Theme:          "t",
			Grab:           "m",
		},
	}
}
