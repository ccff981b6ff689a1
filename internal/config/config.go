package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Aarondoran/TerminalTasks/internal/logging"
	"github.com/Aarondoran/TerminalTasks/internal/ui"
)

const (
	DefaultFile      = "todos.json"
	DefaultBackend   = BackendJSON
	DefaultTheme     = "classic"
	DefaultColor     = ColorAuto
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"

	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"

	ProjectFileName = ".todo.toml"
	UserFileName    = "config.toml"
	appDirName      = "todo"
)

// Config holds the settings for a single invocation.
type Config struct {
	File      string `toml:"file"`
	Backend   string `toml:"backend"`
	Theme     string `toml:"theme"`
	Color     string `toml:"color"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	Panel     bool   `toml:"panel"`

	// Flag-only settings.
	DryRun     bool   `toml:"-"`
	ConfigFile string `toml:"-"`
}

func setDefaults(cfg *Config) {
	cfg.File = DefaultFile
	cfg.Backend = DefaultBackend
	cfg.Theme = DefaultTheme
	cfg.Color = DefaultColor
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// Defaults returns a config with only built-in values applied.
func Defaults() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// flagValues mirrors Config for flag parsing; only flags the user set are
// applied on top of the other sources.
type flagValues struct {
	configFile string
	file       string
	backend    string
	theme      string
	color      string
	logLevel   string
	logFormat  string
	panel      bool
	dryRun     bool
}

// registerFlags defines the global flags on fs.
func registerFlags(fs *flag.FlagSet) *flagValues {
	v := &flagValues{}
	fs.StringVar(&v.configFile, "config", "", "path to a TOML config file")
	fs.StringVar(&v.file, "file", "", "task storage location (default "+DefaultFile+")")
	fs.StringVar(&v.backend, "backend", "", "storage backend: json or sqlite")
	fs.StringVar(&v.theme, "theme", "", "color theme: classic, neon or mono")
	fs.StringVar(&v.color, "color", "", "color output: auto, always or never")
	fs.StringVar(&v.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&v.logFormat, "log-format", "", "log format: text, json or logfmt")
	fs.BoolVar(&v.panel, "panel", false, "frame listings with a progress header")
	fs.BoolVar(&v.dryRun, "dry-run", false, "run against an in-memory copy; nothing is saved")
	return v
}

// Load parses global flags from args and merges every config source.
// The remaining positional arguments are available from fs.Args().
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	flags := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Defaults()

	if p := findUserConfigFile(); p != "" {
		if err := loadConfigFile(cfg, p); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", p, err)
		}
	}
	if p := findProjectConfigFile(); p != "" {
		if err := loadConfigFile(cfg, p); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", p, err)
		}
	}
	if flags.configFile != "" {
		if err := loadConfigFile(cfg, flags.configFile); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", flags.configFile, err)
		}
		cfg.ConfigFile = flags.configFile
	}

	loadFromEnv(cfg)
	applyFlags(cfg, fs, flags)

	if err := finalizeConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TODO_FILE"); v != "" {
		cfg.File = v
	}
	if v := os.Getenv("TODO_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("TODO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func applyFlags(cfg *Config, fs *flag.FlagSet, v *flagValues) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "file":
			cfg.File = v.file
		case "backend":
			cfg.Backend = v.backend
		case "theme":
			cfg.Theme = v.theme
		case "color":
			cfg.Color = v.color
		case "log-level":
			cfg.LogLevel = v.logLevel
		case "log-format":
			cfg.LogFormat = v.logFormat
		case "panel":
			cfg.Panel = v.panel
		case "dry-run":
			cfg.DryRun = v.dryRun
		}
	})
}

// finalizeConfig normalizes values and rejects unknown choices.
func finalizeConfig(cfg *Config) error {
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.Color = strings.ToLower(strings.TrimSpace(cfg.Color))
	cfg.Theme = strings.ToLower(strings.TrimSpace(cfg.Theme))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	cfg.File = expandPath(strings.TrimSpace(cfg.File))

	switch cfg.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", cfg.Backend, BackendJSON, BackendSQLite)
	}
	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("unknown color mode %q (want auto, always or never)", cfg.Color)
	}
	if !logging.ValidLevel(cfg.LogLevel) {
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	if !logging.ValidFormat(cfg.LogFormat) {
		return fmt.Errorf("unknown log format %q (want text, json or logfmt)", cfg.LogFormat)
	}
	if !ui.ValidTheme(cfg.Theme) {
		return fmt.Errorf("unknown theme %q (want %s)", cfg.Theme, strings.Join(ui.Themes, ", "))
	}
	if cfg.File == "" {
		return errors.New("storage file is empty")
	}
	return nil
}

// LoggingOptions returns the logger settings carried by cfg.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{Level: c.LogLevel, Format: c.LogFormat}
}

func findUserConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, appDirName, UserFileName)
	if fileExists(p) {
		return p
	}
	return ""
}

func findProjectConfigFile() string {
	if fileExists(ProjectFileName) {
		return ProjectFileName
	}
	return ""
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// expandPath expands a leading ~ to the home directory.
func expandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
	}
	return p
}
