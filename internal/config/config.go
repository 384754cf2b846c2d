// Package config loads ptab configuration from JSONC files and CLI flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tailscale/hujson"
)

// Error variables for configuration.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrCacheDirEmpty      = errors.New("cache-dir cannot be empty")
	ErrLogLevel           = errors.New("log_level must be one of debug, info, warn, error")
	ErrLogFormat          = errors.New("log_format must be text or json")
)

// Config holds all configuration options.
type Config struct {
	// CacheDir overrides the cache directory. Empty selects the platform
	// default.
	CacheDir  string `json:"cache_dir,omitempty"`
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
	// Listen is the address of the event stream server started by the
	// shell. Empty disables it.
	Listen string `json:"listen,omitempty"`

	// Resolved (computed, not serialized)
	EffectiveCwd string `json:"-"`
	CacheDirAbs  string `json:"-"` // empty when CacheDir is empty

	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// FileName is the project config file name.
const FileName = ".ptab.json"

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// globalPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/ptab/config.json if set, otherwise ~/.config/ptab/config.json.
// Returns empty string if home directory cannot be determined.
func globalPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "ptab", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "ptab", "config.json")
	}

	return ""
}

// Input holds the inputs for Load.
type Input struct {
	WorkDirOverride string // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string // -c/--config flag value
	// CacheDirOverride is the --cache-dir flag value. It only applies when
	// HasCacheDirOverride is set, so an explicit empty value can be rejected.
	CacheDirOverride    string
	HasCacheDirOverride bool
	Env                 map[string]string
}

// Load loads configuration with the following precedence (highest wins):
//  1. Defaults
//  2. Global user config (~/.config/ptab/config.json or $XDG_CONFIG_HOME/ptab/config.json)
//  3. Project config file at default location (.ptab.json, if exists)
//  4. Explicit config file via ConfigPath (replaces 3)
//  5. CLI overrides
//
// Relative cache directories are resolved against the working directory.
func Load(input Input) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return Config{}, fmt.Errorf("cannot resolve working directory: %w", err)
	}

	cfg := Default()

	if path := globalPath(input.Env); path != "" {
		globalCfg, loaded, err := loadFile(path, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg.Sources.Global = path
			cfg = merge(cfg, globalCfg)
		}
	}

	projectCfg, projectPath, err := loadProject(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = merge(cfg, projectCfg)

	if input.HasCacheDirOverride {
		if strings.TrimSpace(input.CacheDirOverride) == "" {
			return Config{}, ErrCacheDirEmpty
		}

		cfg.CacheDir = input.CacheDirOverride
	}

	err = validate(cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir

	switch {
	case cfg.CacheDir == "":
	case filepath.IsAbs(cfg.CacheDir):
		cfg.CacheDirAbs = cfg.CacheDir
	default:
		cfg.CacheDirAbs = filepath.Join(workDir, cfg.CacheDir)
	}

	return cfg, nil
}

// loadProject loads the project config file (.ptab.json) or an explicit
// config file. Returns the config and the path if loaded.
func loadProject(workDir, configPath string) (Config, string, error) {
	if configPath == "" {
		path := filepath.Join(workDir, FileName)

		cfg, loaded, err := loadFile(path, false)
		if err != nil || !loaded {
			return Config{}, "", err
		}

		return cfg, path, nil
	}

	path := configPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	// Check existence first to provide a clear "not found" error
	_, statErr := os.Stat(path)
	if statErr != nil {
		return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
	}

	cfg, _, err := loadFile(path, true)
	if err != nil {
		return Config{}, "", err
	}

	return cfg, path, nil
}

// loadFile loads a config file. If mustExist is false, missing files return
// a zero config and loaded=false.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigFileRead, path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parse(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.CacheDir != "" {
		base.CacheDir = overlay.CacheDir
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	if overlay.LogFormat != "" {
		base.LogFormat = overlay.LogFormat
	}

	if overlay.Listen != "" {
		base.Listen = overlay.Listen
	}

	return base
}

func validate(cfg Config) error {
	if !slices.Contains(logLevels, strings.ToLower(cfg.LogLevel)) {
		return fmt.Errorf("%w, got %q", ErrLogLevel, cfg.LogLevel)
	}

	if !slices.Contains(logFormats, strings.ToLower(cfg.LogFormat)) {
		return fmt.Errorf("%w, got %q", ErrLogFormat, cfg.LogFormat)
	}

	return nil
}

// Format returns the config as indented JSON.
func Format(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return string(data), nil
}
