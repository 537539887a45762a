// Package config loads the optional YAML defaults file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath names the environment variable holding a config path.
	EnvConfigPath = "CODER_CONFIG"
	// DefaultFileName is looked up in the working directory.
	DefaultFileName = ".coder.yaml"
)

// File mirrors the YAML config file. Every field is a default that an
// explicitly set flag overrides.
type File struct {
	Protocol         string `yaml:"protocol" validate:"oneof=auto full fulltext full-content diff udiff unified-diff"`
	Buffer           bool   `yaml:"buffer"`
	Strict           bool   `yaml:"strict"`
	Relocate         bool   `yaml:"relocate"`
	MaxMismatches    int    `yaml:"max_mismatches" validate:"gte=0"`
	KeepFinalNewline bool   `yaml:"keep_final_newline"`
	NoTUI            bool   `yaml:"no_tui"`
	DumpDir          string `yaml:"dump_dir"`
	Log              Log    `yaml:"log"`
}

// Log configures the zerolog logger.
type Log struct {
	Level      string `yaml:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
}

// Default returns the configuration used when no file is found.
func Default() *File {
	return &File{
		Protocol: "auto",
		Log: Log{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// GetConfigPath picks the config file to load.
// Priority:
// 1. the --config flag
// 2. the CODER_CONFIG environment variable
// 3. .coder.yaml in the current working directory
//
// It returns "" when none exists.
func GetConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	path := filepath.Join(cwd, DefaultFileName)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// Load reads and validates the file at GetConfigPath(flagPath), falling back
// to Default when there is none. A path given by flag must exist.
func Load(flagPath string) (*File, error) {
	cfg := Default()
	path := GetConfigPath(flagPath)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML from '%s': %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and reports every violation at once.
func Validate(cfg *File) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("configuration validation error: %w", err)
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := fmt.Sprintf("'%s' failed rule '%s'", e.Namespace(), e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		msg += fmt.Sprintf(", actual: '%v'", e.Value())
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(msgs, "\n  "))
}
