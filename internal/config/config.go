// Package config provides Viper-based configuration loading for the duel runner.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// EncounterConfig selects the scenario to run and bounds its length.
type EncounterConfig struct {
	// Scenario is a path to a scenario YAML file or the name of a built-in scenario.
	Scenario string `mapstructure:"scenario"`
	// MaxRounds caps the number of full rounds; 0 means unbounded.
	MaxRounds int `mapstructure:"max_rounds"`
}

// NarrationConfig controls how narration lines are rendered.
type NarrationConfig struct {
	// Color enables ANSI coloring of narration lines.
	Color bool `mapstructure:"color"`
}

// ScriptingConfig holds Lua hook settings for scripted strikes.
type ScriptingConfig struct {
	// Root is the directory of *.lua files; empty disables scripting.
	Root string `mapstructure:"root"`
	// InstructionLimit is the opcode budget per hook call; 0 uses the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Encounter EncounterConfig `mapstructure:"encounter"`
	Narration NarrationConfig `mapstructure:"narration"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEncounter(c.Encounter); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateScripting(c.Scripting); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateEncounter(e EncounterConfig) error {
	var errs []string
	if e.Scenario == "" {
		errs = append(errs, "encounter.scenario must not be empty")
	}
	if e.MaxRounds < 0 {
		errs = append(errs, fmt.Sprintf("encounter.max_rounds must be >= 0, got %d", e.MaxRounds))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return fmt.Errorf("scripting.instruction_limit must be >= 0, got %d", s.InstructionLimit)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with DUEL_ prefix
	v.SetEnvPrefix("DUEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration produced by the registered defaults alone.
//
// Postcondition: Returns a Config that passes Validate.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic("config: defaults do not validate: " + err.Error())
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("encounter.scenario", "open")
	v.SetDefault("encounter.max_rounds", 1000)

	v.SetDefault("narration.color", false)

	v.SetDefault("scripting.root", "")
	v.SetDefault("scripting.instruction_limit", 0)
}
