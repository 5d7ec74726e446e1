// Package config loads simulator configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"

	"rtsched/internal/rm"
	"rtsched/internal/task"
)

var ErrInvalidConfig = errors.New("invalid config")

// Error wraps configuration decoding and validation failures.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func invalidf(format string, args ...any) error {
	return &Error{Kind: ErrInvalidConfig, Msg: fmt.Sprintf(format, args...)}
}

type Config struct {
	// AperiodicDeadline is D, used when a task file does not set one.
	AperiodicDeadline int `yaml:"aperiodic_deadline"`

	RM struct {
		Placement            string `yaml:"placement"`
		FlagTruncatedWindows bool   `yaml:"flag_truncated_windows"`
	} `yaml:"rm"`

	Server struct {
		Port string `yaml:"port"`
		Mode string `yaml:"mode"`

		// CacheSize bounds the number of memoized run results; 0 disables the cache.
		CacheSize int `yaml:"cache_size"`
	} `yaml:"server"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{AperiodicDeadline: task.DefaultAperiodicDeadline}
	c.RM.Placement = string(rm.PlaceASAP)
	c.Server.Port = "8080"
	c.Server.Mode = "release"
	c.Server.CacheSize = 128
	return c
}

// LoadConfig reads filePath over the defaults and validates the result.
// Keys missing from the file keep their default values.
func LoadConfig(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()
	return Decode(file)
}

// Decode is LoadConfig for an already open reader.
func Decode(r io.Reader) (*Config, error) {
	config := Default()
	decoder := yaml.NewDecoder(r)
	decoder.SetStrict(true)
	if err := decoder.Decode(config); err != nil && err != io.EOF {
		return nil, invalidf("decode: %v", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.AperiodicDeadline <= 0 {
		return invalidf("aperiodic_deadline must be positive (got %d)", c.AperiodicDeadline)
	}
	if _, err := rm.ParsePlacement(c.RM.Placement); err != nil {
		return invalidf("rm.placement: %v", err)
	}
	if n, err := strconv.Atoi(c.Server.Port); err != nil || n <= 0 || n > 65535 {
		return invalidf("server.port %q is not a valid port", c.Server.Port)
	}
	if c.Server.CacheSize < 0 {
		return invalidf("server.cache_size must not be negative (got %d)", c.Server.CacheSize)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return invalidf("server.mode %q (expected debug|release|test)", c.Server.Mode)
	}
	return nil
}

// RMOptions maps the rm section onto engine options.
func (c *Config) RMOptions() rm.Options {
	p, _ := rm.ParsePlacement(c.RM.Placement)
	return rm.Options{Placement: p, FlagTruncatedWindows: c.RM.FlagTruncatedWindows}
}
