// Package config resolves contacts settings from defaults, YAML layers and
// the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/smileynet/contacts/internal/logger"
)

// Environment variables read by ApplyEnv.
const (
	EnvFile     = "CONTACTS_FILE"
	EnvStrict   = "CONTACTS_STRICT"
	EnvLogLevel = "CONTACTS_LOG_LEVEL"
)

// Config is the resolved configuration for one run.
type Config struct {
	Store Store          `yaml:"store"`
	Log   logger.Options `yaml:"log"`
}

// Store selects and interprets the backing file.
type Store struct {
	File   string `yaml:"file"`   // relative paths resolve against the working directory
	Strict bool   `yaml:"strict"` // false skips malformed lines with a warning
}

// DefaultConfig returns the settings used when no layer overrides them.
func DefaultConfig() Config {
	return Config{
		Store: Store{File: "contacts.txt", Strict: true},
		Log:   logger.Options{Level: "warn", Format: "text"},
	}
}

// Load returns the defaults overlaid with the single file at path.
func Load(path string) (*Config, error) {
	return LoadLayered(path)
}

// LoadLayered overlays each file in paths onto the defaults, later paths
// winning. Empty paths, missing files and files without content are skipped;
// unknown keys are an error.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()
	for _, path := range paths {
		if path == "" {
			continue
		}
		var layer layer
		found, err := decodeFile(path, &layer)
		if err != nil {
			return nil, err
		}
		if found {
			layer.overlay(&cfg)
		}
	}
	return &cfg, nil
}

// decodeFile strictly decodes the YAML file at path into v. It reports false
// when the file is absent or holds no document.
func decodeFile(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("config: reading %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err = dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return true, nil
}

// Validate rejects settings the store or logger cannot use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store.File) == "" {
		return errors.New("config: store.file cannot be empty")
	}
	if _, ok := logger.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("config: log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if f := strings.ToLower(c.Log.Format); f != "" && f != "text" && f != "json" {
		return fmt.Errorf("config: log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// ApplyEnv overrides settings from EnvFile, EnvStrict and EnvLogLevel.
// Unset or empty variables leave the config alone.
func (c *Config) ApplyEnv() error {
	if v, ok := lookupEnv(EnvFile); ok {
		c.Store.File = v
	}
	if v, ok := lookupEnv(EnvStrict); ok {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvStrict, err)
		}
		c.Store.Strict = strict
	}
	if v, ok := lookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	return nil
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	return v, ok && v != ""
}

// layer is one config file. Pointer fields tell "absent" apart from a zero
// value so a layer only overrides what it names.
type layer struct {
	Store struct {
		File   *string `yaml:"file"`
		Strict *bool   `yaml:"strict"`
	} `yaml:"store"`
	Log struct {
		Level  *string `yaml:"level"`
		File   *string `yaml:"file"`
		Format *string `yaml:"format"`
	} `yaml:"log"`
}

func (l *layer) overlay(c *Config) {
	set(&c.Store.File, l.Store.File)
	set(&c.Store.Strict, l.Store.Strict)
	set(&c.Log.Level, l.Log.Level)
	set(&c.Log.File, l.Log.File)
	set(&c.Log.Format, l.Log.Format)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
