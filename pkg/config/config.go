// Package config loads engine settings from an ecmacore.toml file and the
// process environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"ecmacore/pkg/errors"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "ecmacore.toml"

// Config is the parsed ecmacore.toml.
type Config struct {
	Engine Engine `toml:"engine"`
	Heap   Heap   `toml:"heap"`
	Log    Log    `toml:"log"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
}

// Engine configures the Realm.
type Engine struct {
	// Strict makes detected invariant violations panic.
	Strict bool `toml:"strict"`
	// Builtins lists the built-ins to initialize by name. Empty means all.
	Builtins []string `toml:"builtins"`
}

// Heap configures the object heap.
type Heap struct {
	// MaxObjects caps live objects; 0 means unlimited.
	MaxObjects int `toml:"max-objects"`
}

// Log configures commonlog.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{}
}

// Load parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, (&errors.ConfigError{Path: path, Msg: "cannot read file"}).CausedBy(err)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, (&errors.ConfigError{Path: path, Msg: "parse error"}).CausedBy(err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, &errors.ConfigError{Path: path, Msg: fmt.Sprintf("unknown key %q", undecoded[0].String())}
	}
	c.Path = path
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FindAndLoad walks up from startDir looking for ecmacore.toml. Without one
// it returns the defaults.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Environment variables that override file settings.
const (
	EnvStrict     = "ECMACORE_STRICT"
	EnvMaxObjects = "ECMACORE_MAX_OBJECTS"
	EnvVerbosity  = "ECMACORE_VERBOSITY"
)

// ApplyEnv overrides settings from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvStrict); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return (&errors.ConfigError{Path: EnvStrict, Msg: "not a boolean"}).CausedBy(err)
		}
		c.Engine.Strict = b
	}
	if v, ok := lookup(EnvMaxObjects); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return (&errors.ConfigError{Path: EnvMaxObjects, Msg: "not an integer"}).CausedBy(err)
		}
		c.Heap.MaxObjects = n
	}
	if v, ok := lookup(EnvVerbosity); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return (&errors.ConfigError{Path: EnvVerbosity, Msg: "not an integer"}).CausedBy(err)
		}
		c.Log.Verbosity = n
	}
	return c.Validate()
}

// Validate checks value ranges. Built-in names are checked by the driver.
func (c *Config) Validate() error {
	if c.Heap.MaxObjects < 0 {
		return &errors.ConfigError{Path: c.Path, Msg: fmt.Sprintf("heap.max-objects must not be negative, got %d", c.Heap.MaxObjects)}
	}
	return nil
}
