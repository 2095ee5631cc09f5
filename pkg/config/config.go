// Package config loads project settings from sourcepath.toml.
//
// A config file names the search path, output root and entry points of a
// project together with the compiler, cache and history backends:
//
//	sourcepath = ["src", "lib"]
//	output = "classes"
//	entries = ["com.example.Main", "src/com/example/Tool.java"]
//
//	[compiler]
//	command = ""          # empty selects the built-in descriptor compiler
//
//	[cache]
//	backend = "file"      # file | redis | none
//	ttl = "168h"
//
//	[history]
//	backend = "file"      # file | mongo | none
//
// Relative paths are resolved against the directory holding the file.
// Command-line flags override file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/sourcepath/pkg/build"
	"github.com/matzehuels/sourcepath/pkg/cache"
	"github.com/matzehuels/sourcepath/pkg/errors"
	"github.com/matzehuels/sourcepath/pkg/unit"
)

// FileName is the config file looked up in the working directory.
const FileName = "sourcepath.toml"

// Backend names.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config is the contents of a sourcepath.toml file.
type Config struct {
	SourcePath     []string `toml:"sourcepath"`
	Output         string   `toml:"output"`
	Entries        []string `toml:"entries"`
	SourceSuffix   string   `toml:"source_suffix"`
	ArtifactSuffix string   `toml:"artifact_suffix"`
	External       []string `toml:"external"`

	Compiler CompilerConfig `toml:"compiler"`
	Cache    CacheConfig    `toml:"cache"`
	History  HistoryConfig  `toml:"history"`
}

// CompilerConfig selects the compiler.
type CompilerConfig struct {
	Command string `toml:"command"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// HistoryConfig selects the build history backend.
type HistoryConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Duration is a time.Duration written as a string ("168h", "30m").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{}.WithDefaults()
}

// WithDefaults returns a copy of c with empty fields filled in.
func (c Config) WithDefaults() Config {
	if c.SourceSuffix == "" {
		c.SourceSuffix = build.DefaultSourceSuffix
	}
	if c.ArtifactSuffix == "" {
		c.ArtifactSuffix = build.DefaultArtifactSuffix
	}
	if c.External == nil {
		c.External = build.DefaultExternal
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendFile
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = cache.TTLArtifact
	}
	if c.History.Backend == "" {
		c.History.Backend = BackendFile
	}
	if c.History.Database == "" {
		c.History.Database = "sourcepath"
	}
	return c
}

// Load reads and validates a config file. Unknown keys are an error.
func Load(path string) (Config, error) {
	var c Config
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	c = c.WithDefaults()
	c.Resolve(filepath.Dir(path))
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadOptional loads path if it exists and returns Default otherwise.
// An empty path means FileName in the working directory.
func LoadOptional(path string) (Config, bool, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), false, nil
		}
		return Config{}, false, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	c, err := Load(path)
	return c, err == nil, err
}

// Resolve makes relative paths absolute against baseDir.
func (c *Config) Resolve(baseDir string) {
	for i, p := range c.SourcePath {
		c.SourcePath[i] = resolvePath(baseDir, p)
	}
	for i, e := range c.Entries {
		if unit.IsFileEntry(e, c.SourceSuffix) {
			c.Entries[i] = resolvePath(baseDir, e)
		}
	}
	c.Output = resolvePath(baseDir, c.Output)
	c.Cache.Dir = resolvePath(baseDir, c.Cache.Dir)
	c.History.Dir = resolvePath(baseDir, c.History.Dir)
}

func resolvePath(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

// validateEntry accepts a unit name or a source file path. File entries are
// mapped to unit names against the search path when the build starts.
func (c Config) validateEntry(e string) error {
	if !unit.IsFileEntry(e, c.SourceSuffix) {
		return errors.ValidateUnitName(e)
	}
	if !strings.HasSuffix(e, c.SourceSuffix) {
		return errors.New(errors.ErrCodeInvalidPath, "entry %s does not end in %s", e, c.SourceSuffix)
	}
	return nil
}

// Validate checks field values. Missing search path or output root are
// not errors here since flags may still supply them.
func (c Config) Validate() error {
	if err := errors.ValidateSuffix(c.SourceSuffix); err != nil {
		return err
	}
	if err := errors.ValidateSuffix(c.ArtifactSuffix); err != nil {
		return err
	}
	for _, e := range c.Entries {
		if err := c.validateEntry(e); err != nil {
			return err
		}
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis needs redis_url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	switch c.History.Backend {
	case BackendFile, BackendNone:
	case BackendMongo:
		if c.History.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "history backend mongo needs mongo_uri")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown history backend %q", c.History.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	return nil
}

// String renders c as TOML.
func (c Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return b.String()
}
