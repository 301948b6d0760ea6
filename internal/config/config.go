package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/harrison/preproc/internal/models"
	"github.com/harrison/preproc/internal/pathtest"
	"github.com/harrison/preproc/internal/tag"
)

// TargetConfig is one named entry under targets.
type TargetConfig struct {
	// Options override the task-level options for this target
	Options models.Options `yaml:"options"`

	// Files maps source patterns to destination files
	Files []models.FileMapping `yaml:"files"`
}

// Config represents preproc configuration options
type Config struct {
	// MaxConcurrency is the maximum number of targets processed at once (0 = unlimited)
	MaxConcurrency int `yaml:"max_concurrency"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written (empty = no file log)
	LogDir string `yaml:"log_dir"`

	// Linefeed separates the contents of joined source files
	Linefeed string `yaml:"linefeed"`

	// SkipUnchanged leaves a destination alone when its content would not change
	SkipUnchanged bool `yaml:"skip_unchanged"`

	// DryRun runs every pipeline without writing destinations
	DryRun bool `yaml:"dry_run"`

	// Options are the task-level options shared by all targets
	Options models.Options `yaml:"options"`

	// Targets are the named targets
	Targets map[string]TargetConfig `yaml:"targets"`

	// BaseDir is the directory relative sources and destinations resolve against
	BaseDir string `yaml:"-"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrency: 0, // Unlimited
		LogLevel:       "info",
		LogDir:         "",
		Linefeed:       "\n",
		SkipUnchanged:  true,
		DryRun:         false,
		Targets:        map[string]TargetConfig{},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Pointers tell an explicit zero value from an absent key
	type yamlConfig struct {
		MaxConcurrency *int                    `yaml:"max_concurrency"`
		LogLevel       string                  `yaml:"log_level"`
		LogDir         string                  `yaml:"log_dir"`
		Linefeed       *string                 `yaml:"linefeed"`
		SkipUnchanged  *bool                   `yaml:"skip_unchanged"`
		DryRun         bool                    `yaml:"dry_run"`
		Options        models.Options          `yaml:"options"`
		Targets        map[string]TargetConfig `yaml:"targets"`
	}

	var yamlCfg yamlConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&yamlCfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.MaxConcurrency != nil {
		cfg.MaxConcurrency = *yamlCfg.MaxConcurrency
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.Linefeed != nil {
		cfg.Linefeed = *yamlCfg.Linefeed
	}
	if yamlCfg.SkipUnchanged != nil {
		cfg.SkipUnchanged = *yamlCfg.SkipUnchanged
	}
	if yamlCfg.DryRun {
		cfg.DryRun = true
	}
	cfg.Options = yamlCfg.Options
	if yamlCfg.Targets != nil {
		cfg.Targets = yamlCfg.Targets
	}

	cfg.BaseDir = ProjectDir(path)
	return cfg, nil
}

// LoadConfigFromDir loads configuration from .preproc/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	cfg, err := LoadConfig(filepath.Join(dir, DirName, FileName))
	if err != nil {
		return nil, err
	}
	cfg.BaseDir = dir
	return cfg, nil
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(maxConcurrency *int, logLevel *string, logDir *string, dryRun *bool, skipUnchanged *bool) {
	if maxConcurrency != nil {
		c.MaxConcurrency = *maxConcurrency
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if dryRun != nil {
		c.DryRun = *dryRun
	}
	if skipUnchanged != nil {
		c.SkipUnchanged = *skipUnchanged
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be >= 0, got %d", c.MaxConcurrency)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if err := validateOptions("options", c.Options); err != nil {
		return err
	}

	for _, name := range c.TargetNames() {
		tc := c.Targets[name]
		if !tag.ValidName(name) {
			return fmt.Errorf("invalid target name %q", name)
		}
		if len(tc.Files) == 0 {
			return fmt.Errorf("targets.%s: files cannot be empty", name)
		}
		for i, f := range tc.Files {
			if len(f.Src) == 0 {
				return fmt.Errorf("targets.%s.files[%d]: src cannot be empty", name, i)
			}
			if f.Dest == "" {
				return fmt.Errorf("targets.%s.files[%d]: dest cannot be empty", name, i)
			}
		}
		if err := validateOptions("targets."+name+".options", tc.Options); err != nil {
			return err
		}
	}

	return nil
}

// validateOptions checks tag names and compiles every path test.
func validateOptions(prefix string, o models.Options) error {
	check := func(field, name string) error {
		if name != "" && !tag.ValidName(name) {
			return fmt.Errorf("%s.%s: invalid tag name %q", prefix, field, name)
		}
		return nil
	}
	compile := func(field, test string) error {
		if test == "" {
			return nil
		}
		if _, err := pathtest.Compile(test); err != nil {
			return fmt.Errorf("%s.%s: %w", prefix, field, err)
		}
		return nil
	}

	if err := check("tag", o.Tag); err != nil {
		return err
	}
	if err := compile("path_test", o.PathTest); err != nil {
		return err
	}
	if o.Pick != nil {
		if err := check("pick_tag.tag", o.Pick.Tag); err != nil {
			return err
		}
	}
	if o.Replace != nil {
		if err := check("replace_tag.tag", o.Replace.Tag); err != nil {
			return err
		}
		if err := compile("replace_tag.path_test", o.Replace.PathTest); err != nil {
			return err
		}
	}
	if o.Remove != nil {
		if err := check("remove_tag.tag", o.Remove.Tag); err != nil {
			return err
		}
		if err := compile("remove_tag.path_test", o.Remove.PathTest); err != nil {
			return err
		}
	}
	return nil
}

// TargetNames returns the configured target names in sorted order.
func (c *Config) TargetNames() []string {
	names := make([]string, 0, len(c.Targets))
	for name := range c.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Target expands a named target into one models.Target per file mapping,
// with task options merged under the target's own. Relative destinations
// resolve against BaseDir.
func (c *Config) Target(name string) ([]models.Target, error) {
	tc, ok := c.Targets[name]
	if !ok {
		return nil, fmt.Errorf("unknown target %q", name)
	}

	opts := c.Options.Merge(tc.Options)
	targets := make([]models.Target, 0, len(tc.Files))
	for _, f := range tc.Files {
		dest := f.Dest
		if !filepath.IsAbs(dest) && c.BaseDir != "" {
			dest = filepath.Join(c.BaseDir, dest)
		}
		targets = append(targets, models.Target{
			Name:    name,
			Src:     append([]string(nil), f.Src...),
			Dest:    dest,
			Options: opts,
		})
	}
	return targets, nil
}

// Select expands the named targets, or every target when names is empty.
func (c *Config) Select(names []string) ([]models.Target, error) {
	if len(names) == 0 {
		names = c.TargetNames()
	}
	if len(names) == 0 {
		return nil, errors.New("no targets configured")
	}

	var targets []models.Target
	for _, name := range names {
		ts, err := c.Target(name)
		if err != nil {
			return nil, err
		}
		targets = append(targets, ts...)
	}
	return targets, nil
}
