package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tristendillon/minireact/core/logger"
	"gopkg.in/yaml.v3"
)

const FileName = "minireact.yaml"

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Source      Dir        `yaml:"source"`
	Destination Dir        `yaml:"destination"`
	Entry       string     `yaml:"entry"`
	Exclude     []string   `yaml:"exclude"`
	Extensions  Extensions `yaml:"extensions"`
	Runtime     Runtime    `yaml:"runtime"`
	Watch       Watch      `yaml:"watch"`
	Concurrency int        `yaml:"concurrency"`
	Server      Server     `yaml:"server"`

	// Cwd anchors relative roots. It is never read from the file.
	Cwd string `yaml:"-"`
}

// Dir is a root directory plus the subdirectory under it that holds the tree.
type Dir struct {
	Root string `yaml:"root"`
	Dir  string `yaml:"dir"`
}

type Extensions struct {
	Script []string `yaml:"script"`
	Style  []string `yaml:"style"`
}

// Import names a default import: `import <Name> from '<Source>'`.
type Import struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
}

type Runtime struct {
	LazyHelper         Import `yaml:"lazy_helper"`
	Loading            Import `yaml:"loading"`
	NativeComponents   string `yaml:"native_components"`
	InternalComponents string `yaml:"internal_components"`
	AssetsAlias        string `yaml:"assets_alias"`
}

type Watch struct {
	Debounce time.Duration `yaml:"debounce"`
}

type Server struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

func Default() *Config {
	return &Config{
		Source:      Dir{Root: ".", Dir: "src"},
		Destination: Dir{Root: ".minireact", Dir: "src"},
		Entry:       "app.js",
		Exclude:     []string{"node_modules", ".git"},
		Extensions: Extensions{
			Script: []string{".js", ".jsx"},
			Style:  []string{".css", ".scss", ".less"},
		},
		Runtime: Runtime{
			LazyHelper:         Import{Name: "dynamicLoad", Source: "@internalComponents/dynamicLoad"},
			Loading:            Import{Name: "DEFAULT_LOADING", Source: "@internalComponents/DefaultLoading"},
			NativeComponents:   "schnee-ui/components",
			InternalComponents: "@internalComponents",
			AssetsAlias:        "@assets",
		},
		Watch:       Watch{Debounce: 100 * time.Millisecond},
		Concurrency: 8,
		Server: Server{
			Enabled: false,
			Host:    "localhost",
			Port:    9464,
		},
	}
}

// Load reads minireact.yaml from the working directory, falling back to defaults.
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working dir: %w", err)
	}

	return LoadFrom(wd, filepath.Join(wd, FileName))
}

// LoadFrom reads the config at path, anchoring relative roots at cwd. Values
// absent from the file keep their defaults.
func LoadFrom(cwd, path string) (*Config, error) {
	cfg := Default()
	cfg.Cwd = cwd

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No config file found at %s, using default config", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	logger.Debug("Config file found: %s", path)
	logger.Debug("Config: %+v", *cfg)

	return cfg, nil
}

func (c *Config) abs(parts ...string) string {
	p := filepath.Join(parts...)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Cwd, p)
}

// SrcDirPath is source.root/source.dir resolved against the working directory.
func (c *Config) SrcDirPath() string {
	return c.abs(c.Source.Root, c.Source.Dir)
}

// DestDirPath is destination.root/destination.dir resolved against the working directory.
func (c *Config) DestDirPath() string {
	return c.abs(c.Destination.Root, c.Destination.Dir)
}

// EntryPath is the absolute path of the root module.
func (c *Config) EntryPath() string {
	return filepath.Join(c.SrcDirPath(), c.Entry)
}

func (c *Config) Validate() error {
	switch {
	case c.Source.Dir == "" || c.Destination.Dir == "":
		return fmt.Errorf("%w: source.dir and destination.dir must be set", ErrInvalidConfig)
	case c.Entry == "":
		return fmt.Errorf("%w: entry must be set", ErrInvalidConfig)
	case c.Concurrency <= 0:
		return fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidConfig, c.Concurrency)
	case c.Runtime.LazyHelper.Name == "" || c.Runtime.LazyHelper.Source == "":
		return fmt.Errorf("%w: runtime.lazy_helper needs name and source", ErrInvalidConfig)
	case c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535):
		return fmt.Errorf("%w: server.port out of range: %d", ErrInvalidConfig, c.Server.Port)
	}

	src, dest := c.SrcDirPath(), c.DestDirPath()
	if src == dest {
		return fmt.Errorf("%w: source and destination resolve to the same directory %s", ErrInvalidConfig, src)
	}
	if rel, err := filepath.Rel(src, dest); err == nil && !strings.HasPrefix(rel, "..") {
		return fmt.Errorf("%w: destination %s is inside source %s", ErrInvalidConfig, dest, src)
	}

	return nil
}
