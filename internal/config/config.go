package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rebind-dev/rebind/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "rebind.json"

	// DefaultAddress is the default server listen address.
	DefaultAddress = ":8080"
)

// Config represents the complete rebind.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Document is the path to the HTML document carrying the directives.
	Document string `json:"document,omitempty"`

	// Graph is the path to a JSON file holding the initial reference
	// graph. Optional; the document starts empty without it.
	Graph string `json:"graph,omitempty"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Render contains HTML output configuration.
	Render RenderConfig `json:"render,omitempty"`

	// Directives overrides the directive grammar.
	Directives DirectivesConfig `json:"directives,omitempty"`

	// Snapshot contains snapshot store configuration.
	Snapshot SnapshotConfig `json:"snapshot,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Address is the listen address.
	Address string `json:"address,omitempty"`
}

// RenderConfig contains HTML output settings.
type RenderConfig struct {
	// Pretty enables indented output.
	Pretty bool `json:"pretty,omitempty"`

	// Indent is the indentation string for pretty output.
	Indent string `json:"indent,omitempty"`
}

// DirectivesConfig overrides the directive attribute grammar. Empty fields
// keep their defaults.
type DirectivesConfig struct {
	// AttrSuffix marks attribute-binding directives.
	AttrSuffix string `json:"attrSuffix,omitempty"`

	// PropSuffix marks property-binding directives.
	PropSuffix string `json:"propSuffix,omitempty"`

	// TextAttr binds an element's text content.
	TextAttr string `json:"textAttr,omitempty"`

	// RefAttr mounts a nested scalar scope.
	RefAttr string `json:"refAttr,omitempty"`

	// ListAttr mounts an iterable scope.
	ListAttr string `json:"listAttr,omitempty"`

	// ClosedAttr stops directive scanning at an element.
	ClosedAttr string `json:"closedAttr,omitempty"`

	// PathSep separates reference path segments.
	PathSep string `json:"pathSep,omitempty"`

	// MultiSep separates multi-value directive slots.
	MultiSep string `json:"multiSep,omitempty"`

	// CalcMark separates a calc name from its paths.
	CalcMark string `json:"calcMark,omitempty"`
}

// SnapshotConfig contains snapshot store settings.
type SnapshotConfig struct {
	// Store selects the backend: "", "memory" or "s3".
	Store string `json:"store,omitempty"`

	// Bucket is the S3 bucket name.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the S3 object key prefix.
	Prefix string `json:"prefix,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Document: "index.html",
		Server: ServerConfig{
			Address: DefaultAddress,
		},
		Render: RenderConfig{
			Indent: "  ",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for rebind.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// Exists reports whether dir contains a rebind.json.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing rebind.json, or an error if none is
// found up to the filesystem root.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CategoryConfig, "no rebind.json found").
				WithDetail("looked in " + startDir + " and every parent directory").
				WithSuggestion("create rebind.json or pass --config")
		}
		dir = parent
	}
}

// LoadFromWorkingDir discovers the project root from the current working
// directory and loads its configuration.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}
	return Load(root)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CategoryConfig, "no rebind.json found").
				WithDetail("looked in " + filepath.Dir(path)).
				WithSuggestion("create rebind.json or pass --config")
		}
		return nil, errors.New(errors.CategoryConfig, "cannot read config").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CategoryConfig, "cannot parse rebind.json").
			Wrap(err).
			WithSuggestion("check that rebind.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New(errors.CategoryConfig, "cannot encode config").Wrap(err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CategoryConfig, "cannot write config").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if c.Document == "" {
		c.Document = "index.html"
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Render.Pretty && c.Render.Indent == "" {
		c.Render.Indent = "  "
	}
}
