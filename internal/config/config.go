package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
)

const (
	DefaultSiteRoot  = "content"
	DefaultBuildRoot = "build"
)

// Format identifies the syntax of a site configuration file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Config represents the site-wide build configuration.
type Config struct {
	SiteRoot    string   `json:"siteroot" yaml:"siteroot" toml:"siteroot"`
	BuildRoot   string   `json:"buildroot" yaml:"buildroot" toml:"buildroot"`
	SiteURL     string   `json:"siteurl" yaml:"siteurl" toml:"siteurl"`
	Ignored     []string `json:"ignored" yaml:"ignored" toml:"ignored"`
	Static      []string `json:"static" yaml:"static" toml:"static"`
	RewriteURLs bool     `json:"rewrite-urls" yaml:"rewrite-urls" toml:"rewrite-urls"`

	Title       string `json:"title" yaml:"title" toml:"title"`
	Description string `json:"description" yaml:"description" toml:"description"`
	Author      string `json:"author" yaml:"author" toml:"author"`

	// Params holds every key of the configuration file, recognized or not.
	Params map[string]any `json:"-" yaml:"-" toml:"-"`
}

// FormatFromPath picks the configuration syntax from a file extension. Unknown
// extensions are read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Load reads and expands the configuration file at configPath. The result is
// not validated; callers apply their overrides first and then call Validate,
// which WithOverrides does for them.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewError(errors.CategoryNotFound, "configuration file not found").
				WithCause(err).
				WithContext("source", configPath).
				Build()
		}
		return nil, errors.FileSystemError("failed to read config file").
			WithCause(err).
			WithContext("source", configPath).
			Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))), FormatFromPath(configPath))
	if err != nil {
		if classified, ok := errors.AsClassified(err); ok {
			return nil, classified.WithContext("source", configPath)
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes configuration bytes and applies defaults.
func Parse(data []byte, format Format) (*Config, error) {
	var cfg Config
	params := map[string]any{}

	var err error
	switch format {
	case FormatYAML:
		if err = yaml.Unmarshal(data, &cfg); err == nil {
			err = yaml.Unmarshal(data, &params)
		}
	case FormatTOML:
		if err = toml.Unmarshal(data, &cfg); err == nil {
			err = toml.Unmarshal(data, &params)
		}
	default:
		if err = decodeJSON(data, &cfg); err == nil {
			err = decodeJSON(data, &params)
		}
	}
	if err != nil {
		return nil, errors.ConfigError("failed to parse site configuration").
			WithCause(err).
			WithContext("format", string(format)).
			Build()
	}
	if params == nil {
		params = map[string]any{}
	}
	cfg.Params = params

	cfg.applyDefaults()
	return &cfg, nil
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func (c *Config) applyDefaults() {
	if c.SiteRoot == "" {
		c.SiteRoot = DefaultSiteRoot
	}
	if c.BuildRoot == "" {
		c.BuildRoot = DefaultBuildRoot
	}
	c.SiteRoot = filepath.Clean(c.SiteRoot)
	c.BuildRoot = filepath.Clean(c.BuildRoot)
}

// Validate checks the fields the builder cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SiteURL) == "" {
		return errors.ConfigError("siteurl is required").Build()
	}
	if c.SiteRoot == c.BuildRoot {
		return errors.ConfigError("siteroot and buildroot must differ").
			WithContext("siteroot", c.SiteRoot).
			Build()
	}
	if rel, err := filepath.Rel(c.SiteRoot, c.BuildRoot); err == nil && !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel) {
		return errors.ConfigError("buildroot must not be inside siteroot").
			WithContext("siteroot", c.SiteRoot).
			WithContext("buildroot", c.BuildRoot).
			Build()
	}
	return nil
}

// WithOverrides returns a validated copy with non-empty CLI overrides applied.
func (c *Config) WithOverrides(siteRoot, buildRoot string) (*Config, error) {
	out := *c
	if siteRoot != "" {
		out.SiteRoot = filepath.Clean(siteRoot)
	}
	if buildRoot != "" {
		out.BuildRoot = filepath.Clean(buildRoot)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}
