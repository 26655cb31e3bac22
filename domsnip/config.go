// Package domsnip extracts one styled element from a document into a
// self-contained HTML snippet: minimal ancestor chain, diffed inline
// styles, synthesized pseudo-element content, and a closed set of CSS
// custom properties.
//
// Two backends feed the engine: a headless-Chrome snapshot for live
// pages, and an in-process cascade approximation for static markup.
//
// Usage:
//
//	s := domsnip.New(domsnip.Config{})
//	defer s.Close()
//	res, err := s.Extract(ctx, domsnip.Request{HTML: doc, Selector: "#main"})
//	fmt.Println(res.HTML)
package domsnip

import (
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level domsnip configuration.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Extract ExtractConfig `yaml:"extract"`
	Server  ServerConfig  `yaml:"server"`
	Audit   AuditConfig   `yaml:"audit"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

// BrowserConfig controls the Chrome lifecycle for live extraction.
type BrowserConfig struct {
	Remote          string        `yaml:"remote"`
	Stealth         string        `yaml:"stealth"` // headless | headful
	XvfbDisplay     string        `yaml:"xvfb_display"`
	MemoryLimit     int64         `yaml:"memory_limit"`
	RecycleInterval time.Duration `yaml:"recycle_interval"`
	NavTimeout      time.Duration `yaml:"nav_timeout"`
}

// ExtractConfig bounds extraction inputs and output.
type ExtractConfig struct {
	MaxSourceSize int64  `yaml:"max_source_size"`
	DefaultFormat string `yaml:"default_format"` // html | markdown
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// AuditConfig configures the SQLite extraction log.
type AuditConfig struct {
	Path      string        `yaml:"path"` // empty disables auditing
	Buffer    int           `yaml:"buffer"`
	Retention time.Duration `yaml:"retention"`
}

// LoadConfigFile reads a YAML configuration file and applies defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.defaults()
	return &cfg, nil
}

func (c *Config) defaults() {
	if c.Browser.Stealth == "" {
		c.Browser.Stealth = "headless"
	}
	if c.Browser.XvfbDisplay == "" {
		c.Browser.XvfbDisplay = ":99"
	}
	if c.Browser.MemoryLimit <= 0 {
		c.Browser.MemoryLimit = 1 << 30
	}
	if c.Browser.RecycleInterval <= 0 {
		c.Browser.RecycleInterval = 4 * time.Hour
	}
	if c.Browser.NavTimeout <= 0 {
		c.Browser.NavTimeout = 30 * time.Second
	}
	if c.Extract.MaxSourceSize <= 0 {
		c.Extract.MaxSourceSize = 20 * 1024 * 1024
	}
	if c.Extract.DefaultFormat == "" {
		c.Extract.DefaultFormat = string(FormatHTML)
	}
	if c.Server.Listen == "" {
		c.Server.Listen = ":8470"
	}
	if c.Audit.Buffer <= 0 {
		c.Audit.Buffer = 1000
	}
	if c.Audit.Retention <= 0 {
		c.Audit.Retention = 30 * 24 * time.Hour
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
