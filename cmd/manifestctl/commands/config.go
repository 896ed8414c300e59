// Package commands implements the manifestctl CLI commands.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/manifestkit/manifest-go/pkg/model"
)

// Config is the optional manifestctl configuration file.
//
// Example:
//
//	editable: true
//	identity_hint: org.example.new
//	journal: /tmp/edits.mjournal
//	log_level: debug
//	index_concurrency: 8
//	point_sets:
//	  ui: [org.eclipse.ui.views, org.eclipse.ui.editors]
type Config struct {
	// Editable is the default edit permission of loaded models.
	Editable bool `yaml:"editable"`

	// IdentityHint names manifests created from scratch.
	IdentityHint string `yaml:"identity_hint"`

	// Journal is the change journal written by the editor; empty disables it.
	Journal string `yaml:"journal"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// IndexConcurrency bounds the parallel loads of the index command.
	IndexConcurrency int `yaml:"index_concurrency"`

	// PointSets names lists of extension points for abbreviated loads.
	PointSets map[string][]string `yaml:"point_sets"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Editable:         true,
		IdentityHint:     "org.example.plugin",
		LogLevel:         "warn",
		IndexConcurrency: 4,
	}
}

// LoadConfig reads path over the defaults. An empty path yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.IndexConcurrency < 0 {
		return fmt.Errorf("index_concurrency must not be negative, got %d", c.IndexConcurrency)
	}
	for name, points := range c.PointSets {
		if len(points) == 0 {
			return fmt.Errorf("point set %q is empty", name)
		}
	}
	return nil
}

// Points resolves a -points flag value: "@name" selects a configured point
// set, anything else is a comma separated list. Returns nil for "".
func (c *Config) Points(spec string) ([]string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	if name, ok := strings.CutPrefix(spec, "@"); ok {
		points, ok := c.PointSets[name]
		if !ok {
			return nil, fmt.Errorf("unknown point set %q", name)
		}
		return points, nil
	}

	var out []string
	for _, p := range strings.Split(spec, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// Logger returns an slog.Logger writing text records to w at the
// configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ModelOptions returns model options for this configuration.
func (c *Config) ModelOptions(logger *slog.Logger) model.Options {
	opts := model.DefaultOptions()
	opts.Editable = c.Editable
	opts.IdentityHint = c.IdentityHint
	opts.Logger = logger
	return opts
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (use debug, info, warn, error)", s)
	}
}
