// Package config loads the TOML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"globe-graph/internal/graph"
	"globe-graph/internal/surface"
)

const DefaultBaseURL = "http://localhost:8000"

type Config struct {
	API struct {
		BaseURL string `toml:"base_url"`
		Timeout int    `toml:"timeout"` // seconds
	} `toml:"api"`

	Display struct {
		AspectRatio float64 `toml:"aspect_ratio"`
		Monochrome  bool    `toml:"monochrome"`
		BaseScale   float64 `toml:"base_scale"`
		SpinPeriod  int     `toml:"spin_period"`  // seconds per turn, 0 is still
		RefreshRate int     `toml:"refresh_rate"` // milliseconds
		Charset     string  `toml:"charset"`
		Globe       string  `toml:"globe"`
	} `toml:"display"`

	Graph struct {
		File       string `toml:"file"`
		EdgeColour string `toml:"edge_colour"`
		NodeColour string `toml:"node_colour"`
		FontColour string `toml:"font_colour"`
		NodeShape  string `toml:"node_shape"`
		NodeStroke bool   `toml:"node_stroke"`
		Watch      bool   `toml:"watch"`
	} `toml:"graph"`

	Export struct {
		Width  int    `toml:"width"`
		Height int    `toml:"height"`
		Format string `toml:"format"`
	} `toml:"export"`

	GeoIP struct {
		Database string `toml:"database"`
	} `toml:"geoip"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	var c Config
	c.API.BaseURL = DefaultBaseURL
	c.API.Timeout = 10

	c.Display.AspectRatio = 2.0
	c.Display.BaseScale = 500
	c.Display.RefreshRate = 100
	c.Display.Charset = "ascii"

	c.Graph.EdgeColour = graph.DefaultEdgeColour
	c.Graph.NodeColour = graph.DefaultNodeColour
	c.Graph.FontColour = graph.DefaultFontColour
	c.Graph.NodeShape = "circle"

	c.Export.Width = 1200
	c.Export.Height = 1200
	c.Export.Format = "png"
	return &c
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return c, nil
}

// Save writes c to path.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.API.Timeout < 1 || c.API.Timeout > 300 {
		bad("api.timeout must be between 1 and 300 seconds")
	}
	if c.Display.AspectRatio < 1.0 || c.Display.AspectRatio > 4.0 {
		bad("display.aspect_ratio must be between 1.0 and 4.0")
	}
	if c.Display.BaseScale <= 0 {
		bad("display.base_scale must be positive")
	}
	if c.Display.SpinPeriod != 0 && (c.Display.SpinPeriod < 10 || c.Display.SpinPeriod > 300) {
		bad("display.spin_period must be 0 or between 10 and 300 seconds")
	}
	if c.Display.RefreshRate < 50 || c.Display.RefreshRate > 1000 {
		bad("display.refresh_rate must be between 50 and 1000 milliseconds")
	}
	if _, err := surface.ParseCharset(c.Display.Charset); err != nil {
		bad("display.charset: %v", err)
	}

	for key, v := range map[string]string{
		"graph.edge_colour": c.Graph.EdgeColour,
		"graph.node_colour": c.Graph.NodeColour,
		"graph.font_colour": c.Graph.FontColour,
	} {
		if _, err := graph.ParseColour(v); err != nil {
			bad("%s: %v", key, err)
		}
	}
	if _, err := graph.ParseShape(c.Graph.NodeShape); err != nil {
		bad("graph.node_shape: %v", err)
	}

	if c.Export.Width <= 0 || c.Export.Height <= 0 {
		bad("export size must be positive")
	}
	switch strings.ToLower(c.Export.Format) {
	case "png", "jpeg", "jpg":
	default:
		bad("export.format must be png or jpeg")
	}
	return errors.Join(errs...)
}
