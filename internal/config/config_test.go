package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "globe-graph.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	c, err := Load("")
	if err != nil || c.API.BaseURL != DefaultBaseURL {
		t.Errorf("empty path should give defaults, got %+v, %v", c, err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[api]
base_url = "https://graphs.example.org"

[display]
aspect_ratio = 2.5
charset = "braille"
spin_period = 60

[graph]
node_shape = "square"
edge_colour = "#00aaff"
watch = true
`)
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.API.BaseURL != "https://graphs.example.org" || c.API.Timeout != 10 {
		t.Errorf("api section wrong: %+v", c.API)
	}
	if c.Display.AspectRatio != 2.5 || c.Display.Charset != "braille" || c.Display.SpinPeriod != 60 {
		t.Errorf("display section wrong: %+v", c.Display)
	}
	if c.Display.RefreshRate != 100 || c.Display.BaseScale != 500 {
		t.Error("missing keys should keep their defaults")
	}
	if c.Graph.NodeShape != "square" || !c.Graph.Watch || c.Graph.NodeColour != "#1D1E21" {
		t.Errorf("graph section wrong: %+v", c.Graph)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := writeConfig(t, `
[display]
aspect_ratio = 9.0
refresh_rate = 10
spin_period = 5

[graph]
node_shape = "hexagon"
font_colour = "not-a-colour"

[export]
format = "gif"
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"aspect_ratio", "refresh_rate", "spin_period", "node_shape", "font_colour", "export.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[display]\ntheme = \"matrix\"\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "display.theme") {
		t.Errorf("expected unknown key error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error")
	}
}

func TestSave(t *testing.T) {
	c := Default()
	c.GeoIP.Database = "/var/lib/GeoIP/GeoLite2-City.mmdb"
	c.Export.Format = "jpeg"
	path := filepath.Join(t.TempDir(), "out.toml")
	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.GeoIP.Database != c.GeoIP.Database || loaded.Export.Format != "jpeg" {
		t.Errorf("saved settings lost: %+v", loaded)
	}
}
