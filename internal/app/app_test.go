package app

import (
	"testing"

	"globe-graph/internal/config"
)

func TestNewWithDefaults(t *testing.T) {
	a, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	if a.Config == nil || a.Notices == nil || a.Client == nil {
		t.Fatalf("services not wired: %+v", a)
	}
	if a.Locator != nil {
		t.Error("no geoip database configured, locator should be nil")
	}
	if a.Client.BaseURL != config.DefaultBaseURL {
		t.Errorf("client base URL %q", a.Client.BaseURL)
	}
}

func TestNewMissingGeoIPDatabase(t *testing.T) {
	cfg := config.Default()
	cfg.GeoIP.Database = "/nonexistent/GeoLite2-City.mmdb"
	if _, err := New(cfg); err == nil {
		t.Error("expected error for missing database")
	}
}
