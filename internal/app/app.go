// Package app is the application context built once at startup and handed
// to every component that needs shared services.
package app

import (
	"time"

	"globe-graph/internal/config"
	"globe-graph/internal/debug"
	"globe-graph/internal/graph"
	"globe-graph/internal/locate"
	"globe-graph/internal/notify"
	"globe-graph/internal/source"
)

type App struct {
	Config  *config.Config
	Notices *notify.Board
	Client  *source.Client

	// Locator is nil when no GeoIP database is configured.
	Locator graph.Locator

	closers []func() error
}

// New wires the shared services described by cfg.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	a := &App{
		Config:  cfg,
		Notices: notify.NewBoard(nil),
		Client:  source.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.Timeout)*time.Second),
	}
	if cfg.GeoIP.Database != "" {
		g, err := locate.Open(cfg.GeoIP.Database)
		if err != nil {
			return nil, err
		}
		a.Locator = g
		a.closers = append(a.closers, g.Close)
		debug.Log("app: geoip database %s", cfg.GeoIP.Database)
	}
	return a, nil
}

// Close releases everything New opened.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
