package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"globe-graph/internal/app"
	"globe-graph/internal/config"
	"globe-graph/internal/debug"
)

// Flags shared by every command. Set flags override the config file.
var (
	debugFile   string
	configFile  string
	baseURL     string
	monochrome  bool
	aspectRatio float64
	geoipDB     string
)

func rootCmd() *cobra.Command {
	var opts viewerOptions

	root := &cobra.Command{
		Use:   "globe-graph",
		Short: "Draw a graph of geographic nodes over a rotating globe",
		Long: `globe-graph draws a graph whose nodes sit at latitude/longitude positions
over an orthographic globe, in the terminal or as an image.

CONTROLS:
    q, Esc, Ctrl+C  Quit
    Arrows, 4/6/8/2 Pan the globe
    + / -           Zoom in / out (mouse wheel too)
    0               Reset pan and zoom
    Mouse drag      Pan, or bend the edge being edited
    Click an edge   Edit its curve; click empty space to finish
    b               Beautify edges around nodes they cross
    s               Cycle node shape (circle, rectangle, square)
    k               Toggle node stroke
    e               Export a PNG to the working directory
    r               Reload the graph
    Space           Pause / resume rotation`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := debug.Open(debugFile); err != nil {
				return fmt.Errorf("opening debug log: %w", err)
			}
			debug.Log("globe-graph %s starting", cmd.Name())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			debug.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runViewer(cmd.Context(), cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&debugFile, "debug", "d", "", "Debug log filename")
	pf.StringVarP(&configFile, "config", "c", "", "Load settings from a TOML file")
	pf.StringVarP(&baseURL, "base-url", "u", config.DefaultBaseURL, "Base URL of the graph server API")
	pf.BoolVarP(&monochrome, "monochrome", "m", false, "Draw without colour")
	pf.Float64VarP(&aspectRatio, "aspect", "a", 2.0, "Character aspect ratio (height/width, 1.0-4.0)")
	pf.StringVar(&geoipDB, "geoip", "", "MaxMind City database for nodes given by IP")

	opts.register(root)

	root.AddCommand(exportCmd(), beautifyCmd())
	return root
}

// loadConfig reads the config file and applies the shared flags that were
// set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("base-url") || cfg.API.BaseURL == "" {
		cfg.API.BaseURL = baseURL
	}
	if flags.Changed("monochrome") {
		cfg.Display.Monochrome = monochrome
	}
	if flags.Changed("aspect") {
		cfg.Display.AspectRatio = aspectRatio
	}
	if flags.Changed("geoip") {
		cfg.GeoIP.Database = geoipDB
	}
	return cfg, cfg.Validate()
}

// newApp builds the application context and reports what it could not
// open.
func newApp(cfg *config.Config) (*app.App, error) {
	a, err := app.New(cfg)
	if err != nil {
		return nil, err
	}
	debug.Log("api: %s, geoip: %t", cfg.API.BaseURL, a.Locator != nil)
	return a, nil
}
