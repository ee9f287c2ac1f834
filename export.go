package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"globe-graph/internal/app"
	"globe-graph/internal/config"
	"globe-graph/internal/globe"
	"globe-graph/internal/graph"
	"globe-graph/internal/mapview"
	"globe-graph/internal/notify"
	"globe-graph/internal/source"
	"globe-graph/internal/surface"
)

// sceneOptions select what an offline command loads and how it is viewed.
type sceneOptions struct {
	graphFile string
	globeID   string
	panX      float64
	panY      float64
	zoom      int
	shape     string
	stroke    bool
}

func (o *sceneOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.graphFile, "graph", "g", "", "Graph file (JSON or YAML); fetched from the server when empty")
	f.StringVar(&o.globeID, "globe", "", "Globe id on the server, a GeoJSON file, or empty for the built-in globe")
	f.Float64Var(&o.panX, "pan-x", 0, "Horizontal pan offset")
	f.Float64Var(&o.panY, "pan-y", 0, "Vertical pan offset")
	f.IntVar(&o.zoom, "zoom", 0, "Zoom level; each step is a factor of 1.25")
	f.StringVar(&o.shape, "shape", "", "Node shape: circle|rectangle|square")
	f.BoolVar(&o.stroke, "stroke", false, "Outline nodes that have a stroke colour")
}

// buildScene loads the globe and the graph concurrently and returns a map
// drawing onto an export-sized raster.
func (o *sceneOptions) buildScene(cmd *cobra.Command, cfg *config.Config) (*mapview.Map, *app.App, error) {
	if cmd.Flags().Changed("shape") {
		cfg.Graph.NodeShape = o.shape
	}
	if cmd.Flags().Changed("stroke") {
		cfg.Graph.NodeStroke = o.stroke
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	a, err := newApp(cfg)
	if err != nil {
		return nil, nil, err
	}
	console := notify.NewConsole()
	a.Notices.OnChange = func(n *notify.Notice) {
		if n != nil {
			console.Notify(n.Kind, n.Text)
		}
	}

	var (
		features []globe.Feature
		payload  *graph.Payload
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		features, err = source.LoadGlobe(ctx, a.Client, o.globeID)
		return err
	})
	g.Go(func() error {
		var err error
		payload, err = fetchGraph(ctx, a, o.graphFile)
		return err
	})
	if err := g.Wait(); err != nil {
		a.Close()
		return nil, nil, err
	}

	r, err := surface.NewRaster(cfg.Export.Width, cfg.Export.Height)
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	m := mapview.New(a, r)
	m.BaseScale = cfg.Display.BaseScale
	m.Viewport.SetLevel(o.zoom)
	m.Viewport.SetPan(o.panX, o.panY)
	if err := m.ApplyConfig(); err != nil {
		a.Close()
		return nil, nil, err
	}

	m.Globe.SetData(features)
	if err := m.Graph.SetData(payload); err != nil {
		a.Close()
		return nil, nil, err
	}
	return m, a, nil
}

func fetchGraph(ctx context.Context, a *app.App, file string) (*graph.Payload, error) {
	if file != "" {
		return source.ReadGraphFile(file)
	}
	return a.Client.FetchGraph(ctx)
}

func exportCmd() *cobra.Command {
	var (
		scene   sceneOptions
		out     string
		format  string
		width   int
		height  int
		dataURL bool
		pretty  bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the globe and graph to an image",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("format") {
				cfg.Export.Format = format
			}
			if f.Changed("width") {
				cfg.Export.Width = width
			}
			if f.Changed("height") {
				cfg.Export.Height = height
			}

			m, a, err := scene.buildScene(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			if pretty {
				m.Graph.Beautify()
			}

			if dataURL {
				url, err := m.ExportToImage(cfg.Export.Format)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			}
			if out == "" {
				out = "globe-graph." + cfg.Export.Format
			}
			if err := m.ExportToFile(out, cfg.Export.Format); err != nil {
				return err
			}
			a.Notices.Notify(notify.Success, "Exported "+out+".")
			return nil
		},
	}
	scene.register(cmd)
	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "", "Output file")
	f.StringVarP(&format, "format", "f", "png", "Image format: png|jpeg")
	f.IntVar(&width, "width", 1200, "Image width in pixels")
	f.IntVar(&height, "height", 1200, "Image height in pixels")
	f.BoolVar(&dataURL, "data-url", false, "Print a data URL instead of writing a file")
	f.BoolVar(&pretty, "beautify", false, "Beautify edges before rendering")
	return cmd
}

func beautifyCmd() *cobra.Command {
	var scene sceneOptions
	cmd := &cobra.Command{
		Use:   "beautify",
		Short: "Beautify a graph and print the resulting edge handles as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			m, a, err := scene.buildScene(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			m.Graph.Beautify()
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(m.Graph.Handles())
		},
	}
	scene.register(cmd)
	return cmd
}
