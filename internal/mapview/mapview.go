// Package mapview is the map: it owns the globe, the graph and the
// viewport, applies events one at a time and redraws after every change.
package mapview

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"globe-graph/internal/app"
	"globe-graph/internal/debug"
	"globe-graph/internal/globe"
	"globe-graph/internal/graph"
	"globe-graph/internal/notify"
	"globe-graph/internal/projection"
	"globe-graph/internal/source"
	"globe-graph/internal/surface"
	"globe-graph/internal/viewport"
)

const (
	EditModeNotice = "Edit mode: drag the handles to bend the edge, click elsewhere to finish."

	// radiusDivisor sizes the globe to the surface when no base scale is set.
	radiusDivisor = 2.5

	queueSize = 64
)

var background = surface.MustColor("#000000")

// Map is the orchestrator. All of its state is touched only by Dispatch,
// which Run calls for one event at a time.
type Map struct {
	Globe    *globe.Globe
	Graph    *graph.Graph
	Viewport viewport.Viewport

	// BaseScale is the globe radius at zoom 1. Zero sizes the globe to
	// whatever surface is drawn.
	BaseScale  float64
	Background colorful.Color

	// OnPresent is called after a frame reached the surface.
	OnPresent func()

	app  *app.App
	surf surface.Surface
	view projection.View

	panning bool
	last    projection.Point

	events   chan Event
	done     chan struct{}
	doneOnce sync.Once
}

// New creates a map drawing onto surf. The graph is laid out through the
// map itself.
func New(a *app.App, surf surface.Surface) *Map {
	m := &Map{
		Background: background,
		app:        a,
		surf:       surf,
		events:     make(chan Event, queueSize),
		done:       make(chan struct{}),
	}
	m.Globe = globe.New(m.changed)
	m.Graph = graph.New(m, m.changed)
	m.Graph.SetPickRadius(surface.PickRadius(surf))
	if a.Locator != nil {
		m.Graph.SetLocator(a.Locator)
	}

	s := m.Graph.Session()
	s.OnStart = func(*graph.Edge) { a.Notices.Notify(notify.Info, EditModeNotice) }
	s.OnEnd = func(*graph.Edge) { a.Notices.ClearIf(EditModeNotice) }

	a.Notices.SetScheduler(func(d time.Duration, f func()) func() bool {
		return time.AfterFunc(d, func() { m.Post(FuncEvent(f)) }).Stop
	})

	m.view = m.viewFor(surf)
	return m
}

// App returns the application context the map was built with.
func (m *Map) App() *app.App { return m.app }

// Surface returns the surface frames are presented to.
func (m *Map) Surface() surface.Surface { return m.surf }

// ApplyConfig sets the graph style and marker from the configuration.
func (m *Map) ApplyConfig() error {
	cfg := m.app.Config
	if err := m.Graph.SetEdgeColour(cfg.Graph.EdgeColour); err != nil {
		return err
	}
	if err := m.Graph.SetNodeColour(cfg.Graph.NodeColour); err != nil {
		return err
	}
	if err := m.Graph.SetFontColour(cfg.Graph.FontColour); err != nil {
		return err
	}
	shape, err := graph.ParseShape(cfg.Graph.NodeShape)
	if err != nil {
		return err
	}
	m.Graph.ChangeNodeShape(shape, cfg.Graph.NodeStroke)
	return nil
}

func (m *Map) baseScaleFor(s surface.Surface) float64 {
	if m.BaseScale > 0 {
		return m.BaseScale
	}
	w, h := s.Size()
	if r := math.Min(w, h) / radiusDivisor; r > 0 {
		return r
	}
	return projection.DefaultBaseScale
}

func (m *Map) viewFor(s surface.Surface) projection.View {
	return projection.FromViewport(m.Viewport.PanX, m.Viewport.PanY, m.Viewport.Zoom(),
		m.baseScaleFor(s), surface.Center(s))
}

// View returns the projection of the last frame.
func (m *Map) View() projection.View { return m.view }

// Project implements graph.Projector with the current view.
func (m *Map) Project(p projection.GeoPoint) (projection.Point, bool) {
	return m.view.Project(p)
}

// Unproject implements graph.Projector with the current view.
func (m *Map) Unproject(pt projection.Point) projection.GeoPoint {
	return m.view.Unproject(pt)
}

func (m *Map) changed() { m.Redraw() }

// Redraw renders a full frame and presents it. If anything panics while
// drawing, the frame is dropped, the previous one stays up and an error
// notice is posted.
func (m *Map) Redraw() bool {
	if !m.render(m.surf) {
		return false
	}
	if m.OnPresent != nil {
		m.OnPresent()
	}
	return true
}

func (m *Map) render(s surface.Surface) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			debug.Log("mapview: redraw failed: %v", r)
			m.app.Notices.Notify(notify.Error, fmt.Sprintf("Redraw failed: %v", r))
			ok = false
		}
	}()

	m.view = m.viewFor(s)
	f := s.NewFrame()
	f.Clear(m.Background)
	m.Globe.Redraw(f, m.view)
	m.Graph.Redraw(f)

	if err := s.Present(f); err != nil {
		debug.Log("mapview: present: %v", err)
		return false
	}
	return true
}

// ExportToImage renders the current state onto a fresh raster and returns
// it as a data URL.
func (m *Map) ExportToImage(format string) (string, error) {
	r, err := m.exportRaster()
	if err != nil {
		return "", err
	}
	return r.EncodeDataURL(format)
}

// ExportToFile renders the current state and writes it to path.
func (m *Map) ExportToFile(path, format string) error {
	r, err := m.exportRaster()
	if err != nil {
		return err
	}
	data, err := r.Encode(format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (m *Map) exportRaster() (*surface.Raster, error) {
	cfg := m.app.Config.Export
	r, err := surface.NewRaster(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	// the graph keeps the screen layout of the last frame for hit testing
	defer func() {
		m.view = m.viewFor(m.surf)
		m.Graph.Layout()
	}()
	if !m.render(r) {
		return nil, fmt.Errorf("export: render failed")
	}
	debug.Log("mapview: exported %dx%d", cfg.Width, cfg.Height)
	return r, nil
}

// Post queues e for the dispatcher. It reports false once Run has returned.
func (m *Map) Post(e Event) bool {
	select {
	case <-m.done:
		return false
	default:
	}
	select {
	case m.events <- e:
		return true
	case <-m.done:
		return false
	}
}

// Run dispatches queued events until ctx is done.
func (m *Map) Run(ctx context.Context) error {
	defer m.doneOnce.Do(func() { close(m.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-m.events:
			m.Dispatch(e)
		}
	}
}

// Dispatch applies one event and redraws if it changed anything.
func (m *Map) Dispatch(e Event) {
	switch e := e.(type) {
	case KeyEvent:
		if m.Viewport.Key(e.Key) {
			m.Redraw()
		}

	case WheelEvent:
		if m.Viewport.Wheel(e.Delta) {
			m.Redraw()
		}

	case PointerDown:
		m.last = e.At
		if m.Graph.PointerDown(e.At) {
			m.panning = false
			m.Redraw()
			return
		}
		m.panning = true

	case PointerMove:
		delta := e.At.Sub(m.last)
		m.last = e.At
		if m.Graph.PointerMove(delta) {
			m.Redraw()
			return
		}
		if m.panning && m.Viewport.Drag(delta.X, delta.Y) {
			m.Redraw()
		}

	case PointerUp:
		m.panning = false
		if m.Graph.PointerUp() {
			m.Redraw()
		}

	case ResizeEvent:
		m.Redraw()

	case TickEvent:
		m.Viewport.Spin(e.Spin * m.Viewport.Zoom())
		m.Redraw()

	case GraphLoaded:
		if err := m.Graph.SetData(e.Payload); err != nil {
			m.app.Notices.Notify(notify.Error, fmt.Sprintf("Could not load graph: %v", err))
			return
		}
		m.app.Notices.Notify(notify.Success, "Graph loaded.")

	case GlobeLoaded:
		m.Globe.SetData(e.Features)

	case LoadFailed:
		debug.Log("mapview: %s load failed: %v", e.What, e.Err)
		m.app.Notices.Notify(notify.Error, loadMessage(e.Err))

	case FuncEvent:
		e()
	}
}

func loadMessage(err error) string {
	msg := err.Error()
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return msg
}

// LoadGraph fetches the server's graph in the background.
func (m *Map) LoadGraph(ctx context.Context) {
	go func() {
		p, err := m.app.Client.FetchGraph(ctx)
		m.postLoad("graph", p, err, "server")
	}()
}

// LoadGraphFile uploads a graph file to the server, which parses it, and
// loads the answer.
func (m *Map) LoadGraphFile(ctx context.Context, path string) {
	go func() {
		f, err := os.Open(path)
		if err != nil {
			m.Post(LoadFailed{What: "graph", Err: err})
			return
		}
		defer f.Close()
		p, err := m.app.Client.UploadGraphFile(ctx, path, f)
		m.postLoad("graph", p, err, path)
	}()
}

// OpenGraphFile parses a local graph file without the server.
func (m *Map) OpenGraphFile(path string) {
	go func() {
		p, err := source.ReadGraphFile(path)
		m.postLoad("graph", p, err, path)
	}()
}

func (m *Map) postLoad(what string, p *graph.Payload, err error, from string) {
	if err != nil {
		m.Post(LoadFailed{What: what, Err: err})
		return
	}
	m.Post(GraphLoaded{Payload: p, Source: from})
}

// LoadGlobeData loads globe id as resolved by source.LoadGlobe.
func (m *Map) LoadGlobeData(ctx context.Context, id string) {
	go func() {
		features, err := source.LoadGlobe(ctx, m.app.Client, id)
		if err != nil {
			m.Post(LoadFailed{What: "globe", Err: err})
			return
		}
		m.Post(GlobeLoaded{Features: features, ID: id})
	}()
}

// WatchGraphFile reloads path from disk every time it is written.
func (m *Map) WatchGraphFile(ctx context.Context, path string) error {
	return source.Watch(ctx, path, func() { m.OpenGraphFile(path) })
}
