package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"globe-graph/internal/app"
	"globe-graph/internal/config"
	"globe-graph/internal/debug"
	"globe-graph/internal/mapview"
	"globe-graph/internal/notify"
	"globe-graph/internal/surface"
	"globe-graph/internal/viewport"
)

const statusHint = " q quit  b beautify  s shape  k stroke  e export "

// viewerOptions are the flags only the terminal viewer has.
type viewerOptions struct {
	graphFile   string
	globeID     string
	watch       bool
	charset     string
	spinPeriod  int
	refreshRate int
}

func (o *viewerOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.graphFile, "graph", "g", "", "Graph file to open instead of fetching from the server")
	f.StringVar(&o.globeID, "globe", "", "Globe id on the server, a GeoJSON file, or empty for the built-in globe")
	f.BoolVarP(&o.watch, "watch", "w", false, "Reload the graph file when it changes")
	f.StringVar(&o.charset, "charset", "ascii", "Character set: ascii|blocks|braille")
	f.IntVarP(&o.spinPeriod, "spin", "s", 0, "Globe rotation period in seconds (10-300, 0 to stand still)")
	f.IntVarP(&o.refreshRate, "refresh", "r", 100, "Refresh rate in milliseconds (50-1000)")
}

func (o *viewerOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("graph") {
		cfg.Graph.File = o.graphFile
	}
	if f.Changed("globe") {
		cfg.Display.Globe = o.globeID
	}
	if f.Changed("watch") {
		cfg.Graph.Watch = o.watch
	}
	if f.Changed("charset") {
		cfg.Display.Charset = o.charset
	}
	if f.Changed("spin") {
		cfg.Display.SpinPeriod = o.spinPeriod
	}
	if f.Changed("refresh") {
		cfg.Display.RefreshRate = o.refreshRate
	}
}

// viewer is the terminal front end: it feeds tcell input into the map's
// queue and copies presented frames onto the screen.
type viewer struct {
	screen tcell.Screen
	cells  *surface.Cells
	m      *mapview.Map
	a      *app.App

	paused  atomic.Bool
	pressed bool // only touched by the poll goroutine
}

func runViewer(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	charset, err := surface.ParseCharset(cfg.Display.Charset)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	width, height := screen.Size()
	cells := surface.NewCells(width, height-1, cfg.Display.AspectRatio, charset)
	cells.Monochrome = cfg.Display.Monochrome

	v := &viewer{screen: screen, cells: cells, a: a}
	v.m = mapview.New(a, cells)
	v.m.OnPresent = v.show
	a.Notices.OnChange = func(*notify.Notice) { v.show() }
	if err := v.m.ApplyConfig(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	v.m.LoadGlobeData(ctx, cfg.Display.Globe)
	v.loadGraph(ctx)
	if cfg.Graph.File != "" && cfg.Graph.Watch {
		if err := v.m.WatchGraphFile(ctx, cfg.Graph.File); err != nil {
			a.Notices.Notify(notify.Error, err.Error())
		}
	}
	if cfg.Display.SpinPeriod > 0 {
		go v.spin(ctx, cfg.Display.SpinPeriod, cfg.Display.RefreshRate)
	}

	quit := v.pollEvents(ctx)
	done := make(chan error, 1)
	go func() { done <- v.m.Run(ctx) }()
	v.m.Post(mapview.ResizeEvent{})

	select {
	case <-quit:
		debug.Log("Shutting down")
	case <-ctx.Done():
	}
	cancel()
	<-done
	return nil
}

func (v *viewer) loadGraph(ctx context.Context) {
	if file := v.a.Config.Graph.File; file != "" {
		v.m.OpenGraphFile(file)
		return
	}
	v.m.LoadGraph(ctx)
}

// spin posts one rotation step per refresh period.
func (v *viewer) spin(ctx context.Context, periodSec, refreshMS int) {
	interval := time.Duration(refreshMS) * time.Millisecond
	step := viewport.TurnUnits * interval.Seconds() / float64(periodSec)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !v.paused.Load() {
				v.m.Post(mapview.TickEvent{Spin: step})
			}
		}
	}
}

// show copies the last frame and the status line onto the screen. It runs
// on the dispatcher.
func (v *viewer) show() {
	v.cells.Blit(v.screen, 0, 0)
	v.drawStatus()
	v.screen.Show()
}

func (v *viewer) drawStatus() {
	width, height := v.screen.Size()
	y := height - 1
	base := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorGray)
	for x := 0; x < width; x++ {
		v.screen.SetContent(x, y, ' ', nil, base)
	}

	x := 0
	if n, ok := v.a.Notices.Current(); ok {
		x = v.drawText(0, y, " "+n.Text+" ", noticeStyle(n.Kind, v.cells.Monochrome))
	}
	if hint := runewidth.StringWidth(statusHint); width-hint > x {
		v.drawText(width-hint, y, statusHint, base)
	}
}

func (v *viewer) drawText(x, y int, text string, style tcell.Style) int {
	width, _ := v.screen.Size()
	for _, r := range text {
		if x >= width {
			break
		}
		v.screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
	return x
}

func noticeStyle(k notify.Kind, mono bool) tcell.Style {
	style := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	if mono {
		return style.Reverse(k == notify.Error)
	}
	switch k {
	case notify.Success:
		return style.Foreground(tcell.ColorGreen)
	case notify.Error:
		return style.Foreground(tcell.ColorRed).Bold(true)
	}
	return style.Foreground(tcell.ColorAqua)
}

func (v *viewer) resize() {
	width, height := v.screen.Size()
	v.cells.Resize(width, height-1)
	v.screen.Clear()
	debug.Log("Resize: %dx%d", width, height)
}

func (v *viewer) pollEvents(ctx context.Context) chan bool {
	quit := make(chan bool, 1)
	go func() {
		for {
			ev := v.screen.PollEvent()
			switch ev := ev.(type) {
			case nil:
				return
			case *tcell.EventKey:
				if v.handleKey(ctx, ev) {
					quit <- true
					return
				}
			case *tcell.EventMouse:
				v.handleMouse(ev)
			case *tcell.EventResize:
				v.m.Post(mapview.FuncEvent(v.resize))
				v.m.Post(mapview.ResizeEvent{})
			}
		}
	}()
	return quit
}

// handleKey reports whether the key asks to quit.
func (v *viewer) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return true
	case tcell.KeyLeft:
		v.m.Post(mapview.KeyEvent{Key: viewport.KeyLeft})
	case tcell.KeyRight:
		v.m.Post(mapview.KeyEvent{Key: viewport.KeyRight})
	case tcell.KeyUp:
		v.m.Post(mapview.KeyEvent{Key: viewport.KeyUp})
	case tcell.KeyDown:
		v.m.Post(mapview.KeyEvent{Key: viewport.KeyDown})
	case tcell.KeyRune:
		switch r := ev.Rune(); r {
		case 'q', 'Q':
			return true
		case ' ':
			v.paused.Store(!v.paused.Load())
		case 'b', 'B':
			v.m.Post(mapview.FuncEvent(func() {
				v.m.Graph.Beautify()
				v.a.Notices.Notify(notify.Success, "Edges beautified.")
			}))
		case 's', 'S':
			v.m.Post(mapview.FuncEvent(func() {
				mk := v.m.Graph.Marker()
				v.m.Graph.ChangeNodeShape(mk.Shape.Next(), mk.Stroke)
			}))
		case 'k', 'K':
			v.m.Post(mapview.FuncEvent(func() {
				mk := v.m.Graph.Marker()
				v.m.Graph.ChangeNodeShape(mk.Shape, !mk.Stroke)
			}))
		case 'e', 'E':
			v.m.Post(mapview.FuncEvent(v.export))
		case 'r', 'R':
			v.loadGraph(ctx)
		default:
			if k := viewport.KeyFromRune(r); k != viewport.KeyNone {
				v.m.Post(mapview.KeyEvent{Key: k})
			}
		}
	}
	return false
}

func (v *viewer) handleMouse(ev *tcell.EventMouse) {
	col, row := ev.Position()
	at := v.cells.CellAt(col, row)
	buttons := ev.Buttons()

	switch {
	case buttons&tcell.WheelUp != 0:
		v.m.Post(mapview.WheelEvent{Delta: -1})
	case buttons&tcell.WheelDown != 0:
		v.m.Post(mapview.WheelEvent{Delta: 1})
	case buttons&tcell.Button1 != 0:
		if !v.pressed {
			v.pressed = true
			v.m.Post(mapview.PointerDown{At: at})
		} else {
			v.m.Post(mapview.PointerMove{At: at})
		}
	case v.pressed:
		v.pressed = false
		v.m.Post(mapview.PointerUp{At: at})
	}
}

func (v *viewer) export() {
	cfg := v.a.Config.Export
	path := fmt.Sprintf("globe-graph-%s.%s", time.Now().Format("20060102-150405"), cfg.Format)
	if err := v.m.ExportToFile(path, cfg.Format); err != nil {
		v.a.Notices.Notify(notify.Error, fmt.Sprintf("Export failed: %v", err))
		return
	}
	v.a.Notices.Notify(notify.Success, "Exported "+path+".")
}
