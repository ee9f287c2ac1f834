package mapview

import (
	"globe-graph/internal/globe"
	"globe-graph/internal/graph"
	"globe-graph/internal/projection"
	"globe-graph/internal/viewport"
)

// Event is one unit of work for the dispatcher. Every input source, timer
// and load completion reaches the map as an Event.
type Event interface {
	event()
}

type KeyEvent struct{ Key viewport.Key }

type PointerDown struct{ At projection.Point }

type PointerMove struct{ At projection.Point }

type PointerUp struct{ At projection.Point }

// WheelEvent carries wheel notches; negative is up.
type WheelEvent struct{ Delta int }

// ResizeEvent is posted after the surface changed size.
type ResizeEvent struct{}

// TickEvent advances the auto-rotation by Spin units of pan at zoom 1.
type TickEvent struct{ Spin float64 }

type GraphLoaded struct {
	Payload *graph.Payload
	Source  string
}

type GlobeLoaded struct {
	Features []globe.Feature
	ID       string
}

// LoadFailed reports a load that never produced a payload.
type LoadFailed struct {
	What string
	Err  error
}

// FuncEvent runs on the dispatcher. Timers use it to get back onto the
// queue.
type FuncEvent func()

func (KeyEvent) event()    {}
func (PointerDown) event() {}
func (PointerMove) event() {}
func (PointerUp) event()   {}
func (WheelEvent) event()  {}
func (ResizeEvent) event() {}
func (TickEvent) event()   {}
func (GraphLoaded) event() {}
func (GlobeLoaded) event() {}
func (LoadFailed) event()  {}
func (FuncEvent) event()   {}
