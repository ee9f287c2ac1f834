// Package surfacetest provides a recording surface for tests.
package surfacetest

import (
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"globe-graph/internal/projection"
	"globe-graph/internal/surface"
)

// Op is one recorded drawing call.
type Op struct {
	Name   string // clear, move, line, cubic, close, circle, rect, fill, stroke, text
	Points []projection.Point
	Radius float64
	Text   string
	Paint  surface.Paint
}

// Frame records every call made on it.
type Frame struct {
	owner *Surface
	Ops   []Op

	// PanicOn makes the named call panic, to exercise recovery paths.
	PanicOn string
}

func (f *Frame) add(op Op) {
	if f.PanicOn != "" && f.PanicOn == op.Name {
		panic("surfacetest: " + op.Name)
	}
	f.Ops = append(f.Ops, op)
}

func (f *Frame) Clear(c colorful.Color) {
	f.add(Op{Name: "clear", Paint: surface.Paint{Color: c, Opacity: 1}})
}

func (f *Frame) MoveTo(p projection.Point) { f.add(Op{Name: "move", Points: []projection.Point{p}}) }
func (f *Frame) LineTo(p projection.Point) { f.add(Op{Name: "line", Points: []projection.Point{p}}) }
func (f *Frame) ClosePath() { f.add(Op{Name: "close"}) }

func (f *Frame) CubicTo(c1, c2, p projection.Point) {
	f.add(Op{Name: "cubic", Points: []projection.Point{c1, c2, p}})
}

func (f *Frame) Circle(c projection.Point, r float64) {
	f.add(Op{Name: "circle", Points: []projection.Point{c}, Radius: r})
}

func (f *Frame) Rect(x, y, w, h float64) {
	f.add(Op{Name: "rect", Points: []projection.Point{{X: x, Y: y}, {X: x + w, Y: y + h}}})
}

func (f *Frame) Fill(p surface.Paint) { f.add(Op{Name: "fill", Paint: p}) }
func (f *Frame) Stroke(p surface.Paint) { f.add(Op{Name: "stroke", Paint: p}) }

func (f *Frame) Text(s string, at projection.Point, p surface.Paint) {
	f.add(Op{Name: "text", Text: s, Points: []projection.Point{at}, Paint: p})
}

// Names lists the recorded call names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.Ops))
	for i, op := range f.Ops {
		names[i] = op.Name
	}
	return names
}

// Count returns how many calls named name were recorded.
func (f *Frame) Count(name string) int {
	n := 0
	for _, op := range f.Ops {
		if op.Name == name {
			n++
		}
	}
	return n
}

// Surface hands out recording frames and keeps the presented ones.
type Surface struct {
	Width, Height float64

	// PanicOn is copied into every new frame.
	PanicOn string

	mu        sync.Mutex
	presented []*Frame
}

// New returns a w x h recording surface.
func New(w, h float64) *Surface {
	return &Surface{Width: w, Height: h}
}

func (s *Surface) Size() (float64, float64) { return s.Width, s.Height }

func (s *Surface) NewFrame() surface.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Frame{owner: s, PanicOn: s.PanicOn}
}

func (s *Surface) Present(f surface.Frame) error {
	rf, ok := f.(*Frame)
	if !ok || rf.owner != s {
		return surface.ErrForeignFrame
	}
	s.mu.Lock()
	s.presented = append(s.presented, rf)
	s.mu.Unlock()
	return nil
}

// Presented returns how many frames were presented.
func (s *Surface) Presented() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.presented)
}

// Last returns the most recently presented frame, or nil.
func (s *Surface) Last() *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.presented) == 0 {
		return nil
	}
	return s.presented[len(s.presented)-1]
}
