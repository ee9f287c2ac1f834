// Package viewport tracks pan and zoom of the map.
package viewport

import (
	"math"

	"globe-graph/internal/debug"
)

const (
	PanStep   = 100.0
	ZoomRatio = 1.25

	// TurnUnits is the pan that turns the globe once around at zoom 1.
	TurnUnits = 3600.0

	// MaxTilt is the largest vertical pan at zoom 1: a pole at the centre.
	MaxTilt = TurnUnits / 4

	MinLevel = -20
	MaxLevel = 20
)

// Key is a viewport command independent of the input device.
type Key int

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyZero
	KeyMinus
	KeyPlus
)

// KeyFromRune maps the printable keys, including the numeric keypad
// directions, to viewport keys.
func KeyFromRune(r rune) Key {
	switch r {
	case '4':
		return KeyLeft
	case '6':
		return KeyRight
	case '8':
		return KeyUp
	case '2':
		return KeyDown
	case '0':
		return KeyZero
	case '-', '_':
		return KeyMinus
	case '+', '=':
		return KeyPlus
	}
	return KeyNone
}

// Viewport is the pan offset in pixels and the zoom. Zoom is kept as an
// integer power of ZoomRatio so opposite zoom steps cancel exactly.
type Viewport struct {
	PanX, PanY float64
	level      int
}

// Zoom returns the current zoom factor, always > 0.
func (v *Viewport) Zoom() float64 {
	return math.Pow(ZoomRatio, float64(v.level))
}

// Level returns the zoom level.
func (v *Viewport) Level() int { return v.level }

// SetLevel sets the zoom level, clamped to [MinLevel, MaxLevel].
func (v *Viewport) SetLevel(level int) {
	v.level = max(MinLevel, min(MaxLevel, level))
	v.clampTilt()
}

// SetPan moves to the given pan offset. PanY is held within the range
// that still tilts the globe.
func (v *Viewport) SetPan(x, y float64) {
	v.PanX, v.PanY = x, y
	v.clampTilt()
}

func (v *Viewport) tiltLimit() float64 {
	return MaxTilt * v.Zoom()
}

func (v *Viewport) clampTilt() {
	limit := v.tiltLimit()
	v.PanY = math.Max(-limit, math.Min(limit, v.PanY))
}

// pan moves by dx, dy and reports whether anything moved.
func (v *Viewport) pan(dx, dy float64) bool {
	x, y := v.PanX, v.PanY
	v.PanX += dx
	v.PanY += dy
	v.clampTilt()
	return v.PanX != x || v.PanY != y
}

// Reset returns to no pan and zoom 1.
func (v *Viewport) Reset() {
	v.PanX, v.PanY, v.level = 0, 0, 0
}

// ZoomIn multiplies the zoom by ZoomRatio. It reports false at the limit.
func (v *Viewport) ZoomIn() bool {
	if v.level >= MaxLevel {
		return false
	}
	v.level++
	return true
}

// ZoomOut divides the zoom by ZoomRatio. It reports false at the limit.
func (v *Viewport) ZoomOut() bool {
	if v.level <= MinLevel {
		return false
	}
	v.level--
	v.clampTilt()
	return true
}

// Key applies k and reports whether the viewport changed.
func (v *Viewport) Key(k Key) bool {
	step := PanStep * v.Zoom()
	switch k {
	case KeyLeft:
		v.pan(-step, 0)
	case KeyRight:
		v.pan(step, 0)
	case KeyUp:
		if !v.pan(0, -step) {
			return false
		}
	case KeyDown:
		if !v.pan(0, step) {
			return false
		}
	case KeyZero:
		if v.PanX == 0 && v.PanY == 0 && v.level == 0 {
			return false
		}
		v.Reset()
	case KeyMinus:
		return v.ZoomOut()
	case KeyPlus:
		return v.ZoomIn()
	default:
		return false
	}
	debug.Log("viewport: pan %.1f,%.1f zoom %.4f", v.PanX, v.PanY, v.Zoom())
	return true
}

// Wheel zooms in for each notch up (dy < 0) and out for each notch down.
func (v *Viewport) Wheel(dy int) bool {
	changed := false
	for ; dy < 0; dy++ {
		changed = v.ZoomIn() || changed
	}
	for ; dy > 0; dy-- {
		changed = v.ZoomOut() || changed
	}
	return changed
}

// Drag moves the content with the pointer by the pointer delta.
func (v *Viewport) Drag(dx, dy float64) bool {
	if (dx == 0 && dy == 0) || math.IsNaN(dx) || math.IsNaN(dy) {
		return false
	}
	return v.pan(dx, dy)
}

// Spin advances the auto-rotation by dx units of pan.
func (v *Viewport) Spin(dx float64) {
	v.pan(dx, 0)
}
