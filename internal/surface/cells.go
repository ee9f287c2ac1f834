package surface

import (
	"math"
	"sort"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"globe-graph/internal/projection"
)

// DefaultCellUnit is how many surface units one terminal column spans.
const DefaultCellUnit = 10.0

type cell struct {
	r      rune
	fg, bg colorful.Color
	hasFg  bool
	hasBg  bool
}

// Cells is a character-cell surface for a tcell screen. One column is Unit
// surface units wide and one row is Unit*AspectRatio units tall, so circles
// stay round on terminals whose cells are taller than they are wide.
type Cells struct {
	Unit        float64
	AspectRatio float64
	Charset     Charset
	Monochrome  bool

	mu         sync.Mutex
	cols, rows int
	current    []cell
}

// NewCells creates a cols x rows cell surface.
func NewCells(cols, rows int, aspectRatio float64, charset Charset) *Cells {
	if aspectRatio <= 0 {
		aspectRatio = 2.0
	}
	c := &Cells{
		Unit:        DefaultCellUnit,
		AspectRatio: aspectRatio,
		Charset:     charset,
	}
	c.Resize(cols, rows)
	return c
}

// Resize changes the grid size and drops the presented frame.
func (c *Cells) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	c.mu.Lock()
	c.cols, c.rows = cols, rows
	c.current = nil
	c.mu.Unlock()
}

// Grid returns the size in columns and rows.
func (c *Cells) Grid() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cols, c.rows
}

func (c *Cells) Size() (float64, float64) {
	cols, rows := c.Grid()
	return float64(cols) * c.Unit, float64(rows) * c.Unit * c.AspectRatio
}

func (c *Cells) NewFrame() Frame {
	cols, rows := c.Grid()
	return &cellFrame{
		owner: c,
		cols:  cols,
		rows:  rows,
		cellW: c.Unit,
		cellH: c.Unit * c.AspectRatio,
		cells: make([]cell, cols*rows),
	}
}

func (c *Cells) Present(f Frame) error {
	cf, ok := f.(*cellFrame)
	if !ok || cf.owner != c {
		return ErrForeignFrame
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if cf.cols != c.cols || cf.rows != c.rows {
		// Resized while drawing; the next redraw replaces it.
		return nil
	}
	c.current = cf.cells
	return nil
}

// RuneAt returns the glyph of the presented frame at col,row.
func (c *Cells) RuneAt(col, row int) rune {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return ' '
	}
	r := c.current[row*c.cols+col].r
	if r == 0 {
		return ' '
	}
	return r
}

// CellAt converts a screen cell to the surface position of its centre.
func (c *Cells) CellAt(col, row int) projection.Point {
	return projection.Point{
		X: (float64(col) + 0.5) * c.Unit,
		Y: (float64(row) + 0.5) * c.Unit * c.AspectRatio,
	}
}

// PickRadius is half the diagonal of a cell, rounded up. A press anywhere in
// a cell lands on its centre, so anything drawn in that cell is this close.
func (c *Cells) PickRadius() float64 {
	return math.Ceil(math.Hypot(c.Unit, c.Unit*c.AspectRatio) / 2)
}

// Blit copies the presented frame onto screen at x0,y0.
func (c *Cells) Blit(screen tcell.Screen, x0, y0 int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return
	}
	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			ce := c.current[row*c.cols+col]
			r := ce.r
			if r == 0 {
				r = ' '
			}
			screen.SetContent(x0+col, y0+row, r, nil, c.style(ce))
		}
	}
}

func (c *Cells) style(ce cell) tcell.Style {
	st := tcell.StyleDefault
	if c.Monochrome {
		return st
	}
	if ce.hasFg {
		st = st.Foreground(tcellColor(ce.fg))
	}
	if ce.hasBg {
		st = st.Background(tcellColor(ce.bg))
	}
	return st
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

type cellFrame struct {
	owner        *Cells
	cols, rows   int
	cellW, cellH float64
	cells        []cell
	path         polyPath
}

func (f *cellFrame) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= f.cols || row >= f.rows {
		return nil
	}
	return &f.cells[row*f.cols+col]
}

func (f *cellFrame) Clear(c colorful.Color) {
	for i := range f.cells {
		f.cells[i] = cell{r: ' ', bg: c, hasBg: true}
	}
	f.path.reset()
}

func (f *cellFrame) MoveTo(p projection.Point) { f.path.moveTo(p) }
func (f *cellFrame) LineTo(p projection.Point) { f.path.lineTo(p) }
func (f *cellFrame) CubicTo(c1, c2, p projection.Point) { f.path.cubicTo(c1, c2, p) }
func (f *cellFrame) ClosePath() { f.path.closePath() }
func (f *cellFrame) Circle(c projection.Point, r float64) { f.path.circle(c, r) }
func (f *cellFrame) Rect(x, y, w, h float64) { f.path.rect(x, y, w, h) }

// Fill shades every cell whose centre lies inside the path (even-odd rule).
func (f *cellFrame) Fill(p Paint) {
	defer f.path.reset()

	opacity := clampUnit(p.Opacity)
	_, _, l := p.Color.Hcl()
	glyph := densityToChar(opacity*clampUnit(l)*1.2, f.owner.Charset)

	var xs []float64
	for row := 0; row < f.rows; row++ {
		y := (float64(row) + 0.5) * f.cellH
		xs = xs[:0]
		for _, sp := range f.path.subpaths {
			n := len(sp)
			if n < 3 {
				continue
			}
			for i := 0; i < n; i++ {
				a, b := sp[i], sp[(i+1)%n]
				if (a.Y > y) == (b.Y > y) {
					continue
				}
				xs = append(xs, a.X+(y-a.Y)*(b.X-a.X)/(b.Y-a.Y))
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			first := int(math.Ceil(xs[i]/f.cellW - 0.5))
			last := int(math.Floor(xs[i+1]/f.cellW - 0.5))
			for col := first; col <= last; col++ {
				ce := f.at(col, row)
				if ce == nil {
					continue
				}
				if f.owner.Monochrome {
					ce.r = glyph
					continue
				}
				if ce.hasBg {
					ce.bg = ce.bg.BlendRgb(p.Color, opacity)
				} else {
					ce.bg = p.Color
				}
				ce.hasBg = true
				ce.r = ' '
			}
		}
	}
}

// Stroke marks every cell the path passes through.
func (f *cellFrame) Stroke(p Paint) {
	defer f.path.reset()

	opacity := clampUnit(p.Opacity)
	for i, sp := range f.path.subpaths {
		pts := sp
		if f.path.closed[i] && len(sp) > 1 {
			pts = append(append([]projection.Point{}, sp...), sp[0])
		}
		if len(pts) == 1 {
			f.plot(pts[0], 0, 0, p.Color, opacity)
			continue
		}
		for j := 0; j+1 < len(pts); j++ {
			a, b := pts[j], pts[j+1]
			if !a.IsFinite() || !b.IsFinite() {
				continue
			}
			dcol := (b.X - a.X) / f.cellW
			drow := (b.Y - a.Y) / f.cellH
			steps := int(math.Ceil(2 * math.Max(abs(dcol), abs(drow))))
			if steps < 1 {
				steps = 1
			}
			if steps > 4*(f.cols+f.rows) {
				steps = 4 * (f.cols + f.rows)
			}
			for k := 0; k <= steps; k++ {
				f.plot(a.Lerp(b, float64(k)/float64(steps)), dcol, drow, p.Color, opacity)
			}
		}
	}
}

func (f *cellFrame) plot(pt projection.Point, dcol, drow float64, c colorful.Color, opacity float64) {
	ce := f.at(int(math.Floor(pt.X/f.cellW)), int(math.Floor(pt.Y/f.cellH)))
	if ce == nil {
		return
	}
	if f.owner.Charset == CharsetASCII {
		ce.r = lineGlyph(dcol, drow)
	} else {
		ce.r = densityToChar(0.5+opacity/2, f.owner.Charset)
	}
	ce.fg = c
	if ce.hasBg {
		ce.fg = ce.bg.BlendRgb(c, math.Max(opacity, 0.5))
	}
	ce.hasFg = true
}

// Text writes s centred on at, one rune per column.
func (f *cellFrame) Text(s string, at projection.Point, p Paint) {
	if !at.IsFinite() {
		return
	}
	row := int(math.Floor(at.Y / f.cellH))
	col := int(math.Floor(at.X/f.cellW)) - runewidth.StringWidth(s)/2
	for _, r := range s {
		if ce := f.at(col, row); ce != nil {
			ce.r = r
			ce.fg = p.Color
			ce.hasFg = true
		}
		col += runewidth.RuneWidth(r)
	}
}
