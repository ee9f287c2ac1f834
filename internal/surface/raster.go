package surface

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"globe-graph/internal/projection"
)

const labelFontSize = 12.0

var (
	faceOnce sync.Once
	faceFont *truetype.Font
	faceErr  error
)

func labelFace() (font.Face, error) {
	faceOnce.Do(func() {
		faceFont, faceErr = truetype.Parse(goregular.TTF)
	})
	if faceErr != nil {
		return nil, fmt.Errorf("failed to parse font: %w", faceErr)
	}
	return truetype.NewFace(faceFont, &truetype.Options{
		Size:    labelFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// Raster is an in-memory image surface backed by fogleman/gg.
type Raster struct {
	width, height int
	face          font.Face

	mu      sync.Mutex
	current image.Image
}

// NewRaster creates a width x height raster surface.
func NewRaster(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", width, height)
	}
	face, err := labelFace()
	if err != nil {
		return nil, err
	}
	return &Raster{width: width, height: height, face: face}, nil
}

func (r *Raster) Size() (float64, float64) {
	return float64(r.width), float64(r.height)
}

func (r *Raster) NewFrame() Frame {
	dc := gg.NewContext(r.width, r.height)
	dc.SetFontFace(r.face)
	return &rasterFrame{owner: r, dc: dc}
}

func (r *Raster) Present(f Frame) error {
	rf, ok := f.(*rasterFrame)
	if !ok || rf.owner != r {
		return ErrForeignFrame
	}
	r.mu.Lock()
	r.current = rf.dc.Image()
	r.mu.Unlock()
	return nil
}

// Image returns the last presented frame, or nil if none was presented.
func (r *Raster) Image() image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Encode writes the last presented frame as png or jpeg.
func (r *Raster) Encode(format string) ([]byte, error) {
	img := r.Image()
	if img == nil {
		return nil, fmt.Errorf("nothing has been drawn yet")
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	case "jpeg", "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	return buf.Bytes(), nil
}

// EncodeDataURL is Encode wrapped in a data URL.
func (r *Raster) EncodeDataURL(format string) (string, error) {
	data, err := r.Encode(format)
	if err != nil {
		return "", err
	}
	if format == "jpg" {
		format = "jpeg"
	}
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

type rasterFrame struct {
	owner *Raster
	dc    *gg.Context
}

func (f *rasterFrame) setPaint(p Paint) {
	r, g, b := p.Color.Clamped().RGB255()
	f.dc.SetRGBA255(int(r), int(g), int(b), int(clampUnit(p.Opacity)*255))
}

func (f *rasterFrame) Clear(c colorful.Color) {
	f.dc.SetColor(c.Clamped())
	f.dc.Clear()
}

func (f *rasterFrame) MoveTo(p projection.Point) { f.dc.MoveTo(p.X, p.Y) }
func (f *rasterFrame) LineTo(p projection.Point) { f.dc.LineTo(p.X, p.Y) }
func (f *rasterFrame) ClosePath() { f.dc.ClosePath() }

func (f *rasterFrame) CubicTo(c1, c2, p projection.Point) {
	f.dc.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y)
}

func (f *rasterFrame) Circle(c projection.Point, r float64) {
	f.dc.DrawCircle(c.X, c.Y, r)
}

func (f *rasterFrame) Rect(x, y, w, h float64) {
	f.dc.DrawRectangle(x, y, w, h)
}

func (f *rasterFrame) Fill(p Paint) {
	f.setPaint(p)
	f.dc.Fill()
}

func (f *rasterFrame) Stroke(p Paint) {
	f.setPaint(p)
	f.dc.SetLineWidth(p.Width)
	f.dc.Stroke()
}

func (f *rasterFrame) Text(s string, at projection.Point, p Paint) {
	f.setPaint(p)
	f.dc.DrawStringAnchored(s, at.X, at.Y, 0.5, 0.5)
}

func clampUnit(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
