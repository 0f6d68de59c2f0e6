package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"math"
	"strings"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
	_ "golang.org/x/image/webp"

	"whiteboard/internal/shape"
)

// DefaultBackground is the board colour, also used by the eraser.
const DefaultBackground = "#ffffff"

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

// sharedFont loads the embedded Go Regular font once per process.
func sharedFont() (*text.FontSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	return fontSource, fontErr
}

// Canvas is a raster Surface backed by a gg context. A Canvas is not safe
// for concurrent use; give each goroutine its own.
type Canvas struct {
	dc         *gg.Context
	background gg.RGBA
	fonts      *text.FontSource
	faces      map[float64]text.Face
	images     map[string]*gg.ImageBuf
	err        error
}

// NewCanvas creates a width×height canvas cleared to background.
func NewCanvas(width, height int, background string) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	if background == "" {
		background = DefaultBackground
	}
	fonts, err := sharedFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	c := &Canvas{
		dc:         gg.NewContext(width, height),
		background: gg.Hex(background),
		fonts:      fonts,
		faces:      make(map[float64]text.Face),
		images:     make(map[string]*gg.ImageBuf),
	}
	c.Clear()
	return c, nil
}

func (c *Canvas) Clear() {
	c.dc.ClearWithColor(c.background)
}

func (c *Canvas) StrokeRect(x, y, w, h float64, color string, width float64) {
	// Normalise so right-to-left drags outline the same box.
	c.dc.DrawRectangle(math.Min(x, x+w), math.Min(y, y+h), math.Abs(w), math.Abs(h))
	c.stroke(color, width, gg.LineCapButt, gg.LineJoinMiter)
}

func (c *Canvas) StrokeArc(cx, cy, r float64, color string, width float64) {
	c.dc.DrawCircle(cx, cy, r)
	c.stroke(color, width, gg.LineCapButt, gg.LineJoinMiter)
}

func (c *Canvas) StrokePolyline(pts []shape.Point, color string, width float64) {
	if len(pts) == 0 {
		return
	}
	c.dc.MoveTo(pts[0].X, pts[0].Y)
	if len(pts) == 1 {
		// A single tap still leaves a dot.
		c.dc.LineTo(pts[0].X+0.01, pts[0].Y)
	}
	for _, pt := range pts[1:] {
		c.dc.LineTo(pt.X, pt.Y)
	}
	c.stroke(color, width, gg.LineCapRound, gg.LineJoinRound)
}

func (c *Canvas) FillText(s string, x, y, fontSize float64, color string) {
	if s == "" {
		return
	}
	face := c.face(fontSize)
	c.dc.SetFont(face)
	c.dc.SetHexColor(color)
	c.dc.DrawString(s, x, y+face.Metrics().Ascent)
}

func (c *Canvas) DrawImage(src string, x, y, w, h float64) {
	img, ok := c.images[src]
	if !ok {
		decoded, err := decodeDataURI(src)
		if err != nil {
			log.Printf("⚠️  Skipping image: %v", err)
		}
		// Failed decodes are cached as nil so they are reported once.
		img = decoded
		c.images[src] = img
	}
	if img == nil {
		return
	}
	c.dc.DrawImageEx(img, gg.DrawImageOptions{
		X:         math.Min(x, x+w),
		Y:         math.Min(y, y+h),
		DstWidth:  math.Abs(w),
		DstHeight: math.Abs(h),
		Opacity:   1.0,
	})
}

// Err returns the first rasterisation error since the canvas was created.
func (c *Canvas) Err() error {
	return c.err
}

// Image returns the current pixels.
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// EncodePNG writes the current pixels to w as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return c.dc.EncodePNG(w)
}

// Close releases the canvas.
func (c *Canvas) Close() error {
	return c.dc.Close()
}

// stroke sets the full pen state each time; the gg context keeps it
// between calls.
func (c *Canvas) stroke(color string, width float64, lineCap gg.LineCap, join gg.LineJoin) {
	c.dc.SetHexColor(color)
	c.dc.SetLineWidth(width)
	c.dc.SetLineCap(lineCap)
	c.dc.SetLineJoin(join)
	if err := c.dc.Stroke(); err != nil && c.err == nil {
		c.err = err
	}
}

func (c *Canvas) face(size float64) text.Face {
	if size <= 0 {
		size = 22
	}
	if f, ok := c.faces[size]; ok {
		return f
	}
	f := c.fonts.Face(size)
	c.faces[size] = f
	return f
}

var errNotDataURI = errors.New("image source is not a base64 data URI")

// decodeDataURI decodes "data:image/<type>;base64,<payload>" sources, which
// is how browser clients embed uploaded images.
func decodeDataURI(src string) (*gg.ImageBuf, error) {
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return nil, errNotDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, errNotDataURI
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return gg.ImageBufFromImage(img), nil
}
