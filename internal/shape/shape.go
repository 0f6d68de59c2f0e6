package shape

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

/*
LEARNING: SHAPES AS A SUM TYPE

Every drawable entity is one of five kinds. Each kind is its own value type
carrying only the fields it needs; the Shape interface is the tag.

  Path   - freehand stroke (pencil or eraser)
  Rect   - outline rectangle, signed w/h encode the drag direction
  Circle - outline circle, center + radius
  Text   - single line label anchored at its top-left corner
  Image  - raster image referenced by an opaque source (data URI)

Shapes are values. An edit never mutates a shape in place; it produces a new
value with the same ID and replaces the list entry.
*/

// Kind identifies the variant of a Shape on the wire.
type Kind string

const (
	KindPath   Kind = "path"
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
	KindText   Kind = "text"
	KindImage  Kind = "image"
)

// Defaults applied when a record omits an optional attribute.
const (
	DefaultColor       = "#000000"
	DefaultTextColor   = "#111"
	DefaultStrokeWidth = 2.0
	DefaultFontSize    = 22.0
)

var (
	ErrUnknownKind   = errors.New("shape: unknown kind")
	ErrMissingField  = errors.New("shape: missing required field")
	ErrNotResizable  = errors.New("shape: kind is not resizable")
	ErrNotFound      = errors.New("shape: id not found")
	ErrInvalidRecord = errors.New("shape: invalid record")
)

// Valid reports whether k is one of the five known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPath, KindRect, KindCircle, KindText, KindImage:
		return true
	}
	return false
}

// Point is a position relative to the drawing surface's top-left origin.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape is implemented by Path, Rect, Circle, Text and Image.
type Shape interface {
	ShapeID() string
	Kind() Kind
	isShape()
}

// Path is a freehand polyline. Width doubles as the eraser diameter when
// Color equals the board background.
type Path struct {
	ID     string
	Points []Point
	Color  string
	Width  float64
}

// Rect is an outline rectangle anchored at (X, Y) with signed W, H.
type Rect struct {
	ID    string
	X, Y  float64
	W, H  float64
	Color string
}

// Circle is an outline circle.
type Circle struct {
	ID     string
	Center Point
	Radius float64
	Color  string
}

// Text is a single line of text whose anchor is its top-left corner.
type Text struct {
	ID       string
	X, Y     float64
	Body     string
	Color    string
	FontSize float64
}

// Image is a raster image scaled into its box. Src is opaque to the core.
type Image struct {
	ID   string
	X, Y float64
	W, H float64
	Src  string
}

func (p Path) ShapeID() string   { return p.ID }
func (r Rect) ShapeID() string   { return r.ID }
func (c Circle) ShapeID() string { return c.ID }
func (t Text) ShapeID() string   { return t.ID }
func (i Image) ShapeID() string  { return i.ID }

func (Path) Kind() Kind   { return KindPath }
func (Rect) Kind() Kind   { return KindRect }
func (Circle) Kind() Kind { return KindCircle }
func (Text) Kind() Kind   { return KindText }
func (Image) Kind() Kind  { return KindImage }

func (Path) isShape()   {}
func (Rect) isShape()   {}
func (Circle) isShape() {}
func (Text) isShape()   {}
func (Image) isShape()  {}

// NewID returns a fresh process-unique shape identifier.
func NewID() string {
	return uuid.NewString()
}

// Attrs carries the attributes accepted by New. Only the fields relevant to
// the requested kind are read.
type Attrs struct {
	X, Y     float64
	W, H     float64
	Points   []Point
	Color    string
	Width    float64
	Text     string
	FontSize float64
	Src      string
}

// New builds a shape of the given kind with a fresh ID.
// A path with no points is permitted and renders as nothing.
func New(kind Kind, a Attrs) (Shape, error) {
	id := NewID()
	switch kind {
	case KindPath:
		return Path{ID: id, Points: clonePoints(a.Points), Color: orDefault(a.Color, DefaultColor), Width: orDefaultFloat(a.Width, DefaultStrokeWidth)}, nil
	case KindRect:
		return Rect{ID: id, X: a.X, Y: a.Y, W: a.W, H: a.H, Color: orDefault(a.Color, DefaultColor)}, nil
	case KindCircle:
		return Circle{ID: id, Center: Point{X: a.X, Y: a.Y}, Radius: RadiusFromDrag(a.W, a.H), Color: orDefault(a.Color, DefaultColor)}, nil
	case KindText:
		return Text{ID: id, X: a.X, Y: a.Y, Body: a.Text, Color: orDefault(a.Color, DefaultTextColor), FontSize: orDefaultFloat(a.FontSize, DefaultFontSize)}, nil
	case KindImage:
		return Image{ID: id, X: a.X, Y: a.Y, W: a.W, H: a.H, Src: a.Src}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func clonePoints(pts []Point) []Point {
	out := make([]Point, len(pts))
	copy(out, pts)
	return out
}
