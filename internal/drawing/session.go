// Package drawing holds the per-client, never-synced state of an edit in
// progress: a freehand stroke, a rect or circle drag, or a pending text
// label. Pointer and touch input both feed it through Down/Move/Up with a
// surface-relative point.
package drawing

import (
	"unicode/utf8"

	"whiteboard/internal/render"
	"whiteboard/internal/shape"
)

// Tool is the active toolbar tool.
type Tool string

const (
	ToolSelect Tool = "select"
	ToolPencil Tool = "pencil"
	ToolEraser Tool = "eraser"
	ToolRect   Tool = "rect"
	ToolCircle Tool = "circle"
	ToolText   Tool = "text"
)

// Valid reports whether t is a known tool.
func (t Tool) Valid() bool {
	switch t {
	case ToolSelect, ToolPencil, ToolEraser, ToolRect, ToolCircle, ToolText:
		return true
	}
	return false
}

// Draws reports whether pointer-down with t starts a drawing session.
func (t Tool) Draws() bool {
	return t.Valid() && t != ToolSelect
}

const (
	PencilWidth       = 2.0
	DefaultEraserSize = 10.0
	// EraserColor matches the browser client, which paints erasers white.
	EraserColor = "#fff"
)

// Style is the colour and size input the toolbar supplies.
type Style struct {
	Color      string
	EraserSize float64
	// Background is the eraser colour. Empty means EraserColor.
	Background string
}

// DefaultStyle is black ink with the default eraser.
func DefaultStyle() Style {
	return Style{Color: shape.DefaultColor, EraserSize: DefaultEraserSize}
}

// State is the session phase.
type State int

const (
	Idle State = iota
	Drawing
	Typing
)

func (s State) String() string {
	switch s {
	case Drawing:
		return "drawing"
	case Typing:
		return "typing"
	}
	return "idle"
}

// Session is the drawing state machine. The zero value is idle.
type Session struct {
	state  State
	tool   Tool
	style  Style
	points []shape.Point
	anchor shape.Point
	cursor shape.Point

	textAt shape.Point
	buf    []rune
	caret  int
}

func (s *Session) State() State { return s.state }
func (s *Session) Tool() Tool   { return s.tool }

// Down starts a session for tool at p. It reports false, and stays idle,
// for the select tool or when a session is already active.
func (s *Session) Down(tool Tool, style Style, p shape.Point) bool {
	if s.state != Idle || !tool.Draws() {
		return false
	}
	s.tool, s.style = tool, style
	switch tool {
	case ToolText:
		s.state = Typing
		s.textAt = p
		s.buf, s.caret = nil, 0
	case ToolPencil, ToolEraser:
		s.state = Drawing
		s.points = []shape.Point{p}
	default:
		s.state = Drawing
		s.anchor, s.cursor = p, p
	}
	return true
}

// Move extends the stroke or drag. It reports whether the preview changed.
func (s *Session) Move(p shape.Point) bool {
	if s.state != Drawing {
		return false
	}
	switch s.tool {
	case ToolPencil, ToolEraser:
		s.points = append(s.points, p)
	default:
		s.cursor = p
	}
	return true
}

// Up finishes a stroke or drag at p and returns the committed shape with a
// fresh id. Degenerate shapes are still returned.
func (s *Session) Up(p shape.Point) (shape.Shape, bool) {
	if s.state != Drawing {
		return nil, false
	}
	if s.tool == ToolRect || s.tool == ToolCircle {
		s.cursor = p
	}
	committed := s.build(shape.NewID())
	s.reset()
	return committed, committed != nil
}

// Cancel discards any in-progress geometry or text.
func (s *Session) Cancel() {
	s.reset()
}

// Preview returns the uncommitted shape to overlay on the committed list,
// or nil when there is nothing to preview.
func (s *Session) Preview() shape.Shape {
	if s.state != Drawing {
		return nil
	}
	return s.build("")
}

// Render repaints committed on surf with the live preview on top.
func (s *Session) Render(surf render.Surface, committed shape.List) {
	render.Overlay(surf, committed, s.Preview())
}

func (s *Session) build(id string) shape.Shape {
	switch s.tool {
	case ToolPencil:
		return shape.Path{ID: id, Points: clone(s.points), Color: s.color(), Width: PencilWidth}
	case ToolEraser:
		return shape.Path{ID: id, Points: clone(s.points), Color: s.eraserColor(), Width: s.eraserSize()}
	case ToolRect:
		return shape.Rect{
			ID:    id,
			X:     s.anchor.X,
			Y:     s.anchor.Y,
			W:     s.cursor.X - s.anchor.X,
			H:     s.cursor.Y - s.anchor.Y,
			Color: s.color(),
		}
	case ToolCircle:
		return shape.Circle{
			ID:     id,
			Center: s.anchor,
			Radius: shape.RadiusFromDrag(s.cursor.X-s.anchor.X, s.cursor.Y-s.anchor.Y),
			Color:  s.color(),
		}
	}
	return nil
}

func (s *Session) color() string {
	if s.style.Color == "" {
		return shape.DefaultColor
	}
	return s.style.Color
}

func (s *Session) eraserColor() string {
	if s.style.Background == "" {
		return EraserColor
	}
	return s.style.Background
}

func (s *Session) eraserSize() float64 {
	if s.style.EraserSize <= 0 {
		return DefaultEraserSize
	}
	return s.style.EraserSize
}

func (s *Session) reset() {
	s.state = Idle
	s.points = nil
	s.buf, s.caret = nil, 0
}

func clone(pts []shape.Point) []shape.Point {
	out := make([]shape.Point, len(pts))
	copy(out, pts)
	return out
}

// --- text entry ---

// TextAnchor returns where the pending label will be placed.
func (s *Session) TextAnchor() (shape.Point, bool) {
	return s.textAt, s.state == Typing
}

// Buffer returns the pending text and the caret position in runes.
func (s *Session) Buffer() (string, int) {
	return string(s.buf), s.caret
}

// Type inserts str at the caret.
func (s *Session) Type(str string) {
	if s.state != Typing || str == "" {
		return
	}
	ins := []rune(str)
	buf := make([]rune, 0, len(s.buf)+len(ins))
	buf = append(buf, s.buf[:s.caret]...)
	buf = append(buf, ins...)
	buf = append(buf, s.buf[s.caret:]...)
	s.buf = buf
	s.caret += len(ins)
}

// SetText replaces the pending text and moves the caret to the end, as an
// input element's change event does.
func (s *Session) SetText(str string) {
	if s.state != Typing {
		return
	}
	s.buf = []rune(str)
	s.caret = utf8.RuneCountInString(str)
}

// Backspace deletes the rune before the caret.
func (s *Session) Backspace() {
	if s.state != Typing || s.caret == 0 {
		return
	}
	s.buf = append(s.buf[:s.caret-1], s.buf[s.caret:]...)
	s.caret--
}

// MoveCaret shifts the caret by delta runes, clamped to the buffer.
func (s *Session) MoveCaret(delta int) {
	if s.state != Typing {
		return
	}
	s.caret = max(0, min(len(s.buf), s.caret+delta))
}

// Blur commits the pending label when the edit surface loses focus. An
// empty buffer is abandoned and yields no shape.
func (s *Session) Blur() (shape.Shape, bool) {
	if s.state != Typing {
		return nil, false
	}
	body := string(s.buf)
	at := s.textAt
	color := s.color()
	s.reset()
	if body == "" {
		return nil, false
	}
	return shape.Text{
		ID:       shape.NewID(),
		X:        at.X,
		Y:        at.Y,
		Body:     body,
		Color:    color,
		FontSize: shape.DefaultFontSize,
	}, true
}

// Escape abandons the pending label.
func (s *Session) Escape() bool {
	if s.state != Typing {
		return false
	}
	s.reset()
	return true
}
