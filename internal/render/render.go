package render

import (
	"math"

	"whiteboard/internal/shape"
)

/*
LEARNING: Full repaint instead of dirty rectangles

The board never patches pixels. Every visible change (commit, remote update,
selection change, live drag preview) clears the surface and paints the whole
list again in order. Later shapes land on top, which is the same order the
hit-tester walks backwards.

Live previews are painted after the repaint and vanish on the next one, so
they never need to be erased.
*/

// ShapeStrokeWidth is the outline width of rectangles and circles.
const ShapeStrokeWidth = 2.0

// Surface is the 2D drawing target. Any canvas-like raster API satisfies it.
type Surface interface {
	Clear()
	StrokeRect(x, y, w, h float64, color string, width float64)
	StrokeArc(cx, cy, r float64, color string, width float64)
	StrokePolyline(pts []shape.Point, color string, width float64)
	// FillText draws s with its top edge at y.
	FillText(s string, x, y, fontSize float64, color string)
	// DrawImage scales the image referenced by src into the box.
	DrawImage(src string, x, y, w, h float64)
}

// Repaint clears s and paints every shape of list once, in list order.
func Repaint(s Surface, list shape.List) {
	s.Clear()
	for _, sh := range list {
		Draw(s, sh)
	}
}

// Draw paints a single shape with its kind's recipe.
func Draw(s Surface, sh shape.Shape) {
	switch v := sh.(type) {
	case shape.Rect:
		s.StrokeRect(v.X, v.Y, v.W, v.H, v.Color, ShapeStrokeWidth)
	case shape.Circle:
		s.StrokeArc(v.Center.X, v.Center.Y, math.Abs(v.Radius), v.Color, ShapeStrokeWidth)
	case shape.Path:
		if len(v.Points) > 0 {
			s.StrokePolyline(v.Points, v.Color, v.Width)
		}
	case shape.Text:
		s.FillText(v.Body, v.X, v.Y, v.FontSize, v.Color)
	case shape.Image:
		s.DrawImage(v.Src, v.X, v.Y, v.W, v.H)
	}
}

// Overlay repaints list and then draws preview on top. A nil preview is a
// plain repaint.
func Overlay(s Surface, list shape.List, preview shape.Shape) {
	Repaint(s, list)
	if preview != nil {
		Draw(s, preview)
	}
}
