// Package geometry answers "which shape is under this point" and "where do
// the selection handles go" for the five shape kinds.
package geometry

import (
	"math"
	"unicode/utf8"

	"whiteboard/internal/shape"
)

const (
	// PathHitThreshold is the maximum distance, inclusive, from a path
	// segment that still counts as touching the path.
	PathHitThreshold = 8.0

	// TextHitMargin widens the text box so thin glyph rows are easy to pick.
	TextHitMargin = 4.0

	// TextWidthFactor and TextHeightFactor approximate glyph metrics.
	TextWidthFactor  = 0.6
	TextHeightFactor = 1.2

	// minHandleExtent is the smallest handle box drawn around a flat path.
	minHandleExtent = 25.0

	// emptyTextHandleChars sizes the handle box of an empty label.
	emptyTextHandleChars = 8
)

// Box is an axis-aligned rectangle with non-negative W and H.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains reports whether p lies inside b, edges included.
func (b Box) Contains(p shape.Point) bool {
	return p.X >= b.X && p.X <= b.X+b.W && p.Y >= b.Y && p.Y <= b.Y+b.H
}

// Normalize returns the box spanned by the corners (x, y) and (x+w, y+h),
// whatever the sign of w and h.
func Normalize(x, y, w, h float64) Box {
	x0, x1 := math.Min(x, x+w), math.Max(x, x+w)
	y0, y1 := math.Min(y, y+h), math.Max(y, y+h)
	return Box{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// HitTest reports whether p touches s.
func HitTest(p shape.Point, s shape.Shape) bool {
	switch v := s.(type) {
	case shape.Rect:
		return Normalize(v.X, v.Y, v.W, v.H).Contains(p)
	case shape.Image:
		return Normalize(v.X, v.Y, v.W, v.H).Contains(p)
	case shape.Circle:
		return math.Hypot(p.X-v.Center.X, p.Y-v.Center.Y) <= v.Radius
	case shape.Path:
		return nearPolyline(p, v.Points, PathHitThreshold)
	case shape.Text:
		return textHitBox(v).Contains(p)
	}
	return false
}

// Pick returns the id of the topmost shape under p. Shapes later in the list
// are on top, so the list is scanned back to front.
func Pick(list shape.List, p shape.Point) (string, bool) {
	for i := len(list) - 1; i >= 0; i-- {
		if HitTest(p, list[i]) {
			return list[i].ShapeID(), true
		}
	}
	return "", false
}

// BoundingBox returns the selection-handle box of s.
func BoundingBox(s shape.Shape) Box {
	switch v := s.(type) {
	case shape.Rect:
		return Normalize(v.X, v.Y, v.W, v.H)
	case shape.Image:
		return Normalize(v.X, v.Y, v.W, v.H)
	case shape.Circle:
		r := math.Abs(v.Radius)
		return Box{X: v.Center.X - r, Y: v.Center.Y - r, W: 2 * r, H: 2 * r}
	case shape.Path:
		return pathBox(v.Points)
	case shape.Text:
		n := utf8.RuneCountInString(v.Body)
		if n == 0 {
			n = emptyTextHandleChars
		}
		return Box{X: v.X, Y: v.Y, W: TextWidth(n, v.FontSize), H: TextHeight(v.FontSize)}
	}
	return Box{}
}

// TextWidth estimates the rendered width of n glyphs at the given size.
func TextWidth(n int, fontSize float64) float64 {
	return float64(n) * fontSize * TextWidthFactor
}

// TextHeight estimates the line height at the given size.
func TextHeight(fontSize float64) float64 {
	return fontSize * TextHeightFactor
}

func textHitBox(t shape.Text) Box {
	n := utf8.RuneCountInString(t.Body)
	if n == 0 {
		n = 1
	}
	return Box{
		X: t.X - TextHitMargin,
		Y: t.Y - TextHitMargin,
		W: TextWidth(n, t.FontSize) + 2*TextHitMargin,
		H: TextHeight(t.FontSize) + 2*TextHitMargin,
	}
}

func pathBox(pts []shape.Point) Box {
	if len(pts) == 0 {
		return Box{W: minHandleExtent, H: minHandleExtent}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, pt := range pts[1:] {
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}
	b := Box{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
	if b.W == 0 {
		b.W = minHandleExtent
	}
	if b.H == 0 {
		b.H = minHandleExtent
	}
	return b
}

// nearPolyline reports whether p is within threshold of any segment.
// A path needs at least two points to have a segment.
func nearPolyline(p shape.Point, pts []shape.Point, threshold float64) bool {
	for i := 0; i+1 < len(pts); i++ {
		if DistanceToSegment(p, pts[i], pts[i+1]) <= threshold {
			return true
		}
	}
	return false
}

// DistanceToSegment returns the distance from p to the segment a-b. The
// projection parameter is clamped to [0, 1], so beyond either end the
// distance is measured to that endpoint.
func DistanceToSegment(p, a, b shape.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq != 0 {
		t = ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}
