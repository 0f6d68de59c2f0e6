package shape

import "math"

// Patch holds optional attribute updates. Nil fields keep the prior value.
// Fields that do not apply to the target kind are ignored.
type Patch struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	W        *float64 `json:"w,omitempty"`
	H        *float64 `json:"h,omitempty"`
	Points   []Point  `json:"points,omitempty"`
	Color    *string  `json:"color,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Text     *string  `json:"text,omitempty"`
	FontSize *float64 `json:"fontSize,omitempty"`
	Src      *string  `json:"src,omitempty"`
}

// Float returns a pointer to v, for building patches.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v, for building patches.
func String(v string) *string { return &v }

// Apply returns a new shape that merges p over s and keeps the ID.
// For a circle, X/Y move the center and W/H re-derive the radius.
func (p Patch) Apply(s Shape) Shape {
	switch v := s.(type) {
	case Path:
		if p.Points != nil {
			v.Points = clonePoints(p.Points)
		}
		setString(&v.Color, p.Color)
		setFloat(&v.Width, p.Width)
		return v
	case Rect:
		setFloat(&v.X, p.X)
		setFloat(&v.Y, p.Y)
		setFloat(&v.W, p.W)
		setFloat(&v.H, p.H)
		setString(&v.Color, p.Color)
		return v
	case Circle:
		setFloat(&v.Center.X, p.X)
		setFloat(&v.Center.Y, p.Y)
		if p.W != nil || p.H != nil {
			w, h := v.Radius, 0.0
			setFloat(&w, p.W)
			setFloat(&h, p.H)
			v.Radius = RadiusFromDrag(w, h)
		}
		setString(&v.Color, p.Color)
		return v
	case Text:
		setFloat(&v.X, p.X)
		setFloat(&v.Y, p.Y)
		setString(&v.Body, p.Text)
		setString(&v.Color, p.Color)
		setFloat(&v.FontSize, p.FontSize)
		return v
	case Image:
		setFloat(&v.X, p.X)
		setFloat(&v.Y, p.Y)
		setFloat(&v.W, p.W)
		setFloat(&v.H, p.H)
		setString(&v.Src, p.Src)
		return v
	}
	return s
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// RadiusFromDrag derives a circle radius from a drag delta. The sign of the
// delta does not matter.
func RadiusFromDrag(dx, dy float64) float64 {
	return math.Sqrt(dx*dx + dy*dy)
}

// Translate returns s moved by (dx, dy).
func Translate(s Shape, dx, dy float64) Shape {
	switch v := s.(type) {
	case Path:
		pts := make([]Point, len(v.Points))
		for i, pt := range v.Points {
			pts[i] = Point{X: pt.X + dx, Y: pt.Y + dy}
		}
		v.Points = pts
		return v
	case Rect:
		v.X += dx
		v.Y += dy
		return v
	case Circle:
		v.Center.X += dx
		v.Center.Y += dy
		return v
	case Text:
		v.X += dx
		v.Y += dy
		return v
	case Image:
		v.X += dx
		v.Y += dy
		return v
	}
	return s
}

// Resize fits s into the box at (x, y) with size (w, h) as a selection
// handle drag does. Rects and images keep the sign of their original drag
// direction; circles take the diameter min(w, h) placed at the box's
// top-left. Paths and text cannot be resized.
func Resize(s Shape, x, y, w, h float64) (Shape, error) {
	w, h = math.Abs(w), math.Abs(h)
	switch v := s.(type) {
	case Rect:
		v.X, v.W = signedSpan(x, w, v.W)
		v.Y, v.H = signedSpan(y, h, v.H)
		return v, nil
	case Image:
		v.X, v.W = signedSpan(x, w, v.W)
		v.Y, v.H = signedSpan(y, h, v.H)
		return v, nil
	case Circle:
		d := math.Min(w, h)
		v.Center = Point{X: x + d/2, Y: y + d/2}
		v.Radius = d / 2
		return v, nil
	}
	return s, ErrNotResizable
}

// signedSpan maps a normalized [min, min+size] span back to an anchor and a
// signed extent with the same sign as prev.
func signedSpan(lo, size, prev float64) (anchor, extent float64) {
	if prev < 0 {
		return lo + size, -size
	}
	return lo, size
}
