package render

import (
	"fmt"
	"strings"

	"whiteboard/internal/shape"
)

// Recorder is a Surface that keeps a textual log of draw calls since the
// last Clear. It backs headless clients and tests.
type Recorder struct {
	ops    []string
	clears int
}

func (r *Recorder) Clear() {
	r.ops = r.ops[:0]
	r.clears++
}

func (r *Recorder) StrokeRect(x, y, w, h float64, color string, width float64) {
	r.add("rect %g,%g %gx%g %s/%g", x, y, w, h, color, width)
}

func (r *Recorder) StrokeArc(cx, cy, radius float64, color string, width float64) {
	r.add("arc %g,%g r%g %s/%g", cx, cy, radius, color, width)
}

func (r *Recorder) StrokePolyline(pts []shape.Point, color string, width float64) {
	coords := make([]string, len(pts))
	for i, pt := range pts {
		coords[i] = fmt.Sprintf("%g,%g", pt.X, pt.Y)
	}
	r.add("line [%s] %s/%g", strings.Join(coords, " "), color, width)
}

func (r *Recorder) FillText(s string, x, y, fontSize float64, color string) {
	r.add("text %q %g,%g %gpx %s", s, x, y, fontSize, color)
}

func (r *Recorder) DrawImage(src string, x, y, w, h float64) {
	r.add("image %g,%g %gx%g (%d bytes)", x, y, w, h, len(src))
}

// Ops returns the draw calls since the last Clear.
func (r *Recorder) Ops() []string {
	return append([]string(nil), r.ops...)
}

// Clears returns how many times the surface has been cleared.
func (r *Recorder) Clears() int {
	return r.clears
}

func (r *Recorder) add(format string, args ...any) {
	r.ops = append(r.ops, fmt.Sprintf(format, args...))
}
