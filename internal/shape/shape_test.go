package shape

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestNewAssignsFreshIDs(t *testing.T) {
	a, err := New(KindRect, Attrs{X: 1, Y: 2, W: 3, H: 4})
	if err != nil {
		t.Fatalf("New rect: %v", err)
	}
	b, err := New(KindRect, Attrs{X: 1, Y: 2, W: 3, H: 4})
	if err != nil {
		t.Fatalf("New rect: %v", err)
	}
	if a.ShapeID() == "" || a.ShapeID() == b.ShapeID() {
		t.Fatalf("expected distinct non-empty ids, got %q and %q", a.ShapeID(), b.ShapeID())
	}
	if a.(Rect).Color != DefaultColor {
		t.Errorf("expected default color, got %q", a.(Rect).Color)
	}
}

func TestNewRejectsUnknownKind(t *testing.T) {
	_, err := New(Kind("triangle"), Attrs{})
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestNewPathWithoutPointsIsPermitted(t *testing.T) {
	s, err := New(KindPath, Attrs{})
	if err != nil {
		t.Fatalf("New path: %v", err)
	}
	p := s.(Path)
	if len(p.Points) != 0 || p.Width != DefaultStrokeWidth {
		t.Errorf("unexpected degenerate path: %+v", p)
	}
}

func TestNewCircleDerivesRadius(t *testing.T) {
	s, _ := New(KindCircle, Attrs{X: 10, Y: 10, W: -3, H: 4})
	if r := s.(Circle).Radius; r != 5 {
		t.Errorf("expected radius 5, got %v", r)
	}
}

func TestDecodeOriginalClientPayload(t *testing.T) {
	payload := `[
		{"id":"p1","type":"path","points":[{"x":1,"y":2},{"x":3,"y":4}],"color":"#fff","width":10},
		{"id":"r1","type":"rect","x":50,"y":60,"w":-20,"h":-10,"color":"#ff0000"},
		{"id":"c1","type":"circle","x":5,"y":5,"w":3,"h":4,"color":"#00ff00"},
		{"id":"t1","type":"text","text":"hi","x":7,"y":8,"color":"#222","fontSize":22},
		{"id":"i1","type":"image","x":100,"y":100,"w":64,"h":32,"src":"data:image/png;base64,AAAA"}
	]`
	list, err := Decode([]byte(payload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(list) != 5 {
		t.Fatalf("expected 5 shapes, got %d", len(list))
	}
	wantKinds := []Kind{KindPath, KindRect, KindCircle, KindText, KindImage}
	for i, k := range wantKinds {
		if list[i].Kind() != k {
			t.Errorf("shape %d: expected %s, got %s", i, k, list[i].Kind())
		}
	}
	if c := list[2].(Circle); c.Radius != 5 || c.Center != (Point{5, 5}) {
		t.Errorf("unexpected circle %+v", c)
	}
	if r := list[1].(Rect); r.W != -20 || r.H != -10 {
		t.Errorf("rect lost its drag direction: %+v", r)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"not json", `{{`, ErrInvalidRecord},
		{"object instead of list", `{"id":"x"}`, ErrInvalidRecord},
		{"null", `null`, ErrInvalidRecord},
		{"unknown kind", `[{"id":"a","type":"star"}]`, ErrUnknownKind},
		{"missing id", `[{"type":"rect","x":1,"y":1,"w":1,"h":1}]`, ErrMissingField},
		{"rect without w", `[{"id":"a","type":"rect","x":1,"y":1,"h":1}]`, ErrMissingField},
		{"path without points", `[{"id":"a","type":"path","color":"#000"}]`, ErrMissingField},
		{"text without body", `[{"id":"a","type":"text","x":1,"y":1}]`, ErrMissingField},
		{"image without src", `[{"id":"a","type":"image","x":1,"y":1,"w":1,"h":1}]`, ErrMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.payload))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUnmarshalKeepsPreviousListOnError(t *testing.T) {
	rect, _ := New(KindRect, Attrs{W: 1, H: 1})
	list := List{rect}
	if err := json.Unmarshal([]byte(`[{"id":"x","type":"blob"}]`), &list); err == nil {
		t.Fatal("expected error")
	}
	if len(list) != 1 || list[0].ShapeID() != rect.ShapeID() {
		t.Fatalf("list changed after rejected payload: %v", list.IDs())
	}
}

func TestEncodeWireFields(t *testing.T) {
	circle := Circle{ID: "c", Center: Point{X: 1, Y: 2}, Radius: 7, Color: "#000"}
	empty := Path{ID: "p", Color: "#000", Width: 2}
	data, err := Encode(List{circle, empty})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"w":7`) || !strings.Contains(s, `"h":0`) {
		t.Errorf("circle should be encoded as w=radius,h=0: %s", s)
	}
	if !strings.Contains(s, `"points":[]`) {
		t.Errorf("empty path should carry an empty points array: %s", s)
	}

	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back[0].(Circle).Radius != 7 {
		t.Errorf("radius changed across the wire: %+v", back[0])
	}
}

func TestExplicitZeroSurvivesRoundTrip(t *testing.T) {
	list := List{
		Path{ID: "p", Points: []Point{{X: 1, Y: 1}}, Color: "#000", Width: 0},
		Text{ID: "t", X: 1, Y: 1, Body: "x", Color: "#000", FontSize: 0},
	}
	data, err := Encode(list)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if w := back[0].(Path).Width; w != 0 {
		t.Errorf("path width 0 came back as %v", w)
	}
	if fs := back[1].(Text).FontSize; fs != 0 {
		t.Errorf("font size 0 came back as %v", fs)
	}

	// Absent fields still take the defaults.
	absent, err := Decode([]byte(`[{"id":"p","type":"path","points":[]},{"id":"t","type":"text","x":0,"y":0,"text":""}]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if absent[0].(Path).Width != DefaultStrokeWidth || absent[1].(Text).FontSize != DefaultFontSize {
		t.Errorf("absent fields should default: %+v", absent)
	}
}

func TestEncodeEmptyList(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("expected [], got %s", data)
	}
}

func TestListHelpersDoNotMutate(t *testing.T) {
	a := Rect{ID: "a", W: 1, H: 1}
	b := Rect{ID: "b", W: 2, H: 2}
	base := List{a, b}

	appended := base.Append(Rect{ID: "c"})
	removed := base.Remove("a")
	updated, err := base.Update("b", Patch{X: Float(9)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if len(base) != 2 || base[1].(Rect).X != 0 {
		t.Fatalf("base list was mutated: %+v", base)
	}
	if len(appended) != 3 || len(removed) != 1 || removed[0].ShapeID() != "b" {
		t.Errorf("unexpected results: appended=%v removed=%v", appended.IDs(), removed.IDs())
	}
	if got := updated[1].(Rect); got.X != 9 || got.W != 2 {
		t.Errorf("patch did not merge: %+v", got)
	}
	if _, err := base.Update("zzz", Patch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPatchApplyKeepsIDAndKind(t *testing.T) {
	txt := Text{ID: "t", X: 1, Y: 1, Body: "a", Color: "#111", FontSize: 22}
	got := Patch{Text: String("hello"), X: Float(5)}.Apply(txt).(Text)
	if got.ID != "t" || got.Body != "hello" || got.X != 5 || got.Y != 1 {
		t.Errorf("unexpected patched text %+v", got)
	}

	c := Circle{ID: "c", Radius: 2}
	gotC := Patch{W: Float(3), H: Float(4)}.Apply(c).(Circle)
	if gotC.Radius != 5 {
		t.Errorf("expected radius 5, got %v", gotC.Radius)
	}
}

func TestTranslate(t *testing.T) {
	p := Path{ID: "p", Points: []Point{{0, 0}, {10, 10}}}
	moved := Translate(p, 5, -5).(Path)
	if moved.Points[1] != (Point{15, 5}) {
		t.Errorf("unexpected translated point %+v", moved.Points[1])
	}
	if p.Points[1] != (Point{10, 10}) {
		t.Errorf("translate mutated the original path")
	}
}

func TestResize(t *testing.T) {
	neg := Rect{ID: "r", X: 100, Y: 100, W: -40, H: -20}
	got, err := Resize(neg, 10, 20, 80, 60)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	r := got.(Rect)
	if r.X != 90 || r.W != -80 || r.Y != 80 || r.H != -60 {
		t.Errorf("negative rect resized incorrectly: %+v", r)
	}

	c, err := Resize(Circle{ID: "c", Radius: 1}, 0, 0, 40, 30)
	if err != nil {
		t.Fatalf("Resize circle: %v", err)
	}
	if cc := c.(Circle); cc.Radius != 15 || cc.Center != (Point{15, 15}) {
		t.Errorf("unexpected circle %+v", cc)
	}

	if _, err := Resize(Text{ID: "t"}, 0, 0, 1, 1); !errors.Is(err, ErrNotResizable) {
		t.Errorf("expected ErrNotResizable, got %v", err)
	}
}

func TestRadiusFromDragIsDirectionAgnostic(t *testing.T) {
	for _, d := range [][2]float64{{3, 4}, {-3, 4}, {3, -4}, {-3, -4}} {
		if r := RadiusFromDrag(d[0], d[1]); math.Abs(r-5) > 1e-9 {
			t.Errorf("RadiusFromDrag(%v) = %v", d, r)
		}
	}
}
