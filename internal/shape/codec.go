package shape

import (
	"encoding/json"
	"fmt"
)

// Record is the flat JSON form of a shape exchanged with browser clients:
//
//	{"id":"…","type":"rect","x":10,"y":20,"w":-30,"h":40,"color":"#000"}
//
// Pointer fields distinguish "absent" from zero so required attributes can be
// checked.
type Record struct {
	ID       string   `json:"id"`
	Type     Kind     `json:"type"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	W        *float64 `json:"w,omitempty"`
	H        *float64 `json:"h,omitempty"`
	Color    string   `json:"color,omitempty"`
	Points   *[]Point `json:"points,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Text     *string  `json:"text,omitempty"`
	FontSize *float64 `json:"fontSize,omitempty"`
	Src      *string  `json:"src,omitempty"`
}

// ToRecord converts a shape to its wire record. A circle is written as
// w=radius, h=0 so any client deriving radius = sqrt(w²+h²) reads it back.
func ToRecord(s Shape) Record {
	switch v := s.(type) {
	case Path:
		pts := clonePoints(v.Points)
		return Record{ID: v.ID, Type: KindPath, Points: &pts, Color: v.Color, Width: Float(v.Width)}
	case Rect:
		return Record{ID: v.ID, Type: KindRect, X: Float(v.X), Y: Float(v.Y), W: Float(v.W), H: Float(v.H), Color: v.Color}
	case Circle:
		return Record{ID: v.ID, Type: KindCircle, X: Float(v.Center.X), Y: Float(v.Center.Y), W: Float(v.Radius), H: Float(0), Color: v.Color}
	case Text:
		return Record{ID: v.ID, Type: KindText, X: Float(v.X), Y: Float(v.Y), Text: String(v.Body), Color: v.Color, FontSize: Float(v.FontSize)}
	case Image:
		return Record{ID: v.ID, Type: KindImage, X: Float(v.X), Y: Float(v.Y), W: Float(v.W), H: Float(v.H), Src: String(v.Src)}
	}
	return Record{}
}

// FromRecord validates a wire record and converts it to a shape.
func FromRecord(r Record) (Shape, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("%w: id", ErrMissingField)
	}
	if !r.Type.Valid() {
		return nil, fmt.Errorf("%w: %q (id %s)", ErrUnknownKind, r.Type, r.ID)
	}
	need := func(name string, present bool) error {
		if !present {
			return fmt.Errorf("%w: %s.%s (id %s)", ErrMissingField, r.Type, name, r.ID)
		}
		return nil
	}

	switch r.Type {
	case KindPath:
		if err := need("points", r.Points != nil); err != nil {
			return nil, err
		}
		return Path{
			ID:     r.ID,
			Points: clonePoints(*r.Points),
			Color:  orDefault(r.Color, DefaultColor),
			Width:  valueOr(r.Width, DefaultStrokeWidth),
		}, nil

	case KindText:
		for _, f := range []struct {
			name string
			ok   bool
		}{{"x", r.X != nil}, {"y", r.Y != nil}, {"text", r.Text != nil}} {
			if err := need(f.name, f.ok); err != nil {
				return nil, err
			}
		}
		return Text{
			ID:       r.ID,
			X:        *r.X,
			Y:        *r.Y,
			Body:     *r.Text,
			Color:    orDefault(r.Color, DefaultTextColor),
			FontSize: valueOr(r.FontSize, DefaultFontSize),
		}, nil
	}

	// rect, circle and image all carry a box.
	for _, f := range []struct {
		name string
		ok   bool
	}{{"x", r.X != nil}, {"y", r.Y != nil}, {"w", r.W != nil}, {"h", r.H != nil}} {
		if err := need(f.name, f.ok); err != nil {
			return nil, err
		}
	}
	switch r.Type {
	case KindRect:
		return Rect{ID: r.ID, X: *r.X, Y: *r.Y, W: *r.W, H: *r.H, Color: orDefault(r.Color, DefaultColor)}, nil
	case KindCircle:
		return Circle{ID: r.ID, Center: Point{X: *r.X, Y: *r.Y}, Radius: RadiusFromDrag(*r.W, *r.H), Color: orDefault(r.Color, DefaultColor)}, nil
	default:
		if err := need("src", r.Src != nil); err != nil {
			return nil, err
		}
		return Image{ID: r.ID, X: *r.X, Y: *r.Y, W: *r.W, H: *r.H, Src: *r.Src}, nil
	}
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// MarshalJSON writes the list as an array of wire records. An empty or nil
// list is written as [].
func (l List) MarshalJSON() ([]byte, error) {
	records := make([]Record, len(l))
	for i, s := range l {
		records[i] = ToRecord(s)
	}
	return json.Marshal(records)
}

// UnmarshalJSON replaces the list with the decoded records. Any invalid
// record rejects the whole payload and leaves the receiver unchanged.
func (l *List) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*l = decoded
	return nil
}

// Decode parses a JSON array of records into a List.
func Decode(data []byte) (List, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if records == nil {
		return nil, fmt.Errorf("%w: not a shape list", ErrInvalidRecord)
	}
	out := make(List, 0, len(records))
	for i, r := range records {
		s, err := FromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Encode serializes the list. It cannot fail for lists built from this
// package's types, but the error is kept for callers that stream it.
func Encode(l List) ([]byte, error) {
	return l.MarshalJSON()
}
