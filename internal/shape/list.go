package shape

// List is the ordered collection of shapes on a board. Order is paint order
// (later is on top). Every helper returns a new List and leaves the receiver
// untouched, so a List handed to a renderer or a history stack stays stable.
type List []Shape

// Clone returns a shallow copy of the list. Shapes are values, so the copy is
// independent except for the backing arrays of path points, which are never
// written after construction.
func (l List) Clone() List {
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Append returns a new list with s on top.
func (l List) Append(s Shape) List {
	out := make(List, len(l), len(l)+1)
	copy(out, l)
	return append(out, s)
}

// Find returns the shape with the given id.
func (l List) Find(id string) (Shape, bool) {
	if id == "" {
		return nil, false
	}
	for _, s := range l {
		if s.ShapeID() == id {
			return s, true
		}
	}
	return nil, false
}

// Contains reports whether a shape with id is present.
func (l List) Contains(id string) bool {
	_, ok := l.Find(id)
	return ok
}

// Replace returns a new list where the entry with the same id as s is
// replaced by s. The z-order position is kept.
func (l List) Replace(s Shape) (List, error) {
	out := l.Clone()
	for i, existing := range out {
		if existing.ShapeID() == s.ShapeID() {
			out[i] = s
			return out, nil
		}
	}
	return l, ErrNotFound
}

// Update merges p into the shape with the given id.
func (l List) Update(id string, p Patch) (List, error) {
	s, ok := l.Find(id)
	if !ok {
		return l, ErrNotFound
	}
	return l.Replace(p.Apply(s))
}

// Remove returns a new list without the shape with the given id. Removing a
// missing id returns an equal copy.
func (l List) Remove(id string) List {
	out := make(List, 0, len(l))
	for _, s := range l {
		if s.ShapeID() != id {
			out = append(out, s)
		}
	}
	return out
}

// IDs returns the shape ids in paint order.
func (l List) IDs() []string {
	ids := make([]string, len(l))
	for i, s := range l {
		ids[i] = s.ShapeID()
	}
	return ids
}
