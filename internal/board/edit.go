package board

import (
	"fmt"

	"whiteboard/internal/drawing"
	"whiteboard/internal/geometry"
	"whiteboard/internal/shape"
)

// PointerDown handles mouse-down and touch-start alike. With the select
// tool it picks the topmost shape under p and starts dragging it; with a
// drawing tool it opens a drawing session. Pending text is committed first,
// since clicking elsewhere blurs the text field.
func (b *Board) PointerDown(p shape.Point) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session.State() == drawing.Typing {
		b.blurText()
		return
	}
	if b.tool == drawing.ToolSelect {
		id, ok := geometry.Pick(b.shapes, p)
		b.selected = id
		if ok {
			b.drag = &drag{id: id, origin: p}
		}
		b.repaint()
		return
	}
	if b.session.Down(b.tool, b.style, p) {
		b.selected = ""
		b.repaint()
	}
}

// PointerMove extends the active stroke or drag and repaints the preview.
func (b *Board) PointerMove(p shape.Point) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.drag != nil {
		b.drag.delta = shape.Point{X: p.X - b.drag.origin.X, Y: p.Y - b.drag.origin.Y}
		b.repaint()
		return
	}
	if b.session.Move(p) {
		b.repaint()
	}
}

// PointerUp commits the active stroke, shape drag or move.
func (b *Board) PointerUp(p shape.Point) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if d := b.drag; d != nil {
		b.drag = nil
		dx, dy := p.X-d.origin.X, p.Y-d.origin.Y
		if dx == 0 && dy == 0 {
			b.repaint()
			return
		}
		if err := b.translate(d.id, dx, dy); err != nil {
			b.repaint()
		}
		return
	}
	if s, ok := b.session.Up(p); ok {
		b.commit(b.shapes.Append(s))
	}
}

// PointerCancel drops any in-progress stroke or drag without committing.
func (b *Board) PointerCancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session.State() == drawing.Drawing {
		b.session.Cancel()
	}
	b.drag = nil
	b.repaint()
}

// KeyDown handles editing keys: Delete and Backspace remove the selected
// shape unless text is being typed; Escape abandons text entry.
func (b *Board) KeyDown(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	typing := b.session.State() == drawing.Typing
	switch {
	case key == "Escape" && typing:
		b.escapeText()
	case (key == "Delete" || key == "Backspace") && typing:
		b.session.Backspace()
	case key == "Delete" || key == "Backspace":
		b.deleteSelected()
	}
}

// --- text entry ---

// TypeText inserts s into the pending label.
func (b *Board) TypeText(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session.Type(s)
}

// SetText replaces the pending label.
func (b *Board) SetText(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session.SetText(s)
}

// BlurText commits the pending label. The new text becomes the selection
// and the tool reverts to select.
func (b *Board) BlurText() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.blurText()
}

func (b *Board) blurText() (string, bool) {
	s, ok := b.session.Blur()
	if !ok {
		b.repaint()
		return "", false
	}
	b.tool = drawing.ToolSelect
	b.selected = s.ShapeID()
	b.commit(b.shapes.Append(s))
	return s.ShapeID(), true
}

// EscapeText abandons the pending label and reverts to the select tool.
func (b *Board) EscapeText() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.escapeText()
}

func (b *Board) escapeText() {
	b.session.Escape()
	b.tool = drawing.ToolSelect
	b.repaint()
}

// --- direct edits ---

// Add appends s to the list as a local edit.
func (b *Board) Add(s shape.Shape) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commit(b.shapes.Append(s))
}

// PlaceImage appends an image shape and returns its id.
func (b *Board) PlaceImage(x, y, w, h float64, src string) string {
	img := shape.Image{ID: shape.NewID(), X: x, Y: y, W: w, H: h, Src: src}
	b.Add(img)
	return img.ID
}

// Select makes id the selection. An unknown id clears it.
func (b *Board) Select(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selected = id
	b.resolveSelection()
	b.repaint()
	return b.selected != ""
}

func (b *Board) Deselect() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selected = ""
	b.repaint()
}

// UpdateShape merges p into the shape with the given id.
func (b *Board) UpdateShape(id string, p shape.Patch) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	list, err := b.shapes.Update(id, p)
	if err != nil {
		return err
	}
	b.commit(list)
	return nil
}

// MoveShape translates the shape with the given id.
func (b *Board) MoveShape(id string, dx, dy float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.translate(id, dx, dy)
}

// MoveShapeTo moves the shape so its handle box starts at (x, y).
func (b *Board) MoveShapeTo(id string, x, y float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.shapes.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", shape.ErrNotFound, id)
	}
	box := geometry.BoundingBox(s)
	return b.translate(id, x-box.X, y-box.Y)
}

// ResizeShape fits the shape into box. Only rects, images and circles can
// be resized.
func (b *Board) ResizeShape(id string, box geometry.Box) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.shapes.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", shape.ErrNotFound, id)
	}
	resized, err := shape.Resize(s, box.X, box.Y, box.W, box.H)
	if err != nil {
		return err
	}
	list, err := b.shapes.Replace(resized)
	if err != nil {
		return err
	}
	b.commit(list)
	return nil
}

// DeleteShape removes the shape with the given id.
func (b *Board) DeleteShape(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.shapes.Contains(id) {
		return fmt.Errorf("%w: %s", shape.ErrNotFound, id)
	}
	b.commit(b.shapes.Remove(id))
	return nil
}

// Clear removes every shape.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selected = ""
	b.drag = nil
	b.commit(shape.List{})
}

// --- selection edits ---

// UpdateSelected merges p into the selected shape.
func (b *Board) UpdateSelected(p shape.Patch) error {
	id, ok := b.Selection()
	if !ok {
		return ErrNoSelection
	}
	return b.UpdateShape(id, p)
}

func (b *Board) MoveSelected(dx, dy float64) error {
	id, ok := b.Selection()
	if !ok {
		return ErrNoSelection
	}
	return b.MoveShape(id, dx, dy)
}

func (b *Board) ResizeSelected(box geometry.Box) error {
	id, ok := b.Selection()
	if !ok {
		return ErrNoSelection
	}
	return b.ResizeShape(id, box)
}

// DeleteSelected removes the selected shape and clears the selection. It
// reports false when nothing is selected.
func (b *Board) DeleteSelected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deleteSelected()
}

func (b *Board) deleteSelected() bool {
	b.resolveSelection()
	if b.selected == "" {
		return false
	}
	id := b.selected
	b.selected = ""
	b.drag = nil
	b.commit(b.shapes.Remove(id))
	return true
}

func (b *Board) translate(id string, dx, dy float64) error {
	s, ok := b.shapes.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", shape.ErrNotFound, id)
	}
	list, err := b.shapes.Replace(shape.Translate(s, dx, dy))
	if err != nil {
		return err
	}
	b.commit(list)
	return nil
}
