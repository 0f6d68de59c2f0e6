package board

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"whiteboard/internal/drawing"
	"whiteboard/internal/geometry"
	"whiteboard/internal/history"
	"whiteboard/internal/render"
	"whiteboard/internal/shape"
)

/*
LEARNING: One editor, one lock

A board client is event driven: pointer, keyboard and network events must
never interleave. Every exported Board method takes the same mutex, so a
remote update arriving mid-drag waits until the pointer handler returns.

Every local edit follows the same pipeline:
 1. build a new list (lists are never mutated in place)
 2. repaint
 3. push a history snapshot
 4. emit the full list to the sync channel
*/

// Emitter sends the full shape list to the other participants.
type Emitter interface {
	Emit(list shape.List)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(shape.List)

func (f EmitterFunc) Emit(list shape.List) { f(list) }

// RemotePolicy decides how incoming remote lists touch local history.
type RemotePolicy int

const (
	// RemoteIgnore leaves local history untouched, so undo only ever
	// reverts this participant's own edits.
	RemoteIgnore RemotePolicy = iota
	// RemoteSnapshot pushes every remote list as if it were a local edit.
	RemoteSnapshot
)

// ErrNoSelection is returned by selection edits when nothing is selected.
var ErrNoSelection = errors.New("no shape selected")

// SelectionColor outlines the selected shape's handle box.
const SelectionColor = "#3b82f6"

type drag struct {
	id     string
	origin shape.Point
	delta  shape.Point
}

// Board is a single participant's editor: the shape list, selection,
// history, drawing session and output surface.
type Board struct {
	mu sync.Mutex

	shapes   shape.List
	selected string
	history  *history.Manager
	session  drawing.Session
	tool     drawing.Tool
	style    drawing.Style
	drag     *drag

	surface render.Surface
	emitter Emitter
	policy  RemotePolicy
}

// Option configures a Board.
type Option func(*Board)

func WithSurface(s render.Surface) Option    { return func(b *Board) { b.surface = s } }
func WithEmitter(e Emitter) Option           { return func(b *Board) { b.emitter = e } }
func WithRemotePolicy(p RemotePolicy) Option { return func(b *Board) { b.policy = p } }
func WithStyle(s drawing.Style) Option       { return func(b *Board) { b.style = s } }

// WithHistoryLimit caps undo depth.
func WithHistoryLimit(n int) Option {
	return func(b *Board) { b.history = history.New(nil, history.WithLimit(n)) }
}

// New returns an empty board with the select tool active.
func New(opts ...Option) *Board {
	b := &Board{
		tool:  drawing.ToolSelect,
		style: drawing.DefaultStyle(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.history == nil {
		b.history = history.New(nil)
	}
	if b.surface == nil {
		b.surface = &render.Recorder{}
	}
	if b.emitter == nil {
		b.emitter = EmitterFunc(func(shape.List) {})
	}
	return b
}

// SetEmitter replaces the sync output. Clients that are dialled after the
// board is built use this.
func (b *Board) SetEmitter(e Emitter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emitter = e
}

// --- read access ---

// Shapes returns the current list. Callers must not modify its elements.
func (b *Board) Shapes() shape.List {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shapes.Clone()
}

// Selection returns the selected id. A stale id resolves to none.
func (b *Board) Selection() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resolveSelection()
	return b.selected, b.selected != ""
}

// SelectionBox returns the handle box of the selected shape.
func (b *Board) SelectionBox() (geometry.Box, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resolveSelection()
	s, ok := b.shapes.Find(b.selected)
	if !ok {
		return geometry.Box{}, false
	}
	return geometry.BoundingBox(s), true
}

func (b *Board) Tool() drawing.Tool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tool
}

func (b *Board) CanUndo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.CanUndo()
}

func (b *Board) CanRedo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.CanRedo()
}

// --- toolbar ---

// SetTool switches the active tool. Any in-progress stroke or drag is
// discarded and pending text is committed, as a focus change would.
func (b *Board) SetTool(t drawing.Tool) error {
	if !t.Valid() {
		return fmt.Errorf("unknown tool %q", t)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session.State() == drawing.Typing {
		b.blurText()
	}
	b.session.Cancel()
	b.drag = nil
	b.tool = t
	b.repaint()
	return nil
}

func (b *Board) SetColor(color string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.style.Color = color
}

func (b *Board) SetEraserSize(size float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.style.EraserSize = size
}

func (b *Board) SetBackground(color string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.style.Background = color
}

// --- sync input ---

// Init adopts the server's snapshot and resets history to that single base.
func (b *Board) Init(list shape.List) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shapes = list.Clone()
	b.history.Reset(b.shapes)
	b.drag = nil
	b.resolveSelection()
	b.repaint()
}

// ApplyRemote replaces the list with one relayed from another participant.
// It is never re-emitted.
func (b *Board) ApplyRemote(list shape.List) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shapes = list.Clone()
	if b.policy == RemoteSnapshot {
		b.snapshot()
	}
	if b.drag != nil && !b.shapes.Contains(b.drag.id) {
		b.drag = nil
	}
	b.resolveSelection()
	b.repaint()
}

// --- history ---

// Undo restores the previous snapshot and emits it. It reports false at the
// history base.
func (b *Board) Undo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	list, ok := b.history.Undo()
	if !ok {
		return false
	}
	b.restore(list)
	return true
}

// Redo restores the next snapshot and emits it.
func (b *Board) Redo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	list, ok := b.history.Redo()
	if !ok {
		return false
	}
	b.restore(list)
	return true
}

func (b *Board) restore(list shape.List) {
	b.shapes = list
	b.selected = ""
	b.drag = nil
	b.repaint()
	b.emitter.Emit(b.shapes.Clone())
}

// --- internals; callers hold mu ---

// commit is the local-edit pipeline.
func (b *Board) commit(list shape.List) {
	b.shapes = list
	b.resolveSelection()
	b.repaint()
	b.snapshot()
	b.emitter.Emit(b.shapes.Clone())
}

func (b *Board) snapshot() {
	if err := b.history.Push(b.shapes); err != nil {
		log.Printf("⚠️  History push failed: %v", err)
	}
}

func (b *Board) resolveSelection() {
	if b.selected != "" && !b.shapes.Contains(b.selected) {
		b.selected = ""
	}
}

func (b *Board) repaint() {
	list := b.shapes
	if b.drag != nil {
		if s, ok := list.Find(b.drag.id); ok {
			if replaced, err := list.Replace(shape.Translate(s, b.drag.delta.X, b.drag.delta.Y)); err == nil {
				list = replaced
			}
		}
	}
	b.session.Render(b.surface, list)
	if s, ok := list.Find(b.selected); ok && b.session.State() == drawing.Idle {
		box := geometry.BoundingBox(s)
		b.surface.StrokeRect(box.X, box.Y, box.W, box.H, SelectionColor, 1)
	}
}
