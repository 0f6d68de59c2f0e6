// Package history keeps the linear undo/redo stacks of serialized shape
// lists.
package history

import (
	"fmt"
	"log"

	"whiteboard/internal/shape"
)

// Manager holds two stacks of serialized snapshots. The undo stack is never
// empty: its bottom entry is the base the board was initialised with. The
// zero value is not usable; call New.
type Manager struct {
	undo  [][]byte
	redo  [][]byte
	limit int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit caps the number of undoable steps. Older steps are folded into
// the base. Zero or negative means unlimited.
func WithLimit(n int) Option {
	return func(m *Manager) {
		m.limit = n
	}
}

// New returns a Manager whose only snapshot is base.
func New(base shape.List, opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	m.Reset(base)
	return m
}

// Reset discards both stacks and starts over from base.
func (m *Manager) Reset(base shape.List) {
	m.undo = [][]byte{mustEncode(base)}
	m.redo = nil
}

// Push records list as the newest state and discards any redo states.
func (m *Manager) Push(list shape.List) error {
	data, err := shape.Encode(list)
	if err != nil {
		return fmt.Errorf("failed to snapshot shapes: %w", err)
	}
	m.undo = append(m.undo, data)
	m.redo = nil
	if m.limit > 0 && len(m.undo) > m.limit+1 {
		m.undo = append([][]byte(nil), m.undo[len(m.undo)-m.limit-1:]...)
	}
	return nil
}

// Undo moves the newest state to the redo stack and returns the state now on
// top. It reports false when only the base remains. The caller restores the
// returned list without pushing it again.
func (m *Manager) Undo() (shape.List, bool) {
	if len(m.undo) <= 1 {
		return nil, false
	}
	top := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, top)
	return m.decodeTop()
}

// Redo moves the newest redo state back onto the undo stack and returns it.
// It reports false when there is nothing to redo.
func (m *Manager) Redo() (shape.List, bool) {
	if len(m.redo) == 0 {
		return nil, false
	}
	next := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, next)
	return m.decodeTop()
}

// Current returns the state on top of the undo stack.
func (m *Manager) Current() shape.List {
	list, _ := m.decodeTop()
	return list
}

func (m *Manager) CanUndo() bool { return len(m.undo) > 1 }
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// Depth returns the sizes of the undo and redo stacks.
func (m *Manager) Depth() (undo, redo int) {
	return len(m.undo), len(m.redo)
}

func (m *Manager) decodeTop() (shape.List, bool) {
	list, err := shape.Decode(m.undo[len(m.undo)-1])
	if err != nil {
		// Snapshots are produced by shape.Encode, so this is a bug.
		log.Printf("❌ Corrupt history snapshot: %v", err)
		return nil, false
	}
	return list, true
}

func mustEncode(list shape.List) []byte {
	data, err := shape.Encode(list)
	if err != nil {
		log.Printf("❌ Failed to snapshot base shapes: %v", err)
		return []byte("[]")
	}
	return data
}
