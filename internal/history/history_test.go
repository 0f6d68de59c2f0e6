package history

import (
	"reflect"
	"testing"

	"whiteboard/internal/shape"
)

func editSequence(n int) []shape.List {
	lists := []shape.List{{}}
	for i := 1; i <= n; i++ {
		prev := lists[len(lists)-1]
		next := prev.Append(shape.Rect{ID: string(rune('a' + i)), X: float64(i), W: 1, H: 1, Color: "#000"})
		lists = append(lists, next)
	}
	return lists
}

func TestUndoRedoAreExactInverses(t *testing.T) {
	const n = 5
	lists := editSequence(n)
	m := New(lists[0])
	for _, l := range lists[1:] {
		if err := m.Push(l); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}

	for i := n - 1; i >= 0; i-- {
		got, ok := m.Undo()
		if !ok {
			t.Fatalf("undo %d reported no-op", n-i)
		}
		if !reflect.DeepEqual(got.IDs(), lists[i].IDs()) {
			t.Fatalf("after undo expected %v, got %v", lists[i].IDs(), got.IDs())
		}
	}
	if _, ok := m.Undo(); ok {
		t.Fatal("undo past the base should be a no-op")
	}

	for i := 1; i <= n; i++ {
		got, ok := m.Redo()
		if !ok {
			t.Fatalf("redo %d reported no-op", i)
		}
		if !reflect.DeepEqual(got.IDs(), lists[i].IDs()) {
			t.Fatalf("after redo expected %v, got %v", lists[i].IDs(), got.IDs())
		}
	}
	if _, ok := m.Redo(); ok {
		t.Fatal("redo with an empty redo stack should be a no-op")
	}
}

func TestPushAfterUndoDiscardsRedo(t *testing.T) {
	lists := editSequence(3)
	m := New(lists[0])
	for _, l := range lists[1:] {
		_ = m.Push(l)
	}
	m.Undo()
	m.Undo()
	if !m.CanRedo() {
		t.Fatal("expected redo states after undo")
	}

	branch := lists[1].Append(shape.Circle{ID: "z", Radius: 3, Color: "#000"})
	if err := m.Push(branch); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if _, ok := m.Redo(); ok {
		t.Fatal("redo after a new push should be a no-op")
	}
	if got := m.Current().IDs(); !reflect.DeepEqual(got, branch.IDs()) {
		t.Errorf("top should be the new branch, got %v", got)
	}
}

func TestResetStartsFromNewBase(t *testing.T) {
	m := New(nil)
	_ = m.Push(shape.List{shape.Rect{ID: "a", Color: "#000"}})

	base := shape.List{shape.Rect{ID: "remote", Color: "#000"}}
	m.Reset(base)

	if m.CanUndo() || m.CanRedo() {
		t.Fatal("reset should leave only the base snapshot")
	}
	if got := m.Current().IDs(); !reflect.DeepEqual(got, []string{"remote"}) {
		t.Errorf("unexpected base %v", got)
	}
}

func TestLimitFoldsOldestSteps(t *testing.T) {
	lists := editSequence(4)
	m := New(lists[0], WithLimit(2))
	for _, l := range lists[1:] {
		_ = m.Push(l)
	}
	if u, _ := m.Depth(); u != 3 {
		t.Fatalf("expected base plus 2 steps, got depth %d", u)
	}
	m.Undo()
	got, _ := m.Undo()
	if !reflect.DeepEqual(got.IDs(), lists[2].IDs()) {
		t.Errorf("expected folded base %v, got %v", lists[2].IDs(), got.IDs())
	}
	if m.CanUndo() {
		t.Error("no further undo past the folded base")
	}
}
