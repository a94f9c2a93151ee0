package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func blockWithMoves(t *testing.T, names ...string) *BasicBlock {
	t.Helper()
	b := NewBasicBlock(nil)
	for _, n := range names {
		dest := LocalValue(NewLocal(n, Int32))
		b.PushBack(NewMove(dest, Int32Zero))
	}
	return b
}

func collectDestNames(b *BasicBlock) []string {
	var out []string
	b.ForEach(func(ins *Instruction) {
		out = append(out, ins.Output.Local.Name)
	})
	return out
}

func TestWalkerEmplaceInsertsBeforeCursor(t *testing.T) {
	b := blockWithMoves(t, "a", "b", "c")
	w := b.Begin()
	w.NextInBlock() // now at "b"
	w.Emplace(NewMove(LocalValue(NewLocal("x", Int32)), Int32Zero))

	got := collectDestNames(b)
	want := []string{"a", "x", "b", "c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("destination order mismatch (-want +got):\n%s", diff)
	}
	if w.Get().Output.Local.Name != "x" {
		t.Errorf("expected cursor to sit on the newly inserted instruction, got %s", w.Get().Output.Local.Name)
	}
}

func TestWalkerEraseAdvancesToNext(t *testing.T) {
	b := blockWithMoves(t, "a", "b", "c")
	w := b.Begin()
	w.NextInBlock() // "b"
	w.Erase()

	if w.Get() == nil || w.Get().Output.Local.Name != "c" {
		t.Fatalf("expected cursor to land on %q after erase, got %v", "c", w.Get())
	}
	got := collectDestNames(b)
	want := []string{"a", "c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("destination order mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkerResetPreservesPosition(t *testing.T) {
	b := blockWithMoves(t, "a", "b", "c")
	w := b.Begin()
	w.NextInBlock() // "b"
	w.Reset(NewMove(LocalValue(NewLocal("b2", Int32)), Int32One))

	got := collectDestNames(b)
	want := []string{"a", "b2", "c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("destination order mismatch (-want +got):\n%s", diff)
	}
}

func TestLocalUsersTrackedThroughEmplaceAndErase(t *testing.T) {
	b := NewBasicBlock(nil)
	x := NewLocal("x", Int32)
	dest := NewLocal("dest", Int32)
	ins := NewMove(LocalValue(dest), LocalValue(x))
	b.PushBack(ins)

	if len(x.Readers()) != 1 {
		t.Fatalf("expected 1 reader of x after PushBack, got %d", len(x.Readers()))
	}
	if len(dest.Writers()) != 1 {
		t.Fatalf("expected 1 writer of dest after PushBack, got %d", len(dest.Writers()))
	}

	w := b.Begin()
	w.Erase()

	if len(x.Readers()) != 0 {
		t.Errorf("expected 0 readers of x after erase, got %d", len(x.Readers()))
	}
	if len(dest.Writers()) != 0 {
		t.Errorf("expected 0 writers of dest after erase, got %d", len(dest.Writers()))
	}
}
