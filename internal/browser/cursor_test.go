package browser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCursorWraparound(t *testing.T) {
	c := NewCursor(3)

	var got []int
	for i := 0; i < 7; i++ {
		got = append(got, c.Next())
	}

	want := []int{0, 1, 2, 0, 1, 2, 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cursor sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestCursorSingleEntry(t *testing.T) {
	c := NewCursor(1)
	for i := 0; i < 3; i++ {
		if got := c.Next(); got != 0 {
			t.Fatalf("Next() = %d, want 0", got)
		}
	}
}

func TestCursorClampsLength(t *testing.T) {
	c := NewCursor(0)
	if got := c.Next(); got != 0 {
		t.Fatalf("Next() = %d, want 0", got)
	}
}

func TestCursorsAreIndependent(t *testing.T) {
	a := NewCursor(2)
	b := NewCursor(3)

	a.Next()
	a.Next()
	b.Next()

	if got := a.Next(); got != 0 {
		t.Errorf("a.Next() = %d, want 0", got)
	}
	if got := b.Next(); got != 1 {
		t.Errorf("b.Next() = %d, want 1", got)
	}
}
