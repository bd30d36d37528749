package storage

import (
	"sync"

	"avito_bot/internal/model"
)

// Window is a bounded, insertion-ordered record of recently seen listings.
// It pairs a ring of listings with a set of their IDs so membership checks
// are O(1); the two structures are evicted in lockstep and never exposed
// separately. The window is not persisted, so a restart loses dedup history.
type Window struct {
	mu       sync.Mutex
	capacity int
	order    []model.Listing
	ids      map[string]struct{}
}

// NewWindow creates a Window holding at most capacity listings.
// Capacity values below 1 are clamped to 1.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{
		capacity: capacity,
		ids:      make(map[string]struct{}, capacity),
	}
}

// Add records a listing and reports whether it was new. A listing whose ID is
// already present leaves the window unchanged. When the window is full the
// oldest entry is evicted together with its ID.
func (w *Window) Add(l model.Listing) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, seen := w.ids[l.ID]; seen {
		return false
	}

	w.order = append(w.order, l)
	w.ids[l.ID] = struct{}{}

	if len(w.order) > w.capacity {
		oldest := w.order[0]
		w.order = w.order[1:]
		delete(w.ids, oldest.ID)
	}
	return true
}

// Contains reports whether a listing ID is in the retained window.
func (w *Window) Contains(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.ids[id]
	return ok
}

// Len returns the number of retained listings.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.order)
}
