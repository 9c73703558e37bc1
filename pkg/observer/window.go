package observer

import "sync"

// Window is a fixed-capacity sliding window of observations. Once full,
// new observations overwrite the oldest. Every reportEvery insertions the
// report callback receives a snapshot of the window; the callback runs
// outside the window's lock, so it may observe or insert freely.
type Window[O any] struct {
	mu          sync.Mutex
	slots       []O
	capacity    int
	next        int
	count       uint64
	reportEvery int
	report      func([]O)
}

// NewWindow creates a window holding up to capacity observations,
// reporting every reportEvery insertions. A nil report callback or a
// non-positive reportEvery disables automatic reporting.
func NewWindow[O any](capacity, reportEvery int, report func([]O)) *Window[O] {
	if capacity < 1 {
		capacity = 1
	}
	return &Window[O]{
		slots:       make([]O, 0, capacity),
		capacity:    capacity,
		reportEvery: reportEvery,
		report:      report,
	}
}

// Insert adds an observation, evicting the oldest once the window is
// full, and fires the report callback on every reportEvery-th insertion.
func (w *Window[O]) Insert(ob O) {
	w.mu.Lock()
	if len(w.slots) < w.capacity {
		w.slots = append(w.slots, ob)
	} else {
		w.slots[w.next] = ob
	}
	w.next = (w.next + 1) % w.capacity
	w.count++

	var snapshot []O
	if w.report != nil && w.reportEvery > 0 && w.count%uint64(w.reportEvery) == 0 {
		snapshot = make([]O, len(w.slots))
		copy(snapshot, w.slots)
	}
	w.mu.Unlock()

	if snapshot != nil {
		w.report(snapshot)
	}
}

// Snapshot returns a copy of the window's current contents, oldest
// ordering not guaranteed.
func (w *Window[O]) Snapshot() []O {
	w.mu.Lock()
	defer w.mu.Unlock()
	snapshot := make([]O, len(w.slots))
	copy(snapshot, w.slots)
	return snapshot
}

// Len returns the number of observations currently held.
func (w *Window[O]) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.slots)
}

// Count returns the total number of insertions over the window's life.
func (w *Window[O]) Count() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}
