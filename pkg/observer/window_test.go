package observer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowInsertBelowCapacity(t *testing.T) {
	w := NewWindow[int](4, 0, nil)

	w.Insert(1)
	w.Insert(2)

	assert.Equal(t, 2, w.Len())
	assert.Equal(t, uint64(2), w.Count())
	assert.Equal(t, []int{1, 2}, w.Snapshot())
}

func TestWindowEvictsOldest(t *testing.T) {
	w := NewWindow[int](3, 0, nil)

	for i := 1; i <= 5; i++ {
		w.Insert(i)
	}

	// Capacity stays fixed while the count keeps climbing.
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, uint64(5), w.Count())
	assert.ElementsMatch(t, []int{3, 4, 5}, w.Snapshot())
}

func TestWindowReportsEveryInterval(t *testing.T) {
	var reports [][]int
	w := NewWindow[int](8, 3, func(window []int) {
		reports = append(reports, window)
	})

	for i := 1; i <= 7; i++ {
		w.Insert(i)
	}

	// Reports at the 3rd and 6th insertion, not the 7th.
	require.Len(t, reports, 2)
	assert.Equal(t, []int{1, 2, 3}, reports[0])
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, reports[1])
}

func TestWindowReportSnapshotIsACopy(t *testing.T) {
	var snapshot []int
	w := NewWindow[int](2, 2, func(window []int) {
		snapshot = window
	})

	w.Insert(1)
	w.Insert(2)
	w.Insert(3)

	// The third insertion overwrote slot 0, but the report kept [1, 2].
	assert.Equal(t, []int{1, 2}, snapshot)
}

func TestWindowCallbackMayReenter(t *testing.T) {
	var w *Window[int]
	var fromCallback int
	w = NewWindow[int](4, 2, func(window []int) {
		fromCallback = w.Len()
	})

	w.Insert(1)
	w.Insert(2)

	assert.Equal(t, 2, fromCallback)
}

func TestWindowMinimumCapacity(t *testing.T) {
	w := NewWindow[int](0, 0, nil)
	w.Insert(1)
	w.Insert(2)
	assert.Equal(t, 1, w.Len())
	assert.Equal(t, []int{2}, w.Snapshot())
}

func TestWindowConcurrentInsert(t *testing.T) {
	w := NewWindow[int](128, 0, nil)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				w.Insert(g*100 + i)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, uint64(800), w.Count())
	assert.Equal(t, 128, w.Len())
}
