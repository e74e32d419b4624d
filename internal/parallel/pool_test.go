package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

// =============================================================================
// WorkerPool Creation Tests
// =============================================================================

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}

	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestWorkerPool_CreateZeroWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	expected := runtime.GOMAXPROCS(0)
	if pool.Workers() != expected {
		t.Errorf("Workers() = %d, want %d (GOMAXPROCS)", pool.Workers(), expected)
	}
}

// =============================================================================
// ExecuteAll Tests
// =============================================================================

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	numTasks := 100

	work := make([]func(), numTasks)
	for i := range work {
		work[i] = func() {
			counter.Add(1)
		}
	}

	pool.ExecuteAll(work)

	if counter.Load() != int64(numTasks) {
		t.Errorf("counter = %d, want %d", counter.Load(), numTasks)
	}
}

func TestWorkerPool_ExecuteAll_Empty(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	pool.ExecuteAll(nil)
	pool.ExecuteAll([]func(){})
}

func TestWorkerPool_ExecuteAll_AfterClose(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()

	var counter atomic.Int64
	pool.ExecuteAll([]func(){
		func() { counter.Add(1) },
		func() { counter.Add(1) },
	})

	if counter.Load() != 2 {
		t.Errorf("counter = %d, want 2 (inline execution after Close)", counter.Load())
	}
}

// =============================================================================
// ForEachBand Tests
// =============================================================================

func TestWorkerPool_ForEachBand_CoversEveryRowOnce(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	for _, height := range []int{1, 7, 8, 9, 64, 100, 1081} {
		var mu sync.Mutex
		hits := make([]int, height)

		pool.ForEachBand(height, func(y0, y1 int) {
			mu.Lock()
			defer mu.Unlock()
			for y := y0; y < y1; y++ {
				hits[y]++
			}
		})

		for y, n := range hits {
			if n != 1 {
				t.Errorf("height=%d: row %d visited %d times, want 1", height, y, n)
			}
		}
	}
}

func TestWorkerPool_ForEachBand_ZeroHeight(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	called := false
	pool.ForEachBand(0, func(int, int) { called = true })

	if called {
		t.Error("ForEachBand(0) should not call fn")
	}
}

// =============================================================================
// Close Tests
// =============================================================================

func TestWorkerPool_CloseIdempotent(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Error("Pool should not be running after Close")
	}
}
