package training

import (
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// ThreadPool splits index ranges across a fixed number of goroutines.
type ThreadPool struct {
	workers int
}

// NewThreadPool returns a pool of workers goroutines. workers <= 0 uses GOMAXPROCS.
func NewThreadPool(workers int) *ThreadPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &ThreadPool{workers: workers}
}

// Workers returns the number of goroutines used per dispatch.
func (tp *ThreadPool) Workers() int {
	return tp.workers
}

// Dispatch partitions [0, count) into contiguous ranges, runs fn on each of them
// concurrently and returns once every range is done. The last range takes the
// remainder.
func (tp *ThreadPool) Dispatch(count int, fn func(start, end int)) {
	if count <= 0 {
		return
	}
	workers := min(tp.workers, count)
	batch := count / workers

	p := pool.New().WithMaxGoroutines(workers)
	for w := 0; w < workers; w++ {
		start := w * batch
		end := start + batch
		if w == workers-1 {
			end = count
		}
		p.Go(func() {
			fn(start, end)
		})
	}
	p.Wait()
}
