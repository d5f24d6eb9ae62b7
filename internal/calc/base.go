package calc

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"go.chromium.org/luci/common/logging"
)

// PipeLine represents a row-parallel compute pipeline
type PipeLine struct {
	ctx      context.Context
	numPoper int
	pushCnt  int64
	popCnt   int64
	debug    bool
}

// Init returns a compute PipeLine. Non-positive workers means one per CPU.
func Init(ctx context.Context, workers int, debug bool) *PipeLine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &PipeLine{
		ctx:      ctx,
		numPoper: workers,
		debug:    debug,
	}
}

// Workers returns the number of row workers
func (p *PipeLine) Workers() int {
	return p.numPoper
}

// Counts returns how many rows were pushed to and popped by the workers so far
func (p *PipeLine) Counts() (pushed, popped int64) {
	return atomic.LoadInt64(&p.pushCnt), atomic.LoadInt64(&p.popCnt)
}

// rows runs fn for every row index in [0, n) on the worker pool.
func (p *PipeLine) rows(name string, n int, fn func(index int)) {
	order := make(chan int, p.numPoper)
	var wg sync.WaitGroup

	wg.Add(n)

	for i := 0; i < p.numPoper; i++ {
		go func() {
			for index := range order {
				fn(index)
				atomic.AddInt64(&p.popCnt, 1)
				wg.Done()
			}
		}()
	}

	for i := 0; i < n; i++ {
		order <- i
		atomic.AddInt64(&p.pushCnt, 1)
	}

	wg.Wait()
	close(order)

	if p.debug {
		pushed, popped := p.Counts()
		logging.Debugf(p.ctx, "[%s] %d rows on %d workers (push count: %d, pop count: %d)", name, n, p.numPoper, pushed, popped)
	}
}
