package engine

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum child count to fan out. Below this the
// goroutine overhead outweighs the work.
const parallelThreshold = 2

// updateChildren ticks every child engine. With parallel_children enabled,
// children are split into contiguous chunks across GOMAXPROCS workers; each
// child owns its generator, so the result matches a sequential run.
func (e *Engine) updateChildren() {
	if !e.cfg.ParallelChildren || len(e.children) < parallelThreshold {
		for _, c := range e.children {
			c.Update()
		}
		return
	}

	numWorkers := min(runtime.GOMAXPROCS(0), len(e.children))
	chunk := (len(e.children) + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for start := 0; start < len(e.children); start += chunk {
		end := min(start+chunk, len(e.children))
		wg.Add(1)
		go func(children []*Engine) {
			defer wg.Done()
			for _, c := range children {
				c.Update()
			}
		}(e.children[start:end])
	}
	wg.Wait()
}
