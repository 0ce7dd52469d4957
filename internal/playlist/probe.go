package playlist

import (
	"context"
	"sync"
)

// probePool runs shortest path probes on a fixed number of workers.
type probePool struct {
	workers int
	probe   func(ctx context.Context, dest string) error
}

func newProbePool(workers int, probe func(ctx context.Context, dest string) error) *probePool {
	if workers <= 0 {
		workers = 1
	}
	return &probePool{workers: workers, probe: probe}
}

// run probes every destination and returns the errors indexed like dests.
// Destinations not reached before ctx ends carry ctx.Err().
func (p *probePool) run(ctx context.Context, dests []string) []error {
	errs := make([]error, len(dests))
	if len(dests) == 0 {
		return errs
	}
	indexCh := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			errs[idx] = p.probe(ctx, dests[idx])
		}
	}

	for i := 0; i < min(p.workers, len(dests)); i++ {
		wg.Add(1)
		go worker()
	}

	sent := 0
Loop:
	for ; sent < len(dests); sent++ {
		select {
		case indexCh <- sent:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()

	for i := sent; i < len(dests); i++ {
		errs[i] = ctx.Err()
	}
	return errs
}
