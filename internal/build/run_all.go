package build

import (
	"context"
	stdErrors "errors"
	"sync"
)

// RunAll builds every request with at most workers builds in flight and
// returns the results in request order. Projects write disjoint output trees
// so builds share no locks. Failed builds do not stop the others; their
// errors are joined into the returned error.
func (s *DefaultBuildService) RunAll(ctx context.Context, reqs []Request, workers int) ([]*Result, error) {
	if workers <= 0 {
		workers = s.cfg.Concurrency
	}
	if workers <= 0 || workers > len(reqs) {
		workers = max(len(reqs), 1)
	}
	s.recorder.SetBuildConcurrency(workers)
	defer s.recorder.SetBuildConcurrency(0)

	results := make([]*Result, len(reqs))
	errs := make([]error, len(reqs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = s.Run(ctx, reqs[i])
			}
		}()
	}

feed:
	for i := range reqs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			for j := i; j < len(reqs); j++ {
				errs[j] = ctx.Err()
			}
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return results, stdErrors.Join(errs...)
}
