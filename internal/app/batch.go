package app

import (
	"context"
	"fmt"
	"sync"
)

/**

batch backtests over many funds share nothing: each run owns its own
portfolio state and rule sets are read-only, so units just fan out over
a bounded worker pool. cancellation means not starting further units -
in-flight runs are cpu-bound and finish on their own.

*/

// RunBatch executes the inputs with at most parallelism concurrent runs.
// Results are positionally aligned with inputs and identical to running
// sequentially. The first error aborts scheduling of remaining units.
func (h SimulationHandler) RunBatch(ctx context.Context, inputs []RunInput, parallelism int) ([]*RunResult, error) {
	if parallelism < 1 {
		parallelism = 1
	}

	results := make([]*RunResult, len(inputs))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	sem := make(chan struct{}, parallelism)

	for i := range inputs {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}
		mu.Lock()
		failed := firstErr != nil
		mu.Unlock()
		if failed {
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := h.Run(inputs[i])
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("batch run %d failed: %w", i, err)
				}
				mu.Unlock()
				return
			}
			results[i] = result
		}(i)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
