package jsonpath

import (
	"context"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/irvinebroque/jsonpath/pkg/types"
)

// BatchOptions configures batch evaluation.
type BatchOptions struct {
	// Parallelism caps the number of documents evaluated concurrently.
	// Defaults to runtime.GOMAXPROCS(0).
	Parallelism int
}

// BatchOption configures a RunMany call.
type BatchOption func(*BatchOptions)

// WithParallelism caps concurrent evaluations during RunMany.
func WithParallelism(n int) BatchOption {
	return func(opts *BatchOptions) {
		opts.Parallelism = n
	}
}

// RunMany evaluates the compiled query against each document concurrently
// and returns one node list per document, in input order.
//
// Evaluation stops early when ctx is cancelled; the context error is
// returned even in tolerant mode, since cancellation is a caller decision,
// not a query failure. Per-document depth errors follow the query's error
// mode: strict queries report the first one, tolerant queries leave a nil
// slot in the result.
func (q *CompiledQuery) RunMany(ctx context.Context, documents []any, opts ...BatchOption) ([]types.NodeList, error) {
	options := BatchOptions{
		Parallelism: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Parallelism <= 0 {
		options.Parallelism = 1
	}

	if len(documents) == 0 {
		return nil, nil
	}

	pool, err := ants.NewPool(options.Parallelism)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([]types.NodeList, len(documents))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for i, doc := range documents {
		if err := ctx.Err(); err != nil {
			setErr(err)
			break
		}

		i, doc := i, doc
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			nodes, err := q.Run(doc)
			if err != nil {
				setErr(err)
				return
			}
			results[i] = nodes
		})
		if submitErr != nil {
			wg.Done()
			setErr(submitErr)
			break
		}
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
