package checksum

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/multierr"
)

// DefaultWorkers is used when a pool is created with a non-positive worker count.
var DefaultWorkers = runtime.NumCPU() //nolint:gochecknoglobals // Sized once from the host.

// Result pairs a path with its computed digest.
type Result struct {
	// Path is the file path exactly as submitted.
	Path string
	// Digest is the lowercase hex MD5 digest of the file contents.
	Digest string
}

// Pool computes digests for many files over a bounded number of workers.
// Digest failures are collected, not fatal: a single unreadable file must not
// discard digests already computed for its siblings.
type Pool struct {
	workers int
}

// NewPool returns a pool running at most workers digests concurrently.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	return &Pool{workers: workers}
}

// SumAll digests every path and returns results keyed by path together with
// the combined error for all failed files. Paths that failed are absent from
// the result map. Cancelling the context stops feeding new work; digests
// already in flight still complete.
func (p *Pool) SumAll(ctx context.Context, paths []string) (map[string]string, error) {
	if len(paths) == 0 {
		return map[string]string{}, nil
	}

	var (
		jobs    = make(chan string)
		results = make(chan Result, len(paths))
		errs    = make(chan error, len(paths))
		wg      sync.WaitGroup
	)

	for i := 0; i < p.workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for path := range jobs {
				digest, err := SumFile(path)
				if err != nil {
					errs <- err
					continue
				}

				results <- Result{Path: path, Digest: digest}
			}
		}()
	}

feed:
	for _, path := range paths {
		select {
		case jobs <- path:
		case <-ctx.Done():
			errs <- ctx.Err()
			break feed
		}
	}

	close(jobs)
	wg.Wait()
	close(results)
	close(errs)

	digests := make(map[string]string, len(paths))
	for res := range results {
		digests[res.Path] = res.Digest
	}

	var combined error
	for err := range errs {
		combined = multierr.Append(combined, err)
	}

	return digests, combined
}
