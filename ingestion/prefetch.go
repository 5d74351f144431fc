package ingestion

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/kbsync/core"
)

type fingerprintResult struct {
	fingerprint core.Fingerprint
	err         error
}

// prefetcher computes fingerprints ahead of the upload loop on a worker pool.
// Results are handed out strictly in file order, and at most lookahead files
// are hashed but not yet consumed.
type prefetcher struct {
	results []chan fingerprintResult
	window  chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	ctx     context.Context
}

func startPrefetch(ctx context.Context, pool *ants.Pool, fp Fingerprinter, files []core.FileRecord, lookahead int) *prefetcher {
	ctx, cancel := context.WithCancel(ctx)
	pf := &prefetcher{
		results: make([]chan fingerprintResult, len(files)),
		window:  make(chan struct{}, lookahead),
		cancel:  cancel,
		ctx:     ctx,
	}
	for i := range pf.results {
		pf.results[i] = make(chan fingerprintResult, 1)
	}

	pf.wg.Add(1)
	go func() {
		defer pf.wg.Done()
		for i, file := range files {
			select {
			case pf.window <- struct{}{}:
			case <-ctx.Done():
				return
			}

			out := pf.results[i]
			path := file.Path
			pf.wg.Add(1)
			err := pool.Submit(func() {
				defer pf.wg.Done()
				sum, err := fp.Fingerprint(ctx, path)
				out <- fingerprintResult{fingerprint: sum, err: err}
			})
			if err != nil {
				pf.wg.Done()
				out <- fingerprintResult{err: err}
			}
		}
	}()

	return pf
}

// next waits for the fingerprint of file i and frees a lookahead slot.
func (pf *prefetcher) next(i int) (core.Fingerprint, error) {
	select {
	case r := <-pf.results[i]:
		<-pf.window
		return r.fingerprint, r.err
	case <-pf.ctx.Done():
		return "", pf.ctx.Err()
	}
}

// stop cancels outstanding work and waits for in-flight hashes to return.
func (pf *prefetcher) stop() {
	pf.cancel()
	pf.wg.Wait()
}
