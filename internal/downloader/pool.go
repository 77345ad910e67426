package downloader

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"boardharvest/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of fetches kept in flight
const DefaultConcurrency = 5

// Fetcher retrieves the raw bytes behind a URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

// Fetch calls f(ctx, url)
func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// Result is the outcome of fetching the URL at position Index. A nil
// Payload marks a failed fetch; Err tells why.
type Result struct {
	Index   int
	Payload []byte
	Err     error
}

// Failed reports whether the fetch produced no payload
func (r Result) Failed() bool {
	return r.Payload == nil
}

// ProgressFunc is called after every completed fetch, successful or not.
// Calls are serialized and completed goes from 1 to total.
type ProgressFunc func(completed, total int)

// Pool fetches a batch of URLs with a fixed number of workers
type Pool struct {
	concurrency int
	fetcher     Fetcher
	logger      logger.Logger
}

// NewPool creates a fetch pool. Concurrency below 1 falls back to
// DefaultConcurrency.
func NewPool(concurrency int, fetcher Fetcher, log logger.Logger) *Pool {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Pool{
		concurrency: concurrency,
		fetcher:     fetcher,
		logger:      log.WithField("component", "fetch_pool"),
	}
}

// FetchAll fetches every URL and returns results aligned with urls. Workers
// claim the next unclaimed index from a shared cursor, so each URL is
// fetched exactly once. A failed fetch never stops the batch and is not
// retried.
func (p *Pool) FetchAll(ctx context.Context, urls []string, onProgress ProgressFunc) []Result {
	total := len(urls)
	results := make([]Result, total)
	if total == 0 {
		return results
	}

	workers := min(p.concurrency, total)
	logger.LogComponentStart(p.logger, "fetch_pool", map[string]interface{}{
		"workers": workers,
		"items":   total,
	})
	started := time.Now()

	var (
		cursor    atomic.Int64
		mu        sync.Mutex
		completed int
	)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				i := int(cursor.Add(1) - 1)
				if i >= total {
					return nil
				}

				results[i] = p.fetchOne(ctx, i, urls[i])

				mu.Lock()
				completed++
				if onProgress != nil {
					onProgress(completed, total)
				}
				mu.Unlock()
			}
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	p.logger.InfoWithFields("Fetch batch finished", map[string]interface{}{
		"items":    total,
		"failed":   failed,
		"duration": time.Since(started),
	})
	return results
}

func (p *Pool) fetchOne(ctx context.Context, index int, url string) Result {
	data, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		logger.LogFetch(p.logger, index, url, 0, err)
		return Result{Index: index, Err: err}
	}
	if data == nil {
		data = []byte{}
	}
	logger.LogFetch(p.logger, index, url, len(data), nil)
	return Result{Index: index, Payload: data}
}
