// Package ratelimit paces outgoing work.
//
// Two limiters implement Limiter:
//
//   - Interval keeps a minimum gap between consecutive operations. The
//     fallback persistence path uses it to leave the browser time to settle
//     between synthesized downloads.
//   - TokenBucket allows a burst of requests per refill period. The fetch
//     client uses it when download.requests_per_minute is set.
//
// Wait honours context cancellation:
//
//	limiter := ratelimit.NewInterval(300 * time.Millisecond)
//	for _, f := range files {
//	    if err := limiter.Wait(ctx); err != nil {
//	        return err
//	    }
//	    trigger(f)
//	}
package ratelimit
