// Package retry re-runs page document loads that fail for transient reasons.
//
// Image payload fetches are never retried: a failed fetch is a skipped item.
// Only the HTML document a static harvest starts from goes through here,
// since losing it loses the whole run.
//
//	policy := retry.DefaultPolicy(log)
//	body, err := retry.DoWithResult(ctx, policy, func() ([]byte, error) {
//		return client.get(ctx, url, headers)
//	})
//
// Network errors, 429 and 5xx responses are retried with exponential backoff
// and jitter. Other status codes and context errors end the loop at once.
package retry
