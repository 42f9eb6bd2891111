// Package ratelimit paces requests to the listing server.
//
// The court site is slow and unreliable, so the harvester can optionally
// space out its requests. TokenBucket is backed by golang.org/x/time/rate;
// Unlimited is used when no rate is configured.
//
//	limiter := ratelimit.PerMinute(cfg.Fetch.RequestsPerMinute)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
package ratelimit
