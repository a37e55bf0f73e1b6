// Package ratelimit implements per-key token buckets for the request gate.
//
// A key identifies a caller on one endpoint class (see BuildKey and
// NormalizeEndpoint). Each key owns one golang.org/x/time/rate limiter whose
// capacity and refill rate come from a Policy: an endpoint override when one
// is configured, otherwise the default of the caller's tier.
//
// Buckets live only in process memory. A Sweeper drops buckets that have
// been idle for longer than the configured TTL; a restart forgets every
// counter.
package ratelimit
