// Package api provides the resilient HTTP client shared by all marketplace
// adapters.
//
// The client applies, in order: rate-limiter acquisition before every network
// attempt, per-attempt header preparation (so signed requests get a fresh
// nonce on retry), a per-attempt timeout, and exponential backoff with jitter
// for retryable failures. Errors are classified into the taxonomy in
// errors.go; only RATE_LIMITED, SERVER_ERROR and TIMEOUT retry by default.
package api
