// Package ratelimit implements a token-bucket rate limiter scoped to one
// upstream marketplace.
//
// Each limiter holds its token count in memory for the process lifetime.
// A restart resets the bucket full, which over-provisions the published
// quota slightly; quotas are advisory, so this is accepted.
package ratelimit
