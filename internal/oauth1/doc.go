// Package oauth1 signs BrickLink API requests using OAuth 1.0 HMAC-SHA1.
//
// BrickLink validates the full OAuth 1.0 signature base string, so parameter
// encoding and ordering must match RFC 5849 exactly. Every header carries a
// fresh nonce and timestamp; identical requests never produce identical
// signatures.
package oauth1
