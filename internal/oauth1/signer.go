package oauth1

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Credentials holds the consumer and access token pair for signing requests.
// Loaded once from configuration and used read-only.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	Token          string
	TokenSecret    string
}

// PercentEncode encodes a string per RFC 3986 section 2.1: unreserved
// characters (ALPHA / DIGIT / "-" / "." / "_" / "~") pass through, everything
// else becomes %XX with upper-case hex. Space encodes as %20, and the
// characters ! * ' ( ) are encoded, unlike url.QueryEscape.
func PercentEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z',
			c >= 'a' && c <= 'z',
			c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// Nonce returns 16 cryptographically random bytes as a 32-character hex
// string.
func Nonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read nonce bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Timestamp returns the current Unix timestamp in seconds, as a string.
func Timestamp() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

// SignatureBaseString builds the OAuth 1.0 signature base string:
// METHOD&percentEncode(baseURL)&percentEncode(sortedParamString).
func SignatureBaseString(method, baseURL string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, PercentEncode(k)+"="+PercentEncode(params[k]))
	}

	return strings.Join([]string{
		strings.ToUpper(method),
		PercentEncode(baseURL),
		PercentEncode(strings.Join(pairs, "&")),
	}, "&")
}

// Sign computes the HMAC-SHA1 signature of a base string with the signing
// key percentEncode(consumerSecret)&percentEncode(tokenSecret), base64
// encoded.
func Sign(baseString, consumerSecret, tokenSecret string) string {
	key := PercentEncode(consumerSecret) + "&" + PercentEncode(tokenSecret)
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(baseString))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// AuthorizationHeader produces a complete "OAuth ..." Authorization header
// for a request. baseURL must be the URL without query string; query holds
// the request's query parameters. A fresh nonce and timestamp are generated
// on every call.
func (c Credentials) AuthorizationHeader(method, baseURL string, query url.Values) (string, error) {
	nonce, err := Nonce()
	if err != nil {
		return "", err
	}

	oauthParams := map[string]string{
		"oauth_consumer_key":     c.ConsumerKey,
		"oauth_nonce":            nonce,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        Timestamp(),
		"oauth_token":            c.Token,
		"oauth_version":          "1.0",
	}

	allParams := make(map[string]string, len(oauthParams)+len(query))
	for k, v := range oauthParams {
		allParams[k] = v
	}
	for k := range query {
		allParams[k] = query.Get(k)
	}

	baseString := SignatureBaseString(method, baseURL, allParams)
	oauthParams["oauth_signature"] = Sign(baseString, c.ConsumerSecret, c.TokenSecret)

	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", PercentEncode(k), PercentEncode(oauthParams[k])))
	}

	return "OAuth " + strings.Join(parts, ", "), nil
}
