package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Binder produces comparable-but-not-reversible fingerprints of client
// attributes (IP address, User-Agent) so token records never retain raw
// PII. Fingerprints are HMAC-SHA256 keyed by a process-wide secret and the
// comparison is a plain equality check on the encoded form.
type Binder struct {
	key []byte
}

// NewBinder returns a Binder keyed with the given secret.
func NewBinder(secret []byte) *Binder {
	return &Binder{key: secret}
}

// Fingerprint returns the base64url HMAC-SHA256 of input. Deterministic for
// a fixed key; the empty string hashes to a fixed value rather than erroring.
func (b *Binder) Fingerprint(input string) string {
	mac := hmac.New(sha256.New, b.key)
	_, _ = mac.Write([]byte(input))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Matches compares a candidate input against a stored fingerprint in
// constant time.
func (b *Binder) Matches(input, fingerprint string) bool {
	return hmac.Equal([]byte(b.Fingerprint(input)), []byte(fingerprint))
}
