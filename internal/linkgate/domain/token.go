package domain

import "time"

// TTL bounds for download tokens. Requested TTLs are clamped into this
// range at issuance; the default applies only when the client asks for
// nothing at all.
const (
	MinTokenTTL     = 5 * time.Second
	MaxTokenTTL     = 120 * time.Second
	DefaultTokenTTL = 20 * time.Second
)

// ClampTTL clamps a requested TTL in seconds into [MinTokenTTL, MaxTokenTTL].
func ClampTTL(seconds int) time.Duration {
	ttl := time.Duration(seconds) * time.Second
	if ttl < MinTokenTTL {
		return MinTokenTTL
	}
	if ttl > MaxTokenTTL {
		return MaxTokenTTL
	}
	return ttl
}

// ResolveTTL picks the effective TTL for an issuance request. A nil value
// means the caller did not ask, which yields the default; an explicit
// request is clamped, so asking for zero yields the minimum rather than
// the default.
func ResolveTTL(requested *int) time.Duration {
	if requested == nil {
		return DefaultTokenTTL
	}
	return ClampTTL(*requested)
}

// DownloadToken authorizes fetching one upstream resource exactly once.
// The record is immutable once stored; consumption removes it from the
// live set rather than updating it.
type DownloadToken struct {
	// Token is the opaque random identifier and primary key (base64url,
	// 256 bits of entropy).
	Token string

	// Href is the fully-qualified upstream URL fetched on redemption. It
	// must pass the host allowlist at issuance and again at redemption.
	Href string

	// Optional descriptive metadata, not security-relevant.
	ID    string
	Type  string
	Title string

	CreatedAt time.Time
	ExpiresAt time.Time

	// UsedAt is set when the token is consumed. The live record is deleted
	// at that point, so this only ever appears on the copy handed to the
	// consumer and in the audit trail.
	UsedAt *time.Time

	// GraceUntil mirrors UsedAt on consume. No grace window is granted;
	// the field is retained for compatibility with existing audit tooling.
	GraceUntil *time.Time

	// Binding fingerprints: HMAC-SHA256 of the requesting IP and
	// User-Agent at issuance, plus the client-supplied nonce mirrored into
	// the dl_nonce cookie. All three must match exactly at redemption.
	IPHash      string
	UAHash      string
	ClientNonce string
}

// Expired reports whether the token is past its expiry (and any grace
// window, which in practice equals UsedAt so grants nothing).
func (t DownloadToken) Expired(now time.Time) bool {
	if !now.After(t.ExpiresAt) {
		return false
	}
	if t.GraceUntil != nil && !now.After(*t.GraceUntil) {
		return false
	}
	return true
}
