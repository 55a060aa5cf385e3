package domain

import "time"

// Audit event types recorded by the service. Client identifiers in audit
// rows are always HMAC fingerprints, never raw IPs or User-Agents.
const (
	AuditLinkIssued   = "link_issued"
	AuditLinkRedeemed = "link_redeemed"
	AuditRedeemDenied = "redeem_denied"
	AuditProxyBlocked = "proxy_blocked"
	AuditGiftMinted   = "gift_minted"
	AuditGiftRedeemed = "gift_redeemed"
)

// AuditEvent is one row in the retained audit trail.
type AuditEvent struct {
	ID        string // ULID
	EventType string

	// TokenFingerprint is the SHA-256 fingerprint of the token or gift
	// code ID involved, where applicable.
	TokenFingerprint string

	// IPHash and UAHash carry the same HMAC fingerprints stored on token
	// records.
	IPHash string
	UAHash string

	// Detail holds a short free-form reason ("binding mismatch",
	// "blocked origin", upstream status, ...).
	Detail string

	CreatedAt time.Time
}
