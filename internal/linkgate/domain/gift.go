package domain

import "time"

// Gift code validity bounds. Far looser than download tokens: a gift code
// is expected to travel over email or chat before being redeemed.
const (
	MinGiftTTL     = time.Hour
	MaxGiftTTL     = 30 * 24 * time.Hour
	DefaultGiftTTL = 7 * 24 * time.Hour
)

// GiftCode is the decoded form of an HMAC-signed gift code: the signature
// carries the claims, the store only tracks which IDs have been consumed.
type GiftCode struct {
	// ID is the single-use identifier (jti claim, ULID).
	ID string

	// Tier names the membership tier the code grants.
	Tier string

	// Recipient is an optional display hint; not security-relevant.
	Recipient string

	IssuedAt  time.Time
	ExpiresAt time.Time
}
