package linksdk

import "time"

// LinkBinding carries the client half of the token binding.
type LinkBinding struct {
	// ClientNonce is a caller-generated random value. It is echoed into
	// the dl_nonce cookie and must accompany redemption.
	ClientNonce string `json:"clientNonce"`
}

// LinkRequirements tunes the issued link.
type LinkRequirements struct {
	// MaxAgeSeconds is the requested validity window, clamped into the
	// server's allowed range. Omitting the field yields the server
	// default; an explicit value is clamped even when it is zero.
	MaxAgeSeconds *int `json:"maxAgeSeconds,omitempty"`
}

// IssueLinkRequest is the body of POST /api/downloads/issue-link.
type IssueLinkRequest struct {
	// Href is the upstream download URL. Its host must be allowlisted.
	Href string `json:"href"`

	// Optional descriptive metadata.
	ID    string `json:"id,omitempty"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`

	Bind         LinkBinding      `json:"bind"`
	Requirements LinkRequirements `json:"requirements,omitempty"`
}

// IssueLinkResponse is the success body of POST /api/downloads/issue-link.
type IssueLinkResponse struct {
	// OneTimeURL is the relative redemption URL. It works exactly once,
	// from the same client, within the token's validity window.
	OneTimeURL string `json:"oneTimeUrl"`
}

// MintGiftRequest is the body of POST /api/gifts/mint.
type MintGiftRequest struct {
	Tier      string `json:"tier"`
	Recipient string `json:"recipient,omitempty"`

	// TTLHours is the requested validity in hours; zero means the server
	// default.
	TTLHours int `json:"ttlHours,omitempty"`
}

// MintGiftResponse is the success body of POST /api/gifts/mint.
type MintGiftResponse struct {
	// Code is the signed gift code to hand to the recipient.
	Code      string    `json:"code"`
	ID        string    `json:"id"`
	Tier      string    `json:"tier"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RedeemGiftRequest is the body of POST /api/gifts/redeem.
type RedeemGiftRequest struct {
	Code string `json:"code"`
}

// RedeemGiftResponse is the success body of POST /api/gifts/redeem.
type RedeemGiftResponse struct {
	ID        string    `json:"id"`
	Tier      string    `json:"tier"`
	Recipient string    `json:"recipient,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HealthResponse is the body of GET /livez and GET /readyz.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`

	// Checks maps component names to "ok" or an error string. Only
	// populated by /readyz.
	Checks map[string]string `json:"checks,omitempty"`
}
