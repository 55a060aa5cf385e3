package linksdk

import "fmt"

// Error codes returned by the linkgate API.
const (
	ErrorCodeInvalidRequest  = "invalid_request"
	ErrorCodeMissingToken    = "missing_token"
	ErrorCodeMissingNonce    = "missing_nonce"
	ErrorCodeDisallowedHost  = "disallowed_host"
	ErrorCodeBlockedOrigin   = "blocked_origin"
	ErrorCodeBindingMismatch = "binding_mismatch"
	ErrorCodeUnauthorized    = "unauthorized"
	ErrorCodeTokenInvalid    = "token_invalid"
	ErrorCodeUpstreamFailed  = "upstream_failed"
	ErrorCodeAlreadyRedeemed = "already_redeemed"
	ErrorCodeRateLimited     = "rate_limit_exceeded"
	ErrorCodeServerError     = "server_error"
	ErrorCodePayloadTooLarge = "payload_too_large"
	ErrorCodeInvalidGiftCode = "invalid_gift_code"
	ErrorCodeGiftCodeExpired = "gift_code_expired"
)

// APIError is the JSON error body every linkgate endpoint returns on
// failure. It doubles as the client-side error type.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}
