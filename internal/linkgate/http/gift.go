package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/KimDog-Studios/linkgate/internal/linkgate/service"
	"github.com/KimDog-Studios/linkgate/pkg/cryptox"
	"github.com/KimDog-Studios/linkgate/pkg/httpx"
	"github.com/KimDog-Studios/linkgate/pkg/linksdk"
	"github.com/KimDog-Studios/linkgate/pkg/slogx"
)

type GiftMintHandler struct {
	GiftService *service.GiftService

	// MintKeyHash is the argon2id hash of the operator API key required to
	// mint. Empty leaves minting open, for local development only.
	MintKeyHash string
}

// ServeHTTP godoc
//
//	@Summary		Mint Gift Code
//	@Description	Mint a signed single-use gift code granting a membership tier. The code carries its
//	@Description	own expiry and can be redeemed exactly once.
//	@Tags			Gifts
//	@Accept			json
//	@Produce		json
//	@Param			X-Api-Key	header		string						false	"Operator API key"
//	@Param			request		body		linksdk.MintGiftRequest		true	"Mint request"
//	@Success		200			{object}	linksdk.MintGiftResponse	"code, id, tier, expires_at"
//	@Failure		400			{object}	linksdk.APIError			"error, error_description"
//	@Failure		401			{object}	linksdk.APIError			"error, error_description"
//	@Failure		429			{object}	linksdk.APIError			"error, error_description"
//	@Router			/api/gifts/mint [post].
func (h *GiftMintHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if h.MintKeyHash != "" {
		if err := cryptox.VerifyCode(r.Header.Get("X-Api-Key"), h.MintKeyHash); err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, linksdk.ErrorCodeUnauthorized, "A valid operator API key is required")
			return
		}
	}

	var req linksdk.MintGiftRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, linksdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}
	if req.Tier == "" {
		httpx.WriteError(w, http.StatusBadRequest, linksdk.ErrorCodeInvalidRequest, "tier is required")
		return
	}

	signed, code, err := h.GiftService.Mint(ctx, service.MintParams{
		Tier:      req.Tier,
		Recipient: req.Recipient,
		TTL:       time.Duration(req.TTLHours) * time.Hour,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidGiftCode) {
			httpx.WriteError(w, http.StatusBadRequest, linksdk.ErrorCodeInvalidRequest, "tier is required")
			return
		}
		log.Error("failed to mint gift code", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, linksdk.ErrorCodeServerError, "Failed to mint gift code")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, linksdk.MintGiftResponse{
		Code:      signed,
		ID:        code.ID,
		Tier:      code.Tier,
		ExpiresAt: code.ExpiresAt,
	})
}

type GiftRedeemHandler struct {
	GiftService *service.GiftService
}

// ServeHTTP godoc
//
//	@Summary		Redeem Gift Code
//	@Description	Verify and consume a signed gift code. A code can only be redeemed once; replays
//	@Description	return 410.
//	@Tags			Gifts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		linksdk.RedeemGiftRequest	true	"Redeem request"
//	@Success		200		{object}	linksdk.RedeemGiftResponse	"id, tier, recipient, expires_at"
//	@Failure		400		{object}	linksdk.APIError			"error, error_description"
//	@Failure		410		{object}	linksdk.APIError			"error, error_description"
//	@Router			/api/gifts/redeem [post].
func (h *GiftRedeemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req linksdk.RedeemGiftRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, linksdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}
	if req.Code == "" {
		httpx.WriteError(w, http.StatusBadRequest, linksdk.ErrorCodeInvalidRequest, "code is required")
		return
	}

	code, err := h.GiftService.Redeem(ctx, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidGiftCode):
			httpx.WriteError(w, http.StatusBadRequest, linksdk.ErrorCodeInvalidGiftCode, "Gift code is not valid")
		case errors.Is(err, service.ErrGiftCodeExpired):
			httpx.WriteError(w, http.StatusGone, linksdk.ErrorCodeGiftCodeExpired, "Gift code has expired")
		case errors.Is(err, service.ErrGiftCodeRedeemed):
			httpx.WriteError(w, http.StatusGone, linksdk.ErrorCodeAlreadyRedeemed, "Gift code has already been redeemed")
		default:
			log.Error("failed to redeem gift code", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, linksdk.ErrorCodeServerError, "Failed to redeem gift code")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, linksdk.RedeemGiftResponse{
		ID:        code.ID,
		Tier:      code.Tier,
		Recipient: code.Recipient,
		ExpiresAt: code.ExpiresAt,
	})
}
