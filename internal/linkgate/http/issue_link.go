package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/KimDog-Studios/linkgate/internal/linkgate/service"
	"github.com/KimDog-Studios/linkgate/pkg/httpx"
	"github.com/KimDog-Studios/linkgate/pkg/linksdk"
	"github.com/KimDog-Studios/linkgate/pkg/slogx"
)

// nonceCookieName is the cookie mirroring the client binding nonce. It must
// come back on redemption from the same browser.
const nonceCookieName = "dl_nonce"

const nonceCookieMaxAge = int(time.Hour / time.Second)

type IssueLinkHandler struct {
	LinkService *service.LinkService

	// SecureCookies disables the Secure cookie attribute for local
	// development over plain http.
	SecureCookies bool
}

// ServeHTTP godoc
//
//	@Summary		Issue One-Time Download Link
//	@Description	Mint a single-use download link for an allowlisted upstream file. The link is bound
//	@Description	to the requesting IP, User-Agent and a caller-generated nonce, and expires within
//	@Description	seconds. The nonce is mirrored into an httpOnly cookie that must accompany redemption.
//	@Tags			Downloads
//	@Accept			json
//	@Produce		json
//	@Param			request	body		linksdk.IssueLinkRequest	true	"Issue request"
//	@Success		200		{object}	linksdk.IssueLinkResponse	"oneTimeUrl"
//	@Failure		400		{object}	linksdk.APIError			"error, error_description"
//	@Failure		429		{object}	linksdk.APIError			"error, error_description"
//	@Failure		500		{object}	linksdk.APIError			"error, error_description"
//	@Router			/api/downloads/issue-link [post].
func (h *IssueLinkHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req linksdk.IssueLinkRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, linksdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}
	if req.Href == "" {
		httpx.WriteError(w, http.StatusBadRequest, linksdk.ErrorCodeInvalidRequest, "href is required")
		return
	}

	issued, err := h.LinkService.Issue(ctx, service.IssueParams{
		Href:          req.Href,
		ID:            req.ID,
		Type:          req.Type,
		Title:         req.Title,
		ClientNonce:   req.Bind.ClientNonce,
		MaxAgeSeconds: req.Requirements.MaxAgeSeconds,
		ClientIP:      httpx.ClientIP(r),
		UserAgent:     r.UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidHref):
			httpx.WriteError(w, http.StatusBadRequest, linksdk.ErrorCodeInvalidRequest, "href must be a valid http(s) URL")
		case errors.Is(err, service.ErrDisallowedHost):
			httpx.WriteError(w, http.StatusBadRequest, linksdk.ErrorCodeDisallowedHost, "Download host is not allowed")
		case errors.Is(err, service.ErrMissingNonce):
			httpx.WriteError(w, http.StatusBadRequest, linksdk.ErrorCodeMissingNonce, "bind.clientNonce is required")
		default:
			log.Error("failed to issue download link", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, linksdk.ErrorCodeServerError, "Failed to issue link")
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     nonceCookieName,
		Value:    req.Bind.ClientNonce,
		Path:     "/",
		MaxAge:   nonceCookieMaxAge,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	httpx.WriteJSON(w, http.StatusOK, linksdk.IssueLinkResponse{
		OneTimeURL: "/api/downloads/redeem?token=" + issued.Token,
	})
}
