package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/KimDog-Studios/linkgate/internal/linkgate/service"
	"github.com/KimDog-Studios/linkgate/pkg/httpx"
	"github.com/KimDog-Studios/linkgate/pkg/linksdk"
	"github.com/KimDog-Studios/linkgate/pkg/slogx"
)

// upstreamTimeout bounds the whole upstream download. Generous because the
// files are mod archives, not status payloads.
const upstreamTimeout = 60 * time.Second

const maxFilenameLength = 200

type RedeemHandler struct {
	LinkService *service.LinkService

	// Transport overrides the upstream transport, for tests. Nil means
	// http.DefaultTransport.
	Transport http.RoundTripper
}

// ServeHTTP godoc
//
//	@Summary		Redeem One-Time Download Link
//	@Description	Consume a one-time token and stream the upstream file. The token is revoked before
//	@Description	any upstream request is made, succeeds only from the client it was issued to, and a
//	@Description	binding mismatch burns it permanently.
//	@Tags			Downloads
//	@Produce		octet-stream
//	@Param			token	query	string	true	"One-time download token"
//	@Success		200		"File stream"
//	@Success		206		"Partial file stream"
//	@Failure		400		{object}	linksdk.APIError	"error, error_description"
//	@Failure		403		{object}	linksdk.APIError	"error, error_description"
//	@Failure		410		{object}	linksdk.APIError	"error, error_description"
//	@Failure		502		{object}	linksdk.APIError	"error, error_description"
//	@Router			/api/downloads/redeem [get].
func (h *RedeemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var cookieNonce string
	if c, err := r.Cookie(nonceCookieName); err == nil {
		cookieNonce = c.Value
	}

	rec, err := h.LinkService.Redeem(ctx, service.RedeemParams{
		Token:       r.URL.Query().Get("token"),
		CookieNonce: cookieNonce,
		ClientIP:    httpx.ClientIP(r),
		UserAgent:   r.UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingToken):
			httpx.WriteError(w, http.StatusBadRequest, linksdk.ErrorCodeMissingToken, "token query parameter is required")
		case errors.Is(err, service.ErrTokenNotFound):
			httpx.WriteError(w, http.StatusGone, linksdk.ErrorCodeTokenInvalid, "Link is invalid or has already been used")
		case errors.Is(err, service.ErrTokenExpired):
			httpx.WriteError(w, http.StatusGone, linksdk.ErrorCodeTokenInvalid, "Link has expired")
		case errors.Is(err, service.ErrBindingMismatch):
			httpx.WriteError(w, http.StatusForbidden, linksdk.ErrorCodeBindingMismatch, "Link was issued to a different client")
		case errors.Is(err, service.ErrDisallowedHost):
			httpx.WriteError(w, http.StatusBadRequest, linksdk.ErrorCodeBlockedOrigin, "Download origin is no longer allowed")
		default:
			log.Error("failed to redeem download link", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, linksdk.ErrorCodeServerError, "Failed to redeem link")
		}
		return
	}

	upstreamCtx, cancel := context.WithTimeout(ctx, upstreamTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(upstreamCtx, http.MethodGet, rec.Href, nil)
	if err != nil {
		httpx.WriteError(w, http.StatusBadGateway, linksdk.ErrorCodeUpstreamFailed, "Upstream request failed")
		return
	}
	req.Header.Set("User-Agent", "linkgate-fetch/1.0")
	req.Header.Set("Accept", "*/*")
	// Resumed downloads keep working through the proxy hop.
	if rng := r.Header.Get("Range"); rng != "" {
		req.Header.Set("Range", rng)
	}

	client := &http.Client{Transport: h.Transport}
	resp, err := client.Do(req)
	if err != nil {
		log.Warn("upstream fetch failed", "error", err)
		httpx.WriteError(w, http.StatusBadGateway, linksdk.ErrorCodeUpstreamFailed, "Upstream fetch failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		log.Warn("upstream returned unexpected status", "status", resp.StatusCode)
		httpx.WriteError(w, http.StatusBadGateway, linksdk.ErrorCodeUpstreamFailed, "Upstream returned an error")
		return
	}

	copyHeader(w, resp, "Content-Type")
	copyHeader(w, resp, "Content-Length")
	copyHeader(w, resp, "Content-Range")
	copyHeader(w, resp, "Accept-Ranges")

	w.Header().Set("Content-Disposition", `attachment; filename="`+downloadFilename(rec.Title, rec.Href)+`"`)
	httpx.NoStore(w)
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cross-Origin-Resource-Policy", "same-origin")

	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		// Headers are gone; just note the broken stream.
		log.Debug("download stream interrupted", "error", err)
	}
}

func copyHeader(w http.ResponseWriter, resp *http.Response, name string) {
	if v := resp.Header.Get(name); v != "" {
		w.Header().Set(name, v)
	}
}

// downloadFilename derives a safe attachment filename from the upstream
// URL's basename, falling back to the token's title.
func downloadFilename(title, href string) string {
	var name string
	if u, err := url.Parse(href); err == nil {
		name = sanitizeFilename(path.Base(u.Path))
	}
	if name == "" || name == "." {
		name = sanitizeFilename(title)
	}
	if name == "" || name == "." {
		name = "download"
	}
	return name
}

// sanitizeFilename keeps only [A-Za-z0-9._-], replacing runs of anything
// else with a single underscore, capped at maxFilenameLength.
func sanitizeFilename(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
		if b.Len() >= maxFilenameLength {
			break
		}
	}
	return strings.Trim(b.String(), "_")
}
