package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/KimDog-Studios/linkgate/internal/linkgate/service"
	"github.com/KimDog-Studios/linkgate/pkg/httpx"
	"github.com/KimDog-Studios/linkgate/pkg/linksdk"
	"github.com/KimDog-Studios/linkgate/pkg/slogx"
)

type ProxyHandler struct {
	ProxyService *service.ProxyService
}

// ServeHTTP godoc
//
//	@Summary		Status Proxy Endpoint
//	@Description	Fetch a small status payload from an explicit upstream on behalf of a browser
//	@Description	client. Accepts either a full URL (u) or a builder form (p, path, proto) against
//	@Description	the configured main host. Targets resolving to private or reserved addresses are
//	@Description	refused. By default failures return an empty 204 so status widgets degrade quietly;
//	@Description	pass q=0 for verbose errors.
//	@Tags			Proxy
//	@Produce		json
//	@Param			u		query	string	false	"Full target URL (http/https)"
//	@Param			p		query	int		false	"Target port (builder form)"
//	@Param			path	query	string	false	"Target path (builder form)"
//	@Param			proto	query	string	false	"Target protocol, http or https (builder form)"
//	@Param			a		query	string	false	"Accept header forwarded upstream"
//	@Param			t		query	int		false	"Timeout in milliseconds, clamped 500-25000"
//	@Param			max		query	int		false	"Response size cap in bytes, clamped 16KiB-5MiB"
//	@Param			q		query	int		false	"Quiet mode, default 1"
//	@Success		200	"Upstream payload"
//	@Success		204	"Quiet-mode failure"
//	@Failure		400	{object}	linksdk.APIError	"error, error_description"
//	@Failure		413	{object}	linksdk.APIError	"error, error_description"
//	@Failure		502	{object}	linksdk.APIError	"error, error_description"
//	@Router			/api/proxy [get].
func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	q := r.URL.Query()
	quiet := q.Get("q") != "0"

	target := service.ProxyTarget{
		RawURL: q.Get("u"),
		Proto:  q.Get("proto"),
		Path:   q.Get("path"),
		Accept: q.Get("a"),
	}
	if p := q.Get("p"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			h.fail(w, quiet, http.StatusBadRequest, linksdk.ErrorCodeInvalidRequest, "p must be a port number")
			return
		}
		target.Port = port
	}
	if t := q.Get("t"); t != "" {
		ms, err := strconv.Atoi(t)
		if err != nil || ms < 0 {
			h.fail(w, quiet, http.StatusBadRequest, linksdk.ErrorCodeInvalidRequest, "t must be milliseconds")
			return
		}
		target.Timeout = time.Duration(ms) * time.Millisecond
	}
	if m := q.Get("max"); m != "" {
		n, err := strconv.ParseInt(m, 10, 64)
		if err != nil || n < 0 {
			h.fail(w, quiet, http.StatusBadRequest, linksdk.ErrorCodeInvalidRequest, "max must be bytes")
			return
		}
		target.MaxBytes = n
	}
	if target.RawURL == "" && target.Port == 0 {
		h.fail(w, quiet, http.StatusBadRequest, linksdk.ErrorCodeInvalidRequest, "u or p is required")
		return
	}

	res, err := h.ProxyService.Fetch(ctx, target)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTarget):
			h.fail(w, quiet, http.StatusBadRequest, linksdk.ErrorCodeInvalidRequest, "Invalid proxy target")
		case errors.Is(err, service.ErrBlockedTarget):
			h.fail(w, quiet, http.StatusBadRequest, linksdk.ErrorCodeBlockedOrigin, "Target address is not allowed")
		case errors.Is(err, service.ErrBodyTooLarge):
			h.fail(w, quiet, http.StatusRequestEntityTooLarge, linksdk.ErrorCodePayloadTooLarge, "Upstream response exceeds the size cap")
		default:
			log.Debug("proxy fetch failed", "error", err)
			h.fail(w, quiet, http.StatusBadGateway, linksdk.ErrorCodeUpstreamFailed, "Upstream fetch failed")
		}
		return
	}
	defer res.Body.Close()

	// An upstream error status is a proxy-side failure like any other:
	// swallowed in quiet mode, reported as a bad gateway otherwise.
	if res.Status < http.StatusOK || res.Status >= http.StatusMultipleChoices {
		log.Debug("proxy upstream returned error status", "status", res.Status)
		h.fail(w, quiet, http.StatusBadGateway, linksdk.ErrorCodeUpstreamFailed,
			"Upstream returned status "+strconv.Itoa(res.Status))
		return
	}

	if res.ContentType != "" {
		w.Header().Set("Content-Type", res.ContentType)
	}
	httpx.NoStore(w)
	w.WriteHeader(res.Status)
	if _, err := io.Copy(w, res.Body); err != nil {
		log.Debug("proxy stream interrupted", "error", err)
	}
}

// fail writes either an empty 204 (quiet mode) or a verbose JSON error.
func (h *ProxyHandler) fail(w http.ResponseWriter, quiet bool, code int, errCode, description string) {
	if quiet {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httpx.WriteError(w, code, errCode, description)
}
