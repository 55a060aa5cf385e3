package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/KimDog-Studios/linkgate/internal/linkgate/audit"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/domain"
	"github.com/KimDog-Studios/linkgate/pkg/netguard"
	"github.com/KimDog-Studios/linkgate/pkg/slogx"
)

// Timeout and size bounds for proxied fetches. Requested values are clamped
// rather than rejected.
const (
	MinProxyTimeout = 500 * time.Millisecond
	MaxProxyTimeout = 25 * time.Second

	// DefaultMainTimeout applies to the configured main host, which is
	// trusted to be slower (game server status endpoints behind it).
	DefaultMainTimeout  = 8 * time.Second
	DefaultOtherTimeout = 4 * time.Second

	MinProxyBytes     = 16 << 10 // 16 KiB
	MaxProxyBytes     = 5 << 20  // 5 MiB
	DefaultProxyBytes = 1 << 20  // 1 MiB
)

var (
	ErrInvalidTarget  = errors.New("invalid_target")
	ErrBlockedTarget  = errors.New("blocked_target")
	ErrUpstreamFailed = errors.New("upstream_failed")
	ErrBodyTooLarge   = errors.New("body_too_large")
)

// ProxyService fetches small status payloads from explicitly named hosts on
// behalf of browser clients. Every target host is DNS-resolved and checked
// against private/reserved ranges before any connection is made, and again
// on every redirect hop.
type ProxyService struct {
	Guard    *netguard.Guard
	MainHost string
	Audit    *audit.Recorder

	// Transport overrides the fetch transport, for tests. Nil means
	// http.DefaultTransport.
	Transport http.RoundTripper
}

// ProxyTarget describes one requested fetch, either as a full URL or in
// builder form against the main host.
type ProxyTarget struct {
	// RawURL is the full target (`u` form). When set the builder fields
	// are ignored.
	RawURL string

	// Builder form: proto + host (defaults to MainHost) + port + path.
	Proto string
	Host  string
	Port  int
	Path  string

	// Accept is forwarded as the upstream Accept header; empty means
	// anything.
	Accept string

	// Timeout is the requested per-fetch deadline; zero picks the default
	// for the target host.
	Timeout time.Duration

	// MaxBytes caps the response body; zero picks the default.
	MaxBytes int64
}

// ProxyResult is a successful upstream response. Body is already limited to
// the effective byte cap and must be closed by the caller.
type ProxyResult struct {
	Status        int
	ContentType   string
	ContentLength int64
	Body          io.ReadCloser
}

// buildURL resolves the target into a concrete URL.
func (s *ProxyService) buildURL(t ProxyTarget) (*url.URL, error) {
	if t.RawURL != "" {
		u, err := url.Parse(t.RawURL)
		if err != nil || u.Host == "" {
			return nil, ErrInvalidTarget
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, ErrInvalidTarget
		}
		return u, nil
	}

	proto := strings.ToLower(t.Proto)
	if proto == "" {
		proto = "http"
	}
	if proto != "http" && proto != "https" {
		return nil, ErrInvalidTarget
	}
	if t.Port < 1 || t.Port > 65535 {
		return nil, ErrInvalidTarget
	}

	host := t.Host
	if host == "" {
		host = s.MainHost
	}
	if host == "" {
		return nil, ErrInvalidTarget
	}

	path := t.Path
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u := &url.URL{
		Scheme: proto,
		Host:   fmt.Sprintf("%s:%d", host, t.Port),
		Path:   path,
	}
	return u, nil
}

// effectiveTimeout clamps the requested timeout, defaulting by host.
func (s *ProxyService) effectiveTimeout(requested time.Duration, host string) time.Duration {
	if requested == 0 {
		if s.MainHost != "" && strings.EqualFold(host, s.MainHost) {
			return DefaultMainTimeout
		}
		return DefaultOtherTimeout
	}
	if requested < MinProxyTimeout {
		return MinProxyTimeout
	}
	if requested > MaxProxyTimeout {
		return MaxProxyTimeout
	}
	return requested
}

func effectiveMaxBytes(requested int64) int64 {
	if requested == 0 {
		return DefaultProxyBytes
	}
	if requested < MinProxyBytes {
		return MinProxyBytes
	}
	if requested > MaxProxyBytes {
		return MaxProxyBytes
	}
	return requested
}

// Fetch validates the target, checks it against the address guard and
// performs the upstream GET.
func (s *ProxyService) Fetch(ctx context.Context, t ProxyTarget) (*ProxyResult, error) {
	l := slogx.FromContext(ctx)

	u, err := s.buildURL(t)
	if err != nil {
		return nil, err
	}

	if err := s.Guard.CheckHost(ctx, u.Hostname()); err != nil {
		if errors.Is(err, netguard.ErrBlockedAddress) {
			l.Info("proxy target blocked", slog.String("host", u.Hostname()))
			s.Audit.Record(ctx, domain.AuditProxyBlocked, "", "", "", u.Hostname())
			return nil, ErrBlockedTarget
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}

	timeout := s.effectiveTimeout(t.Timeout, u.Hostname())
	maxBytes := effectiveMaxBytes(t.MaxBytes)

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		cancel()
		return nil, ErrInvalidTarget
	}
	req.Header.Set("User-Agent", "linkgate-proxy/1.0")
	accept := t.Accept
	if accept == "" {
		accept = "*/*"
	}
	req.Header.Set("Accept", accept)

	client := &http.Client{
		Transport: s.Transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("too many redirects")
			}
			// Redirects can point anywhere; re-run the guard per hop.
			return s.Guard.CheckHost(req.Context(), req.URL.Hostname())
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		cancel()
		if errors.Is(err, netguard.ErrBlockedAddress) {
			s.Audit.Record(ctx, domain.AuditProxyBlocked, "", "", "", u.Hostname())
			return nil, ErrBlockedTarget
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}

	if resp.ContentLength > maxBytes {
		resp.Body.Close()
		cancel()
		return nil, ErrBodyTooLarge
	}

	// The limit also applies when upstream omits Content-Length.
	body := &cancelOnClose{
		ReadCloser: struct {
			io.Reader
			io.Closer
		}{io.LimitReader(resp.Body, maxBytes), resp.Body},
		cancel: cancel,
	}

	return &ProxyResult{
		Status:        resp.StatusCode,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Body:          body,
	}, nil
}

// cancelOnClose releases the fetch deadline when the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
