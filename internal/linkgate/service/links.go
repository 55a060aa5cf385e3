package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/KimDog-Studios/linkgate/internal/linkgate/audit"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/domain"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/store"
	"github.com/KimDog-Studios/linkgate/pkg/cryptox"
	"github.com/KimDog-Studios/linkgate/pkg/netguard"
	"github.com/KimDog-Studios/linkgate/pkg/slogx"
)

// sweepInterval throttles the opportunistic expiry sweep that runs on
// redemption. The housekeeping loop is the real cleaner; this keeps the
// live set tidy between runs without a store scan per request.
const sweepInterval = 30 * time.Second

var (
	ErrInvalidHref     = errors.New("invalid_href")
	ErrDisallowedHost  = errors.New("disallowed_host")
	ErrMissingNonce    = errors.New("missing_nonce")
	ErrMissingToken    = errors.New("missing_token")
	ErrTokenNotFound   = errors.New("token_not_found")
	ErrTokenExpired    = errors.New("token_expired")
	ErrBindingMismatch = errors.New("binding_mismatch")
)

// LinkService mints and redeems one-time download tokens. Every minted
// token is bound to the requesting IP, User-Agent and a client nonce;
// redemption verifies all three and burns the token regardless of outcome.
type LinkService struct {
	Store     store.Store
	Binder    *cryptox.Binder
	Allowlist *netguard.Allowlist
	Audit     *audit.Recorder

	sweepMu   sync.Mutex
	lastSweep time.Time
}

// IssueParams carries one issuance request.
type IssueParams struct {
	Href  string
	ID    string
	Type  string
	Title string

	// ClientNonce is the caller-generated binding nonce; issuance fails
	// without one.
	ClientNonce string

	// MaxAgeSeconds is the requested validity, clamped into the allowed
	// range. Nil means the caller did not ask and gets the default; an
	// explicit zero clamps to the minimum.
	MaxAgeSeconds *int

	// ClientIP and UserAgent identify the issuing request. They are
	// fingerprinted immediately and never stored raw.
	ClientIP  string
	UserAgent string
}

// IssuedLink is the result of a successful issuance.
type IssuedLink struct {
	Token     string
	ExpiresAt time.Time
}

// Issue validates the target, binds the request identity and stores a
// single-use token for it.
func (s *LinkService) Issue(ctx context.Context, p IssueParams) (*IssuedLink, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	u, err := url.Parse(p.Href)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, ErrInvalidHref
	}
	if !s.Allowlist.AllowsHref(p.Href) {
		l.Info("issuance refused for disallowed host", slog.String("host", u.Host))
		return nil, ErrDisallowedHost
	}
	if p.ClientNonce == "" {
		return nil, ErrMissingNonce
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	ttl := domain.ResolveTTL(p.MaxAgeSeconds)
	rec := domain.DownloadToken{
		Token:       token,
		Href:        p.Href,
		ID:          p.ID,
		Type:        p.Type,
		Title:       p.Title,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
		IPHash:      s.Binder.Fingerprint(p.ClientIP),
		UAHash:      s.Binder.Fingerprint(p.UserAgent),
		ClientNonce: p.ClientNonce,
	}

	if err := s.Store.DownloadTokens().Create(ctx, rec); err != nil {
		return nil, err
	}

	s.Audit.Record(ctx, domain.AuditLinkIssued,
		cryptox.FingerprintToken(token), rec.IPHash, rec.UAHash, u.Host)

	l.Info("issued one-time download link",
		slog.String("host", u.Host),
		slog.Int64("ttl_ms", ttl.Milliseconds()),
	)

	return &IssuedLink{Token: token, ExpiresAt: rec.ExpiresAt}, nil
}

// RedeemParams carries one redemption attempt.
type RedeemParams struct {
	Token string

	// CookieNonce is the nonce echoed back via the dl_nonce cookie.
	CookieNonce string

	ClientIP  string
	UserAgent string
}

// Redeem consumes a token and verifies its binding. The consume happens
// first, so a token presented with the wrong identity is burned rather
// than left live for the rightful holder.
func (s *LinkService) Redeem(ctx context.Context, p RedeemParams) (*domain.DownloadToken, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	s.sweepExpired(ctx, now)

	if p.Token == "" {
		return nil, ErrMissingToken
	}

	ipHash := s.Binder.Fingerprint(p.ClientIP)
	uaHash := s.Binder.Fingerprint(p.UserAgent)
	fp := cryptox.FingerprintToken(p.Token)

	rec, err := s.Store.DownloadTokens().Consume(ctx, p.Token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Audit.Record(ctx, domain.AuditRedeemDenied, fp, ipHash, uaHash, "unknown or already used")
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	if rec.Expired(now) {
		s.Audit.Record(ctx, domain.AuditRedeemDenied, fp, ipHash, uaHash, "expired")
		return nil, ErrTokenExpired
	}

	if rec.IPHash != ipHash || rec.UAHash != uaHash || rec.ClientNonce == "" || rec.ClientNonce != p.CookieNonce {
		l.Info("redemption binding mismatch, token burned")
		s.Audit.Record(ctx, domain.AuditRedeemDenied, fp, ipHash, uaHash, "binding mismatch")
		return nil, ErrBindingMismatch
	}

	// The allowlist may have shrunk since issuance; re-check before any
	// upstream fetch.
	if !s.Allowlist.AllowsHref(rec.Href) {
		s.Audit.Record(ctx, domain.AuditRedeemDenied, fp, ipHash, uaHash, "host no longer allowed")
		return nil, ErrDisallowedHost
	}

	s.Audit.Record(ctx, domain.AuditLinkRedeemed, fp, ipHash, uaHash, "")
	return &rec, nil
}

// sweepExpired drops expired tokens at most once per sweepInterval.
func (s *LinkService) sweepExpired(ctx context.Context, now time.Time) {
	s.sweepMu.Lock()
	if now.Sub(s.lastSweep) < sweepInterval {
		s.sweepMu.Unlock()
		return
	}
	s.lastSweep = now
	s.sweepMu.Unlock()

	if n, err := s.Store.DownloadTokens().DeleteExpired(ctx, now); err != nil {
		slogx.FromContext(ctx).Warn("expiry sweep failed", slog.Any("error", err))
	} else if n > 0 {
		slogx.FromContext(ctx).Debug("expiry sweep removed tokens", slog.Int("count", n))
	}
}
