package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KimDog-Studios/linkgate/internal/linkgate/domain"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/store"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/store/drivers/memory"
	"github.com/KimDog-Studios/linkgate/pkg/cryptox"
	"github.com/KimDog-Studios/linkgate/pkg/netguard"
)

const testHost = "cdn.example.com"

func seconds(n int) *int { return &n }

func newLinkService(t *testing.T) *LinkService {
	t.Helper()
	return &LinkService{
		Store:     memory.NewStore(),
		Binder:    cryptox.NewBinder([]byte("test-binding-secret")),
		Allowlist: netguard.NewAllowlist(testHost),
	}
}

func issueParams() IssueParams {
	return IssueParams{
		Href:        "https://" + testHost + "/files/mod-pack.zip",
		ID:          "mod-42",
		Type:        "mod",
		Title:       "Example Mod Pack",
		ClientNonce: "nonce-abc",
		ClientIP:    "203.0.113.9",
		UserAgent:   "Mozilla/5.0 test",
	}
}

func TestLinkServiceIssue(t *testing.T) {
	ctx := context.Background()

	t.Run("mints a bound single-use token", func(t *testing.T) {
		svc := newLinkService(t)

		issued, err := svc.Issue(ctx, issueParams())
		require.NoError(t, err)
		require.NotEmpty(t, issued.Token)
		require.GreaterOrEqual(t, len(issued.Token), 43)

		rec, err := svc.Store.DownloadTokens().Get(ctx, issued.Token)
		require.NoError(t, err)
		require.Equal(t, "nonce-abc", rec.ClientNonce)
		require.NotEmpty(t, rec.IPHash)
		require.NotEmpty(t, rec.UAHash)
		require.NotContains(t, rec.IPHash, "203.0.113.9")
		require.WithinDuration(t, time.Now().Add(domain.DefaultTokenTTL), rec.ExpiresAt, 2*time.Second)
	})

	t.Run("clamps requested ttl", func(t *testing.T) {
		svc := newLinkService(t)

		p := issueParams()
		p.MaxAgeSeconds = seconds(3600)
		issued, err := svc.Issue(ctx, p)
		require.NoError(t, err)
		require.WithinDuration(t, time.Now().Add(domain.MaxTokenTTL), issued.ExpiresAt, 2*time.Second)

		p.MaxAgeSeconds = seconds(1)
		issued, err = svc.Issue(ctx, p)
		require.NoError(t, err)
		require.WithinDuration(t, time.Now().Add(domain.MinTokenTTL), issued.ExpiresAt, 2*time.Second)
	})

	t.Run("explicit zero ttl clamps to the minimum, not the default", func(t *testing.T) {
		svc := newLinkService(t)

		p := issueParams()
		p.MaxAgeSeconds = seconds(0)
		issued, err := svc.Issue(ctx, p)
		require.NoError(t, err)
		require.WithinDuration(t, time.Now().Add(domain.MinTokenTTL), issued.ExpiresAt, 2*time.Second)
	})

	t.Run("rejects disallowed host", func(t *testing.T) {
		svc := newLinkService(t)

		p := issueParams()
		p.Href = "https://evil.example.org/payload.zip"
		_, err := svc.Issue(ctx, p)
		require.ErrorIs(t, err, ErrDisallowedHost)
	})

	t.Run("rejects non-http schemes and malformed hrefs", func(t *testing.T) {
		svc := newLinkService(t)

		for _, href := range []string{
			"file:///etc/passwd",
			"ftp://" + testHost + "/file.zip",
			"not a url",
			"",
		} {
			p := issueParams()
			p.Href = href
			_, err := svc.Issue(ctx, p)
			require.Error(t, err, "href %q", href)
		}
	})

	t.Run("requires a client nonce", func(t *testing.T) {
		svc := newLinkService(t)

		p := issueParams()
		p.ClientNonce = ""
		_, err := svc.Issue(ctx, p)
		require.ErrorIs(t, err, ErrMissingNonce)
	})
}

func TestLinkServiceRedeem(t *testing.T) {
	ctx := context.Background()

	issue := func(t *testing.T, svc *LinkService) (string, IssueParams) {
		t.Helper()
		p := issueParams()
		issued, err := svc.Issue(ctx, p)
		require.NoError(t, err)
		return issued.Token, p
	}

	redeemParams := func(token string, p IssueParams) RedeemParams {
		return RedeemParams{
			Token:       token,
			CookieNonce: p.ClientNonce,
			ClientIP:    p.ClientIP,
			UserAgent:   p.UserAgent,
		}
	}

	t.Run("succeeds exactly once with matching binding", func(t *testing.T) {
		svc := newLinkService(t)
		token, p := issue(t, svc)

		rec, err := svc.Redeem(ctx, redeemParams(token, p))
		require.NoError(t, err)
		require.Equal(t, p.Href, rec.Href)
		require.NotNil(t, rec.UsedAt)

		_, err = svc.Redeem(ctx, redeemParams(token, p))
		require.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("rejects empty token", func(t *testing.T) {
		svc := newLinkService(t)

		_, err := svc.Redeem(ctx, RedeemParams{})
		require.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("burns token on ip mismatch", func(t *testing.T) {
		svc := newLinkService(t)
		token, p := issue(t, svc)

		rp := redeemParams(token, p)
		rp.ClientIP = "198.51.100.77"
		_, err := svc.Redeem(ctx, rp)
		require.ErrorIs(t, err, ErrBindingMismatch)

		// The mismatch must have consumed the token; the rightful holder
		// gets nothing either.
		_, err = svc.Redeem(ctx, redeemParams(token, p))
		require.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("burns token on user agent mismatch", func(t *testing.T) {
		svc := newLinkService(t)
		token, p := issue(t, svc)

		rp := redeemParams(token, p)
		rp.UserAgent = "curl/8.0"
		_, err := svc.Redeem(ctx, rp)
		require.ErrorIs(t, err, ErrBindingMismatch)
	})

	t.Run("burns token on nonce mismatch or missing cookie", func(t *testing.T) {
		svc := newLinkService(t)

		token, p := issue(t, svc)
		rp := redeemParams(token, p)
		rp.CookieNonce = "someone-elses-nonce"
		_, err := svc.Redeem(ctx, rp)
		require.ErrorIs(t, err, ErrBindingMismatch)

		token, p = issue(t, svc)
		rp = redeemParams(token, p)
		rp.CookieNonce = ""
		_, err = svc.Redeem(ctx, rp)
		require.ErrorIs(t, err, ErrBindingMismatch)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		svc := newLinkService(t)
		token, p := issue(t, svc)

		// Rewrite the stored record with an expiry in the past.
		rec, err := svc.Store.DownloadTokens().Get(ctx, token)
		require.NoError(t, err)
		rec.ExpiresAt = time.Now().Add(-time.Minute)
		require.NoError(t, svc.Store.DownloadTokens().Create(ctx, rec))

		// Hold off the opportunistic sweep so the expiry path itself is
		// exercised rather than the cleanup.
		svc.lastSweep = time.Now()

		_, err = svc.Redeem(ctx, redeemParams(token, p))
		require.ErrorIs(t, err, ErrTokenExpired)

		_, err = svc.Redeem(ctx, redeemParams(token, p))
		require.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("re-checks allowlist at redemption", func(t *testing.T) {
		svc := newLinkService(t)
		token, p := issue(t, svc)

		svc.Allowlist = netguard.NewAllowlist("other.example.com")
		_, err := svc.Redeem(ctx, redeemParams(token, p))
		require.ErrorIs(t, err, ErrDisallowedHost)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc := newLinkService(t)

		_, err := svc.Redeem(ctx, RedeemParams{Token: "never-issued", CookieNonce: "n"})
		require.ErrorIs(t, err, ErrTokenNotFound)
	})
}

func TestLinkServiceSweep(t *testing.T) {
	ctx := context.Background()

	seedExpired := func(t *testing.T, svc *LinkService, token string) {
		t.Helper()
		require.NoError(t, svc.Store.DownloadTokens().Create(ctx, domain.DownloadToken{
			Token:     token,
			Href:      "https://" + testHost + "/old.zip",
			CreatedAt: time.Now().Add(-time.Hour),
			ExpiresAt: time.Now().Add(-time.Hour),
		}))
	}

	t.Run("removes expired tokens on redemption", func(t *testing.T) {
		svc := newLinkService(t)
		seedExpired(t, svc, "expired-token")

		// Any redemption attempt triggers the first sweep.
		_, err := svc.Redeem(ctx, RedeemParams{Token: "whatever", CookieNonce: "n"})
		require.ErrorIs(t, err, ErrTokenNotFound)

		_, err = svc.Store.DownloadTokens().Get(ctx, "expired-token")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("runs at most once per interval", func(t *testing.T) {
		svc := newLinkService(t)
		seedExpired(t, svc, "expired-1")

		_, err := svc.Redeem(ctx, RedeemParams{Token: "whatever", CookieNonce: "n"})
		require.ErrorIs(t, err, ErrTokenNotFound)
		_, err = svc.Store.DownloadTokens().Get(ctx, "expired-1")
		require.ErrorIs(t, err, store.ErrNotFound)

		// A record expiring after the first sweep must survive repeated
		// redemptions inside the throttle window.
		seedExpired(t, svc, "expired-2")
		for i := 0; i < 3; i++ {
			_, err = svc.Redeem(ctx, RedeemParams{Token: "whatever", CookieNonce: "n"})
			require.ErrorIs(t, err, ErrTokenNotFound)
		}
		_, err = svc.Store.DownloadTokens().Get(ctx, "expired-2")
		require.NoError(t, err)

		// Once the window lapses the next redemption sweeps it.
		svc.lastSweep = time.Now().Add(-sweepInterval)
		_, err = svc.Redeem(ctx, RedeemParams{Token: "whatever", CookieNonce: "n"})
		require.ErrorIs(t, err, ErrTokenNotFound)
		_, err = svc.Store.DownloadTokens().Get(ctx, "expired-2")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
