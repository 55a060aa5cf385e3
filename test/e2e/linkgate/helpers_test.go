package linkgate_test

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	httpapi "github.com/KimDog-Studios/linkgate/internal/linkgate/http"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/service"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/store/drivers/memory"
	"github.com/KimDog-Studios/linkgate/pkg/cryptox"
	"github.com/KimDog-Studios/linkgate/pkg/linksdk"
	"github.com/KimDog-Studios/linkgate/pkg/netguard"
	"github.com/KimDog-Studios/linkgate/pkg/slogx"
)

/*
 * End-to-end tests running the full router in-process: real middleware
 * chain, rate limiting, cookies and JSON bodies, with only the token store
 * backed by memory. Upstream CDN responses come from a local test server
 * whose host is allowlisted per test.
 */

// setupServer starts the service with the given allowlisted download hosts
// and returns a linksdk client whose HTTP client carries a cookie jar, so
// the nonce cookie flows from issuance to redemption like in a browser.
func setupServer(t *testing.T, allowedHosts ...string) (*linksdk.Client, *http.Client) {
	t.Helper()

	logger := slogx.New(slogx.Config{
		Service: "linkgate-e2e",
		Version: "test",
		Env:     "test",
		Level:   "error",
		Format:  "text",
	})

	st := memory.NewStore()
	router := httpapi.NewRouter("test", false, st, nil, logger)
	router.LinkService = &service.LinkService{
		Store:     st,
		Binder:    cryptox.NewBinder([]byte("e2e-binding-secret")),
		Allowlist: netguard.NewAllowlist(allowedHosts...),
	}
	router.ProxyService = &service.ProxyService{
		Guard:    netguard.NewGuard(),
		MainHost: "status.example.com",
	}
	router.GiftService = &service.GiftService{
		Store:  st,
		Secret: []byte("e2e-gift-secret"),
	}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	httpClient := &http.Client{Jar: jar}

	client := linksdk.NewClient(srv.URL)
	client.HTTPClient = httpClient

	return client, httpClient
}

// setupUpstream serves fake CDN content and returns its host for the
// allowlist plus the full file URL.
func setupUpstream(t *testing.T, body string) (host, fileURL string) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv.Listener.Addr().String(), srv.URL + "/files/pack.zip"
}
