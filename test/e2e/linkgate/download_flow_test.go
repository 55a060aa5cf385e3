package linkgate_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KimDog-Studios/linkgate/pkg/linksdk"
)

// TestDownloadFlow exercises the happy path: issue a one-time link with a
// bound nonce, redeem it once, and verify the replay is refused.
func TestDownloadFlow(t *testing.T) {
	cdnHost, fileURL := setupUpstream(t, "zip-bytes")
	client, httpClient := setupServer(t, cdnHost)

	issued, err := client.IssueLink(context.Background(), linksdk.IssueLinkRequest{
		Href:  fileURL,
		Title: "Example Pack",
		Bind:  linksdk.LinkBinding{ClientNonce: "e2e-nonce-1"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, issued.OneTimeURL)

	resp, err := httpClient.Get(client.BaseURL + issued.OneTimeURL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, `attachment; filename="pack.zip"`, resp.Header.Get("Content-Disposition"))
	require.Equal(t, "no-store, private", resp.Header.Get("Cache-Control"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "zip-bytes", string(body))

	// Same URL, same client: the token is gone.
	replay, err := httpClient.Get(client.BaseURL + issued.OneTimeURL)
	require.NoError(t, err)
	defer replay.Body.Close()
	require.Equal(t, http.StatusGone, replay.StatusCode)
}

// TestDownloadLinkTheft simulates a leaked one-time URL being opened by a
// different client: the redemption fails and the token is burned for the
// original holder too.
func TestDownloadLinkTheft(t *testing.T) {
	cdnHost, fileURL := setupUpstream(t, "zip-bytes")
	client, httpClient := setupServer(t, cdnHost)

	issued, err := client.IssueLink(context.Background(), linksdk.IssueLinkRequest{
		Href: fileURL,
		Bind: linksdk.LinkBinding{ClientNonce: "e2e-nonce-2"},
	})
	require.NoError(t, err)

	// The thief has the URL but not the nonce cookie.
	thief := &http.Client{}
	stolen, err := thief.Get(client.BaseURL + issued.OneTimeURL)
	require.NoError(t, err)
	defer stolen.Body.Close()
	require.Equal(t, http.StatusForbidden, stolen.StatusCode)

	// The rightful holder finds the link dead.
	resp, err := httpClient.Get(client.BaseURL + issued.OneTimeURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusGone, resp.StatusCode)
}

// TestIssueRejectsUnknownHost verifies the allowlist refuses foreign hrefs
// through the full stack.
func TestIssueRejectsUnknownHost(t *testing.T) {
	cdnHost, _ := setupUpstream(t, "x")
	client, _ := setupServer(t, cdnHost)

	_, err := client.IssueLink(context.Background(), linksdk.IssueLinkRequest{
		Href: "https://evil.example.org/payload.zip",
		Bind: linksdk.LinkBinding{ClientNonce: "n"},
	})

	var apiErr *linksdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, linksdk.ErrorCodeDisallowedHost, apiErr.Code)
}
