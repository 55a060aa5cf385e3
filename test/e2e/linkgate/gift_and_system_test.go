package linkgate_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KimDog-Studios/linkgate/pkg/linksdk"
)

// TestGiftFlow mints a gift code and redeems it exactly once through the
// full stack.
func TestGiftFlow(t *testing.T) {
	client, _ := setupServer(t, "cdn.example.com")

	minted, err := client.MintGift(context.Background(), linksdk.MintGiftRequest{
		Tier:      "gold",
		Recipient: "someone",
	})
	require.NoError(t, err)
	require.NotEmpty(t, minted.Code)

	redeemed, err := client.RedeemGift(context.Background(), linksdk.RedeemGiftRequest{Code: minted.Code})
	require.NoError(t, err)
	require.Equal(t, minted.ID, redeemed.ID)
	require.Equal(t, "gold", redeemed.Tier)

	_, err = client.RedeemGift(context.Background(), linksdk.RedeemGiftRequest{Code: minted.Code})
	var apiErr *linksdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusGone, apiErr.StatusCode)
	require.Equal(t, linksdk.ErrorCodeAlreadyRedeemed, apiErr.Code)
}

// TestProxyGuardsLoopback verifies the proxy refuses to fetch loopback
// targets end to end, quietly by default and verbosely with q=0.
func TestProxyGuardsLoopback(t *testing.T) {
	client, httpClient := setupServer(t, "cdn.example.com")

	resp, err := httpClient.Get(client.BaseURL + "/api/proxy?u=http://127.0.0.1:6379/")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = httpClient.Get(client.BaseURL + "/api/proxy?u=http://127.0.0.1:6379/&q=0")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// TestHealthEndpoints checks livez and readyz through the middleware chain.
func TestHealthEndpoints(t *testing.T) {
	client, httpClient := setupServer(t, "cdn.example.com")

	resp, err := httpClient.Get(client.BaseURL + "/livez")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	health, err := client.Ready(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "ok", health.Checks["token_store"])
}
