package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/KimDog-Studios/linkgate/internal/linkgate/domain"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/store/drivers/memory"
)

func newGiftService(t *testing.T) *GiftService {
	t.Helper()
	return &GiftService{
		Store:  memory.NewStore(),
		Secret: []byte("gift-signing-secret"),
	}
}

func TestGiftMint(t *testing.T) {
	ctx := context.Background()

	t.Run("mints a signed code", func(t *testing.T) {
		svc := newGiftService(t)

		signed, code, err := svc.Mint(ctx, MintParams{Tier: "gold", Recipient: "someone"})
		require.NoError(t, err)
		require.NotEmpty(t, signed)
		require.NotEmpty(t, code.ID)
		require.Equal(t, "gold", code.Tier)
		require.WithinDuration(t, time.Now().Add(domain.DefaultGiftTTL), code.ExpiresAt, 2*time.Second)
	})

	t.Run("clamps ttl", func(t *testing.T) {
		svc := newGiftService(t)

		_, code, err := svc.Mint(ctx, MintParams{Tier: "gold", TTL: time.Minute})
		require.NoError(t, err)
		require.WithinDuration(t, time.Now().Add(domain.MinGiftTTL), code.ExpiresAt, 2*time.Second)

		_, code, err = svc.Mint(ctx, MintParams{Tier: "gold", TTL: 365 * 24 * time.Hour})
		require.NoError(t, err)
		require.WithinDuration(t, time.Now().Add(domain.MaxGiftTTL), code.ExpiresAt, 2*time.Second)
	})

	t.Run("requires a tier", func(t *testing.T) {
		svc := newGiftService(t)

		_, _, err := svc.Mint(ctx, MintParams{})
		require.ErrorIs(t, err, ErrInvalidGiftCode)
	})
}

func TestGiftRedeem(t *testing.T) {
	ctx := context.Background()

	t.Run("redeems exactly once", func(t *testing.T) {
		svc := newGiftService(t)

		signed, minted, err := svc.Mint(ctx, MintParams{Tier: "gold"})
		require.NoError(t, err)

		code, err := svc.Redeem(ctx, signed)
		require.NoError(t, err)
		require.Equal(t, minted.ID, code.ID)
		require.Equal(t, "gold", code.Tier)

		_, err = svc.Redeem(ctx, signed)
		require.ErrorIs(t, err, ErrGiftCodeRedeemed)
	})

	t.Run("rejects tampered codes", func(t *testing.T) {
		svc := newGiftService(t)

		signed, _, err := svc.Mint(ctx, MintParams{Tier: "gold"})
		require.NoError(t, err)

		_, err = svc.Redeem(ctx, signed+"x")
		require.ErrorIs(t, err, ErrInvalidGiftCode)

		_, err = svc.Redeem(ctx, "not-a-code")
		require.ErrorIs(t, err, ErrInvalidGiftCode)
	})

	t.Run("rejects codes signed with a different secret", func(t *testing.T) {
		other := &GiftService{Store: memory.NewStore(), Secret: []byte("other-secret")}
		signed, _, err := other.Mint(ctx, MintParams{Tier: "gold"})
		require.NoError(t, err)

		svc := newGiftService(t)
		_, err = svc.Redeem(ctx, signed)
		require.ErrorIs(t, err, ErrInvalidGiftCode)
	})

	t.Run("rejects expired codes", func(t *testing.T) {
		svc := newGiftService(t)

		claims := giftClaims{
			Tier: "gold",
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "expired-id",
				Issuer:    giftIssuer,
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.Secret)
		require.NoError(t, err)

		_, err = svc.Redeem(ctx, signed)
		require.ErrorIs(t, err, ErrGiftCodeExpired)
	})

	t.Run("rejects wrong signing algorithm", func(t *testing.T) {
		svc := newGiftService(t)

		claims := giftClaims{
			Tier: "gold",
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "alg-test",
				Issuer:    giftIssuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Redeem(ctx, signed)
		require.ErrorIs(t, err, ErrInvalidGiftCode)
	})
}
