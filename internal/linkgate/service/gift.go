package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/KimDog-Studios/linkgate/internal/linkgate/audit"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/domain"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/store"
	"github.com/KimDog-Studios/linkgate/pkg/cryptox"
	"github.com/KimDog-Studios/linkgate/pkg/idx"
	"github.com/KimDog-Studios/linkgate/pkg/slogx"
)

const giftIssuer = "linkgate"

var (
	ErrInvalidGiftCode  = errors.New("invalid_gift_code")
	ErrGiftCodeExpired  = errors.New("gift_code_expired")
	ErrGiftCodeRedeemed = errors.New("already_redeemed")
)

// giftClaims is the signed payload of a gift code.
type giftClaims struct {
	Tier      string `json:"tier"`
	Recipient string `json:"rcpt,omitempty"`
	jwt.RegisteredClaims
}

// GiftService mints and redeems signed single-use gift codes. The code
// itself carries all claims under an HS256 signature; the store only tracks
// which code IDs have already been consumed.
type GiftService struct {
	Store  store.Store
	Secret []byte
	Audit  *audit.Recorder
}

// MintParams carries one gift mint request.
type MintParams struct {
	Tier      string
	Recipient string

	// TTL is clamped into [MinGiftTTL, MaxGiftTTL]; zero picks the default.
	TTL time.Duration
}

// Mint signs a new gift code.
func (s *GiftService) Mint(ctx context.Context, p MintParams) (string, *domain.GiftCode, error) {
	if p.Tier == "" {
		return "", nil, ErrInvalidGiftCode
	}

	ttl := p.TTL
	switch {
	case ttl == 0:
		ttl = domain.DefaultGiftTTL
	case ttl < domain.MinGiftTTL:
		ttl = domain.MinGiftTTL
	case ttl > domain.MaxGiftTTL:
		ttl = domain.MaxGiftTTL
	}

	now := time.Now().UTC()
	code := domain.GiftCode{
		ID:        idx.New().String(),
		Tier:      p.Tier,
		Recipient: p.Recipient,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	claims := giftClaims{
		Tier:      code.Tier,
		Recipient: code.Recipient,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        code.ID,
			Issuer:    giftIssuer,
			IssuedAt:  jwt.NewNumericDate(code.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(code.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", nil, err
	}

	s.Audit.Record(ctx, domain.AuditGiftMinted, cryptox.FingerprintToken(code.ID), "", "", code.Tier)
	slogx.FromContext(ctx).Info("minted gift code",
		slog.String("tier", code.Tier),
		slog.Time("expires_at", code.ExpiresAt),
	)

	return signed, &code, nil
}

// Redeem verifies a gift code and consumes its ID. A valid signature on an
// already-consumed ID returns ErrGiftCodeRedeemed.
func (s *GiftService) Redeem(ctx context.Context, signed string) (*domain.GiftCode, error) {
	var claims giftClaims

	token, err := jwt.ParseWithClaims(signed, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidGiftCode
		}
		return s.Secret, nil
	}, jwt.WithIssuer(giftIssuer), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrGiftCodeExpired
		}
		return nil, ErrInvalidGiftCode
	}
	if !token.Valid || claims.ID == "" || claims.Tier == "" {
		return nil, ErrInvalidGiftCode
	}

	code := domain.GiftCode{
		ID:        claims.ID,
		Tier:      claims.Tier,
		Recipient: claims.Recipient,
	}
	if claims.IssuedAt != nil {
		code.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		code.ExpiresAt = claims.ExpiresAt.Time
	}

	// The redemption marker outlives the signature so replay stays closed
	// even with clock skew.
	if err := s.Store.GiftRedemptions().MarkRedeemed(ctx, code.ID, code.ExpiresAt.Add(time.Hour)); err != nil {
		if errors.Is(err, store.ErrAlreadyRedeemed) {
			s.Audit.Record(ctx, domain.AuditGiftRedeemed, cryptox.FingerprintToken(code.ID), "", "", "replay denied")
			return nil, ErrGiftCodeRedeemed
		}
		return nil, err
	}

	s.Audit.Record(ctx, domain.AuditGiftRedeemed, cryptox.FingerprintToken(code.ID), "", "", code.Tier)
	return &code, nil
}
