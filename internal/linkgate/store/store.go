package store

import (
	"context"
	"errors"
	"time"

	"github.com/KimDog-Studios/linkgate/internal/linkgate/domain"
)

var (
	ErrNotFound        = errors.New("store: not found")
	ErrAlreadyRedeemed = errors.New("store: already redeemed")
)

// Store is the root data access interface for live token state. Concrete
// drivers (memory, redis) implement this. The interface is deliberately
// small so the in-process map and a distributed store stay interchangeable;
// the single-use guarantee lives entirely behind Consume.
type Store interface {
	DownloadTokens() DownloadTokens
	GiftRedemptions() GiftRedemptions

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}

type DownloadTokens interface {
	// Create inserts a token record, overwriting by token key.
	Create(ctx context.Context, t domain.DownloadToken) error

	// Get looks up a record without side effects. Returns ErrNotFound for
	// missing tokens; callers treat that as an authorization failure.
	Get(ctx context.Context, token string) (domain.DownloadToken, error)

	// Consume atomically removes and returns the record. This is the
	// single-use boundary: across racing requests for the same token,
	// exactly one caller gets the record and every other gets
	// ErrNotFound. The returned copy has UsedAt/GraceUntil set.
	Consume(ctx context.Context, token string) (domain.DownloadToken, error)

	// Delete unconditionally removes a record. Missing tokens are not an
	// error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes all records past expiry (and grace) as of now,
	// returning how many were dropped. Drivers with native TTL may
	// implement this as a no-op.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type GiftRedemptions interface {
	// MarkRedeemed records a gift code ID as consumed. Returns
	// ErrAlreadyRedeemed when the ID is already in the redeemed set. The
	// marker is retained until expiresAt, after which signature expiry
	// makes the code unusable anyway.
	MarkRedeemed(ctx context.Context, id string, expiresAt time.Time) error

	// DeleteExpired drops redemption markers whose retention has lapsed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
