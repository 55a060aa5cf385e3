// Package redis is the distributed store driver. Token consumption maps to
// GETDEL so the single-use guarantee holds across horizontally scaled
// instances; expiry rides on native key TTLs instead of sweeping.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KimDog-Studios/linkgate/internal/linkgate/domain"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/store"
	"github.com/redis/go-redis/v9"
)

const (
	tokenKeyPrefix = "linkgate:dltoken:"
	giftKeyPrefix  = "linkgate:gift:redeemed:"
)

type Store struct {
	client *redis.Client
}

// NewStore connects to the given redis address and verifies it responds.
func NewStore(ctx context.Context, addr, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis store: ping %s: %w", addr, err)
	}

	return &Store{client: client}, nil
}

func (s *Store) DownloadTokens() store.DownloadTokens   { return &tokensRepo{client: s.client} }
func (s *Store) GiftRedemptions() store.GiftRedemptions { return &giftsRepo{client: s.client} }

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// tokenRecord is the JSON wire form of a download token in redis.
type tokenRecord struct {
	Token       string    `json:"token"`
	Href        string    `json:"href"`
	ID          string    `json:"id,omitempty"`
	Type        string    `json:"type,omitempty"`
	Title       string    `json:"title,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	IPHash      string    `json:"ip_hash"`
	UAHash      string    `json:"ua_hash"`
	ClientNonce string    `json:"client_nonce"`
}

func toRecord(t domain.DownloadToken) tokenRecord {
	return tokenRecord{
		Token:       t.Token,
		Href:        t.Href,
		ID:          t.ID,
		Type:        t.Type,
		Title:       t.Title,
		CreatedAt:   t.CreatedAt,
		ExpiresAt:   t.ExpiresAt,
		IPHash:      t.IPHash,
		UAHash:      t.UAHash,
		ClientNonce: t.ClientNonce,
	}
}

func (r tokenRecord) toDomain() domain.DownloadToken {
	return domain.DownloadToken{
		Token:       r.Token,
		Href:        r.Href,
		ID:          r.ID,
		Type:        r.Type,
		Title:       r.Title,
		CreatedAt:   r.CreatedAt,
		ExpiresAt:   r.ExpiresAt,
		IPHash:      r.IPHash,
		UAHash:      r.UAHash,
		ClientNonce: r.ClientNonce,
	}
}

type tokensRepo struct {
	client *redis.Client
}

func (r *tokensRepo) Create(ctx context.Context, t domain.DownloadToken) error {
	data, err := json.Marshal(toRecord(t))
	if err != nil {
		return fmt.Errorf("redis store: marshal token: %w", err)
	}

	// Give the key a little slack past logical expiry so an expired record
	// still produces a clean "expired" rather than "not found" right at
	// the boundary.
	ttl := time.Until(t.ExpiresAt) + 5*time.Second
	if ttl <= 0 {
		ttl = time.Second
	}

	return r.client.Set(ctx, tokenKeyPrefix+t.Token, data, ttl).Err()
}

func (r *tokensRepo) Get(ctx context.Context, token string) (domain.DownloadToken, error) {
	data, err := r.client.Get(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		return domain.DownloadToken{}, mapNil(err)
	}
	return unmarshalToken(data)
}

func (r *tokensRepo) Consume(ctx context.Context, token string) (domain.DownloadToken, error) {
	// GETDEL is atomic across instances: exactly one caller receives the
	// record, every other racer gets redis.Nil.
	data, err := r.client.GetDel(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		return domain.DownloadToken{}, mapNil(err)
	}

	rec, err := unmarshalToken(data)
	if err != nil {
		return domain.DownloadToken{}, err
	}

	now := time.Now().UTC()
	rec.UsedAt = &now
	rec.GraceUntil = &now
	return rec, nil
}

func (r *tokensRepo) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, tokenKeyPrefix+token).Err()
}

// DeleteExpired is a no-op: redis drops keys via native TTL.
func (r *tokensRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

type giftsRepo struct {
	client *redis.Client
}

func (r *giftsRepo) MarkRedeemed(ctx context.Context, id string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}

	ok, err := r.client.SetNX(ctx, giftKeyPrefix+id, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return fmt.Errorf("redis store: mark redeemed: %w", err)
	}
	if !ok {
		return store.ErrAlreadyRedeemed
	}
	return nil
}

// DeleteExpired is a no-op: redemption markers carry their own TTL.
func (r *giftsRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

func unmarshalToken(data string) (domain.DownloadToken, error) {
	var rec tokenRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return domain.DownloadToken{}, fmt.Errorf("redis store: unmarshal token: %w", err)
	}
	return rec.toDomain(), nil
}

func mapNil(err error) error {
	if errors.Is(err, redis.Nil) {
		return store.ErrNotFound
	}
	return err
}
