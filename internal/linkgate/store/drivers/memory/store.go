// Package memory is the single-process store driver: mutex-guarded maps.
// Go serves requests on concurrent goroutines, so unlike an event-loop
// runtime the consume path needs an explicit lock to stay atomic.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/KimDog-Studios/linkgate/internal/linkgate/domain"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/store"
)

type Store struct {
	tokens *tokensRepo
	gifts  *giftsRepo
}

func NewStore() *Store {
	return &Store{
		tokens: &tokensRepo{records: make(map[string]domain.DownloadToken)},
		gifts:  &giftsRepo{redeemed: make(map[string]time.Time)},
	}
}

func (s *Store) DownloadTokens() store.DownloadTokens   { return s.tokens }
func (s *Store) GiftRedemptions() store.GiftRedemptions { return s.gifts }

func (s *Store) Close() error                   { return nil }
func (s *Store) Ping(ctx context.Context) error { return nil }

type tokensRepo struct {
	mu      sync.Mutex
	records map[string]domain.DownloadToken
}

func (r *tokensRepo) Create(ctx context.Context, t domain.DownloadToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[t.Token] = t
	return nil
}

func (r *tokensRepo) Get(ctx context.Context, token string) (domain.DownloadToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[token]
	if !ok {
		return domain.DownloadToken{}, store.ErrNotFound
	}
	return rec, nil
}

func (r *tokensRepo) Consume(ctx context.Context, token string) (domain.DownloadToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[token]
	if !ok {
		return domain.DownloadToken{}, store.ErrNotFound
	}

	// Delete under the same lock as the read: whichever racing request
	// gets here first wins, everyone else sees ErrNotFound.
	delete(r.records, token)

	now := time.Now().UTC()
	rec.UsedAt = &now
	rec.GraceUntil = &now // mirrors UsedAt, no grace granted
	return rec, nil
}

func (r *tokensRepo) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, token)
	return nil
}

func (r *tokensRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for token, rec := range r.records {
		if rec.Expired(now) {
			delete(r.records, token)
			dropped++
		}
	}
	return dropped, nil
}

type giftsRepo struct {
	mu       sync.Mutex
	redeemed map[string]time.Time // id -> retention deadline
}

func (r *giftsRepo) MarkRedeemed(ctx context.Context, id string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.redeemed[id]; ok {
		return store.ErrAlreadyRedeemed
	}
	r.redeemed[id] = expiresAt
	return nil
}

func (r *giftsRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for id, deadline := range r.redeemed {
		if now.After(deadline) {
			delete(r.redeemed, id)
			dropped++
		}
	}
	return dropped, nil
}
