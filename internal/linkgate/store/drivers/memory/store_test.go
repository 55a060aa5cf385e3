package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KimDog-Studios/linkgate/internal/linkgate/domain"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/store"
	"github.com/stretchr/testify/require"
)

func testToken(tok string, expiresAt time.Time) domain.DownloadToken {
	now := time.Now().UTC()
	return domain.DownloadToken{
		Token:       tok,
		Href:        "https://kimdog-modding.b-cdn.net/file.zip",
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
		IPHash:      "iphash",
		UAHash:      "uahash",
		ClientNonce: "nonce",
	}
}

func TestDownloadTokensLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	repo := s.DownloadTokens()

	rec := testToken("tok-1", time.Now().Add(time.Minute))
	require.NoError(t, repo.Create(ctx, rec))

	t.Run("Get has no side effects", func(t *testing.T) {
		got, err := repo.Get(ctx, "tok-1")
		require.NoError(t, err)
		require.Equal(t, rec.Href, got.Href)
		require.Nil(t, got.UsedAt)

		_, err = repo.Get(ctx, "tok-1")
		require.NoError(t, err, "record must survive Get")
	})

	t.Run("Consume removes the record and stamps UsedAt", func(t *testing.T) {
		got, err := repo.Consume(ctx, "tok-1")
		require.NoError(t, err)
		require.NotNil(t, got.UsedAt)
		require.NotNil(t, got.GraceUntil)
		require.Equal(t, *got.UsedAt, *got.GraceUntil)

		_, err = repo.Get(ctx, "tok-1")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = repo.Consume(ctx, "tok-1")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("missing tokens are not found, Delete is idempotent", func(t *testing.T) {
		_, err := repo.Get(ctx, "never-existed")
		require.ErrorIs(t, err, store.ErrNotFound)
		require.NoError(t, repo.Delete(ctx, "never-existed"))
	})
}

func TestConsumeIsSingleUseUnderConcurrency(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	repo := s.DownloadTokens()

	require.NoError(t, repo.Create(ctx, testToken("raced", time.Now().Add(time.Minute))))

	const racers = 32
	var winners atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := repo.Consume(ctx, "raced"); err == nil {
				winners.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	require.Equal(t, int32(1), winners.Load(), "exactly one racing consume may win")
}

func TestDeleteExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	repo := s.DownloadTokens()

	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, testToken("expired", now.Add(-time.Second))))
	require.NoError(t, repo.Create(ctx, testToken("live", now.Add(time.Minute))))

	dropped, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 1, dropped)

	_, err = repo.Get(ctx, "expired")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = repo.Get(ctx, "live")
	require.NoError(t, err, "unexpired token must be untouched")
}

func TestGiftRedemptions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	repo := s.GiftRedemptions()

	deadline := time.Now().Add(time.Hour)
	require.NoError(t, repo.MarkRedeemed(ctx, "gift-1", deadline))
	require.ErrorIs(t, repo.MarkRedeemed(ctx, "gift-1", deadline), store.ErrAlreadyRedeemed)

	t.Run("markers are dropped once retention lapses", func(t *testing.T) {
		dropped, err := repo.DeleteExpired(ctx, deadline.Add(time.Second))
		require.NoError(t, err)
		require.Equal(t, 1, dropped)

		require.NoError(t, repo.MarkRedeemed(ctx, "gift-1", deadline))
	})
}
