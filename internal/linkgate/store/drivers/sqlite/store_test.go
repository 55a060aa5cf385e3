package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/KimDog-Studios/linkgate/internal/linkgate/domain"
	"github.com/KimDog-Studios/linkgate/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestRecordAndListEvents(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Now().UTC().Truncate(time.Second)
	for i, typ := range []string{domain.AuditLinkIssued, domain.AuditLinkRedeemed, domain.AuditRedeemDenied} {
		require.NoError(t, s.RecordEvent(ctx, domain.AuditEvent{
			ID:               idx.New().String(),
			EventType:        typ,
			TokenFingerprint: "fp-abc",
			IPHash:           "iphash",
			UAHash:           "uahash",
			Detail:           "test",
			CreatedAt:        base.Add(time.Duration(i) * time.Second),
		}))
	}

	events, err := s.ListRecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, domain.AuditRedeemDenied, events[0].EventType, "newest first")
	require.Equal(t, "fp-abc", events[0].TokenFingerprint)

	t.Run("limit caps the result", func(t *testing.T) {
		events, err := s.ListRecentEvents(ctx, 1)
		require.NoError(t, err)
		require.Len(t, events, 1)
	})
}

func TestDeleteEventsBefore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC()
	require.NoError(t, s.RecordEvent(ctx, domain.AuditEvent{
		ID: idx.New().String(), EventType: domain.AuditLinkIssued, CreatedAt: now.Add(-48 * time.Hour),
	}))
	require.NoError(t, s.RecordEvent(ctx, domain.AuditEvent{
		ID: idx.New().String(), EventType: domain.AuditLinkIssued, CreatedAt: now,
	}))

	dropped, err := s.DeleteEventsBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, dropped)

	events, err := s.ListRecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())
}
