// Package audit records security-relevant events (issuance, redemption,
// denials, blocked proxy targets) to a retained store. Recording is best
// effort: an audit failure is logged and never fails the request that
// triggered it.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/KimDog-Studios/linkgate/internal/linkgate/domain"
	"github.com/KimDog-Studios/linkgate/pkg/idx"
)

// Store is the persistence contract for audit events. The sqlite driver
// implements it.
type Store interface {
	RecordEvent(ctx context.Context, ev domain.AuditEvent) error
	ListRecentEvents(ctx context.Context, limit int) ([]domain.AuditEvent, error)
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// Recorder writes audit events. A nil Recorder is valid and records
// nothing, so callers never need to branch on whether auditing is enabled.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// Record persists one event. tokenFingerprint must already be hashed;
// never pass raw tokens, IPs or User-Agents.
func (r *Recorder) Record(ctx context.Context, eventType, tokenFingerprint, ipHash, uaHash, detail string) {
	if r == nil || r.store == nil {
		return
	}

	ev := domain.AuditEvent{
		ID:               idx.New().String(),
		EventType:        eventType,
		TokenFingerprint: tokenFingerprint,
		IPHash:           ipHash,
		UAHash:           uaHash,
		Detail:           detail,
		CreatedAt:        time.Now().UTC(),
	}

	if err := r.store.RecordEvent(ctx, ev); err != nil {
		r.logger.Error("failed to record audit event",
			slog.String("event_type", eventType),
			slog.Any("error", err),
		)
	}
}
