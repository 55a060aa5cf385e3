package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/KimDog-Studios/linkgate/internal/linkgate/audit"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/store"
)

// DefaultAuditRetention is how long audit events are kept before the
// housekeeping loop drops them.
const DefaultAuditRetention = 90 * 24 * time.Hour

// HousekeepingService periodically removes expired download tokens, lapsed
// gift redemption markers and aged-out audit events. Download tokens live
// seconds, so the loop runs much more often than a typical database sweeper.
type HousekeepingService struct {
	Store          store.Store
	AuditStore     audit.Store
	Logger         *slog.Logger
	Interval       time.Duration
	AuditRetention time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the sweeper. A non-positive interval
// defaults to one minute; auditStore may be nil when auditing is disabled.
func NewHousekeepingService(st store.Store, auditStore audit.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}

	return &HousekeepingService{
		Store:          st,
		AuditStore:     auditStore,
		Logger:         logger,
		Interval:       interval,
		AuditRetention: DefaultAuditRetention,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start launches the background worker. Non-blocking; call Stop to shut it
// down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", slog.Duration("interval", s.Interval))
}

// Stop shuts the worker down, blocking until any in-progress sweep ends.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup runs each sweep independently; one failing does not stop the rest.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	now := time.Now().UTC()

	if n, err := s.Store.DownloadTokens().DeleteExpired(ctx, now); err != nil {
		s.Logger.Error("failed to sweep expired download tokens", slog.Any("error", err))
	} else if n > 0 {
		s.Logger.Debug("swept expired download tokens", slog.Int("count", n))
	}

	if n, err := s.Store.GiftRedemptions().DeleteExpired(ctx, now); err != nil {
		s.Logger.Error("failed to sweep gift redemption markers", slog.Any("error", err))
	} else if n > 0 {
		s.Logger.Debug("swept gift redemption markers", slog.Int("count", n))
	}

	if s.AuditStore != nil {
		cutoff := now.Add(-s.AuditRetention)
		if n, err := s.AuditStore.DeleteEventsBefore(ctx, cutoff); err != nil {
			s.Logger.Error("failed to prune audit events", slog.Any("error", err))
		} else if n > 0 {
			s.Logger.Debug("pruned audit events", slog.Int64("count", n))
		}
	}
}
