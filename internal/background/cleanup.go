package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/bitleap/linkauth/internal/auth"
	"github.com/bitleap/linkauth/internal/repositories"
)

// Lockout records idle this long with no retry are evicted.
const lockoutMaxIdle = 1 * time.Hour

// CleanupManager periodically removes expired revoked-token rows and evicts
// stale lockout records that would otherwise accumulate without bound.
type CleanupManager struct {
	revokeRepo *repositories.TokenRevocationRepository
	lockout    *auth.LockoutTracker
	logger     *slog.Logger
	interval   time.Duration
	stopCh     chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	revokeRepo *repositories.TokenRevocationRepository,
	lockout *auth.LockoutTracker,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		revokeRepo: revokeRepo,
		lockout:    lockout,
		logger:     logger,
		interval:   interval,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rowsDeleted, err := cm.revokeRepo.CleanupExpiredTokens(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to cleanup expired revoked tokens", slog.Any("error", err))
	} else if rowsDeleted > 0 {
		cm.logger.Info("expired revoked-token cleanup completed", slog.Int64("rows_deleted", rowsDeleted))
	}

	cm.lockout.EvictStale(lockoutMaxIdle)
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
