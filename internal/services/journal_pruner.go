package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/tasknest/backend/internal/infrastructure/journal"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// PrunerConfig controls how the sync journal retention is enforced.
type PrunerConfig struct {
	Interval  time.Duration
	Retention time.Duration
}

// JournalPruner trims journal entries past their retention on a schedule.
// While the primary stores are unreachable the journal may be the only record
// of applied mutations, so pruning is suspended until they recover.
type JournalPruner struct {
	store   *journal.Store
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     PrunerConfig
}

func NewJournalPruner(store *journal.Store, monitor ConnectionHealth, logger *zap.Logger, cfg PrunerConfig) *JournalPruner {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	jp := &JournalPruner{
		store:   store,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = jp.cron.AddFunc(schedule, jp.prune)

	return jp
}

// Start launches the cron scheduler.
func (jp *JournalPruner) Start() {
	if jp == nil || jp.cron == nil {
		return
	}
	jp.cron.Start()
	jp.logger.Info("journal pruner started", zap.Duration("interval", jp.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (jp *JournalPruner) Stop(ctx context.Context) {
	if jp == nil || jp.cron == nil {
		return
	}
	stopCtx := jp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	jp.logger.Info("journal pruner stopped")
}

func (jp *JournalPruner) prune() {
	if jp.store == nil {
		return
	}
	if jp.monitor != nil && !jp.monitor.IsOnline() {
		jp.logger.Debug("skipping journal prune (offline)")
		return
	}
	removed, err := jp.store.Prune(time.Now().Add(-jp.cfg.Retention))
	if err != nil {
		jp.logger.Error("journal prune failed", zap.Error(err))
		return
	}
	if removed > 0 {
		jp.logger.Info("journal pruned", zap.Int("removed", removed))
	}
}
