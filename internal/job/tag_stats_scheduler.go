// Package job provides background job schedulers.
package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"forum-tags-service/internal/app/service"
	"forum-tags-service/pkg/locker"
)

// Lock keys.
const (
	// runLockKey guards a single refresh at a time across instances.
	runLockKey = "tags:stats:run"

	// cooldownLockKey is held for one interval after a successful scheduled
	// run so other instances skip their tick.
	cooldownLockKey = "tags:stats:cooldown"
)

// ErrRefreshInProgress is returned by RunOnce when another refresh holds the lock.
var ErrRefreshInProgress = errors.New("tag stats refresh already in progress")

// StatsRefresher recomputes tag counters.
type StatsRefresher interface {
	RefreshStats(ctx context.Context) (*service.StatsResult, error)
}

// StatsConfig holds tag stats scheduler configuration.
type StatsConfig struct {
	Interval  time.Duration
	Timeout   time.Duration
	OnStartup bool
}

// TagStatsScheduler periodically refreshes the denormalized tag counters.
// Runs are serialized across instances with a distributed lock.
type TagStatsScheduler struct {
	refresher StatsRefresher
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
	locker    locker.DistributedLocker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTagStatsScheduler creates a new TagStatsScheduler.
func NewTagStatsScheduler(
	refresher StatsRefresher,
	cfg StatsConfig,
	logger *zap.Logger,
	l locker.DistributedLocker,
) *TagStatsScheduler {
	return &TagStatsScheduler{
		refresher: refresher,
		interval:  cfg.Interval,
		timeout:   cfg.Timeout,
		logger:    logger.Named("tag_stats"),
		locker:    l,
	}
}

// Start begins the background loop.
func (s *TagStatsScheduler) Start(runOnStartup bool) {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("starting tag stats scheduler",
		zap.Duration("interval", s.interval),
		zap.Bool("run_on_startup", runOnStartup),
	)

	s.wg.Add(1)
	go s.run(runOnStartup)
}

// Stop cancels the loop and waits for an in-flight run to finish.
func (s *TagStatsScheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.logger.Info("tag stats scheduler stopped")
}

func (s *TagStatsScheduler) run(runOnStartup bool) {
	defer s.wg.Done()

	if runOnStartup {
		s.tick()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick runs a refresh unless another instance ran one within the interval.
// The cooldown lock is kept on success and released on failure so the next
// tick anywhere can retry.
func (s *TagStatsScheduler) tick() {
	acquired, err := s.locker.Acquire(s.ctx, cooldownLockKey, s.interval)
	if err != nil {
		s.logger.Error("failed to acquire cooldown lock", zap.Error(err))
		return
	}
	if !acquired {
		s.logger.Debug("tag stats refreshed recently by another instance, skipping")
		return
	}

	if _, err := s.RunOnce(s.ctx); err != nil {
		if err := s.locker.Release(context.WithoutCancel(s.ctx), cooldownLockKey); err != nil {
			s.logger.Error("failed to release cooldown lock", zap.Error(err))
		}
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("scheduled tag stats refresh failed", zap.Error(err))
		}
	}
}

// RunOnce refreshes the counters now while holding the run lock. It fails
// with ErrRefreshInProgress when another refresh is running.
func (s *TagStatsScheduler) RunOnce(ctx context.Context) (*service.StatsResult, error) {
	var result *service.StatsResult

	err := locker.WithLock(ctx, s.locker, runLockKey, s.timeout, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		var err error
		result, err = s.refresher.RefreshStats(ctx)

		return err
	})
	if errors.Is(err, locker.ErrNotAcquired) {
		return nil, ErrRefreshInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("refreshing tag stats: %w", err)
	}

	return result, nil
}
