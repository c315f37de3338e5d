package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"forum-tags-service/internal/app/service"
	"forum-tags-service/internal/domain"
	"forum-tags-service/internal/infra/postgres"
	rediscache "forum-tags-service/internal/infra/redis"
	"forum-tags-service/internal/job"
	"forum-tags-service/pkg/locker"
)

var refreshStatsCmd = &cobra.Command{
	Use:   "refresh-tag-stats",
	Short: "Recompute tag discussion counters once",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		redisClient, err := rt.connectRedis(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()

		var cache domain.Cache
		if rt.cfg.Cache.Enabled {
			cache = rediscache.NewCache(redisClient, rt.log.Logger, rt.cfg.Cache.KeyPrefix)
		}

		scheduler := job.NewTagStatsScheduler(
			service.NewTagService(postgres.NewTagRepository(rt.db), cache, rt.log.Logger),
			job.StatsConfig{Timeout: rt.cfg.Stats.Timeout},
			rt.log.Logger,
			locker.NewRedisLocker(redisClient, rt.log.Logger),
		)

		result, err := scheduler.RunOnce(cmd.Context())
		if err != nil {
			return err
		}

		rt.log.Info("tag stats refreshed",
			zap.Int("tags", result.Tags),
			zap.Duration("duration", result.Duration),
		)

		return nil
	},
}
