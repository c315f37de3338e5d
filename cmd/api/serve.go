package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"forum-tags-service/internal/app/service"
	"forum-tags-service/internal/domain"
	"forum-tags-service/internal/infra/api"
	"forum-tags-service/internal/infra/postgres"
	"forum-tags-service/internal/infra/postgres/migrations"
	rediscache "forum-tags-service/internal/infra/redis"
	"forum-tags-service/internal/job"
	"forum-tags-service/internal/render"
	"forum-tags-service/internal/transport/httpserver"
	"forum-tags-service/internal/transport/httpserver/middleware"
	"forum-tags-service/internal/validator"
	"forum-tags-service/pkg/locker"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server and the tag stats scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.close()

	cfg, log := rt.cfg, rt.log

	log.Info("starting forum-tags-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	if err := migrations.Run(rt.db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations completed")

	redisClient, err := rt.connectRedis(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	var cache domain.Cache
	if cfg.Cache.Enabled {
		cache = rediscache.NewCache(redisClient, log.Logger, cfg.Cache.KeyPrefix)
		log.Info("document cache enabled",
			zap.Duration("ttl", cfg.Cache.TTL),
			zap.String("key_prefix", cfg.Cache.KeyPrefix),
		)
	} else {
		log.Info("document cache disabled")
	}

	tagRepo := postgres.NewTagRepository(rt.db)
	discussionRepo := postgres.NewDiscussionRepository(rt.db)
	userRepo := postgres.NewUserRepository(rt.db)

	discussionSvc := service.NewDiscussionService(tagRepo, discussionRepo, cfg.DiscussionsEndpoint(), log.Logger)
	tagSvc := service.NewTagService(tagRepo, cache, log.Logger)

	var apiClient domain.APIClient
	if cfg.API.IsRemote() {
		apiClient = api.NewRemoteClient(api.ClientConfig{
			BaseURL: cfg.API.BaseURL,
			Timeout: cfg.API.Timeout,
			Retry: api.RetryConfig{
				MaxAttempts: cfg.API.Retry.MaxAttempts,
				WaitTime:    cfg.API.Retry.WaitTime,
				MaxWaitTime: cfg.API.Retry.MaxWaitTime,
			},
			CB: api.CBConfig{
				MaxRequests:  cfg.API.CB.MaxRequests,
				Interval:     cfg.API.CB.Interval,
				Timeout:      cfg.API.CB.Timeout,
				FailureRatio: cfg.API.CB.FailureRatio,
			},
		}, log.Logger)
		log.Info("using remote discussion api", zap.String("base_url", cfg.API.BaseURL))
	} else {
		apiClient = api.NewLocalClient(discussionSvc)
	}
	if cache != nil {
		apiClient = api.NewCachedClient(apiClient, cache, cfg.Cache.TTL, log.Logger)
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}
	tagPageSvc := service.NewTagPageService(tagRepo, apiClient, renderer, cfg.App.Title, log.Logger)

	scheduler := job.NewTagStatsScheduler(
		tagSvc,
		job.StatsConfig{
			Interval:  cfg.Stats.Interval,
			Timeout:   cfg.Stats.Timeout,
			OnStartup: cfg.Stats.OnStartup,
		},
		log.Logger,
		locker.NewRedisLocker(redisClient, log.Logger),
	)

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:        cfg.App.Port,
			BodyLimit:   cfg.Server.BodyLimit,
			Debug:       cfg.App.Debug,
			Title:       cfg.App.Title,
			CORSOrigins: cfg.Server.CORSOrigins,
		},
		httpserver.Dependencies{
			TagPages:    tagPageSvc,
			Discussions: discussionSvc,
			Tags:        tagSvc,
			Stats:       scheduler,
			Users:       userRepo,
			Renderer:    renderer,
			Validator:   validator.New(),
			ReadinessChecks: []middleware.ReadinessCheck{
				func(context.Context) error { return postgres.HealthCheck(rt.db) },
				func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			},
		},
		log.Logger,
	)

	scheduler.Start(cfg.Stats.OnStartup)
	defer scheduler.Stop()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.App.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-sigCtx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.App.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}

	return nil
}
