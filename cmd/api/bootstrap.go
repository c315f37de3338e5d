package main

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"forum-tags-service/internal/config"
	"forum-tags-service/internal/infra/postgres"
	rediscache "forum-tags-service/internal/infra/redis"
	"forum-tags-service/internal/logger"
)

// runtime holds the connections shared by every command.
type runtime struct {
	cfg *config.Config
	log *logger.Logger
	db  *gorm.DB
}

// bootstrap loads configuration, builds the logger and opens the database.
func bootstrap() (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(
		logger.Config{
			Level:   cfg.Logger.Level,
			Format:  cfg.Logger.Format,
			Output:  cfg.Logger.Output,
			Service: cfg.App.Name,
			Env:     cfg.App.Env,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	db, err := postgres.NewConnection(
		postgres.Config{
			Host:         cfg.Database.Host,
			Port:         cfg.Database.Port,
			Name:         cfg.Database.Name,
			User:         cfg.Database.User,
			Password:     cfg.Database.Password,
			SSLMode:      cfg.Database.SSLMode,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			MaxLifetime:  cfg.Database.MaxLifetime,
			SlowQuery:    cfg.Database.SlowQuery,
		},
		log.Logger,
	)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &runtime{cfg: cfg, log: log, db: db}, nil
}

func (r *runtime) connectRedis(ctx context.Context) (*goredis.Client, error) {
	client, err := rediscache.NewClient(ctx, rediscache.Config{
		Addr:     r.cfg.Redis.Addr(),
		Password: r.cfg.Redis.Password,
		DB:       r.cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("connected to Redis", zap.String("addr", r.cfg.Redis.Addr()))

	return client, nil
}

func (r *runtime) close() {
	if err := postgres.Close(r.db); err != nil {
		r.log.Warn("closing database failed", zap.Error(err))
	}
	_ = r.log.Sync()
}
