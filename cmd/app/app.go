package app

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/communityhub/goldledger/internal/api"
	"github.com/communityhub/goldledger/internal/cache"
	"github.com/communityhub/goldledger/internal/config"
	"github.com/communityhub/goldledger/internal/db"
	"github.com/communityhub/goldledger/internal/logger"
	"github.com/communityhub/goldledger/internal/metrics"
	"github.com/communityhub/goldledger/internal/repository/dao"
)

const configPath = "./cmd/app/config.yml"

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment, conf.API.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	err = config.Watch(configPath, func(updated *config.AppConfig) {
		if err := logger.SetLevel(updated.API.LogLevel); err != nil {
			zap.L().Warn("ignoring invalid log level", zap.Error(err))
			return
		}
		zap.L().Info("config reloaded", zap.String("logLevel", updated.API.LogLevel))
	}, func(err error) {
		zap.L().Warn("failed to reload config", zap.Error(err))
	})
	if err != nil {
		zap.L().Warn("config hot reload disabled", zap.Error(err))
	}

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	if err = dao.InitTables(postgresDB); err != nil {
		return fmt.Errorf("failed to initialize tables -> %w", err)
	}

	rdb := cache.NewRedisClient(context.Background(), conf.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	s := api.NewServer(conf, postgresDB, rdb, metrics.New(prometheus.NewRegistry()))

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}
