package db

import (
	"context"
	"dentalcms/internal/config"
	"dentalcms/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func NewPostgresConnection(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	dsn := cfg.GetDSN()
	pool, err := pgxpool.New(ctx, dsn)

	if err != nil {
		return nil, err
	}

	err = pool.Ping(ctx)
	if err != nil {
		logger.Log.Error("БД недоступна", zap.String("dsn", cfg.GetDSNSafe()), zap.Error(err))
		pool.Close()
		return nil, err
	}

	logger.Log.Info("Подключение к БД установлено", zap.String("dsn", cfg.GetDSNSafe()))
	return pool, nil
}
