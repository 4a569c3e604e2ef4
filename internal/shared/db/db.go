package db

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cristianortiz/sneakerbid/internal/shared/config"
	"github.com/cristianortiz/sneakerbid/internal/shared/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// BuildPostgresDSN renders the settings as a postgres:// URL, credentials are escaped
func BuildPostgresDSN(cfg config.DBConfig) string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host + ":" + cfg.Port,
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": []string{cfg.SSLMode}}.Encode(),
	}
	return dsn.String()
}

func poolConfig(cfg config.DBConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(BuildPostgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= pc.MaxConns {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.HealthCheckPeriod > 0 {
		pc.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	return pc, nil
}

// NewPostgresPool opens the pool shared by every repository and pings it once.
// The caller owns the pool and closes it on shutdown.
func NewPostgresPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to DB: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database pool ping failed: %w", err)
	}
	log.Info("Database pool ready",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
		zap.Int32("maxConns", pc.MaxConns),
	)
	return pool, nil
}
