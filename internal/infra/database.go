package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig sizes the pgx pool for one of the two database users
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// ProviderPool serves the provider's signal, trade and settings tables under
// concurrent HTTP load plus the signal feed
func ProviderPool() PoolConfig {
	return PoolConfig{
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		ConnectTimeout:  10 * time.Second,
	}
}

// SettingsPool backs the dashboard's local settings store. Writes are
// serialized by the session, so a couple of connections is enough and none
// are held while idle.
func SettingsPool() PoolConfig {
	return PoolConfig{
		MaxConns:        2,
		MinConns:        0,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  5 * time.Second,
	}
}

func parsePoolConfig(databaseURL string, pc PoolConfig) (*pgxpool.Config, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = pc.MaxConns
	config.MinConns = pc.MinConns
	config.MaxConnLifetime = pc.MaxConnLifetime
	config.MaxConnIdleTime = pc.MaxConnIdleTime
	if pc.ConnectTimeout > 0 {
		config.ConnConfig.ConnectTimeout = pc.ConnectTimeout
	}
	return config, nil
}

// NewDatabase opens a pool sized by pc and checks it with a ping. The
// password never reaches the log.
func NewDatabase(ctx context.Context, databaseURL string, pc PoolConfig) (*pgxpool.Pool, error) {
	config, err := parsePoolConfig(databaseURL, pc)
	if err != nil {
		return nil, err
	}

	log.Infof("Connecting to PostgreSQL %s:%d/%s (max %d conns)...",
		config.ConnConfig.Host, config.ConnConfig.Port, config.ConnConfig.Database, config.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", config.ConnConfig.Database, err)
	}

	log.Infof("[OK] Database %s connected", config.ConnConfig.Database)
	return pool, nil
}
