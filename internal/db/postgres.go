package db

import (
	"context"
	"time"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationName = "lak-travelers-api"

var newPoolFn = pgxpool.NewWithConfig

var pingPoolFn = func(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}

// ConnectPostgres parses POSTGRES_URL, caps the pool at POSTGRES_MAX_CONNS and
// pings within 5s.
func ConnectPostgres(cfg config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresURL)
	if err != nil {
		return nil, err
	}
	if cfg.PostgresMaxConns > 0 {
		poolCfg.MaxConns = cfg.PostgresMaxConns
	}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := newPoolFn(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pingPoolFn(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
