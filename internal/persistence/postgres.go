package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
)

const postgresPingTimeout = 2 * time.Second

// ErrMissingDSN is returned when no connection string is configured. Sessions, accounts and
// tickets all live in Postgres, so the service cannot start without it.
var ErrMissingDSN = errors.New("POSTGRES_DSN is required")

// Postgres owns the pgx pool shared by every repository.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres opens the pool and waits for the first successful ping.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	pg := &Postgres{Pool: pool}
	if err := pg.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Info("connected to postgres",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database),
		zap.Int32("max_conns", poolCfg.MaxConns),
		zap.Int32("min_conns", poolCfg.MinConns),
	)
	return pg, nil
}

func poolConfig(cfg config.PostgresConfig) (*pgxpool.Config, error) {
	if cfg.DSN == "" {
		return nil, ErrMissingDSN
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse POSTGRES_DSN: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= poolCfg.MaxConns {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}
	return poolCfg, nil
}

// Close releases pool resources.
func (p *Postgres) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

// Ping reports whether the database answers within a short deadline.
func (p *Postgres) Ping(ctx context.Context) error {
	if p == nil || p.Pool == nil {
		return errors.New("postgres pool not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, postgresPingTimeout)
	defer cancel()
	return p.Pool.Ping(ctx)
}

// PoolCollector exposes pgxpool statistics to Prometheus at scrape time.
type PoolCollector struct {
	pool     *pgxpool.Pool
	total    *prometheus.Desc
	idle     *prometheus.Desc
	acquired *prometheus.Desc
	waits    *prometheus.Desc
}

// NewPoolCollector describes the pool gauges.
func NewPoolCollector(pool *pgxpool.Pool) *PoolCollector {
	return &PoolCollector{
		pool:     pool,
		total:    prometheus.NewDesc("postgres_pool_connections", "Open connections in the pool.", nil, nil),
		idle:     prometheus.NewDesc("postgres_pool_idle_connections", "Idle connections in the pool.", nil, nil),
		acquired: prometheus.NewDesc("postgres_pool_acquired_connections", "Connections currently checked out.", nil, nil),
		waits:    prometheus.NewDesc("postgres_pool_empty_acquire_total", "Acquires that waited for a free connection.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.total
	ch <- c.idle
	ch <- c.acquired
	ch <- c.waits
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	if c.pool == nil {
		return
	}
	stat := c.pool.Stat()
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(stat.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.waits, prometheus.CounterValue, float64(stat.EmptyAcquireCount()))
}
