// Package database owns the Postgres pool and ties its readiness to the
// lifecycle coordinator.
package database

import (
	"context"
	"database/sql"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/docket/pkg/lifecycle"
)

const (
	startupAttempts = 5
	startupDelay    = 500 * time.Millisecond
)

// ErrNotReady means the pool has no live connection: Start has not run or
// the last ping failed.
var ErrNotReady = errors.New("database not ready")

// System is the pool plus its readiness state.
type System interface {
	lifecycle.ReadinessChecker

	Connection() *sql.DB
	Start(lc *lifecycle.Coordinator) error
	// Ping returns an error wrapping ErrNotReady when the server does not answer.
	Ping(ctx context.Context) error
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
	ready       atomic.Bool
}

// New configures the pool from cfg. No connection is made until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	pool, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	d := &database{conn: pool, connTimeout: cfg.ConnTimeoutDuration()}
	d.logger = logger.With("system", "database")
	return d, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Ready() bool {
	return d.ready.Load()
}

func (d *database) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, d.connTimeout)
	defer cancel()

	if err := d.conn.PingContext(pingCtx); err != nil {
		d.ready.Store(false)
		return errors.WithSecondaryError(errors.Wrapf(ErrNotReady, "ping: %v", err), err)
	}

	d.ready.Store(true)
	return nil
}

// Start pings in the background, backing off until the database answers or
// the coordinator shuts down, and closes the pool on shutdown.
func (d *database) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting database connection")

	lc.OnStartup(func() {
		err := retry.Do(
			func() error { return d.Ping(lc.Context()) },
			retry.Context(lc.Context()),
			retry.Attempts(startupAttempts),
			retry.Delay(startupDelay),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.OnRetry(func(n uint, err error) {
				d.logger.Warn("database not reachable, retrying", "attempt", n+1, "error", err)
			}),
		)
		if err != nil {
			d.logger.Error("database ping failed", "error", err)
			return
		}
		d.logger.Info("database connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.ready.Store(false)

		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database connection closed")
	})

	return nil
}
