package db

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/mediashare-backend/pkg/config"
	"github.com/angelmondragon/mediashare-backend/pkg/logger"
)

// Client wraps the shared GORM connection and tracks its observed health.
type Client struct {
	conn    *gorm.DB
	cfg     config.DBConfig
	logg    *logger.Logger
	healthy atomic.Bool
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New opens a GORM client without verifying reachability. Use Connect for
// the retrying startup path.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	gormCfg := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	}

	conn, err := gorm.Open(dialectorFor(cfg), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("opening db connection: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}

	applyPoolSettings(sqlDB, cfg)

	return &Client{conn: conn, cfg: cfg, logg: logg}, nil
}

// Connect opens the client and pings it with capped exponential backoff until
// the database answers or the retry budget is spent.
func Connect(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	client, err := New(ctx, cfg, logg)
	if err != nil {
		return nil, err
	}

	backoff := retry.NewExponential(positive(cfg.ConnectBackoff, 500*time.Millisecond))
	backoff = retry.WithCappedDuration(positive(cfg.ConnectMaxDelay, 10*time.Second), backoff)
	backoff = retry.WithMaxRetries(uint64(max(cfg.ConnectRetries, 0)), backoff)

	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := client.Ping(ctx); err != nil {
			if logg != nil {
				logg.Warn(logg.WithField(ctx, "attempt", attempt), "database not reachable, retrying")
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to database after %d attempts: %w", attempt, err)
	}

	client.healthy.Store(true)
	if logg != nil {
		logg.Info(logg.WithField(ctx, "driver", driverName(cfg)), "database connection established")
	}
	return client, nil
}

func dialectorFor(cfg config.DBConfig) gorm.Dialector {
	if cfg.IsSQLite() {
		return sqlite.Open(cfg.DSN)
	}
	return postgres.New(postgres.Config{
		DSN:                  cfg.DSN,
		PreferSimpleProtocol: true,
	})
}

func driverName(cfg config.DBConfig) string {
	if cfg.IsSQLite() {
		return config.DBDriverSQLite
	}
	return config.DBDriverPostgres
}

func applyPoolSettings(sqlDB *sql.DB, cfg config.DBConfig) {
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

func positive(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// DB returns the underlying GORM connection.
func (c *Client) DB() *gorm.DB {
	return c.conn
}

// IsSQLite reports whether the client talks to the embedded SQLite engine.
func (c *Client) IsSQLite() bool {
	return c.cfg.IsSQLite()
}

// Ping verifies the datasource is reachable, bounded by the configured timeout.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	if c.cfg.PingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.PingTimeout)
		defer cancel()
	}
	return sqlDB.PingContext(ctx)
}

// Healthy reports the last state observed by Connect or Monitor.
func (c *Client) Healthy() bool {
	return c.healthy.Load()
}

// Monitor pings the database every interval until ctx is cancelled, logging
// every transition between reachable and unreachable.
func (c *Client) Monitor(ctx context.Context) {
	interval := positive(c.cfg.MonitorInterval, 15*time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.observe(ctx)
		}
	}
}

func (c *Client) observe(ctx context.Context) {
	err := c.Ping(ctx)
	was := c.healthy.Swap(err == nil)
	if c.logg == nil {
		return
	}
	switch {
	case err != nil && was:
		c.logg.Error(ctx, "database connection lost", err)
	case err == nil && !was:
		c.logg.Info(ctx, "database connection restored")
	}
}

// Close shuts down the pooled connections.
func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Exec wraps GORM's Exec with context propagation.
func (c *Client) Exec(ctx context.Context, query string, args ...any) *gorm.DB {
	return c.conn.WithContext(ctx).Exec(query, args...)
}

// Raw wraps GORM's Raw with context propagation.
func (c *Client) Raw(ctx context.Context, query string, args ...any) *gorm.DB {
	return c.conn.WithContext(ctx).Raw(query, args...)
}

// WithTx executes fn inside a transaction, rolling back on error/panic.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := c.conn.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
