package runtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB represents the single database connection used by a run.
type DB struct {
	pool *pgxpool.Pool
}

// Config represents database configuration.
type Config struct {
	Host           string
	Port           int
	Database       string
	User           string
	Password       string
	SSLMode        string
	ConnectTimeout time.Duration
}

// connLifetime outlasts any run. The advisory lock lives on the session, so
// the pool must never recycle its connection mid-run.
const connLifetime = 100 * 365 * 24 * time.Hour

// ConnectWithURL creates a new DB instance using a connection URL.
// The pool is capped at one connection: every statement of a run shares it.
func ConnectWithURL(ctx context.Context, url string) (*DB, error) {
	poolConfig, err := newPoolConfig(url)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

func newPoolConfig(url string) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection URL: %w", err)
	}
	poolConfig.MaxConns = 1
	// the idle reaper only closes connections above MinConns
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = connLifetime
	poolConfig.MaxConnLifetimeJitter = 0
	poolConfig.MaxConnIdleTime = connLifetime
	return poolConfig, nil
}

// Close closes the database connection.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Begin starts a new transaction.
func (db *DB) Begin(ctx context.Context) (pgx.Tx, error) {
	if db.pool == nil {
		return nil, ErrNoConnection
	}
	return db.pool.Begin(ctx)
}

// Exec executes a query without returning any rows.
func (db *DB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if db.pool == nil {
		return pgconn.CommandTag{}, ErrNoConnection
	}
	tag, err := db.pool.Exec(ctx, sql, args...)
	if err != nil {
		return tag, &QueryError{Query: sql, Err: Classify(err)}
	}
	return tag, nil
}

// Query executes a query that returns rows.
func (db *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if db.pool == nil {
		return nil, ErrNoConnection
	}
	rows, err := db.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, &QueryError{Query: sql, Err: Classify(err)}
	}
	return rows, nil
}

// QueryRow executes a query that returns at most one row.
func (db *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return db.pool.QueryRow(ctx, sql, args...)
}

// ConnectionString builds a PostgreSQL keyword/value connection string from config.
// Empty fields are omitted so libpq defaults apply.
func (c *Config) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	port := c.Port
	if port == 0 {
		port = 5432
	}

	parts := make([]string, 0, 7)
	if c.Host != "" {
		parts = append(parts, "host="+c.Host)
	}
	parts = append(parts, fmt.Sprintf("port=%d", port))
	if c.User != "" {
		parts = append(parts, "user="+c.User)
	}
	if c.Password != "" {
		parts = append(parts, "password="+quoteValue(c.Password))
	}
	if c.Database != "" {
		parts = append(parts, "dbname="+c.Database)
	}
	parts = append(parts, "sslmode="+sslMode)
	if c.ConnectTimeout > 0 {
		parts = append(parts, fmt.Sprintf("connect_timeout=%d", int(c.ConnectTimeout.Seconds())))
	}
	return strings.Join(parts, " ")
}

// quoteValue quotes a keyword/value setting when it holds spaces or quotes.
func quoteValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
