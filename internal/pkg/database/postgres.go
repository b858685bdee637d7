package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/corpdir/api/internal/config"
	"github.com/corpdir/api/internal/pkg/metrics"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const uniqueViolation = "23505"

// slowQueryThreshold is the duration above which a query is logged
const slowQueryThreshold = 100 * time.Millisecond

// PostgresDB wraps a PostgreSQL connection pool
type PostgresDB struct {
	Pool   *pgxpool.Pool
	tracer *queryTracer
}

// NewPostgres creates a new PostgreSQL connection pool
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, log *zap.Logger) (*PostgresDB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	tracer := newQueryTracer(log, log.Core().Enabled(zap.DebugLevel))
	poolConfig.ConnConfig.Tracer = tracer

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	log.Info("connected to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
		zap.Int32("max_conns", cfg.MaxConns),
	)

	return &PostgresDB{Pool: pool, tracer: tracer}, nil
}

// Close closes the connection pool
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping checks the connection
func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Metrics returns a snapshot of the query counters
func (db *PostgresDB) Metrics() QueryMetrics {
	if db.tracer == nil {
		return QueryMetrics{}
	}
	return db.tracer.GetMetrics()
}

// BeginTx starts a new transaction
func (db *PostgresDB) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return db.Pool.Begin(ctx)
}

// UniqueViolation returns the PostgreSQL error when err is a unique
// constraint violation.
func UniqueViolation(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr, true
	}
	return nil, false
}

// QueryMetrics holds query counters
type QueryMetrics struct {
	TotalQueries    int64
	SlowQueries     int64
	FailedQueries   int64
	TotalDurationMs int64
}

// queryTracer implements pgx.QueryTracer for logging and metrics
type queryTracer struct {
	log         *zap.Logger
	enableDebug bool

	mu      sync.Mutex
	metrics *QueryMetrics
}

// queryKey stores the in-flight query in the trace context
type queryKey struct{}

type inflightQuery struct {
	start time.Time
	sql   string
	args  int
}

func newQueryTracer(log *zap.Logger, enableDebug bool) *queryTracer {
	if log == nil {
		log = zap.NewNop()
	}
	return &queryTracer{
		log:         log,
		enableDebug: enableDebug,
		metrics:     &QueryMetrics{},
	}
}

// GetMetrics returns a copy of the counters
func (t *queryTracer) GetMetrics() QueryMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return *t.metrics
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryKey{}, inflightQuery{start: time.Now(), sql: data.SQL, args: len(data.Args)})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	q, ok := ctx.Value(queryKey{}).(inflightQuery)
	if !ok {
		return
	}

	duration := time.Since(q.start)
	slow := duration > slowQueryThreshold
	failed := data.Err != nil

	t.mu.Lock()
	t.metrics.TotalQueries++
	t.metrics.TotalDurationMs += duration.Milliseconds()
	if failed {
		t.metrics.FailedQueries++
	}
	if slow {
		t.metrics.SlowQueries++
	}
	t.mu.Unlock()

	metrics.RecordQuery(metrics.Query{
		Database:  "postgres",
		Statement: queryOperation(q.sql),
		Duration:  duration,
		Failed:    failed,
		Slow:      slow,
	})

	switch {
	case slow:
		t.log.Warn("slow query detected",
			zap.Duration("duration", duration),
			zap.String("sql", truncateSQL(q.sql, 200)),
			zap.Error(data.Err),
		)
	case t.enableDebug:
		t.log.Debug("query",
			zap.Duration("duration", duration),
			zap.String("sql", truncateSQL(q.sql, 200)),
			zap.Int("args", q.args),
			zap.Error(data.Err),
		)
	}
}

// queryOperation returns the lowercased leading SQL keyword
func queryOperation(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}

func truncateSQL(sql string, maxLen int) string {
	if len(sql) <= maxLen {
		return sql
	}
	return sql[:maxLen] + "..."
}

// Transaction executes a function within a transaction
func Transaction(ctx context.Context, db *PostgresDB, log *zap.Logger, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			log.Error("failed to rollback transaction",
				zap.Error(rbErr),
			)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
