package journal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/llm-sidecar/internal/db"
	"github.com/ziadkadry99/llm-sidecar/internal/sidecar"
)

// timeFormat sorts lexically in time order.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// Store provides access to the command log.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record inserts a new entry. If entry.ID is empty a UUID is generated;
// a zero CreatedAt is set to now.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO command_log (
			id, command_id, func, decoded, success, error,
			request_bytes, response_bytes, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.CommandID,
		string(entry.Func),
		entry.Decoded,
		entry.Success,
		entry.Error,
		entry.RequestBytes,
		entry.ResponseBytes,
		entry.Duration.Milliseconds(),
		entry.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting journal entry: %w", err)
	}
	return nil
}

// Filter controls which entries Recent returns.
type Filter struct {
	Func       sidecar.Func
	FailedOnly bool
	Since      *time.Time
	Limit      int
}

// Recent returns entries matching the filter, newest first.
func (s *Store) Recent(ctx context.Context, filter Filter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Func != "" {
		clauses = append(clauses, "func = ?")
		args = append(args, string(filter.Func))
	}
	if filter.FailedOnly {
		clauses = append(clauses, "success = 0")
	}
	if filter.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeFormat))
	}

	query := "SELECT id, command_id, func, decoded, success, error, request_bytes, response_bytes, duration_ms, created_at FROM command_log"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			fn, ts     string
			durationMS int64
		)
		if err := rows.Scan(
			&e.ID, &e.CommandID, &fn, &e.Decoded, &e.Success, &e.Error,
			&e.RequestBytes, &e.ResponseBytes, &durationMS, &ts,
		); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		e.Func = sidecar.Func(fn)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		if t, err := time.Parse(timeFormat, ts); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteBefore removes all entries older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM command_log WHERE created_at < ?",
		before.UTC().Format(timeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old journal entries: %w", err)
	}
	return res.RowsAffected()
}

// Observer returns a sidecar observer that records each exchange.
// Failures to record are logged and never reach the loop.
func (s *Store) Observer(logger *slog.Logger) sidecar.Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return sidecar.ObserverFunc(func(ctx context.Context, ex sidecar.Exchange) {
		if err := s.Record(context.WithoutCancel(ctx), FromExchange(ex)); err != nil {
			logger.Warn("journal write failed", "id", ex.Response.ID, "error", err)
		}
	})
}
