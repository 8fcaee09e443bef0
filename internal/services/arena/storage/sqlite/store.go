// Package sqlite provides a SQLite-backed arena journal implementation.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/stakepot/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/stakepot/internal/services/arena/storage"
	"github.com/louisbranch/stakepot/internal/services/arena/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists the arena event journal in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite journal store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendEvent inserts one journal record and returns its assigned seq.
func (s *Store) AppendEvent(ctx context.Context, record storage.EventRecord) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	eventType := strings.TrimSpace(record.Type)
	if eventType == "" {
		return 0, fmt.Errorf("event type is required")
	}
	createdAt := record.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	payload := record.PayloadJSON
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO arena_events (match_id, event_type, actor, payload, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		int64(record.MatchID),
		eventType,
		record.Actor,
		string(payload),
		toMillis(createdAt),
	)
	if err != nil {
		return 0, fmt.Errorf("append event: %w", err)
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append event seq: %w", err)
	}
	return seq, nil
}

// ListEventsPage returns up to pageSize records after afterSeq in seq order.
func (s *Store) ListEventsPage(ctx context.Context, afterSeq int64, pageSize int) ([]storage.EventRecord, error) {
	return s.listEvents(ctx, `SELECT seq, match_id, event_type, actor, payload, created_at
	   FROM arena_events
	  WHERE seq > ?
	  ORDER BY seq ASC
	  LIMIT ?`, afterSeq, pageSize)
}

// ListMatchEventsPage returns up to pageSize records for one match
// after afterSeq in seq order.
func (s *Store) ListMatchEventsPage(ctx context.Context, matchID uint64, afterSeq int64, pageSize int) ([]storage.EventRecord, error) {
	return s.listEvents(ctx, `SELECT seq, match_id, event_type, actor, payload, created_at
	   FROM arena_events
	  WHERE match_id = ? AND seq > ?
	  ORDER BY seq ASC
	  LIMIT ?`, int64(matchID), afterSeq, pageSize)
}

// LatestSeq returns the highest assigned seq, zero when the journal is
// empty.
func (s *Store) LatestSeq(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var seq int64
	row := s.sqlDB.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM arena_events`)
	if err := row.Scan(&seq); err != nil {
		return 0, fmt.Errorf("latest seq: %w", err)
	}
	return seq, nil
}

func (s *Store) listEvents(ctx context.Context, query string, args ...any) ([]storage.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var records []storage.EventRecord
	for rows.Next() {
		var record storage.EventRecord
		var matchID int64
		var payload string
		var createdAt int64
		if err := rows.Scan(
			&record.Seq,
			&matchID,
			&record.Type,
			&record.Actor,
			&payload,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		record.MatchID = uint64(matchID)
		record.PayloadJSON = []byte(payload)
		record.CreatedAt = fromMillis(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return records, nil
}

var _ storage.JournalStore = (*Store)(nil)
