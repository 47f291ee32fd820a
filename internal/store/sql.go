package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"social-calling/pkg/utils"
)

// Dialect selects placeholder syntax. The schema and upserts are otherwise
// portable between sqlite (>= 3.35 for RETURNING) and postgres.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv_entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	expires_at BIGINT,
	updated_at BIGINT NOT NULL
)`

// SQL is a Store over database/sql. sqlite is the on-device cache;
// postgres is available when the client runs beside a shared database.
type SQL struct {
	db      *sql.DB
	dialect Dialect
	clock   func() time.Time
}

func NewSQL(db *sql.DB, d Dialect) *SQL {
	return &SQL{db: db, dialect: d, clock: time.Now}
}

// Migrate creates the kv table if needed.
func (s *SQL) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}
	return nil
}

// Placeholder returns the n-th (1-based) bind parameter marker.
func (d Dialect) Placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (s *SQL) ph(n int) string { return s.dialect.Placeholder(n) }

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidKey
	}
	q := `SELECT value FROM kv_entries WHERE key = ` + s.ph(1) +
		` AND (expires_at IS NULL OR expires_at > ` + s.ph(2) + `)`

	var v string
	err := s.db.QueryRowContext(ctx, q, key, s.clock().UnixMilli()).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQL) setSQL() string {
	return `INSERT INTO kv_entries (key, value, expires_at, updated_at) VALUES (` +
		s.ph(1) + `, ` + s.ph(2) + `, NULL, ` + s.ph(3) + `)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, expires_at = NULL, updated_at = excluded.updated_at`
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}
	_, err := s.db.ExecContext(ctx, s.setSQL(), key, value, s.clock().UnixMilli())
	return err
}

// SetMany writes every pair in one transaction. Keys are written in sorted
// order so concurrent batches lock rows consistently.
func (s *SQL) SetMany(ctx context.Context, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "" {
			return ErrInvalidKey
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := s.clock().UnixMilli()
	q := s.setSQL()
	return utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, q, k, values[k], now); err != nil {
				return fmt.Errorf("store: set %s: %w", k, err)
			}
		}
		return nil
	})
}

// Incr is a single upsert so concurrent writers cannot lose an increment.
// An expired row restarts at 1 with a fresh expiry.
func (s *SQL) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if key == "" {
		return 0, ErrInvalidKey
	}
	now := s.clock().UnixMilli()
	var expires sql.NullInt64
	if ttl > 0 {
		expires = sql.NullInt64{Int64: now + ttl.Milliseconds(), Valid: true}
	}

	q := `INSERT INTO kv_entries (key, value, expires_at, updated_at) VALUES (` +
		s.ph(1) + `, '1', ` + s.ph(2) + `, ` + s.ph(3) + `)
ON CONFLICT (key) DO UPDATE SET
	value = CASE
		WHEN kv_entries.expires_at IS NOT NULL AND kv_entries.expires_at <= ` + s.ph(4) + ` THEN '1'
		ELSE CAST(CAST(kv_entries.value AS INTEGER) + 1 AS TEXT)
	END,
	expires_at = CASE
		WHEN kv_entries.expires_at IS NULL OR kv_entries.expires_at <= ` + s.ph(5) + ` THEN excluded.expires_at
		ELSE kv_entries.expires_at
	END,
	updated_at = excluded.updated_at
RETURNING value`

	var v string
	if err := s.db.QueryRowContext(ctx, q, key, expires, now, now, now).Scan(&v); err != nil {
		return 0, fmt.Errorf("store: incr %s: %w", key, err)
	}
	return strconv.ParseInt(v, 10, 64)
}

func (s *SQL) Close() error { return s.db.Close() }
