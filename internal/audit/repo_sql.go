package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"social-calling/internal/store"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS audit_journal (
	id         TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	event_id   TEXT NOT NULL DEFAULT '',
	session_id TEXT NOT NULL DEFAULT '',
	actor_id   TEXT NOT NULL DEFAULT '',
	amount     BIGINT NOT NULL DEFAULT 0,
	message    TEXT NOT NULL DEFAULT '',
	metadata   TEXT NOT NULL DEFAULT '',
	created_at BIGINT NOT NULL
)`

// SQLRepo keeps the journal in the same database as the KV store.
// INSERT and SELECT only.
type SQLRepo struct {
	db      *sql.DB
	dialect store.Dialect
}

func NewSQLRepo(db *sql.DB, d store.Dialect) *SQLRepo {
	return &SQLRepo{db: db, dialect: d}
}

func (r *SQLRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, journalSchema); err != nil {
		return fmt.Errorf("audit: create schema: %w", err)
	}
	return nil
}

func (r *SQLRepo) Append(ctx context.Context, e Entry) error {
	p := r.dialect.Placeholder
	q := `INSERT INTO audit_journal (id, type, event_id, session_id, actor_id, amount, message, metadata, created_at) VALUES (` +
		p(1) + `, ` + p(2) + `, ` + p(3) + `, ` + p(4) + `, ` + p(5) + `, ` + p(6) + `, ` + p(7) + `, ` + p(8) + `, ` + p(9) + `)`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, string(e.Type), e.EventID, e.SessionID, e.ActorID, e.Amount, e.Message, e.Metadata, e.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("audit: append: %w", err)
	}
	return nil
}

func (r *SQLRepo) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT id, type, event_id, session_id, actor_id, amount, message, metadata, created_at
FROM audit_journal ORDER BY created_at DESC, id DESC LIMIT ` + r.dialect.Placeholder(1)

	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: list: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e  Entry
			ty string
			ms int64
		)
		if err := rows.Scan(&e.ID, &ty, &e.EventID, &e.SessionID, &e.ActorID, &e.Amount, &e.Message, &e.Metadata, &ms); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		e.Type = EntryType(ty)
		e.CreatedAt = time.UnixMilli(ms).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
