// Package sqlstore implements storage.Driver over database/sql. The sqlite
// and postgres packages open the connection and pick the Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/papercomputeco/mealprep/pkg/storage"
)

// Dialect covers the differences between the supported databases.
type Dialect struct {
	Name string

	// Numbered placeholders ($1, $2) instead of "?".
	Numbered bool

	// Schema is executed once when the store is opened.
	Schema []string
}

var SQLite = Dialect{
	Name: "sqlite",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			text TEXT NOT NULL,
			is_user BOOLEAN NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS messages_session_idx ON messages (session_id, id)`,
		`CREATE TABLE IF NOT EXISTS plans (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			markdown TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS plans_session_idx ON plans (session_id, id)`,
	},
}

var Postgres = Dialect{
	Name:     "postgres",
	Numbered: true,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			text TEXT NOT NULL,
			is_user BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS messages_session_idx ON messages (session_id, id)`,
		`CREATE TABLE IF NOT EXISTS plans (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			markdown TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS plans_session_idx ON plans (session_id, id)`,
	},
}

// Store implements storage.Driver on a *sql.DB.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New creates the schema and returns a Store owning db.
func New(ctx context.Context, db *sql.DB, d Dialect) (*Store, error) {
	for _, stmt := range d.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return &Store{db: db, dialect: d}, nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// rebind rewrites "?" placeholders for dialects that number them.
func (s *Store) rebind(query string) string {
	if !s.dialect.Numbered {
		return query
	}

	var (
		b strings.Builder
		n int
	)
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// insert runs an INSERT and returns the new id. Postgres has no
// LastInsertId, so both dialects use RETURNING.
func (s *Store) insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := s.db.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) SaveMessage(ctx context.Context, msg *storage.Message) error {
	if msg == nil {
		return errors.New("cannot store nil message")
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	id, err := s.insert(ctx,
		`INSERT INTO messages (session_id, text, is_user, created_at) VALUES (?, ?, ?, ?)`,
		msg.SessionID, msg.Text, msg.IsUser, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	msg.ID = id
	return nil
}

func (s *Store) Messages(ctx context.Context, sessionID string) ([]*storage.Message, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, session_id, text, is_user, created_at FROM messages WHERE session_id = ? ORDER BY id`,
	), sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var out []*storage.Message
	for rows.Next() {
		m := &storage.Message{}
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Text, &m.IsUser, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) SavePlan(ctx context.Context, plan *storage.Plan) error {
	if plan == nil {
		return errors.New("cannot store nil plan")
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}

	id, err := s.insert(ctx,
		`INSERT INTO plans (session_id, user_id, markdown, created_at) VALUES (?, ?, ?, ?)`,
		plan.SessionID, plan.UserID, plan.Markdown, plan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting plan: %w", err)
	}
	plan.ID = id
	return nil
}

const planColumns = `id, session_id, user_id, markdown, created_at`

func (s *Store) LatestPlan(ctx context.Context, sessionID string) (*storage.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans ORDER BY id DESC LIMIT 1`
	args := []any{}
	if sessionID != "" {
		query = `SELECT ` + planColumns + ` FROM plans WHERE session_id = ? ORDER BY id DESC LIMIT 1`
		args = append(args, sessionID)
	}

	p := &storage.Plan{}
	err := s.db.QueryRowContext(ctx, s.rebind(query), args...).
		Scan(&p.ID, &p.SessionID, &p.UserID, &p.Markdown, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{What: "plan", Key: sessionID}
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest plan: %w", err)
	}
	return p, nil
}

func (s *Store) ListPlans(ctx context.Context, limit int) ([]*storage.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	var out []*storage.Plan
	for rows.Next() {
		p := &storage.Plan{}
		if err := rows.Scan(&p.ID, &p.SessionID, &p.UserID, &p.Markdown, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
