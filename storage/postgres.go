package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/electr1fy0/bluenote/notes"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const schema = `
CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres stores notes in a single table through pgx's database/sql driver.
type Postgres struct {
	db *sql.DB

	stmtUpdate *sql.Stmt
	stmtDelete *sql.Stmt
}

var _ notes.Repository = (*Postgres)(nil)

func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	p, err := newPostgres(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}

func newPostgres(ctx context.Context, db *sql.DB) (*Postgres, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, err
	}

	upd, err := db.PrepareContext(ctx, `
		UPDATE notes
		SET title = $1, content = $2
		WHERE id = $3
		RETURNING id, title, content, created_at
	`)
	if err != nil {
		return nil, err
	}
	del, err := db.PrepareContext(ctx, `DELETE FROM notes WHERE id = $1`)
	if err != nil {
		_ = upd.Close()
		return nil, err
	}

	return &Postgres{db: db, stmtUpdate: upd, stmtDelete: del}, nil
}

func (p *Postgres) Close() error {
	for _, s := range []*sql.Stmt{p.stmtUpdate, p.stmtDelete} {
		if s != nil {
			_ = s.Close()
		}
	}
	return p.db.Close()
}

func (p *Postgres) List(ctx context.Context) ([]notes.Note, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, title, content, created_at
		FROM notes
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notes.Note, 0, 32)
	for rows.Next() {
		var n notes.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (p *Postgres) Create(ctx context.Context, title, content string) (notes.Note, error) {
	if err := checkFields(title, content); err != nil {
		return notes.Note{}, err
	}
	var n notes.Note
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO notes (id, title, content) VALUES ($1, $2, $3)
		RETURNING id, title, content, created_at
	`, uuid.NewString(), title, content).Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt)
	return n, err
}

func (p *Postgres) Update(ctx context.Context, id, title, content string) (notes.Note, error) {
	if err := checkFields(title, content); err != nil {
		return notes.Note{}, err
	}
	var n notes.Note
	err := p.stmtUpdate.QueryRowContext(ctx, title, content, id).Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return notes.Note{}, notes.ErrNotFound
	}
	return n, err
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	res, err := p.stmtDelete.ExecContext(ctx, id)
	if err != nil {
		return err
	}
	if a, _ := res.RowsAffected(); a == 0 {
		return notes.ErrNotFound
	}
	return nil
}
