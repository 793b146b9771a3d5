package docstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bizdir/bizdir/internal/platform/db"
)

//go:embed schema.sql
var schemaSQL string

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type pool interface {
	dbtx
	db.TxStarter
}

// Postgres stores documents as JSONB rows keyed by (collection, id).
type Postgres struct {
	db pool
}

// NewPostgres wraps a pgx pool or connection.
func NewPostgres(conn pool) *Postgres {
	return &Postgres{db: conn}
}

// EnsureSchema creates the documents table when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("docstore: ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) Insert(ctx context.Context, collection, id string, doc []byte) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES ($1, $2, $3::jsonb, NOW(), NOW())`,
		collection, id, doc)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("docstore: insert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var raw []byte
	err := p.db.QueryRow(ctx, `SELECT data FROM documents WHERE collection = $1 AND id = $2`, collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("docstore: get %s/%s: %w", collection, id, err)
	}
	return raw, nil
}

func (p *Postgres) Replace(ctx context.Context, collection, id string, doc []byte) error {
	tag, err := p.db.Exec(ctx,
		`UPDATE documents SET data = $3::jsonb, updated_at = NOW() WHERE collection = $1 AND id = $2`,
		collection, id, doc)
	if err != nil {
		return fmt.Errorf("docstore: replace %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Update locks the row with SELECT ... FOR UPDATE so concurrent updates of the
// same document run one after the other, each seeing the previous result.
func (p *Postgres) Update(ctx context.Context, collection, id string, fn func([]byte) ([]byte, error)) error {
	return db.WithTxOptions(ctx, p.db, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		var raw []byte
		err := tx.QueryRow(ctx,
			`SELECT data FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE`,
			collection, id).Scan(&raw)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("docstore: lock %s/%s: %w", collection, id, err)
		}
		next, err := fn(raw)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE documents SET data = $3::jsonb, updated_at = NOW() WHERE collection = $1 AND id = $2`,
			collection, id, next); err != nil {
			return fmt.Errorf("docstore: update %s/%s: %w", collection, id, err)
		}
		return nil
	})
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("docstore: delete %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, collection string, q Query) ([][]byte, error) {
	_, filter, err := normalizeFilter(q.Filter)
	if err != nil {
		return nil, err
	}
	query := `SELECT data FROM documents WHERE collection = $1 AND data @> $2::jsonb ORDER BY created_at DESC, id DESC`
	args := []any{collection, filter}
	if q.Limit > 0 {
		query += ` LIMIT $3 OFFSET $4`
		args = append(args, q.Limit, max(q.Offset, 0))
	} else if q.Offset > 0 {
		query += ` OFFSET $3`
		args = append(args, q.Offset)
	}
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("docstore: list %s: %w", collection, err)
	}
	defer rows.Close()

	out := make([][]byte, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("docstore: scan %s: %w", collection, err)
		}
		out = append(out, raw)
	}
	return out, rows.Err()
}

func (p *Postgres) Count(ctx context.Context, collection string, filter map[string]any) (int, error) {
	_, raw, err := normalizeFilter(filter)
	if err != nil {
		return 0, err
	}
	var total int
	err = p.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE collection = $1 AND data @> $2::jsonb`, collection, raw).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("docstore: count %s: %w", collection, err)
	}
	return total, nil
}
