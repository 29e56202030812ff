package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

// ChangeChannel is the NOTIFY channel fed by the documents trigger; the
// payload is the collection name.
const ChangeChannel = "docstore_changes"

// PostgresBackend keeps every collection in one JSONB table.
type PostgresBackend struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	now    func() time.Time
}

// NewPostgresBackend uses a pool whose schema was prepared by the migrations.
func NewPostgresBackend(pool *pgxpool.Pool, logger *zap.Logger) *PostgresBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresBackend{pool: pool, logger: logger, now: time.Now}
}

func (p *PostgresBackend) Insert(ctx context.Context, collection, id string, data Document) error {
	doc := data.Clone()
	ts := FormatTime(p.now())
	doc[FieldCreatedAt] = ts
	doc[FieldUpdatedAt] = ts
	raw, err := json.Marshal(doc)
	if err != nil {
		return errorutil.NewInternalError(err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
	`, collection, id, raw)
	return classifyPostgres(err, collection, id)
}

func (p *PostgresBackend) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx, `
		SELECT data FROM documents WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&raw)
	if err != nil {
		return nil, classifyPostgres(err, collection, id)
	}
	return decodeRow(id, raw)
}

// listQuery builds the List statement. A missing field sorts lowest in both
// directions, matching CompareValues, and ties fall back to id.
func listQuery(collection string, opts ListOptions) (string, []any) {
	query := `SELECT id, data FROM documents WHERE collection = $1`
	args := []any{collection}
	if opts.OrderBy != nil && opts.OrderBy.Field != "" {
		order := "ASC NULLS FIRST"
		if opts.OrderBy.Direction == Desc {
			order = "DESC NULLS LAST"
		}
		args = append(args, opts.OrderBy.Field)
		query += fmt.Sprintf(" ORDER BY data -> $2::text %s, id", order)
	} else {
		query += " ORDER BY id"
	}
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return query, args
}

func (p *PostgresBackend) List(ctx context.Context, collection string, opts ListOptions) ([]Document, error) {
	query, args := listQuery(collection, opts)
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classifyPostgres(err, collection, "")
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, classifyPostgres(err, collection, "")
		}
		doc, err := decodeRow(id, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPostgres(err, collection, "")
	}
	return docs, nil
}

func (p *PostgresBackend) Update(ctx context.Context, collection, id string, partial Document) error {
	return p.withRow(ctx, collection, id, func(doc Document, exists bool) (Document, error) {
		if !exists {
			return nil, errorutil.NewNotFound("document", map[string]any{"collection": collection, "id": id})
		}
		applyPartial(doc, partial)
		doc[FieldUpdatedAt] = FormatTime(p.now())
		return doc, nil
	})
}

func (p *PostgresBackend) Set(ctx context.Context, collection, id string, data Document, opts SetOptions) error {
	return p.withRow(ctx, collection, id, func(doc Document, exists bool) (Document, error) {
		if opts.Merge && exists {
			applyPartial(doc, data)
		} else {
			doc = Document{}
			applyPartial(doc, data)
		}
		if opts.Touch {
			ts := FormatTime(p.now())
			doc[FieldUpdatedAt] = ts
			if _, ok := doc[FieldCreatedAt]; !ok && !exists {
				doc[FieldCreatedAt] = ts
			}
		}
		return doc, nil
	})
}

// withRow runs a locked read-modify-write of one record.
func (p *PostgresBackend) withRow(ctx context.Context, collection, id string, fn func(doc Document, exists bool) (Document, error)) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return classifyPostgres(err, collection, id)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var raw []byte
	exists := true
	err = tx.QueryRow(ctx, `
		SELECT data FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE
	`, collection, id).Scan(&raw)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		exists = false
	case err != nil:
		return classifyPostgres(err, collection, id)
	}

	doc := Document{}
	if exists {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return errorutil.NewInternalError(fmt.Errorf("decode %s/%s: %w", collection, id, err))
		}
	}
	next, err := fn(doc, exists)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(next)
	if err != nil {
		return errorutil.NewInternalError(err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, collection, id, encoded)
	if err != nil {
		return classifyPostgres(err, collection, id)
	}
	return classifyPostgres(tx.Commit(ctx), collection, id)
}

func (p *PostgresBackend) Delete(ctx context.Context, collection, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	return classifyPostgres(err, collection, id)
}

// BatchDelete removes every id in one statement inside a transaction.
func (p *PostgresBackend) BatchDelete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return classifyPostgres(err, collection, "")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = ANY($2)`, collection, ids); err != nil {
		return classifyPostgres(err, collection, "")
	}
	return classifyPostgres(tx.Commit(ctx), collection, "")
}

func (p *PostgresBackend) Ping(ctx context.Context) error {
	return classifyPostgres(p.pool.Ping(ctx), "", "")
}

// Watch holds a dedicated connection listening on ChangeChannel.
func (p *PostgresBackend) Watch(ctx context.Context, collection string) (<-chan struct{}, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, classifyPostgres(err, collection, "")
	}
	if _, err := conn.Exec(ctx, "LISTEN "+ChangeChannel); err != nil {
		conn.Release()
		return nil, classifyPostgres(err, collection, "")
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer func() {
			cleanup, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := conn.Exec(cleanup, "UNLISTEN "+ChangeChannel); err != nil {
				conn.Hijack().Close(cleanup) //nolint:errcheck
				return
			}
			conn.Release()
		}()
		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					p.logger.Warn("listen stopped", zap.String("collection", collection), zap.Error(err))
				}
				return
			}
			if n.Payload != collection {
				continue
			}
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}()
	return ch, nil
}

func decodeRow(id string, raw []byte) (Document, error) {
	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errorutil.NewInternalError(fmt.Errorf("decode %s: %w", id, err))
	}
	doc[FieldID] = id
	return doc, nil
}

func classifyPostgres(err error, collection, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errorutil.NewNotFound("document", map[string]any{"collection": collection, "id": id})
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return errorutil.NewConflict("already-exists", "document already exists")
		}
		return errorutil.NewInternalError(fmt.Errorf("postgres %s: %w", collection, err))
	}
	var connErr *pgconn.ConnectError
	var netErr net.Error
	if pgconn.Timeout(err) || errors.As(err, &connErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errorutil.NewUnavailable(err)
	}
	return errorutil.NewInternalError(fmt.Errorf("postgres %s: %w", collection, err))
}
