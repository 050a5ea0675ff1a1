package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/db"
)

type repoPG struct {
	db     db.Querier
	logger zerolog.Logger
}

func NewRepoPG(q db.Querier, logger zerolog.Logger) Repository {
	return &repoPG{db: q, logger: logger}
}

const contentCols = `id, category, content_type, title, description, url, tags, view_count, created_at`

func scanItem(row pgx.Row) (*Item, string, error) {
	var it Item
	var typ string
	err := row.Scan(&it.ID, &it.Category, &typ, &it.Title, &it.Description, &it.URL,
		&it.Tags, &it.ViewCount, &it.CreatedAt)
	return &it, typ, err
}

func (r *repoPG) ListByCategory(ctx context.Context, category string) ([]*Item, error) {
	rows, err := r.db.Query(ctx, `SELECT `+contentCols+` FROM content WHERE category = $1 ORDER BY created_at DESC`, category)
	if err != nil {
		return nil, fmt.Errorf("query content: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		it, typ, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		if it.Type, err = ParseContentType(typ); err != nil {
			r.logger.Warn().Str("content_id", it.ID.String()).Str("content_type", typ).Msg("skipping content with unknown type")
			continue
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content: %w", err)
	}
	return items, nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	it, typ, err := scanItem(r.db.QueryRow(ctx, `SELECT `+contentCols+` FROM content WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	if it.Type, err = ParseContentType(typ); err != nil {
		return nil, err
	}
	return it, nil
}
