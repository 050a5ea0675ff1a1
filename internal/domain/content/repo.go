package content

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("content not found")

// Repository is the content-fetch collaborator: it returns a category's
// records, and the service filters and sorts them in memory.
type Repository interface {
	ListByCategory(ctx context.Context, category string) ([]*Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
}
