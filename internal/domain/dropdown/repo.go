package dropdown

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("dropdown option not found")

type Repository interface {
	Create(ctx context.Context, o *Option) error
	// FindByValue matches field and value case-insensitively.
	FindByValue(ctx context.Context, field, value string) (*Option, error)
	ListByField(ctx context.Context, field string) ([]*Option, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
