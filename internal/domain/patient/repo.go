package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no patient matches the given identifier.
var ErrNotFound = errors.New("patient not found")

type Repository interface {
	// Create stores a new patient. When p.Number is empty the repository
	// assigns the next patient number atomically.
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByNumber(ctx context.Context, number string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Search filters by name/phone/patient number (case-insensitive pattern
	// match) with pagination; returns the page and the total match count.
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*Patient, error)
}
