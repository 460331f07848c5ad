package prescription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("prescription not found")

type Repository interface {
	// Create stores a new prescription. When SerialNumber is empty the
	// repository allocates the next serial and receipt number atomically.
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*Prescription, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Prescription, int, error)
}
