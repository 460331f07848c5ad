package operation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("operation not found")

type Repository interface {
	Create(ctx context.Context, o *Operation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Operation, error)
	Update(ctx context.Context, o *Operation) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Operation, int, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Operation, int, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*Operation, error)
}
