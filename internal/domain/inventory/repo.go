package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("inventory item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type MedicineRepository interface {
	Create(ctx context.Context, m *Medicine) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error)
	Update(ctx context.Context, m *Medicine) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, status string, limit, offset int) ([]*Medicine, int, error)
	// Decrement removes qty units as a single conditional update. Returns
	// ErrInsufficientStock when fewer than qty units remain; the row is
	// flipped to out_of_stock when the count reaches zero.
	Decrement(ctx context.Context, id uuid.UUID, qty int) (*Medicine, error)
}

type OpticalRepository interface {
	Create(ctx context.Context, o *OpticalItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*OpticalItem, error)
	Update(ctx context.Context, o *OpticalItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, kind, status string, limit, offset int) ([]*OpticalItem, int, error)
	Decrement(ctx context.Context, id uuid.UUID, qty int) (*OpticalItem, error)
}

type DispenseRepository interface {
	Create(ctx context.Context, d *DispenseRecord) error
	List(ctx context.Context, kind string, limit, offset int) ([]*DispenseRecord, int, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*DispenseRecord, error)
}
