package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opticare/opticare/internal/platform/auth"
)

// dispensedBy names the staff member behind the request, empty when the
// context carries no session.
func dispensedBy(ctx context.Context) string {
	if s := auth.FromContext(ctx); s != nil {
		return s.Username
	}
	return ""
}

// TxRunner runs fn inside a transaction boundary. Production wiring passes
// db.WithTx over the pool; tests pass a straight call-through.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	medicines MedicineRepository
	opticals  OpticalRepository
	dispenses DispenseRepository
	inTx      TxRunner
}

func NewService(medicines MedicineRepository, opticals OpticalRepository, dispenses DispenseRepository, inTx TxRunner) *Service {
	return &Service{medicines: medicines, opticals: opticals, dispenses: dispenses, inTx: inTx}
}

// --- medicines ---

func (s *Service) AddMedicine(ctx context.Context, m *Medicine) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}
	if m.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if m.Quantity == 0 {
		m.Status = StatusOutOfStock
	} else {
		m.Status = StatusAvailable
	}
	return s.medicines.Create(ctx, m)
}

func (s *Service) GetMedicine(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return s.medicines.GetByID(ctx, id)
}

func (s *Service) UpdateMedicine(ctx context.Context, m *Medicine) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.Quantity < 0 || m.Price < 0 {
		return fmt.Errorf("quantity and price must not be negative")
	}
	if m.Quantity == 0 {
		m.Status = StatusOutOfStock
	} else {
		m.Status = StatusAvailable
	}
	return s.medicines.Update(ctx, m)
}

func (s *Service) DeleteMedicine(ctx context.Context, id uuid.UUID) error {
	return s.medicines.Delete(ctx, id)
}

func (s *Service) ListMedicines(ctx context.Context, status string, limit, offset int) ([]*Medicine, int, error) {
	return s.medicines.List(ctx, status, limit, offset)
}

// --- opticals ---

var validKinds = map[string]bool{
	"frame": true, "lens": true,
}

func (s *Service) AddOptical(ctx context.Context, o *OpticalItem) error {
	if o.Brand == "" {
		return fmt.Errorf("brand is required")
	}
	if !validKinds[o.Kind] {
		return fmt.Errorf("invalid kind: %s", o.Kind)
	}
	if o.Quantity < 0 || o.Price < 0 {
		return fmt.Errorf("quantity and price must not be negative")
	}
	if o.Quantity == 0 {
		o.Status = StatusOutOfStock
	} else {
		o.Status = StatusAvailable
	}
	return s.opticals.Create(ctx, o)
}

func (s *Service) GetOptical(ctx context.Context, id uuid.UUID) (*OpticalItem, error) {
	return s.opticals.GetByID(ctx, id)
}

func (s *Service) UpdateOptical(ctx context.Context, o *OpticalItem) error {
	if o.Brand == "" {
		return fmt.Errorf("brand is required")
	}
	if !validKinds[o.Kind] {
		return fmt.Errorf("invalid kind: %s", o.Kind)
	}
	if o.Quantity < 0 || o.Price < 0 {
		return fmt.Errorf("quantity and price must not be negative")
	}
	if o.Quantity == 0 {
		o.Status = StatusOutOfStock
	} else {
		o.Status = StatusAvailable
	}
	return s.opticals.Update(ctx, o)
}

func (s *Service) DeleteOptical(ctx context.Context, id uuid.UUID) error {
	return s.opticals.Delete(ctx, id)
}

func (s *Service) ListOpticals(ctx context.Context, kind, status string, limit, offset int) ([]*OpticalItem, int, error) {
	return s.opticals.List(ctx, kind, status, limit, offset)
}

// --- dispensing ---

// DispenseMedicine removes qty units of a medicine and logs the transaction.
// The decrement and the log insert share one transaction, so a failed log
// leaves the stock untouched.
func (s *Service) DispenseMedicine(ctx context.Context, itemID uuid.UUID, patientID *uuid.UUID, qty int) (*DispenseRecord, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	var record *DispenseRecord
	err := s.inTx(ctx, func(txCtx context.Context) error {
		m, err := s.medicines.Decrement(txCtx, itemID, qty)
		if err != nil {
			return err
		}
		record = &DispenseRecord{
			ItemID:      m.ID,
			ItemKind:    KindMedicine,
			ItemName:    m.Name,
			PatientID:   patientID,
			Quantity:    qty,
			UnitPrice:   m.Price,
			Total:       m.Price * float64(qty),
			DispensedBy: dispensedBy(ctx),
		}
		return s.dispenses.Create(txCtx, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// DispenseOptical mirrors DispenseMedicine for frames and lenses.
func (s *Service) DispenseOptical(ctx context.Context, itemID uuid.UUID, patientID *uuid.UUID, qty int) (*DispenseRecord, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	var record *DispenseRecord
	err := s.inTx(ctx, func(txCtx context.Context) error {
		o, err := s.opticals.Decrement(txCtx, itemID, qty)
		if err != nil {
			return err
		}
		name := o.Brand
		if o.Model != nil {
			name += " " + *o.Model
		}
		record = &DispenseRecord{
			ItemID:      o.ID,
			ItemKind:    KindOptical,
			ItemName:    name,
			PatientID:   patientID,
			Quantity:    qty,
			UnitPrice:   o.Price,
			Total:       o.Price * float64(qty),
			DispensedBy: dispensedBy(ctx),
		}
		return s.dispenses.Create(txCtx, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) ListDispenses(ctx context.Context, kind string, limit, offset int) ([]*DispenseRecord, int, error) {
	return s.dispenses.List(ctx, kind, limit, offset)
}

func (s *Service) ListDispensesByDateRange(ctx context.Context, from, to time.Time) ([]*DispenseRecord, error) {
	return s.dispenses.ListByDateRange(ctx, from, to)
}
