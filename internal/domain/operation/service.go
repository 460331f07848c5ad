package operation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	operations Repository
}

func NewService(operations Repository) *Service {
	return &Service{operations: operations}
}

// Admit opens an in-patient record. Admission time defaults to now and the
// record starts in the admitted state.
func (s *Service) Admit(ctx context.Context, o *Operation) error {
	if o.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if o.Total < 0 {
		return fmt.Errorf("total must not be negative")
	}
	if o.AdmittedAt.IsZero() {
		o.AdmittedAt = time.Now()
	}
	o.Status = StatusAdmitted
	o.DischargedAt = nil
	return s.operations.Create(ctx, o)
}

// Discharge closes the stay: sets the discharge timestamp and flips the
// status. Discharging an already-discharged record is an error.
func (s *Service) Discharge(ctx context.Context, id uuid.UUID, at time.Time) (*Operation, error) {
	o, err := s.operations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == StatusDischarged {
		return nil, fmt.Errorf("operation already discharged")
	}
	if at.IsZero() {
		at = time.Now()
	}
	if at.Before(o.AdmittedAt) {
		return nil, fmt.Errorf("discharge time precedes admission")
	}
	o.Status = StatusDischarged
	o.DischargedAt = &at
	if err := s.operations.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Operation, error) {
	return s.operations.GetByID(ctx, id)
}

// Update applies edits to clinical and billing fields. Lifecycle fields are
// owned by Admit and Discharge; the stored status and timestamps win.
func (s *Service) Update(ctx context.Context, o *Operation) error {
	if o.Total < 0 {
		return fmt.Errorf("total must not be negative")
	}
	existing, err := s.operations.GetByID(ctx, o.ID)
	if err != nil {
		return err
	}
	o.PatientID = existing.PatientID
	o.Status = existing.Status
	o.AdmittedAt = existing.AdmittedAt
	o.DischargedAt = existing.DischargedAt
	return s.operations.Update(ctx, o)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.operations.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Operation, int, error) {
	return s.operations.ListByPatient(ctx, patientID, limit, offset)
}

var validStatuses = map[string]bool{
	StatusAdmitted: true, StatusDischarged: true,
}

func (s *Service) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Operation, int, error) {
	if !validStatuses[status] {
		return nil, 0, fmt.Errorf("invalid status: %s", status)
	}
	return s.operations.ListByStatus(ctx, status, limit, offset)
}

func (s *Service) ListByDateRange(ctx context.Context, from, to time.Time) ([]*Operation, error) {
	return s.operations.ListByDateRange(ctx, from, to)
}
