package prescription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	prescriptions Repository
}

func NewService(prescriptions Repository) *Service {
	return &Service{prescriptions: prescriptions}
}

// Issue stores a new prescription. Serial and receipt numbers are assigned by
// the repository when absent; caller-supplied numbers are kept as-is for
// records migrated from older installations.
func (s *Service) Issue(ctx context.Context, p *Prescription) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.AmountReceived < 0 || p.AmountDue < 0 || p.Discount < 0 {
		return fmt.Errorf("amounts must not be negative")
	}
	return s.prescriptions.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.prescriptions.GetByID(ctx, id)
}

// Update applies edits to a prescription. Serial and receipt numbers are
// immutable; the stored values always win over whatever the caller sent.
func (s *Service) Update(ctx context.Context, p *Prescription) error {
	if p.AmountReceived < 0 || p.AmountDue < 0 || p.Discount < 0 {
		return fmt.Errorf("amounts must not be negative")
	}
	existing, err := s.prescriptions.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.SerialNumber = existing.SerialNumber
	p.ReceiptNumber = existing.ReceiptNumber
	p.PatientID = existing.PatientID
	return s.prescriptions.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.prescriptions.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.Search(ctx, params, limit, offset)
}

func (s *Service) ListByDateRange(ctx context.Context, from, to time.Time) ([]*Prescription, error) {
	return s.prescriptions.ListByDateRange(ctx, from, to)
}
