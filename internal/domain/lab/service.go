package lab

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	records Repository
}

func NewService(records Repository) *Service {
	return &Service{records: records}
}

var validTypes = map[string]bool{
	TypeRegular: true, TypePackage: true,
}

func (s *Service) validate(r *Record) error {
	if r.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if !validTypes[r.Type] {
		return fmt.Errorf("invalid type: %s", r.Type)
	}
	if len(r.Tests) > MaxTests {
		return fmt.Errorf("at most %d tests per record", MaxTests)
	}
	for i, t := range r.Tests {
		if t.Name == "" {
			return fmt.Errorf("test %d: name is required", i+1)
		}
		if t.Amount < 0 {
			return fmt.Errorf("test %d: amount must not be negative", i+1)
		}
	}
	if r.PackagePrice < 0 || r.AmountReceived < 0 || r.Discount < 0 {
		return fmt.Errorf("amounts must not be negative")
	}
	return nil
}

func (s *Service) Add(ctx context.Context, r *Record) error {
	if err := s.validate(r); err != nil {
		return err
	}
	return s.records.Create(ctx, r)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.records.GetByID(ctx, id)
}

// Update applies edits. Patient linkage is immutable.
func (s *Service) Update(ctx context.Context, r *Record) error {
	existing, err := s.records.GetByID(ctx, r.ID)
	if err != nil {
		return err
	}
	r.PatientID = existing.PatientID
	if err := s.validate(r); err != nil {
		return err
	}
	return s.records.Update(ctx, r)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.records.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	return s.records.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDateRange(ctx context.Context, from, to time.Time) ([]*Record, error) {
	return s.records.ListByDateRange(ctx, from, to)
}
