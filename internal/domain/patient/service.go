package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

var validGenders = map[string]bool{
	"male": true, "female": true, "other": true,
}

// Register stores a new patient. The patient number is assigned by the
// repository when absent; a caller-supplied number is kept as-is for records
// migrated from older installations.
func (s *Service) Register(ctx context.Context, p *Patient) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Gender != nil && !validGenders[*p.Gender] {
		return fmt.Errorf("invalid gender: %s", *p.Gender)
	}
	if p.Age != nil && (*p.Age < 0 || *p.Age > 150) {
		return fmt.Errorf("invalid age: %d", *p.Age)
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*Patient, error) {
	if number == "" {
		return nil, fmt.Errorf("patient number is required")
	}
	return s.patients.GetByNumber(ctx, number)
}

// Update applies administrative edits. The patient number is immutable; the
// stored number always wins over whatever the caller sent.
func (s *Service) Update(ctx context.Context, p *Patient) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Gender != nil && !validGenders[*p.Gender] {
		return fmt.Errorf("invalid gender: %s", *p.Gender)
	}
	existing, err := s.patients.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Number = existing.Number
	return s.patients.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	return s.patients.Search(ctx, params, limit, offset)
}

func (s *Service) ListByDateRange(ctx context.Context, from, to time.Time) ([]*Patient, error) {
	return s.patients.ListByDateRange(ctx, from, to)
}
