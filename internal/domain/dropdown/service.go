package dropdown

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrExists reports a case-insensitive duplicate on Add. The stored option is
// returned alongside so callers can treat the call as idempotent.
var ErrExists = errors.New("option already exists")

type Service struct {
	options Repository
}

func NewService(options Repository) *Service {
	return &Service{options: options}
}

// Add inserts a pick-list option unless an equal value (compared
// case-insensitively) already exists for the field. The existing option is
// returned with ErrExists in that case.
func (s *Service) Add(ctx context.Context, field, value string) (*Option, error) {
	field = strings.TrimSpace(field)
	value = strings.TrimSpace(value)
	if field == "" {
		return nil, fmt.Errorf("field is required")
	}
	if value == "" {
		return nil, fmt.Errorf("value is required")
	}
	existing, err := s.options.FindByValue(ctx, field, value)
	if err == nil {
		return existing, ErrExists
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	o := &Option{Field: field, Value: value}
	if err := s.options.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, field string) ([]*Option, error) {
	if field == "" {
		return nil, fmt.Errorf("field is required")
	}
	return s.options.ListByField(ctx, field)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.options.Delete(ctx, id)
}
