package patient

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/opticare/opticare/pkg/serial"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	if p.Number == "" {
		var numbers []string
		for _, existing := range m.patients {
			numbers = append(numbers, existing.Number)
		}
		p.Number = serial.Format(serial.Next(numbers, "P"), "P")
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetByNumber(_ context.Context, number string) (*Patient, error) {
	for _, p := range m.patients {
		if p.Number == number {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrNotFound
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.patients[id]; !ok {
		return ErrNotFound
	}
	delete(m.patients, id)
	return nil
}

func (m *mockRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		if name, ok := params["name"]; ok && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(name)) {
			continue
		}
		result = append(result, p)
	}
	total := len(result)
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockRepo) ListByDateRange(_ context.Context, from, to time.Time) ([]*Patient, error) {
	var result []*Patient
	for _, p := range m.patients {
		if !p.CreatedAt.Before(from) && p.CreatedAt.Before(to) {
			result = append(result, p)
		}
	}
	return result, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo), repo
}

func TestRegister_AssignsNumber(t *testing.T) {
	svc, _ := newTestService()

	p := &Patient{Name: "Jane Doe"}
	if err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Number != "P0001" {
		t.Errorf("expected P0001, got %s", p.Number)
	}

	second := &Patient{Name: "John Doe"}
	if err := svc.Register(context.Background(), second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Number != "P0002" {
		t.Errorf("expected P0002, got %s", second.Number)
	}
}

func TestRegister_KeepsProvidedNumber(t *testing.T) {
	svc, _ := newTestService()

	p := &Patient{Number: "P100", Name: "Jane Doe"}
	if err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Number != "P100" {
		t.Errorf("expected P100, got %s", p.Number)
	}
}

func TestRegister_RequiresName(t *testing.T) {
	svc, _ := newTestService()
	if err := svc.Register(context.Background(), &Patient{}); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestRegister_RejectsInvalidGender(t *testing.T) {
	svc, _ := newTestService()
	g := "unknown"
	if err := svc.Register(context.Background(), &Patient{Name: "X", Gender: &g}); err == nil {
		t.Error("expected error for invalid gender")
	}
}

func TestPatientLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := &Patient{Number: "P100", Name: "Jane Doe"}
	if err := svc.Register(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.GetByNumber(ctx, "P100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Jane Doe" {
		t.Errorf("expected Jane Doe, got %s", got.Name)
	}

	got.Name = "Jane Smith"
	if err := svc.Update(ctx, got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := svc.Get(ctx, got.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Jane Smith" {
		t.Errorf("expected Jane Smith, got %s", updated.Name)
	}
	if updated.Number != "P100" {
		t.Errorf("expected patient number unchanged, got %s", updated.Number)
	}

	if err := svc.Delete(ctx, got.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(ctx, got.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestUpdate_NumberImmutable(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := &Patient{Name: "Jane Doe"}
	if err := svc.Register(ctx, p); err != nil {
		t.Fatal(err)
	}

	edit := &Patient{ID: p.ID, Number: "P9999", Name: "Jane Doe"}
	if err := svc.Update(ctx, edit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if edit.Number != "P0001" {
		t.Errorf("expected stored number to win, got %s", edit.Number)
	}
}

func TestEffectiveAge(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	age := 42
	p := &Patient{Age: &age}
	if got := p.EffectiveAge(now); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}

	dob := time.Date(1990, 7, 15, 0, 0, 0, 0, time.UTC)
	p = &Patient{BirthDate: &dob}
	if got := p.EffectiveAge(now); got != 34 {
		t.Errorf("expected 34, got %d", got)
	}

	p = &Patient{}
	if got := p.EffectiveAge(now); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}
