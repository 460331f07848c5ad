package prescription

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/opticare/opticare/pkg/serial"
)

type mockRepo struct {
	prescriptions map[uuid.UUID]*Prescription
}

func newMockRepo() *mockRepo {
	return &mockRepo{prescriptions: make(map[uuid.UUID]*Prescription)}
}

func (m *mockRepo) Create(_ context.Context, p *Prescription) error {
	p.ID = uuid.New()
	if p.SerialNumber == "" {
		var serials []string
		for _, existing := range m.prescriptions {
			serials = append(serials, existing.SerialNumber)
		}
		next := serial.Next(serials, "")
		p.SerialNumber = serial.Format(next, "")
		p.ReceiptNumber = serial.Format(next, "R")
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.prescriptions[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Prescription, error) {
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) Update(_ context.Context, p *Prescription) error {
	if _, ok := m.prescriptions[p.ID]; !ok {
		return ErrNotFound
	}
	m.prescriptions[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.prescriptions[id]; !ok {
		return ErrNotFound
	}
	delete(m.prescriptions, id)
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	var result []*Prescription
	for _, p := range m.prescriptions {
		if p.PatientID == patientID {
			result = append(result, p)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) ListByDateRange(_ context.Context, from, to time.Time) ([]*Prescription, error) {
	var result []*Prescription
	for _, p := range m.prescriptions {
		if !p.CreatedAt.Before(from) && p.CreatedAt.Before(to) {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockRepo) Search(_ context.Context, _ map[string]string, limit, offset int) ([]*Prescription, int, error) {
	var result []*Prescription
	for _, p := range m.prescriptions {
		result = append(result, p)
	}
	return result, len(result), nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo), repo
}

func TestIssue_AssignsSerialAndReceipt(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first := &Prescription{PatientID: uuid.New()}
	if err := svc.Issue(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.SerialNumber != "0001" {
		t.Errorf("expected serial 0001, got %s", first.SerialNumber)
	}
	if first.ReceiptNumber != "R0001" {
		t.Errorf("expected receipt R0001, got %s", first.ReceiptNumber)
	}

	second := &Prescription{PatientID: uuid.New()}
	if err := svc.Issue(ctx, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.SerialNumber != "0002" || second.ReceiptNumber != "R0002" {
		t.Errorf("expected 0002/R0002, got %s/%s", second.SerialNumber, second.ReceiptNumber)
	}
}

func TestIssue_RequiresPatient(t *testing.T) {
	svc, _ := newTestService()
	if err := svc.Issue(context.Background(), &Prescription{}); err == nil {
		t.Error("expected error for missing patient id")
	}
}

func TestIssue_RejectsNegativeAmounts(t *testing.T) {
	svc, _ := newTestService()
	p := &Prescription{PatientID: uuid.New(), Discount: -5}
	if err := svc.Issue(context.Background(), p); err == nil {
		t.Error("expected error for negative discount")
	}
}

func TestUpdate_SerialImmutable(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := &Prescription{PatientID: uuid.New()}
	if err := svc.Issue(ctx, p); err != nil {
		t.Fatal(err)
	}

	edit := &Prescription{ID: p.ID, SerialNumber: "9999", ReceiptNumber: "R9999"}
	if err := svc.Update(ctx, edit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if edit.SerialNumber != "0001" || edit.ReceiptNumber != "R0001" {
		t.Errorf("expected stored numbers to win, got %s/%s", edit.SerialNumber, edit.ReceiptNumber)
	}
	if edit.PatientID != p.PatientID {
		t.Error("expected patient linkage unchanged")
	}
}

func TestTotal(t *testing.T) {
	p := &Prescription{AmountReceived: 500, AmountDue: 200, Discount: 50}
	if got := p.Total(); got != 650 {
		t.Errorf("expected 650, got %v", got)
	}
}

func TestPrescriptionLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	patientID := uuid.New()

	complaint := "blurred vision"
	p := &Prescription{PatientID: patientID, Complaint: &complaint, AmountReceived: 300}
	if err := svc.Issue(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Complaint == nil || *got.Complaint != "blurred vision" {
		t.Errorf("unexpected complaint: %v", got.Complaint)
	}

	items, total, err := svc.ListByPatient(ctx, patientID, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("expected one prescription, got %d", total)
	}

	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
