package staff

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	staff map[uuid.UUID]*Staff
}

func newMockRepo() *mockRepo {
	return &mockRepo{staff: make(map[uuid.UUID]*Staff)}
}

func (m *mockRepo) Create(_ context.Context, s *Staff) error {
	for _, existing := range m.staff {
		if existing.Username == s.Username {
			return ErrDuplicate
		}
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()
	m.staff[s.ID] = s
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Staff, error) {
	s, ok := m.staff[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *mockRepo) GetByUsername(_ context.Context, username string) (*Staff, error) {
	for _, s := range m.staff {
		if s.Username == username {
			copied := *s
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, s *Staff) error {
	if _, ok := m.staff[s.ID]; !ok {
		return ErrNotFound
	}
	m.staff[s.ID] = s
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.staff[id]; !ok {
		return ErrNotFound
	}
	delete(m.staff, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Staff, int, error) {
	var result []*Staff
	for _, s := range m.staff {
		result = append(result, s)
	}
	return result, len(result), nil
}

func (m *mockRepo) CountAdmins(_ context.Context) (int, error) {
	n := 0
	for _, s := range m.staff {
		if s.Admin {
			n++
		}
	}
	return n, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, []byte("test-secret"), time.Hour), repo
}

func TestCreateAndAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	st := &Staff{Username: "reception", Name: "Front Desk", Permissions: map[string]bool{"patients": true}}
	if err := svc.Create(ctx, st, "s3cret!"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.PasswordHash == "" || st.PasswordHash == "s3cret!" {
		t.Error("expected password to be hashed")
	}

	got, token, err := svc.Authenticate(ctx, "reception", "s3cret!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Error("expected a session token")
	}
	if got.Username != "reception" {
		t.Errorf("unexpected staff: %+v", got)
	}

	if _, _, err := svc.Authenticate(ctx, "reception", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Authenticate(ctx, "nobody", "s3cret!"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestCreate_RejectsShortPassword(t *testing.T) {
	svc, _ := newTestService()
	st := &Staff{Username: "x", Name: "X"}
	if err := svc.Create(context.Background(), st, "abc"); err == nil {
		t.Error("expected error for short password")
	}
}

func TestCreate_RejectsUnknownModule(t *testing.T) {
	svc, _ := newTestService()
	st := &Staff{Username: "x", Name: "X", Permissions: map[string]bool{"billing": true}}
	if err := svc.Create(context.Background(), st, "s3cret!"); err == nil {
		t.Error("expected error for unknown permission module")
	}
}

func TestDelete_LastAdminGuard(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	admin := &Staff{Username: "admin", Name: "Admin", Admin: true}
	if err := svc.Create(ctx, admin, "s3cret!"); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, admin.ID); err != ErrLastAdmin {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}
	if _, err := repo.GetByID(ctx, admin.ID); err != nil {
		t.Error("expected admin account to remain after refused delete")
	}

	second := &Staff{Username: "admin2", Name: "Second Admin", Admin: true}
	if err := svc.Create(ctx, second, "s3cret!"); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, admin.ID); err != nil {
		t.Fatalf("expected delete to succeed with two admins, got %v", err)
	}
	if err := svc.Delete(ctx, second.ID); err != ErrLastAdmin {
		t.Errorf("expected ErrLastAdmin for the remaining admin, got %v", err)
	}
}

func TestUpdate_LastAdminDemotionGuard(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	admin := &Staff{Username: "admin", Name: "Admin", Admin: true}
	if err := svc.Create(ctx, admin, "s3cret!"); err != nil {
		t.Fatal(err)
	}

	edit := &Staff{ID: admin.ID, Name: "Admin", Admin: false}
	if err := svc.Update(ctx, edit, ""); err != ErrLastAdmin {
		t.Errorf("expected ErrLastAdmin on demotion, got %v", err)
	}
}

func TestUpdate_KeepsPasswordWhenEmpty(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	st := &Staff{Username: "reception", Name: "Front Desk"}
	if err := svc.Create(ctx, st, "s3cret!"); err != nil {
		t.Fatal(err)
	}

	edit := &Staff{ID: st.ID, Name: "Reception"}
	if err := svc.Update(ctx, edit, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := svc.Authenticate(ctx, "reception", "s3cret!"); err != nil {
		t.Errorf("expected old password to still work, got %v", err)
	}
}

func TestCreate_DuplicateUsername(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.Create(ctx, &Staff{Username: "dup", Name: "A"}, "s3cret!"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Create(ctx, &Staff{Username: "dup", Name: "B"}, "s3cret!"); err != ErrDuplicate {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}
