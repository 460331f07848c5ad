package staff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/opticare/opticare/internal/platform/auth"
)

var (
	ErrLastAdmin          = errors.New("cannot remove the last administrator")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type Service struct {
	staff    Repository
	secret   []byte
	tokenTTL time.Duration
}

func NewService(staff Repository, secret []byte, tokenTTL time.Duration) *Service {
	return &Service{staff: staff, secret: secret, tokenTTL: tokenTTL}
}

func validPermissions(perms map[string]bool) error {
	known := make(map[string]bool, len(Modules))
	for _, m := range Modules {
		known[m] = true
	}
	for name := range perms {
		if !known[name] {
			return fmt.Errorf("unknown module: %s", name)
		}
	}
	return nil
}

// Create registers a staff account, hashing the given plaintext password.
func (s *Service) Create(ctx context.Context, st *Staff, password string) error {
	if st.Username == "" {
		return fmt.Errorf("username is required")
	}
	if st.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if err := validPermissions(st.Permissions); err != nil {
		return err
	}
	if st.Permissions == nil {
		st.Permissions = map[string]bool{}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	st.PasswordHash = string(hash)
	return s.staff.Create(ctx, st)
}

// Authenticate checks credentials and issues a session token. Failures are
// collapsed into ErrInvalidCredentials so callers cannot probe usernames.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Staff, string, error) {
	st, err := s.staff.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := auth.IssueToken(s.secret, &auth.Session{
		StaffID:     st.ID.String(),
		Username:    st.Username,
		Name:        st.Name,
		Admin:       st.Admin,
		Permissions: st.Permissions,
	}, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return st, token, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return s.staff.GetByID(ctx, id)
}

// Update applies account edits; an empty password keeps the stored hash.
// Demoting the last administrator is refused.
func (s *Service) Update(ctx context.Context, st *Staff, password string) error {
	if st.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := validPermissions(st.Permissions); err != nil {
		return err
	}
	existing, err := s.staff.GetByID(ctx, st.ID)
	if err != nil {
		return err
	}
	st.Username = existing.Username
	if existing.Admin && !st.Admin {
		n, err := s.staff.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if n <= 1 {
			return ErrLastAdmin
		}
	}
	if password == "" {
		st.PasswordHash = existing.PasswordHash
	} else {
		if len(password) < 6 {
			return fmt.Errorf("password must be at least 6 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		st.PasswordHash = string(hash)
	}
	if st.Permissions == nil {
		st.Permissions = existing.Permissions
	}
	return s.staff.Update(ctx, st)
}

// Delete removes an account, refusing to delete the last administrator.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	st, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if st.Admin {
		n, err := s.staff.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if n <= 1 {
			return ErrLastAdmin
		}
	}
	return s.staff.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Staff, int, error) {
	return s.staff.List(ctx, limit, offset)
}
