package staff

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("staff not found")
	ErrDuplicate = errors.New("username already taken")
)

type Repository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	GetByUsername(ctx context.Context, username string) (*Staff, error)
	Update(ctx context.Context, s *Staff) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Staff, int, error)
	CountAdmins(ctx context.Context) (int, error)
}
