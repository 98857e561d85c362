package repository

import (
	"context"

	"github.com/ulchatur/app/internal/domain"
)

// UpdateUserInput carries the optional fields of a partial update. Nil
// pointers mean "leave the column alone"; the implementation only writes
// the columns that are set.
type UpdateUserInput struct {
	Name  *string
	Email *string
}

// IsEmpty reports whether no updatable field is set.
func (in UpdateUserInput) IsEmpty() bool {
	return in.Name == nil && in.Email == nil
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, name, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, id int64, input UpdateUserInput) error
	DeleteUser(ctx context.Context, id int64) error
}
