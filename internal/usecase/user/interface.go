package user

import (
	"context"

	domain "fitspace-backend/internal/domain/user"
)

// Usecase defines the interface for user business logic operations.
type Usecase interface {
	CreateUser(ctx context.Context, in CreateUserRequest) (*domain.User, error)
	GetUser(ctx context.Context, in GetUserRequest) (*domain.User, error)
	UpdateUser(ctx context.Context, in UpdateUserRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error)
	ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error)
	SearchUsers(ctx context.Context, in SearchUsersRequest) (*ListUsersResponse, error)
}

// Repository defines the interface for user data access operations.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)            // Insert and return the stored row
	GetByID(ctx context.Context, id int64) (*domain.User, error)                 // NotFoundError when missing
	GetByEmail(ctx context.Context, email string) (*domain.User, error)          // nil, nil when missing
	Update(ctx context.Context, id int64, p domain.Patch) (*domain.User, error)  // NotFoundError when missing
	Delete(ctx context.Context, id int64) error                                  // NotFoundError when missing
	List(ctx context.Context, f domain.ListFilter) ([]domain.User, int64, error) // Page of users plus total count
}
