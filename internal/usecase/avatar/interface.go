package avatar

import (
	"context"

	domain "fitspace-backend/internal/domain/avatar"
	"fitspace-backend/internal/domain/user"
)

// Usecase defines the avatar operations, always scoped to one user.
type Usecase interface {
	ListAvatars(ctx context.Context, userID int64) ([]domain.Avatar, error)
	GetAvatar(ctx context.Context, userID, avatarID int64) (*domain.Avatar, error)
	CreateAvatar(ctx context.Context, in CreateAvatarRequest) (*domain.Avatar, error)
	UpdateAvatar(ctx context.Context, in UpdateAvatarRequest) (*domain.Avatar, error)
	DeleteAvatar(ctx context.Context, userID, avatarID int64) error
}

// Repository defines the avatar data access operations.
type Repository interface {
	ListForUser(ctx context.Context, userID int64) ([]domain.Avatar, error)
	Get(ctx context.Context, userID, avatarID int64) (*domain.Avatar, error)
	Create(ctx context.Context, a *domain.Avatar) (*domain.Avatar, error)
	Update(ctx context.Context, userID, avatarID int64, p domain.Patch) (*domain.Avatar, error)
	Delete(ctx context.Context, userID, avatarID int64) error
}

// UserLookup confirms that the owning user exists.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}
