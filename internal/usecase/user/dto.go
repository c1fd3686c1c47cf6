package user

import (
	domain "fitspace-backend/internal/domain/user"
	"fitspace-backend/pkg/optional"
)

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	Name  string  `json:"name" validate:"required,min=2,max=100"`
	Email string  `json:"email" validate:"required,email,max=255"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
	Bio   *string `json:"bio" validate:"omitempty,max=500"`
}

// UpdateUserRequest represents a partial update. Fields that are not Set
// are left unchanged; phone and bio may be cleared with null.
type UpdateUserRequest struct {
	ID    int64
	Name  optional.Value[string]
	Email optional.Value[string]
	Phone optional.Value[string]
	Bio   optional.Value[string]
}

// updateFields is the validated view of the fields an update writes.
type updateFields struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
	Bio   *string `json:"bio" validate:"omitempty,max=500"`
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID int64
}

// DeleteUserResponse represents the response payload after deleting a user.
type DeleteUserResponse struct {
	ID int64 `json:"id"`
}

// ListUsersRequest represents the request payload for listing users.
// Offset, when given, takes precedence over Page. A zero Limit selects the default.
type ListUsersRequest struct {
	Search string
	Page   int64
	Offset *int64
	Limit  int64
}

// SearchUsersRequest represents the request payload for the search endpoint.
// Query is mandatory.
type SearchUsersRequest struct {
	Query  string
	Page   int64
	Offset *int64
	Limit  int64
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users      []domain.User
	Pagination *domain.Pagination
}
