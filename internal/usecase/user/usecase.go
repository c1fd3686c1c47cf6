package user

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	domain "fitspace-backend/internal/domain/user"
	"fitspace-backend/internal/usecase/validate"
	apperrors "fitspace-backend/pkg/errors"
	"fitspace-backend/pkg/optional"
	"fitspace-backend/pkg/security"
)

var userMessages = validate.Messages{
	"name":  "Name must be between 2 and 100 characters",
	"email": "Invalid email format",
	"phone": "Phone number too long",
	"bio":   "Bio must be less than 500 characters",
}

// Limits are the listing page sizes.
type Limits struct {
	DefaultLimit       int64
	SearchDefaultLimit int64
	MaxLimit           int64
}

// DefaultLimits returns the page sizes used when none are configured.
func DefaultLimits() Limits {
	return Limits{DefaultLimit: 10, SearchDefaultLimit: 20, MaxLimit: 100}
}

// Service implements the business logic for user management operations.
// It provides a clean separation between the transport layer and data layer.
type Service struct {
	repo     Repository          // Repository for data access
	log      *zap.Logger         // Logger for structured logging
	validate *validate.Validator // Validator for request validation
	limits   Limits
}

// New creates a new user Service.
func New(r Repository, log *zap.Logger, limits Limits) *Service {
	return &Service{repo: r, log: log, validate: validate.New(userMessages), limits: limits}
}

var _ Usecase = (*Service)(nil)

func invalidID() error {
	return apperrors.NewValidationError("id", "Invalid user ID format")
}

// CreateUser creates a new user after validating the request and checking email uniqueness.
func (uc *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = validate.Trimmed(in.Phone)
	in.Bio = validate.Trimmed(in.Bio)

	uc.log.Info("creating user", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	if err := uc.ensureEmailAvailable(ctx, in.Email, 0); err != nil {
		return nil, err
	}

	u, err := uc.repo.Create(ctx, &domain.User{
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
		Bio:   in.Bio,
	})
	if err != nil {
		uc.log.Error("failed to create user", zap.Error(err))
		return nil, err
	}
	return u, nil
}

// GetUser retrieves a user by ID.
func (uc *Service) GetUser(ctx context.Context, in GetUserRequest) (*domain.User, error) {
	if in.ID <= 0 {
		uc.log.Warn("get user validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return nil, invalidID()
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		uc.log.Warn("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}
	return u, nil
}

// UpdateUser applies a partial update. Only fields present in the request change.
func (uc *Service) UpdateUser(ctx context.Context, in UpdateUserRequest) (*domain.User, error) {
	if in.ID <= 0 {
		uc.log.Warn("update user validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return nil, invalidID()
	}

	patch, err := normalizePatch(in)
	if err != nil {
		uc.log.Warn("validate failed", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	fields := updateFields{
		Name:  patch.Name.Ptr(),
		Email: patch.Email.Ptr(),
		Phone: patch.Phone.Ptr(),
		Bio:   patch.Bio.Ptr(),
	}
	if err := uc.validate.Struct(fields); err != nil {
		uc.log.Warn("validate failed", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	uc.log.Info("updating user", zap.Int64("id", in.ID))

	// A missing user is reported before any email conflict
	if fields.Email != nil {
		if _, err := uc.repo.GetByID(ctx, in.ID); err != nil {
			uc.log.Warn("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
			return nil, err
		}
		if err := uc.ensureEmailAvailable(ctx, *fields.Email, in.ID); err != nil {
			return nil, err
		}
	}

	u, err := uc.repo.Update(ctx, in.ID, patch)
	if err != nil {
		uc.log.Warn("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}
	return u, nil
}

// normalizePatch trims every field, lower-cases the email and rejects
// clearing the mandatory fields. Blank phone and bio become null.
func normalizePatch(in UpdateUserRequest) (domain.Patch, error) {
	var p domain.Patch

	if in.Name.Set {
		name := strings.TrimSpace(in.Name.V)
		if in.Name.Null || name == "" {
			return p, apperrors.NewValidationError("name", "Name cannot be empty")
		}
		p.Name = optional.Of(name)
	}

	if in.Email.Set {
		email := strings.ToLower(strings.TrimSpace(in.Email.V))
		if in.Email.Null || email == "" {
			return p, apperrors.NewValidationError("email", "Email cannot be empty")
		}
		p.Email = optional.Of(email)
	}

	p.Phone = nullableText(in.Phone)
	p.Bio = nullableText(in.Bio)

	if p.Empty() {
		return p, apperrors.NewValidationError("", "No valid fields to update")
	}
	return p, nil
}

func nullableText(v optional.Value[string]) optional.Value[string] {
	if !v.Set {
		return v
	}
	if t := validate.Trimmed(v.Ptr()); t != nil {
		return optional.Of(*t)
	}
	return optional.Null[string]()
}

// DeleteUser deletes a user after validating the user ID.
func (uc *Service) DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error) {
	uc.log.Info("deleting user", zap.Int64("id", in.ID))

	if in.ID <= 0 {
		uc.log.Warn("delete user validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return nil, invalidID()
	}

	if err := uc.repo.Delete(ctx, in.ID); err != nil {
		uc.log.Warn("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	return &DeleteUserResponse{ID: in.ID}, nil
}

// ListUsers retrieves a page of users with an optional name/email filter.
func (uc *Service) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	search, err := security.ValidateSearchQuery(in.Search)
	if err != nil {
		uc.log.Warn("invalid search query", zap.String("search", in.Search), zap.Error(err))
		return nil, apperrors.NewValidationError("search", fmt.Sprintf("Invalid search query: %s", err))
	}

	offset, limit, err := uc.window(in.Page, in.Offset, in.Limit, uc.limits.DefaultLimit)
	if err != nil {
		return nil, err
	}

	uc.log.Info("listing users", zap.String("search", search), zap.Int64("offset", offset), zap.Int64("limit", limit))
	return uc.list(ctx, domain.ListFilter{Search: search, Offset: offset, Limit: limit})
}

// SearchUsers matches users by name or email. The query is mandatory.
func (uc *Service) SearchUsers(ctx context.Context, in SearchUsersRequest) (*ListUsersResponse, error) {
	if strings.TrimSpace(in.Query) == "" {
		return nil, apperrors.NewValidationError("q", "Search term is required (use ?q=search_term)")
	}

	query, err := security.ValidateSearchTerm(in.Query)
	if err != nil {
		uc.log.Warn("invalid search term", zap.String("q", in.Query), zap.Error(err))
		return nil, searchTermError(err)
	}

	offset, limit, err := uc.window(in.Page, in.Offset, in.Limit, uc.limits.SearchDefaultLimit)
	if err != nil {
		return nil, err
	}

	uc.log.Info("searching users", zap.String("q", query), zap.Int64("offset", offset), zap.Int64("limit", limit))
	return uc.list(ctx, domain.ListFilter{Search: query, Offset: offset, Limit: limit})
}

func (uc *Service) list(ctx context.Context, f domain.ListFilter) (*ListUsersResponse, error) {
	users, total, err := uc.repo.List(ctx, f)
	if err != nil {
		uc.log.Error("failed to list users", zap.String("search", f.Search), zap.Int64("offset", f.Offset), zap.Int64("limit", f.Limit), zap.Error(err))
		return nil, err
	}

	return &ListUsersResponse{
		Users:      users,
		Pagination: domain.NewPagination(total, f.Offset, f.Limit),
	}, nil
}

// window resolves the offset and limit of a listing. An explicit offset wins
// over page; the limit falls back to def and is capped at MaxLimit.
func (uc *Service) window(page int64, offset *int64, limit, def int64) (int64, int64, error) {
	switch {
	case limit < 0:
		return 0, 0, apperrors.NewValidationError("limit", "limit must be a positive integer")
	case limit == 0:
		limit = def
	case limit > uc.limits.MaxLimit:
		limit = uc.limits.MaxLimit
	}

	if offset != nil {
		if *offset < 0 {
			return 0, 0, apperrors.NewValidationError("offset", "offset must be a non-negative integer")
		}
		return *offset, limit, nil
	}

	if page < 0 {
		return 0, 0, apperrors.NewValidationError("page", "page must be a positive integer")
	}
	if page == 0 {
		page = 1
	}
	if limit > 0 && page-1 > math.MaxInt64/limit {
		return 0, 0, apperrors.NewValidationError("page", "page is out of range")
	}
	return (page - 1) * limit, limit, nil
}

func searchTermError(err error) error {
	switch {
	case errors.Is(err, security.ErrSearchTooShort):
		return apperrors.NewValidationError("q", "Search term must be at least 2 characters")
	case errors.Is(err, security.ErrSearchTooLong):
		return apperrors.NewValidationError("q", fmt.Sprintf("Search term must be at most %d characters", security.MaxSearchQueryLength))
	default:
		return apperrors.NewValidationError("q", "Search term contains invalid characters")
	}
}

// ensureEmailAvailable fails when email belongs to a user other than selfID.
func (uc *Service) ensureEmailAvailable(ctx context.Context, email string, selfID int64) error {
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		uc.log.Error("failed to check existing email", zap.String("email", email), zap.Error(err))
		return apperrors.NewInternalError("failed to validate email uniqueness", err)
	}
	if existing != nil && existing.ID != selfID {
		uc.log.Warn("email already exists", zap.String("email", email), zap.Int64("existing_id", existing.ID))
		return apperrors.NewAlreadyExistsError("user", fmt.Sprintf("User with email %s already exists", email))
	}
	return nil
}
