package user

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "fitspace-backend/internal/domain/user"
	apperrors "fitspace-backend/pkg/errors"
	"fitspace-backend/pkg/optional"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id int64, p domain.Patch) (*domain.User, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, f domain.ListFilter) ([]domain.User, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

func setupTestUsecase(t *testing.T) (*Service, *MockRepository) {
	mockRepo := new(MockRepository)
	uc := New(mockRepo, zaptest.NewLogger(t), DefaultLimits())
	return uc, mockRepo
}

func assertValidation(t *testing.T, err error, contains string) {
	t.Helper()
	require.Error(t, err)
	var ve *apperrors.ValidationError
	require.True(t, errors.As(err, &ve), "expected validation error, got %T: %v", err, err)
	assert.Contains(t, ve.Message, contains)
}

func strPtr(s string) *string { return &s }
func i64Ptr(i int64) *int64   { return &i }

// ==================== CREATE USER TESTS ====================

func TestCreateUser_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "john@example.com").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Name == "John Doe" && u.Email == "john@example.com" &&
			u.Phone == nil && u.Bio != nil && *u.Bio == "Lifter"
	})).Return(&domain.User{ID: 1, Name: "John Doe", Email: "john@example.com"}, nil)

	u, err := uc.CreateUser(ctx, CreateUserRequest{
		Name:  "  John Doe ",
		Email: " John@Example.COM ",
		Phone: strPtr("   "),
		Bio:   strPtr(" Lifter "),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	mockRepo.AssertExpectations(t)
}

func TestCreateUser_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateUserRequest
		message string
	}{
		{name: "name required", req: CreateUserRequest{Email: "a@b.co"}, message: "name is required"},
		{name: "name blank", req: CreateUserRequest{Name: "   ", Email: "a@b.co"}, message: "name is required"},
		{name: "name too short", req: CreateUserRequest{Name: "J", Email: "a@b.co"}, message: "Name must be between 2 and 100 characters"},
		{name: "email required", req: CreateUserRequest{Name: "John"}, message: "email is required"},
		{name: "email invalid", req: CreateUserRequest{Name: "John", Email: "not-an-email"}, message: "Invalid email format"},
		{name: "phone too long", req: CreateUserRequest{Name: "John", Email: "a@b.co", Phone: strPtr("123456789012345678901")}, message: "Phone number too long"},
		{name: "bio too long", req: CreateUserRequest{Name: "John", Email: "a@b.co", Bio: strPtr(strings.Repeat("a", 501))}, message: "Bio must be less than 500 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockRepo := setupTestUsecase(t)

			_, err := uc.CreateUser(context.Background(), tt.req)

			assertValidation(t, err, tt.message)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateUser_EmailAlreadyExists(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "john@example.com").Return(&domain.User{ID: 9, Email: "john@example.com"}, nil)

	_, err := uc.CreateUser(ctx, CreateUserRequest{Name: "John", Email: "john@example.com"})

	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))
	assert.Contains(t, err.Error(), "already exists")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUser_RepositoryError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "john@example.com").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := uc.CreateUser(ctx, CreateUserRequest{Name: "John", Email: "john@example.com"})

	require.Error(t, err)
	assert.Equal(t, 500, apperrors.StatusCode(err))
}

func TestCreateUser_EmailLookupError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "john@example.com").Return(nil, errors.New("timeout"))

	_, err := uc.CreateUser(ctx, CreateUserRequest{Name: "John", Email: "john@example.com"})

	require.Error(t, err)
	assert.Equal(t, 500, apperrors.StatusCode(err))
	assert.ErrorContains(t, err, "timeout")
}

// ==================== UPDATE USER TESTS ====================

func TestUpdateUser_PartialUpdate(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	expectedPatch := domain.Patch{
		Name:  optional.Of("Jane Doe"),
		Phone: optional.Null[string](),
	}
	mockRepo.On("Update", ctx, int64(1), expectedPatch).
		Return(&domain.User{ID: 1, Name: "Jane Doe", Email: "jane@example.com"}, nil)

	u, err := uc.UpdateUser(ctx, UpdateUserRequest{
		ID:    1,
		Name:  optional.Of(" Jane Doe "),
		Phone: optional.Of("  "),
	})

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", u.Name)
	mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestUpdateUser_EmailChecked(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	// The user's own email is not a conflict.
	mockRepo.On("GetByID", ctx, int64(1)).Return(&domain.User{ID: 1, Email: "old@example.com"}, nil)
	mockRepo.On("GetByEmail", ctx, "jane@example.com").Return(&domain.User{ID: 1}, nil)
	mockRepo.On("Update", ctx, int64(1), domain.Patch{Email: optional.Of("jane@example.com")}).
		Return(&domain.User{ID: 1, Email: "jane@example.com"}, nil)

	_, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: 1, Email: optional.Of("JANE@example.com")})
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUpdateUser_EmailAlreadyExists(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(1)).Return(&domain.User{ID: 1}, nil)
	mockRepo.On("GetByEmail", ctx, "taken@example.com").Return(&domain.User{ID: 2}, nil)

	_, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: 1, Email: optional.Of("taken@example.com")})

	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateUser_MissingUserWithTakenEmail(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(99)).Return(nil, apperrors.NewNotFoundError("user", "User not found"))

	_, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: 99, Email: optional.Of("taken@example.com")})

	require.Error(t, err)
	assert.Equal(t, 404, apperrors.StatusCode(err))
	mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateUser_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     UpdateUserRequest
		message string
	}{
		{name: "invalid id", req: UpdateUserRequest{ID: 0, Name: optional.Of("Jane")}, message: "Invalid user ID"},
		{name: "no fields", req: UpdateUserRequest{ID: 1}, message: "No valid fields to update"},
		{name: "empty name", req: UpdateUserRequest{ID: 1, Name: optional.Of(" ")}, message: "Name cannot be empty"},
		{name: "null name", req: UpdateUserRequest{ID: 1, Name: optional.Null[string]()}, message: "Name cannot be empty"},
		{name: "null email", req: UpdateUserRequest{ID: 1, Email: optional.Null[string]()}, message: "Email cannot be empty"},
		{name: "name too short", req: UpdateUserRequest{ID: 1, Name: optional.Of("J")}, message: "Name must be between 2 and 100 characters"},
		{name: "email invalid", req: UpdateUserRequest{ID: 1, Email: optional.Of("nope")}, message: "Invalid email format"},
		{name: "phone too long", req: UpdateUserRequest{ID: 1, Phone: optional.Of("123456789012345678901")}, message: "Phone number too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockRepo := setupTestUsecase(t)

			_, err := uc.UpdateUser(context.Background(), tt.req)

			assertValidation(t, err, tt.message)
			mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Update", ctx, int64(99), mock.Anything).
		Return(nil, apperrors.NewNotFoundError("user", "User not found"))

	_, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: 99, Bio: optional.Of("hi")})

	assert.True(t, apperrors.IsNotFound(err))
}

// ==================== GET / DELETE TESTS ====================

func TestGetUser(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(1)).Return(&domain.User{ID: 1, Name: "John"}, nil)
	mockRepo.On("GetByID", ctx, int64(2)).Return(nil, apperrors.NewNotFoundError("user", "User not found"))

	u, err := uc.GetUser(ctx, GetUserRequest{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "John", u.Name)

	_, err = uc.GetUser(ctx, GetUserRequest{ID: 2})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = uc.GetUser(ctx, GetUserRequest{ID: -1})
	assertValidation(t, err, "Invalid user ID")
}

func TestDeleteUser(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, int64(1)).Return(nil).Once()
	mockRepo.On("Delete", ctx, int64(1)).Return(apperrors.NewNotFoundError("user", "User not found")).Once()

	resp, err := uc.DeleteUser(ctx, DeleteUserRequest{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)

	_, err = uc.DeleteUser(ctx, DeleteUserRequest{ID: 1})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = uc.DeleteUser(ctx, DeleteUserRequest{ID: 0})
	assertValidation(t, err, "Invalid user ID")
	mockRepo.AssertExpectations(t)
}

// ==================== LIST / SEARCH TESTS ====================

func TestListUsers_Window(t *testing.T) {
	tests := []struct {
		name   string
		req    ListUsersRequest
		filter domain.ListFilter
	}{
		{name: "defaults", req: ListUsersRequest{}, filter: domain.ListFilter{Offset: 0, Limit: 10}},
		{name: "limit clamped", req: ListUsersRequest{Limit: 500}, filter: domain.ListFilter{Offset: 0, Limit: 100}},
		{name: "page", req: ListUsersRequest{Page: 3, Limit: 5}, filter: domain.ListFilter{Offset: 10, Limit: 5}},
		{name: "offset wins over page", req: ListUsersRequest{Page: 3, Offset: i64Ptr(7), Limit: 5}, filter: domain.ListFilter{Offset: 7, Limit: 5}},
		{name: "search trimmed", req: ListUsersRequest{Search: " jane "}, filter: domain.ListFilter{Search: "jane", Limit: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockRepo := setupTestUsecase(t)
			mockRepo.On("List", mock.Anything, tt.filter).Return([]domain.User{{ID: 1}}, int64(1), nil)

			resp, err := uc.ListUsers(context.Background(), tt.req)

			require.NoError(t, err)
			assert.Len(t, resp.Users, 1)
			assert.Equal(t, int64(1), resp.Pagination.Total)
			assert.Equal(t, tt.filter.Limit, resp.Pagination.Limit)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestListUsers_Pagination(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	mockRepo.On("List", mock.Anything, domain.ListFilter{Offset: 5, Limit: 5}).
		Return([]domain.User{{ID: 6}, {ID: 7}, {ID: 8}, {ID: 9}, {ID: 10}}, int64(12), nil)

	resp, err := uc.ListUsers(context.Background(), ListUsersRequest{Page: 2, Limit: 5})

	require.NoError(t, err)
	assert.Equal(t, domain.Pagination{
		Total: 12, Page: 2, Limit: 5, Offset: 5, TotalPages: 3, HasNext: true, HasPrevious: true,
	}, *resp.Pagination)
}

func TestListUsers_Invalid(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	_, err := uc.ListUsers(context.Background(), ListUsersRequest{Search: "jo\u0007hn"})
	assertValidation(t, err, "Invalid search query")

	_, err = uc.ListUsers(context.Background(), ListUsersRequest{Offset: i64Ptr(-1)})
	assertValidation(t, err, "offset")

	_, err = uc.ListUsers(context.Background(), ListUsersRequest{Limit: -5})
	assertValidation(t, err, "limit")

	_, err = uc.ListUsers(context.Background(), ListUsersRequest{Page: math.MaxInt64})
	assertValidation(t, err, "page is out of range")

	_, err = uc.ListUsers(context.Background(), ListUsersRequest{Page: math.MaxInt64/10 + 2, Limit: 10})
	assertValidation(t, err, "page is out of range")

	mockRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestListUsers_RepositoryError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	mockRepo.On("List", mock.Anything, mock.Anything).Return(nil, int64(0), errors.New("db down"))

	_, err := uc.ListUsers(context.Background(), ListUsersRequest{})
	assert.Equal(t, 500, apperrors.StatusCode(err))
}

func TestSearchUsers(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	mockRepo.On("List", mock.Anything, domain.ListFilter{Search: "jo", Offset: 0, Limit: 20}).
		Return([]domain.User{{ID: 1, Name: "John"}}, int64(1), nil)

	resp, err := uc.SearchUsers(context.Background(), SearchUsersRequest{Query: " jo "})
	require.NoError(t, err)
	assert.Len(t, resp.Users, 1)
	mockRepo.AssertExpectations(t)
}

func TestSearchUsers_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		message string
	}{
		{name: "missing", query: "", message: "Search term is required"},
		{name: "blank", query: "   ", message: "Search term is required"},
		{name: "too short", query: "j", message: "at least 2 characters"},
		{name: "control character", query: "jo\x1bhn", message: "invalid characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockRepo := setupTestUsecase(t)

			_, err := uc.SearchUsers(context.Background(), SearchUsersRequest{Query: tt.query})

			assertValidation(t, err, tt.message)
			mockRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
		})
	}
}
