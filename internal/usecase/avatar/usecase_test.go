package avatar

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "fitspace-backend/internal/domain/avatar"
	"fitspace-backend/internal/domain/user"
	apperrors "fitspace-backend/pkg/errors"
	"fitspace-backend/pkg/optional"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListForUser(ctx context.Context, userID int64) ([]domain.Avatar, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Avatar), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, userID, avatarID int64) (*domain.Avatar, error) {
	args := m.Called(ctx, userID, avatarID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Avatar), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, a *domain.Avatar) (*domain.Avatar, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Avatar), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, userID, avatarID int64, p domain.Patch) (*domain.Avatar, error) {
	args := m.Called(ctx, userID, avatarID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Avatar), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, userID, avatarID int64) error {
	return m.Called(ctx, userID, avatarID).Error(0)
}

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

var errUserNotFound = apperrors.NewNotFoundError("user", "User not found")

func setup(t *testing.T) (*Service, *MockRepository, *MockUsers) {
	repo := new(MockRepository)
	users := new(MockUsers)
	users.On("GetByID", mock.Anything, int64(1)).Return(&user.User{ID: 1}, nil).Maybe()
	users.On("GetByID", mock.Anything, int64(404)).Return(nil, errUserNotFound).Maybe()
	return New(repo, users, zaptest.NewLogger(t)), repo, users
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	var ve *apperrors.ValidationError
	require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
	return ve.Message
}

func TestCreateAvatar_Normalizes(t *testing.T) {
	uc, repo, _ := setup(t)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Avatar) bool {
		return a.UserID == 1 &&
			*a.DisplayName == "Competition Prep" &&
			*a.Gender == "female" &&
			*a.Age == 28 &&
			*a.HeightCM == 172.5 &&
			a.Notes == nil
	})).Return(&domain.Avatar{ID: 10, UserID: 1}, nil)

	a, err := uc.CreateAvatar(context.Background(), CreateAvatarRequest{
		UserID: 1,
		Measurements: Measurements{
			DisplayName: strPtr(" Competition Prep "),
			Age:         intPtr(28),
			Gender:      strPtr("FEMALE"),
			HeightCM:    floatPtr(172.5),
			Notes:       strPtr("  "),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(10), a.ID)
	repo.AssertExpectations(t)
}

func TestCreateAvatar_Validation(t *testing.T) {
	tests := []struct {
		name    string
		m       Measurements
		message string
	}{
		{name: "age too high", m: Measurements{Age: intPtr(151)}, message: "age must be between 0 and 150"},
		{name: "negative age", m: Measurements{Age: intPtr(-1)}, message: "age must be between 0 and 150"},
		{name: "unknown gender", m: Measurements{Gender: strPtr("robot")}, message: "gender must be one of"},
		{name: "zero height", m: Measurements{HeightCM: floatPtr(0)}, message: "height_cm must be greater than 0"},
		{name: "huge weight", m: Measurements{WeightKG: floatPtr(1000)}, message: "weight_kg must be greater than 0 and less than 1000"},
		{name: "body fat over 100", m: Measurements{BodyFatPercent: floatPtr(100.5)}, message: "body_fat_percent must be between 0 and 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, repo, _ := setup(t)

			_, err := uc.CreateAvatar(context.Background(), CreateAvatarRequest{UserID: 1, Measurements: tt.m})

			assert.Contains(t, validationMessage(t, err), tt.message)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateAvatar_BoundaryValuesAccepted(t *testing.T) {
	uc, repo, _ := setup(t)
	repo.On("Create", mock.Anything, mock.Anything).Return(&domain.Avatar{ID: 1, UserID: 1}, nil)

	_, err := uc.CreateAvatar(context.Background(), CreateAvatarRequest{
		UserID: 1,
		Measurements: Measurements{
			Age:            intPtr(0),
			BodyFatPercent: floatPtr(0),
			HipsCM:         floatPtr(999.99),
			WeightKG:       floatPtr(999.999),
			Gender:         strPtr("prefer_not_to_say"),
		},
	})
	assert.NoError(t, err)
}

func TestCreateAvatar_UnknownUser(t *testing.T) {
	uc, repo, _ := setup(t)

	_, err := uc.CreateAvatar(context.Background(), CreateAvatarRequest{UserID: 404})

	assert.True(t, apperrors.IsNotFound(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListAvatars(t *testing.T) {
	uc, repo, _ := setup(t)
	repo.On("ListForUser", mock.Anything, int64(1)).Return([]domain.Avatar{{ID: 2}, {ID: 1}}, nil)

	avatars, err := uc.ListAvatars(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, avatars, 2)

	_, err = uc.ListAvatars(context.Background(), 404)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = uc.ListAvatars(context.Background(), 0)
	assert.Equal(t, "Invalid user ID format", validationMessage(t, err))
}

func TestGetAvatar(t *testing.T) {
	uc, repo, _ := setup(t)
	repo.On("Get", mock.Anything, int64(3), int64(5)).Return(&domain.Avatar{ID: 5, UserID: 3}, nil)

	a, err := uc.GetAvatar(context.Background(), 3, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), a.ID)

	_, err = uc.GetAvatar(context.Background(), 3, -5)
	assert.Equal(t, "Invalid avatar ID format", validationMessage(t, err))
}

func TestUpdateAvatar(t *testing.T) {
	uc, repo, _ := setup(t)
	expected := domain.Patch{
		WeightKG: optional.Of(82.4),
		Notes:    optional.Of("updated"),
		Gender:   optional.Of("male"),
	}
	repo.On("Update", mock.Anything, int64(4), int64(7), expected).Return(&domain.Avatar{ID: 7, UserID: 4}, nil)

	_, err := uc.UpdateAvatar(context.Background(), UpdateAvatarRequest{
		UserID:   4,
		AvatarID: 7,
		Patch: domain.Patch{
			WeightKG: optional.Of(82.4),
			Notes:    optional.Of(" updated "),
			Gender:   optional.Of("Male"),
		},
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateAvatar_Invalid(t *testing.T) {
	uc, repo, _ := setup(t)

	_, err := uc.UpdateAvatar(context.Background(), UpdateAvatarRequest{UserID: 4, AvatarID: 7})
	assert.Equal(t, "No valid fields to update", validationMessage(t, err))

	_, err = uc.UpdateAvatar(context.Background(), UpdateAvatarRequest{
		UserID: 4, AvatarID: 7, Patch: domain.Patch{WaistCM: optional.Of(-3.0)},
	})
	assert.Contains(t, validationMessage(t, err), "waist_cm")

	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateAvatar_ClearField(t *testing.T) {
	uc, repo, _ := setup(t)
	repo.On("Update", mock.Anything, int64(4), int64(7), domain.Patch{DisplayName: optional.Null[string]()}).
		Return(&domain.Avatar{ID: 7, UserID: 4}, nil)

	_, err := uc.UpdateAvatar(context.Background(), UpdateAvatarRequest{
		UserID: 4, AvatarID: 7, Patch: domain.Patch{DisplayName: optional.Of("   ")},
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDeleteAvatar(t *testing.T) {
	uc, repo, _ := setup(t)
	repo.On("Delete", mock.Anything, int64(4), int64(7)).Return(nil)
	repo.On("Delete", mock.Anything, int64(4), int64(8)).Return(apperrors.NewNotFoundError("avatar", "Avatar not found"))

	assert.NoError(t, uc.DeleteAvatar(context.Background(), 4, 7))
	assert.True(t, apperrors.IsNotFound(uc.DeleteAvatar(context.Background(), 4, 8)))
}
