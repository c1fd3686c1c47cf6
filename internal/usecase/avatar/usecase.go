// Package avatar implements the body-measurement profiles attached to users.
package avatar

import (
	"context"
	"strings"

	"go.uber.org/zap"

	domain "fitspace-backend/internal/domain/avatar"
	"fitspace-backend/internal/usecase/validate"
	apperrors "fitspace-backend/pkg/errors"
	"fitspace-backend/pkg/optional"
)

var avatarMessages = validate.Messages{
	"display_name":              "display_name must be at most 255 characters",
	"age":                       "age must be between 0 and 150",
	"gender":                    "gender must be one of: " + strings.Join(domain.Genders, ", "),
	"height_cm":                 "height_cm must be greater than 0 and less than 1000",
	"weight_kg":                 "weight_kg must be greater than 0 and less than 1000",
	"body_fat_percent":          "body_fat_percent must be between 0 and 100",
	"shoulder_circumference_cm": "shoulder_circumference_cm must be greater than 0 and less than 1000",
	"waist_cm":                  "waist_cm must be greater than 0 and less than 1000",
	"hips_cm":                   "hips_cm must be greater than 0 and less than 1000",
	"notes":                     "notes must be at most 2000 characters",
}

// Service implements Usecase.
type Service struct {
	repo     Repository
	users    UserLookup
	log      *zap.Logger
	validate *validate.Validator
}

// New creates an avatar Service.
func New(repo Repository, users UserLookup, log *zap.Logger) *Service {
	return &Service{repo: repo, users: users, log: log, validate: validate.New(avatarMessages)}
}

var _ Usecase = (*Service)(nil)

func checkIDs(userID int64, avatarIDs ...int64) error {
	if userID <= 0 {
		return apperrors.NewValidationError("id", "Invalid user ID format")
	}
	for _, id := range avatarIDs {
		if id <= 0 {
			return apperrors.NewValidationError("avatar_id", "Invalid avatar ID format")
		}
	}
	return nil
}

// ListAvatars returns the avatars of an existing user, newest first.
func (s *Service) ListAvatars(ctx context.Context, userID int64) ([]domain.Avatar, error) {
	if err := checkIDs(userID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	avatars, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		s.log.Error("failed to list avatars", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	return avatars, nil
}

// GetAvatar returns one avatar of a user.
func (s *Service) GetAvatar(ctx context.Context, userID, avatarID int64) (*domain.Avatar, error) {
	if err := checkIDs(userID, avatarID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID, avatarID)
}

// CreateAvatar validates the measurements and stores them for an existing user.
func (s *Service) CreateAvatar(ctx context.Context, in CreateAvatarRequest) (*domain.Avatar, error) {
	if err := checkIDs(in.UserID); err != nil {
		return nil, err
	}

	m := normalizeMeasurements(in.Measurements)
	if err := s.validate.Struct(m); err != nil {
		s.log.Warn("validate failed", zap.Int64("user_id", in.UserID), zap.Error(err))
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	s.log.Info("creating avatar", zap.Int64("user_id", in.UserID))

	a, err := s.repo.Create(ctx, &domain.Avatar{
		UserID:                  in.UserID,
		DisplayName:             m.DisplayName,
		Age:                     m.Age,
		Gender:                  m.Gender,
		HeightCM:                m.HeightCM,
		WeightKG:                m.WeightKG,
		BodyFatPercent:          m.BodyFatPercent,
		ShoulderCircumferenceCM: m.ShoulderCircumferenceCM,
		WaistCM:                 m.WaistCM,
		HipsCM:                  m.HipsCM,
		Notes:                   m.Notes,
	})
	if err != nil {
		s.log.Error("failed to create avatar", zap.Int64("user_id", in.UserID), zap.Error(err))
		return nil, err
	}
	return a, nil
}

// UpdateAvatar applies a partial update to one avatar.
func (s *Service) UpdateAvatar(ctx context.Context, in UpdateAvatarRequest) (*domain.Avatar, error) {
	if err := checkIDs(in.UserID, in.AvatarID); err != nil {
		return nil, err
	}

	p := normalizePatch(in.Patch)
	if p.Empty() {
		return nil, apperrors.NewValidationError("", "No valid fields to update")
	}

	m := Measurements{
		DisplayName:             p.DisplayName.Ptr(),
		Age:                     p.Age.Ptr(),
		Gender:                  p.Gender.Ptr(),
		HeightCM:                p.HeightCM.Ptr(),
		WeightKG:                p.WeightKG.Ptr(),
		BodyFatPercent:          p.BodyFatPercent.Ptr(),
		ShoulderCircumferenceCM: p.ShoulderCircumferenceCM.Ptr(),
		WaistCM:                 p.WaistCM.Ptr(),
		HipsCM:                  p.HipsCM.Ptr(),
		Notes:                   p.Notes.Ptr(),
	}
	if err := s.validate.Struct(m); err != nil {
		s.log.Warn("validate failed", zap.Int64("avatar_id", in.AvatarID), zap.Error(err))
		return nil, err
	}

	s.log.Info("updating avatar", zap.Int64("user_id", in.UserID), zap.Int64("avatar_id", in.AvatarID))
	return s.repo.Update(ctx, in.UserID, in.AvatarID, p)
}

// DeleteAvatar removes one avatar of a user.
func (s *Service) DeleteAvatar(ctx context.Context, userID, avatarID int64) error {
	if err := checkIDs(userID, avatarID); err != nil {
		return err
	}

	s.log.Info("deleting avatar", zap.Int64("user_id", userID), zap.Int64("avatar_id", avatarID))
	return s.repo.Delete(ctx, userID, avatarID)
}

func normalizeMeasurements(m Measurements) Measurements {
	m.DisplayName = validate.Trimmed(m.DisplayName)
	m.Notes = validate.Trimmed(m.Notes)
	if g := validate.Trimmed(m.Gender); g != nil {
		lower := strings.ToLower(*g)
		m.Gender = &lower
	} else {
		m.Gender = nil
	}
	return m
}

func normalizePatch(p domain.Patch) domain.Patch {
	p.DisplayName = trimmedValue(p.DisplayName, false)
	p.Notes = trimmedValue(p.Notes, false)
	p.Gender = trimmedValue(p.Gender, true)
	return p
}

// trimmedValue trims a set string; blank becomes null.
func trimmedValue(v optional.Value[string], lower bool) optional.Value[string] {
	if !v.Set {
		return v
	}
	t := validate.Trimmed(v.Ptr())
	if t == nil {
		return optional.Null[string]()
	}
	if lower {
		return optional.Of(strings.ToLower(*t))
	}
	return optional.Of(*t)
}
