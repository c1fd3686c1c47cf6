package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fitspace-backend/internal/domain/avatar"
	apperrors "fitspace-backend/pkg/errors"
	"fitspace-backend/pkg/optional"
)

var avatarColumns = []string{
	"id", "user_id", "display_name", "age", "gender", "height_cm", "weight_kg",
	"body_fat_percent", "shoulder_circumference_cm", "waist_cm", "hips_cm",
	"notes", "created_at", "updated_at",
}

var errAvatarNotFound = apperrors.NewNotFoundError("avatar", "Avatar not found")

// AvatarSchema represents the database schema for the avatars table.
type AvatarSchema struct {
	ID                      int64       `gorm:"primaryKey;autoIncrement"`
	UserID                  int64       `gorm:"not null;index:ix_avatars_user_id"`
	User                    *UserSchema `gorm:"constraint:OnDelete:CASCADE"`
	DisplayName             *string     `gorm:"size:255;index:ix_avatars_display_name"`
	Age                     *int        `gorm:"column:age"`
	Gender                  *string     `gorm:"size:50"`
	HeightCM                *float64    `gorm:"column:height_cm;type:numeric(6,2)"`
	WeightKG                *float64    `gorm:"column:weight_kg;type:numeric(6,2)"`
	BodyFatPercent          *float64    `gorm:"type:numeric(5,2)"`
	ShoulderCircumferenceCM *float64    `gorm:"column:shoulder_circumference_cm;type:numeric(6,2)"`
	WaistCM                 *float64    `gorm:"column:waist_cm;type:numeric(6,2)"`
	HipsCM                  *float64    `gorm:"column:hips_cm;type:numeric(6,2)"`
	Notes                   *string     `gorm:"type:text"`
	CreatedAt               time.Time   `gorm:"not null;autoCreateTime"`
	UpdatedAt               time.Time   `gorm:"not null;autoUpdateTime"`
}

// TableName specifies the table name for the AvatarSchema model.
func (AvatarSchema) TableName() string {
	return "avatars"
}

func (m AvatarSchema) toDomain() *avatar.Avatar {
	return &avatar.Avatar{
		ID:                      m.ID,
		UserID:                  m.UserID,
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
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
}

// AvatarRepoPG stores avatars in PostgreSQL.
type AvatarRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewAvatarRepoPG creates a new instance of AvatarRepoPG.
func NewAvatarRepoPG(db *gorm.DB, log *zap.Logger) *AvatarRepoPG {
	return &AvatarRepoPG{db: db, log: log}
}

// ListForUser returns every avatar of a user, newest first.
func (r *AvatarRepoPG) ListForUser(ctx context.Context, userID int64) ([]avatar.Avatar, error) {
	var models []AvatarSchema
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		r.log.Error("failed to list avatars from db", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to list avatars: %w", err)
	}

	avatars := make([]avatar.Avatar, len(models))
	for i, m := range models {
		avatars[i] = *m.toDomain()
	}
	return avatars, nil
}

// Get returns one avatar of a user.
func (r *AvatarRepoPG) Get(ctx context.Context, userID, avatarID int64) (*avatar.Avatar, error) {
	var model AvatarSchema
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, avatarID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("avatar not found", zap.Int64("user_id", userID), zap.Int64("avatar_id", avatarID))
			return nil, errAvatarNotFound
		}
		r.log.Error("failed to get avatar from db", zap.Error(err), zap.Int64("user_id", userID), zap.Int64("avatar_id", avatarID))
		return nil, fmt.Errorf("failed to get avatar: %w", err)
	}
	return model.toDomain(), nil
}

// Create inserts an avatar for a user and returns the stored row.
func (r *AvatarRepoPG) Create(ctx context.Context, a *avatar.Avatar) (*avatar.Avatar, error) {
	if a == nil {
		return nil, errors.New("avatar cannot be nil")
	}

	model := AvatarSchema{
		UserID:                  a.UserID,
		DisplayName:             a.DisplayName,
		Age:                     a.Age,
		Gender:                  a.Gender,
		HeightCM:                a.HeightCM,
		WeightKG:                a.WeightKG,
		BodyFatPercent:          a.BodyFatPercent,
		ShoulderCircumferenceCM: a.ShoulderCircumferenceCM,
		WaistCM:                 a.WaistCM,
		HipsCM:                  a.HipsCM,
		Notes:                   a.Notes,
	}

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.Returning{}).Create(&model).Error; err != nil {
		if isForeignKeyViolation(err) {
			r.log.Warn("avatar owner does not exist", zap.Int64("user_id", a.UserID))
			return nil, errUserNotFound
		}
		r.log.Error("failed to create avatar in db", zap.Error(err), zap.Int64("user_id", a.UserID))
		return nil, fmt.Errorf("failed to create avatar: %w", err)
	}

	r.log.Info("avatar created in db", zap.Int64("id", model.ID), zap.Int64("user_id", model.UserID))
	return model.toDomain(), nil
}

// Update applies a partial update in a single UPDATE ... RETURNING statement.
func (r *AvatarRepoPG) Update(ctx context.Context, userID, avatarID int64, p avatar.Patch) (*avatar.Avatar, error) {
	set := make(map[string]any, 11)
	setIf(set, "display_name", p.DisplayName)
	setIf(set, "age", p.Age)
	setIf(set, "gender", p.Gender)
	setIf(set, "height_cm", p.HeightCM)
	setIf(set, "weight_kg", p.WeightKG)
	setIf(set, "body_fat_percent", p.BodyFatPercent)
	setIf(set, "shoulder_circumference_cm", p.ShoulderCircumferenceCM)
	setIf(set, "waist_cm", p.WaistCM)
	setIf(set, "hips_cm", p.HipsCM)
	setIf(set, "notes", p.Notes)
	if len(set) == 0 {
		return nil, apperrors.NewValidationError("", "No updates provided")
	}
	set["updated_at"] = time.Now().UTC()

	query, args, err := psql.Update("avatars").
		SetMap(set).
		Where(sq.Eq{"user_id": userID, "id": avatarID}).
		Suffix("RETURNING " + strings.Join(avatarColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update: %w", err)
	}

	var models []AvatarSchema
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&models).Error; err != nil {
		r.log.Error("failed to update avatar in db", zap.Error(err), zap.Int64("user_id", userID), zap.Int64("avatar_id", avatarID))
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}
	if len(models) == 0 {
		r.log.Warn("avatar not found for update", zap.Int64("user_id", userID), zap.Int64("avatar_id", avatarID))
		return nil, errAvatarNotFound
	}

	r.log.Info("avatar updated in db", zap.Int64("id", avatarID), zap.Int64("user_id", userID))
	return models[0].toDomain(), nil
}

// Delete removes one avatar of a user.
func (r *AvatarRepoPG) Delete(ctx context.Context, userID, avatarID int64) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, avatarID).Delete(&AvatarSchema{})
	if res.Error != nil {
		r.log.Error("failed to delete avatar in db", zap.Error(res.Error), zap.Int64("user_id", userID), zap.Int64("avatar_id", avatarID))
		return fmt.Errorf("failed to delete avatar: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errAvatarNotFound
	}

	r.log.Info("avatar deleted in db", zap.Int64("id", avatarID), zap.Int64("user_id", userID))
	return nil
}

func setIf[T any](set map[string]any, column string, v optional.Value[T]) {
	if v.Set {
		set[column] = v.Ptr()
	}
}
