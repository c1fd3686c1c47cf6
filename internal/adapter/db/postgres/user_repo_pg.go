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

	"fitspace-backend/internal/domain/user"
	apperrors "fitspace-backend/pkg/errors"
	"fitspace-backend/pkg/security"
)

var userColumns = []string{"id", "name", "email", "phone", "bio", "created_at", "updated_at"}

// UserRepoPG implements the user Repository interface using PostgreSQL and GORM.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"size:100;not null"`
	Email     string    `gorm:"size:255;not null;uniqueIndex"`
	Phone     *string   `gorm:"size:20"`
	Bio       *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func (m UserSchema) toDomain() *user.User {
	return &user.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Bio:       m.Bio,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

var errUserNotFound = apperrors.NewNotFoundError("user", "User not found")

func duplicateEmail(email string) error {
	return apperrors.NewAlreadyExistsError("user", fmt.Sprintf("User with email %s already exists", email))
}

// Create inserts a new user and returns the stored row.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := UserSchema{
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Bio:   u.Bio,
	}

	if err := r.db.WithContext(ctx).Clauses(clause.Returning{}).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			r.log.Warn("duplicate email on insert", zap.String("email", u.Email))
			return nil, duplicateEmail(u.Email)
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.toDomain(), nil
}

// Update applies a partial update in a single UPDATE ... RETURNING statement.
func (r *UserRepoPG) Update(ctx context.Context, id int64, p user.Patch) (*user.User, error) {
	set := make(map[string]any, 5)
	if p.Name.Set {
		set["name"] = p.Name.Ptr()
	}
	if p.Email.Set {
		set["email"] = p.Email.Ptr()
	}
	if p.Phone.Set {
		set["phone"] = p.Phone.Ptr()
	}
	if p.Bio.Set {
		set["bio"] = p.Bio.Ptr()
	}
	if len(set) == 0 {
		return nil, apperrors.NewValidationError("", "No valid fields to update")
	}
	set["updated_at"] = time.Now().UTC()

	query, args, err := psql.Update("users").
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update: %w", err)
	}

	var models []UserSchema
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&models).Error; err != nil {
		if isUniqueViolation(err) {
			email := ""
			if v := p.Email.Ptr(); v != nil {
				email = *v
			}
			r.log.Warn("duplicate email on update", zap.Int64("id", id), zap.String("email", email))
			return nil, duplicateEmail(email)
		}
		r.log.Error("failed to update user in db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if len(models) == 0 {
		r.log.Warn("user not found for update", zap.Int64("id", id))
		return nil, errUserNotFound
	}

	r.log.Info("user updated in db", zap.Int64("id", id))
	return models[0].toDomain(), nil
}

// Delete removes a user by ID. Avatars are removed by the foreign key cascade.
func (r *UserRepoPG) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if res.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(res.Error), zap.Int64("id", id))
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Warn("user not found for delete", zap.Int64("id", id))
		return errUserNotFound
	}

	r.log.Info("user deleted in db", zap.Int64("id", id))
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepoPG) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.Int64("id", id))
			return nil, errUserNotFound
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return model.toDomain(), nil
}

// GetByEmail retrieves a user by email. It returns nil, nil when no user matches.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by email", zap.String("email", email))
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return model.toDomain(), nil
}

// List returns one page of users, newest first, and the total number of
// users matching the filter.
func (r *UserRepoPG) List(ctx context.Context, f user.ListFilter) ([]user.User, int64, error) {
	where := searchPredicate(f.Search)

	query, args, err := psql.Select(userColumns...).
		From("users").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	var models []UserSchema
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.String("search", f.Search), zap.Int64("offset", f.Offset), zap.Int64("limit", f.Limit))
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("users").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.db.WithContext(ctx).Raw(countQuery, countArgs...).Scan(&total).Error; err != nil {
		r.log.Error("failed to count users", zap.Error(err), zap.String("search", f.Search))
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = *model.toDomain()
	}

	return users, total, nil
}

// searchPredicate matches name or email case-insensitively. It returns nil
// for an empty search, which squirrel treats as no WHERE clause.
func searchPredicate(search string) sq.Sqlizer {
	if search == "" {
		return nil
	}
	pattern := "%" + security.EscapeLike(strings.ToLower(search)) + "%"
	return sq.Or{
		sq.Expr(`LOWER(name) LIKE ? ESCAPE '\'`, pattern),
		sq.Expr(`LOWER(email) LIKE ? ESCAPE '\'`, pattern),
	}
}
