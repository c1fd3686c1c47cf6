package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"fitspace-backend/internal/domain/user"
	apperrors "fitspace-backend/pkg/errors"
	"fitspace-backend/pkg/optional"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	// Migrate the schema
	err = db.AutoMigrate(&UserSchema{}, &AvatarSchema{})
	require.NoError(t, err)

	return db
}

func strPtr(s string) *string { return &s }

func seedUsers(t *testing.T, repo *UserRepoPG, users ...user.User) []*user.User {
	t.Helper()
	created := make([]*user.User, 0, len(users))
	for i := range users {
		u, err := repo.Create(context.Background(), &users[i])
		require.NoError(t, err)
		created = append(created, u)
	}
	return created
}

func TestUserRepoPG_CreateAndGet(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &user.User{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Phone: strPtr("+15550100"),
	})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.UpdatedAt.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, "jane@example.com", got.Email)
	require.NotNil(t, got.Phone)
	assert.Equal(t, "+15550100", *got.Phone)
	assert.Nil(t, got.Bio)
}

func TestUserRepoPG_Create_DuplicateEmail(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	seedUsers(t, repo, user.User{Name: "Jane", Email: "jane@example.com"})

	_, err := repo.Create(context.Background(), &user.User{Name: "Other", Email: "jane@example.com"})
	require.Error(t, err)
}

func TestUserRepoPG_Create_Nil(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))

	_, err := repo.Create(context.Background(), nil)
	assert.Error(t, err)
}

func TestUserRepoPG_GetByID_NotFound(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))

	_, err := repo.GetByID(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserRepoPG_GetByEmail(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	seedUsers(t, repo, user.User{Name: "Jane", Email: "jane@example.com"})

	u, err := repo.GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Jane", u.Name)

	u, err = repo.GetByEmail(context.Background(), "missing@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserRepoPG_Update(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()
	created := seedUsers(t, repo, user.User{
		Name:  "Jane",
		Email: "jane@example.com",
		Phone: strPtr("123"),
		Bio:   strPtr("runner"),
	})[0]

	updated, err := repo.Update(ctx, created.ID, user.Patch{
		Name:  optional.Of("Jane Doe"),
		Phone: optional.Null[string](),
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Jane Doe", updated.Name)
	assert.Equal(t, "jane@example.com", updated.Email)
	assert.Nil(t, updated.Phone)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, "runner", *updated.Bio)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt.Add(-time.Second)))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Nil(t, got.Phone)
}

func TestUserRepoPG_Update_NotFound(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))

	_, err := repo.Update(context.Background(), 99, user.Patch{Name: optional.Of("Nobody")})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserRepoPG_Update_EmptyPatch(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))

	_, err := repo.Update(context.Background(), 1, user.Patch{})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))
}

func TestUserRepoPG_Delete(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()
	created := seedUsers(t, repo, user.User{Name: "Jane", Email: "jane@example.com"})[0]

	require.NoError(t, repo.Delete(ctx, created.ID))

	err := repo.Delete(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = repo.GetByID(ctx, created.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserRepoPG_List_Pagination(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		seedUsers(t, repo, user.User{Name: "User " + string(rune('A'+i)), Email: string(rune('a'+i)) + "@example.com"})
	}

	users, total, err := repo.List(ctx, user.ListFilter{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, users, 5)
	assert.Equal(t, int64(7), total)

	users, total, err = repo.List(ctx, user.ListFilter{Offset: 5, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, int64(7), total)
}

func TestUserRepoPG_List_NewestFirst(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	created := seedUsers(t, repo,
		user.User{Name: "First", Email: "first@example.com"},
		user.User{Name: "Second", Email: "second@example.com"},
	)

	users, _, err := repo.List(context.Background(), user.ListFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, created[1].ID, users[0].ID)
	assert.Equal(t, created[0].ID, users[1].ID)
}

func TestUserRepoPG_List_WildcardEscaping(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	seedUsers(t, repo,
		user.User{Name: "John%Test", Email: "john%test@example.com"},
		user.User{Name: "Jane_Test", Email: "jane_test@example.com"},
		user.User{Name: "Admin", Email: "admin@example.com"},
	)

	tests := []struct {
		name        string
		query       string
		expectCount int
	}{
		{name: "search for percent literal", query: "John%Test", expectCount: 1},
		{name: "search for underscore literal", query: "Jane_Test", expectCount: 1},
		{name: "percent is not a wildcard", query: "n%", expectCount: 1},
		{name: "underscore is not a wildcard", query: "e_t", expectCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, total, err := repo.List(context.Background(), user.ListFilter{Search: tt.query, Limit: 10})
			require.NoError(t, err)
			assert.Len(t, users, tt.expectCount)
			assert.Equal(t, int64(tt.expectCount), total)
		})
	}
}

func TestUserRepoPG_List_CaseInsensitiveSearch(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	seedUsers(t, repo,
		user.User{Name: "John Doe", Email: "jd@example.com"},
		user.User{Name: "jane smith", Email: "jane@example.com"},
		user.User{Name: "ADMIN User", Email: "root@example.com"},
	)

	tests := []struct {
		name        string
		query       string
		expectCount int
	}{
		{name: "lowercase search", query: "john", expectCount: 1},
		{name: "uppercase search", query: "JANE", expectCount: 1},
		{name: "mixed case search", query: "Admin", expectCount: 1},
		{name: "matches email", query: "ROOT@", expectCount: 1},
		{name: "matches all by domain", query: "example.com", expectCount: 3},
		{name: "no match", query: "nobody", expectCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, _, err := repo.List(context.Background(), user.ListFilter{Search: tt.query, Limit: 10})
			require.NoError(t, err)
			assert.Len(t, users, tt.expectCount)
		})
	}
}

func TestHealthChecker_Check(t *testing.T) {
	elapsed, err := NewHealthChecker(setupTestDB(t)).Check(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))
}
