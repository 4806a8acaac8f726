package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"docarchive/internal/domain"
	models "docarchive/internal/domain/models/archive"
	archiveSvc "docarchive/internal/domain/services/archive"
)

func newUserServiceForTest() (*userService, *MockUserRepository) {
	repo := &MockUserRepository{}
	return NewUserService(repo, "s3cret", discardLogger()).(*userService), repo
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, repo := newUserServiceForTest()

	hash, err := bcrypt.GenerateFromPassword([]byte("pw1234"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.On("GetByUsername", ctx, "ed").Return(&models.User{Username: "ed", PasswordHash: string(hash), Role: models.RoleEditor}, nil)
	repo.On("GetByUsername", ctx, "ghost").Return(nil, &domain.NotFoundError{Message: "user ghost not found"})

	user, err := svc.Authenticate(ctx, "ed", "pw1234")
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, user.Role)

	_, err = svc.Authenticate(ctx, "ed", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "ghost", "pw1234")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes password", func(t *testing.T) {
		svc, repo := newUserServiceForTest()
		repo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.Username == "ed" &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw1234")) == nil
		})).Return(nil)

		user, err := svc.CreateUser(ctx, admin, &archiveSvc.CreateUserRequest{Username: " ed ", Password: "pw1234", Role: models.RoleEditor})
		require.NoError(t, err)
		assert.NotEqual(t, "pw1234", user.PasswordHash)
		repo.AssertExpectations(t)
	})

	t.Run("editor cannot manage users", func(t *testing.T) {
		svc, _ := newUserServiceForTest()
		_, err := svc.CreateUser(ctx, editor, &archiveSvc.CreateUserRequest{Username: "x", Password: "pw1234", Role: models.RoleViewer})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("invalid role", func(t *testing.T) {
		svc, _ := newUserServiceForTest()
		_, err := svc.CreateUser(ctx, admin, &archiveSvc.CreateUserRequest{Username: "x", Password: "pw1234", Role: "owner"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("short password", func(t *testing.T) {
		svc, _ := newUserServiceForTest()
		_, err := svc.CreateUser(ctx, admin, &archiveSvc.CreateUserRequest{Username: "x", Password: "pw", Role: models.RoleViewer})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("duplicate", func(t *testing.T) {
		svc, repo := newUserServiceForTest()
		repo.On("Create", ctx, mock.Anything).Return(&domain.ConflictError{Message: "user ed already exists"})
		_, err := svc.CreateUser(ctx, admin, &archiveSvc.CreateUserRequest{Username: "ed", Password: "pw1234", Role: models.RoleViewer})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	svc, repo := newUserServiceForTest()
	repo.On("Delete", ctx, "ed").Return(nil)

	assert.NoError(t, svc.DeleteUser(ctx, admin, "ed"))
	assert.ErrorIs(t, svc.DeleteUser(ctx, admin, models.DefaultAdminUsername), domain.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteUser(ctx, editor, "ed"), domain.ErrForbidden)
	repo.AssertNumberOfCalls(t, "Delete", 1)
}

func TestEnsureDefaultAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("empty archive seeds admin", func(t *testing.T) {
		svc, repo := newUserServiceForTest()
		repo.On("Count", ctx).Return(0, nil)
		repo.On("CreateIfEmpty", ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.Username == models.DefaultAdminUsername &&
				u.Role == models.RoleAdmin &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")) == nil
		})).Return(true, nil)

		created, err := svc.EnsureDefaultAdmin(ctx)
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("existing users skip hashing", func(t *testing.T) {
		svc, repo := newUserServiceForTest()
		repo.On("Count", ctx).Return(2, nil)

		created, err := svc.EnsureDefaultAdmin(ctx)
		require.NoError(t, err)
		assert.False(t, created)
		repo.AssertNotCalled(t, "CreateIfEmpty", mock.Anything, mock.Anything)
	})

	t.Run("lost race to another first start", func(t *testing.T) {
		svc, repo := newUserServiceForTest()
		repo.On("Count", ctx).Return(0, nil)
		repo.On("CreateIfEmpty", ctx, mock.Anything).Return(false, nil)

		created, err := svc.EnsureDefaultAdmin(ctx)
		require.NoError(t, err)
		assert.False(t, created)
	})
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	docs, folders, users := &MockDocumentRepository{}, &MockFolderRepository{}, &MockUserRepository{}
	docs.On("Count", ctx).Return(3, nil)
	folders.On("Count", ctx).Return(2, nil)
	users.On("Count", ctx).Return(1, nil)

	stats, err := NewStatsService(docs, folders, users).Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Documents: 3, Folders: 2, Users: 1}, *stats)
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()
	schema := &MockSchemaManager{}
	svc, repo := newUserServiceForTest()
	schema.On("Migrate", ctx).Return(nil)
	repo.On("Count", ctx).Return(1, nil)

	require.NoError(t, NewBootstrapper(schema, svc, discardLogger()).Initialize(ctx))
	schema.AssertExpectations(t)
	repo.AssertExpectations(t)
}
