package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"recipebox/internal/models"
	"recipebox/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	digest, err := h.Hash("Passw0rd!")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd!", digest)
	assert.True(t, h.Verify(digest, "Passw0rd!"))
	assert.False(t, h.Verify(digest, "passw0rd!"))

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost)
}

func TestUserService_Register(t *testing.T) {
	s := setupServices(t, nil)
	ctx := context.Background()

	user := s.register(t, "chef1")
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "Passw0rd!", user.Password, "password is stored hashed")

	t.Run("duplicate username any case", func(t *testing.T) {
		_, err := s.users.Register(ctx, RegisterInput{Username: "CHEF1", Email: "new@x.com", Password: "Passw0rd!"})
		assertAppErrorCode(t, models.CodeDuplicate, err)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := s.users.Register(ctx, RegisterInput{Username: "chef9", Email: "chef1@x.com", Password: "Passw0rd!"})
		assertAppErrorCode(t, models.CodeDuplicate, err)
	})

	invalid := []RegisterInput{
		{Username: "ab", Email: "ok@x.com", Password: "Passw0rd!"},
		{Username: "deleted_bob", Email: "ok@x.com", Password: "Passw0rd!"},
		{Username: "bob", Email: "not-an-email", Password: "Passw0rd!"},
		{Username: "bob", Email: "ok@x.com", Password: "short"},
		{Username: "bob", Email: "ok@x.com", Password: "alllowercase1"},
	}
	for _, in := range invalid {
		t.Run("invalid "+in.Username+" "+in.Email+" "+in.Password, func(t *testing.T) {
			_, err := s.users.Register(ctx, in)
			assertValidationError(t, err)
		})
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	repository.UserRepository
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	existsFn        func(context.Context, string, uint) (bool, error)
	createFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) ExistsByUsername(ctx context.Context, username string, excludeID uint) (bool, error) {
	return s.existsFn(ctx, username, excludeID)
}
func (s *userRepoStub) ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error) {
	return s.existsFn(ctx, email, excludeID)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func TestUserService_Register_StorageRaceIsDuplicate(t *testing.T) {
	repo := &userRepoStub{
		existsFn: func(context.Context, string, uint) (bool, error) { return false, nil },
		createFn: func(context.Context, *models.User) error {
			return models.NewDuplicateError("Username or email already in use")
		},
	}
	svc := NewUserService(repo, NewBcryptHasher(bcrypt.MinCost))

	_, err := svc.Register(context.Background(), RegisterInput{Username: "racer", Email: "racer@x.com", Password: "Passw0rd!"})
	assertAppErrorCode(t, models.CodeDuplicate, err)
}

func TestUserService_Authenticate(t *testing.T) {
	s := setupServices(t, nil)
	ctx := context.Background()
	chef := s.register(t, "chef1")

	user, ok := s.users.Authenticate(ctx, "CHEF1", "Passw0rd!")
	require.True(t, ok)
	assert.Equal(t, chef.ID, user.ID)

	user, ok = s.users.Authenticate(ctx, "chef1@x.com", "Passw0rd!")
	require.True(t, ok)
	assert.Equal(t, chef.ID, user.ID)

	_, ok = s.users.Authenticate(ctx, "chef1", "wrong")
	assert.False(t, ok)

	_, ok = s.users.Authenticate(ctx, "nobody", "Passw0rd!")
	assert.False(t, ok)

	_, ok = s.users.Authenticate(ctx, "", "")
	assert.False(t, ok)
}

func TestUserService_Authenticate_StorageErrorIsFailedLogin(t *testing.T) {
	repo := &userRepoStub{
		getByUsernameFn: func(context.Context, string) (*models.User, error) {
			return nil, models.NewInternalError(errors.New("connection reset"))
		},
	}
	svc := NewUserService(repo, NewBcryptHasher(bcrypt.MinCost))

	user, ok := svc.Authenticate(context.Background(), "chef1", "Passw0rd!")
	assert.False(t, ok)
	assert.Nil(t, user)
}

func TestUserService_Update(t *testing.T) {
	s := setupServices(t, nil)
	ctx := context.Background()
	chef := s.register(t, "chef1")
	s.register(t, "chef2")

	_, err := s.users.Update(ctx, chef.ID, UpdateUserInput{CurrentPassword: "wrong", Username: strPtr("chef3")})
	assertAppErrorCode(t, models.CodeInvalidCredentials, err)

	_, err = s.users.Update(ctx, chef.ID, UpdateUserInput{CurrentPassword: "Passw0rd!"})
	assertValidationError(t, err)

	_, err = s.users.Update(ctx, chef.ID, UpdateUserInput{CurrentPassword: "Passw0rd!", Username: strPtr("chef1")})
	assertValidationError(t, err)

	_, err = s.users.Update(ctx, chef.ID, UpdateUserInput{CurrentPassword: "Passw0rd!", Username: strPtr("Chef2")})
	assertAppErrorCode(t, models.CodeDuplicate, err)

	updated, err := s.users.Update(ctx, chef.ID, UpdateUserInput{
		CurrentPassword: "Passw0rd!",
		Username:        strPtr("Chef1"),
		Email:           strPtr("new@x.com"),
		Password:        strPtr("N3wPassword"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Chef1", updated.Username, "case change of own name is allowed")
	assert.Equal(t, "new@x.com", updated.Email)

	_, ok := s.users.Authenticate(ctx, "chef1", "N3wPassword")
	assert.True(t, ok)
}

func TestUserService_SoftDelete(t *testing.T) {
	s := setupServices(t, nil)
	ctx := context.Background()
	chef := s.register(t, "chef1")

	frozen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.users.now = func() time.Time { return frozen }

	require.NoError(t, s.users.Delete(ctx, chef.ID))

	_, err := s.users.GetByID(ctx, chef.ID)
	assertAppErrorCode(t, models.CodeNotFound, err)

	raw, err := s.users.GetRawByID(ctx, chef.ID)
	require.NoError(t, err)
	assert.True(t, raw.Deleted)
	require.NotNil(t, raw.DeletedAt)
	assert.True(t, strings.HasPrefix(raw.Username, "deleted_"))
	assert.Equal(t, raw.Username+"@deleted.invalid", raw.Email)
	assert.NotContains(t, raw.Username, "chef1")

	assertAppErrorCode(t, models.CodeNotFound, s.users.Delete(ctx, chef.ID))

	again := s.register(t, "chef1")
	assert.NotEqual(t, chef.ID, again.ID, "username and email are free again")

	active, err := s.users.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	all, err := s.users.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, ok := s.users.Authenticate(ctx, raw.Username, "Passw0rd!")
	assert.False(t, ok, "deleted accounts cannot log in")
}
