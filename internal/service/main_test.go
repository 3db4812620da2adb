package service

import (
	"context"
	"errors"
	"testing"

	"recipebox/internal/database"
	"recipebox/internal/models"
	"recipebox/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// services bundles every service over one in-memory database.
type services struct {
	db      *gorm.DB
	users   *UserService
	recipes *RecipeService
	books   *RecipeBookService
	tags    *TagService
}

var testVocabulary = []TagCategory{
	{Name: "cuisine", Tags: []string{"Italian", "Mexican", "Thai"}},
	{Name: "diet", Tags: []string{"Vegan", "Gluten-Free"}},
}

func setupServices(t *testing.T, store storage.ObjectStore) *services {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	all := NewServices(Deps{
		DB:         db,
		Hasher:     NewBcryptHasher(bcrypt.MinCost),
		Store:      store,
		Vocabulary: testVocabulary,
	})
	return &services{
		db:      db,
		users:   all.Users,
		recipes: all.Recipes,
		books:   all.Books,
		tags:    all.Tags,
	}
}

func (s *services) register(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := s.users.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@x.com",
		Password: "Passw0rd!",
	})
	require.NoError(t, err)
	return user
}

func assertAppErrorCode(t *testing.T, code string, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, models.CodeValidation, err)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func uintPtr(u uint) *uint { return &u }
