package database

import (
	"context"
	"testing"
	"testing/fstest"

	"recipebox/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections, "sqlite is pinned to a single connection")
}

func TestDialector(t *testing.T) {
	d, err := Dialector(&config.Config{DBDriver: "postgres", DBHost: "db", DBPort: "5432"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = Dialector(&config.Config{DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	_, err = Dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestApplySchema_SQLiteAutoMigrates(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	cfg := &config.Config{Env: "test"}
	require.NoError(t, ApplySchema(context.Background(), db, cfg))

	for _, table := range []string{"users", "recipes", "tags", "recipe_books", "recipe_tags", "recipe_book_recipes"} {
		assert.True(t, db.Migrator().HasTable(table), "expected table %s", table)
	}

	require.NoError(t, db.Exec("INSERT INTO users (username, email, password) VALUES ('Chef', 'a@example.com', 'x')").Error)
	err = db.Exec("INSERT INTO users (username, email, password) VALUES ('chef', 'b@example.com', 'x')").Error
	assert.Error(t, err, "usernames are unique regardless of case")
	require.NoError(t, db.Exec("INSERT INTO tags (name) VALUES ('Vegan')").Error)
	assert.Error(t, db.Exec("INSERT INTO tags (name) VALUES ('VEGAN')").Error)

	status, err := GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.False(t, status.UsesSQL)
	assert.Equal(t, "sqlite", status.Driver)
}

func TestRegisteredMigrations(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms)
	assert.Equal(t, 1, ms[0].Version)
	assert.Equal(t, "000001_init", ms[0].String())
	assert.Contains(t, ms[0].UpScript, "CREATE TABLE IF NOT EXISTS recipes")
	assert.Contains(t, ms[0].DownScript, "DROP TABLE IF EXISTS recipes")
	require.Len(t, ms, 2)
	assert.Equal(t, "000002_case_insensitive_names", ms[1].String())
	assert.Contains(t, ms[1].UpScript, "CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_lower")
	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestLoadMigrations(t *testing.T) {
	file := func(body string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(body)} }

	t.Run("orders pairs by version", func(t *testing.T) {
		ms, err := loadMigrations(fstest.MapFS{
			"migrations/000010_recipe_notes.up.sql":   file("ALTER TABLE recipes ADD COLUMN notes TEXT;"),
			"migrations/000010_recipe_notes.down.sql": file("ALTER TABLE recipes DROP COLUMN notes;"),
			"migrations/000003_book_slugs.up.sql":     file("ALTER TABLE recipe_books ADD COLUMN slug TEXT;"),
			"migrations/000003_book_slugs.down.sql":   file("ALTER TABLE recipe_books DROP COLUMN slug;"),
		})
		require.NoError(t, err)
		require.Len(t, ms, 2)
		assert.Equal(t, "000003_book_slugs", ms[0].String())
		assert.Equal(t, "000010_recipe_notes", ms[1].String())
		assert.Equal(t, "ALTER TABLE recipes DROP COLUMN notes;", ms[1].DownScript)
	})

	tests := []struct {
		name  string
		fsys  fstest.MapFS
		match string
	}{
		{"missing down", fstest.MapFS{
			"migrations/000004_tag_colour.up.sql": file("ALTER TABLE tags ADD COLUMN colour TEXT;"),
		}, "no down script"},
		{"version reused", fstest.MapFS{
			"migrations/000005_a.up.sql":   file("SELECT 1;"),
			"migrations/000005_a.down.sql": file("SELECT 1;"),
			"migrations/000005_b.up.sql":   file("SELECT 1;"),
			"migrations/000005_b.down.sql": file("SELECT 1;"),
		}, "used by both"},
		{"stray file", fstest.MapFS{
			"migrations/seed_recipes.sql": file("INSERT INTO recipes DEFAULT VALUES;"),
		}, "name must look like"},
		{"blank script", fstest.MapFS{
			"migrations/000006_noop.up.sql":   file("  \n"),
			"migrations/000006_noop.down.sql": file("SELECT 1;"),
		}, "is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadMigrations(tt.fsys)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.match)
		})
	}
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1, Name: "init"}}
	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1}, registered))
	err := validateAppliedVersions([]int{1, 7}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000007")
}
