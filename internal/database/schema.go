package database

import (
	"context"
	"fmt"
	"log/slog"

	"recipebox/internal/config"
	"recipebox/internal/middleware"

	"gorm.io/gorm"
)

// SchemaStatus describes how the schema will be brought up to date and what
// is still pending.
type SchemaStatus struct {
	Driver            string
	Environment       string
	UsesSQL           bool
	AppliedVersions   []int
	PendingMigrations []Migration
}

// usesSQLMigrations reports whether the versioned SQL scripts manage the
// schema. They are written for postgres; sqlite databases are auto-migrated.
func usesSQLMigrations(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

// caseInsensitiveIndexes are the expression indexes struct tags cannot
// declare. Usernames and tag names are unique regardless of case.
var caseInsensitiveIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_lower ON users (LOWER(username))",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_tags_name_lower ON tags (LOWER(name))",
}

// AutoMigrate creates or updates every persistent model's table.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return err
	}
	for _, stmt := range caseInsensitiveIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// ApplySchema brings the schema up to date for the connected driver.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if usesSQLMigrations(db) {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
		return nil
	}

	middleware.Logger.Info("Running GORM AutoMigrate",
		slog.String("driver", db.Dialector.Name()),
		slog.String("env", cfg.Env),
	)
	if err := AutoMigrate(db.WithContext(ctx)); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// GetSchemaStatus reports applied and pending migrations.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	status := &SchemaStatus{
		Driver:      db.Dialector.Name(),
		Environment: cfg.Env,
		UsesSQL:     usesSQLMigrations(db),
	}
	if !status.UsesSQL {
		return status, nil
	}

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied

	appliedSet := make(map[int]bool, len(applied))
	for _, version := range applied {
		appliedSet[version] = true
	}
	for _, m := range GetMigrations() {
		if !appliedSet[m.Version] {
			status.PendingMigrations = append(status.PendingMigrations, m)
		}
	}
	return status, nil
}
