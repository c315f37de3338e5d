// Package migrations provides database migrations using gormigrate.
package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Migrations returns all database migrations in order.
func Migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		createForumTables(),
		addFTSSupport(),
		seedGeneralTag(),
	}
}

// Run executes all pending migrations.
func Run(db *gorm.DB) error {
	return newMigrator(db).Migrate()
}

// Rollback rolls back the last applied migration.
func Rollback(db *gorm.DB) error {
	return newMigrator(db).RollbackLast()
}

func newMigrator(db *gorm.DB) *gormigrate.Gormigrate {
	opts := *gormigrate.DefaultOptions
	opts.UseTransaction = true

	return gormigrate.New(db, &opts, Migrations())
}
