package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// seedGeneralTag creates the default primary tag of a fresh forum.
func seedGeneralTag() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "003_seed_general_tag",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				INSERT INTO tags (name, slug, description, color, position)
				VALUES ('General', 'general', 'General discussion', '#888', 0)
				ON CONFLICT (slug) DO NOTHING
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`DELETE FROM tags WHERE slug = 'general' AND discussion_count = 0`).Error
		},
	}
}
