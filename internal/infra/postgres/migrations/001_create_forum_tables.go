package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createForumTables creates users, tags, discussions and their pivot.
func createForumTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "001_create_forum_tables",
		Migrate: func(tx *gorm.DB) error {
			statements := []string{
				`CREATE TABLE IF NOT EXISTS users (
					id BIGSERIAL PRIMARY KEY,
					username VARCHAR(100) NOT NULL,
					token VARCHAR(100),
					groups TEXT[],
					is_admin BOOLEAN NOT NULL DEFAULT false,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

					CONSTRAINT uq_users_username UNIQUE (username),
					CONSTRAINT uq_users_token UNIQUE (token)
				)`,
				`CREATE TABLE IF NOT EXISTS tags (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(100) NOT NULL,
					slug VARCHAR(100) NOT NULL,
					description TEXT,
					color VARCHAR(50),
					icon VARCHAR(100),
					position INTEGER,
					parent_id BIGINT REFERENCES tags(id) ON DELETE SET NULL,

					-- Visibility
					is_restricted BOOLEAN NOT NULL DEFAULT false,
					is_hidden BOOLEAN NOT NULL DEFAULT false,
					allowed_groups TEXT[],

					-- Denormalized stats
					discussion_count INTEGER NOT NULL DEFAULT 0,
					last_posted_at TIMESTAMP,
					last_posted_discussion_id BIGINT,

					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

					CONSTRAINT uq_tags_slug UNIQUE (slug)
				)`,
				`CREATE TABLE IF NOT EXISTS discussions (
					id BIGSERIAL PRIMARY KEY,
					title VARCHAR(200) NOT NULL,
					slug VARCHAR(200) NOT NULL,
					comment_count INTEGER NOT NULL DEFAULT 1,
					participant_count INTEGER NOT NULL DEFAULT 1,
					is_sticky BOOLEAN NOT NULL DEFAULT false,
					is_hidden BOOLEAN NOT NULL DEFAULT false,
					first_post_content TEXT,
					user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					last_posted_at TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS discussion_tag (
					discussion_id BIGINT NOT NULL REFERENCES discussions(id) ON DELETE CASCADE,
					tag_id BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
					PRIMARY KEY (discussion_id, tag_id)
				)`,
			}
			for _, stmt := range statements {
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}

			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_tags_lower_slug ON tags(lower(slug));",
				"CREATE INDEX IF NOT EXISTS idx_tags_parent_id ON tags(parent_id);",
				"CREATE INDEX IF NOT EXISTS idx_discussions_last_posted_at ON discussions(last_posted_at DESC NULLS LAST);",
				"CREATE INDEX IF NOT EXISTS idx_discussions_comment_count ON discussions(comment_count DESC);",
				"CREATE INDEX IF NOT EXISTS idx_discussions_created_at ON discussions(created_at DESC);",
				"CREATE INDEX IF NOT EXISTS idx_discussions_user_id ON discussions(user_id);",
				"CREATE INDEX IF NOT EXISTS idx_discussion_tag_tag_id ON discussion_tag(tag_id);",
			}
			for _, idx := range indexes {
				if err := tx.Exec(idx).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS discussion_tag, discussions, tags, users;").Error
		},
	}
}
