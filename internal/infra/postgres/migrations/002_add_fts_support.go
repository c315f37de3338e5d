package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// addFTSSupport adds full-text search over discussions.
//
// The search_vector column weighs the title 'A' and the first post 'B'; it is
// kept current by a trigger and indexed with GIN. Relevance ordering in the
// discussion repository multiplies ts_rank by LOG(comment_count + 10), so a
// discussion that does not match the text always ranks zero however active
// it is.
func addFTSSupport() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "002_add_fts_support",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				ALTER TABLE discussions
				ADD COLUMN IF NOT EXISTS search_vector tsvector
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_discussions_search_vector
				ON discussions USING GIN (search_vector)
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE OR REPLACE FUNCTION discussions_search_vector_update()
				RETURNS trigger AS $$
				BEGIN
					NEW.search_vector :=
						setweight(to_tsvector('english', coalesce(NEW.title, '')), 'A') ||
						setweight(to_tsvector('english', coalesce(NEW.first_post_content, '')), 'B');
					RETURN NEW;
				END
				$$ LANGUAGE plpgsql
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`DROP TRIGGER IF EXISTS trg_discussions_search_vector ON discussions`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE TRIGGER trg_discussions_search_vector
				BEFORE INSERT OR UPDATE OF title, first_post_content
				ON discussions
				FOR EACH ROW
				EXECUTE FUNCTION discussions_search_vector_update()
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				UPDATE discussions SET search_vector =
					setweight(to_tsvector('english', coalesce(title, '')), 'A') ||
					setweight(to_tsvector('english', coalesce(first_post_content, '')), 'B')
				WHERE search_vector IS NULL
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			_ = tx.Exec(`DROP TRIGGER IF EXISTS trg_discussions_search_vector ON discussions`).Error
			_ = tx.Exec(`DROP FUNCTION IF EXISTS discussions_search_vector_update()`).Error
			_ = tx.Exec(`DROP INDEX IF EXISTS idx_discussions_search_vector`).Error
			_ = tx.Exec(`ALTER TABLE discussions DROP COLUMN IF EXISTS search_vector`).Error
			return nil
		},
	}
}
