package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"forum-tags-service/internal/domain"
	"forum-tags-service/internal/infra/postgres/migrations"
)

// setupTestDB creates a PostgreSQL testcontainer, runs the migrations and
// returns a connected GORM DB.
//
// Prerequisites:
//   - Docker must be running
//
// OR
//   - Skip tests with: go test -short
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgresContainer.Run(ctx,
		"postgres:16-alpine",
		postgresContainer.WithDatabase("testdb"),
		postgresContainer.WithUsername("testuser"),
		postgresContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf(`Failed to start PostgreSQL container: %v

Docker Prerequisites:
1. Ensure Docker is running
2. OR skip integration tests: go test -short

`, err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	db, err := gorm.Open(postgresDriver.Open(connStr), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err, "Failed to connect to test database")

	require.NoError(t, migrations.Run(db), "Failed to run migrations")

	t.Cleanup(func() {
		_ = Close(db)
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	return db
}

type forumFixture struct {
	general  TagModel
	staff    TagModel
	internal TagModel
	support  TagModel
	alice    UserModel
	bob      UserModel
}

func intPtr(v int) *int { return &v }

// seedForum inserts a small forum: general (seeded by migration), a
// restricted staff tag with a child, a secondary support tag and a few
// discussions.
func seedForum(t *testing.T, db *gorm.DB) forumFixture {
	t.Helper()

	var f forumFixture
	require.NoError(t, db.Where("slug = ?", "general").First(&f.general).Error)

	f.staff = TagModel{Name: "Staff", Slug: "staff", Position: intPtr(1), IsRestricted: true, AllowedGroups: []string{"moderators"}}
	require.NoError(t, db.Create(&f.staff).Error)

	f.internal = TagModel{Name: "Internal", Slug: "internal", ParentID: &f.staff.ID}
	require.NoError(t, db.Create(&f.internal).Error)

	f.support = TagModel{Name: "Support", Slug: "Support"}
	require.NoError(t, db.Create(&f.support).Error)

	f.alice = UserModel{Username: "Alice", Token: "alice-token", Groups: []string{"moderators"}}
	f.bob = UserModel{Username: "bob", Token: "bob-token"}
	require.NoError(t, db.Create(&f.alice).Error)
	require.NoError(t, db.Create(&f.bob).Error)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	at := func(h int) *time.Time {
		v := base.Add(time.Duration(h) * time.Hour)
		return &v
	}

	discussions := []DiscussionModel{
		{Title: "Welcome to the forum", Slug: "welcome", CommentCount: 12, UserID: &f.alice.ID,
			FirstPostContent: "Say hello here", CreatedAt: base, LastPostedAt: at(5), Tags: []TagModel{f.general}},
		{Title: "Printer is broken", Slug: "printer", CommentCount: 3, UserID: &f.bob.ID,
			FirstPostContent: "The office printer jams", CreatedAt: base.Add(time.Hour), LastPostedAt: at(2), Tags: []TagModel{f.general, f.support}},
		{Title: "Moderator handbook", Slug: "handbook", CommentCount: 7, UserID: &f.alice.ID,
			FirstPostContent: "Rules for moderators", CreatedAt: base.Add(2 * time.Hour), LastPostedAt: at(9), Tags: []TagModel{f.staff, f.internal}},
		{Title: "Loose thought", Slug: "loose", CommentCount: 1, UserID: &f.bob.ID,
			FirstPostContent: "No tags on this one", CreatedAt: base.Add(3 * time.Hour)},
		{Title: "Hidden spam", Slug: "spam", CommentCount: 99, IsHidden: true,
			CreatedAt: base.Add(4 * time.Hour), LastPostedAt: at(20), Tags: []TagModel{f.general}},
	}
	for i := range discussions {
		require.NoError(t, db.Create(&discussions[i]).Error)
	}

	return f
}

func titles(discussions []*domain.Discussion) []string {
	out := make([]string, len(discussions))
	for i, d := range discussions {
		out[i] = d.Title
	}

	return out
}

func TestTagRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	f := seedForum(t, db)
	repo := NewTagRepository(db)
	ctx := context.Background()

	t.Run("GetIDForSlug is case-insensitive", func(t *testing.T) {
		id, err := repo.GetIDForSlug(ctx, "SUPPORT")
		require.NoError(t, err)
		assert.Equal(t, f.support.ID, id)

		id, err = repo.GetIDForSlug(ctx, "nope")
		require.NoError(t, err)
		assert.Zero(t, id)
	})

	t.Run("All orders primary tags first", func(t *testing.T) {
		tags, err := repo.All(ctx)
		require.NoError(t, err)
		require.Len(t, tags, 4)
		assert.Equal(t, "general", tags[0].Slug)
		assert.Equal(t, "staff", tags[1].Slug)
		assert.Equal(t, []string{"moderators"}, tags[1].AllowedGroups)
	})

	t.Run("FindOrFail checks visibility", func(t *testing.T) {
		guest := domain.Guest()
		moderator := &domain.Actor{ID: f.alice.ID, Groups: []string{"moderators"}}

		tag, err := repo.FindOrFail(ctx, f.general.ID, guest)
		require.NoError(t, err)
		assert.Equal(t, "General", tag.Name)

		_, err = repo.FindOrFail(ctx, f.internal.ID, guest)
		assert.ErrorIs(t, err, domain.ErrPermissionDenied, "child of a restricted tag")

		tag, err = repo.FindOrFail(ctx, f.internal.ID, moderator)
		require.NoError(t, err)
		assert.Equal(t, "internal", tag.Slug)

		_, err = repo.FindOrFail(ctx, 0, guest)
		assert.ErrorIs(t, err, domain.ErrTagNotFound)

		_, err = repo.FindOrFail(ctx, 999999, guest)
		assert.ErrorIs(t, err, domain.ErrTagNotFound)
	})

	t.Run("ComputeStats and UpdateStats", func(t *testing.T) {
		stats, err := repo.ComputeStats(ctx)
		require.NoError(t, err)

		byTag := make(map[int64]domain.TagStats)
		for _, s := range stats {
			byTag[s.TagID] = s
		}

		general := byTag[f.general.ID]
		assert.Equal(t, 2, general.DiscussionCount, "hidden discussions are not counted")
		require.NotNil(t, general.LastPostedAt)
		assert.Equal(t, 15, general.LastPostedAt.Hour())
		assert.Equal(t, 1, byTag[f.support.ID].DiscussionCount)
		assert.Equal(t, 1, byTag[f.staff.ID].DiscussionCount)

		require.NoError(t, repo.UpdateStats(ctx, stats))

		var stored TagModel
		require.NoError(t, db.First(&stored, f.general.ID).Error)
		assert.Equal(t, 2, stored.DiscussionCount)
		assert.NotNil(t, stored.LastPostedDiscussionID)

		// Tags missing from the stats are reset.
		require.NoError(t, repo.UpdateStats(ctx, nil))
		require.NoError(t, db.First(&stored, f.general.ID).Error)
		assert.Zero(t, stored.DiscussionCount)
		assert.Nil(t, stored.LastPostedAt)
	})
}

func TestDiscussionRepository_Search(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	f := seedForum(t, db)
	repo := NewDiscussionRepository(db)
	ctx := context.Background()

	tests := []struct {
		name     string
		criteria domain.DiscussionCriteria
		want     []string
	}{
		{
			name:     "default sort by last post, nulls last",
			criteria: domain.DiscussionCriteria{},
			want:     []string{"Moderator handbook", "Welcome to the forum", "Printer is broken", "Loose thought"},
		},
		{
			name: "tag filter",
			criteria: domain.DiscussionCriteria{
				RequiredTagSets: [][]int64{{f.general.ID}},
				Sort:            []domain.SortKey{{Field: domain.SortFieldCommentCount, Descending: true}},
			},
			want: []string{"Welcome to the forum", "Printer is broken"},
		},
		{
			name: "excluded tags",
			criteria: domain.DiscussionCriteria{
				ExcludedTagIDs: []int64{f.staff.ID, f.support.ID},
				Sort:           []domain.SortKey{{Field: domain.SortFieldCreatedAt}},
			},
			want: []string{"Welcome to the forum", "Loose thought"},
		},
		{
			name:     "untagged",
			criteria: domain.DiscussionCriteria{Untagged: true},
			want:     []string{"Loose thought"},
		},
		{
			name: "author",
			criteria: domain.DiscussionCriteria{
				Authors: []string{"alice"},
				Sort:    []domain.SortKey{{Field: domain.SortFieldCreatedAt}},
			},
			want: []string{"Welcome to the forum", "Moderator handbook"},
		},
		{
			name:     "full text by relevance",
			criteria: domain.DiscussionCriteria{Text: "printer"},
			want:     []string{"Printer is broken"},
		},
		{
			name: "offset and limit",
			criteria: domain.DiscussionCriteria{
				Sort:   []domain.SortKey{{Field: domain.SortFieldCreatedAt, Descending: true}},
				Offset: 1,
				Limit:  2,
			},
			want: []string{"Moderator handbook", "Printer is broken"},
		},
		{
			name:     "unknown tag matches nothing",
			criteria: domain.DiscussionCriteria{RequiredTagSets: [][]int64{{0}}},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Search(ctx, tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}

	t.Run("loads tags and author", func(t *testing.T) {
		got, err := repo.Search(ctx, domain.DiscussionCriteria{Authors: []string{"bob"}, Tagged: true})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "bob", got[0].AuthorName)
		require.Len(t, got[0].Tags, 2)
		assert.Equal(t, "general", got[0].Tags[0].Slug)
	})
}

func TestTagRepository_GetIDForSlugFoldsCase(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	strasse := TagModel{Name: "Straße", Slug: "straße"}
	require.NoError(t, db.Create(&strasse).Error)
	sport := TagModel{Name: "Sport", Slug: "ſport"}
	require.NoError(t, db.Create(&sport).Error)

	tests := []struct {
		slug string
		want int64
	}{
		{"straße", strasse.ID},
		{"Straße", strasse.ID},
		{"STRASSE", strasse.ID},
		{"sport", sport.ID},
		{"ſport", sport.ID},
		{"strase", 0},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			id, err := repo.GetIDForSlug(ctx, tt.slug)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestUserRepository_FindByToken(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	seedForum(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	actor, err := repo.FindByToken(ctx, "alice-token")
	require.NoError(t, err)
	assert.Equal(t, "Alice", actor.Username)
	assert.Equal(t, []string{"moderators"}, actor.Groups)

	_, err = repo.FindByToken(ctx, "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = repo.FindByToken(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
