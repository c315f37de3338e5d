package postgres

import (
	"time"

	"github.com/lib/pq"

	"forum-tags-service/internal/domain"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID       int64          `gorm:"primaryKey"`
	Username string         `gorm:"type:varchar(100);not null;uniqueIndex"`
	Token    string         `gorm:"type:varchar(100);uniqueIndex"`
	Groups   pq.StringArray `gorm:"type:text[]"`
	IsAdmin  bool           `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}

// ToActor converts UserModel to domain.Actor.
func (m *UserModel) ToActor() *domain.Actor {
	return &domain.Actor{
		ID:       m.ID,
		Username: m.Username,
		Groups:   m.Groups,
		IsAdmin:  m.IsAdmin,
		Token:    m.Token,
	}
}

// TagModel is the GORM model for the tags table.
type TagModel struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"type:varchar(100);not null"`
	Slug        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	Color       string `gorm:"type:varchar(50)"`
	Icon        string `gorm:"type:varchar(100)"`
	Position    *int
	ParentID    *int64 `gorm:"index"`

	IsRestricted  bool           `gorm:"not null;default:false"`
	IsHidden      bool           `gorm:"not null;default:false"`
	AllowedGroups pq.StringArray `gorm:"type:text[]"`

	DiscussionCount        int `gorm:"not null;default:0"`
	LastPostedAt           *time.Time
	LastPostedDiscussionID *int64

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for TagModel.
func (TagModel) TableName() string {
	return "tags"
}

// ToDomain converts TagModel to domain.Tag.
func (m *TagModel) ToDomain() *domain.Tag {
	return &domain.Tag{
		ID:                     m.ID,
		Name:                   m.Name,
		Slug:                   m.Slug,
		Description:            m.Description,
		Color:                  m.Color,
		Icon:                   m.Icon,
		Position:               m.Position,
		ParentID:               m.ParentID,
		IsRestricted:           m.IsRestricted,
		IsHidden:               m.IsHidden,
		AllowedGroups:          m.AllowedGroups,
		DiscussionCount:        m.DiscussionCount,
		LastPostedAt:           m.LastPostedAt,
		LastPostedDiscussionID: m.LastPostedDiscussionID,
	}
}

// DiscussionModel is the GORM model for the discussions table.
type DiscussionModel struct {
	ID               int64  `gorm:"primaryKey"`
	Title            string `gorm:"type:varchar(200);not null"`
	Slug             string `gorm:"type:varchar(200);not null"`
	CommentCount     int    `gorm:"not null;default:1"`
	ParticipantCount int    `gorm:"not null;default:1"`
	IsSticky         bool   `gorm:"not null;default:false"`
	IsHidden         bool   `gorm:"not null;default:false"`
	FirstPostContent string `gorm:"type:text"`

	UserID *int64     `gorm:"index"`
	User   *UserModel `gorm:"foreignKey:UserID"`

	Tags []TagModel `gorm:"many2many:discussion_tag;joinForeignKey:DiscussionID;joinReferences:TagID"`

	CreatedAt    time.Time `gorm:"not null;index"`
	LastPostedAt *time.Time
}

// TableName returns the table name for DiscussionModel.
func (DiscussionModel) TableName() string {
	return "discussions"
}

// ToDomain converts DiscussionModel to domain.Discussion.
func (m *DiscussionModel) ToDomain() *domain.Discussion {
	d := &domain.Discussion{
		ID:               m.ID,
		Title:            m.Title,
		Slug:             m.Slug,
		CommentCount:     m.CommentCount,
		ParticipantCount: m.ParticipantCount,
		IsSticky:         m.IsSticky,
		IsHidden:         m.IsHidden,
		AuthorID:         m.UserID,
		FirstPostContent: m.FirstPostContent,
		CreatedAt:        m.CreatedAt,
		LastPostedAt:     m.LastPostedAt,
		Tags:             make([]*domain.Tag, len(m.Tags)),
	}
	if m.User != nil {
		d.AuthorName = m.User.Username
	}
	for i := range m.Tags {
		d.Tags[i] = m.Tags[i].ToDomain()
	}

	return d
}

// DiscussionTagModel is the pivot between discussions and tags.
type DiscussionTagModel struct {
	DiscussionID int64 `gorm:"primaryKey"`
	TagID        int64 `gorm:"primaryKey;index"`
}

// TableName returns the table name for DiscussionTagModel.
func (DiscussionTagModel) TableName() string {
	return "discussion_tag"
}
