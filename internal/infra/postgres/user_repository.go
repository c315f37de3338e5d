package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"forum-tags-service/internal/domain"
)

// UserRepository implements domain.UserRepository using PostgreSQL.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByToken resolves the user owning an access token.
func (r *UserRepository) FindByToken(ctx context.Context, token string) (*domain.Actor, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	var model UserModel
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnauthorized
		}

		return nil, fmt.Errorf("finding user by token: %w", err)
	}

	return model.ToActor(), nil
}
