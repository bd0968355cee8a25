package comments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/mediashare-backend/pkg/db/models"
)

// Repository persists comments.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// ListByMedia returns comments in creation order; id breaks timestamp ties.
func (r *Repository) ListByMedia(ctx context.Context, mediaID uuid.UUID) ([]models.Comment, error) {
	var rows []models.Comment
	err := r.db.WithContext(ctx).
		Where("media_id = ?", mediaID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteByMedia removes every comment on mediaID and returns how many went.
func (r *Repository) DeleteByMedia(ctx context.Context, mediaID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("media_id = ?", mediaID).Delete(&models.Comment{})
	return res.RowsAffected, res.Error
}

// MediaExists reports whether the media row is present.
func (r *Repository) MediaExists(ctx context.Context, mediaID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Media{}).Where("id = ?", mediaID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
