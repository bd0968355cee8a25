package ratings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/mediashare-backend/pkg/db/models"
)

// Repository persists ratings and the aggregate mirrored onto media.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByUserAndMedia returns gorm.ErrRecordNotFound when the user has not rated.
func (r *Repository) FindByUserAndMedia(ctx context.Context, userID, mediaID uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND media_id = ?", userID, mediaID).
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *Repository) Create(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

func (r *Repository) UpdateValue(ctx context.Context, rating *models.Rating, value int) error {
	return r.db.WithContext(ctx).Model(rating).Update("value", value).Error
}

// Aggregate recomputes the mean and count over every rating of mediaID.
// No ratings yields a zero mean.
func (r *Repository) Aggregate(ctx context.Context, mediaID uuid.UUID) (Summary, error) {
	var row struct {
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("COALESCE(AVG(CAST(value AS DOUBLE PRECISION)), 0) AS average, COUNT(*) AS count").
		Where("media_id = ?", mediaID).
		Scan(&row).Error
	if err != nil {
		return Summary{}, err
	}
	return Summary{AverageRating: row.Average, Count: row.Count}, nil
}

// SyncMediaAggregate writes the recomputed aggregate onto the media row.
func (r *Repository) SyncMediaAggregate(ctx context.Context, mediaID uuid.UUID, summary Summary) error {
	return r.db.WithContext(ctx).
		Model(&models.Media{}).
		Where("id = ?", mediaID).
		Updates(map[string]any{
			"rating_average": summary.AverageRating,
			"rating_count":   summary.Count,
		}).Error
}

func (r *Repository) MediaExists(ctx context.Context, mediaID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Media{}).Where("id = ?", mediaID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteByMedia removes every rating of mediaID and returns how many went.
func (r *Repository) DeleteByMedia(ctx context.Context, mediaID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("media_id = ?", mediaID).Delete(&models.Rating{})
	return res.RowsAffected, res.Error
}
