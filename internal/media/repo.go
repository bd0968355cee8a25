package media

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/mediashare-backend/pkg/db/models"
	"github.com/angelmondragon/mediashare-backend/pkg/enums"
)

// Repository exposes media metadata persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a media repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type listQuery struct {
	search    string
	mediaType *enums.MediaType
	userID    *uuid.UUID
}

// Create persists a media record.
func (r *Repository) Create(ctx context.Context, media *models.Media) (*models.Media, error) {
	if err := r.db.WithContext(ctx).Create(media).Error; err != nil {
		return nil, err
	}
	return media, nil
}

// FindByID retrieves a media record by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	var m models.Media
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns media newest first, applying the optional filters.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Media, error) {
	q := r.db.WithContext(ctx).Model(&models.Media{})
	if opts.search != "" {
		pattern := "%" + escapeLike(strings.ToLower(opts.search)) + "%"
		q = q.Where(
			`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(caption) LIKE ? ESCAPE '\' OR LOWER(location) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
	}
	if opts.mediaType != nil {
		q = q.Where("media_type = ?", *opts.mediaType)
	}
	if opts.userID != nil {
		q = q.Where("user_id = ?", *opts.userID)
	}

	var rows []models.Media
	if err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes a media record.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Media{}).Error
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
