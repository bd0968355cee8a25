package ratings

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/mediashare-backend/pkg/db/models"
)

const (
	MinValue = 1
	MaxValue = 5
)

// RateRequest is the body accepted by the rate endpoint.
type RateRequest struct {
	Value *int `json:"value" validate:"required"`
}

// Summary is the recomputed aggregate for a media item.
type Summary struct {
	AverageRating float64 `json:"average_rating"`
	Count         int64   `json:"count"`
}

// RatingDTO is a single user's rating.
type RatingDTO struct {
	ID        uuid.UUID `json:"id"`
	MediaID   uuid.UUID `json:"media_id"`
	UserID    uuid.UUID `json:"user_id"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toDTO(r models.Rating) RatingDTO {
	return RatingDTO{
		ID:        r.ID,
		MediaID:   r.MediaID,
		UserID:    r.UserID,
		Value:     r.Value,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
