package media

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/mediashare-backend/internal/users"
	"github.com/angelmondragon/mediashare-backend/pkg/db/models"
	"github.com/angelmondragon/mediashare-backend/pkg/enums"
)

// MediaDTO is the public representation of a media item.
type MediaDTO struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Caption       string          `json:"caption"`
	Location      string          `json:"location"`
	People        []string        `json:"people"`
	MediaURL      string          `json:"media_url"`
	ThumbnailURL  *string         `json:"thumbnail_url,omitempty"`
	MediaType     enums.MediaType `json:"media_type"`
	MimeType      string          `json:"mime_type"`
	SizeBytes     int64           `json:"size_bytes"`
	RatingAverage float64         `json:"rating_average"`
	RatingCount   int64           `json:"rating_count"`
	UserID        uuid.UUID       `json:"user_id"`
	Uploader      users.Summary   `json:"uploader"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toDTO(m models.Media, uploader users.Summary) MediaDTO {
	people := []string(m.People)
	if people == nil {
		people = []string{}
	}
	return MediaDTO{
		ID:            m.ID,
		Title:         m.Title,
		Caption:       m.Caption,
		Location:      m.Location,
		People:        people,
		MediaURL:      m.MediaURL,
		ThumbnailURL:  m.ThumbnailURL,
		MediaType:     m.MediaType,
		MimeType:      m.MimeType,
		SizeBytes:     m.SizeBytes,
		RatingAverage: m.RatingAverage,
		RatingCount:   m.RatingCount,
		UserID:        m.UserID,
		Uploader:      uploader,
		CreatedAt:     m.CreatedAt,
	}
}
