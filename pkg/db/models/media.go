package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/mediashare-backend/pkg/enums"
	"github.com/angelmondragon/mediashare-backend/pkg/types"
)

// Media captures metadata for an uploaded blob. UserID is a weak reference.
type Media struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	Title         string          `gorm:"column:title;not null"`
	Caption       string          `gorm:"column:caption;not null"`
	Location      string          `gorm:"column:location;not null"`
	People        types.StringSet `gorm:"column:people;type:text;not null"`
	MediaURL      string          `gorm:"column:media_url;not null"`
	ThumbnailURL  *string         `gorm:"column:thumbnail_url"`
	MediaType     enums.MediaType `gorm:"column:media_type;type:text;not null"`
	MimeType      string          `gorm:"column:mime_type;not null"`
	SizeBytes     int64           `gorm:"column:size_bytes;not null"`
	RatingAverage float64         `gorm:"column:rating_average;not null;default:0"`
	RatingCount   int64           `gorm:"column:rating_count;not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime;index"`
}

// TableName pins the table name.
func (Media) TableName() string { return "media" }

func (m *Media) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
