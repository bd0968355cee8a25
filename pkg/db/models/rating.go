package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rating is a user's 1-5 score for a media item. At most one row exists per
// (user_id, media_id).
type Rating struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	MediaID   uuid.UUID `gorm:"column:media_id;type:uuid;not null;uniqueIndex:ux_ratings_user_media,priority:2;index"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_ratings_user_media,priority:1"`
	Value     int       `gorm:"column:value;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Rating) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

