package comments

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/mediashare-backend/internal/users"
	"github.com/angelmondragon/mediashare-backend/pkg/db/models"
)

// MaxTextLength caps comment length in characters.
const MaxTextLength = 2000

// CreateRequest is the body accepted by the create endpoint.
type CreateRequest struct {
	Text string `json:"text" validate:"required"`
}

// CommentDTO is the public representation of a comment.
type CommentDTO struct {
	ID        uuid.UUID     `json:"id"`
	MediaID   uuid.UUID     `json:"media_id"`
	UserID    uuid.UUID     `json:"user_id"`
	Text      string        `json:"text"`
	Author    users.Summary `json:"author"`
	CreatedAt time.Time     `json:"created_at"`
}

func toDTO(c models.Comment, author users.Summary) CommentDTO {
	return CommentDTO{
		ID:        c.ID,
		MediaID:   c.MediaID,
		UserID:    c.UserID,
		Text:      c.Text,
		Author:    author,
		CreatedAt: c.CreatedAt,
	}
}
