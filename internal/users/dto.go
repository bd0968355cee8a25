package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/mediashare-backend/pkg/db/models"
	"github.com/angelmondragon/mediashare-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID        uuid.UUID      `json:"id"`
	Username  string         `json:"username"`
	Role      enums.UserRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}

// Summary is the minimal identity embedded in media and comments.
type Summary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Username     string
	PasswordHash string
	Role         enums.UserRole
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// SummaryFor returns the summary for id from lookup. Users that no longer
// resolve keep their id with an empty username.
func SummaryFor(lookup map[uuid.UUID]models.User, id uuid.UUID) Summary {
	if u, ok := lookup[id]; ok {
		return Summary{ID: u.ID, Username: u.Username}
	}
	return Summary{ID: id}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Username:     c.Username,
		PasswordHash: c.PasswordHash,
		Role:         c.Role,
	}
}
