package auth

import (
	"github.com/angelmondragon/mediashare-backend/internal/users"
	"github.com/angelmondragon/mediashare-backend/pkg/enums"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest contains the payload required to create an account.
type RegisterRequest struct {
	Username string         `json:"username" validate:"required,max=64"`
	Password string         `json:"password" validate:"required,max=256"`
	Role     enums.UserRole `json:"role" validate:"required,oneof=creator consumer"`
}

// AuthResponse is returned by both register and login.
type AuthResponse struct {
	Token string         `json:"token"`
	User  *users.UserDTO `json:"user"`
}
