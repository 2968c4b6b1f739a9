package response

import (
	"time"

	"civic-report/internal/data/entity"
)

type UserResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      entity.UserRole `json:"role"`
	Active    bool            `json:"active"`
	Photo     *string         `json:"photo,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// AuthResponse is returned by every flow that issues a token
type AuthResponse struct {
	Token     string       `json:"-"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// Helper converters
func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Active:    user.Active,
		Photo:     user.Photo,
		CreatedAt: user.CreatedAt,
	}
}
