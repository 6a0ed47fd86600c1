package dto

import (
	"time"

	"github.com/yukikurage/taskdesk/internal/models"
)

// UserDTO represents a user in API responses. It never carries a password.
type UserDTO struct {
	ID       uint64          `json:"id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	FullName string          `json:"fullName"`
	Role     models.UserRole `json:"role"`
	IsActive bool            `json:"isActive"`
	JoinedAt time.Time       `json:"joinedAt"`
}

// LoginResponse wraps the authenticated user
type LoginResponse struct {
	User UserDTO `json:"user"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		IsActive: user.IsActive,
		JoinedAt: user.JoinedAt,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	items := make([]UserDTO, len(users))
	for i, u := range users {
		items[i] = ToUserDTO(u)
	}
	return items
}
