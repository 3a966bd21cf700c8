package dto

import (
	"time"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/services"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	FullName  string     `json:"full_name"`
	IsActive  bool       `json:"is_active"`
	AvatarURL string     `json:"avatar_url"`
	Bio       string     `json:"bio"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
}

// UserWithStatsDTO adds task aggregates to the user representation
type UserWithStatsDTO struct {
	UserDTO
	TaskStats *services.UserStats `json:"task_stats,omitempty"`
}

// ToUserWithStatsDTO converts a User model and its aggregates to UserWithStatsDTO
func ToUserWithStatsDTO(user models.User, stats *services.UserStats) UserWithStatsDTO {
	return UserWithStatsDTO{
		UserDTO:   ToUserDTO(user),
		TaskStats: stats,
	}
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		FullName:  user.FullName(),
		IsActive:  user.IsActive,
		AvatarURL: user.AvatarURL,
		Bio:       user.Bio,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
	}
}
