package dto

import (
	"time"

	"github.com/yukikurage/team-management-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToUserDTO converts a user profile to DTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	}
}

// CascadeReportDTO summarizes a finished cascade
type CascadeReportDTO struct {
	Operation   string `json:"operation"`
	Removed     int    `json:"removed"`
	AlreadyGone int    `json:"already_gone"`
	Skipped     int    `json:"skipped"`
}
