package models

import (
	"time"

	"talaam-backend/internal/workflow"
)

type User struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Name         string        `gorm:"size:100;not null" json:"name"`
	Email        string        `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string        `gorm:"size:255;not null" json:"-"`
	Role         workflow.Role `gorm:"size:20;not null;index" json:"role"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
