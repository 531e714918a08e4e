package models

import "time"

// User represents application user.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Login        string    `gorm:"size:100;uniqueIndex;not null" json:"login"`
	FullName     string    `gorm:"size:200" json:"full_name,omitempty"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Disabled     bool      `gorm:"not null;default:false" json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
