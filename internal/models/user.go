package models

import "time"

type User struct {
	ID    int    `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:255;not null" json:"name"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	// Password holds the bcrypt hash. It is never serialized; read paths
	// that need it must select it explicitly.
	Password          string `gorm:"not null" json:"-"`
	ProfilePictureURL string `json:"profile_picture_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	ProfilePictureURL    string `json:"profile_picture_url"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
