package models

import "time"

// Post is owned by the user who created it; UserID never changes after
// creation. Image and Video hold stored filenames only; URL composition
// happens at read time.
type Post struct {
	ID      int    `gorm:"primaryKey" json:"id"`
	UserID  int    `gorm:"not null" json:"user_id"`
	Title   string `gorm:"not null" json:"title"`
	Content string `gorm:"not null" json:"content"`
	Image   string `json:"image"`
	Video   string `json:"video"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
}
