package models

import "time"

// Comment lives and dies with its parent post. UserID is a display-only
// back-reference to the author; ownership checks happen on the post.
type Comment struct {
	ID      int    `gorm:"primaryKey" json:"id"`
	PostID  int    `gorm:"index;not null" json:"post_id"`
	UserID  int    `gorm:"not null" json:"user_id"`
	Content string `gorm:"not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}
