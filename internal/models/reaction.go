package models

import "time"

// Reaction records one user's like on one post. The composite unique index
// is what makes concurrent toggles safe: a second insert for the same
// (post, user) pair is rejected by the database rather than by an
// application-level check.
type Reaction struct {
	ID     int `gorm:"primaryKey" json:"id"`
	PostID int `gorm:"uniqueIndex:idx_reactions_post_user;not null" json:"post_id"`
	UserID int `gorm:"uniqueIndex:idx_reactions_post_user;not null" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}
