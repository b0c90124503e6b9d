package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/socialfeed/backend/internal/models"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// GetProfile returns the caller's profile with aggregate counts: how many
// posts they own, and how many reactions and comments those posts have
// received.
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	ownPosts := h.db.Model(&models.Post{}).Select("id").Where("user_id = ?", user.ID)

	var postCount, reactionCount, commentCount int64
	if err := h.db.Model(&models.Post{}).Where("user_id = ?", user.ID).Count(&postCount).Error; err != nil {
		serverError(c, err, "profile: post count failed")
		return
	}
	if err := h.db.Model(&models.Reaction{}).Where("post_id IN (?)", ownPosts).Count(&reactionCount).Error; err != nil {
		serverError(c, err, "profile: reaction count failed")
		return
	}
	if err := h.db.Model(&models.Comment{}).Where("post_id IN (?)", ownPosts).Count(&commentCount).Error; err != nil {
		serverError(c, err, "profile: comment count failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                  user.ID,
		"name":                user.Name,
		"email":               user.Email,
		"profile_picture_url": nullable(user.ProfilePictureURL),
		"created_at":          user.CreatedAt,
		"post_count":          postCount,
		"reaction_count":      reactionCount,
		"comment_count":       commentCount,
	})
}
