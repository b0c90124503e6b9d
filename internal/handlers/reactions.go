package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/socialfeed/backend/internal/models"
)

type ReactionHandler struct {
	db *gorm.DB
}

func NewReactionHandler(db *gorm.DB) *ReactionHandler {
	return &ReactionHandler{db: db}
}

const maxToggleAttempts = 3

// ToggleReaction flips the caller's reaction on a post and returns the new
// status plus the recomputed total.
func (h *ReactionHandler) ToggleReaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	postID, err := strconv.Atoi(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid post ID"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
			return
		}
		serverError(c, err, "toggle reaction: post lookup failed")
		return
	}

	status, err := h.toggle(postID, user.ID)
	if err != nil {
		serverError(c, err, "toggle reaction: toggle failed")
		return
	}

	var reactionCount int64
	if err := h.db.Model(&models.Reaction{}).Where("post_id = ?", postID).Count(&reactionCount).Error; err != nil {
		serverError(c, err, "toggle reaction: count failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       fmt.Sprintf("Reaction %s", status),
		"status":        status,
		"reactionCount": reactionCount,
	})
}

// toggle removes the user's reaction if present, otherwise inserts one.
// Two concurrent toggles can both observe "absent"; the unique index on
// (post_id, user_id) rejects the loser's insert, and the retry turns that
// conflict into a delete instead of a server error.
func (h *ReactionHandler) toggle(postID, userID int) (string, error) {
	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		res := h.db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Reaction{})
		if res.Error != nil {
			return "", res.Error
		}
		if res.RowsAffected > 0 {
			return "unliked", nil
		}

		err := h.db.Create(&models.Reaction{PostID: postID, UserID: userID}).Error
		if err == nil {
			return "liked", nil
		}
		if !isUniqueViolation(err) {
			return "", err
		}
		// Lost the insert race; loop and delete the winner's row.
	}
	return "", fmt.Errorf("reaction toggle did not settle after %d attempts", maxToggleAttempts)
}
