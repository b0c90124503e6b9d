package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/socialfeed/backend/internal/models"
)

type CommentHandler struct {
	db *gorm.DB
}

func NewCommentHandler(db *gorm.DB) *CommentHandler {
	return &CommentHandler{db: db}
}

func commentResponse(comment models.Comment) gin.H {
	return gin.H{
		"id":         comment.ID,
		"post_id":    comment.PostID,
		"content":    comment.Content,
		"created_at": comment.CreatedAt,
		"user": gin.H{
			"id":                  comment.User.ID,
			"name":                comment.User.Name,
			"profile_picture_url": nullable(comment.User.ProfilePictureURL),
		},
	}
}

// CreateComment adds a comment to an existing post.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	var input models.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Comment content is required"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, "id = ?", c.Param("postId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
			return
		}
		serverError(c, err, "add comment: post lookup failed")
		return
	}

	comment := models.Comment{
		PostID:  post.ID,
		UserID:  user.ID,
		Content: input.Content,
	}

	if err := h.db.Create(&comment).Error; err != nil {
		serverError(c, err, "add comment: insert failed")
		return
	}

	h.db.Preload("User").First(&comment, comment.ID)
	c.JSON(http.StatusCreated, commentResponse(comment))
}

// GetComments lists a post's comments, earliest first. A missing post and
// a post with zero comments both answer 404, but only the latter carries
// an empty "data" array; callers tell the outcomes apart by that field.
func (h *CommentHandler) GetComments(c *gin.Context) {
	var post models.Post
	if err := h.db.First(&post, "id = ?", c.Param("postId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
			return
		}
		serverError(c, err, "list comments: post lookup failed")
		return
	}

	var comments []models.Comment
	err := h.db.Where("post_id = ?", post.ID).
		Preload("User").
		Order("created_at asc").
		Find(&comments).Error
	if err != nil {
		serverError(c, err, "list comments: fetch failed")
		return
	}

	if len(comments) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No comments found", "data": []gin.H{}})
		return
	}

	responses := make([]gin.H, 0, len(comments))
	for _, comment := range comments {
		responses = append(responses, commentResponse(comment))
	}

	c.JSON(http.StatusOK, responses)
}
