package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/socialfeed/backend/internal/media"
	"github.com/socialfeed/backend/internal/models"
)

type PostHandler struct {
	db    *gorm.DB
	files *media.Store
}

func NewPostHandler(db *gorm.DB, files *media.Store) *PostHandler {
	return &PostHandler{db: db, files: files}
}

const (
	defaultPage  = 1
	defaultLimit = 10
)

// parsePagination reads page/limit from the query, falling back to the
// defaults when absent or non-numeric.
func parsePagination(c *gin.Context) (page, limit, offset int) {
	page = defaultPage
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	limit = defaultLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	return page, limit, (page - 1) * limit
}

func totalPages(total int64, limit int) int {
	return int(math.Ceil(float64(total) / float64(limit)))
}

func (h *PostHandler) countComments(postID int) int64 {
	var n int64
	h.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&n)
	return n
}

func (h *PostHandler) countReactions(postID int) int64 {
	var n int64
	h.db.Model(&models.Reaction{}).Where("post_id = ?", postID).Count(&n)
	return n
}

// feedEntry projects a post for feed responses: absolute media URLs,
// derived counts computed at response time, and a minimal author view.
func (h *PostHandler) feedEntry(post models.Post, baseURL string) gin.H {
	return gin.H{
		"id":            post.ID,
		"title":         post.Title,
		"content":       post.Content,
		"image":         h.files.URL(baseURL, post.Image),
		"video":         h.files.URL(baseURL, post.Video),
		"created_at":    post.CreatedAt,
		"updated_at":    post.UpdatedAt,
		"commentCount":  h.countComments(post.ID),
		"reactionCount": h.countReactions(post.ID),
		"user": gin.H{
			"id":                  post.User.ID,
			"name":                post.User.Name,
			"email":               post.User.Email,
			"profile_picture_url": nullable(post.User.ProfilePictureURL),
		},
	}
}

func (h *PostHandler) listPosts(c *gin.Context, scope func(*gorm.DB) *gorm.DB) {
	page, limit, offset := parsePagination(c)
	baseURL := requestBaseURL(c)

	var total int64
	if err := scope(h.db.Model(&models.Post{})).Count(&total).Error; err != nil {
		serverError(c, err, "feed: counting posts failed")
		return
	}

	var posts []models.Post
	err := scope(h.db).
		Preload("User").
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		serverError(c, err, "feed: fetching posts failed")
		return
	}

	entries := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		entries = append(entries, h.feedEntry(post, baseURL))
	}

	c.JSON(http.StatusOK, gin.H{
		"page":       page,
		"limit":      limit,
		"total":      total,
		"totalPages": totalPages(total, limit),
		"posts":      entries,
	})
}

// GetPosts returns the global paginated feed, newest first.
func (h *PostHandler) GetPosts(c *gin.Context) {
	h.listPosts(c, func(db *gorm.DB) *gorm.DB { return db })
}

// GetMyPosts returns the caller's posts with the same shape as the global
// feed.
func (h *PostHandler) GetMyPosts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}
	h.listPosts(c, func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", user.ID)
	})
}

// CreatePost creates a new post from a multipart form; image and video
// parts are optional.
func (h *PostHandler) CreatePost(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	content := strings.TrimSpace(c.PostForm("content"))
	if title == "" || content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide both title and content"})
		return
	}

	post := models.Post{
		UserID:  user.ID,
		Title:   title,
		Content: content,
	}

	if file, err := c.FormFile("image"); err == nil {
		name, err := h.files.Save(c, file)
		if err != nil {
			serverError(c, err, "create post: storing image failed")
			return
		}
		post.Image = name
	}
	if file, err := c.FormFile("video"); err == nil {
		name, err := h.files.Save(c, file)
		if err != nil {
			serverError(c, err, "create post: storing video failed")
			return
		}
		post.Video = name
	}

	if err := h.db.Create(&post).Error; err != nil {
		serverError(c, err, "create post: insert failed")
		return
	}

	h.db.Preload("User").First(&post, post.ID)
	c.JSON(http.StatusCreated, post)
}

// UpdatePost partially updates a post. Existence is checked before
// ownership, so a missing post is 404 even for a non-owner. Title and
// content are replaced only when supplied non-empty and different from the
// current value; an uploaded file replaces the stored reference
// unconditionally.
func (h *PostHandler) UpdatePost(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, "id = ?", c.Param("postId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
			return
		}
		serverError(c, err, "update post: lookup failed")
		return
	}

	if post.UserID != user.ID {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized to edit this post"})
		return
	}

	if title := strings.TrimSpace(c.PostForm("title")); title != "" && title != post.Title {
		post.Title = title
	}
	if content := strings.TrimSpace(c.PostForm("content")); content != "" && content != post.Content {
		post.Content = content
	}

	// Replacing a reference does not delete the previously stored file.
	// Known leak, kept as-is.
	if file, err := c.FormFile("image"); err == nil {
		name, err := h.files.Save(c, file)
		if err != nil {
			serverError(c, err, "update post: storing image failed")
			return
		}
		post.Image = name
	}
	if file, err := c.FormFile("video"); err == nil {
		name, err := h.files.Save(c, file)
		if err != nil {
			serverError(c, err, "update post: storing video failed")
			return
		}
		post.Video = name
	}

	if err := h.db.Save(&post).Error; err != nil {
		serverError(c, err, "update post: save failed")
		return
	}

	h.db.Preload("User").First(&post, post.ID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Post updated successfully",
		"post":    post,
	})
}

// DeletePost deletes a post with its comments and reactions. The row
// deletions run in one transaction; removing the media files stays
// best-effort outside it, so a failed file removal cannot abort the
// delete.
func (h *PostHandler) DeletePost(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, "id = ?", c.Param("postId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
			return
		}
		serverError(c, err, "delete post: lookup failed")
		return
	}

	if post.UserID != user.ID {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized to delete this post"})
		return
	}

	h.files.Remove(post.Image)
	h.files.Remove(post.Video)

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		serverError(c, err, "delete post: cascade failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}
