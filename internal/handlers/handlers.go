package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/socialfeed/backend/internal/auth"
	"github.com/socialfeed/backend/internal/media"
	"github.com/socialfeed/backend/internal/models"
)

// Handler combines all handler types
type Handler struct {
	Auth     *AuthHandler
	Post     *PostHandler
	Comment  *CommentHandler
	Reaction *ReactionHandler
	User     *UserHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, tokens *auth.TokenManager, files *media.Store) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(db, tokens),
		Post:     NewPostHandler(db, files),
		Comment:  NewCommentHandler(db),
		Reaction: NewReactionHandler(db),
		User:     NewUserHandler(db),
	}
}

// currentUser returns the identity the auth middleware attached.
func currentUser(c *gin.Context) (models.User, bool) {
	raw, exists := c.Get("user")
	if !exists {
		return models.User{}, false
	}
	user, ok := raw.(models.User)
	return user, ok
}

// requestBaseURL rebuilds the absolute base URL of the incoming request
// for media URL composition.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// serverError logs the real failure and answers with a generic message;
// internal detail never reaches the response body.
func serverError(c *gin.Context, err error, context string) {
	log.WithError(err).Error(context)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
}

// nullable maps an empty string to JSON null.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
