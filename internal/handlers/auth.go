package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/socialfeed/backend/internal/auth"
	"github.com/socialfeed/backend/internal/models"
	"github.com/socialfeed/backend/internal/validation"
)

type AuthHandler struct {
	db     *gorm.DB
	tokens *auth.TokenManager
}

func NewAuthHandler(db *gorm.DB, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if errs := validation.ValidateRegistration(&input); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": errs.Message(), "errors": errs})
		return
	}

	email := strings.ToLower(input.Email)

	// Fast conflict answer; the unique index below is the real guarantee.
	var existing models.User
	if err := h.db.Where("email = ?", email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		serverError(c, err, "register: email lookup failed")
		return
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		serverError(c, err, "register: password hashing failed")
		return
	}

	user := models.User{
		Name:              input.Name,
		Email:             email,
		Password:          hashed,
		ProfilePictureURL: input.ProfilePictureURL,
	}

	if err := h.db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
			return
		}
		serverError(c, err, "register: user creation failed")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		serverError(c, err, "register: token issue failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":                  user.ID,
			"name":                user.Name,
			"email":               user.Email,
			"profile_picture_url": nullable(user.ProfilePictureURL),
			"created_at":          user.CreatedAt,
		},
		"token": token,
	})
}

// Login handles user login. A missing user and a wrong password produce
// the identical response, so the endpoint leaks no enumeration signal.
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var user models.User
	err := h.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
		return
	}
	if err != nil {
		serverError(c, err, "login: user lookup failed")
		return
	}

	if !auth.CheckPassword(user.Password, input.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		serverError(c, err, "login: token issue failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"token": token,
	})
}

// Logout acknowledges the client's intent. Tokens are stateless, so there
// is nothing to revoke server-side; the client deletes its copy.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}
