// Package validation holds the explicit field checks run at the request
// boundary, before any persistence call. Each check produces a field-level
// error; callers join them into the response message.
package validation

import (
	"regexp"
	"strings"

	"github.com/socialfeed/backend/internal/models"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Errors []FieldError

// Message joins the individual messages the way the API reports them.
func (e Errors) Message() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Message
	}
	return strings.Join(parts, ", ")
}

var (
	emailPattern    = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)
	imageURLPattern = regexp.MustCompile(`(?i)^https?://.*\.(?:png|jpg|jpeg|gif|webp|svg|bmp|tiff?)$`)
)

// ValidateRegistration normalizes the request (trims name and email) and
// returns every field error found, in field order. An empty result means
// the request is well-formed; email uniqueness is not checked here, that
// is the storage layer's job.
func ValidateRegistration(req *models.RegisterRequest) Errors {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	var errs Errors

	if req.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "Name is required"})
	} else if len(req.Name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "Name cannot exceed 255 characters"})
	}

	if req.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "Email is required"})
	} else if !emailPattern.MatchString(req.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "Please enter a valid email"})
	}

	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "Password is required"})
	} else if len(req.Password) < 8 {
		errs = append(errs, FieldError{Field: "password", Message: "Password must be at least 8 characters"})
	}

	if req.PasswordConfirmation == "" {
		errs = append(errs, FieldError{Field: "password_confirmation", Message: "Password confirmation is required"})
	} else if req.Password != req.PasswordConfirmation {
		errs = append(errs, FieldError{Field: "password_confirmation", Message: "Passwords do not match"})
	}

	if req.ProfilePictureURL != "" && !imageURLPattern.MatchString(req.ProfilePictureURL) {
		errs = append(errs, FieldError{Field: "profile_picture_url", Message: "Please provide a valid image URL (http/https)"})
	}

	return errs
}
