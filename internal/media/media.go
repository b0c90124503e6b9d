// Package media stores uploaded post files under a fixed directory with
// server-generated names. Records hold only the filename; absolute URLs
// are composed at read time from the request's base URL.
package media

import (
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Store struct {
	dir        string
	publicPath string
}

// NewStore ensures the upload directory exists and returns a store serving
// files back under publicPath.
func NewStore(dir, publicPath string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir, publicPath: publicPath}, nil
}

// Save writes the uploaded file under a generated name and returns that
// name. The original filename only contributes its extension.
func (s *Store) Save(c *gin.Context, file *multipart.FileHeader) (string, error) {
	name := uuid.New().String() + strings.ToLower(filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, filepath.Join(s.dir, name)); err != nil {
		return "", err
	}
	return name, nil
}

// Remove deletes a stored file. Removal is best-effort: failures are
// logged and never propagated, so a missing file cannot abort the
// operation that triggered the cleanup.
func (s *Store) Remove(filename string) {
	if filename == "" {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil && !os.IsNotExist(err) {
		log.WithError(err).WithField("file", filename).Warn("failed to delete media file")
	}
}

// URL returns the absolute URL for a stored filename, or nil when there is
// no stored media.
func (s *Store) URL(baseURL, filename string) interface{} {
	if filename == "" {
		return nil
	}
	return baseURL + s.publicPath + "/" + filename
}
