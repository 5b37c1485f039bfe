package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxUploadSize is the payment-proof size cap.
const MaxUploadSize = 5 << 20 // 5MB

// Errors returned when an upload is rejected before being stored.
var (
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

// UploadStore writes payment-proof images to a local directory with
// generated filenames. Uniqueness comes from the UUID in the name; no
// collision handling is needed.
type UploadStore struct {
	dir string
}

// NewUploadStore creates an UploadStore rooted at dir.
func NewUploadStore(dir string) *UploadStore {
	return &UploadStore{dir: dir}
}

// Save validates and stores an uploaded payment proof. It returns the stored
// filename and its full path. Validation happens before anything touches
// disk: oversize files and non-image types are rejected.
func (s *UploadStore) Save(file multipart.File, header *multipart.FileHeader) (string, string, error) {
	if header.Size > MaxUploadSize {
		return "", "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExts[ext] || !allowedContentTypes[header.Header.Get("Content-Type")] {
		return "", "", ErrUnsupportedType
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create uploads dir: %w", err)
	}

	name := "proof-" + uuid.New().String() + ext
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("write upload file: %w", err)
	}

	return name, path, nil
}

// Remove deletes a stored proof. Used as compensating cleanup when an order
// is not delivered; an already-absent file is not an error.
func (s *UploadStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
