// Package upload persists uploaded chat images to a server-local directory.
// Files are written once and never cleaned up by this system.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MaxImageSize is the maximum size of a single uploaded image (10MB).
const MaxImageSize = 10 * 1024 * 1024

var (
	ErrEmptyFilename   = errors.New("an image filename is required")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrImageTooLarge   = errors.New("image exceeds maximum size")
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// Storage writes uploaded images under a single directory, naming each file
// by upload timestamp plus the original filename.
type Storage struct {
	dir string
}

func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &Storage{dir: dir}, nil
}

// Dir returns the directory served under /uploads.
func (s *Storage) Dir() string {
	return s.dir
}

// Save writes the image to disk and returns the stored file name.
func (s *Storage) Save(filename string, r io.Reader) (string, error) {
	base := filepath.Base(filename)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", ErrEmptyFilename
	}

	ext := strings.ToLower(filepath.Ext(base))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitize(base))
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if written > MaxImageSize {
		os.Remove(path)
		return "", ErrImageTooLarge
	}

	return name, nil
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
