package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore is the blob-storage collaborator for book covers: store an
// image and get a URL back, delete by URL.
type ImageStore interface {
	UploadImage(filename string, content io.Reader) (string, error)
	DeleteImage(url string) bool
}

// LocalImageStore keeps cover images on the local filesystem under a data
// directory and serves them from a base URL path.
type LocalImageStore struct {
	dataPath string
	baseURL  string
}

func NewLocalImageStore(dataPath, baseURL string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create image data dir: %w", err)
	}
	return &LocalImageStore{
		dataPath: dataPath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// UploadImage writes the image under a random name, keeping the original
// extension, and returns the URL it will be served from.
func (s *LocalImageStore) UploadImage(filename string, content io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	name := uuid.New().String() + ext
	path := filepath.Join(s.dataPath, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write image file: %w", err)
	}

	return s.baseURL + "/" + name, nil
}

// DeleteImage removes the stored file behind a URL previously returned by
// UploadImage. Unknown or already-deleted URLs report false.
func (s *LocalImageStore) DeleteImage(url string) bool {
	if !strings.HasPrefix(url, s.baseURL+"/") {
		return false
	}
	name := filepath.Base(strings.TrimPrefix(url, s.baseURL+"/"))
	if name == "" || name == "." || name == ".." {
		return false
	}
	return os.Remove(filepath.Join(s.dataPath, name)) == nil
}
