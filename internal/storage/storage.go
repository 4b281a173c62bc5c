package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore persists uploaded images and hands back a public URL.
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// DiskStore writes uploads under a local directory and serves them from a
// base URL. Swapping in a CDN-backed store is a constructor change.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Save stores the image under a fresh name and returns its public URL.
// The original filename only contributes the extension.
func (s *DiskStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if s == nil || s.dir == "" {
		return "", fmt.Errorf("store not initialized")
	}
	if r == nil {
		return "", fmt.Errorf("image reader is nil")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.NewString() + ext

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	return s.baseURL + "/" + name, nil
}

// DeliveryURL appends the fixed delivery transformation to a stored image
// URL: max width 1280, automatic quality, WebP format.
func DeliveryURL(imageURL string) string {
	if imageURL == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(imageURL, "?") {
		sep = "&"
	}
	return imageURL + sep + "tr=w-1280,q-auto,f-webp"
}
