// Package imaging turns story ideas into illustrations: it asks the
// language model for an image prompt, calls the image model, and stores the
// result behind a public URL.
package imaging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"imagibox-server/internal/interfaces"
)

// Compile-time check to ensure localBlobStore implements BlobStore
var _ interfaces.BlobStore = (*localBlobStore)(nil)

// localBlobStore writes image files under a mounted directory that a static
// file server exposes at a public base URL.
type localBlobStore struct {
	savePath string
	baseURL  string
	logger   *zap.Logger
}

// NewLocalBlobStore creates a disk-backed blob store rooted at savePath.
func NewLocalBlobStore(savePath, baseURL string, logger *zap.Logger) (interfaces.BlobStore, error) {
	if savePath == "" {
		return nil, fmt.Errorf("image save path is not set")
	}
	if err := os.MkdirAll(savePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &localBlobStore{
		savePath: savePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger.Named("BlobStore"),
	}, nil
}

// Upload writes the image into folder under the save path and returns its
// public URL.
func (s *localBlobStore) Upload(ctx context.Context, data []byte, folder string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("refusing to store empty image")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.savePath, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder %s: %w", folder, err)
	}

	fileName := fmt.Sprintf("%s.jpg", uuid.New())
	filePath := filepath.Join(dir, fileName)
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		s.logger.Error("Failed to save image", zap.String("path", filePath), zap.Error(err))
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.baseURL, folder, fileName)
	s.logger.Info("Image stored", zap.String("path", filePath), zap.String("url", url))
	return url, nil
}

// Delete removes a stored image. publicID is the folder/filename part of
// the URL returned by Upload.
func (s *localBlobStore) Delete(ctx context.Context, publicID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Keep deletes inside the save path even for hostile IDs.
	cleaned := filepath.Clean("/" + publicID)
	filePath := filepath.Join(s.savePath, cleaned)
	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete image %s: %w", publicID, err)
	}
	return nil
}
