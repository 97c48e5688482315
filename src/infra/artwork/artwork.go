// Package artwork extracts embedded cover art from local media files and
// maintains a resized thumbnail cache for the row display.
package artwork

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/nfnt/resize"

	"playdeck/src/features/config"

	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/png"
)

// Service handles thumbnail extraction, resizing and caching
type Service struct {
	config *config.Manager
}

// NewService creates a new artwork service
func NewService(config *config.Manager) *Service {
	return &Service{
		config: config,
	}
}

// ThumbnailFor returns the cached thumbnail path for a local media file,
// extracting and resizing the embedded picture on a cache miss. Returns ""
// without error when thumbnails are disabled, the location is not a local
// file, or the file carries no picture.
func (s *Service) ThumbnailFor(ctx context.Context, url string) (string, error) {
	cfg := s.config.Get()
	if !cfg.Thumbnails.Enabled {
		return "", nil
	}
	path := localPath(url)
	if path == "" {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	hash := md5.Sum([]byte(url))
	cacheKey := fmt.Sprintf("%x", hash)
	thumbPath := filepath.Join(cfg.Storage.ThumbnailPath, cacheKey+".jpg")

	if _, err := os.Stat(thumbPath); err == nil {
		slog.Debug("Using cached thumbnail", "path", thumbPath)
		return thumbPath, nil
	}

	picture, err := embeddedPicture(path)
	if err != nil {
		return "", err
	}
	if picture == nil {
		return "", nil
	}

	resized, err := s.resizeImage(picture, cfg.Thumbnails.Size, cfg.Thumbnails.Quality)
	if err != nil {
		return "", fmt.Errorf("failed to resize thumbnail for %s: %w", path, err)
	}
	if err := os.WriteFile(thumbPath, resized, 0644); err != nil {
		return "", fmt.Errorf("failed to write thumbnail: %w", err)
	}

	slog.Debug("Thumbnail generated", "source", path, "path", thumbPath)
	return thumbPath, nil
}

// embeddedPicture pulls the cover picture out of the file's tags, nil when
// there is none.
func embeddedPicture(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	tags, err := tag.ReadFrom(file)
	if err != nil {
		// Files without a tag block simply have no artwork.
		return nil, nil
	}
	picture := tags.Picture()
	if picture == nil || len(picture.Data) == 0 {
		return nil, nil
	}
	return picture.Data, nil
}

// resizeImage resizes image data to the specified max size
func (s *Service) resizeImage(imgData []byte, maxSize, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		return nil, err
	}

	if maxSize > 0 {
		img = resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Lanczos3)
	}
	if quality <= 0 {
		quality = 85
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// localPath maps a playlist location to a filesystem path, "" for remote
// locations.
func localPath(url string) string {
	if strings.HasPrefix(url, "file://") {
		return strings.TrimPrefix(url, "file://")
	}
	if strings.Contains(url, "://") {
		return ""
	}
	return url
}
