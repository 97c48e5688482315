package tag

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
)

// TagReader reads embedded metadata from local media files using the
// dhowden/tag library.
type TagReader struct{}

// NewTagReader creates a new TagReader
func NewTagReader() *TagReader {
	return &TagReader{}
}

// ReadFileTags reads metadata from a media file into the flat key/value
// form playlist items carry. Only non-empty fields are recorded.
func (r *TagReader) ReadFileTags(ctx context.Context, filePath string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	tags, err := tag.ReadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	metadata := make(map[string]string)
	put := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			metadata[key] = value
		}
	}
	put("title", tags.Title())
	put("artist", tags.Artist())
	put("album", tags.Album())
	put("album_artist", tags.AlbumArtist())
	put("genre", tags.Genre())
	put("composer", tags.Composer())
	if year := tags.Year(); year > 0 {
		metadata["year"] = strconv.Itoa(year)
	}
	if track, _ := tags.Track(); track > 0 {
		metadata["track"] = strconv.Itoa(track)
	}

	return metadata, nil
}
