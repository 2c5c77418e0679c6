package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/faceauth/internal/imageenc"
)

// FileProvider loads a still image from disk. It backs the console front
// end, where a photo on disk stands in for the device camera.
type FileProvider struct {
	Path string
}

// Capture reads and encodes the configured file. An empty path resolves as a
// cancellation so scripted flows can opt out of a capture step.
func (p FileProvider) Capture(ctx context.Context) (Image, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(p.Path) == "" {
		return "", ErrCancelled
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return "", fmt.Errorf("read capture file: %w", err)
	}
	if len(data) == 0 {
		return "", errors.New("capture file is empty")
	}
	return Image(imageenc.EncodeDataURI(mimeTypeForPath(p.Path), data)), nil
}

func mimeTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
