package capture

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/faceauth/internal/imageenc"
)

func TestFileProviderEncodesDataURI(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4E, 0x47, 0x01}
	path := filepath.Join(t.TempDir(), "face.png")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	img, err := FileProvider{Path: path}.Capture(context.Background())
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if !strings.HasPrefix(string(img), "data:image/png;base64,") {
		t.Fatalf("unexpected data URI prefix: %s", img)
	}

	decoded, err := imageenc.DecodeDataURI(string(img))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !bytes.Equal(decoded, payload) {
		t.Fatal("payload mismatch after round trip")
	}
}

func TestFileProviderEmptyPathIsCancellation(t *testing.T) {
	_, err := FileProvider{}.Capture(context.Background())
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestFileProviderMissingFileIsFault(t *testing.T) {
	_, err := FileProvider{Path: filepath.Join(t.TempDir(), "missing.jpg")}.Capture(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrCancelled) {
		t.Fatal("provider fault must not look like a cancellation")
	}
}

func TestFileProviderEmptyFileIsFault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jpg")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := (FileProvider{Path: path}).Capture(context.Background()); err == nil {
		t.Fatal("expected error for empty file")
	}
}
