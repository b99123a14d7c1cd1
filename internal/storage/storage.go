package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Object kinds map to storage subdirectories.
const (
	KindImage   = "images"
	KindSticker = "stickers"
)

// Per-kind upload limits.
const (
	MaxImageBytes   = 5 << 20
	MaxStickerBytes = 2 << 20
)

var (
	ErrNotImage = errors.New("only image files are allowed")
	ErrTooLarge = errors.New("file exceeds size limit")
)

// Store persists an uploaded object and returns an opaque URL for it.
type Store interface {
	Save(ctx context.Context, kind, filename, contentType string, data []byte) (string, error)
}

// Validate applies the upload filter: image content type and per-kind
// size limit. Runs before any persistence so a rejected upload creates
// no state.
func Validate(kind, contentType string, size int) error {
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotImage
	}
	limit := MaxImageBytes
	if kind == KindSticker {
		limit = MaxStickerBytes
	}
	if size > limit {
		return ErrTooLarge
	}
	return nil
}

// ObjectName builds a collision-free object name keeping the original
// extension: image-<unix>-<uuid>.png
func ObjectName(kind, original string) string {
	prefix := "image"
	if kind == KindSticker {
		prefix = "sticker"
	}
	ext := filepath.Ext(original)
	return fmt.Sprintf("%s-%d-%s%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}

// ThumbName derives the preview object name for a stored original:
// image-123-abcd.png becomes image-123-abcd_thumb.jpg. Previews are
// always JPEG regardless of the original's format.
func ThumbName(original string) string {
	return strings.TrimSuffix(original, filepath.Ext(original)) + "_thumb.jpg"
}
