package storage

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateContentType(t *testing.T) {
	assert.NoError(t, Validate(KindImage, "image/png", 100))
	assert.NoError(t, Validate(KindImage, "image/jpeg", 100))
	assert.ErrorIs(t, Validate(KindImage, "text/plain", 100), ErrNotImage)
	assert.ErrorIs(t, Validate(KindSticker, "application/pdf", 100), ErrNotImage)
}

func TestValidateSizeLimits(t *testing.T) {
	assert.NoError(t, Validate(KindImage, "image/png", MaxImageBytes))
	assert.ErrorIs(t, Validate(KindImage, "image/png", MaxImageBytes+1), ErrTooLarge)

	assert.NoError(t, Validate(KindSticker, "image/png", MaxStickerBytes))
	assert.ErrorIs(t, Validate(KindSticker, "image/png", MaxStickerBytes+1), ErrTooLarge)
	// a sticker-sized overage is still a valid image upload
	assert.NoError(t, Validate(KindImage, "image/png", MaxStickerBytes+1))
}

func TestObjectName(t *testing.T) {
	name := ObjectName(KindImage, "holiday photo.PNG")
	assert.True(t, len(name) > 0)
	assert.Contains(t, name, "image-")
	assert.Equal(t, ".PNG", filepath.Ext(name))

	sticker := ObjectName(KindSticker, "wave.webp")
	assert.Contains(t, sticker, "sticker-")

	// names never collide for the same input
	assert.NotEqual(t, ObjectName(KindImage, "a.png"), ObjectName(KindImage, "a.png"))
}

func TestDiskStoreSave(t *testing.T) {
	root := t.TempDir()
	store, err := NewDiskStore(root)
	require.NoError(t, err)

	url, err := store.Save(context.Background(), KindImage, "image-1.png", "image/png", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/images/image-1.png", url)

	written, err := os.ReadFile(filepath.Join(root, "images", "image-1.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), written)
}

func TestDiskStoreStickerURL(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	url, err := store.Save(context.Background(), KindSticker, "sticker-1.png", "image/png", []byte("d"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/stickers/sticker-1.png", url)
}

func TestThumbnailDownscalesWideImages(t *testing.T) {
	wide := encodePNG(t, 1024, 256)
	out, err := Thumbnail(wide)
	require.NoError(t, err)

	// resized thumbnails are re-encoded as JPEG
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, ThumbnailWidth, cfg.Width)
	assert.Equal(t, ThumbnailWidth/4, cfg.Height)
}

func TestThumbnailSkipsNarrowImages(t *testing.T) {
	small := encodePNG(t, 64, 64)
	out, err := Thumbnail(small)
	require.NoError(t, err)
	assert.Nil(t, out, "narrow images need no preview")
}

func TestThumbName(t *testing.T) {
	assert.Equal(t, "image-123-abcd_thumb.jpg", ThumbName("image-123-abcd.png"))
	assert.Equal(t, "sticker-9-ffff_thumb.jpg", ThumbName("sticker-9-ffff.webp"))
}

func TestThumbnailRejectsGarbage(t *testing.T) {
	_, err := Thumbnail([]byte("not an image"))
	assert.Error(t, err)
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}
