package storage

import (
	"bytes"

	"github.com/disintegration/imaging"
)

// ThumbnailWidth is the target width for preview thumbnails.
const ThumbnailWidth = 512

// Thumbnail renders a JPEG preview at ThumbnailWidth for images wider
// than that, preserving aspect ratio. Narrow images need no preview;
// nil is returned for them.
func Thumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if img.Bounds().Dx() <= ThumbnailWidth {
		return nil, nil
	}
	resized := imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
