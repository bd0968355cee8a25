package media

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const defaultThumbnailWidth = 320

type thumbnailer interface {
	Thumbnail(r io.Reader) ([]byte, error)
}

// ImagingThumbnailer renders fixed-width JPEG previews, keeping aspect ratio.
type ImagingThumbnailer struct {
	width int
}

func NewImagingThumbnailer(width int) *ImagingThumbnailer {
	if width <= 0 {
		width = defaultThumbnailWidth
	}
	return &ImagingThumbnailer{width: width}
}

func (t *ImagingThumbnailer) Thumbnail(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Dx() > t.width {
		img = imaging.Resize(img, t.width, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// thumbnailName derives thumb-<name without ext>.jpg from a blob name.
func thumbnailName(name string) string {
	return "thumb-" + strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
}
