package media

import (
	"bytes"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImagingThumbnailerScalesWideImages(t *testing.T) {
	out, err := NewImagingThumbnailer(100).Thumbnail(bytes.NewReader(pngBytes(t, 400, 200)))
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestImagingThumbnailerKeepsSmallImages(t *testing.T) {
	out, err := NewImagingThumbnailer(0).Thumbnail(bytes.NewReader(pngBytes(t, 40, 30)))
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
}

func TestImagingThumbnailerRejectsNonImages(t *testing.T) {
	_, err := NewImagingThumbnailer(100).Thumbnail(strings.NewReader("not an image"))
	assert.Error(t, err)
}

func TestThumbnailName(t *testing.T) {
	assert.Equal(t, "thumb-1700000000000-abcdef012345.jpg", thumbnailName("1700000000000-abcdef012345.png"))
	assert.Equal(t, "thumb-noext.jpg", thumbnailName("noext"))
}
