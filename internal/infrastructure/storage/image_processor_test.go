package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateImage(t *testing.T) {
	p := NewImageProcessor()

	ct, err := p.ValidateImage(encodePNG(t, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	_, err = p.ValidateImage([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrImageUnreadable)

	small := &ImageProcessor{MaxSize: 10}
	_, err = small.ValidateImage(encodePNG(t, 4, 4))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestValidateImage_RejectsGIF(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewPaletted(image.Rect(0, 0, 2, 2), []color.Color{color.Black, color.White})
	require.NoError(t, gif.Encode(&buf, img, nil))

	_, err := NewImageProcessor().ValidateImage(buf.Bytes())
	assert.ErrorIs(t, err, ErrImageFormat)
}

func TestProcessAvatar_FitsBounds(t *testing.T) {
	out, err := NewImageProcessor().ProcessAvatar(encodePNG(t, 1024, 256))
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, AvatarSize, cfg.Width)
	assert.Equal(t, AvatarSize/4, cfg.Height)
}
