package dataurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ds124wfegd/WB_L3/watermark/internal/entity"
)

// minimal PNG signature followed by an IHDR chunk header
var pngHeader = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
}

func TestEncodeDecode(t *testing.T) {
	url := Encode("image/png", []byte("hello"))
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", url)

	mime, data, err := Decode(url)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, []byte("hello"), data)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "no scheme", url: "image/png;base64,aGVsbG8="},
		{name: "no payload", url: "data:image/png;base64"},
		{name: "not base64", url: "data:text/plain,hello"},
		{name: "corrupt payload", url: "data:image/png;base64,***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.url)
			assert.ErrorIs(t, err, entity.ErrInvalidURL)
		})
	}
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, "image/png", DetectMIME(pngHeader))
	assert.True(t, IsImage(DetectMIME(pngHeader)))
	assert.False(t, IsImage(DetectMIME([]byte("just some text"))))
}

func TestIsImage(t *testing.T) {
	tests := map[string]bool{
		"image/png":       true,
		"image/jpeg":      true,
		"IMAGE/GIF":       true,
		"image/svg+xml":   true,
		"text/plain":      false,
		"application/pdf": false,
		"":                false,
	}
	for mime, want := range tests {
		assert.Equal(t, want, IsImage(mime), mime)
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".png", Extension("image/png"))
	assert.Equal(t, ".jpg", Extension("image/jpeg"))
	assert.Equal(t, ".png", Extension("application/x-unknown"))
}
