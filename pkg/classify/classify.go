// Package classify sniffs the real image format of a payload from its
// leading bytes, ignoring whatever the server or URL claimed.
package classify

import "bytes"

// Format is one of the image formats a payload can be saved as
type Format int

const (
	// JPEG is also the fallback for short or unrecognized buffers
	JPEG Format = iota
	PNG
	GIF
	WEBP
)

// minSniffLen is the length of the longest signature check (RIFF....WEBP)
const minSniffLen = 12

var (
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47}
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	gifMagic  = []byte{0x47, 0x49, 0x46, 0x38}
	riffMagic = []byte("RIFF")
	webpMagic = []byte("WEBP")
)

// Detect returns the format identified by buf's magic bytes
func Detect(buf []byte) Format {
	if len(buf) < minSniffLen {
		return JPEG
	}

	switch {
	case bytes.HasPrefix(buf, pngMagic):
		return PNG
	case bytes.HasPrefix(buf, jpegMagic):
		return JPEG
	case bytes.HasPrefix(buf, gifMagic):
		return GIF
	case bytes.HasPrefix(buf, riffMagic) && bytes.Equal(buf[8:12], webpMagic):
		return WEBP
	default:
		return JPEG
	}
}

// Extension returns the file extension, including the dot
func (f Format) Extension() string {
	switch f {
	case PNG:
		return ".png"
	case GIF:
		return ".gif"
	case WEBP:
		return ".webp"
	default:
		return ".jpg"
	}
}

// String returns the lowercase format name
func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case GIF:
		return "gif"
	case WEBP:
		return "webp"
	default:
		return "jpeg"
	}
}
