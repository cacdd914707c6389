package tiles

import (
	"bytes"
	"image"
	_ "image/jpeg" // register JPEG format with image.Decode
	_ "image/png"  // register PNG format with image.Decode

	"github.com/echoflaresat/tiff"
)

// DecodeTexture decodes a photo tile. TIFF is tried first, then the
// registered image codecs.
func DecodeTexture(data []byte) (image.Image, error) {
	img, err := tiff.Decode(bytes.NewReader(data))

	// fallback to image codecs
	if err != nil {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	return img, err
}
