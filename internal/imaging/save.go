package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-convolve-mcp/internal/raster"
)

// JPEGQuality is the quality used when an output path ends in .jpg or .jpeg.
const JPEGQuality = 90

// Save quantises buf to 8 bits and writes it to path. The format follows the
// extension: .png, .jpg/.jpeg, .gif, .bmp and .tif/.tiff are supported.
//
// Single-channel buffers are written as grayscale, three-channel buffers as
// opaque RGB.
func Save(buf *raster.Buffer, path string) error {
	if buf.Empty() {
		return fmt.Errorf("failed to save image: empty buffer")
	}
	if err := imaging.Save(buf.Image(), path, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// EncodedImage is an image returned inline as base64 PNG.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as PNG and wraps it in an EncodedImage.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
