package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageData holds decoded RGBA pixel data ready for a texture upload.
type ImageData struct {
	// Pixels is row-major RGBA data, 4 bytes per pixel, no row padding.
	Pixels []byte
	// Width is the image width in pixels.
	Width uint32
	// Height is the image height in pixels.
	Height uint32
	// Format is the name the image package registered the source format under (e.g. "png", "webp").
	Format string
}

// ImageToRGBA converts any image.Image into tightly packed RGBA bytes.
//
// Parameters:
//   - img: the image to convert
//
// Returns:
//   - ImageData: the converted pixel data, with an empty Format
func ImageToRGBA(img image.Image) ImageData {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return ImageData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}
}

// DecodeImage decodes an encoded image (PNG, JPEG, GIF, BMP, TIFF or WebP) into RGBA pixels.
//
// Parameters:
//   - r: the encoded image stream
//
// Returns:
//   - ImageData: the decoded pixel data
//   - error: error if the stream is not a supported image
func DecodeImage(r io.Reader) (ImageData, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return ImageData{}, fmt.Errorf("failed to decode image: %w", err)
	}
	data := ImageToRGBA(img)
	data.Format = format
	return data, nil
}

// DecodeImageBytes is DecodeImage over an in-memory buffer.
func DecodeImageBytes(b []byte) (ImageData, error) {
	return DecodeImage(bytes.NewReader(b))
}

// LoadImage opens and decodes the image file at path.
//
// Parameters:
//   - path: the image file to load
//
// Returns:
//   - ImageData: the decoded pixel data
//   - error: error if the file cannot be opened or decoded
func LoadImage(path string) (ImageData, error) {
	file, err := os.Open(path)
	if err != nil {
		return ImageData{}, fmt.Errorf("failed to open image file %s: %w", path, err)
	}
	defer file.Close()

	data, err := DecodeImage(file)
	if err != nil {
		return ImageData{}, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}
