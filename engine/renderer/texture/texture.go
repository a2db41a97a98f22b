// Package texture creates 2D textures uploaded at construction, read-only views over them and
// samplers.
package texture

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/graphics"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/group"
)

// Texture2D is GPU image memory with a fixed format, size and mip count.
type Texture2D interface {
	// Label returns the debug label of the texture.
	Label() string

	// Width returns the width in pixels.
	Width() uint32

	// Height returns the height in pixels.
	Height() uint32

	// Format returns the pixel format.
	Format() backend.TextureFormat

	// MipLevelCount returns the number of mip levels.
	MipLevelCount() uint32

	// View returns the read-only view over the whole texture, created with the texture.
	//
	// Returns:
	//   - TextureView: the view
	View() TextureView

	// Raw returns the backend texture.
	Raw() backend.Texture

	// Release releases the view and the texture.
	Release()
}

// TextureView is a read-only projection of a Texture2D usable in a resource group.
type TextureView interface {
	// Texture returns the texture the view projects.
	Texture() Texture2D

	// Binding returns the view as a resource group binding.
	//
	// Returns:
	//   - group.Binding: a texture binding
	Binding() group.Binding

	// Raw returns the backend view.
	Raw() backend.TextureView
}

type texture2D struct {
	label  string
	format backend.TextureFormat
	usage  backend.TextureUsage
	srgb   bool
	raw    backend.Texture
	view   *textureView
}

var _ Texture2D = &texture2D{}

type textureView struct {
	texture *texture2D
	raw     backend.TextureView
}

var _ TextureView = &textureView{}

// NewTexture2D creates a texture and uploads its pixels.
//
// Parameters:
//   - ctx: the graphics context
//   - label: the debug label
//   - pixels: tightly packed rows, width * height * bytes-per-pixel bytes
//   - format: the pixel format
//   - width: the width in pixels
//   - height: the height in pixels
//   - opts: texture options
//
// Returns:
//   - Texture2D: the uploaded texture
//   - error: error wrapping common.ErrTextureDataMismatch if the pixel count does not match
func NewTexture2D(
	ctx graphics.GraphicsContext,
	label string,
	pixels []byte,
	format backend.TextureFormat,
	width, height uint32,
	opts ...TextureBuilderOption,
) (Texture2D, error) {
	t := newTexture2D(label, opts...)
	t.format = format
	if err := t.create(ctx, pixels, width, height); err != nil {
		return nil, err
	}
	return t, nil
}

// NewTexture2DFromImage creates an RGBA8 texture from a decoded image. The texture is sRGB
// encoded unless WithSRGB(false) is given.
//
// Parameters:
//   - ctx: the graphics context
//   - label: the debug label
//   - img: the image
//   - opts: texture options
//
// Returns:
//   - Texture2D: the uploaded texture
//   - error: error if the image is empty or the texture cannot be created
func NewTexture2DFromImage(ctx graphics.GraphicsContext, label string, img image.Image, opts ...TextureBuilderOption) (Texture2D, error) {
	return fromImageData(ctx, label, common.ImageToRGBA(img), opts...)
}

// NewTexture2DFromFile decodes a PNG, JPEG, GIF, BMP, TIFF or WebP file into an RGBA8 texture
// labelled with the file name.
//
// Parameters:
//   - ctx: the graphics context
//   - path: the image file
//   - opts: texture options
//
// Returns:
//   - Texture2D: the uploaded texture
//   - error: error if the file cannot be decoded or the texture cannot be created
func NewTexture2DFromFile(ctx graphics.GraphicsContext, path string, opts ...TextureBuilderOption) (Texture2D, error) {
	data, err := common.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return fromImageData(ctx, filepath.Base(path), data, opts...)
}

func fromImageData(ctx graphics.GraphicsContext, label string, data common.ImageData, opts ...TextureBuilderOption) (Texture2D, error) {
	t := newTexture2D(label, opts...)
	t.format = backend.TextureFormatRGBA8UnormSrgb
	if !t.srgb {
		t.format = backend.TextureFormatRGBA8Unorm
	}
	if err := t.create(ctx, data.Pixels, data.Width, data.Height); err != nil {
		return nil, err
	}
	return t, nil
}

func newTexture2D(label string, opts ...TextureBuilderOption) *texture2D {
	t := &texture2D{
		label: label,
		usage: backend.TextureUsageTextureBinding | backend.TextureUsageCopyDst,
		srgb:  true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *texture2D) create(ctx graphics.GraphicsContext, pixels []byte, width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("texture %q: size %dx%d must be non-zero: %w", t.label, width, height, common.ErrTextureDataMismatch)
	}
	if want := uint64(width) * uint64(height) * uint64(t.format.BytesPerPixel()); uint64(len(pixels)) != want {
		return fmt.Errorf("texture %q: %dx%d %s needs %d bytes, got %d: %w",
			t.label, width, height, t.format, want, len(pixels), common.ErrTextureDataMismatch)
	}

	raw, err := ctx.Backend().CreateTexture(backend.TextureDescriptor{
		Label:         t.label,
		Width:         width,
		Height:        height,
		Format:        t.format,
		Usage:         t.usage | backend.TextureUsageCopyDst,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("failed to create texture %q: %w", t.label, err)
	}
	if err := ctx.Backend().WriteTexture(raw, pixels); err != nil {
		raw.Release()
		return fmt.Errorf("failed to upload texture %q: %w", t.label, err)
	}
	view, err := raw.CreateView()
	if err != nil {
		raw.Release()
		return fmt.Errorf("failed to create view of texture %q: %w", t.label, err)
	}

	t.raw = raw
	t.view = &textureView{texture: t, raw: view}
	common.Logger().Debug("texture created", "label", t.label, "width", width, "height", height, "format", t.format.String())
	return nil
}

func (t *texture2D) Label() string {
	return t.label
}

func (t *texture2D) Width() uint32 {
	return t.raw.Width()
}

func (t *texture2D) Height() uint32 {
	return t.raw.Height()
}

func (t *texture2D) Format() backend.TextureFormat {
	return t.format
}

func (t *texture2D) MipLevelCount() uint32 {
	return 1
}

func (t *texture2D) View() TextureView {
	return t.view
}

func (t *texture2D) Raw() backend.Texture {
	return t.raw
}

func (t *texture2D) Release() {
	t.view.raw.Release()
	t.raw.Release()
}

func (v *textureView) Texture() Texture2D {
	return v.texture
}

func (v *textureView) Binding() group.Binding {
	return group.TextureBinding(v.raw)
}

func (v *textureView) Raw() backend.TextureView {
	return v.raw
}
