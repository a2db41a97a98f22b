package common

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 0, 3, 4))
	assert.Equal(t, "", Coalesce[string]())
	assert.Equal(t, "a", Coalesce("", "a"))
}

func TestAlignUp(t *testing.T) {
	cases := []struct{ value, alignment, want uint64 }{
		{0, 4, 0},
		{1, 4, 4},
		{4, 4, 4},
		{257, 256, 512},
		{7, 0, 7},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, AlignUp(c.value, c.alignment), "AlignUp(%d, %d)", c.value, c.alignment)
	}
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]int{1, 2, 3}, 2))
	assert.False(t, Contains([]int{1, 2, 3}, 5))
	assert.False(t, Contains[int](nil, 0))
}

func TestErrorsWrap(t *testing.T) {
	err := fmt.Errorf("group %q: %w", "textures", ErrResourceBindingMismatch)
	assert.True(t, errors.Is(err, ErrResourceBindingMismatch))
	assert.False(t, errors.Is(err, ErrCommandResourceMismatch))
}

func TestMat4Identity(t *testing.T) {
	m := Translation(1, 2, 3)
	assert.Equal(t, m, Identity().Mul(m))
	assert.Equal(t, m, m.Mul(Identity()))
}

func TestMat4Compose(t *testing.T) {
	m := Translation(10, 0, 0).Mul(Scaling(2, 2, 2))
	x, y, z := m.TransformPoint(1, 1, 1)
	assert.InDelta(t, 12, x, 1e-5)
	assert.InDelta(t, 2, y, 1e-5)
	assert.InDelta(t, 2, z, 1e-5)
}

func TestRotationZ(t *testing.T) {
	x, y, _ := RotationZ(3.14159265/2).TransformPoint(1, 0, 0)
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 1, y, 1e-5)
}

func TestRotationAxisMatchesRotationZ(t *testing.T) {
	want, got := RotationZ(0.7), RotationAxis(0, 0, 2, 0.7)
	assert.InDeltaSlice(t, want[:], got[:], 1e-6)
	assert.Equal(t, Identity(), RotationAxis(0, 0, 0, 1))
}

func TestLookAt(t *testing.T) {
	view := LookAt([3]float32{0, 0, 5}, [3]float32{0, 0, 0}, [3]float32{0, 1, 0})

	x, y, z := view.TransformPoint(0, 0, 0)
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 0, y, 1e-5)
	assert.InDelta(t, -5, z, 1e-5)

	x, y, _ = view.TransformPoint(1, 2, 0)
	assert.InDelta(t, 1, x, 1e-5)
	assert.InDelta(t, 2, y, 1e-5)
}

func TestTransformOrder(t *testing.T) {
	tr := NewTransform()
	assert.Equal(t, Identity(), tr.Matrix())

	tr.Scale = [3]float32{2, 2, 2}
	tr.Angle = 3.14159265 / 2
	tr.Translation = [3]float32{10, 0, 0}
	x, y, _ := tr.Matrix().TransformPoint(1, 0, 0)
	assert.InDelta(t, 10, x, 1e-5)
	assert.InDelta(t, 2, y, 1e-5)
}

func TestOrthoPixelSpace(t *testing.T) {
	// y-down pixel space of an 800x600 target
	m := Ortho(0, 800, 600, 0, -1, 1)

	x, y, _ := m.TransformPoint(0, 0, 0)
	assert.InDelta(t, -1, x, 1e-5)
	assert.InDelta(t, 1, y, 1e-5)

	x, y, _ = m.TransformPoint(800, 600, 0)
	assert.InDelta(t, 1, x, 1e-5)
	assert.InDelta(t, -1, y, 1e-5)

	x, y, _ = m.TransformPoint(400, 300, 0)
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 0, y, 1e-5)
}

func TestPerspectiveDepthRange(t *testing.T) {
	m := Perspective(1.0, 1.0, 1, 100)
	_, _, zNear := m.TransformPoint(0, 0, -1)
	_, _, zFar := m.TransformPoint(0, 0, -100)
	assert.InDelta(t, 0, zNear, 1e-4)
	assert.InDelta(t, 1, zFar, 1e-4)
}

func TestMat4Bytes(t *testing.T) {
	m := Identity()
	assert.Len(t, m.Bytes(), 64)
	assert.Len(t, SliceToBytes([]float32{1, 2}), 8)
	assert.Nil(t, SliceToBytes[float32](nil))
}

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{G: 255, A: 255})
	img.Set(0, 1, color.NRGBA{B: 255, A: 255})
	img.Set(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return img
}

func TestDecodeImagePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))

	data, err := DecodeImageBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "png", data.Format)
	assert.Equal(t, uint32(2), data.Width)
	assert.Equal(t, uint32(2), data.Height)
	require.Len(t, data.Pixels, 16)
	assert.Equal(t, []byte{255, 0, 0, 255}, data.Pixels[0:4])
	assert.Equal(t, []byte{0, 255, 0, 255}, data.Pixels[4:8])
	assert.Equal(t, []byte{0, 0, 255, 255}, data.Pixels[8:12])
}

func TestDecodeImageBMP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, testImage()))

	data, err := DecodeImage(&buf)
	require.NoError(t, err)
	assert.Equal(t, "bmp", data.Format)
	assert.Equal(t, []byte{255, 255, 255, 255}, data.Pixels[12:16])
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	_, err := DecodeImageBytes([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestLoadImageMissingFile(t *testing.T) {
	_, err := LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestImageToRGBASubImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.Set(2, 2, color.RGBA{R: 9, G: 8, B: 7, A: 255})
	sub := src.SubImage(image.Rect(2, 2, 4, 4))

	data := ImageToRGBA(sub)
	assert.Equal(t, uint32(2), data.Width)
	assert.Len(t, data.Pixels, 16)
	assert.Equal(t, []byte{9, 8, 7, 255}, data.Pixels[0:4])
}

func TestLoggerDefaultsToSilent(t *testing.T) {
	require.NotNil(t, Logger())
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	Logger().Info("surface configured", "width", 800)
	assert.Contains(t, buf.String(), "surface configured")

	SetLogger(nil)
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))
}
