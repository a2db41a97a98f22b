package mesh

import (
	"testing"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/graphics"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend/software_backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/render"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vertex struct {
	position [2]float32
	color    [4]float32
}

var triangle = []vertex{
	{position: [2]float32{-1, -1}, color: [4]float32{1, 0, 0, 1}},
	{position: [2]float32{1, -1}, color: [4]float32{1, 0, 0, 1}},
	{position: [2]float32{0, 1}, color: [4]float32{1, 0, 0, 1}},
}

func newContext(t *testing.T) graphics.GraphicsContext {
	t.Helper()
	ctx, err := graphics.NewGraphicsContext(graphics.WithBackend(backend.BackendTypeSoftware))
	require.NoError(t, err)
	t.Cleanup(ctx.Release)
	return ctx
}

func readBuffer(t *testing.T, ctx graphics.GraphicsContext, buf backend.Buffer) []byte {
	t.Helper()
	data, err := ctx.Backend().(backend.Readback).ReadBuffer(buf)
	require.NoError(t, err)
	return data
}

func TestStaticMesh(t *testing.T) {
	ctx := newContext(t)

	m, err := NewStaticMeshFrom(ctx, "triangle", triangle, []uint16{0, 1, 2})
	require.NoError(t, err)
	defer m.Release()

	assert.False(t, m.Dynamic())
	assert.Equal(t, uint32(3), m.IndexCount())
	assert.Equal(t, backend.IndexFormatUint16, m.IndexFormat())
	assert.Equal(t, "triangle Vertex Buffer", m.VertexBuffer().Label())
	assert.False(t, m.VertexBuffer().Usage().Has(backend.BufferUsageCopyDst))
	assert.False(t, m.IndexBuffer().Usage().Has(backend.BufferUsageCopyDst))
	assert.Equal(t, uint64(72), m.VertexBufferSlice().Size)
	assert.Equal(t, uint64(6), m.IndexBufferSlice().Size)

	err = m.UpdateVertices(common.SliceToBytes(triangle))
	assert.Error(t, err)
}

func TestDynamicMeshEqualLengthUpdate(t *testing.T) {
	ctx := newContext(t)

	m, err := NewDynamicMeshFrom(ctx, "dynamic", triangle, []uint32{0, 1, 2})
	require.NoError(t, err)
	defer m.Release()

	assert.True(t, m.VertexBuffer().Usage().Has(backend.BufferUsageCopyDst))
	assert.Equal(t, backend.IndexFormatUint32, m.IndexFormat())

	moved := append([]vertex(nil), triangle...)
	for i := range moved {
		moved[i].position[1] += 0.5
		moved[i].color = [4]float32{0, 1, 0, 1}
	}
	require.NoError(t, UpdateVerticesFrom(m, moved))
	assert.Equal(t, common.SliceToBytes(moved), readBuffer(t, ctx, m.VertexBuffer()))

	require.NoError(t, UpdateIndicesFrom(m, []uint32{2, 1, 0}))
	assert.Equal(t, common.SliceToBytes([]uint32{2, 1, 0}), readBuffer(t, ctx, m.IndexBuffer()))
}

func TestDynamicMeshRejectsDifferentLength(t *testing.T) {
	ctx := newContext(t)

	m, err := NewDynamicMeshFrom(ctx, "dynamic", triangle, []uint16{0, 1, 2})
	require.NoError(t, err)
	defer m.Release()

	before := readBuffer(t, ctx, m.VertexBuffer())
	assert.ErrorIs(t, UpdateVerticesFrom(m, triangle[:2]), common.ErrBufferSizeMismatch)
	assert.ErrorIs(t, UpdateVerticesFrom(m, append(triangle, triangle[0])), common.ErrBufferSizeMismatch)
	assert.ErrorIs(t, UpdateIndicesFrom(m, []uint16{0, 1}), common.ErrBufferSizeMismatch)
	assert.Equal(t, before, readBuffer(t, ctx, m.VertexBuffer()))
}

func TestNewMeshRejectsBadData(t *testing.T) {
	ctx := newContext(t)

	_, err := NewStaticMesh(ctx, "empty", nil, []byte{0, 0}, backend.IndexFormatUint16)
	assert.ErrorIs(t, err, common.ErrBufferSizeMismatch)

	_, err = NewStaticMesh(ctx, "ragged", make([]byte, 8), make([]byte, 6), backend.IndexFormatUint32)
	assert.ErrorIs(t, err, common.ErrBufferSizeMismatch)
}

func TestIndexFormatOf(t *testing.T) {
	assert.Equal(t, backend.IndexFormatUint16, IndexFormatOf[uint16]())
	assert.Equal(t, backend.IndexFormatUint32, IndexFormatOf[uint32]())
}

type target struct{}

func (target) Width() int  { return 8 }
func (target) Height() int { return 8 }

func TestAppendDrawRendersMesh(t *testing.T) {
	ctx := newContext(t)
	surface, err := ctx.CreateSurface(target{})
	require.NoError(t, err)
	defer surface.Release()

	sh, err := shader.NewShader("colored", `
@vertex
fn vs_main(@location(0) position: vec2<f32>, @location(1) color: vec4<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 0.0, 1.0);
}
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`)
	require.NoError(t, err)
	p, err := pipeline.NewPipeline(ctx, surface, sh, nil, nil)
	require.NoError(t, err)

	m, err := NewStaticMeshFrom(ctx, "triangle", triangle, []uint16{0, 1, 2})
	require.NoError(t, err)

	list := render.NewCommandList("mesh")
	ph, err := list.RegisterPipeline(p)
	require.NoError(t, err)
	list.SetPipeline(ph)
	require.NoError(t, m.AppendDraw(list, 0))
	require.Len(t, list.Commands, 4)
	assert.Equal(t, render.DrawIndexed{Indices: render.Range{End: 3}, Instances: render.Range{End: 1}}, list.Commands[3])

	require.NoError(t, render.Render(ctx, surface, []*render.CommandList{list}, backend.Color{}))

	tex, err := surface.CurrentTexture()
	require.NoError(t, err)
	px, err := software_backend.ReadPixels(ctx.Backend(), tex)
	require.NoError(t, err)

	// Bottom centre is inside the triangle and takes the vertex colour, top left is background.
	at := (7*8 + 4) * 4
	assert.Equal(t, []byte{255, 0, 0, 255}, px[at:at+4])
	assert.Equal(t, []byte{0, 0, 0, 0}, px[:4])
}
