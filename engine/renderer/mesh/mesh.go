// Package mesh owns vertex and index buffers and exposes them as render resources.
//
// A static mesh is uploaded once and never changes. A dynamic mesh may have its contents
// replaced after creation with data of exactly the same byte length. Replacing contents that an
// in-flight command buffer still reads is a caller hazard and is not guarded.
package mesh

import (
	"fmt"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/graphics"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/render"
)

// Mesh is an indexed vertex buffer pair.
type Mesh interface {
	// Label returns the debug label of the mesh.
	Label() string

	// Dynamic reports whether the contents of the mesh can be replaced.
	Dynamic() bool

	// VertexBuffer returns the vertex buffer.
	VertexBuffer() backend.Buffer

	// IndexBuffer returns the index buffer.
	IndexBuffer() backend.Buffer

	// VertexBufferSlice returns the whole vertex buffer as a render resource.
	//
	// Returns:
	//   - render.VertexBufferSlice: the vertex data range
	VertexBufferSlice() render.VertexBufferSlice

	// IndexBufferSlice returns the whole index buffer as a render resource.
	//
	// Returns:
	//   - render.IndexBufferSlice: the index data range
	IndexBufferSlice() render.IndexBufferSlice

	// IndexFormat returns the format of the indices.
	IndexFormat() backend.IndexFormat

	// IndexCount returns the number of indices.
	IndexCount() uint32

	// UpdateVertices replaces the vertex data. Only dynamic meshes can be updated and the new
	// data must have the same byte length as the data the mesh was created with.
	//
	// Parameters:
	//   - data: the new vertex bytes
	//
	// Returns:
	//   - error: error wrapping common.ErrBufferSizeMismatch if the length differs
	UpdateVertices(data []byte) error

	// UpdateIndices replaces the index data under the same rules as UpdateVertices.
	//
	// Parameters:
	//   - data: the new index bytes
	//
	// Returns:
	//   - error: error wrapping common.ErrBufferSizeMismatch if the length differs
	UpdateIndices(data []byte) error

	// AppendDraw registers the mesh buffers in l and appends the commands that bind them and
	// draw every index once. The pipeline and groups must be bound separately.
	//
	// Parameters:
	//   - l: the command list to append to
	//   - slot: the vertex buffer slot
	//
	// Returns:
	//   - error: error if the buffers cannot be registered
	AppendDraw(l *render.CommandList, slot uint32) error

	// Release releases both buffers.
	Release()
}

type mesh struct {
	ctx         graphics.GraphicsContext
	label       string
	dynamic     bool
	vertices    backend.Buffer
	indices     backend.Buffer
	vertexBytes uint64
	indexBytes  uint64
	indexFormat backend.IndexFormat
	indexCount  uint32
}

var _ Mesh = &mesh{}

// NewStaticMesh uploads vertex and index data into buffers that cannot be written again.
//
// Parameters:
//   - ctx: the graphics context
//   - label: the debug label
//   - vertices: the vertex bytes
//   - indices: the index bytes
//   - format: the format of the indices
//
// Returns:
//   - Mesh: the mesh
//   - error: error wrapping common.ErrBufferSizeMismatch for empty or misaligned data
func NewStaticMesh(ctx graphics.GraphicsContext, label string, vertices, indices []byte, format backend.IndexFormat) (Mesh, error) {
	return newMesh(ctx, label, vertices, indices, format, false)
}

// NewDynamicMesh uploads vertex and index data into buffers whose contents can later be
// replaced with UpdateVertices and UpdateIndices.
//
// Parameters:
//   - ctx: the graphics context
//   - label: the debug label
//   - vertices: the initial vertex bytes
//   - indices: the initial index bytes
//   - format: the format of the indices
//
// Returns:
//   - Mesh: the mesh
//   - error: error wrapping common.ErrBufferSizeMismatch for empty or misaligned data
func NewDynamicMesh(ctx graphics.GraphicsContext, label string, vertices, indices []byte, format backend.IndexFormat) (Mesh, error) {
	return newMesh(ctx, label, vertices, indices, format, true)
}

func newMesh(ctx graphics.GraphicsContext, label string, vertices, indices []byte, format backend.IndexFormat, dynamic bool) (*mesh, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, fmt.Errorf("mesh %q needs vertices and indices: %w", label, common.ErrBufferSizeMismatch)
	}
	if uint64(len(indices))%format.Size() != 0 {
		return nil, fmt.Errorf("mesh %q: %d index bytes is not a multiple of %s: %w", label, len(indices), format, common.ErrBufferSizeMismatch)
	}

	vertexUsage, indexUsage := backend.BufferUsageVertex, backend.BufferUsageIndex
	if dynamic {
		vertexUsage |= backend.BufferUsageCopyDst
		indexUsage |= backend.BufferUsageCopyDst
	}

	vb, err := ctx.Backend().CreateBuffer(backend.BufferDescriptor{
		Label:    label + " Vertex Buffer",
		Usage:    vertexUsage,
		Contents: vertices,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex buffer for mesh %q: %w", label, err)
	}
	ib, err := ctx.Backend().CreateBuffer(backend.BufferDescriptor{
		Label:    label + " Index Buffer",
		Usage:    indexUsage,
		Contents: indices,
	})
	if err != nil {
		vb.Release()
		return nil, fmt.Errorf("failed to create index buffer for mesh %q: %w", label, err)
	}

	return &mesh{
		ctx:         ctx,
		label:       label,
		dynamic:     dynamic,
		vertices:    vb,
		indices:     ib,
		vertexBytes: uint64(len(vertices)),
		indexBytes:  uint64(len(indices)),
		indexFormat: format,
		indexCount:  uint32(uint64(len(indices)) / format.Size()),
	}, nil
}

func (m *mesh) Label() string {
	return m.label
}

func (m *mesh) Dynamic() bool {
	return m.dynamic
}

func (m *mesh) VertexBuffer() backend.Buffer {
	return m.vertices
}

func (m *mesh) IndexBuffer() backend.Buffer {
	return m.indices
}

func (m *mesh) VertexBufferSlice() render.VertexBufferSlice {
	return render.VertexBufferSlice{Buffer: m.vertices, Size: m.vertexBytes}
}

func (m *mesh) IndexBufferSlice() render.IndexBufferSlice {
	return render.IndexBufferSlice{Buffer: m.indices, Size: m.indexBytes}
}

func (m *mesh) IndexFormat() backend.IndexFormat {
	return m.indexFormat
}

func (m *mesh) IndexCount() uint32 {
	return m.indexCount
}

func (m *mesh) UpdateVertices(data []byte) error {
	return m.update(m.vertices, "vertex", m.vertexBytes, data)
}

func (m *mesh) UpdateIndices(data []byte) error {
	return m.update(m.indices, "index", m.indexBytes, data)
}

func (m *mesh) update(buf backend.Buffer, what string, want uint64, data []byte) error {
	if !m.dynamic {
		return fmt.Errorf("mesh %q is static and cannot be updated", m.label)
	}
	if uint64(len(data)) != want {
		return fmt.Errorf("mesh %q: %s data is %d bytes, expected %d: %w", m.label, what, len(data), want, common.ErrBufferSizeMismatch)
	}
	if err := m.ctx.Backend().WriteBuffer(buf, 0, data); err != nil {
		return fmt.Errorf("failed to update %s buffer of mesh %q: %w", what, m.label, err)
	}
	return nil
}

func (m *mesh) AppendDraw(l *render.CommandList, slot uint32) error {
	vh, err := l.RegisterVertexBuffer(m.VertexBufferSlice())
	if err != nil {
		return err
	}
	ih, err := l.RegisterIndexBuffer(m.IndexBufferSlice())
	if err != nil {
		return err
	}
	l.SetVertexBuffer(slot, vh).
		SetIndexBuffer(ih, m.indexFormat).
		DrawIndexed(render.Range{Start: 0, End: m.indexCount}, 0, render.Range{Start: 0, End: 1})
	return nil
}

func (m *mesh) Release() {
	m.vertices.Release()
	m.indices.Release()
}
