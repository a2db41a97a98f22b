package mesh

import (
	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/graphics"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
)

// Index is the set of index element types.
type Index interface {
	uint16 | uint32
}

// IndexFormatOf returns the index format matching I.
func IndexFormatOf[I Index]() backend.IndexFormat {
	var zero I
	if _, ok := any(zero).(uint16); ok {
		return backend.IndexFormatUint16
	}
	return backend.IndexFormatUint32
}

// NewStaticMeshFrom builds a static mesh from typed vertices and indices. V must be a plain
// value type laid out as the pipeline's vertex buffer layout expects.
//
// Parameters:
//   - ctx: the graphics context
//   - label: the debug label
//   - vertices: the vertices
//   - indices: the indices
//
// Returns:
//   - Mesh: the mesh
//   - error: error if the buffers could not be created
func NewStaticMeshFrom[V any, I Index](ctx graphics.GraphicsContext, label string, vertices []V, indices []I) (Mesh, error) {
	return NewStaticMesh(ctx, label, common.SliceToBytes(vertices), common.SliceToBytes(indices), IndexFormatOf[I]())
}

// NewDynamicMeshFrom builds a dynamic mesh from typed vertices and indices.
//
// Parameters:
//   - ctx: the graphics context
//   - label: the debug label
//   - vertices: the initial vertices
//   - indices: the initial indices
//
// Returns:
//   - Mesh: the mesh
//   - error: error if the buffers could not be created
func NewDynamicMeshFrom[V any, I Index](ctx graphics.GraphicsContext, label string, vertices []V, indices []I) (Mesh, error) {
	return NewDynamicMesh(ctx, label, common.SliceToBytes(vertices), common.SliceToBytes(indices), IndexFormatOf[I]())
}

// UpdateVerticesFrom replaces the vertices of a dynamic mesh with typed data of the same byte length.
func UpdateVerticesFrom[V any](m Mesh, vertices []V) error {
	return m.UpdateVertices(common.SliceToBytes(vertices))
}

// UpdateIndicesFrom replaces the indices of a dynamic mesh with typed data of the same byte length.
func UpdateIndicesFrom[I Index](m Mesh, indices []I) error {
	return m.UpdateIndices(common.SliceToBytes(indices))
}
