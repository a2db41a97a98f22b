// Package shape draws flat coloured rectangles and circles given in pixel coordinates.
//
// Shapes are tessellated on the CPU into normalized device coordinates for a given target size
// and drawn through a single pipeline. The origin is the top-left corner of the target with y
// growing downwards.
package shape

import (
	"image/color"

	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/chewxy/math32"
)

// DefaultSegments is the number of rim segments used for a circle that does not set its own.
const DefaultSegments = 32

// Vertex is the vertex layout every shape is tessellated into.
type Vertex struct {
	Position [2]float32
	Color    [4]uint8
}

// VertexLayout returns the buffer layout matching Vertex: position at location 0 as Float32x2
// and colour at location 1 as Unorm8x4.
func VertexLayout() backend.VertexBufferLayout {
	return backend.VertexBufferLayout{
		ArrayStride: 12,
		StepMode:    backend.VertexStepModeVertex,
		Attributes: []backend.VertexAttribute{
			{Format: backend.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: backend.VertexFormatUnorm8x4, Offset: 8, ShaderLocation: 1},
		},
	}
}

// Shape is anything that can tessellate itself into a triangle list.
type Shape interface {
	// Tessellate appends the triangles of the shape to vertices and indices. Indices are
	// relative to the start of vertices.
	//
	// Parameters:
	//   - vertices: the vertex slice to append to
	//   - indices: the index slice to append to
	//   - width: the target width in pixels
	//   - height: the target height in pixels
	//
	// Returns:
	//   - []Vertex: the extended vertices
	//   - []uint32: the extended indices
	Tessellate(vertices []Vertex, indices []uint32, width, height float32) ([]Vertex, []uint32)
}

// Rect is an axis aligned rectangle. X and Y locate its top-left corner.
type Rect struct {
	X, Y, W, H float32
	Color      color.RGBA
}

// Circle is a filled circle approximated by a triangle fan.
type Circle struct {
	X, Y, Radius float32
	Color        color.RGBA

	// Segments is the number of rim segments, DefaultSegments when zero. At least 3 are used.
	Segments int
}

var _ Shape = Rect{}
var _ Shape = Circle{}

// Tessellate converts shapes into one indexed triangle list for a target of the given size.
//
// Parameters:
//   - width: the target width in pixels
//   - height: the target height in pixels
//   - shapes: the shapes in draw order
//
// Returns:
//   - []Vertex: the vertices in normalized device coordinates
//   - []uint32: the triangle list indices
func Tessellate(width, height uint32, shapes ...Shape) ([]Vertex, []uint32) {
	var vertices []Vertex
	var indices []uint32
	for _, s := range shapes {
		vertices, indices = s.Tessellate(vertices, indices, float32(width), float32(height))
	}
	return vertices, indices
}

func toNDC(x, y, width, height float32) [2]float32 {
	return [2]float32{2*x/width - 1, 1 - 2*y/height}
}

func rgba(c color.RGBA) [4]uint8 {
	return [4]uint8{c.R, c.G, c.B, c.A}
}

func (r Rect) Tessellate(vertices []Vertex, indices []uint32, width, height float32) ([]Vertex, []uint32) {
	base := uint32(len(vertices))
	c := rgba(r.Color)
	vertices = append(vertices,
		Vertex{Position: toNDC(r.X, r.Y, width, height), Color: c},
		Vertex{Position: toNDC(r.X+r.W, r.Y, width, height), Color: c},
		Vertex{Position: toNDC(r.X+r.W, r.Y+r.H, width, height), Color: c},
		Vertex{Position: toNDC(r.X, r.Y+r.H, width, height), Color: c},
	)
	indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	return vertices, indices
}

func (ci Circle) Tessellate(vertices []Vertex, indices []uint32, width, height float32) ([]Vertex, []uint32) {
	segments := ci.Segments
	if segments == 0 {
		segments = DefaultSegments
	}
	segments = max(segments, 3)

	base := uint32(len(vertices))
	c := rgba(ci.Color)
	vertices = append(vertices, Vertex{Position: toNDC(ci.X, ci.Y, width, height), Color: c})
	step := 2 * math32.Pi / float32(segments)
	for i := range segments {
		sin, cos := math32.Sincos(float32(i) * step)
		vertices = append(vertices, Vertex{
			Position: toNDC(ci.X+cos*ci.Radius, ci.Y+sin*ci.Radius, width, height),
			Color:    c,
		})
	}
	for i := range uint32(segments) {
		next := (i+1)%uint32(segments) + 1
		indices = append(indices, base, base+i+1, base+next)
	}
	return vertices, indices
}
