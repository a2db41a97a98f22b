package shape

import (
	"fmt"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/graphics"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/mesh"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/render"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/shader"
)

const shapeSource = `
struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) color: vec4<f32>,
};

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) color: vec4<f32>,
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = vec4<f32>(in.position, 0.0, 1.0);
    out.color = in.color;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.color;
}
`

// Renderer batches shapes into one dynamic mesh and produces the command list drawing them.
type Renderer interface {
	// Pipeline returns the pipeline shapes are drawn with.
	Pipeline() pipeline.Pipeline

	// Capacity returns how many vertices and indices the batch mesh holds before it must grow.
	Capacity() (vertices, indices int)

	// Draw tessellates shapes for a target of the given size, uploads them and returns the list
	// drawing them in order. The list is valid until the next call to Draw.
	//
	// Parameters:
	//   - width: the target width in pixels
	//   - height: the target height in pixels
	//   - shapes: the shapes in draw order, later shapes over earlier ones
	//
	// Returns:
	//   - *render.CommandList: the list drawing the batch
	//   - error: error if the batch could not be uploaded
	Draw(width, height uint32, shapes ...Shape) (*render.CommandList, error)

	// Release releases the pipeline and the batch mesh.
	Release()
}

type renderer struct {
	ctx   graphics.GraphicsContext
	label string
	blend backend.BlendMode

	pipeline  pipeline.Pipeline
	batch     mesh.Mesh
	vertexCap int
	indexCap  int

	vertices []Vertex
	indices  []uint32
}

var _ Renderer = &renderer{}

// NewRenderer compiles the shape pipeline for a colour target.
//
// Parameters:
//   - ctx: the graphics context
//   - target: the colour target shapes are drawn into, usually a FrameBuffer
//   - opts: renderer options, see the With* functions in this package
//
// Returns:
//   - Renderer: the renderer
//   - error: error if the pipeline or the batch mesh could not be created
func NewRenderer(ctx graphics.GraphicsContext, target pipeline.ColorTarget, opts ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		ctx:       ctx,
		label:     "shapes",
		blend:     backend.BlendModeReplace,
		vertexCap: 64,
		indexCap:  192,
	}
	for _, opt := range opts {
		opt(r)
	}

	sh, err := shader.NewShader(r.label, shapeSource)
	if err != nil {
		return nil, err
	}
	r.pipeline, err = pipeline.NewPipelineExt(ctx, target, sh,
		[]backend.VertexBufferLayout{VertexLayout()},
		nil,
		pipeline.WithLabel(r.label),
		pipeline.WithCullMode(backend.CullModeNone),
		pipeline.WithBlendMode(r.blend),
	)
	if err != nil {
		return nil, err
	}
	if err := r.allocate(r.vertexCap, r.indexCap); err != nil {
		r.pipeline.Release()
		return nil, err
	}
	return r, nil
}

// allocate replaces the batch mesh with one holding at least the given counts.
func (r *renderer) allocate(vertices, indices int) error {
	m, err := mesh.NewDynamicMeshFrom(r.ctx, r.label, make([]Vertex, vertices), make([]uint32, indices))
	if err != nil {
		return fmt.Errorf("failed to allocate shape batch: %w", err)
	}
	if r.batch != nil {
		r.batch.Release()
	}
	r.batch = m
	r.vertexCap, r.indexCap = vertices, indices
	r.vertices = make([]Vertex, 0, vertices)
	r.indices = make([]uint32, 0, indices)
	return nil
}

func grow(capacity, need int) int {
	for capacity < need {
		capacity *= 2
	}
	return capacity
}

func (r *renderer) Pipeline() pipeline.Pipeline {
	return r.pipeline
}

func (r *renderer) Capacity() (int, int) {
	return r.vertexCap, r.indexCap
}

func (r *renderer) Draw(width, height uint32, shapes ...Shape) (*render.CommandList, error) {
	list := render.NewCommandList(r.label)
	if width == 0 || height == 0 || len(shapes) == 0 {
		return list, nil
	}

	r.vertices, r.indices = r.vertices[:0], r.indices[:0]
	for _, s := range shapes {
		r.vertices, r.indices = s.Tessellate(r.vertices, r.indices, float32(width), float32(height))
	}
	count := len(r.indices)

	if len(r.vertices) > r.vertexCap || count > r.indexCap {
		vertices, indices := r.vertices, r.indices
		if err := r.allocate(grow(r.vertexCap, len(vertices)), grow(r.indexCap, count)); err != nil {
			return nil, err
		}
		r.vertices = append(r.vertices, vertices...)
		r.indices = append(r.indices, indices...)
		common.Logger().Debug("shape batch grown", "label", r.label, "vertices", r.vertexCap, "indices", r.indexCap)
	}

	// The batch mesh only accepts full-length writes, so the tail is padded with zeroes.
	vertices := r.vertices[:r.vertexCap]
	clear(vertices[len(r.vertices):])
	indices := r.indices[:r.indexCap]
	clear(indices[count:])
	if err := mesh.UpdateVerticesFrom(r.batch, vertices); err != nil {
		return nil, err
	}
	if err := mesh.UpdateIndicesFrom(r.batch, indices); err != nil {
		return nil, err
	}

	ph, err := list.RegisterPipeline(r.pipeline)
	if err != nil {
		return nil, err
	}
	vh, err := list.RegisterVertexBuffer(r.batch.VertexBufferSlice())
	if err != nil {
		return nil, err
	}
	ih, err := list.RegisterIndexBuffer(r.batch.IndexBufferSlice())
	if err != nil {
		return nil, err
	}
	list.SetPipeline(ph).
		SetVertexBuffer(0, vh).
		SetIndexBuffer(ih, r.batch.IndexFormat()).
		DrawIndexed(render.Range{End: uint32(count)}, 0, render.Range{End: 1})
	return list, nil
}

func (r *renderer) Release() {
	if r.batch != nil {
		r.batch.Release()
	}
	r.pipeline.Release()
}
