package software_backend

import (
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
)

// resource is embedded by every software object to carry its owner, label and release state.
type resource struct {
	owner    *softwareBackend
	label    string
	released atomic.Bool
}

func (r *resource) Label() string {
	return r.label
}

func (r *resource) Release() {
	r.released.Store(true)
}

// check reports ErrBackendMismatch when the object came from a different backend instance.
func (r *resource) check(b *softwareBackend, what string) error {
	if r.owner != b {
		return fmt.Errorf("%s %q was created by another backend: %w", what, r.label, common.ErrBackendMismatch)
	}
	if r.released.Load() {
		return fmt.Errorf("%s %q used after release", what, r.label)
	}
	return nil
}

type buffer struct {
	resource
	usage backend.BufferUsage
	data  []byte
}

var _ backend.Buffer = &buffer{}

func (b *buffer) Size() uint64 {
	return uint64(len(b.data))
}

func (b *buffer) Usage() backend.BufferUsage {
	return b.usage
}

type texture struct {
	resource
	width, height uint32
	format        backend.TextureFormat
	usage         backend.TextureUsage

	// data holds colour texels in format byte order.
	data []byte
	// depth holds one value per texel for depth formats.
	depth []float32
}

var _ backend.Texture = &texture{}

func (t *texture) Width() uint32 {
	return t.width
}

func (t *texture) Height() uint32 {
	return t.height
}

func (t *texture) Format() backend.TextureFormat {
	return t.format
}

func (t *texture) Usage() backend.TextureUsage {
	return t.usage
}

func (t *texture) CreateView() (backend.TextureView, error) {
	if t.released.Load() {
		return nil, fmt.Errorf("texture %q used after release", t.label)
	}
	return &textureView{resource: resource{owner: t.owner, label: t.label + " view"}, tex: t}, nil
}

type textureView struct {
	resource
	tex *texture
}

var _ backend.TextureView = &textureView{}

func (v *textureView) Texture() backend.Texture {
	return v.tex
}

type sampler struct {
	resource
	desc backend.SamplerDescriptor
}

var _ backend.Sampler = &sampler{}

type bindGroupLayout struct {
	resource
	entries []backend.BindGroupLayoutEntry
}

var _ backend.BindGroupLayout = &bindGroupLayout{}

func (l *bindGroupLayout) Entries() []backend.BindGroupLayoutEntry {
	out := make([]backend.BindGroupLayoutEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

type bindGroup struct {
	resource
	layout  *bindGroupLayout
	entries []backend.BindGroupEntry
}

var _ backend.BindGroup = &bindGroup{}

func (g *bindGroup) Layout() backend.BindGroupLayout {
	return g.layout
}

// firstTexture returns the first texture view bound in the group, or nil.
func (g *bindGroup) firstTexture() *texture {
	for _, e := range g.entries {
		if v, ok := e.TextureView.(*textureView); ok {
			return v.tex
		}
	}
	return nil
}

type renderPipeline struct {
	resource
	desc backend.RenderPipelineDescriptor
}

var _ backend.RenderPipeline = &renderPipeline{}

func (p *renderPipeline) Descriptor() backend.RenderPipelineDescriptor {
	return p.desc
}

// attribute finds the vertex attribute bound to a shader location.
//
// Parameters:
//   - location: the shader location
//
// Returns:
//   - uint32: the vertex buffer slot holding the attribute
//   - backend.VertexBufferLayout: the layout of that slot
//   - backend.VertexAttribute: the attribute
//   - bool: false if no attribute uses the location
func (p *renderPipeline) attribute(location uint32) (uint32, backend.VertexBufferLayout, backend.VertexAttribute, bool) {
	for slot, layout := range p.desc.VertexBuffers {
		for _, attr := range layout.Attributes {
			if attr.ShaderLocation == location {
				return uint32(slot), layout, attr, true
			}
		}
	}
	return 0, backend.VertexBufferLayout{}, backend.VertexAttribute{}, false
}
