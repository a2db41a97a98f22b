package wgpu_backend

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// handle carries the owner and label of a wrapped wgpu object, and releases it at most once.
type handle struct {
	owner   *wgpuBackend
	label   string
	once    sync.Once
	release func()
}

func (h *handle) Label() string {
	return h.label
}

func (h *handle) Release() {
	h.once.Do(func() {
		if h.release != nil {
			h.release()
		}
	})
}

func (h *handle) check(b *wgpuBackend, what string) error {
	if h.owner != b {
		return fmt.Errorf("%s %q was created by another backend: %w", what, h.label, common.ErrBackendMismatch)
	}
	return nil
}

type buffer struct {
	handle
	buf   *wgpu.Buffer
	size  uint64
	usage backend.BufferUsage
}

var _ backend.Buffer = &buffer{}

func (b *buffer) Size() uint64 {
	return b.size
}

func (b *buffer) Usage() backend.BufferUsage {
	return b.usage
}

type texture struct {
	handle
	tex           *wgpu.Texture
	width, height uint32
	format        backend.TextureFormat
	usage         backend.TextureUsage
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
	view, err := t.tex.CreateView(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create view of texture %q: %w", t.label, err)
	}
	return &textureView{
		handle: handle{owner: t.owner, label: t.label + " view", release: view.Release},
		view:   view,
		tex:    t,
	}, nil
}

type textureView struct {
	handle
	view *wgpu.TextureView
	tex  *texture
}

var _ backend.TextureView = &textureView{}

func (v *textureView) Texture() backend.Texture {
	return v.tex
}

type sampler struct {
	handle
	sampler *wgpu.Sampler
}

var _ backend.Sampler = &sampler{}

type bindGroupLayout struct {
	handle
	layout  *wgpu.BindGroupLayout
	entries []backend.BindGroupLayoutEntry
}

var _ backend.BindGroupLayout = &bindGroupLayout{}

func (l *bindGroupLayout) Entries() []backend.BindGroupLayoutEntry {
	out := make([]backend.BindGroupLayoutEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

type bindGroup struct {
	handle
	group  *wgpu.BindGroup
	layout *bindGroupLayout
}

var _ backend.BindGroup = &bindGroup{}

func (g *bindGroup) Layout() backend.BindGroupLayout {
	return g.layout
}

type renderPipeline struct {
	handle
	pipeline *wgpu.RenderPipeline
	desc     backend.RenderPipelineDescriptor
}

var _ backend.RenderPipeline = &renderPipeline{}

func (p *renderPipeline) Descriptor() backend.RenderPipelineDescriptor {
	return p.desc
}
