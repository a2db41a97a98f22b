package software_backend

import (
	"errors"
	"fmt"
	"maps"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
)

type commandEncoder struct {
	owner    *softwareBackend
	label    string
	passes   []*recordedPass
	open     *renderPass
	finished bool
}

var _ backend.CommandEncoder = &commandEncoder{}

func (e *commandEncoder) BeginRenderPass(desc backend.RenderPassDescriptor) (backend.RenderPass, error) {
	if e.finished {
		return nil, fmt.Errorf("encoder %q is finished", e.label)
	}
	if e.open != nil {
		return nil, fmt.Errorf("encoder %q: previous render pass was not ended", e.label)
	}

	view, ok := desc.View.(*textureView)
	if !ok {
		return nil, fmt.Errorf("pass %q: colour attachment: %w", desc.Label, common.ErrBackendMismatch)
	}
	if err := view.check(e.owner, "texture view"); err != nil {
		return nil, err
	}
	if view.tex.format.IsDepth() {
		return nil, fmt.Errorf("pass %q: colour attachment has depth format %s", desc.Label, view.tex.format)
	}

	rp := &recordedPass{
		label:  desc.Label,
		target: view.tex,
		load:   desc.LoadOp,
		clear:  desc.ClearColor,
	}
	if desc.Depth != nil {
		dv, ok := desc.Depth.View.(*textureView)
		if !ok {
			return nil, fmt.Errorf("pass %q: depth attachment: %w", desc.Label, common.ErrBackendMismatch)
		}
		if !dv.tex.format.IsDepth() {
			return nil, fmt.Errorf("pass %q: depth attachment has colour format %s", desc.Label, dv.tex.format)
		}
		if dv.tex.width != view.tex.width || dv.tex.height != view.tex.height {
			return nil, fmt.Errorf("pass %q: depth attachment size differs from colour attachment", desc.Label)
		}
		rp.depth = dv.tex
		rp.depthLoad = desc.Depth.LoadOp
		rp.depthClear = desc.Depth.ClearValue
	}

	e.open = &renderPass{
		encoder: e,
		pass:    rp,
		state: drawState{
			groups:   make(map[uint32]*bindGroup),
			vertices: make(map[uint32]vertexBinding),
		},
	}
	return e.open, nil
}

func (e *commandEncoder) Finish() (backend.CommandBuffer, error) {
	if e.open != nil {
		return nil, fmt.Errorf("encoder %q: render pass was not ended", e.label)
	}
	if e.finished {
		return nil, fmt.Errorf("encoder %q is already finished", e.label)
	}
	e.finished = true
	return &commandBuffer{owner: e.owner, label: e.label, passes: e.passes}, nil
}

func (e *commandEncoder) Release() {
	e.passes = nil
	e.open = nil
}

type commandBuffer struct {
	owner     *softwareBackend
	label     string
	passes    []*recordedPass
	submitted bool
}

var _ backend.CommandBuffer = &commandBuffer{}

func (c *commandBuffer) Release() {
	c.passes = nil
}

// recordedPass is a render pass replayed at submit time.
type recordedPass struct {
	label  string
	target *texture
	load   backend.LoadOp
	clear  backend.Color

	depth      *texture
	depthLoad  backend.LoadOp
	depthClear float32

	draws []drawCall
}

// rangeWithin reports whether [offset, offset+size) lies inside a buffer of total bytes.
func rangeWithin(offset, size, total uint64) bool {
	return offset <= total && size <= total-offset
}

type vertexBinding struct {
	buf          *buffer
	offset, size uint64
}

type indexBinding struct {
	buf          *buffer
	format       backend.IndexFormat
	offset, size uint64
}

// drawState is the state bound on a pass at the time of a draw.
type drawState struct {
	pipeline *renderPipeline
	groups   map[uint32]*bindGroup
	vertices map[uint32]vertexBinding
	index    *indexBinding
}

func (s drawState) clone() drawState {
	out := drawState{
		pipeline: s.pipeline,
		groups:   maps.Clone(s.groups),
		vertices: maps.Clone(s.vertices),
	}
	if s.index != nil {
		idx := *s.index
		out.index = &idx
	}
	return out
}

type drawCall struct {
	state         drawState
	indexed       bool
	count         uint32
	instances     uint32
	first         uint32
	baseVertex    int32
	firstInstance uint32
}

type renderPass struct {
	encoder *commandEncoder
	pass    *recordedPass
	state   drawState
	err     error
	ended   bool
}

var _ backend.RenderPass = &renderPass{}

// fail records the first error raised while recording. It is reported by End.
func (p *renderPass) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *renderPass) SetPipeline(rp backend.RenderPipeline) {
	sp, ok := rp.(*renderPipeline)
	if !ok {
		p.fail(fmt.Errorf("pipeline: %w", common.ErrBackendMismatch))
		return
	}
	if err := sp.check(p.encoder.owner, "pipeline"); err != nil {
		p.fail(err)
		return
	}
	p.state.pipeline = sp
}

func (p *renderPass) SetBindGroup(index uint32, group backend.BindGroup) {
	g, ok := group.(*bindGroup)
	if !ok {
		p.fail(fmt.Errorf("bind group %d: %w", index, common.ErrBackendMismatch))
		return
	}
	if err := g.check(p.encoder.owner, "bind group"); err != nil {
		p.fail(err)
		return
	}
	p.state.groups[index] = g
}

func (p *renderPass) SetVertexBuffer(slot uint32, buf backend.Buffer, offset, size uint64) {
	sb, ok := buf.(*buffer)
	if !ok {
		p.fail(fmt.Errorf("vertex buffer slot %d: %w", slot, common.ErrBackendMismatch))
		return
	}
	if err := sb.check(p.encoder.owner, "buffer"); err != nil {
		p.fail(err)
		return
	}
	if !sb.usage.Has(backend.BufferUsageVertex) {
		p.fail(fmt.Errorf("buffer %q bound at vertex slot %d lacks vertex usage", sb.label, slot))
		return
	}
	if size == 0 {
		size = sb.Size() - min(offset, sb.Size())
	}
	if !rangeWithin(offset, size, sb.Size()) {
		p.fail(fmt.Errorf("vertex buffer slot %d range exceeds buffer %q: %w", slot, sb.label, common.ErrBufferSizeMismatch))
		return
	}
	p.state.vertices[slot] = vertexBinding{buf: sb, offset: offset, size: size}
}

func (p *renderPass) SetIndexBuffer(buf backend.Buffer, format backend.IndexFormat, offset, size uint64) {
	sb, ok := buf.(*buffer)
	if !ok {
		p.fail(fmt.Errorf("index buffer: %w", common.ErrBackendMismatch))
		return
	}
	if err := sb.check(p.encoder.owner, "buffer"); err != nil {
		p.fail(err)
		return
	}
	if !sb.usage.Has(backend.BufferUsageIndex) {
		p.fail(fmt.Errorf("buffer %q bound as index buffer lacks index usage", sb.label))
		return
	}
	if size == 0 {
		size = sb.Size() - min(offset, sb.Size())
	}
	if !rangeWithin(offset, size, sb.Size()) {
		p.fail(fmt.Errorf("index buffer range exceeds buffer %q: %w", sb.label, common.ErrBufferSizeMismatch))
		return
	}
	p.state.index = &indexBinding{buf: sb, format: format, offset: offset, size: size}
}

func (p *renderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.record(drawCall{
		count:         vertexCount,
		instances:     instanceCount,
		first:         firstVertex,
		firstInstance: firstInstance,
	})
}

func (p *renderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	if p.state.index == nil {
		p.fail(errors.New("indexed draw without an index buffer"))
		return
	}
	p.record(drawCall{
		indexed:       true,
		count:         indexCount,
		instances:     instanceCount,
		first:         firstIndex,
		baseVertex:    baseVertex,
		firstInstance: firstInstance,
	})
}

func (p *renderPass) record(dc drawCall) {
	if p.ended {
		p.fail(errors.New("draw recorded after the pass ended"))
		return
	}
	if p.state.pipeline == nil {
		p.fail(errors.New("draw without a pipeline"))
		return
	}
	if p.state.pipeline.desc.Target.Format != p.pass.target.format {
		p.fail(fmt.Errorf("pipeline %q targets %s but the pass renders to %s",
			p.state.pipeline.label, p.state.pipeline.desc.Target.Format, p.pass.target.format))
		return
	}
	for i, want := range p.state.pipeline.desc.BindGroupLayouts {
		g, ok := p.state.groups[uint32(i)]
		if !ok {
			p.fail(fmt.Errorf("pipeline %q expects a bind group at index %d: %w", p.state.pipeline.label, i, common.ErrResourceBindingMismatch))
			return
		}
		if !layoutsCompatible(g.layout, want) {
			p.fail(fmt.Errorf("bind group %q at index %d does not match pipeline %q: %w", g.label, i, p.state.pipeline.label, common.ErrResourceBindingMismatch))
			return
		}
	}
	for slot := range p.state.pipeline.desc.VertexBuffers {
		if _, ok := p.state.vertices[uint32(slot)]; !ok {
			p.fail(fmt.Errorf("pipeline %q expects a vertex buffer in slot %d", p.state.pipeline.label, slot))
			return
		}
	}
	dc.state = p.state.clone()
	p.pass.draws = append(p.pass.draws, dc)
}

func (p *renderPass) End() error {
	if p.ended {
		return errors.New("render pass already ended")
	}
	p.ended = true
	p.encoder.open = nil
	if p.err != nil {
		return p.err
	}
	p.encoder.passes = append(p.encoder.passes, p.pass)
	return nil
}

// layoutsCompatible reports whether a group built from got can be bound where want is expected.
// Layouts are compatible when they are the same object or declare identical entries.
func layoutsCompatible(got *bindGroupLayout, want backend.BindGroupLayout) bool {
	if backend.BindGroupLayout(got) == want {
		return true
	}
	w, ok := want.(*bindGroupLayout)
	if !ok || len(w.entries) != len(got.entries) {
		return false
	}
	for i := range w.entries {
		a, b := w.entries[i], got.entries[i]
		if a.Binding != b.Binding || a.Kind != b.Kind || a.BufferType != b.BufferType {
			return false
		}
	}
	return true
}
