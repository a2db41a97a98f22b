package wgpu_backend

import (
	"fmt"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

type commandEncoder struct {
	owner   *wgpuBackend
	label   string
	encoder *wgpu.CommandEncoder
	open    *renderPass
}

var _ backend.CommandEncoder = &commandEncoder{}

func (e *commandEncoder) BeginRenderPass(desc backend.RenderPassDescriptor) (backend.RenderPass, error) {
	if e.encoder == nil {
		return nil, fmt.Errorf("encoder %q is already finished", e.label)
	}
	if e.open != nil && !e.open.ended {
		return nil, fmt.Errorf("encoder %q: previous render pass was not ended", e.label)
	}

	view, ok := desc.View.(*textureView)
	if !ok || view.owner != e.owner {
		return nil, fmt.Errorf("pass %q colour attachment: %w", desc.Label, common.ErrBackendMismatch)
	}

	passDesc := &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    view.view,
			LoadOp:  toLoadOp(desc.LoadOp),
			StoreOp: wgpu.StoreOpStore,
			ClearValue: wgpu.Color{
				R: desc.ClearColor.R,
				G: desc.ClearColor.G,
				B: desc.ClearColor.B,
				A: desc.ClearColor.A,
			},
		}},
	}
	if d := desc.Depth; d != nil {
		depthView, ok := d.View.(*textureView)
		if !ok || depthView.owner != e.owner {
			return nil, fmt.Errorf("pass %q depth attachment: %w", desc.Label, common.ErrBackendMismatch)
		}
		passDesc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            depthView.view,
			DepthLoadOp:     toLoadOp(d.LoadOp),
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: d.ClearValue,
		}
	}

	e.open = &renderPass{
		owner: e.owner,
		label: desc.Label,
		pass:  e.encoder.BeginRenderPass(passDesc),
	}
	return e.open, nil
}

func (e *commandEncoder) Finish() (backend.CommandBuffer, error) {
	if e.encoder == nil {
		return nil, fmt.Errorf("encoder %q is already finished", e.label)
	}
	if e.open != nil && !e.open.ended {
		return nil, fmt.Errorf("encoder %q: render pass %q was not ended", e.label, e.open.label)
	}
	cb, err := e.encoder.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to finish encoder %q: %w", e.label, err)
	}
	e.encoder.Release()
	e.encoder = nil
	return &commandBuffer{owner: e.owner, label: e.label, buffer: cb}, nil
}

func (e *commandEncoder) Release() {
	if e.encoder != nil {
		e.encoder.Release()
		e.encoder = nil
	}
}

type commandBuffer struct {
	owner  *wgpuBackend
	label  string
	buffer *wgpu.CommandBuffer
}

var _ backend.CommandBuffer = &commandBuffer{}

func (c *commandBuffer) Release() {
	if c.buffer != nil {
		c.buffer.Release()
		c.buffer = nil
	}
}

// renderPass records into a wgpu render pass. The first error is kept and returned by End.
type renderPass struct {
	owner *wgpuBackend
	label string
	pass  *wgpu.RenderPassEncoder
	err   error
	ended bool
}

var _ backend.RenderPass = &renderPass{}

func (p *renderPass) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *renderPass) SetPipeline(pipeline backend.RenderPipeline) {
	rp, ok := pipeline.(*renderPipeline)
	if !ok || rp.owner != p.owner {
		p.fail(fmt.Errorf("pass %q pipeline: %w", p.label, common.ErrBackendMismatch))
		return
	}
	p.pass.SetPipeline(rp.pipeline)
}

func (p *renderPass) SetBindGroup(index uint32, group backend.BindGroup) {
	g, ok := group.(*bindGroup)
	if !ok || g.owner != p.owner {
		p.fail(fmt.Errorf("pass %q group %d: %w", p.label, index, common.ErrBackendMismatch))
		return
	}
	p.pass.SetBindGroup(index, g.group, nil)
}

func (p *renderPass) SetVertexBuffer(slot uint32, buf backend.Buffer, offset, size uint64) {
	b, ok := buf.(*buffer)
	if !ok || b.owner != p.owner {
		p.fail(fmt.Errorf("pass %q vertex slot %d: %w", p.label, slot, common.ErrBackendMismatch))
		return
	}
	if size == 0 {
		size = wgpu.WholeSize
	}
	p.pass.SetVertexBuffer(slot, b.buf, offset, size)
}

func (p *renderPass) SetIndexBuffer(buf backend.Buffer, format backend.IndexFormat, offset, size uint64) {
	b, ok := buf.(*buffer)
	if !ok || b.owner != p.owner {
		p.fail(fmt.Errorf("pass %q index buffer: %w", p.label, common.ErrBackendMismatch))
		return
	}
	if size == 0 {
		size = wgpu.WholeSize
	}
	p.pass.SetIndexBuffer(b.buf, toIndexFormat(format), offset, size)
}

func (p *renderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *renderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *renderPass) End() error {
	if p.ended {
		return fmt.Errorf("pass %q was already ended", p.label)
	}
	p.ended = true
	p.pass.End()
	p.pass.Release()
	return p.err
}
