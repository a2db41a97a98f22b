package render

import (
	"fmt"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/graphics"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
)

// renderPass holds the configuration of one Render or RenderTo call.
type renderPass struct {
	label      string
	load       backend.LoadOp
	depth      backend.TextureView
	depthClear float32
	depthLoad  backend.LoadOp
}

func newRenderPass(opts ...RenderBuilderOption) *renderPass {
	p := &renderPass{
		label:      "render pass",
		load:       backend.LoadOpClear,
		depthClear: 1,
		depthLoad:  backend.LoadOpClear,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *renderPass) descriptor(view backend.TextureView, clear backend.Color) backend.RenderPassDescriptor {
	desc := backend.RenderPassDescriptor{
		Label:      p.label,
		View:       view,
		LoadOp:     p.load,
		ClearColor: clear,
	}
	if p.depth != nil {
		desc.Depth = &backend.DepthAttachment{
			View:       p.depth,
			LoadOp:     p.depthLoad,
			ClearValue: p.depthClear,
		}
	}
	return desc
}

// Validate checks every list. It is called by Render, RenderTo and Encode before anything is
// recorded, so a bad list rejects the whole call without touching the GPU.
//
// Parameters:
//   - lists: the command lists
//
// Returns:
//   - error: error wrapping common.ErrCommandResourceMismatch for the first invalid list
func Validate(lists ...*CommandList) error {
	for i, l := range lists {
		if l == nil {
			return fmt.Errorf("command list %d is nil: %w", i, common.ErrCommandResourceMismatch)
		}
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Encode interprets command lists against an open pass. Lists are processed in order, and
// commands within a list in order. Bound state carries over from one list to the next.
//
// Parameters:
//   - pass: the open render pass
//   - lists: the command lists
//
// Returns:
//   - error: error wrapping common.ErrCommandResourceMismatch if a list is invalid, in which case nothing is recorded
func Encode(pass backend.RenderPass, lists ...*CommandList) error {
	if err := Validate(lists...); err != nil {
		return err
	}
	for _, l := range lists {
		for _, cmd := range l.Commands {
			cmd.encode(pass, l.Resources)
		}
	}
	return nil
}

// Render draws command lists into the surface's current image in a single pass, then submits
// and presents. Every list is validated before the image is acquired.
//
// State bound by one list stays bound for the lists after it; see the package documentation.
//
// Parameters:
//   - ctx: the graphics context
//   - surface: the surface to draw into and present
//   - lists: the command lists, in execution order
//   - clear: the colour the image is cleared to
//   - opts: pass options such as a depth attachment
//
// Returns:
//   - error: error wrapping common.ErrCommandResourceMismatch for an invalid list, or the backend error
func Render(ctx graphics.GraphicsContext, surface graphics.Surface, lists []*CommandList, clear backend.Color, opts ...RenderBuilderOption) error {
	if err := Validate(lists...); err != nil {
		return err
	}

	tex, err := surface.CurrentTexture()
	if err != nil {
		return fmt.Errorf("failed to acquire surface texture: %w", err)
	}
	view, err := tex.CreateView()
	if err != nil {
		return fmt.Errorf("failed to create surface view: %w", err)
	}
	defer view.Release()

	if err := RenderTo(ctx, view, lists, clear, opts...); err != nil {
		return err
	}
	if err := surface.Present(); err != nil {
		return fmt.Errorf("failed to present surface: %w", err)
	}
	return nil
}

// RenderTo draws command lists into an arbitrary texture view in a single pass and submits
// the command buffer. Nothing is presented.
//
// Parameters:
//   - ctx: the graphics context
//   - view: the colour attachment
//   - lists: the command lists, in execution order
//   - clear: the colour the view is cleared to, ignored with WithLoad
//   - opts: pass options
//
// Returns:
//   - error: error wrapping common.ErrCommandResourceMismatch for an invalid list, or the backend error
func RenderTo(ctx graphics.GraphicsContext, view backend.TextureView, lists []*CommandList, clear backend.Color, opts ...RenderBuilderOption) error {
	if err := Validate(lists...); err != nil {
		return err
	}
	p := newRenderPass(opts...)

	encoder, err := ctx.Backend().CreateCommandEncoder(p.label)
	if err != nil {
		return fmt.Errorf("failed to create command encoder: %w", err)
	}
	defer encoder.Release()

	pass, err := encoder.BeginRenderPass(p.descriptor(view, clear))
	if err != nil {
		return fmt.Errorf("failed to begin %s: %w", p.label, err)
	}
	if err := Encode(pass, lists...); err != nil {
		_ = pass.End()
		return err
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("%s: %w", p.label, err)
	}

	cmd, err := encoder.Finish()
	if err != nil {
		return fmt.Errorf("failed to finish %s: %w", p.label, err)
	}
	defer cmd.Release()
	if err := ctx.Submit(cmd); err != nil {
		return fmt.Errorf("failed to submit %s: %w", p.label, err)
	}
	return nil
}
