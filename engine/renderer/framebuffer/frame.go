package framebuffer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/render"
)

// Frame records the work of one frame into the offscreen texture of its FrameBuffer. Every
// operation opens and closes its own pass on the frame's encoder; nothing reaches the GPU
// until FrameBuffer.Present submits the whole frame as one command buffer.
type Frame interface {
	// Encoder returns the command encoder the frame records into, for passes the render
	// package does not cover. Any pass begun on it must be ended before the next Frame call.
	Encoder() backend.CommandEncoder

	// View returns the offscreen colour view of this frame.
	View() backend.TextureView

	// Width returns the offscreen width in pixels.
	Width() uint32

	// Height returns the offscreen height in pixels.
	Height() uint32

	// Clear records a pass that clears the offscreen texture.
	//
	// Parameters:
	//   - c: the clear colour
	//
	// Returns:
	//   - error: error if the pass could not be recorded
	Clear(c backend.Color) error

	// Draw records a pass that draws command lists on top of the current contents.
	//
	// Parameters:
	//   - lists: the command lists, in execution order
	//
	// Returns:
	//   - error: error wrapping common.ErrCommandResourceMismatch if a list is invalid
	Draw(lists ...*render.CommandList) error

	// DrawWithClear records a pass that clears the offscreen texture and then draws command lists.
	//
	// Parameters:
	//   - c: the clear colour
	//   - lists: the command lists, in execution order
	//
	// Returns:
	//   - error: error wrapping common.ErrCommandResourceMismatch if a list is invalid
	DrawWithClear(c backend.Color, lists ...*render.CommandList) error

	// Release discards the frame without presenting it.
	Release()
}

type frame struct {
	fb      *frameBuffer
	encoder backend.CommandEncoder
	view    backend.TextureView
	passes  int
	done    bool
}

var _ Frame = &frame{}

var errFrameDone = errors.New("frame was already presented or released")

func (f *frame) Encoder() backend.CommandEncoder {
	return f.encoder
}

func (f *frame) View() backend.TextureView {
	return f.view
}

func (f *frame) Width() uint32 {
	return f.view.Texture().Width()
}

func (f *frame) Height() uint32 {
	return f.view.Texture().Height()
}

func (f *frame) Clear(c backend.Color) error {
	return f.pass(backend.LoadOpClear, c, nil)
}

func (f *frame) Draw(lists ...*render.CommandList) error {
	return f.pass(backend.LoadOpLoad, backend.Color{}, lists)
}

func (f *frame) DrawWithClear(c backend.Color, lists ...*render.CommandList) error {
	return f.pass(backend.LoadOpClear, c, lists)
}

func (f *frame) pass(load backend.LoadOp, c backend.Color, lists []*render.CommandList) error {
	if f.done {
		return errFrameDone
	}
	if err := render.Validate(lists...); err != nil {
		return err
	}

	label := fmt.Sprintf("%s pass %d", f.fb.label, f.passes)
	pass, err := f.encoder.BeginRenderPass(backend.RenderPassDescriptor{
		Label:      label,
		View:       f.view,
		LoadOp:     load,
		ClearColor: c,
	})
	if err != nil {
		return fmt.Errorf("failed to begin %s: %w", label, err)
	}
	if err := render.Encode(pass, lists...); err != nil {
		_ = pass.End()
		return err
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	f.passes++
	return nil
}

func (f *frame) Release() {
	if f.done {
		return
	}
	f.done = true
	f.encoder.Release()
	if f.fb.current == f {
		f.fb.current = nil
	}
}
