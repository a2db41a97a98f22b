// Package uniform provides small GPU buffers for per-frame scalar and matrix data.
//
// Updates are written through the context queue immediately and are not part of any frame's
// command buffer. A write lands before any command buffer submitted after it.
package uniform

import (
	"fmt"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/graphics"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/group"
)

// UniformBuffer is a write-only uniform buffer holding opaque bytes.
type UniformBuffer interface {
	// Label returns the debug label of the buffer.
	Label() string

	// Size returns the size of the buffer contents in bytes.
	Size() uint64

	// Update writes data at a byte offset. Bytes outside [offset, offset+len(data)) keep their
	// contents. The offset must be a multiple of backend.WriteAlignment, and so must len(data)
	// unless the write ends at the end of the buffer.
	//
	// Parameters:
	//   - data: the bytes to write
	//   - offset: the byte offset to write at
	//
	// Returns:
	//   - error: error wrapping common.ErrBufferSizeMismatch if the write runs past the end or is unaligned
	Update(data []byte, offset uint64) error

	// Binding returns the whole buffer as a resource group binding.
	//
	// Returns:
	//   - group.Binding: a buffer binding
	Binding() group.Binding

	// Raw returns the backend buffer.
	Raw() backend.Buffer

	// Release releases the backend buffer.
	Release()
}

type uniformBuffer struct {
	ctx   graphics.GraphicsContext
	label string
	size  uint64
	raw   backend.Buffer
}

var _ UniformBuffer = &uniformBuffer{}

// NewUniformBuffer creates a uniform buffer holding data.
//
// Parameters:
//   - ctx: the graphics context
//   - label: the debug label
//   - data: the initial contents, which also fix the buffer size
//
// Returns:
//   - UniformBuffer: the buffer
//   - error: error wrapping common.ErrBufferSizeMismatch if data is empty
func NewUniformBuffer(ctx graphics.GraphicsContext, label string, data []byte) (UniformBuffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("uniform buffer %q needs initial contents: %w", label, common.ErrBufferSizeMismatch)
	}
	raw, err := ctx.Backend().CreateBuffer(backend.BufferDescriptor{
		Label:    label,
		Usage:    backend.BufferUsageUniform | backend.BufferUsageCopyDst,
		Contents: data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create uniform buffer %q: %w", label, err)
	}
	return &uniformBuffer{ctx: ctx, label: label, size: uint64(len(data)), raw: raw}, nil
}

// NewUniformBufferFrom creates a uniform buffer holding the bytes of a plain value. T must
// match the layout of the WGSL struct it is bound to, padding included.
//
// Parameters:
//   - ctx: the graphics context
//   - label: the debug label
//   - v: the initial value
//
// Returns:
//   - UniformBuffer: the buffer
//   - error: error if the buffer could not be created
func NewUniformBufferFrom[T any](ctx graphics.GraphicsContext, label string, v T) (UniformBuffer, error) {
	return NewUniformBuffer(ctx, label, common.StructToBytes(&v))
}

// UpdateValue writes the bytes of a plain value at offset.
func UpdateValue[T any](u UniformBuffer, v T, offset uint64) error {
	return u.Update(common.StructToBytes(&v), offset)
}

func (u *uniformBuffer) Label() string {
	return u.label
}

func (u *uniformBuffer) Size() uint64 {
	return u.size
}

func (u *uniformBuffer) Update(data []byte, offset uint64) error {
	if err := backend.CheckWrite(offset, uint64(len(data)), u.size); err != nil {
		return fmt.Errorf("uniform buffer %q: %w", u.label, err)
	}
	if err := u.ctx.Backend().WriteBuffer(u.raw, offset, data); err != nil {
		return fmt.Errorf("failed to update uniform buffer %q: %w", u.label, err)
	}
	return nil
}

func (u *uniformBuffer) Binding() group.Binding {
	return group.BufferRangeBinding(u.raw, 0, u.size)
}

func (u *uniformBuffer) Raw() backend.Buffer {
	return u.raw
}

func (u *uniformBuffer) Release() {
	u.raw.Release()
}
