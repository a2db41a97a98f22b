package group

import (
	"fmt"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/graphics"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
)

// Binding is a concrete resource bound at one slot of a Group. Use BufferBinding,
// BufferRangeBinding, TextureBinding or SamplerBinding to build one.
type Binding interface {
	// Kind returns the kind of slot this binding fills.
	Kind() backend.BindingKind

	entry(binding uint32) backend.BindGroupEntry
}

type bufferBinding struct {
	buf          backend.Buffer
	offset, size uint64
}

func (b bufferBinding) Kind() backend.BindingKind {
	return backend.BindingKindBuffer
}

func (b bufferBinding) entry(binding uint32) backend.BindGroupEntry {
	return backend.BindGroupEntry{Binding: binding, Buffer: b.buf, Offset: b.offset, Size: b.size}
}

type textureBinding struct {
	view backend.TextureView
}

func (b textureBinding) Kind() backend.BindingKind {
	return backend.BindingKindTexture
}

func (b textureBinding) entry(binding uint32) backend.BindGroupEntry {
	return backend.BindGroupEntry{Binding: binding, TextureView: b.view}
}

type samplerBinding struct {
	sampler backend.Sampler
}

func (b samplerBinding) Kind() backend.BindingKind {
	return backend.BindingKindSampler
}

func (b samplerBinding) entry(binding uint32) backend.BindGroupEntry {
	return backend.BindGroupEntry{Binding: binding, Sampler: b.sampler}
}

// BufferBinding binds a whole buffer.
func BufferBinding(buf backend.Buffer) Binding {
	return bufferBinding{buf: buf}
}

// BufferRangeBinding binds size bytes of a buffer starting at offset. A size of zero binds to the end.
func BufferRangeBinding(buf backend.Buffer, offset, size uint64) Binding {
	return bufferBinding{buf: buf, offset: offset, size: size}
}

// TextureBinding binds a texture view.
func TextureBinding(view backend.TextureView) Binding {
	return textureBinding{view: view}
}

// SamplerBinding binds a sampler.
func SamplerBinding(s backend.Sampler) Binding {
	return samplerBinding{sampler: s}
}

// Group is a set of concrete resources bound against exactly one Layout.
type Group interface {
	// Label returns the debug label of the group.
	Label() string

	// Layout returns the layout the group was created against.
	//
	// Returns:
	//   - Layout: the group's layout
	Layout() Layout

	// Raw returns the backend bind group.
	//
	// Returns:
	//   - backend.BindGroup: the backend handle
	Raw() backend.BindGroup

	// Release releases the backend bind group. The bound resources are not released.
	Release()
}

type group struct {
	label  string
	layout Layout
	raw    backend.BindGroup
}

var _ Group = &group{}

// NewGroup binds resources against a layout. The number of bindings must equal the number of
// layout slots and each binding must be of the kind its slot expects. On mismatch nothing is created.
//
// Parameters:
//   - ctx: the graphics context to create the group on
//   - label: the debug label
//   - l: the layout to bind against
//   - bindings: the resources, in binding order
//
// Returns:
//   - Group: the created group
//   - error: error wrapping common.ErrResourceBindingMismatch on a count or kind mismatch
func NewGroup(ctx graphics.GraphicsContext, label string, l Layout, bindings ...Binding) (Group, error) {
	if l == nil {
		return nil, fmt.Errorf("group %q has no layout: %w", label, common.ErrResourceBindingMismatch)
	}
	slots := l.Entries()
	if len(bindings) != len(slots) {
		return nil, fmt.Errorf("group %q: layout %q has %d slots but %d resources were given: %w",
			label, l.Label(), len(slots), len(bindings), common.ErrResourceBindingMismatch)
	}

	entries := make([]backend.BindGroupEntry, len(bindings))
	for i, b := range bindings {
		if b == nil {
			return nil, fmt.Errorf("group %q: resource %d is nil: %w", label, i, common.ErrResourceBindingMismatch)
		}
		if b.Kind() != slots[i].Kind {
			return nil, fmt.Errorf("group %q: slot %d expects a %s but a %s was given: %w",
				label, i, slots[i].Kind, b.Kind(), common.ErrResourceBindingMismatch)
		}
		entries[i] = b.entry(uint32(i))
		if entries[i].Buffer == nil && entries[i].TextureView == nil && entries[i].Sampler == nil {
			return nil, fmt.Errorf("group %q: resource %d has no handle: %w", label, i, common.ErrResourceBindingMismatch)
		}
	}

	raw, err := ctx.Backend().CreateBindGroup(backend.BindGroupDescriptor{
		Label:   label,
		Layout:  l.Raw(),
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create group %q: %w", label, err)
	}
	return &group{label: label, layout: l, raw: raw}, nil
}

func (g *group) Label() string {
	return g.label
}

func (g *group) Layout() Layout {
	return g.layout
}

func (g *group) Raw() backend.BindGroup {
	return g.raw
}

func (g *group) Release() {
	g.raw.Release()
}
