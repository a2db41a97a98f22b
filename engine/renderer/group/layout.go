// Package group builds resource group layouts and the resource groups bound against them.
// Binding indices are positional: the n-th entry of a layout and the n-th binding of a group
// both live at binding n.
package group

import (
	"fmt"

	"github.com/Carmen-Shannon/kopki-go/engine/graphics"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
)

// Entry describes one binding slot of a Layout.
type Entry struct {
	Kind       backend.BindingKind
	Visibility backend.ShaderStage

	// BufferType and MinBindingSize only apply to buffer slots.
	BufferType     backend.BufferBindingType
	MinBindingSize uint64
}

// BufferEntry returns a uniform buffer slot.
//
// Parameters:
//   - visibility: the shader stages that read the buffer
//
// Returns:
//   - Entry: the slot description
func BufferEntry(visibility backend.ShaderStage) Entry {
	return Entry{Kind: backend.BindingKindBuffer, Visibility: visibility, BufferType: backend.BufferBindingTypeUniform}
}

// StorageBufferEntry returns a storage buffer slot.
//
// Parameters:
//   - visibility: the shader stages that access the buffer
//   - readOnly: true for var<storage, read>, false for var<storage, read_write>
//
// Returns:
//   - Entry: the slot description
func StorageBufferEntry(visibility backend.ShaderStage, readOnly bool) Entry {
	e := Entry{Kind: backend.BindingKindBuffer, Visibility: visibility, BufferType: backend.BufferBindingTypeStorage}
	if readOnly {
		e.BufferType = backend.BufferBindingTypeReadOnlyStorage
	}
	return e
}

// TextureEntry returns a sampled 2D texture slot.
//
// Parameters:
//   - visibility: the shader stages that sample the texture
//
// Returns:
//   - Entry: the slot description
func TextureEntry(visibility backend.ShaderStage) Entry {
	return Entry{Kind: backend.BindingKindTexture, Visibility: visibility}
}

// SamplerEntry returns a filtering sampler slot.
//
// Parameters:
//   - visibility: the shader stages that use the sampler
//
// Returns:
//   - Entry: the slot description
func SamplerEntry(visibility backend.ShaderStage) Entry {
	return Entry{Kind: backend.BindingKindSampler, Visibility: visibility}
}

// Layout is the ordered schema of a resource group.
type Layout interface {
	// Label returns the debug label of the layout.
	Label() string

	// Entries returns the slots of the layout in binding order.
	//
	// Returns:
	//   - []Entry: a copy of the slots
	Entries() []Entry

	// Raw returns the backend layout.
	//
	// Returns:
	//   - backend.BindGroupLayout: the backend handle
	Raw() backend.BindGroupLayout

	// Release releases the backend layout.
	Release()
}

type layout struct {
	label   string
	entries []Entry
	raw     backend.BindGroupLayout
}

var _ Layout = &layout{}

// NewLayout creates a layout from ordered slot descriptions. Slot n is bound at binding n.
//
// Parameters:
//   - ctx: the graphics context to create the layout on
//   - label: the debug label
//   - entries: the slots, in binding order
//
// Returns:
//   - Layout: the created layout
//   - error: error if the backend rejects the layout
func NewLayout(ctx graphics.GraphicsContext, label string, entries ...Entry) (Layout, error) {
	desc := backend.BindGroupLayoutDescriptor{
		Label:   label,
		Entries: make([]backend.BindGroupLayoutEntry, len(entries)),
	}
	for i, e := range entries {
		desc.Entries[i] = backend.BindGroupLayoutEntry{
			Binding:        uint32(i),
			Visibility:     e.Visibility,
			Kind:           e.Kind,
			BufferType:     e.BufferType,
			MinBindingSize: e.MinBindingSize,
		}
	}

	raw, err := ctx.Backend().CreateBindGroupLayout(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create layout %q: %w", label, err)
	}
	l := &layout{
		label:   label,
		entries: make([]Entry, len(entries)),
		raw:     raw,
	}
	copy(l.entries, entries)
	return l, nil
}

// NewLayoutFromEntries creates a layout from backend layout entries, such as the entries a
// shader reflects for one of its groups. Entries must be sorted by binding and dense from zero.
//
// Parameters:
//   - ctx: the graphics context to create the layout on
//   - label: the debug label
//   - entries: the backend entries
//
// Returns:
//   - Layout: the created layout
//   - error: error if the bindings are not dense or the backend rejects the layout
func NewLayoutFromEntries(ctx graphics.GraphicsContext, label string, entries []backend.BindGroupLayoutEntry) (Layout, error) {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		if e.Binding != uint32(i) {
			return nil, fmt.Errorf("layout %q: entry %d is at binding %d, bindings must be dense from zero", label, i, e.Binding)
		}
		out[i] = Entry{
			Kind:           e.Kind,
			Visibility:     e.Visibility,
			BufferType:     e.BufferType,
			MinBindingSize: e.MinBindingSize,
		}
	}
	return NewLayout(ctx, label, out...)
}

func (l *layout) Label() string {
	return l.label
}

func (l *layout) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *layout) Raw() backend.BindGroupLayout {
	return l.raw
}

func (l *layout) Release() {
	l.raw.Release()
}
