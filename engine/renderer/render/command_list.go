package render

import (
	"fmt"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/group"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/pipeline"
)

// Handle is a typed reference to a resource registered in one CommandList. The type parameter
// fixes the resource variant, so a Handle[PipelineResource] can only be passed where a pipeline
// is expected.
type Handle[R RenderResource] struct {
	list  *CommandList
	index int
}

// Index returns the arena position of the resource.
func (h Handle[R]) Index() int {
	return h.index
}

type (
	PipelineHandle     = Handle[PipelineResource]
	VertexBufferHandle = Handle[VertexBufferSlice]
	IndexBufferHandle  = Handle[IndexBufferSlice]
	GroupHandle        = Handle[GroupResource]
)

// CommandList is an ordered sequence of commands and the resource arena they index into.
//
// Lists are usually built through Register and the command methods, which check resource kinds
// as the list is assembled. Resources and Commands may also be filled in directly; such lists
// are checked in full by Validate before any of their commands reach a pass.
type CommandList struct {
	Label     string
	Resources []RenderResource
	Commands  []RenderCommand

	// err is the first problem found while building the list through its methods.
	err error
}

// NewCommandList creates an empty command list.
//
// Parameters:
//   - label: a label used in error messages
//
// Returns:
//   - *CommandList: the empty list
func NewCommandList(label string) *CommandList {
	return &CommandList{Label: label}
}

// Register appends a resource to the list's arena and returns a typed handle to it. The
// resource is checked on registration: nil pipelines and groups, and buffer slices that are
// out of range or lack the required usage, are rejected with common.ErrCommandResourceMismatch.
//
// Parameters:
//   - l: the list to register into
//   - r: the resource
//
// Returns:
//   - Handle[R]: the handle to pass to the list's command methods
//   - error: error wrapping common.ErrCommandResourceMismatch if the resource cannot be bound
func Register[R RenderResource](l *CommandList, r R) (Handle[R], error) {
	if _, ok := kindOf(r); !ok {
		return Handle[R]{}, fmt.Errorf("list %q: %T is not a render resource: %w", l.Label, r, common.ErrCommandResourceMismatch)
	}
	if err := r.check(); err != nil {
		return Handle[R]{}, fmt.Errorf("list %q: %s: %v: %w", l.Label, r.Kind(), err, common.ErrCommandResourceMismatch)
	}
	l.Resources = append(l.Resources, r)
	return Handle[R]{list: l, index: len(l.Resources) - 1}, nil
}

// RegisterPipeline registers a pipeline.
func (l *CommandList) RegisterPipeline(p pipeline.Pipeline) (PipelineHandle, error) {
	return Register(l, PipelineResource{Pipeline: p})
}

// RegisterGroup registers a resource group.
func (l *CommandList) RegisterGroup(g group.Group) (GroupHandle, error) {
	return Register(l, GroupResource{Group: g})
}

// RegisterVertexBuffer registers a vertex buffer slice.
func (l *CommandList) RegisterVertexBuffer(s VertexBufferSlice) (VertexBufferHandle, error) {
	return Register(l, s)
}

// RegisterIndexBuffer registers an index buffer slice.
func (l *CommandList) RegisterIndexBuffer(s IndexBufferSlice) (IndexBufferHandle, error) {
	return Register(l, s)
}

// own records an error if a handle was issued by a different list.
func (l *CommandList) own(list *CommandList, index int) bool {
	if list == l {
		return true
	}
	if l.err == nil {
		l.err = fmt.Errorf("list %q: handle %d was registered in another list: %w", l.Label, index, common.ErrCommandResourceMismatch)
	}
	return false
}

// SetPipeline appends a SetPipeline command.
//
// Parameters:
//   - h: the pipeline handle
//
// Returns:
//   - *CommandList: the list, for chaining
func (l *CommandList) SetPipeline(h PipelineHandle) *CommandList {
	if l.own(h.list, h.index) {
		l.Commands = append(l.Commands, SetPipeline{Resource: h.index})
	}
	return l
}

// SetResourceGroup appends a SetResourceGroup command binding the group at index.
//
// Parameters:
//   - index: the group index in the pipeline layout
//   - h: the group handle
//
// Returns:
//   - *CommandList: the list, for chaining
func (l *CommandList) SetResourceGroup(index uint32, h GroupHandle) *CommandList {
	if l.own(h.list, h.index) {
		l.Commands = append(l.Commands, SetResourceGroup{Index: index, Resource: h.index})
	}
	return l
}

// SetVertexBuffer appends a SetVertexBuffer command binding the slice at slot.
//
// Parameters:
//   - slot: the vertex buffer slot
//   - h: the vertex buffer handle
//
// Returns:
//   - *CommandList: the list, for chaining
func (l *CommandList) SetVertexBuffer(slot uint32, h VertexBufferHandle) *CommandList {
	if l.own(h.list, h.index) {
		l.Commands = append(l.Commands, SetVertexBuffer{Slot: slot, Resource: h.index})
	}
	return l
}

// SetIndexBuffer appends a SetIndexBuffer command.
//
// Parameters:
//   - h: the index buffer handle
//   - format: the index format
//
// Returns:
//   - *CommandList: the list, for chaining
func (l *CommandList) SetIndexBuffer(h IndexBufferHandle, format backend.IndexFormat) *CommandList {
	if l.own(h.list, h.index) {
		l.Commands = append(l.Commands, SetIndexBuffer{Resource: h.index, Format: format})
	}
	return l
}

// Draw appends a Draw command.
func (l *CommandList) Draw(vertices, instances Range) *CommandList {
	l.Commands = append(l.Commands, Draw{Vertices: vertices, Instances: instances})
	return l
}

// DrawIndexed appends a DrawIndexed command.
func (l *CommandList) DrawIndexed(indices Range, baseVertex int32, instances Range) *CommandList {
	l.Commands = append(l.Commands, DrawIndexed{Indices: indices, BaseVertex: baseVertex, Instances: instances})
	return l
}

// Validate checks every command of the list against its arena: each resource index must be in
// range and hold the variant the command expects, and every range must be well formed.
//
// Returns:
//   - error: error wrapping common.ErrCommandResourceMismatch naming the first offending command
func (l *CommandList) Validate() error {
	if l == nil {
		return fmt.Errorf("command list is nil: %w", common.ErrCommandResourceMismatch)
	}
	if l.err != nil {
		return l.err
	}
	for i, cmd := range l.Commands {
		if cmd == nil {
			return fmt.Errorf("list %q command %d is nil: %w", l.Label, i, common.ErrCommandResourceMismatch)
		}
		if err := checkRanges(cmd); err != nil {
			return fmt.Errorf("list %q command %d (%T): %v: %w", l.Label, i, cmd, err, common.ErrCommandResourceMismatch)
		}

		index, want, ok := cmd.resource()
		if !ok {
			continue
		}
		if index < 0 || index >= len(l.Resources) {
			return fmt.Errorf("list %q command %d (%T): resource index %d is out of range [0, %d): %w",
				l.Label, i, cmd, index, len(l.Resources), common.ErrCommandResourceMismatch)
		}
		res := l.Resources[index]
		got, known := kindOf(res)
		if !known || got != want {
			return fmt.Errorf("list %q command %d (%T): resource %d is %s, expected %s: %w",
				l.Label, i, cmd, index, describe(res), want, common.ErrCommandResourceMismatch)
		}
		if err := res.check(); err != nil {
			return fmt.Errorf("list %q command %d (%T): resource %d: %v: %w",
				l.Label, i, cmd, index, err, common.ErrCommandResourceMismatch)
		}
	}
	return nil
}

// kindOf returns the variant of r. Only the value types of this package are variants.
func kindOf(r RenderResource) (ResourceKind, bool) {
	switch r.(type) {
	case PipelineResource:
		return ResourceKindPipeline, true
	case VertexBufferSlice:
		return ResourceKindVertexBuffer, true
	case IndexBufferSlice:
		return ResourceKindIndexBuffer, true
	case GroupResource:
		return ResourceKindGroup, true
	default:
		return 0, false
	}
}

func describe(r RenderResource) string {
	if k, ok := kindOf(r); ok {
		return k.String()
	}
	return fmt.Sprintf("%T", r)
}

func checkRanges(cmd RenderCommand) error {
	switch c := cmd.(type) {
	case Draw:
		if c.Vertices.End < c.Vertices.Start || c.Instances.End < c.Instances.Start {
			return fmt.Errorf("range end precedes start")
		}
	case DrawIndexed:
		if c.Indices.End < c.Indices.Start || c.Instances.End < c.Instances.Start {
			return fmt.Errorf("range end precedes start")
		}
	case SetPipeline, SetResourceGroup, SetVertexBuffer, SetIndexBuffer:
	default:
		return fmt.Errorf("unknown command")
	}
	return nil
}
