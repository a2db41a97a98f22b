// Package render interprets declarative command lists against a drawing pass.
//
// A CommandList pairs an ordered slice of RenderCommand values with a flat arena of
// RenderResource values. Commands refer to resources by their position in the arena.
//
// Draw state set by SetPipeline, SetResourceGroup, SetVertexBuffer and SetIndexBuffer is
// retained for the rest of the pass. It is not reset between the lists handed to one Render
// call, so a list may bind a pipeline that draws in a later list use. The order of the lists is
// therefore significant.
package render

import (
	"fmt"

	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/group"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/pipeline"
)

// ResourceKind identifies the variant of a RenderResource.
type ResourceKind int

const (
	ResourceKindPipeline ResourceKind = iota
	ResourceKindVertexBuffer
	ResourceKindIndexBuffer
	ResourceKindGroup
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceKindPipeline:
		return "Pipeline"
	case ResourceKindVertexBuffer:
		return "VertexBufferSlice"
	case ResourceKindIndexBuffer:
		return "IndexBufferSlice"
	case ResourceKindGroup:
		return "ResourceGroup"
	default:
		return fmt.Sprintf("ResourceKind(%d)", int(k))
	}
}

// RenderResource is one entry of a command list's resource arena. The set of variants is
// closed: PipelineResource, VertexBufferSlice, IndexBufferSlice and GroupResource.
type RenderResource interface {
	Kind() ResourceKind

	// check reports why the resource cannot be bound, or nil.
	check() error
}

// PipelineResource makes a pipeline bindable by SetPipeline.
type PipelineResource struct {
	Pipeline pipeline.Pipeline
}

// VertexBufferSlice is a byte range of a vertex buffer. A Size of zero extends to the end of the buffer.
type VertexBufferSlice struct {
	Buffer backend.Buffer
	Offset uint64
	Size   uint64
}

// IndexBufferSlice is a byte range of an index buffer. A Size of zero extends to the end of the buffer.
type IndexBufferSlice struct {
	Buffer backend.Buffer
	Offset uint64
	Size   uint64
}

// GroupResource makes a resource group bindable by SetResourceGroup.
type GroupResource struct {
	Group group.Group
}

var (
	_ RenderResource = PipelineResource{}
	_ RenderResource = VertexBufferSlice{}
	_ RenderResource = IndexBufferSlice{}
	_ RenderResource = GroupResource{}
)

func (PipelineResource) Kind() ResourceKind  { return ResourceKindPipeline }
func (VertexBufferSlice) Kind() ResourceKind { return ResourceKindVertexBuffer }
func (IndexBufferSlice) Kind() ResourceKind  { return ResourceKindIndexBuffer }
func (GroupResource) Kind() ResourceKind     { return ResourceKindGroup }

func (r PipelineResource) check() error {
	if r.Pipeline == nil {
		return fmt.Errorf("pipeline is nil")
	}
	return nil
}

func (r VertexBufferSlice) check() error {
	return checkSlice(r.Buffer, r.Offset, r.Size, backend.BufferUsageVertex)
}

func (r IndexBufferSlice) check() error {
	return checkSlice(r.Buffer, r.Offset, r.Size, backend.BufferUsageIndex)
}

func (r GroupResource) check() error {
	if r.Group == nil {
		return fmt.Errorf("group is nil")
	}
	return nil
}

func checkSlice(buf backend.Buffer, offset, size uint64, usage backend.BufferUsage) error {
	if buf == nil {
		return fmt.Errorf("buffer is nil")
	}
	if !buf.Usage().Has(usage) {
		return fmt.Errorf("buffer %q lacks the usage required by its slice", buf.Label())
	}
	if offset > buf.Size() || size > buf.Size()-offset {
		return fmt.Errorf("range at %d of %d bytes exceeds buffer %q of %d bytes", offset, size, buf.Label(), buf.Size())
	}
	return nil
}

// Range is the half-open interval [Start, End).
type Range struct {
	Start, End uint32
}

// Count returns the number of elements in the range, zero if End is before Start.
func (r Range) Count() uint32 {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// RenderCommand is one operation of a command list. The set of variants is closed:
// SetPipeline, SetResourceGroup, SetVertexBuffer, SetIndexBuffer, Draw and DrawIndexed.
type RenderCommand interface {
	// resource returns the arena index the command reads and the kind it expects there.
	// Draw commands return ok false.
	resource() (index int, kind ResourceKind, ok bool)

	encode(pass backend.RenderPass, resources []RenderResource)
}

// SetPipeline binds the PipelineResource at Resource.
type SetPipeline struct {
	Resource int
}

// SetResourceGroup binds the GroupResource at Resource to group index Index.
type SetResourceGroup struct {
	Index    uint32
	Resource int
}

// SetVertexBuffer binds the VertexBufferSlice at Resource to vertex buffer slot Slot.
type SetVertexBuffer struct {
	Slot     uint32
	Resource int
}

// SetIndexBuffer binds the IndexBufferSlice at Resource, reading indices of Format.
type SetIndexBuffer struct {
	Resource int
	Format   backend.IndexFormat
}

// Draw draws the vertices and instances in the given ranges.
type Draw struct {
	Vertices  Range
	Instances Range
}

// DrawIndexed draws the indices and instances in the given ranges. BaseVertex is added to
// every index before the vertex is fetched.
type DrawIndexed struct {
	Indices    Range
	BaseVertex int32
	Instances  Range
}

var (
	_ RenderCommand = SetPipeline{}
	_ RenderCommand = SetResourceGroup{}
	_ RenderCommand = SetVertexBuffer{}
	_ RenderCommand = SetIndexBuffer{}
	_ RenderCommand = Draw{}
	_ RenderCommand = DrawIndexed{}
)

func (c SetPipeline) resource() (int, ResourceKind, bool) {
	return c.Resource, ResourceKindPipeline, true
}

func (c SetPipeline) encode(pass backend.RenderPass, resources []RenderResource) {
	pass.SetPipeline(resources[c.Resource].(PipelineResource).Pipeline.Raw())
}

func (c SetResourceGroup) resource() (int, ResourceKind, bool) {
	return c.Resource, ResourceKindGroup, true
}

func (c SetResourceGroup) encode(pass backend.RenderPass, resources []RenderResource) {
	pass.SetBindGroup(c.Index, resources[c.Resource].(GroupResource).Group.Raw())
}

func (c SetVertexBuffer) resource() (int, ResourceKind, bool) {
	return c.Resource, ResourceKindVertexBuffer, true
}

func (c SetVertexBuffer) encode(pass backend.RenderPass, resources []RenderResource) {
	s := resources[c.Resource].(VertexBufferSlice)
	pass.SetVertexBuffer(c.Slot, s.Buffer, s.Offset, s.Size)
}

func (c SetIndexBuffer) resource() (int, ResourceKind, bool) {
	return c.Resource, ResourceKindIndexBuffer, true
}

func (c SetIndexBuffer) encode(pass backend.RenderPass, resources []RenderResource) {
	s := resources[c.Resource].(IndexBufferSlice)
	pass.SetIndexBuffer(s.Buffer, c.Format, s.Offset, s.Size)
}

func (c Draw) resource() (int, ResourceKind, bool) {
	return 0, 0, false
}

func (c Draw) encode(pass backend.RenderPass, _ []RenderResource) {
	pass.Draw(c.Vertices.Count(), c.Instances.Count(), c.Vertices.Start, c.Instances.Start)
}

func (c DrawIndexed) resource() (int, ResourceKind, bool) {
	return 0, 0, false
}

func (c DrawIndexed) encode(pass backend.RenderPass, _ []RenderResource) {
	pass.DrawIndexed(c.Indices.Count(), c.Instances.Count(), c.Indices.Start, c.BaseVertex, c.Instances.Start)
}
