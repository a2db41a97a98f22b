package software_backend

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
)

// driver opens software backends. It registers itself on import.
type driver struct{}

func init() {
	backend.Register(driver{})
}

func (driver) Type() backend.BackendType {
	return backend.BackendTypeSoftware
}

func (driver) Open(opts backend.Options) (backend.Backend, error) {
	return New(opts), nil
}

// softwareBackend executes recorded render passes on the CPU when command buffers are submitted.
// Every resource lives in host memory, so the backend also implements backend.Readback.
type softwareBackend struct {
	// mu serialises queue operations (writes and submits) against each other.
	mu *sync.Mutex

	label         string
	maxBindGroups uint32

	// workers is the number of row bands a draw is split into.
	workers int
	// pool runs row bands when workers > 1.
	pool worker.DynamicWorkerPool

	released bool
}

var _ backend.Backend = &softwareBackend{}
var _ backend.Readback = &softwareBackend{}

// New opens a software backend directly, without going through the driver registry.
//
// Parameters:
//   - opts: the backend options; RasterWorkers controls rasterization parallelism
//
// Returns:
//   - backend.Backend: the software backend, which also implements backend.Readback
func New(opts backend.Options) backend.Backend {
	b := &softwareBackend{
		mu:            &sync.Mutex{},
		label:         common.Coalesce(opts.Label, "software device"),
		maxBindGroups: common.Coalesce(opts.MaxBindGroups, 4),
		workers:       max(opts.RasterWorkers, 1),
	}
	if b.workers > 1 {
		b.pool = worker.NewDynamicWorkerPool(b.workers, 256, 1*time.Second)
	}
	common.Logger().Debug("software backend created", "label", b.label, "workers", b.workers)
	return b
}

func (b *softwareBackend) Type() backend.BackendType {
	return backend.BackendTypeSoftware
}

func (b *softwareBackend) AdapterInfo() string {
	return fmt.Sprintf("software rasterizer (%d workers)", b.workers)
}

func (b *softwareBackend) CreateBuffer(desc backend.BufferDescriptor) (backend.Buffer, error) {
	size := desc.Size
	if size == 0 {
		size = uint64(len(desc.Contents))
	}
	if size == 0 {
		return nil, fmt.Errorf("buffer %q: size must be greater than zero: %w", desc.Label, common.ErrBufferSizeMismatch)
	}
	if uint64(len(desc.Contents)) > size {
		return nil, fmt.Errorf("buffer %q: %d bytes of contents exceed size %d: %w", desc.Label, len(desc.Contents), size, common.ErrBufferSizeMismatch)
	}

	buf := &buffer{
		resource: resource{owner: b, label: desc.Label},
		usage:    desc.Usage,
		data:     make([]byte, size),
	}
	copy(buf.data, desc.Contents)
	return buf, nil
}

func (b *softwareBackend) WriteBuffer(buf backend.Buffer, offset uint64, data []byte) error {
	sb, ok := buf.(*buffer)
	if !ok {
		return fmt.Errorf("buffer is not a software buffer: %w", common.ErrBackendMismatch)
	}
	if err := sb.check(b, "buffer"); err != nil {
		return err
	}
	if err := backend.CheckWrite(offset, uint64(len(data)), sb.Size()); err != nil {
		return fmt.Errorf("buffer %q: %w", sb.label, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	copy(sb.data[offset:], data)
	return nil
}

func (b *softwareBackend) CreateTexture(desc backend.TextureDescriptor) (backend.Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("texture %q: dimensions %dx%d must be non-zero", desc.Label, desc.Width, desc.Height)
	}
	if desc.Format == backend.TextureFormatUndefined {
		return nil, fmt.Errorf("texture %q: format is undefined", desc.Label)
	}

	t := &texture{
		resource: resource{owner: b, label: desc.Label},
		width:    desc.Width,
		height:   desc.Height,
		format:   desc.Format,
		usage:    desc.Usage,
	}
	texels := int(desc.Width) * int(desc.Height)
	if desc.Format.IsDepth() {
		t.depth = make([]float32, texels)
	} else {
		t.data = make([]byte, texels*int(desc.Format.BytesPerPixel()))
	}
	return t, nil
}

func (b *softwareBackend) WriteTexture(tex backend.Texture, data []byte) error {
	st, ok := tex.(*texture)
	if !ok {
		return fmt.Errorf("texture is not a software texture: %w", common.ErrBackendMismatch)
	}
	if err := st.check(b, "texture"); err != nil {
		return err
	}
	if st.format.IsDepth() {
		return fmt.Errorf("texture %q: depth textures cannot be written from the host", st.label)
	}
	if len(data) != len(st.data) {
		return fmt.Errorf("texture %q expects %d bytes, got %d: %w", st.label, len(st.data), len(data), common.ErrTextureDataMismatch)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	copy(st.data, data)
	return nil
}

func (b *softwareBackend) CreateSampler(desc backend.SamplerDescriptor) (backend.Sampler, error) {
	return &sampler{resource: resource{owner: b, label: desc.Label}, desc: desc}, nil
}

func (b *softwareBackend) CreateBindGroupLayout(desc backend.BindGroupLayoutDescriptor) (backend.BindGroupLayout, error) {
	seen := make(map[uint32]bool, len(desc.Entries))
	for _, e := range desc.Entries {
		if seen[e.Binding] {
			return nil, fmt.Errorf("layout %q: binding %d declared twice: %w", desc.Label, e.Binding, common.ErrResourceBindingMismatch)
		}
		seen[e.Binding] = true
	}

	l := &bindGroupLayout{
		resource: resource{owner: b, label: desc.Label},
		entries:  make([]backend.BindGroupLayoutEntry, len(desc.Entries)),
	}
	copy(l.entries, desc.Entries)
	return l, nil
}

func (b *softwareBackend) CreateBindGroup(desc backend.BindGroupDescriptor) (backend.BindGroup, error) {
	layout, ok := desc.Layout.(*bindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("group %q: layout is not a software layout: %w", desc.Label, common.ErrBackendMismatch)
	}
	if err := layout.check(b, "layout"); err != nil {
		return nil, err
	}
	if len(desc.Entries) != len(layout.entries) {
		return nil, fmt.Errorf("group %q: layout has %d entries, got %d: %w",
			desc.Label, len(layout.entries), len(desc.Entries), common.ErrResourceBindingMismatch)
	}

	for i, want := range layout.entries {
		got := desc.Entries[i]
		if got.Binding != want.Binding || got.Kind() != want.Kind {
			return nil, fmt.Errorf("group %q: entry %d is %s at binding %d, layout expects %s at binding %d: %w",
				desc.Label, i, got.Kind(), got.Binding, want.Kind, want.Binding, common.ErrResourceBindingMismatch)
		}
		if err := b.checkEntry(got); err != nil {
			return nil, fmt.Errorf("group %q: %w", desc.Label, err)
		}
	}

	g := &bindGroup{
		resource: resource{owner: b, label: desc.Label},
		layout:   layout,
		entries:  make([]backend.BindGroupEntry, len(desc.Entries)),
	}
	copy(g.entries, desc.Entries)
	return g, nil
}

// checkEntry verifies the bound resource belongs to this backend.
func (b *softwareBackend) checkEntry(e backend.BindGroupEntry) error {
	switch e.Kind() {
	case backend.BindingKindTexture:
		v, ok := e.TextureView.(*textureView)
		if !ok {
			return common.ErrBackendMismatch
		}
		return v.check(b, "texture view")
	case backend.BindingKindSampler:
		s, ok := e.Sampler.(*sampler)
		if !ok {
			return common.ErrBackendMismatch
		}
		return s.check(b, "sampler")
	default:
		buf, ok := e.Buffer.(*buffer)
		if !ok {
			return fmt.Errorf("binding %d has no buffer: %w", e.Binding, common.ErrResourceBindingMismatch)
		}
		if err := buf.check(b, "buffer"); err != nil {
			return err
		}
		if !rangeWithin(e.Offset, e.Size, buf.Size()) {
			return fmt.Errorf("binding %d range exceeds buffer %q: %w", e.Binding, buf.label, common.ErrBufferSizeMismatch)
		}
		return nil
	}
}

func (b *softwareBackend) CreateRenderPipeline(desc backend.RenderPipelineDescriptor) (backend.RenderPipeline, error) {
	if desc.VertexEntryPoint == "" {
		return nil, fmt.Errorf("pipeline %q: vertex entry point is required: %w", desc.Label, common.ErrShaderInvalid)
	}
	if uint32(len(desc.BindGroupLayouts)) > b.maxBindGroups {
		return nil, fmt.Errorf("pipeline %q: %d bind groups exceed the device limit of %d", desc.Label, len(desc.BindGroupLayouts), b.maxBindGroups)
	}
	for i, l := range desc.BindGroupLayouts {
		sl, ok := l.(*bindGroupLayout)
		if !ok {
			return nil, fmt.Errorf("pipeline %q: group layout %d: %w", desc.Label, i, common.ErrBackendMismatch)
		}
		if err := sl.check(b, "layout"); err != nil {
			return nil, err
		}
	}
	switch desc.Primitive.Topology {
	case backend.PrimitiveTopologyTriangleList, backend.PrimitiveTopologyTriangleStrip:
	default:
		return nil, fmt.Errorf("pipeline %q: topology %d is not supported by the software rasterizer", desc.Label, desc.Primitive.Topology)
	}

	return &renderPipeline{resource: resource{owner: b, label: desc.Label}, desc: desc}, nil
}

func (b *softwareBackend) CreateSurface(target backend.SurfaceTarget) (backend.Surface, error) {
	if target == nil {
		return nil, fmt.Errorf("surface target is nil: %w", common.ErrSurfaceConfigurationInvalid)
	}
	return &surface{resource: resource{owner: b, label: "software surface"}}, nil
}

func (b *softwareBackend) CreateCommandEncoder(label string) (backend.CommandEncoder, error) {
	if b.released {
		return nil, fmt.Errorf("backend %q has been released: %w", b.label, common.ErrDeviceUnavailable)
	}
	return &commandEncoder{owner: b, label: label}, nil
}

func (b *softwareBackend) Submit(buffers ...backend.CommandBuffer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, cb := range buffers {
		scb, ok := cb.(*commandBuffer)
		if !ok || scb.owner != b {
			return fmt.Errorf("command buffer: %w", common.ErrBackendMismatch)
		}
		if scb.submitted {
			return fmt.Errorf("command buffer %q was already submitted", scb.label)
		}
		scb.submitted = true
		for _, p := range scb.passes {
			if err := b.execute(p); err != nil {
				return fmt.Errorf("command buffer %q: %w", scb.label, err)
			}
		}
	}
	return nil
}

func (b *softwareBackend) ReadBuffer(buf backend.Buffer) ([]byte, error) {
	sb, ok := buf.(*buffer)
	if !ok {
		return nil, common.ErrBackendMismatch
	}
	if err := sb.check(b, "buffer"); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, len(sb.data))
	copy(out, sb.data)
	return out, nil
}

func (b *softwareBackend) ReadTexture(tex backend.Texture) ([]byte, error) {
	st, ok := tex.(*texture)
	if !ok {
		return nil, common.ErrBackendMismatch
	}
	if err := st.check(b, "texture"); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if st.format.IsDepth() {
		return common.SliceToBytes(append([]float32(nil), st.depth...)), nil
	}
	out := make([]byte, len(st.data))
	copy(out, st.data)
	return out, nil
}

func (b *softwareBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return
	}
	b.released = true
	if b.pool != nil {
		b.pool.Stop()
		b.pool = nil
	}
	common.Logger().Debug("software backend released", "label", b.label)
}
