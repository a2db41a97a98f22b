package wgpu_backend

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// driver opens wgpu-native backends. It registers itself on import.
type driver struct{}

func init() {
	backend.Register(driver{})
}

func (driver) Type() backend.BackendType {
	return backend.BackendTypeWGPU
}

func (driver) Open(opts backend.Options) (backend.Backend, error) {
	return newWGPUBackend(opts)
}

// wgpuBackend implements backend.Backend over wgpu-native.
type wgpuBackend struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	label    string
	fallback bool
	released bool
}

var _ backend.Backend = &wgpuBackend{}

// newWGPUBackend creates an instance, requests an adapter and opens a device with the requested limits.
//
// Parameters:
//   - opts: the backend options
//
// Returns:
//   - *wgpuBackend: the opened backend
//   - error: error wrapping common.ErrDeviceUnavailable if no adapter or device could be acquired
func newWGPUBackend(opts backend.Options) (*wgpuBackend, error) {
	runtime.LockOSThread()
	b := &wgpuBackend{
		mu:       &sync.Mutex{},
		instance: wgpu.CreateInstance(nil),
		label:    opts.Label,
		fallback: opts.ForceFallbackAdapter,
	}

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: opts.ForceFallbackAdapter,
	})
	if err != nil {
		b.instance.Release()
		return nil, fmt.Errorf("failed to request adapter: %v: %w", err, common.ErrDeviceUnavailable)
	}
	b.adapter = a

	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = common.Coalesce(opts.MaxBindGroups, limits.MaxBindGroups)

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: opts.Label,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		a.Release()
		b.instance.Release()
		return nil, fmt.Errorf("failed to request device: %v: %w", err, common.ErrDeviceUnavailable)
	}
	b.device = d
	b.queue = d.GetQueue()

	return b, nil
}

func (b *wgpuBackend) Type() backend.BackendType {
	return backend.BackendTypeWGPU
}

func (b *wgpuBackend) AdapterInfo() string {
	if b.fallback {
		return "wgpu (fallback adapter)"
	}
	return "wgpu"
}

func (b *wgpuBackend) CreateBuffer(desc backend.BufferDescriptor) (backend.Buffer, error) {
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

	usage := toBufferUsage(desc.Usage)
	var (
		buf *wgpu.Buffer
		err error
	)
	// CreateBufferInit sizes the buffer from its contents, so padded buffers are written after creation.
	if len(desc.Contents) > 0 && uint64(len(desc.Contents)) == size {
		buf, err = b.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    desc.Label,
			Contents: desc.Contents,
			Usage:    usage,
		})
	} else {
		buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            desc.Label,
			Size:             common.AlignUp(size, 4),
			Usage:            usage | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err == nil && len(desc.Contents) > 0 {
			err = b.queue.WriteBuffer(buf, 0, padTo4(desc.Contents))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer %q: %w", desc.Label, err)
	}

	return &buffer{
		handle: handle{owner: b, label: desc.Label, release: buf.Release},
		buf:    buf,
		size:   size,
		usage:  desc.Usage,
	}, nil
}

// padTo4 pads data to the 4 byte multiple queue writes require.
func padTo4(data []byte) []byte {
	if len(data)%4 == 0 {
		return data
	}
	out := make([]byte, common.AlignUp(uint64(len(data)), 4))
	copy(out, data)
	return out
}

func (b *wgpuBackend) WriteBuffer(buf backend.Buffer, offset uint64, data []byte) error {
	wb, ok := buf.(*buffer)
	if !ok {
		return fmt.Errorf("buffer is not a wgpu buffer: %w", common.ErrBackendMismatch)
	}
	if err := wb.check(b, "buffer"); err != nil {
		return err
	}
	if err := backend.CheckWrite(offset, uint64(len(data)), wb.size); err != nil {
		return fmt.Errorf("buffer %q: %w", wb.label, err)
	}
	if len(data) == 0 {
		return nil
	}

	// An unaligned tail only reaches the end of the buffer, so padding lands in the allocation slack.
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue.WriteBuffer(wb.buf, offset, padTo4(data))
}

func (b *wgpuBackend) CreateTexture(desc backend.TextureDescriptor) (backend.Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("texture %q: dimensions %dx%d must be non-zero", desc.Label, desc.Width, desc.Height)
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label,
		Usage:     toTextureUsage(desc.Usage),
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        toTextureFormat(desc.Format),
		MipLevelCount: common.Coalesce(desc.MipLevelCount, 1),
		SampleCount:   common.Coalesce(desc.SampleCount, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %q: %w", desc.Label, err)
	}

	return &texture{
		handle: handle{owner: b, label: desc.Label, release: tex.Release},
		tex:    tex,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		usage:  desc.Usage,
	}, nil
}

func (b *wgpuBackend) WriteTexture(tex backend.Texture, data []byte) error {
	wt, ok := tex.(*texture)
	if !ok {
		return fmt.Errorf("texture is not a wgpu texture: %w", common.ErrBackendMismatch)
	}
	if err := wt.check(b, "texture"); err != nil {
		return err
	}
	bpp := wt.format.BytesPerPixel()
	if want := int(wt.width * wt.height * bpp); len(data) != want {
		return fmt.Errorf("texture %q expects %d bytes, got %d: %w", wt.label, want, len(data), common.ErrTextureDataMismatch)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  wt.tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  wt.width * bpp,
			RowsPerImage: wt.height,
		},
		&wgpu.Extent3D{
			Width:              wt.width,
			Height:             wt.height,
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

func (b *wgpuBackend) CreateSampler(desc backend.SamplerDescriptor) (backend.Sampler, error) {
	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  toAddressMode(desc.AddressModeU),
		AddressModeV:  toAddressMode(desc.AddressModeV),
		AddressModeW:  toAddressMode(desc.AddressModeW),
		MagFilter:     toFilterMode(desc.MagFilter),
		MinFilter:     toFilterMode(desc.MinFilter),
		MipmapFilter:  toMipmapFilterMode(desc.MipmapFilter),
		LodMinClamp:   desc.LodMinClamp,
		LodMaxClamp:   common.Coalesce(desc.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(desc.MaxAnisotropy, 1),
		Compare:       toCompareFunction(desc.Compare),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler %q: %w", desc.Label, err)
	}
	return &sampler{handle: handle{owner: b, label: desc.Label, release: samp.Release}, sampler: samp}, nil
}

func (b *wgpuBackend) CreateBindGroupLayout(desc backend.BindGroupLayoutDescriptor) (backend.BindGroupLayout, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entries = append(entries, toBindGroupLayoutEntry(e))
	}

	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group layout %q: %v: %w", desc.Label, err, common.ErrResourceBindingMismatch)
	}

	l := &bindGroupLayout{
		handle:  handle{owner: b, label: desc.Label, release: layout.Release},
		layout:  layout,
		entries: make([]backend.BindGroupLayoutEntry, len(desc.Entries)),
	}
	copy(l.entries, desc.Entries)
	return l, nil
}

func (b *wgpuBackend) CreateBindGroup(desc backend.BindGroupDescriptor) (backend.BindGroup, error) {
	layout, ok := desc.Layout.(*bindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("group %q: layout is not a wgpu layout: %w", desc.Label, common.ErrBackendMismatch)
	}
	if err := layout.check(b, "layout"); err != nil {
		return nil, err
	}
	if len(desc.Entries) != len(layout.entries) {
		return nil, fmt.Errorf("group %q: layout has %d entries, got %d: %w",
			desc.Label, len(layout.entries), len(desc.Entries), common.ErrResourceBindingMismatch)
	}

	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		want := layout.entries[i]
		if e.Binding != want.Binding || e.Kind() != want.Kind {
			return nil, fmt.Errorf("group %q: entry %d is %s at binding %d, layout expects %s at binding %d: %w",
				desc.Label, i, e.Kind(), e.Binding, want.Kind, want.Binding, common.ErrResourceBindingMismatch)
		}

		switch e.Kind() {
		case backend.BindingKindTexture:
			v, ok := e.TextureView.(*textureView)
			if !ok || v.owner != b {
				return nil, fmt.Errorf("group %q binding %d: %w", desc.Label, e.Binding, common.ErrBackendMismatch)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: e.Binding, TextureView: v.view}
		case backend.BindingKindSampler:
			s, ok := e.Sampler.(*sampler)
			if !ok || s.owner != b {
				return nil, fmt.Errorf("group %q binding %d: %w", desc.Label, e.Binding, common.ErrBackendMismatch)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: e.Binding, Sampler: s.sampler}
		default:
			buf, ok := e.Buffer.(*buffer)
			if !ok {
				return nil, fmt.Errorf("group %q binding %d has no buffer: %w", desc.Label, e.Binding, common.ErrResourceBindingMismatch)
			}
			if buf.owner != b {
				return nil, fmt.Errorf("group %q binding %d: %w", desc.Label, e.Binding, common.ErrBackendMismatch)
			}
			size := e.Size
			if size == 0 {
				size = wgpu.WholeSize
			}
			entries[i] = wgpu.BindGroupEntry{Binding: e.Binding, Buffer: buf.buf, Offset: e.Offset, Size: size}
		}
	}

	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout.layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group %q: %v: %w", desc.Label, err, common.ErrResourceBindingMismatch)
	}
	return &bindGroup{
		handle: handle{owner: b, label: desc.Label, release: group.Release},
		group:  group,
		layout: layout,
	}, nil
}

func (b *wgpuBackend) CreateRenderPipeline(desc backend.RenderPipelineDescriptor) (backend.RenderPipeline, error) {
	if desc.Multiview > 1 {
		return nil, fmt.Errorf("pipeline %q: multiview is not supported by the wgpu binding", desc.Label)
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.ShaderSource,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %v: %w", desc.Label, err, common.ErrShaderInvalid)
	}
	defer module.Release()

	groupLayouts := make([]*wgpu.BindGroupLayout, len(desc.BindGroupLayouts))
	for i, l := range desc.BindGroupLayouts {
		wl, ok := l.(*bindGroupLayout)
		if !ok || wl.owner != b {
			return nil, fmt.Errorf("pipeline %q: group layout %d: %w", desc.Label, i, common.ErrBackendMismatch)
		}
		groupLayouts[i] = wl.layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: groupLayouts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline layout %q: %w", desc.Label, err)
	}
	defer pipelineLayout.Release()

	var fragment *wgpu.FragmentState
	if desc.FragmentEntryPoint != "" {
		fragment = &wgpu.FragmentState{
			Module:     module,
			EntryPoint: desc.FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{{
				Format:    toTextureFormat(desc.Target.Format),
				Blend:     toBlendState(desc.Target.Blend),
				WriteMask: toWriteMask(desc.Target.WriteMask),
			}},
		}
	}

	var depthStencil *wgpu.DepthStencilState
	if ds := desc.DepthStencil; ds != nil {
		depthStencil = &wgpu.DepthStencilState{
			Format:              toTextureFormat(ds.Format),
			DepthWriteEnabled:   ds.DepthWriteEnabled,
			DepthCompare:        toCompareFunction(common.Coalesce(ds.DepthCompare, backend.CompareFunctionLess)),
			DepthBias:           ds.DepthBias,
			DepthBiasSlopeScale: ds.DepthBiasSlope,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: desc.VertexEntryPoint,
			Buffers:    toVertexBufferLayouts(desc.VertexBuffers),
		},
		Fragment: fragment,
		Primitive: wgpu.PrimitiveState{
			Topology:  toTopology(desc.Primitive.Topology),
			FrontFace: toFrontFace(desc.Primitive.FrontFace),
			CullMode:  toCullMode(desc.Primitive.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: common.Coalesce(desc.Multisample.Count, 1),
			Mask:  common.Coalesce(desc.Multisample.Mask, 0xFFFFFFFF),
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create render pipeline %q: %v: %w", desc.Label, err, common.ErrShaderInvalid)
	}

	return &renderPipeline{
		handle:   handle{owner: b, label: desc.Label, release: created.Release},
		pipeline: created,
		desc:     desc,
	}, nil
}

func (b *wgpuBackend) CreateSurface(target backend.SurfaceTarget) (backend.Surface, error) {
	native, ok := target.(interface {
		SurfaceDescriptor() *wgpu.SurfaceDescriptor
	})
	if !ok {
		return nil, fmt.Errorf("surface target %T has no native window handle: %w", target, common.ErrSurfaceConfigurationInvalid)
	}
	desc := native.SurfaceDescriptor()
	if desc == nil {
		return nil, fmt.Errorf("surface target is not initialized: %w", common.ErrSurfaceConfigurationInvalid)
	}

	s := b.instance.CreateSurface(desc)
	return &surface{
		handle:  handle{owner: b, label: "wgpu surface", release: s.Release},
		surface: s,
	}, nil
}

func (b *wgpuBackend) CreateCommandEncoder(label string) (backend.CommandEncoder, error) {
	if b.released {
		return nil, fmt.Errorf("backend %q has been released: %w", b.label, common.ErrDeviceUnavailable)
	}
	enc, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder %q: %w", label, err)
	}
	return &commandEncoder{owner: b, label: label, encoder: enc}, nil
}

func (b *wgpuBackend) Submit(buffers ...backend.CommandBuffer) error {
	cmds := make([]*wgpu.CommandBuffer, 0, len(buffers))
	for _, cb := range buffers {
		wcb, ok := cb.(*commandBuffer)
		if !ok || wcb.owner != b {
			return fmt.Errorf("command buffer: %w", common.ErrBackendMismatch)
		}
		cmds = append(cmds, wcb.buffer)
	}
	if len(cmds) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue.Submit(cmds...)
	return nil
}

func (b *wgpuBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return
	}
	b.released = true
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.instance.Release()
}
