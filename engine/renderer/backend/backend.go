package backend

// Backend is the device-level interface every rendering backend implements.
// A Backend owns one device and its queue. Resources created from a Backend must only be
// used with that same Backend.
type Backend interface {
	// Type returns the backend implementation type.
	//
	// Returns:
	//   - BackendType: the type of this backend
	Type() BackendType

	// AdapterInfo returns a human readable description of the adapter in use.
	//
	// Returns:
	//   - string: the adapter description
	AdapterInfo() string

	// CreateBuffer allocates a GPU buffer, optionally initialised with desc.Contents.
	//
	// Parameters:
	//   - desc: the buffer descriptor
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: error if the buffer could not be created
	CreateBuffer(desc BufferDescriptor) (Buffer, error)

	// WriteBuffer schedules a write of data into buf at offset. The write is ordered before
	// any command buffer submitted afterwards. Only the written bytes change; the range must
	// satisfy CheckWrite.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: the byte offset to write at
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: error if the write is out of range or unaligned, or the buffer belongs to another backend
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	// CreateTexture allocates a 2D texture.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - Texture: the created texture
	//   - error: error if the texture could not be created
	CreateTexture(desc TextureDescriptor) (Texture, error)

	// WriteTexture uploads tightly packed pixel data covering the whole of tex.
	//
	// Parameters:
	//   - tex: the destination texture
	//   - data: width*height*bytesPerPixel bytes
	//
	// Returns:
	//   - error: error if the data size does not match the texture
	WriteTexture(tex Texture, data []byte) error

	// CreateSampler creates a texture sampler.
	//
	// Parameters:
	//   - desc: the sampler descriptor
	//
	// Returns:
	//   - Sampler: the created sampler
	//   - error: error if the sampler could not be created
	CreateSampler(desc SamplerDescriptor) (Sampler, error)

	// CreateBindGroupLayout creates a bind group layout.
	//
	// Parameters:
	//   - desc: the layout descriptor
	//
	// Returns:
	//   - BindGroupLayout: the created layout
	//   - error: error if the layout could not be created
	CreateBindGroupLayout(desc BindGroupLayoutDescriptor) (BindGroupLayout, error)

	// CreateBindGroup binds concrete resources to a layout.
	//
	// Parameters:
	//   - desc: the bind group descriptor
	//
	// Returns:
	//   - BindGroup: the created bind group
	//   - error: error if the resources do not satisfy the layout
	CreateBindGroup(desc BindGroupDescriptor) (BindGroup, error)

	// CreateRenderPipeline compiles a render pipeline.
	//
	// Parameters:
	//   - desc: the pipeline descriptor
	//
	// Returns:
	//   - RenderPipeline: the compiled pipeline
	//   - error: error if compilation failed
	CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error)

	// CreateSurface creates a presentable surface for a native window target.
	//
	// Parameters:
	//   - target: the window or headless target the surface presents to
	//
	// Returns:
	//   - Surface: the unconfigured surface
	//   - error: error if the target is not supported by this backend
	CreateSurface(target SurfaceTarget) (Surface, error)

	// CreateCommandEncoder starts recording a new command buffer.
	//
	// Parameters:
	//   - label: a debug label
	//
	// Returns:
	//   - CommandEncoder: the encoder
	//   - error: error if the encoder could not be created
	CreateCommandEncoder(label string) (CommandEncoder, error)

	// Submit executes command buffers on the queue in order.
	//
	// Parameters:
	//   - buffers: the finished command buffers
	//
	// Returns:
	//   - error: error if a buffer belongs to another backend
	Submit(buffers ...CommandBuffer) error

	// Release destroys the device and every backend-level object.
	Release()
}

// Resource is implemented by every backend object.
type Resource interface {
	// Label returns the debug label given at creation.
	Label() string

	// Release frees the underlying object. Releasing twice is a no-op.
	Release()
}

// Buffer is a GPU buffer.
type Buffer interface {
	Resource
	Size() uint64
	Usage() BufferUsage
}

// Texture is a 2D GPU texture.
type Texture interface {
	Resource
	Width() uint32
	Height() uint32
	Format() TextureFormat
	Usage() TextureUsage

	// CreateView creates a view over the whole texture.
	//
	// Returns:
	//   - TextureView: the view
	//   - error: error if the view could not be created
	CreateView() (TextureView, error)
}

// TextureView is a view over a texture usable as a binding or render attachment.
type TextureView interface {
	Resource
	Texture() Texture
}

// Sampler is a texture sampler.
type Sampler interface {
	Resource
}

// BindGroupLayout is a compiled bind group layout.
type BindGroupLayout interface {
	Resource
	Entries() []BindGroupLayoutEntry
}

// BindGroup is a set of resources matching a BindGroupLayout.
type BindGroup interface {
	Resource
	Layout() BindGroupLayout
}

// RenderPipeline is a compiled render pipeline.
type RenderPipeline interface {
	Resource
	Descriptor() RenderPipelineDescriptor
}

// Surface is the presentable image chain of a window.
type Surface interface {
	Resource

	// Capabilities returns the formats and modes the surface supports on this device.
	Capabilities() SurfaceCapabilities

	// Configure (re)creates the swapchain.
	//
	// Parameters:
	//   - cfg: the configuration
	//
	// Returns:
	//   - error: error if the configuration is not supported
	Configure(cfg SurfaceConfiguration) error

	// CurrentTexture acquires the next image to render into.
	//
	// Returns:
	//   - Texture: the acquired image
	//   - error: error if the surface is unconfigured or the image is lost
	CurrentTexture() (Texture, error)

	// Present queues the acquired image for display.
	//
	// Returns:
	//   - error: error if no image has been acquired
	Present() error
}

// CommandEncoder records render passes into a command buffer.
type CommandEncoder interface {
	// BeginRenderPass starts a render pass. The returned pass must be ended before
	// another pass is begun or the encoder is finished.
	//
	// Parameters:
	//   - desc: the pass descriptor
	//
	// Returns:
	//   - RenderPass: the pass recorder
	//   - error: error if a pass is still open
	BeginRenderPass(desc RenderPassDescriptor) (RenderPass, error)

	// Finish closes the encoder and returns the recorded commands.
	//
	// Returns:
	//   - CommandBuffer: the recorded commands
	//   - error: error if a pass is still open
	Finish() (CommandBuffer, error)

	Release()
}

// RenderPass records draw state and draw calls inside one pass.
type RenderPass interface {
	SetPipeline(p RenderPipeline)
	SetBindGroup(index uint32, group BindGroup)
	SetVertexBuffer(slot uint32, buf Buffer, offset, size uint64)
	SetIndexBuffer(buf Buffer, format IndexFormat, offset, size uint64)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)

	// End closes the pass.
	//
	// Returns:
	//   - error: error if the pass was already ended
	End() error
}

// CommandBuffer is a finished, submittable recording.
type CommandBuffer interface {
	Release()
}

// Readback is optionally implemented by backends that can copy resource contents back to
// host memory synchronously.
type Readback interface {
	// ReadBuffer returns a copy of the buffer contents.
	ReadBuffer(buf Buffer) ([]byte, error)

	// ReadTexture returns a copy of the texture contents, tightly packed in its own format.
	ReadTexture(tex Texture) ([]byte, error)
}

// SurfaceTarget is anything a surface can present to. Windows satisfy it; backends that
// need a native handle type-assert for it.
type SurfaceTarget interface {
	Width() int
	Height() int
}
