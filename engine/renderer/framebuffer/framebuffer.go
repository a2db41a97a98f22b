// Package framebuffer decouples the target an application draws into from the swapchain.
//
// A FrameBuffer owns an offscreen colour texture sized to the surface. Each frame the
// application records clears and draws into it through a Frame, and Present composites the
// texture onto the current surface image with a fixed full-screen triangle before presenting.
// The surface can be resized or reconfigured without touching any application pipeline that
// targets the FrameBuffer, because the offscreen format never changes.
package framebuffer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/graphics"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/group"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/texture"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/uniform"
)

// compositeSource samples the offscreen texture across a single oversized triangle. The
// dimensions uniform keeps linear filtering from reading past the outermost texel centres.
const compositeSource = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@group(0) @binding(0) var t_frame: texture_2d<f32>;
@group(0) @binding(1) var s_frame: sampler;
@group(1) @binding(0) var<uniform> dims: vec2<f32>;

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOutput {
    let uv = vec2<f32>(f32((index << 1u) & 2u), f32(index & 2u));
    var out: VertexOutput;
    out.position = vec4<f32>(uv.x * 2.0 - 1.0, 1.0 - uv.y * 2.0, 0.0, 1.0);
    out.uv = uv;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let half_texel = vec2<f32>(0.5, 0.5) / dims;
    let uv = clamp(in.uv, half_texel, vec2<f32>(1.0, 1.0) - half_texel);
    return textureSample(t_frame, s_frame, uv);
}
`

// ErrFrameInFlight is returned when an operation needs the FrameBuffer idle but a Frame is open.
var ErrFrameInFlight = errors.New("a frame is in flight")

// FrameBuffer is an offscreen colour target composited onto a Surface.
type FrameBuffer interface {
	// Format returns the offscreen texture format. Pipelines drawing into frames of this
	// FrameBuffer must target it; the FrameBuffer itself satisfies pipeline.ColorTarget.
	Format() backend.TextureFormat

	// Width returns the offscreen texture width in pixels.
	Width() uint32

	// Height returns the offscreen texture height in pixels.
	Height() uint32

	// Texture returns the current offscreen texture. It is replaced on Resize.
	Texture() backend.Texture

	// Dimensions returns the uniform buffer holding [width, height] as two f32 values.
	Dimensions() uniform.UniformBuffer

	// Pipeline returns the compositing pipeline.
	Pipeline() pipeline.Pipeline

	// Frame begins a new frame. Only one frame may be open at a time.
	//
	// Returns:
	//   - Frame: the frame recording into the offscreen texture
	//   - error: error wrapping ErrFrameInFlight if the previous frame was neither presented nor released
	Frame() (Frame, error)

	// Present composites the frame's offscreen texture onto the current surface image, submits
	// the frame's command buffer and presents. The frame is released afterwards either way.
	//
	// Parameters:
	//   - frame: the frame returned by Frame
	//
	// Returns:
	//   - error: error if the frame is not the open frame of this FrameBuffer or a GPU step fails
	Present(frame Frame) error

	// Resize recreates the offscreen texture and its binding at the new size and rewrites the
	// dimensions uniform. A zero dimension or an unchanged size is a no-op. It must be called
	// before the next Present after a surface resize.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: error wrapping ErrFrameInFlight if a frame is open, or the backend error
	Resize(width, height uint32) error

	// Release releases the offscreen texture, the compositing state and any open frame.
	Release()
}

type frameBuffer struct {
	ctx     graphics.GraphicsContext
	surface graphics.Surface

	label       string
	format      backend.TextureFormat
	clear       backend.Color
	samplerOpts []texture.SamplerBuilderOption

	width, height uint32
	tex           backend.Texture
	view          backend.TextureView

	sampler       texture.Sampler
	textureLayout group.Layout
	textureGroup  group.Group
	dims          uniform.UniformBuffer
	dimsLayout    group.Layout
	dimsGroup     group.Group
	composite     pipeline.Pipeline

	current *frame
}

var _ FrameBuffer = &frameBuffer{}
var _ pipeline.ColorTarget = &frameBuffer{}

// NewFrameBuffer creates a FrameBuffer sized to the surface, together with its compositing
// pipeline targeting the surface format.
//
// Parameters:
//   - ctx: the graphics context
//   - surface: the surface frames are presented to
//   - opts: framebuffer options, see the With* functions in this package
//
// Returns:
//   - FrameBuffer: the framebuffer
//   - error: error if any GPU object could not be created
func NewFrameBuffer(ctx graphics.GraphicsContext, surface graphics.Surface, opts ...FrameBufferBuilderOption) (FrameBuffer, error) {
	if surface == nil {
		return nil, fmt.Errorf("framebuffer needs a surface: %w", common.ErrSurfaceConfigurationInvalid)
	}
	fb := &frameBuffer{
		ctx:     ctx,
		surface: surface,
		label:   "framebuffer",
		format:  backend.TextureFormatRGBA8UnormSrgb,
		clear:   backend.Color{A: 1},
		samplerOpts: []texture.SamplerBuilderOption{
			texture.WithSamplerLabel("framebuffer sampler"),
			texture.WithAddressMode(backend.AddressModeClampToEdge, backend.AddressModeClampToEdge, backend.AddressModeClampToEdge),
			texture.WithFilter(backend.FilterModeLinear, backend.FilterModeNearest, backend.FilterModeNearest),
		},
	}
	for _, opt := range opts {
		opt(fb)
	}
	if fb.format.IsDepth() {
		return nil, fmt.Errorf("framebuffer %q: offscreen format %s is a depth format: %w", fb.label, fb.format, common.ErrSurfaceConfigurationInvalid)
	}

	if err := fb.build(); err != nil {
		fb.Release()
		return nil, err
	}
	common.Logger().Debug("framebuffer created",
		"label", fb.label,
		"width", fb.width,
		"height", fb.height,
		"format", fb.format.String(),
		"surface_format", surface.Format().String(),
	)
	return fb, nil
}

// build creates everything that survives a resize, then the size dependent state.
func (fb *frameBuffer) build() error {
	var err error
	if fb.sampler, err = texture.NewSamplerExt(fb.ctx, fb.samplerOpts...); err != nil {
		return err
	}
	if fb.textureLayout, err = group.NewLayout(fb.ctx, fb.label+" texture",
		group.TextureEntry(backend.ShaderStageFragment),
		group.SamplerEntry(backend.ShaderStageFragment),
	); err != nil {
		return err
	}
	if fb.dimsLayout, err = group.NewLayout(fb.ctx, fb.label+" dimensions",
		group.BufferEntry(backend.ShaderStageFragment),
	); err != nil {
		return err
	}

	width, height := fb.surface.Width(), fb.surface.Height()
	if fb.dims, err = uniform.NewUniformBuffer(fb.ctx, fb.label+" dimensions", dimensions(width, height)); err != nil {
		return err
	}
	if fb.dimsGroup, err = group.NewGroup(fb.ctx, fb.label+" dimensions", fb.dimsLayout, fb.dims.Binding()); err != nil {
		return err
	}

	sh, err := shader.NewShader(fb.label+" composite", compositeSource)
	if err != nil {
		return err
	}
	if fb.composite, err = pipeline.NewPipelineExt(fb.ctx, fb.surface, sh,
		[]backend.VertexBufferLayout{},
		[]group.Layout{fb.textureLayout, fb.dimsLayout},
		pipeline.WithLabel(fb.label+" composite"),
		pipeline.WithCullMode(backend.CullModeNone),
		pipeline.WithBlendMode(backend.BlendModeReplace),
	); err != nil {
		return err
	}

	return fb.recreateTarget(width, height)
}

// recreateTarget replaces the offscreen texture, its view and the texture group. The old
// objects are released only after every new one exists.
func (fb *frameBuffer) recreateTarget(width, height uint32) error {
	tex, err := fb.ctx.Backend().CreateTexture(backend.TextureDescriptor{
		Label:         fb.label + " texture",
		Width:         width,
		Height:        height,
		Format:        fb.format,
		Usage:         backend.TextureUsageRenderAttachment | backend.TextureUsageTextureBinding,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("failed to create framebuffer texture: %w", err)
	}
	view, err := tex.CreateView()
	if err != nil {
		tex.Release()
		return fmt.Errorf("failed to create framebuffer view: %w", err)
	}
	g, err := group.NewGroup(fb.ctx, fb.label+" texture", fb.textureLayout, group.TextureBinding(view), fb.sampler.Binding())
	if err != nil {
		view.Release()
		tex.Release()
		return err
	}

	fb.releaseTarget()
	fb.tex, fb.view, fb.textureGroup = tex, view, g
	fb.width, fb.height = width, height
	return nil
}

func (fb *frameBuffer) releaseTarget() {
	if fb.textureGroup != nil {
		fb.textureGroup.Release()
	}
	if fb.view != nil {
		fb.view.Release()
	}
	if fb.tex != nil {
		fb.tex.Release()
	}
	fb.tex, fb.view, fb.textureGroup = nil, nil, nil
}

func dimensions(width, height uint32) []byte {
	return common.SliceToBytes([]float32{float32(width), float32(height)})
}

func (fb *frameBuffer) Format() backend.TextureFormat {
	return fb.format
}

func (fb *frameBuffer) Width() uint32 {
	return fb.width
}

func (fb *frameBuffer) Height() uint32 {
	return fb.height
}

func (fb *frameBuffer) Texture() backend.Texture {
	return fb.tex
}

func (fb *frameBuffer) Dimensions() uniform.UniformBuffer {
	return fb.dims
}

func (fb *frameBuffer) Pipeline() pipeline.Pipeline {
	return fb.composite
}

func (fb *frameBuffer) Frame() (Frame, error) {
	if fb.current != nil {
		return nil, fmt.Errorf("framebuffer %q: %w", fb.label, ErrFrameInFlight)
	}
	encoder, err := fb.ctx.Backend().CreateCommandEncoder(fb.label + " frame")
	if err != nil {
		return nil, fmt.Errorf("failed to begin frame: %w", err)
	}
	fb.current = &frame{fb: fb, encoder: encoder, view: fb.view}
	return fb.current, nil
}

func (fb *frameBuffer) Present(f Frame) error {
	fr, ok := f.(*frame)
	if !ok || fr == nil || fr.fb != fb || fr != fb.current {
		return fmt.Errorf("framebuffer %q: frame is not the open frame of this framebuffer", fb.label)
	}
	defer fr.Release()

	img, err := fb.surface.CurrentTexture()
	if err != nil {
		return fmt.Errorf("failed to acquire surface texture: %w", err)
	}
	view, err := img.CreateView()
	if err != nil {
		return fmt.Errorf("failed to create surface view: %w", err)
	}
	defer view.Release()

	pass, err := fr.encoder.BeginRenderPass(backend.RenderPassDescriptor{
		Label:      fb.label + " composite pass",
		View:       view,
		LoadOp:     backend.LoadOpClear,
		ClearColor: fb.clear,
	})
	if err != nil {
		return fmt.Errorf("failed to begin composite pass: %w", err)
	}
	pass.SetPipeline(fb.composite.Raw())
	pass.SetBindGroup(0, fb.textureGroup.Raw())
	pass.SetBindGroup(1, fb.dimsGroup.Raw())
	pass.Draw(3, 1, 0, 0)
	if err := pass.End(); err != nil {
		return fmt.Errorf("composite pass: %w", err)
	}

	cmd, err := fr.encoder.Finish()
	if err != nil {
		return fmt.Errorf("failed to finish frame: %w", err)
	}
	defer cmd.Release()
	if err := fb.ctx.Submit(cmd); err != nil {
		return fmt.Errorf("failed to submit frame: %w", err)
	}
	if err := fb.surface.Present(); err != nil {
		return fmt.Errorf("failed to present surface: %w", err)
	}
	return nil
}

func (fb *frameBuffer) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	if width == fb.width && height == fb.height {
		return nil
	}
	if fb.current != nil {
		return fmt.Errorf("framebuffer %q cannot resize: %w", fb.label, ErrFrameInFlight)
	}

	if err := fb.recreateTarget(width, height); err != nil {
		return err
	}
	if err := fb.dims.Update(dimensions(width, height), 0); err != nil {
		return err
	}
	common.Logger().Debug("framebuffer resized", "label", fb.label, "width", width, "height", height)
	return nil
}

func (fb *frameBuffer) Release() {
	if fb.current != nil {
		fb.current.Release()
	}
	fb.releaseTarget()
	if fb.composite != nil {
		fb.composite.Release()
	}
	if fb.dimsGroup != nil {
		fb.dimsGroup.Release()
	}
	if fb.dims != nil {
		fb.dims.Release()
	}
	if fb.dimsLayout != nil {
		fb.dimsLayout.Release()
	}
	if fb.textureLayout != nil {
		fb.textureLayout.Release()
	}
	if fb.sampler != nil {
		fb.sampler.Release()
	}
	fb.composite, fb.dimsGroup, fb.dims, fb.dimsLayout, fb.textureLayout, fb.sampler = nil, nil, nil, nil, nil, nil
}
