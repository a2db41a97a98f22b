package texture

import (
	"fmt"

	"github.com/Carmen-Shannon/kopki-go/engine/graphics"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/group"
)

// Sampler is an immutable filtering and addressing configuration, independent of any texture.
type Sampler interface {
	// Descriptor returns the configuration the sampler was created with.
	Descriptor() backend.SamplerDescriptor

	// Binding returns the sampler as a resource group binding.
	//
	// Returns:
	//   - group.Binding: a sampler binding
	Binding() group.Binding

	// Raw returns the backend sampler.
	Raw() backend.Sampler

	// Release releases the backend sampler.
	Release()
}

type sampler struct {
	desc backend.SamplerDescriptor
	raw  backend.Sampler
}

var _ Sampler = &sampler{}

// NewSampler creates a sampler with repeat addressing and linear min, mag and mip filtering.
//
// Parameters:
//   - ctx: the graphics context
//
// Returns:
//   - Sampler: the sampler
//   - error: error if the backend rejects the sampler
func NewSampler(ctx graphics.GraphicsContext) (Sampler, error) {
	return NewSamplerExt(ctx)
}

// NewSamplerExt creates a sampler with every parameter exposed as an option. Options not given
// keep the defaults of NewSampler.
//
// Parameters:
//   - ctx: the graphics context
//   - opts: sampler options
//
// Returns:
//   - Sampler: the sampler
//   - error: error if the backend rejects the sampler
func NewSamplerExt(ctx graphics.GraphicsContext, opts ...SamplerBuilderOption) (Sampler, error) {
	s := &sampler{desc: backend.SamplerDescriptor{
		Label:         "sampler",
		AddressModeU:  backend.AddressModeRepeat,
		AddressModeV:  backend.AddressModeRepeat,
		AddressModeW:  backend.AddressModeRepeat,
		MagFilter:     backend.FilterModeLinear,
		MinFilter:     backend.FilterModeLinear,
		MipmapFilter:  backend.FilterModeLinear,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}}
	for _, opt := range opts {
		opt(s)
	}

	raw, err := ctx.Backend().CreateSampler(s.desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler %q: %w", s.desc.Label, err)
	}
	s.raw = raw
	return s, nil
}

func (s *sampler) Descriptor() backend.SamplerDescriptor {
	return s.desc
}

func (s *sampler) Binding() group.Binding {
	return group.SamplerBinding(s.raw)
}

func (s *sampler) Raw() backend.Sampler {
	return s.raw
}

func (s *sampler) Release() {
	s.raw.Release()
}
