package texture

import "github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"

// SamplerBuilderOption is a functional option used to configure a Sampler during construction.
type SamplerBuilderOption func(*sampler)

// WithSamplerLabel sets the debug label of the sampler.
func WithSamplerLabel(label string) SamplerBuilderOption {
	return func(s *sampler) {
		s.desc.Label = label
	}
}

// WithAddressMode sets how coordinates outside [0, 1] are resolved on each axis.
//
// Parameters:
//   - u: the mode along the u axis
//   - v: the mode along the v axis
//   - w: the mode along the w axis
//
// Returns:
//   - SamplerBuilderOption: a function that sets the address modes for this sampler
func WithAddressMode(u, v, w backend.AddressMode) SamplerBuilderOption {
	return func(s *sampler) {
		s.desc.AddressModeU = u
		s.desc.AddressModeV = v
		s.desc.AddressModeW = w
	}
}

// WithFilter sets the magnification, minification and mipmap filters.
//
// Parameters:
//   - mag: the magnification filter
//   - minify: the minification filter
//   - mip: the filter between mip levels
//
// Returns:
//   - SamplerBuilderOption: a function that sets the filters for this sampler
func WithFilter(mag, minify, mip backend.FilterMode) SamplerBuilderOption {
	return func(s *sampler) {
		s.desc.MagFilter = mag
		s.desc.MinFilter = minify
		s.desc.MipmapFilter = mip
	}
}

// WithLodClamp sets the range of mip levels the sampler may read.
//
// Parameters:
//   - lodMin: the lowest level of detail
//   - lodMax: the highest level of detail
//
// Returns:
//   - SamplerBuilderOption: a function that sets the clamp for this sampler
func WithLodClamp(lodMin, lodMax float32) SamplerBuilderOption {
	return func(s *sampler) {
		s.desc.LodMinClamp = lodMin
		s.desc.LodMaxClamp = lodMax
	}
}

// WithCompare makes the sampler a comparison sampler.
func WithCompare(compare backend.CompareFunction) SamplerBuilderOption {
	return func(s *sampler) {
		s.desc.Compare = compare
	}
}

// WithMaxAnisotropy sets the maximum anisotropy. Values below 1 are raised to 1.
func WithMaxAnisotropy(n uint16) SamplerBuilderOption {
	return func(s *sampler) {
		s.desc.MaxAnisotropy = max(n, 1)
	}
}
