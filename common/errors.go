package common

import "errors"

// ErrDeviceUnavailable means that no compatible backend, adapter or device could be acquired.
// Callers are expected to abort startup when context creation fails with this error.
var ErrDeviceUnavailable = errors.New("kopki: no compatible graphics device available")

// ErrSurfaceConfigurationInvalid means that a surface configuration was rejected,
// either because one of its dimensions is zero or because the requested format is unsupported.
var ErrSurfaceConfigurationInvalid = errors.New("kopki: invalid surface configuration")

// ErrResourceBindingMismatch means that the resources supplied to a resource group do not
// match its layout, either in count or in the kind of a binding slot.
var ErrResourceBindingMismatch = errors.New("kopki: resource binding mismatch")

// ErrCommandResourceMismatch means that a render command referenced a resource index that is
// out of range or resolves to a resource of the wrong kind. Only the offending render call is rejected.
var ErrCommandResourceMismatch = errors.New("kopki: command resource mismatch")

// ErrBufferSizeMismatch means that a buffer update did not fit the buffer it targets.
var ErrBufferSizeMismatch = errors.New("kopki: buffer size mismatch")

// ErrShaderInvalid means that shader source is missing a required entry point or failed validation.
var ErrShaderInvalid = errors.New("kopki: invalid shader")

// ErrTextureDataMismatch means that pixel data does not cover exactly width * height texels.
var ErrTextureDataMismatch = errors.New("kopki: texture data mismatch")

// ErrBackendMismatch means that a handle created by one backend was handed to another.
var ErrBackendMismatch = errors.New("kopki: handle belongs to a different backend")
