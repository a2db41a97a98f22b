package camera

import (
	"encoding/binary"
	"math"
)

// CameraUniformSource is the WGSL declaration matching GPUCameraUniform. Shaders paste it
// and bind a var<uniform> of type CameraUniform.
const CameraUniformSource = `
struct CameraUniform {
    view_proj: mat4x4<f32>,
    position: vec3<f32>,
}
`

// GPUCameraUniformSize is the size of GPUCameraUniform in bytes.
const GPUCameraUniformSize = 80

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Size: 80 bytes.
type GPUCameraUniform struct {
	ViewProj       [16]float32 // offset  0: mat4x4<f32>
	CameraPosition [3]float32  // offset 64: vec3<f32>
	_              float32     // offset 76
}

// Marshal serializes the uniform into little-endian bytes for upload.
//
// Returns:
//   - []byte: GPUCameraUniformSize bytes
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, GPUCameraUniformSize)
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewProj[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.CameraPosition[i]))
	}
	return buf
}
