package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// Mat4 is a 4x4 float32 matrix stored in column-major order, the layout WGSL expects for mat4x4<f32>.
// It is a pure value type used by applications to fill uniform buffers.
type Mat4 [16]float32

// Identity returns the 4x4 identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translation returns a matrix translating by (x, y, z).
func Translation(x, y, z float32) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// Scaling returns a matrix scaling by (x, y, z).
func Scaling(x, y, z float32) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = x, y, z
	return m
}

// RotationZ returns a counter-clockwise rotation around the Z axis.
//
// Parameters:
//   - radians: the rotation angle
//
// Returns:
//   - Mat4: the rotation matrix
func RotationZ(radians float32) Mat4 {
	s, c := math32.Sincos(radians)
	m := Identity()
	m[0], m[1] = c, s
	m[4], m[5] = -s, c
	return m
}

// RotationAxis returns a counter-clockwise rotation around an arbitrary axis. A zero axis
// yields the identity.
//
// Parameters:
//   - x, y, z: the rotation axis, normalized internally
//   - radians: the rotation angle
//
// Returns:
//   - Mat4: the rotation matrix
func RotationAxis(x, y, z, radians float32) Mat4 {
	l := math32.Sqrt(x*x + y*y + z*z)
	if l == 0 {
		return Identity()
	}
	x, y, z = x/l, y/l, z/l
	s, c := math32.Sincos(radians)
	t := 1 - c
	return Mat4{
		t*x*x + c, t*x*y + s*z, t*x*z - s*y, 0,
		t*x*y - s*z, t*y*y + c, t*y*z + s*x, 0,
		t*x*z + s*y, t*y*z - s*x, t*z*z + c, 0,
		0, 0, 0, 1,
	}
}

// LookAt returns a right-handed view matrix for an eye looking at target.
//
// Parameters:
//   - eye: the eye position
//   - target: the point looked at
//   - up: the up direction
//
// Returns:
//   - Mat4: the view matrix
func LookAt(eye, target, up [3]float32) Mat4 {
	f := normalize(sub(target, eye))
	s := normalize(cross(f, up))
	u := cross(s, f)
	return Mat4{
		s[0], u[0], -f[0], 0,
		s[1], u[1], -f[1], 0,
		s[2], u[2], -f[2], 0,
		-dot(s, eye), -dot(u, eye), dot(f, eye), 1,
	}
}

func sub(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func dot(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(v [3]float32) [3]float32 {
	l := math32.Sqrt(dot(v, v))
	if l == 0 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}

// Transform is a scale, then a rotation around an axis, then a translation.
type Transform struct {
	Translation [3]float32
	Axis        [3]float32
	Angle       float32
	Scale       [3]float32
}

// NewTransform returns a transform with unit scale, no rotation and no translation.
func NewTransform() Transform {
	return Transform{Axis: [3]float32{0, 0, 1}, Scale: [3]float32{1, 1, 1}}
}

// Matrix returns translation * rotation * scale.
func (t Transform) Matrix() Mat4 {
	return Translation(t.Translation[0], t.Translation[1], t.Translation[2]).
		Mul(RotationAxis(t.Axis[0], t.Axis[1], t.Axis[2], t.Angle)).
		Mul(Scaling(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// Ortho returns an orthographic projection mapping the box [left,right] x [bottom,top] x [near,far]
// onto WebGPU clip space, where depth spans [0, 1].
//
// Parameters:
//   - left, right: the horizontal extent
//   - bottom, top: the vertical extent; pass bottom > top for a y-down pixel space
//   - near, far: the depth extent
//
// Returns:
//   - Mat4: the projection matrix
func Ortho(left, right, bottom, top, near, far float32) Mat4 {
	m := Mat4{}
	m[0] = 2 / (right - left)
	m[5] = 2 / (top - bottom)
	m[10] = 1 / (near - far)
	m[12] = -(right + left) / (right - left)
	m[13] = -(top + bottom) / (top - bottom)
	m[14] = near / (near - far)
	m[15] = 1
	return m
}

// Perspective returns a right-handed perspective projection with WebGPU depth range [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := 1 / math32.Tan(fovY/2)
	m := Mat4{}
	m[0] = f / aspect
	m[5] = f
	m[10] = far / (near - far)
	m[11] = -1
	m[14] = (near * far) / (near - far)
	return m
}

// Mul returns m * n.
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * n[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// TransformPoint applies m to the point (x, y, z, 1) and performs the perspective divide.
//
// Parameters:
//   - x, y, z: the point to transform
//
// Returns:
//   - float32, float32, float32: the transformed point
func (m Mat4) TransformPoint(x, y, z float32) (float32, float32, float32) {
	tx := m[0]*x + m[4]*y + m[8]*z + m[12]
	ty := m[1]*x + m[5]*y + m[9]*z + m[13]
	tz := m[2]*x + m[6]*y + m[10]*z + m[14]
	tw := m[3]*x + m[7]*y + m[11]*z + m[15]
	if tw != 0 && tw != 1 {
		tx, ty, tz = tx/tw, ty/tw, tz/tw
	}
	return tx, ty, tz
}

// Bytes returns the matrix as raw bytes suitable for a uniform buffer write.
func (m *Mat4) Bytes() []byte {
	return StructToBytes(m)
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}
