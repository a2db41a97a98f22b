// Package camera computes view and projection matrices and uploads them to a uniform buffer
// in the layout of CameraUniformSource.
package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/graphics"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/uniform"
)

// Projection selects how a camera maps view space to clip space.
type Projection int

const (
	// ProjectionPerspective uses the field of view, aspect ratio and clipping planes.
	ProjectionPerspective Projection = iota
	// ProjectionOrthographic uses the orthographic bounds and clipping planes.
	ProjectionOrthographic
)

type cameraImpl struct {
	mu *sync.Mutex

	projection Projection

	eye    [3]float32
	target [3]float32
	up     [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	left, right, bottom, top float32

	viewMatrix           common.Mat4
	projectionMatrix     common.Mat4
	viewProjectionMatrix common.Mat4
}

// Camera holds an eye, a target and a projection and keeps the derived matrices current.
// It is safe for concurrent use.
type Camera interface {
	// Projection returns the projection kind.
	Projection() Projection

	// Eye returns the camera position.
	Eye() [3]float32

	// Target returns the point the camera looks at.
	Target() [3]float32

	// Up returns the camera's up vector.
	Up() [3]float32

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// ViewMatrix returns the current view matrix.
	//
	// Returns:
	//   - common.Mat4: the view matrix
	ViewMatrix() common.Mat4

	// ProjectionMatrix returns the current projection matrix.
	//
	// Returns:
	//   - common.Mat4: the projection matrix
	ProjectionMatrix() common.Mat4

	// ViewProjectionMatrix returns projection * view.
	//
	// Returns:
	//   - common.Mat4: the combined view-projection matrix
	ViewProjectionMatrix() common.Mat4

	// SetEye moves the camera.
	SetEye(x, y, z float32)

	// SetTarget sets the point the camera looks at.
	SetTarget(x, y, z float32)

	// SetUp sets the camera's up vector.
	SetUp(x, y, z float32)

	// SetPerspective switches to a perspective projection.
	//
	// Parameters:
	//   - fov: vertical field of view in radians
	//   - aspect: width / height
	SetPerspective(fov, aspect float32)

	// SetOrthographic switches to an orthographic projection over the given bounds. Pass
	// bottom greater than top for a y-down pixel space.
	//
	// Parameters:
	//   - left, right: the horizontal extent
	//   - bottom, top: the vertical extent
	SetOrthographic(left, right, bottom, top float32)

	// SetAspect sets the aspect ratio used by the perspective projection, usually from a
	// resize callback.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// SetClip sets the near and far clipping planes.
	SetClip(near, far float32)

	// Uniform returns the GPU representation of the camera.
	//
	// Returns:
	//   - GPUCameraUniform: the view-projection matrix and eye position
	Uniform() GPUCameraUniform

	// Upload writes the camera uniform to the start of u.
	//
	// Parameters:
	//   - u: a buffer of at least GPUCameraUniformSize bytes
	//
	// Returns:
	//   - error: error wrapping common.ErrBufferSizeMismatch if u is too small
	Upload(u uniform.UniformBuffer) error
}

var _ Camera = &cameraImpl{}

// NewCamera creates a perspective camera at (0, 0, 1) looking at the origin, with a 45 degree
// field of view and clipping planes at 0.1 and 100.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		eye:    [3]float32{0, 0, 1},
		up:     [3]float32{0, 1, 0},
		fov:    45.0 * (math.Pi / 180.0),
		aspect: 1.0,
		near:   0.1,
		far:    100.0,
		left:   -1,
		right:  1,
		bottom: -1,
		top:    1,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

// NewUniformBuffer creates a uniform buffer holding the camera's current uniform.
//
// Parameters:
//   - ctx: the graphics context
//   - label: the debug label
//   - cam: the camera to upload
//
// Returns:
//   - uniform.UniformBuffer: the buffer, bindable with its Binding method
//   - error: error if the buffer cannot be created
func NewUniformBuffer(ctx graphics.GraphicsContext, label string, cam Camera) (uniform.UniformBuffer, error) {
	u := cam.Uniform()
	return uniform.NewUniformBuffer(ctx, label, u.Marshal())
}

func (c *cameraImpl) Projection() Projection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) Eye() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Target() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) SetEye(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye = [3]float32{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = [3]float32{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) SetUp(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = [3]float32{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) SetPerspective(fov, aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projection = ProjectionPerspective
	c.fov, c.aspect = fov, aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetOrthographic(left, right, bottom, top float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projection = ProjectionOrthographic
	c.left, c.right, c.bottom, c.top = left, right, bottom, top
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetClip(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near, c.far = near, far
	c.updateMatrices()
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{
		ViewProj:       c.viewProjectionMatrix,
		CameraPosition: c.eye,
	}
}

func (c *cameraImpl) Upload(u uniform.UniformBuffer) error {
	g := c.Uniform()
	return u.Update(g.Marshal(), 0)
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = common.LookAt(c.eye, c.target, c.up)
	switch c.projection {
	case ProjectionOrthographic:
		c.projectionMatrix = common.Ortho(c.left, c.right, c.bottom, c.top, c.near, c.far)
	default:
		c.projectionMatrix = common.Perspective(c.fov, c.aspect, c.near, c.far)
	}
	c.viewProjectionMatrix = c.projectionMatrix.Mul(c.viewMatrix)
}
