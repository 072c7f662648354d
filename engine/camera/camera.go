package camera

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ember3d/ember-go/common"
	"github.com/ember3d/ember-go/engine/transform"
)

// cameraCount tracks the number of cameras created, used for unique labels.
var cameraCount atomic.Uint64

// cameraImpl is the implementation of the Camera interface.
type cameraImpl struct {
	mu *sync.Mutex

	label string
	pose  transform.Transform

	perspective bool
	fov         float32
	aspect      float32
	near        float32
	far         float32

	generation atomic.Uint64

	cachedGeneration uint64
	projection       [16]float32
}

// Camera defines the interface for a render camera. A camera carries a
// projection matrix and a world-space pose. The view matrix used by shaders
// is the exact inverse of the pose, supplied by the pose Transform itself,
// so the camera never stores a separate view matrix that could drift out of
// sync with its pose.
//
// The projection has its own generation counter, bumped on every projection
// change, so uniform mirrors can re-upload only when it actually moved.
type Camera interface {
	// Label returns the camera's unique label, used for GPU resource naming.
	//
	// Returns:
	//   - string: the camera label (e.g. "camera_0")
	Label() string

	// Pose returns the camera's world-space pose transform.
	//
	// Returns:
	//   - transform.Transform: the pose transform
	Pose() transform.Transform

	// Projection returns the current projection matrix, recomputing it if
	// the projection parameters changed since the last call. A camera with
	// no perspective configured projects through the identity matrix.
	//
	// Returns:
	//   - [16]float32: the projection matrix (column-major)
	Projection() [16]float32

	// Generation returns the projection generation counter. The counter
	// starts at 1 so that a consumer initialized with 0 always syncs once.
	//
	// Returns:
	//   - uint64: the generation counter value
	Generation() uint64

	// SetPerspective configures a perspective projection targeting the
	// WebGPU depth range [0, 1] and bumps the generation counter.
	//
	// Parameters:
	//   - fovY: vertical field of view in radians
	//   - aspect: viewport aspect ratio (width/height)
	//   - near: near plane distance (must be > 0)
	//   - far: far plane distance (must be > near)
	SetPerspective(fovY, aspect, near, far float32)

	// SetAspect updates the aspect ratio of an existing perspective
	// projection, typically from a window resize callback. No-op for
	// identity-projection cameras.
	//
	// Parameters:
	//   - aspect: the new aspect ratio (width/height)
	SetAspect(aspect float32)

	// Aspect returns the current aspect ratio, or 0 for identity cameras.
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// GPUData returns the projection packed for uniform upload.
	//
	// Returns:
	//   - GPUCameraData: the 64-byte GPU representation
	GPUData() GPUCameraData
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera configured with the given options.
// Without options the camera projects through the identity matrix (useful
// for screen-space content) and sits at the world origin.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:    &sync.Mutex{},
		label: fmt.Sprintf("camera_%d", cameraCount.Add(1)-1),
		pose:  transform.NewTransform(),
	}
	common.Identity(c.projection[:])
	c.generation.Store(1)
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Label() string {
	return c.label
}

func (c *cameraImpl) Pose() transform.Transform {
	return c.pose
}

func (c *cameraImpl) Projection() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recomputeLocked()
	return c.projection
}

func (c *cameraImpl) Generation() uint64 {
	return c.generation.Load()
}

func (c *cameraImpl) SetPerspective(fovY, aspect, near, far float32) {
	c.mu.Lock()
	c.perspective = true
	c.fov = fovY
	c.aspect = aspect
	c.near = near
	c.far = far
	c.mu.Unlock()
	c.generation.Add(1)
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	if !c.perspective || c.aspect == aspect {
		c.mu.Unlock()
		return
	}
	c.aspect = aspect
	c.mu.Unlock()
	c.generation.Add(1)
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) GPUData() GPUCameraData {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recomputeLocked()
	return GPUCameraData{Projection: c.projection}
}

// recomputeLocked rebuilds the cached projection if the generation moved.
// Caller must hold c.mu.
func (c *cameraImpl) recomputeLocked() {
	gen := c.generation.Load()
	if gen == c.cachedGeneration {
		return
	}
	if c.perspective {
		common.Perspective(c.projection[:], c.fov, c.aspect, c.near, c.far)
	} else {
		common.Identity(c.projection[:])
	}
	c.cachedGeneration = gen
}
