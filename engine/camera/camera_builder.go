package camera

import (
	"github.com/ember3d/ember-go/engine/transform"
)

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*cameraImpl)

// WithPerspective configures a perspective projection at construction time.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that configures the projection
func WithPerspective(fovY, aspect, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.perspective = true
		c.fov = fovY
		c.aspect = aspect
		c.near = near
		c.far = far
		c.generation.Add(1)
	}
}

// WithPose sets a pre-configured pose transform for the camera.
//
// Parameters:
//   - pose: the pose transform to use
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's pose
func WithPose(pose transform.Transform) CameraBuilderOption {
	return func(c *cameraImpl) {
		if pose != nil {
			c.pose = pose
		}
	}
}

// WithLabel overrides the generated camera label.
//
// Parameters:
//   - label: the label to use for GPU resource naming
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's label
func WithLabel(label string) CameraBuilderOption {
	return func(c *cameraImpl) {
		if label != "" {
			c.label = label
		}
	}
}
