package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/ember3d/ember-go/engine/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()

	// Without a perspective config the projection is the identity, which
	// leaves screen-space geometry untouched.
	proj := c.Projection()
	assert.Equal(t, float32(1), proj[0])
	assert.Equal(t, float32(1), proj[5])
	assert.Equal(t, float32(1), proj[10])
	assert.Equal(t, float32(1), proj[15])

	assert.Equal(t, uint64(1), c.Generation())
	require.NotNil(t, c.Pose())
}

func TestCameraPerspectiveGeneration(t *testing.T) {
	c := NewCamera()
	start := c.Generation()

	c.SetPerspective(math32.Pi/3, 16.0/9.0, 0.1, 100)
	assert.Equal(t, start+1, c.Generation())

	proj := c.Projection()
	assert.NotEqual(t, float32(1), proj[0])
	assert.Equal(t, float32(-1), proj[11])
	assert.Equal(t, float32(0), proj[15])

	// Reads never bump the counter.
	c.Projection()
	c.GPUData()
	assert.Equal(t, start+1, c.Generation())
}

func TestCameraSetAspect(t *testing.T) {
	c := NewCamera(WithPerspective(math32.Pi/3, 1.0, 0.1, 100))
	gen := c.Generation()

	c.SetAspect(2.0)
	assert.Equal(t, gen+1, c.Generation())
	assert.Equal(t, float32(2.0), c.Aspect())

	// Same aspect is a no-op and must not dirty the camera.
	c.SetAspect(2.0)
	assert.Equal(t, gen+1, c.Generation())
}

func TestCameraSetAspectWithoutPerspective(t *testing.T) {
	c := NewCamera()
	gen := c.Generation()

	// A screen-space camera has no aspect to update.
	c.SetAspect(2.0)
	assert.Equal(t, gen, c.Generation())
}

func TestCameraPoseIsIndependent(t *testing.T) {
	pose := transform.NewTransform(transform.WithPosition(0, 0, 5))
	c := NewCamera(WithPose(pose))
	gen := c.Generation()

	// Moving the pose dirties the pose's own generation, not the projection's.
	pose.SetPosition(0, 0, 10)
	assert.Equal(t, gen, c.Generation())
	assert.Greater(t, pose.Generation(), uint64(1))
}

func TestGPUCameraDataMarshal(t *testing.T) {
	c := NewCamera(WithPerspective(math32.Pi/2, 1.0, 0.1, 100))
	data := c.GPUData()

	require.Equal(t, 64, data.Size())
	buf := data.Marshal()
	require.Len(t, buf, 64)
	assert.Equal(t, c.Projection(), data.Projection)
}

func TestCameraLabels(t *testing.T) {
	a := NewCamera()
	b := NewCamera(WithLabel("main"))

	assert.NotEmpty(t, a.Label())
	assert.Equal(t, "main", b.Label())
}
