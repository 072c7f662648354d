package resource

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/ember3d/ember-go/common"
	"github.com/ember3d/ember-go/engine/renderer/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDevice records allocations in memory so manager behavior can be tested
// without a GPU.
type fakeDevice struct {
	mu sync.Mutex

	buffers  int
	textures int
	samplers int
	groups   int
	released int
	writes   int

	failNextBuffer bool
	failNextGroup  bool
}

type fakeNative struct {
	kind string
	size uint64
}

func (d *fakeDevice) CreateDeviceBuffer(label string, size uint64, usage wgpu.BufferUsage, data []byte) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failNextBuffer {
		d.failNextBuffer = false
		return nil, fmt.Errorf("simulated buffer failure for %q", label)
	}
	d.buffers++
	return &fakeNative{kind: "buffer", size: size}, nil
}

func (d *fakeDevice) WriteDeviceBuffer(native any, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writes++
	return nil
}

func (d *fakeDevice) CreateDeviceTexture(label string, data common.TextureStagingData) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.textures++
	return &fakeNative{kind: "texture"}, nil
}

func (d *fakeDevice) CreateDeviceSampler(label string, data common.SamplerStagingData) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.samplers++
	return &fakeNative{kind: "sampler"}, nil
}

func (d *fakeDevice) CreateDeviceBindGroup(label string, group int, entries []DeviceBindGroupEntry) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failNextGroup {
		d.failNextGroup = false
		return nil, fmt.Errorf("simulated bind group failure for %q", label)
	}
	d.groups++
	return &fakeNative{kind: "group"}, nil
}

func (d *fakeDevice) ReleaseDeviceResource(native any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released++
}

var _ Device = &fakeDevice{}

func pixels(w, h uint32) common.TextureStagingData {
	return common.TextureStagingData{
		Pixels: make([]byte, w*h*4),
		Width:  w,
		Height: h,
	}
}

func TestNewManagerRequiresDevice(t *testing.T) {
	assert.Panics(t, func() { NewManager(nil) })
}

func TestCreateBufferAndNative(t *testing.T) {
	device := &fakeDevice{}
	m := NewManager(device)

	h, err := m.CreateBuffer("verts", BufferKindVertex, 64, make([]byte, 64))
	require.NoError(t, err)
	require.NotZero(t, h)

	native, ok := m.BufferNative(h)
	assert.True(t, ok)
	assert.NotNil(t, native)

	_, ok = m.BufferNative(h + 100)
	assert.False(t, ok)
}

func TestCreateBufferAllocationError(t *testing.T) {
	device := &fakeDevice{failNextBuffer: true}
	m := NewManager(device)

	_, err := m.CreateBuffer("verts", BufferKindVertex, 64, nil)
	require.Error(t, err)
	var alloc *AllocationError
	assert.ErrorAs(t, err, &alloc)
	assert.Equal(t, "verts", alloc.Label)
}

func TestUpdateUniformExactSize(t *testing.T) {
	device := &fakeDevice{}
	m := NewManager(device)

	h, err := m.CreateBuffer("pose", BufferKindUniform, layout.TransformUniformSize, nil)
	require.NoError(t, err)

	assert.NoError(t, m.UpdateUniform(h, make([]byte, layout.TransformUniformSize)))
	assert.Equal(t, uint64(1), m.UploadCount())

	// Partial writes are refused: the uniform size is part of the layout.
	err = m.UpdateUniform(h, make([]byte, 64))
	assert.ErrorIs(t, err, ErrLayoutMismatch)
	assert.Equal(t, uint64(1), m.UploadCount())

	err = m.UpdateUniform(h+100, make([]byte, layout.TransformUniformSize))
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestCreateBindingGroupUniform(t *testing.T) {
	device := &fakeDevice{}
	m := NewManager(device)

	buf, err := m.CreateBuffer("camera", BufferKindUniform, layout.CameraUniformSize, nil)
	require.NoError(t, err)

	group, err := m.CreateBindingGroup(layout.GroupCameraProjection, GroupResources{Buffer: buf})
	require.NoError(t, err)

	native, ok := m.BindGroupNative(group)
	assert.True(t, ok)
	assert.NotNil(t, native)
}

func TestCreateBindingGroupRejectsWrongSize(t *testing.T) {
	device := &fakeDevice{}
	m := NewManager(device)

	// A 64-byte uniform cannot fill the 128-byte pose slot.
	buf, err := m.CreateBuffer("small", BufferKindUniform, layout.CameraUniformSize, nil)
	require.NoError(t, err)

	_, err = m.CreateBindingGroup(layout.GroupObjectPose, GroupResources{Buffer: buf})
	assert.ErrorIs(t, err, ErrLayoutMismatch)
}

func TestCreateBindingGroupRejectsWrongKind(t *testing.T) {
	device := &fakeDevice{}
	m := NewManager(device)

	buf, err := m.CreateBuffer("verts", BufferKindVertex, layout.CameraUniformSize, nil)
	require.NoError(t, err)

	_, err = m.CreateBindingGroup(layout.GroupCameraProjection, GroupResources{Buffer: buf})
	assert.ErrorIs(t, err, ErrLayoutMismatch)
}

func TestCreateBindingGroupRejectsExtraResources(t *testing.T) {
	device := &fakeDevice{}
	m := NewManager(device)

	buf, err := m.CreateBuffer("camera", BufferKindUniform, layout.CameraUniformSize, nil)
	require.NoError(t, err)
	tex, err := m.LoadTexture("checker", pixels(4, 4))
	require.NoError(t, err)

	// The camera group takes only a uniform buffer.
	_, err = m.CreateBindingGroup(layout.GroupCameraProjection, GroupResources{Buffer: buf, Texture: tex})
	assert.ErrorIs(t, err, ErrLayoutMismatch)

	_, err = m.CreateBindingGroup(layout.GroupCameraProjection, GroupResources{})
	assert.ErrorIs(t, err, ErrLayoutMismatch)

	_, err = m.CreateBindingGroup(-1, GroupResources{Buffer: buf})
	assert.ErrorIs(t, err, ErrLayoutMismatch)
}

func TestCreateBindingGroupMaterial(t *testing.T) {
	device := &fakeDevice{}
	m := NewManager(device)

	tex, err := m.LoadTexture("checker", pixels(4, 4))
	require.NoError(t, err)
	smp, err := m.CreateSampler("bilinear", common.FilterModeBilinear)
	require.NoError(t, err)

	group, err := m.CreateBindingGroup(layout.GroupMaterial, GroupResources{Texture: tex, Sampler: smp})
	require.NoError(t, err)
	assert.NotZero(t, group)
}

func TestDanglingReferenceRefused(t *testing.T) {
	device := &fakeDevice{}
	m := NewManager(device)

	buf, err := m.CreateBuffer("camera", BufferKindUniform, layout.CameraUniformSize, nil)
	require.NoError(t, err)
	group, err := m.CreateBindingGroup(layout.GroupCameraProjection, GroupResources{Buffer: buf})
	require.NoError(t, err)

	// Destroying the buffer while the binding group lives must fail.
	err = m.DestroyBuffer(buf)
	require.Error(t, err)
	var dangling *DanglingReferenceError
	require.ErrorAs(t, err, &dangling)
	assert.Equal(t, "buffer", dangling.Kind)
	assert.Equal(t, 1, dangling.Refs)

	// The buffer must remain usable after the refused destroy.
	assert.NoError(t, m.UpdateUniform(buf, make([]byte, layout.CameraUniformSize)))

	// Releasing the binding group unblocks the destroy.
	require.NoError(t, m.DestroyBindingGroup(group))
	assert.NoError(t, m.DestroyBuffer(buf))

	// The handle is never reused.
	_, ok := m.BufferNative(buf)
	assert.False(t, ok)
	assert.ErrorIs(t, m.DestroyBuffer(buf), ErrInvalidHandle)
}

func TestFailedBindGroupLeavesNoRefs(t *testing.T) {
	device := &fakeDevice{failNextGroup: true}
	m := NewManager(device)

	buf, err := m.CreateBuffer("camera", BufferKindUniform, layout.CameraUniformSize, nil)
	require.NoError(t, err)

	_, err = m.CreateBindingGroup(layout.GroupCameraProjection, GroupResources{Buffer: buf})
	require.Error(t, err)

	// The failed create must not leave a refcount behind.
	assert.NoError(t, m.DestroyBuffer(buf))
}

func TestAsyncUploadFence(t *testing.T) {
	device := &fakeDevice{}
	m := NewManager(device)

	img := &common.ImageTexture{Name: "checker", Data: pngPixel(t)}
	tex, ticket := m.LoadTextureAsync("checker", img)
	require.NotNil(t, ticket)

	smp, err := m.CreateSampler("point", common.FilterModePoint)
	require.NoError(t, err)

	// Binding the texture is refused until the upload fence clears; a racing
	// caller may also observe completion already, which is equally valid.
	if _, err := m.CreateBindingGroup(layout.GroupMaterial, GroupResources{Texture: tex, Sampler: smp}); err != nil {
		assert.ErrorIs(t, err, ErrUploadPending)
	}

	require.NoError(t, ticket.Wait())

	group, err := m.CreateBindingGroup(layout.GroupMaterial, GroupResources{Texture: tex, Sampler: smp})
	require.NoError(t, err)
	assert.NotZero(t, group)

	select {
	case <-ticket.Done():
	default:
		t.Fatal("ticket Done channel not closed after Wait")
	}
	assert.NoError(t, ticket.Err())
}

func TestAsyncUploadDecodeFailure(t *testing.T) {
	device := &fakeDevice{}
	m := NewManager(device)

	img := &common.ImageTexture{Name: "garbage", Data: []byte("not an image")}
	tex, ticket := m.LoadTextureAsync("garbage", img)

	err := ticket.Wait()
	require.Error(t, err)
	assert.Error(t, ticket.Err())

	// The texture stays pending forever; binding it keeps failing.
	smp, err := m.CreateSampler("point", common.FilterModePoint)
	require.NoError(t, err)
	_, err = m.CreateBindingGroup(layout.GroupMaterial, GroupResources{Texture: tex, Sampler: smp})
	assert.ErrorIs(t, err, ErrUploadPending)
}

func TestRelease(t *testing.T) {
	device := &fakeDevice{}
	m := NewManager(device)

	buf, err := m.CreateBuffer("camera", BufferKindUniform, layout.CameraUniformSize, nil)
	require.NoError(t, err)
	_, err = m.CreateBindingGroup(layout.GroupCameraProjection, GroupResources{Buffer: buf})
	require.NoError(t, err)
	_, err = m.LoadTexture("checker", pixels(2, 2))
	require.NoError(t, err)

	m.Release()

	device.mu.Lock()
	released := device.released
	device.mu.Unlock()
	assert.Equal(t, 3, released)

	_, ok := m.BufferNative(buf)
	assert.False(t, ok)
}

func TestBufferKindUsage(t *testing.T) {
	assert.NotZero(t, BufferKindVertex.Usage()&wgpu.BufferUsageVertex)
	assert.NotZero(t, BufferKindIndex.Usage()&wgpu.BufferUsageIndex)
	assert.NotZero(t, BufferKindUniform.Usage()&wgpu.BufferUsageUniform)
	assert.NotZero(t, BufferKindUniform.Usage()&wgpu.BufferUsageCopyDst)
}

func TestErrorTaxonomy(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", ErrUploadPending)
	assert.True(t, errors.Is(wrapped, ErrUploadPending))
	assert.False(t, errors.Is(wrapped, ErrLayoutMismatch))

	alloc := &AllocationError{Label: "tex", Err: errors.New("boom")}
	assert.ErrorContains(t, alloc, "tex")
	assert.ErrorContains(t, alloc, "boom")
}

// pngPixel encodes a 1x1 PNG for async decode tests.
func pngPixel(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
