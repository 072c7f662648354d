package transform

import (
	"sync"
	"sync/atomic"

	"github.com/ember3d/ember-go/common"
)

// transformImpl is the implementation of the Transform interface.
// The pose matrix and its inverse are recomputed together by the same pass
// and cached against the generation counter, so a reader can never observe
// a matrix paired with a stale inverse.
type transformImpl struct {
	mu *sync.Mutex

	position [3]float32
	rotation [3]float32
	scale    [3]float32

	generation atomic.Uint64

	cachedGeneration uint64
	matrix           [16]float32
	inverse          [16]float32
	singular         bool
}

// Transform defines the interface for an object pose: position, Euler
// rotation, and per-axis scale, with cached pose/inverse matrices.
//
// Every mutation bumps a monotonically increasing generation counter.
// Consumers that mirror the pose elsewhere (e.g. a GPU uniform buffer)
// remember the generation they last synced and re-read only when it moves.
type Transform interface {
	// Position returns the current position.
	//
	// Returns:
	//   - x, y, z: position components
	Position() (x, y, z float32)

	// Rotation returns the current Euler rotation in radians.
	//
	// Returns:
	//   - rx, ry, rz: rotation angles
	Rotation() (rx, ry, rz float32)

	// Scale returns the current per-axis scale.
	//
	// Returns:
	//   - sx, sy, sz: scale factors
	Scale() (sx, sy, sz float32)

	// SetPosition sets the position and bumps the generation counter.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// SetRotation sets the Euler rotation (radians, applied Y·X·Z) and bumps
	// the generation counter.
	//
	// Parameters:
	//   - rx, ry, rz: new rotation angles
	SetRotation(rx, ry, rz float32)

	// SetScale sets the per-axis scale and bumps the generation counter.
	//
	// Parameters:
	//   - sx, sy, sz: new scale factors
	SetScale(sx, sy, sz float32)

	// Generation returns the current generation counter. The counter starts
	// at 1 so that a consumer initialized with 0 always syncs once.
	//
	// Returns:
	//   - uint64: the generation counter value
	Generation() uint64

	// Matrices returns the pose matrix and its exact inverse, recomputing
	// both if the pose changed since the last call. When the pose is
	// singular (zero scale on some axis) the inverse is the identity and
	// the second return is false.
	//
	// Returns:
	//   - matrix: the pose matrix (column-major)
	//   - inverse: the exact inverse of the pose matrix
	//   - ok: false if the pose was singular and the inverse fell back to identity
	Matrices() (matrix, inverse [16]float32, ok bool)

	// GPUData returns the pose and inverse packed for uniform upload.
	//
	// Returns:
	//   - GPUTransformData: the 128-byte GPU representation
	GPUData() GPUTransformData
}

var _ Transform = &transformImpl{}

// NewTransform creates a new Transform configured with the given options.
// The default pose is the identity: zero position, zero rotation, unit scale.
//
// Parameters:
//   - options: functional options to configure the transform
//
// Returns:
//   - Transform: the newly created transform
func NewTransform(options ...TransformBuilderOption) Transform {
	t := &transformImpl{
		mu:    &sync.Mutex{},
		scale: [3]float32{1, 1, 1},
	}
	common.Identity(t.matrix[:])
	common.Identity(t.inverse[:])
	t.generation.Store(1)
	for _, option := range options {
		option(t)
	}
	return t
}

func (t *transformImpl) Position() (x, y, z float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position[0], t.position[1], t.position[2]
}

func (t *transformImpl) Rotation() (rx, ry, rz float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rotation[0], t.rotation[1], t.rotation[2]
}

func (t *transformImpl) Scale() (sx, sy, sz float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scale[0], t.scale[1], t.scale[2]
}

func (t *transformImpl) SetPosition(x, y, z float32) {
	t.mu.Lock()
	t.position = [3]float32{x, y, z}
	t.mu.Unlock()
	t.generation.Add(1)
}

func (t *transformImpl) SetRotation(rx, ry, rz float32) {
	t.mu.Lock()
	t.rotation = [3]float32{rx, ry, rz}
	t.mu.Unlock()
	t.generation.Add(1)
}

func (t *transformImpl) SetScale(sx, sy, sz float32) {
	t.mu.Lock()
	t.scale = [3]float32{sx, sy, sz}
	t.mu.Unlock()
	t.generation.Add(1)
}

func (t *transformImpl) Generation() uint64 {
	return t.generation.Load()
}

func (t *transformImpl) Matrices() (matrix, inverse [16]float32, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recomputeLocked()
	return t.matrix, t.inverse, !t.singular
}

func (t *transformImpl) GPUData() GPUTransformData {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recomputeLocked()
	return GPUTransformData{
		Transform:    t.matrix,
		TransformInv: t.inverse,
	}
}

// recomputeLocked rebuilds the cached matrix pair if the generation moved.
// Caller must hold t.mu.
func (t *transformImpl) recomputeLocked() {
	gen := t.generation.Load()
	if gen == t.cachedGeneration {
		return
	}
	common.BuildModelMatrix(t.matrix[:],
		t.position[0], t.position[1], t.position[2],
		t.rotation[0], t.rotation[1], t.rotation[2],
		t.scale[0], t.scale[1], t.scale[2],
	)
	if common.Invert4(t.inverse[:], t.matrix[:]) {
		t.singular = false
	} else {
		common.Identity(t.inverse[:])
		t.singular = true
	}
	t.cachedGeneration = gen
}
