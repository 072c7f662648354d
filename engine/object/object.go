package object

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ember3d/ember-go/engine/mesh"
	"github.com/ember3d/ember-go/engine/renderer/material"
	"github.com/ember3d/ember-go/engine/transform"
)

// objectCount provides unique IDs for objects, used to key per-object GPU
// state and to derive default labels.
var objectCount atomic.Uint64

// object is the implementation of the Object interface.
type object struct {
	mu *sync.RWMutex

	id    uint64
	label string

	enabled   bool
	transform transform.Transform
	mesh      mesh.Mesh
	material  material.Material
}

// Object is a renderable entity: a mesh drawn with a material at a pose.
// Objects are what a frame snapshot collects from the scene; a disabled
// object is skipped without touching its GPU state.
type Object interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the unique ID assigned at creation
	ID() uint64

	// Label returns the object's human-readable label.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Enabled returns whether the object participates in rendering.
	//
	// Returns:
	//   - bool: true if the object is drawn
	Enabled() bool

	// SetEnabled toggles whether the object participates in rendering.
	//
	// Parameters:
	//   - enabled: true to draw the object, false to skip it
	SetEnabled(enabled bool)

	// Transform returns the object's pose. Never nil.
	//
	// Returns:
	//   - transform.Transform: the object's transform
	Transform() transform.Transform

	// Mesh returns the object's mesh.
	//
	// Returns:
	//   - mesh.Mesh: the mesh
	Mesh() mesh.Mesh

	// Material returns the object's material.
	//
	// Returns:
	//   - material.Material: the material
	Material() material.Material

	// SetMaterial replaces the object's material.
	//
	// Parameters:
	//   - mat: the new material (must not be nil)
	SetMaterial(mat material.Material)
}

var _ Object = &object{}

// NewObject creates a new Object drawing the given mesh with the given material.
// The object starts enabled with an identity transform unless overridden by options.
// Panics if the mesh or material is nil.
//
// Parameters:
//   - m: the mesh to draw (must not be nil)
//   - mat: the material to draw with (must not be nil)
//   - opts: a variadic list of ObjectOption functions to configure the object
//
// Returns:
//   - Object: a new Object instance
func NewObject(m mesh.Mesh, mat material.Material, opts ...ObjectOption) Object {
	if m == nil {
		panic("object: NewObject requires a non-nil Mesh")
	}
	if mat == nil {
		panic("object: NewObject requires a non-nil Material")
	}

	id := objectCount.Add(1)
	o := &object{
		mu:        &sync.RWMutex{},
		id:        id,
		label:     fmt.Sprintf("object_%d", id),
		enabled:   true,
		transform: transform.NewTransform(),
		mesh:      m,
		material:  mat,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *object) ID() uint64 {
	return o.id
}

func (o *object) Label() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.label
}

func (o *object) Enabled() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.enabled
}

func (o *object) SetEnabled(enabled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.enabled = enabled
}

func (o *object) Transform() transform.Transform {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.transform
}

func (o *object) Mesh() mesh.Mesh {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.mesh
}

func (o *object) Material() material.Material {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.material
}

func (o *object) SetMaterial(mat material.Material) {
	if mat == nil {
		panic("object: SetMaterial requires a non-nil Material")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.material = mat
}
