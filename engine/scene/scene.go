package scene

import (
	"sync"

	"github.com/ember3d/ember-go/engine/camera"
	"github.com/ember3d/ember-go/engine/object"
)

// Scene manages a collection of Objects and the active Camera they are viewed
// through. Scenes can be hot-swapped via the Active flag to switch between
// different views or levels. Thread-safe for concurrent access.
//
// The frame orchestrator reads the scene exclusively through Snapshot and
// ActiveCamera, so mutations made while a frame is in flight affect the next
// frame, never the one being recorded.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// ActiveCamera returns the scene's camera. Never nil.
	//
	// Returns:
	//   - camera.Camera: the active camera
	ActiveCamera() camera.Camera

	// SetCamera replaces the scene's camera. Panics if cam is nil.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Add adds one or more Objects to the scene. Objects already present
	// (by ID) are skipped.
	//
	// Parameters:
	//   - objs: the Objects to add
	Add(objs ...object.Object)

	// Get retrieves an Object by its ID.
	// Returns nil if not found.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - object.Object: the object or nil
	Get(id uint64) object.Object

	// Remove removes an Object from the scene by ID. Removing an object does
	// not release its GPU state; the frame orchestrator reclaims per-object
	// state for objects that stop appearing in snapshots.
	//
	// Parameters:
	//   - id: the object's unique ID
	Remove(id uint64)

	// Count returns the number of Objects in the scene, enabled or not.
	//
	// Returns:
	//   - int: the object count
	Count() int

	// Clear removes all objects from the scene.
	Clear()

	// Snapshot returns a stable copy of the scene's object list in insertion
	// order. The returned slice is owned by the caller; later scene mutations
	// do not affect it.
	//
	// Returns:
	//   - []object.Object: a copy of the object list
	Snapshot() []object.Object
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	cam camera.Camera

	objects []object.Object // insertion order, drives deterministic snapshots
	index   map[uint64]int  // object ID -> position in objects
}

var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera. The camera is required
// and NewScene panics if it is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}

	s := &scene{
		mu:     &sync.RWMutex{},
		name:   name,
		active: false,
		cam:    cam,
		index:  make(map[uint64]int),
	}

	for _, option := range options {
		option(s)
	}

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) ActiveCamera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	if cam == nil {
		panic("scene: SetCamera requires a non-nil Camera")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) Add(objs ...object.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		if _, exists := s.index[obj.ID()]; exists {
			continue
		}
		s.index[obj.ID()] = len(s.objects)
		s.objects = append(s.objects, obj)
	}
}

func (s *scene) Get(id uint64) object.Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pos, exists := s.index[id]; exists {
		return s.objects[pos]
	}
	return nil
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, exists := s.index[id]
	if !exists {
		return
	}
	delete(s.index, id)

	s.objects = append(s.objects[:pos], s.objects[pos+1:]...)
	for i := pos; i < len(s.objects); i++ {
		s.index[s.objects[i].ID()] = i
	}
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = nil
	s.index = make(map[uint64]int)
}

func (s *scene) Snapshot() []object.Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]object.Object, len(s.objects))
	copy(out, s.objects)
	return out
}
