package frame

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ember3d/ember-go/engine/camera"
	"github.com/ember3d/ember-go/engine/object"
	"github.com/ember3d/ember-go/engine/renderer"
	"github.com/ember3d/ember-go/engine/renderer/layout"
	"github.com/ember3d/ember-go/engine/renderer/resource"
	"github.com/ember3d/ember-go/engine/scene"
)

// Phase identifies where the orchestrator is within the current frame.
// Phases advance strictly in order; calling a phase method out of order is a
// programmer error and fails without touching GPU state.
type Phase int

const (
	// PhaseIdle means no frame is in flight.
	PhaseIdle Phase = iota

	// PhaseBegun means the scene snapshot is taken and the surface is acquired.
	PhaseBegun

	// PhaseUpdated means dirty uniforms are synced and draw items assembled.
	PhaseUpdated

	// PhaseRecorded means draw commands are encoded into the frame's pass.
	PhaseRecorded

	// PhaseSubmitted means the command buffer is handed to the GPU queue.
	PhaseSubmitted
)

// Status is the terminal outcome of a frame.
type Status int

const (
	// StatusPresented means the frame completed and reached the display.
	StatusPresented Status = iota

	// StatusAborted means the frame was abandoned before presentation.
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusPresented:
		return "presented"
	case StatusAborted:
		return "aborted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Orchestrator drives rendering one frame at a time through five phases:
// Begin snapshots the scene and acquires the surface, Update syncs dirty
// uniforms, Record encodes draw commands, Submit hands them to the GPU, and
// Present displays the result. Every frame ends Presented or Aborted.
//
// The orchestrator owns all per-entity GPU state (uniform buffers and binding
// groups for cameras, objects, materials, and meshes), created lazily on
// first sight and reclaimed when the entity disappears from snapshots.
type Orchestrator interface {
	// Begin starts a new frame: snapshots the scene's objects and camera and
	// acquires the next surface image. After a surface loss Begin reconfigures
	// the surface and reports the frame aborted; the caller skips this frame
	// and begins the next one normally.
	//
	// Returns:
	//   - error: renderer.ErrSurfaceLost after a recoverable surface loss,
	//     renderer.ErrSurfaceTimeout when acquisition timed out (skip the
	//     frame, no reconfiguration), renderer.ErrSurfaceOutOfMemory (fatal,
	//     every later call fails the same way), or another error for any
	//     other failure
	Begin() error

	// Update syncs GPU uniforms with the snapshot taken at Begin. Only
	// entities whose generation counters moved since their last sync are
	// uploaded, so a static scene uploads nothing. Update is idempotent
	// within a frame: a second call finds no stale generations and is a no-op.
	//
	// Returns:
	//   - error: an error if GPU state creation or an upload fails
	Update() error

	// Record encodes one draw command per enabled object, sorted by pipeline
	// key so each pipeline is bound once per run of consecutive draws.
	//
	// Returns:
	//   - error: an error if a pipeline is missing or a draw fails
	Record() error

	// Submit ends the render pass and submits the frame's command buffer to
	// the GPU queue.
	//
	// Returns:
	//   - error: an error if the command buffer could not be submitted
	Submit() error

	// Present presents the frame to the surface and resolves the frame's
	// terminal status. A surface loss during presentation aborts the frame
	// and reconfigures the surface for the next one.
	//
	// Returns:
	//   - Status: StatusPresented or StatusAborted
	//   - error: renderer.ErrSurfaceLost, renderer.ErrSurfaceOutOfMemory, or nil
	Present() (Status, error)

	// RenderFrame runs all five phases in order. A recoverable surface loss
	// returns StatusAborted with a nil error since the orchestrator already
	// handled it; any other failure returns StatusAborted with the cause.
	//
	// Returns:
	//   - Status: the frame's terminal status
	//   - error: the failure cause, or nil
	RenderFrame() (Status, error)

	// FrameNumber returns the number of frames begun so far.
	//
	// Returns:
	//   - uint64: the frame counter
	FrameNumber() uint64

	// PresentedFrames returns the number of frames that reached the display.
	//
	// Returns:
	//   - uint64: the presented frame counter
	PresentedFrames() uint64

	// Resize updates the surface size used for rendering and for recovery
	// after a surface loss.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	Resize(width, height int)

	// Release reclaims every piece of GPU state the orchestrator created.
	// The orchestrator must not be used after Release.
	Release()
}

type orchestratorImpl struct {
	mu *sync.Mutex

	renderer  renderer.Renderer
	resources resource.Manager
	scene     scene.Scene

	phase      Phase
	frameCount uint64
	presented  uint64

	// fatal, once set, fails every subsequent frame. Only surface
	// out-of-memory sets it.
	fatal error

	surfaceWidth  int
	surfaceHeight int

	// Snapshot taken at Begin; immutable for the rest of the frame.
	snapshot []object.Object
	cam      camera.Camera

	drawItems []drawItem

	// GPU state caches, keyed by entity identity.
	meshStates     map[uint64]*meshState
	materialStates map[uint64]*materialState
	objectStates   map[uint64]*objectState
	cameraStates   map[camera.Camera]*cameraState
	pipelineGroups map[string][layout.GroupCount]bool
}

var _ Orchestrator = &orchestratorImpl{}

// NewOrchestrator creates a frame orchestrator rendering the given scene
// through the given renderer and resource manager. All three are required and
// NewOrchestrator panics if any of them is nil. The resource manager must be
// backed by the same device as the renderer.
//
// Parameters:
//   - r: the renderer to encode frames through (must not be nil)
//   - resources: the resource manager owning GPU allocations (must not be nil)
//   - scn: the scene to render (must not be nil)
//   - options: functional options to further configure the orchestrator
//
// Returns:
//   - Orchestrator: the newly created orchestrator
func NewOrchestrator(r renderer.Renderer, resources resource.Manager, scn scene.Scene, options ...OrchestratorBuilderOption) Orchestrator {
	if r == nil {
		panic("frame: NewOrchestrator requires a non-nil Renderer")
	}
	if resources == nil {
		panic("frame: NewOrchestrator requires a non-nil resource.Manager")
	}
	if scn == nil {
		panic("frame: NewOrchestrator requires a non-nil Scene")
	}

	o := &orchestratorImpl{
		mu:             &sync.Mutex{},
		renderer:       r,
		resources:      resources,
		scene:          scn,
		surfaceWidth:   1280,
		surfaceHeight:  720,
		meshStates:     make(map[uint64]*meshState),
		materialStates: make(map[uint64]*materialState),
		objectStates:   make(map[uint64]*objectState),
		cameraStates:   make(map[camera.Camera]*cameraState),
		pipelineGroups: make(map[string][layout.GroupCount]bool),
	}
	for _, option := range options {
		option(o)
	}
	return o
}

func (o *orchestratorImpl) Begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fatal != nil {
		return o.fatal
	}
	if o.phase != PhaseIdle {
		return fmt.Errorf("frame: Begin called in phase %d, frame already in flight", o.phase)
	}

	// Snapshot first: scene mutations made after this point land in the next
	// frame, never this one.
	o.snapshot = o.scene.Snapshot()
	o.cam = o.scene.ActiveCamera()

	if err := o.renderer.BeginFrame(); err != nil {
		return o.handleSurfaceError(err)
	}

	o.frameCount++
	o.phase = PhaseBegun
	return nil
}

func (o *orchestratorImpl) Update() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase != PhaseBegun && o.phase != PhaseUpdated {
		return fmt.Errorf("frame: Update called in phase %d, Begin required first", o.phase)
	}

	camSt, err := o.ensureCamera(o.cam)
	if err != nil {
		return o.abortLocked(err)
	}
	if gen := o.cam.Generation(); gen != camSt.projectionGeneration {
		data := o.cam.GPUData()
		if err := o.resources.UpdateUniform(camSt.projectionBuffer, data.Marshal()); err != nil {
			return o.abortLocked(err)
		}
		camSt.projectionGeneration = gen
	}
	pose := o.cam.Pose()
	if gen := pose.Generation(); gen != camSt.poseGeneration {
		data := pose.GPUData()
		if err := o.resources.UpdateUniform(camSt.poseBuffer, data.Marshal()); err != nil {
			return o.abortLocked(err)
		}
		camSt.poseGeneration = gen
	}

	seen := make(map[uint64]struct{}, len(o.snapshot))
	o.drawItems = o.drawItems[:0]
	for _, obj := range o.snapshot {
		// Disabled objects keep their GPU state but are not drawn or synced.
		seen[obj.ID()] = struct{}{}
		if !obj.Enabled() {
			continue
		}

		meshSt, err := o.ensureMesh(obj.Mesh())
		if err != nil {
			return o.abortLocked(err)
		}

		mat := obj.Material()
		declared, err := o.declaredGroups(mat.PipelineKey())
		if err != nil {
			return o.abortLocked(err)
		}

		// Materials only get GPU state when their pipeline samples them;
		// flat-color programs declare no material group at all.
		var matSt *materialState
		if declared[layout.GroupMaterial] {
			matSt, err = o.ensureMaterial(mat)
			if err != nil {
				if uploadPending(err) {
					// The texture is still on the upload queue; the object joins
					// the frame once the fence clears.
					continue
				}
				return o.abortLocked(err)
			}
		}

		objSt, err := o.ensureObject(obj)
		if err != nil {
			return o.abortLocked(err)
		}
		if gen := obj.Transform().Generation(); gen != objSt.generation {
			data := obj.Transform().GPUData()
			if err := o.resources.UpdateUniform(objSt.buffer, data.Marshal()); err != nil {
				return o.abortLocked(err)
			}
			objSt.generation = gen
		}

		o.drawItems = append(o.drawItems, drawItem{
			pipelineKey: mat.PipelineKey(),
			objectID:    obj.ID(),
			mesh:        meshSt,
			material:    matSt,
			object:      objSt,
		})
	}

	o.pruneObjects(seen)
	o.phase = PhaseUpdated
	return nil
}

func (o *orchestratorImpl) Record() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase != PhaseUpdated {
		return fmt.Errorf("frame: Record called in phase %d, Update required first", o.phase)
	}

	// Sorting by pipeline key groups draws so the backend binds each pipeline
	// once per run; ties break on object ID for deterministic order.
	sort.SliceStable(o.drawItems, func(i, j int) bool {
		if o.drawItems[i].pipelineKey != o.drawItems[j].pipelineKey {
			return o.drawItems[i].pipelineKey < o.drawItems[j].pipelineKey
		}
		return o.drawItems[i].objectID < o.drawItems[j].objectID
	})

	camSt := o.cameraStates[o.cam]
	for _, item := range o.drawItems {
		declared, err := o.declaredGroups(item.pipelineKey)
		if err != nil {
			return o.abortLocked(err)
		}

		groups := make([]any, layout.GroupCount)
		if declared[layout.GroupMaterial] {
			groups[layout.GroupMaterial], _ = o.resources.BindGroupNative(item.material.group)
		}
		if declared[layout.GroupCameraProjection] && camSt != nil {
			groups[layout.GroupCameraProjection], _ = o.resources.BindGroupNative(camSt.projectionGroup)
		}
		if declared[layout.GroupCameraPose] && camSt != nil {
			groups[layout.GroupCameraPose], _ = o.resources.BindGroupNative(camSt.poseGroup)
		}
		if declared[layout.GroupObjectPose] {
			groups[layout.GroupObjectPose], _ = o.resources.BindGroupNative(item.object.group)
		}

		vertexNative, ok := o.resources.BufferNative(item.mesh.vertexBuffer)
		if !ok {
			return o.abortLocked(fmt.Errorf("%w: vertex buffer %d", resource.ErrInvalidHandle, item.mesh.vertexBuffer))
		}
		indexNative, ok := o.resources.BufferNative(item.mesh.indexBuffer)
		if !ok {
			return o.abortLocked(fmt.Errorf("%w: index buffer %d", resource.ErrInvalidHandle, item.mesh.indexBuffer))
		}

		if err := o.renderer.DrawCall(item.pipelineKey, vertexNative, indexNative, item.mesh.indexCount, groups); err != nil {
			return o.abortLocked(err)
		}
	}

	o.phase = PhaseRecorded
	return nil
}

func (o *orchestratorImpl) Submit() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase != PhaseRecorded {
		return fmt.Errorf("frame: Submit called in phase %d, Record required first", o.phase)
	}

	if err := o.renderer.EndFrame(); err != nil {
		o.phase = PhaseIdle
		return err
	}
	o.phase = PhaseSubmitted
	return nil
}

func (o *orchestratorImpl) Present() (Status, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase != PhaseSubmitted {
		return StatusAborted, fmt.Errorf("frame: Present called in phase %d, Submit required first", o.phase)
	}
	o.phase = PhaseIdle

	if err := o.renderer.Present(); err != nil {
		return StatusAborted, o.handleSurfaceError(err)
	}

	o.presented++
	return StatusPresented, nil
}

func (o *orchestratorImpl) RenderFrame() (Status, error) {
	if err := o.Begin(); err != nil {
		if skippableSurfaceError(err) {
			// Lost surfaces are recovered by reconfiguration and timeouts
			// resolve on their own; the frame is skipped, not failed.
			return StatusAborted, nil
		}
		return StatusAborted, err
	}
	if err := o.Update(); err != nil {
		return StatusAborted, err
	}
	if err := o.Record(); err != nil {
		return StatusAborted, err
	}
	if err := o.Submit(); err != nil {
		return StatusAborted, err
	}
	status, err := o.Present()
	if err != nil && skippableSurfaceError(err) {
		return StatusAborted, nil
	}
	return status, err
}

func (o *orchestratorImpl) FrameNumber() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.frameCount
}

func (o *orchestratorImpl) PresentedFrames() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.presented
}

func (o *orchestratorImpl) Resize(width, height int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.surfaceWidth = width
	o.surfaceHeight = height
	o.renderer.Resize(width, height)
}

func (o *orchestratorImpl) Release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.releaseStates()
}

// handleSurfaceError resolves a surface failure observed at acquisition or
// presentation. A lost surface is reconfigured immediately so the next frame
// can proceed; a timeout skips the frame without touching the surface;
// out-of-memory is fatal and latches. Caller must hold o.mu.
func (o *orchestratorImpl) handleSurfaceError(err error) error {
	switch {
	case errors.Is(err, renderer.ErrSurfaceOutOfMemory):
		o.fatal = err
		return err
	case errors.Is(err, renderer.ErrSurfaceLost):
		o.renderer.Resize(o.surfaceWidth, o.surfaceHeight)
		return err
	default:
		return err
	}
}

// skippableSurfaceError reports whether err aborts the frame without failing
// the caller: the orchestrator already handled a lost surface, and a timed
// out acquisition resolves by retrying next frame.
func skippableSurfaceError(err error) bool {
	return errors.Is(err, renderer.ErrSurfaceLost) || errors.Is(err, renderer.ErrSurfaceTimeout)
}

// abortLocked abandons the in-flight frame after the surface was already
// acquired: the frame's encoding is discarded and the image released without
// presenting, so the next Begin can acquire again. Caller must hold o.mu.
func (o *orchestratorImpl) abortLocked(err error) error {
	o.renderer.DiscardFrame()
	o.phase = PhaseIdle
	return err
}
