package frame

import (
	"testing"

	"github.com/ember3d/ember-go/common"
	"github.com/ember3d/ember-go/engine/camera"
	"github.com/ember3d/ember-go/engine/mesh"
	"github.com/ember3d/ember-go/engine/object"
	"github.com/ember3d/ember-go/engine/renderer"
	"github.com/ember3d/ember-go/engine/renderer/material"
	"github.com/ember3d/ember-go/engine/renderer/pipeline"
	"github.com/ember3d/ember-go/engine/renderer/resource"
	"github.com/ember3d/ember-go/engine/renderer/shader"
	"github.com/ember3d/ember-go/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRig wires a headless renderer, a resource manager on its device, and
// the reference pipelines together the way the engine does.
type testRig struct {
	renderer  renderer.Renderer
	resources resource.Manager
	backend   renderer.HeadlessBackend
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	r := renderer.NewRenderer(renderer.BackendTypeHeadless, nil, renderer.WithHeadlessSize(640, 480))
	t.Cleanup(r.Release)

	flatVert, flatFrag := shader.FlatTriangleShaders()
	meshVert, meshFrag := shader.TexturedMeshShaders()
	require.NoError(t, r.RegisterPipelines(
		pipeline.NewPipeline(shader.PipelineKeyFlatTriangle,
			pipeline.WithVertexShader(flatVert),
			pipeline.WithFragmentShader(flatFrag),
		),
		pipeline.NewPipeline(shader.PipelineKeyTexturedMesh,
			pipeline.WithVertexShader(meshVert),
			pipeline.WithFragmentShader(meshFrag),
		),
	))

	mgr := resource.NewManager(r.Device())
	t.Cleanup(mgr.Release)

	hb, ok := r.Backend().(renderer.HeadlessBackend)
	require.True(t, ok)

	return &testRig{renderer: r, resources: mgr, backend: hb}
}

func (rig *testRig) orchestrator(t *testing.T, scn scene.Scene) Orchestrator {
	t.Helper()
	o := NewOrchestrator(rig.renderer, rig.resources, scn, WithSurfaceSize(640, 480))
	t.Cleanup(o.Release)
	return o
}

func texturedObject() object.Object {
	return object.NewObject(mesh.Cube(), material.NewMaterial(
		material.WithName("checker"),
		material.WithPipelineKey(shader.PipelineKeyTexturedMesh),
	))
}

func flatObject() object.Object {
	return object.NewObject(mesh.Triangle(), material.NewMaterial(
		material.WithName("flat"),
		material.WithPipelineKey(shader.PipelineKeyFlatTriangle),
	))
}

func TestNewOrchestratorPanics(t *testing.T) {
	rig := newTestRig(t)
	scn := scene.NewScene("main", camera.NewCamera())

	assert.Panics(t, func() { NewOrchestrator(nil, rig.resources, scn) })
	assert.Panics(t, func() { NewOrchestrator(rig.renderer, nil, scn) })
	assert.Panics(t, func() { NewOrchestrator(rig.renderer, rig.resources, nil) })
}

func TestRenderFrameFirstFrame(t *testing.T) {
	rig := newTestRig(t)
	scn := scene.NewScene("main", camera.NewCamera(), scene.WithObjects(texturedObject()))
	o := rig.orchestrator(t, scn)

	status, err := o.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, StatusPresented, status)
	assert.Equal(t, uint64(1), o.FrameNumber())
	assert.Equal(t, uint64(1), o.PresentedFrames())
	assert.Equal(t, 1, rig.backend.PresentedFrames())

	stats := rig.backend.LastFrame()
	assert.Equal(t, 1, stats.Draws)
	assert.Equal(t, 1, stats.PipelineBinds)
	// Material, camera projection, camera pose, and object pose groups.
	assert.Equal(t, 4, stats.BindGroupSets)

	// Camera projection, camera pose, and object pose each synced once.
	assert.Equal(t, uint64(3), rig.resources.UploadCount())
}

func TestRenderFrameFlatTriangleBindsNothing(t *testing.T) {
	rig := newTestRig(t)
	scn := scene.NewScene("main", camera.NewCamera(), scene.WithObjects(flatObject()))
	o := rig.orchestrator(t, scn)

	status, err := o.RenderFrame()
	require.NoError(t, err)
	require.Equal(t, StatusPresented, status)

	// The flat program declares no binding groups, so the draw sets none and
	// no material GPU state is created for it.
	stats := rig.backend.LastFrame()
	assert.Equal(t, 1, stats.Draws)
	assert.Equal(t, 1, stats.PipelineBinds)
	assert.Equal(t, 0, stats.BindGroupSets)
}

func TestRenderFrameSharedPipeline(t *testing.T) {
	rig := newTestRig(t)
	scn := scene.NewScene("main", camera.NewCamera(), scene.WithObjects(
		texturedObject(),
		texturedObject(),
	))
	o := rig.orchestrator(t, scn)

	status, err := o.RenderFrame()
	require.NoError(t, err)
	require.Equal(t, StatusPresented, status)

	// Two objects on the same pipeline: one bind, two draws, each with its own
	// object pose group.
	stats := rig.backend.LastFrame()
	assert.Equal(t, 2, stats.Draws)
	assert.Equal(t, 1, stats.PipelineBinds)
	assert.Equal(t, 8, stats.BindGroupSets)
}

func TestRenderFrameStaticSceneUploadsNothing(t *testing.T) {
	rig := newTestRig(t)
	obj := texturedObject()
	scn := scene.NewScene("main", camera.NewCamera(), scene.WithObjects(obj))
	o := rig.orchestrator(t, scn)

	status, err := o.RenderFrame()
	require.NoError(t, err)
	require.Equal(t, StatusPresented, status)
	afterFirst := rig.resources.UploadCount()

	// Nothing moved, so the second frame draws without a single upload.
	status, err = o.RenderFrame()
	require.NoError(t, err)
	require.Equal(t, StatusPresented, status)
	assert.Equal(t, afterFirst, rig.resources.UploadCount())
	assert.Equal(t, 1, rig.backend.LastFrame().Draws)

	// Moving one object costs exactly one upload.
	obj.Transform().SetPosition(1, 0, 0)
	status, err = o.RenderFrame()
	require.NoError(t, err)
	require.Equal(t, StatusPresented, status)
	assert.Equal(t, afterFirst+1, rig.resources.UploadCount())
}

func TestRenderFrameCameraDirtySync(t *testing.T) {
	rig := newTestRig(t)
	cam := camera.NewCamera()
	scn := scene.NewScene("main", cam, scene.WithObjects(texturedObject()))
	o := rig.orchestrator(t, scn)

	_, err := o.RenderFrame()
	require.NoError(t, err)
	base := rig.resources.UploadCount()

	// A projection change re-uploads the projection buffer only.
	cam.SetPerspective(70, 1.5, 0.1, 100)
	_, err = o.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, base+1, rig.resources.UploadCount())

	// A pose change re-uploads the pose buffer only.
	cam.Pose().SetPosition(0, 1, 5)
	_, err = o.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, base+2, rig.resources.UploadCount())
}

func TestRenderFrameSurfaceLostRecovery(t *testing.T) {
	rig := newTestRig(t)
	scn := scene.NewScene("main", camera.NewCamera(), scene.WithObjects(texturedObject()))
	o := rig.orchestrator(t, scn)

	rig.backend.InjectAcquireError(renderer.ErrSurfaceLost)

	// The loss is handled internally: the frame aborts without an error and
	// the surface is reconfigured for the next one.
	status, err := o.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, StatusAborted, status)
	assert.Equal(t, uint64(0), o.PresentedFrames())

	status, err = o.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, StatusPresented, status)
	assert.Equal(t, uint64(1), o.PresentedFrames())
}

func TestRenderFrameSurfaceTimeoutSkips(t *testing.T) {
	rig := newTestRig(t)
	scn := scene.NewScene("main", camera.NewCamera(), scene.WithObjects(texturedObject()))
	o := rig.orchestrator(t, scn)

	configures := rig.backend.SurfaceConfigures()
	rig.backend.InjectAcquireError(renderer.ErrSurfaceTimeout)

	// A timed out acquisition skips the frame; unlike a lost surface it does
	// not reconfigure, the next acquisition simply succeeds.
	status, err := o.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, StatusAborted, status)
	assert.Equal(t, configures, rig.backend.SurfaceConfigures())

	status, err = o.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, StatusPresented, status)
}

func TestRenderFrameSurfaceLostReconfigures(t *testing.T) {
	rig := newTestRig(t)
	scn := scene.NewScene("main", camera.NewCamera(), scene.WithObjects(texturedObject()))
	o := rig.orchestrator(t, scn)

	configures := rig.backend.SurfaceConfigures()
	rig.backend.InjectAcquireError(renderer.ErrSurfaceLost)

	_, err := o.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, configures+1, rig.backend.SurfaceConfigures())
}

func TestMidFrameAbortDiscardsFrame(t *testing.T) {
	rig := newTestRig(t)

	// The material names a pipeline that was never registered, so Update fails
	// after the surface image is already acquired.
	orphan := object.NewObject(mesh.Cube(), material.NewMaterial(
		material.WithName("orphan"),
		material.WithPipelineKey("unregistered"),
	))
	scn := scene.NewScene("main", camera.NewCamera(), scene.WithObjects(orphan))
	o := rig.orchestrator(t, scn)

	status, err := o.RenderFrame()
	assert.Equal(t, StatusAborted, status)
	require.Error(t, err)

	// The aborted frame was discarded, not presented.
	assert.Equal(t, 0, rig.backend.PresentedFrames())
	assert.Equal(t, 1, rig.backend.DiscardedFrames())
	assert.Equal(t, uint64(0), o.PresentedFrames())

	// The surface image was released, so rendering resumes once the scene is
	// drawable again.
	scn.Remove(orphan.ID())
	scn.Add(texturedObject())
	status, err = o.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, StatusPresented, status)
	assert.Equal(t, 1, rig.backend.PresentedFrames())
	assert.Equal(t, 1, rig.backend.DiscardedFrames())
}

func TestRenderFramePresentLostAborts(t *testing.T) {
	rig := newTestRig(t)
	scn := scene.NewScene("main", camera.NewCamera(), scene.WithObjects(texturedObject()))
	o := rig.orchestrator(t, scn)

	rig.backend.InjectPresentError(renderer.ErrSurfaceLost)

	status, err := o.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, StatusAborted, status)
	assert.Equal(t, 0, rig.backend.PresentedFrames())

	status, err = o.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, StatusPresented, status)
}

func TestRenderFrameOutOfMemoryIsFatal(t *testing.T) {
	rig := newTestRig(t)
	scn := scene.NewScene("main", camera.NewCamera(), scene.WithObjects(texturedObject()))
	o := rig.orchestrator(t, scn)

	rig.backend.InjectPresentError(renderer.ErrSurfaceOutOfMemory)

	status, err := o.RenderFrame()
	assert.Equal(t, StatusAborted, status)
	require.ErrorIs(t, err, renderer.ErrSurfaceOutOfMemory)

	// The failure latches: every later frame fails the same way without
	// touching the surface again.
	status, err = o.RenderFrame()
	assert.Equal(t, StatusAborted, status)
	require.ErrorIs(t, err, renderer.ErrSurfaceOutOfMemory)
	assert.Equal(t, 0, rig.backend.PresentedFrames())
}

func TestRecordSortsByPipeline(t *testing.T) {
	rig := newTestRig(t)
	// Interleave the two pipelines in insertion order; sorting at Record
	// still binds each pipeline exactly once.
	scn := scene.NewScene("main", camera.NewCamera(), scene.WithObjects(
		texturedObject(),
		flatObject(),
		texturedObject(),
		flatObject(),
	))
	o := rig.orchestrator(t, scn)

	status, err := o.RenderFrame()
	require.NoError(t, err)
	require.Equal(t, StatusPresented, status)

	stats := rig.backend.LastFrame()
	assert.Equal(t, 4, stats.Draws)
	assert.Equal(t, 2, stats.PipelineBinds)
	// Flat draws bind no groups; the two textured draws bind four each.
	assert.Equal(t, 8, stats.BindGroupSets)
}

func TestPipelineDestroyRebuildRoundTrip(t *testing.T) {
	rig := newTestRig(t)
	scn := scene.NewScene("main", camera.NewCamera(), scene.WithObjects(texturedObject()))
	o := rig.orchestrator(t, scn)

	status, err := o.RenderFrame()
	require.NoError(t, err)
	require.Equal(t, StatusPresented, status)
	before := rig.backend.LastFrame()

	// Destroy the pipeline and rebuild it from the same shader sources; the
	// rebuilt pipeline must drive the same draw output.
	require.NoError(t, rig.renderer.DestroyPipeline(shader.PipelineKeyTexturedMesh))

	meshVert, meshFrag := shader.TexturedMeshShaders()
	require.NoError(t, rig.renderer.RegisterPipelines(
		pipeline.NewPipeline(shader.PipelineKeyTexturedMesh,
			pipeline.WithVertexShader(meshVert),
			pipeline.WithFragmentShader(meshFrag),
		),
	))

	status, err = o.RenderFrame()
	require.NoError(t, err)
	require.Equal(t, StatusPresented, status)
	assert.Equal(t, before, rig.backend.LastFrame())
	assert.Equal(t, 2, rig.backend.PresentedFrames())
}

func TestPhaseOrderEnforced(t *testing.T) {
	rig := newTestRig(t)
	scn := scene.NewScene("main", camera.NewCamera(), scene.WithObjects(flatObject()))
	o := rig.orchestrator(t, scn)

	assert.Error(t, o.Update())
	assert.Error(t, o.Record())
	assert.Error(t, o.Submit())
	_, err := o.Present()
	assert.Error(t, err)

	require.NoError(t, o.Begin())
	assert.Error(t, o.Begin())
	assert.Error(t, o.Record())

	require.NoError(t, o.Update())
	require.NoError(t, o.Record())
	assert.Error(t, o.Update())

	require.NoError(t, o.Submit())
	status, err := o.Present()
	require.NoError(t, err)
	assert.Equal(t, StatusPresented, status)
}

func TestUpdateIsIdempotentWithinFrame(t *testing.T) {
	rig := newTestRig(t)
	scn := scene.NewScene("main", camera.NewCamera(), scene.WithObjects(texturedObject()))
	o := rig.orchestrator(t, scn)

	require.NoError(t, o.Begin())
	require.NoError(t, o.Update())
	afterFirst := rig.resources.UploadCount()

	// The second Update finds no stale generations.
	require.NoError(t, o.Update())
	assert.Equal(t, afterFirst, rig.resources.UploadCount())

	require.NoError(t, o.Record())
	require.NoError(t, o.Submit())
	_, err := o.Present()
	require.NoError(t, err)
}

func TestDisabledObjectSkippedButStateKept(t *testing.T) {
	rig := newTestRig(t)
	obj := texturedObject()
	scn := scene.NewScene("main", camera.NewCamera(), scene.WithObjects(obj))
	o := rig.orchestrator(t, scn)

	_, err := o.RenderFrame()
	require.NoError(t, err)
	require.Equal(t, 1, rig.backend.LastFrame().Draws)
	live := rig.backend.LiveResources()

	obj.SetEnabled(false)
	_, err = o.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, 0, rig.backend.LastFrame().Draws)
	assert.Equal(t, live, rig.backend.LiveResources())

	// Re-enabling draws again without recreating anything.
	obj.SetEnabled(true)
	_, err = o.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, 1, rig.backend.LastFrame().Draws)
	assert.Equal(t, live, rig.backend.LiveResources())
}

func TestRemovedObjectStatePruned(t *testing.T) {
	rig := newTestRig(t)
	a := texturedObject()
	b := texturedObject()
	scn := scene.NewScene("main", camera.NewCamera(), scene.WithObjects(a, b))
	o := rig.orchestrator(t, scn)

	_, err := o.RenderFrame()
	require.NoError(t, err)
	live := rig.backend.LiveResources()

	scn.Remove(b.ID())
	_, err = o.RenderFrame()
	require.NoError(t, err)

	// The removed object's pose buffer and binding group are reclaimed.
	assert.Equal(t, live-2, rig.backend.LiveResources())
	assert.Equal(t, 1, rig.backend.LastFrame().Draws)
}

func TestPendingTextureSkipsObject(t *testing.T) {
	rig := newTestRig(t)

	// An image that never decodes keeps the texture handle pending forever,
	// which keeps its material off the frame without failing it.
	handle, ticket := rig.resources.LoadTextureAsync("broken", &common.ImageTexture{
		Name: "broken",
		Data: []byte("not an image"),
	})
	require.Error(t, ticket.Wait())

	obj := object.NewObject(mesh.Cube(), material.NewMaterial(
		material.WithName("pending"),
		material.WithPipelineKey(shader.PipelineKeyTexturedMesh),
		material.WithTextureHandle(handle),
	))
	scn := scene.NewScene("main", camera.NewCamera(), scene.WithObjects(obj, flatObject()))
	o := rig.orchestrator(t, scn)

	status, err := o.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, StatusPresented, status)
	// Only the flat object made it into the frame.
	assert.Equal(t, 1, rig.backend.LastFrame().Draws)
}

func TestReleaseReclaimsAllState(t *testing.T) {
	rig := newTestRig(t)
	baseline := rig.backend.LiveResources()

	scn := scene.NewScene("main", camera.NewCamera(), scene.WithObjects(
		texturedObject(),
		flatObject(),
	))
	o := NewOrchestrator(rig.renderer, rig.resources, scn)

	_, err := o.RenderFrame()
	require.NoError(t, err)
	require.Greater(t, rig.backend.LiveResources(), baseline)

	o.Release()
	assert.Equal(t, baseline, rig.backend.LiveResources())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "presented", StatusPresented.String())
	assert.Equal(t, "aborted", StatusAborted.String())
}
