package renderer

import (
	"github.com/ember3d/ember-go/engine/renderer/pipeline"
	"github.com/ember3d/ember-go/engine/renderer/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeHeadless selects the in-memory recording backend. It performs
	// no GPU work and records every device and frame operation, which makes it
	// suitable for tests and for running the engine without a display.
	BackendTypeHeadless
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// Only specific power-of-two values are valid for GPU hardware. WebGPU guarantees support for
// 1 (off) and 4; higher values (8, 16) are adapter-dependent and may not be available.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA16x MSAASampleCount = 16
)

// RendererBackend is the device-facing interface implemented by each GPU
// backend. It embeds resource.Device so a resource.Manager can allocate
// buffers, textures, samplers, and binding groups directly against the
// backend, and adds surface configuration, pipeline registration, and the
// per-frame encode/submit/present operations.
type RendererBackend interface {
	resource.Device

	// ConfigureSurface is a wrapper for boilerplate logic required when configuring the
	// presentation surface. This is required when the surface size changes, such as when
	// the window is resized, and after the surface has been lost.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// A call to ConfigureSurface is required after changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// RegisterRenderPipeline creates the backend pipeline object for the given
	// pipeline using the merged bind group layout descriptors declared by its
	// shader pair. The caller validates the descriptors against the fixed
	// binding layout before invoking this; the backend performs GPU work only.
	// The created pipeline object is stored on the Pipeline via SetPipeline.
	//
	// Parameters:
	//   - p: the pipeline object containing the shader pair and fixed-function configuration
	//   - layouts: the merged bind group layout descriptors keyed by group index
	//
	// Returns:
	//   - error: a *shader.CompileError if a shader module fails to compile, or
	//     another error if pipeline creation fails
	RegisterRenderPipeline(p pipeline.Pipeline, layouts map[int]wgpu.BindGroupLayoutDescriptor) error

	// DestroyRenderPipeline releases the backend pipeline object held by the
	// given pipeline and clears it via SetPipeline(nil). The pipeline can be
	// registered again afterwards, rebuilding the backend object from the
	// same shader sources.
	//
	// Parameters:
	//   - p: the pipeline whose backend object should be released
	DestroyRenderPipeline(p pipeline.Pipeline)

	// BeginFrame acquires the next surface image and begins the main render pass.
	// Must be paired with EndFrame after all DrawCall invocations within a single frame.
	//
	// Returns:
	//   - error: ErrSurfaceLost or ErrSurfaceOutOfMemory when acquisition fails
	//     for a surface reason, or another error for any other failure
	BeginFrame() error

	// DrawCall encodes a single indexed draw command within the current render pass.
	// Setting the pipeline is skipped when the previous draw in this frame used the
	// same pipeline key. Multiple DrawCall invocations can be made between BeginFrame
	// and EndFrame.
	//
	// Parameters:
	//   - p: the cached Pipeline to draw with
	//   - vertexBuffer: the native vertex buffer object
	//   - indexBuffer: the native index buffer object (uint16 indices)
	//   - indexCount: the number of indices to draw
	//   - bindGroups: native binding group objects set at their slice index; nil entries are skipped
	DrawCall(p pipeline.Pipeline, vertexBuffer, indexBuffer any, indexCount uint32, bindGroups []any)

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	// Does not present the surface — call Present after EndFrame to display the frame.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished or submitted
	EndFrame() error

	// DiscardFrame abandons the in-flight frame: the render pass is ended
	// without submitting and the acquired surface image is released without
	// presenting. A no-op when no frame is in flight.
	DiscardFrame()

	// Present presents the acquired surface image to the display and releases it.
	// Must be called once per frame after EndFrame.
	//
	// Returns:
	//   - error: ErrSurfaceLost or ErrSurfaceOutOfMemory when presentation fails
	//     for a surface reason
	Present() error

	// Release frees the backend's long-lived GPU objects. The backend must not
	// be used after Release.
	Release()
}
