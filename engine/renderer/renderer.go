package renderer

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ember3d/ember-go/engine/renderer/layout"
	"github.com/ember3d/ember-go/engine/renderer/pipeline"
	"github.com/ember3d/ember-go/engine/renderer/resource"
	"github.com/ember3d/ember-go/engine/renderer/shader"
	"github.com/ember3d/ember-go/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend
	fixedLayout layout.GroupLayout

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	headlessWidth        int
	headlessHeight       int
}

// Renderer defines the interface for the rendering system.
//
// This is a high-level API designed to simplify rendering tasks into a streamlined and idiomatic flow.
// The Renderer manages a cache of pipelines keyed by pipeline key, validates every pipeline's declared
// bindings against the engine's fixed binding layout before any GPU work, and implements a backend
// which allows for multiple backend API implementations to exist.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves the entire cache of Pipelines.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines registers one or more pipelines. For each pipeline the declared
	// bind group layouts of its shader pair are merged, validated against the fixed
	// binding layout, and only then turned into a GPU pipeline object via the backend.
	// A validation failure leaves no GPU state behind. Pipelines whose keys are already
	// registered are skipped to avoid duplicate GPU resource creation.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: a *layout.IncompatibleError if a pipeline's declared bindings do not
	//     match the fixed layout, a *shader.CompileError if a shader fails to compile,
	//     or another error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// DestroyPipeline removes the pipeline with the given key from the cache and
	// releases its backend pipeline object. The pipeline's shader sources are
	// untouched, so registering it again rebuilds an equivalent pipeline.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to destroy
	//
	// Returns:
	//   - error: an error if no pipeline with that key is registered
	DestroyPipeline(key string) error

	// Device returns the backend's device interface for GPU resource allocation.
	// This is what a resource.Manager should be constructed against.
	//
	// Returns:
	//   - resource.Device: the backend device
	Device() resource.Device

	// Backend returns the underlying RendererBackend. Tests use this to reach
	// the headless backend's recording queries.
	//
	// Returns:
	//   - RendererBackend: the active backend
	Backend() RendererBackend

	// BackendType returns the type of the active backend.
	//
	// Returns:
	//   - RendererBackendType: the backend type selected at construction
	BackendType() RendererBackendType

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window, when the surface size should
	// change, and to recover the surface after ErrSurfaceLost.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// A call to Resize is required after changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires the next surface image and begins the main render pass.
	// Must be paired with EndFrame after all DrawCall invocations within a single frame.
	//
	// Returns:
	//   - error: ErrSurfaceLost or ErrSurfaceOutOfMemory when acquisition fails for a
	//     surface reason, or another error for any other failure
	BeginFrame() error

	// DrawCall looks up the cached render Pipeline by key, then encodes a single indexed
	// draw command within the current render pass. Multiple DrawCall invocations can be
	// made between BeginFrame and EndFrame.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached render Pipeline to use
	//   - vertexBuffer: the native vertex buffer object
	//   - indexBuffer: the native index buffer object (uint16 indices)
	//   - indexCount: the number of indices to draw
	//   - bindGroups: native binding group objects set at their slice index; nil entries are skipped
	//
	// Returns:
	//   - error: an error if the pipeline is not found
	DrawCall(pipelineKey string, vertexBuffer, indexBuffer any, indexCount uint32, bindGroups []any) error

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	// Does not present the surface — call Present() after EndFrame to display the frame.
	// Must be called after BeginFrame and all DrawCall invocations within a single frame.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished or submitted
	EndFrame() error

	// DiscardFrame abandons the in-flight frame without submitting or presenting
	// it. Used when frame recording fails partway: the acquired surface image is
	// released so the next BeginFrame can acquire a fresh one. A no-op when no
	// frame is in flight.
	DiscardFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	//
	// Returns:
	//   - error: ErrSurfaceLost or ErrSurfaceOutOfMemory when presentation fails for a
	//     surface reason
	Present() error

	// Release frees the backend's long-lived GPU objects. The renderer must not
	// be used after Release.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type.
// For BackendTypeWGPU a window is required; its surface descriptor is used to create
// the WebGPU surface. For BackendTypeHeadless the window may be nil, in which case
// the surface size comes from WithHeadlessSize or defaults to 1280x720.
//
// Parameters:
//   - backendType: the type of rendering backend to use (WGPU or Headless)
//   - window: the window providing the presentation surface, or nil for headless use
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:             &sync.Mutex{},
		pipelineCache:  make(map[string]pipeline.Pipeline),
		backendType:    backendType,
		fixedLayout:    layout.Default(),
		headlessWidth:  1280,
		headlessHeight: 720,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	width, height := r.headlessWidth, r.headlessHeight
	if window != nil {
		width, height = window.Width(), window.Height()
	}

	switch backendType {
	case BackendTypeHeadless:
		r.backend = newHeadlessRendererBackend(width, height)
	case BackendTypeWGPU:
		fallthrough
	default:
		if window == nil {
			panic("renderer: the WGPU backend requires a window")
		}
		msaa := MSAA4x // default
		if r.pendingMSAA != nil {
			msaa = *r.pendingMSAA
		}
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(width, height)
	return r
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Device() resource.Device {
	return r.backend
}

func (r *renderer) Backend() RendererBackend {
	return r.backend
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}

		vs := p.Shader(shader.ShaderTypeVertex)
		fs := p.Shader(shader.ShaderTypeFragment)
		if vs == nil || fs == nil {
			return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
		}

		// Structural validation runs before any backend work so a mismatched
		// pipeline leaves no GPU state behind.
		merged := mergeBindGroupLayouts(vs.BindGroupLayoutDescriptors(), fs.BindGroupLayoutDescriptors())
		if err := r.fixedLayout.ValidateDeclared(key, merged); err != nil {
			return err
		}

		if err := r.backend.RegisterRenderPipeline(p, merged); err != nil {
			return fmt.Errorf("failed to register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) DestroyPipeline(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.pipelineCache[key]
	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", key)
	}

	r.backend.DestroyRenderPipeline(p)
	delete(r.pipelineCache, key)
	return nil
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, vertexBuffer, indexBuffer any, indexCount uint32, bindGroups []any) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}

	r.backend.DrawCall(p, vertexBuffer, indexBuffer, indexCount, bindGroups)
	return nil
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) DiscardFrame() {
	r.backend.DiscardFrame()
}

func (r *renderer) Present() error {
	return r.backend.Present()
}

func (r *renderer) Release() {
	r.backend.Release()
}

// mergeBindGroupLayouts merges the bind group layout descriptors from a vertex and fragment shader
// into a unified set of descriptors suitable for a render pipeline layout.
//
// For each group index present in either shader:
//   - Entries with the same binding number have their Visibility flags ORed together
//   - Entries unique to one shader are included with their original visibility
//
// Parameters:
//   - vertexLayouts: bind group layout descriptors from the vertex shader
//   - fragmentLayouts: bind group layout descriptors from the fragment shader
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func mergeBindGroupLayouts(
	vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor,
) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor)

	// collect all group indices from both maps
	groupIndices := make(map[int]bool)
	for g := range vertexLayouts {
		groupIndices[g] = true
	}
	for g := range fragmentLayouts {
		groupIndices[g] = true
	}

	for g := range groupIndices {
		vDesc, hasV := vertexLayouts[g]
		fDesc, hasF := fragmentLayouts[g]

		switch {
		case hasV && !hasF:
			// group only in vertex shader — use as-is
			merged[g] = vDesc
		case hasF && !hasV:
			// group only in fragment shader — use as-is
			merged[g] = fDesc
		default:
			// group in both — merge entries by binding number
			entryMap := make(map[uint32]wgpu.BindGroupLayoutEntry)
			for _, e := range vDesc.Entries {
				entryMap[e.Binding] = e
			}
			for _, e := range fDesc.Entries {
				if existing, ok := entryMap[e.Binding]; ok {
					// same binding in both stages — OR the visibility
					existing.Visibility |= e.Visibility
					entryMap[e.Binding] = existing
				} else {
					entryMap[e.Binding] = e
				}
			}

			// flatten back to a sorted slice
			entries := make([]wgpu.BindGroupLayoutEntry, 0, len(entryMap))
			for _, e := range entryMap {
				entries = append(entries, e)
			}
			// sort by binding for deterministic layout
			sort.Slice(entries, func(i, j int) bool {
				return entries[i].Binding < entries[j].Binding
			})

			merged[g] = wgpu.BindGroupLayoutDescriptor{
				Label:   vDesc.Label, // or generate a composite label
				Entries: entries,
			}
		}
	}

	return merged
}
