package engine

import (
	"time"

	"github.com/ember3d/ember-go/engine/renderer"
	"github.com/ember3d/ember-go/engine/renderer/resource"
	"github.com/ember3d/ember-go/engine/scene"
	"github.com/ember3d/ember-go/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: true to enable profiling output
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the initial engine tick rate in frames per second.
// Defaults to 60 when not set or when fps <= 0.
//
// Parameters:
//   - fps: target ticks per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithWindow attaches a window to the engine. The engine takes over the
// window's resize callback to keep renderers and cameras in sync with the
// surface size.
//
// Parameters:
//   - w: the window to attach
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer supplies the renderer the engine drives. When omitted, the
// engine constructs a headless renderer.
//
// Parameters:
//   - r: the renderer to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.r = r
	}
}

// WithResourceManager supplies the GPU resource manager the engine's frame
// orchestrators allocate through. When omitted, one is created against the
// renderer's device.
//
// Parameters:
//   - m: the resource manager to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithResourceManager(m resource.Manager) EngineBuilderOption {
	return func(e *engine) {
		e.resources = m
	}
}

// WithScene registers a scene at the given z-index key. Scenes render in
// ascending key order.
//
// Parameters:
//   - key: the z-index determining render order (lower renders first)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}

// WithRenderFrameLimit caps the render loop at the given frames per second.
// Pass 0 (or omit) for an uncapped render loop.
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}
