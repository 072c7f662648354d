package config

import "github.com/ember3d/ember-go/engine/renderer"

// BackendType maps the configured backend string to a renderer backend type.
// Unknown values fall back to the WGPU backend; Validate catches them earlier
// when configs are loaded through Load.
//
// Returns:
//   - renderer.RendererBackendType: the backend type to construct
func (c RendererConfig) BackendType() renderer.RendererBackendType {
	if c.Backend == "headless" {
		return renderer.BackendTypeHeadless
	}
	return renderer.BackendTypeWGPU
}

// Mode maps the configured present mode string to a renderer present mode.
//
// Returns:
//   - renderer.PresentMode: the present mode to apply
func (c RendererConfig) Mode() renderer.PresentMode {
	if c.PresentMode == "uncapped" {
		return renderer.PresentModeUncapped
	}
	return renderer.PresentModeVSync
}

// Samples maps the configured MSAA count to a renderer sample count.
//
// Returns:
//   - renderer.MSAASampleCount: the sample count to apply
func (c RendererConfig) Samples() renderer.MSAASampleCount {
	switch c.MSAA {
	case 4:
		return renderer.MSAA4x
	case 8:
		return renderer.MSAA8x
	case 16:
		return renderer.MSAA16x
	default:
		return renderer.MSAAOff
	}
}
