package frame

// OrchestratorBuilderOption is a functional option applied to an orchestrator
// during construction via NewOrchestrator.
type OrchestratorBuilderOption func(*orchestratorImpl)

// WithSurfaceSize sets the surface size the orchestrator renders at and uses
// to reconfigure the surface after a surface loss. Defaults to 1280x720.
//
// Parameters:
//   - width: the surface width in pixels
//   - height: the surface height in pixels
//
// Returns:
//   - OrchestratorBuilderOption: option function to apply
func WithSurfaceSize(width, height int) OrchestratorBuilderOption {
	return func(o *orchestratorImpl) {
		o.surfaceWidth = width
		o.surfaceHeight = height
	}
}
