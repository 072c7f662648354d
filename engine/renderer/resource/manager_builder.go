package resource

// ManagerBuilderOption is a functional option for configuring a Manager.
// Use the With* functions to create options that are applied directly to the manager instance.
type ManagerBuilderOption func(*managerImpl)

// WithUploadWorkers sets the number of background upload workers.
// Values <= 0 fall back to the default.
//
// Parameters:
//   - workers: worker count for the upload pool
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithUploadWorkers(workers int) ManagerBuilderOption {
	return func(m *managerImpl) {
		if workers <= 0 {
			workers = defaultUploadWorkers
		}
		m.uploads = newUploadQueue(workers)
	}
}
