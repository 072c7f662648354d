package renderer

import "errors"

var (
	// ErrSurfaceLost reports that the presentation surface was lost or became
	// outdated, typically after a window resize or display change. The surface
	// must be reconfigured before another frame can be acquired; the frame
	// that observed the error is skipped, not retried.
	ErrSurfaceLost = errors.New("presentation surface lost")

	// ErrSurfaceTimeout reports that acquiring the next frame image timed
	// out. The surface is still valid: the frame is skipped without
	// reconfiguring and the next acquisition is expected to succeed.
	ErrSurfaceTimeout = errors.New("presentation surface acquisition timed out")

	// ErrSurfaceOutOfMemory reports that the surface could not allocate a
	// frame image. This is not recoverable by reconfiguration.
	ErrSurfaceOutOfMemory = errors.New("presentation surface out of memory")
)
