package resource

import (
	"errors"
	"fmt"
)

// ErrInvalidHandle is returned when an operation references a handle that was
// never issued or whose resource has already been destroyed. Handles are
// never reused, so a stale handle stays invalid forever.
var ErrInvalidHandle = errors.New("invalid resource handle")

// ErrLayoutMismatch is returned when supplied data or resources do not match
// the expected layout: a uniform write whose size differs from the buffer, or
// binding group resources that do not fit the fixed group layout.
var ErrLayoutMismatch = errors.New("layout mismatch")

// ErrUploadPending is returned when a binding group references a texture
// whose background upload has not completed yet. Wait on the UploadTicket
// before creating binding groups that reference the texture.
var ErrUploadPending = errors.New("texture upload pending")

// AllocationError reports a backend failure while allocating a GPU resource.
type AllocationError struct {
	// Label is the resource label that failed to allocate.
	Label string

	// Err is the underlying backend error.
	Err error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("failed to allocate GPU resource %q: %v", e.Label, e.Err)
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

// DanglingReferenceError reports an attempt to destroy a resource that is
// still referenced by one or more live binding groups. The destroy is
// refused; release the binding groups first.
type DanglingReferenceError struct {
	// Kind names the resource kind ("buffer", "texture", "sampler").
	Kind string

	// Label is the resource label.
	Label string

	// Refs is the number of live binding groups still referencing it.
	Refs int
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("cannot destroy %s %q: still referenced by %d binding group(s)", e.Kind, e.Label, e.Refs)
}
