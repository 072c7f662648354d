package shader

import "fmt"

// CompileError reports a backend shader module compilation failure with the
// diagnostics the backend produced.
type CompileError struct {
	// Key is the shader key that failed to compile.
	Key string

	// Diagnostics carries the backend's compiler output.
	Diagnostics string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("shader %q failed to compile: %s", e.Key, e.Diagnostics)
}
