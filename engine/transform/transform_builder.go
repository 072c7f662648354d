package transform

// TransformBuilderOption is a functional option for configuring a Transform.
// Use the With* functions to create options that are applied directly to the transform instance.
type TransformBuilderOption func(*transformImpl)

// WithPosition sets the initial position.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - TransformBuilderOption: option function to apply
func WithPosition(x, y, z float32) TransformBuilderOption {
	return func(t *transformImpl) {
		t.position = [3]float32{x, y, z}
		t.generation.Add(1)
	}
}

// WithRotation sets the initial Euler rotation in radians.
//
// Parameters:
//   - rx, ry, rz: rotation angles
//
// Returns:
//   - TransformBuilderOption: option function to apply
func WithRotation(rx, ry, rz float32) TransformBuilderOption {
	return func(t *transformImpl) {
		t.rotation = [3]float32{rx, ry, rz}
		t.generation.Add(1)
	}
}

// WithScale sets the initial per-axis scale.
//
// Parameters:
//   - sx, sy, sz: scale factors
//
// Returns:
//   - TransformBuilderOption: option function to apply
func WithScale(sx, sy, sz float32) TransformBuilderOption {
	return func(t *transformImpl) {
		t.scale = [3]float32{sx, sy, sz}
		t.generation.Add(1)
	}
}
