package object

import "github.com/ember3d/ember-go/engine/transform"

// ObjectOption is a functional option for configuring an Object.
// Use the With* functions to create options that are applied directly to the object instance.
type ObjectOption func(*object)

// WithLabel sets the object's human-readable label.
//
// Parameters:
//   - label: the label to use
//
// Returns:
//   - ObjectOption: option function to apply
func WithLabel(label string) ObjectOption {
	return func(o *object) {
		o.label = label
	}
}

// WithTransform sets the object's pose.
//
// Parameters:
//   - t: the transform to use (nil keeps the default identity transform)
//
// Returns:
//   - ObjectOption: option function to apply
func WithTransform(t transform.Transform) ObjectOption {
	return func(o *object) {
		if t != nil {
			o.transform = t
		}
	}
}

// WithEnabled sets whether the object starts enabled.
//
// Parameters:
//   - enabled: true to draw the object, false to skip it
//
// Returns:
//   - ObjectOption: option function to apply
func WithEnabled(enabled bool) ObjectOption {
	return func(o *object) {
		o.enabled = enabled
	}
}
