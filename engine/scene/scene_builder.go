package scene

import "github.com/ember3d/ember-go/engine/object"

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options that are applied directly to the scene instance.
type SceneBuilderOption func(*scene)

// WithActive sets whether the scene starts active for rendering.
//
// Parameters:
//   - active: true to start the scene active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithObjects adds the given objects to the scene at construction time.
//
// Parameters:
//   - objs: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objs ...object.Object) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objs {
			if obj == nil {
				continue
			}
			if _, exists := s.index[obj.ID()]; exists {
				continue
			}
			s.index[obj.ID()] = len(s.objects)
			s.objects = append(s.objects, obj)
		}
	}
}
