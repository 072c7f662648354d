package scene

import (
	"testing"

	"github.com/ember3d/ember-go/engine/camera"
	"github.com/ember3d/ember-go/engine/mesh"
	"github.com/ember3d/ember-go/engine/object"
	"github.com/ember3d/ember-go/engine/renderer/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestObject() object.Object {
	return object.NewObject(mesh.Triangle(), material.NewMaterial(
		material.WithName("flat"),
		material.WithPipelineKey("flat_triangle"),
	))
}

func TestNewSceneRequiresCamera(t *testing.T) {
	assert.Panics(t, func() { NewScene("broken", nil) })
}

func TestNewSceneDefaults(t *testing.T) {
	cam := camera.NewCamera()
	s := NewScene("main", cam)

	assert.Equal(t, "main", s.Name())
	assert.False(t, s.Active())
	assert.Equal(t, cam, s.ActiveCamera())
	assert.Equal(t, 0, s.Count())
}

func TestSceneAddGetRemove(t *testing.T) {
	s := NewScene("main", camera.NewCamera())
	a := newTestObject()
	b := newTestObject()

	s.Add(a, b)
	assert.Equal(t, 2, s.Count())
	assert.Equal(t, a, s.Get(a.ID()))
	assert.Nil(t, s.Get(a.ID()+1000))

	// Duplicate adds are ignored.
	s.Add(a)
	assert.Equal(t, 2, s.Count())

	s.Remove(a.ID())
	assert.Equal(t, 1, s.Count())
	assert.Nil(t, s.Get(a.ID()))
	assert.Equal(t, b, s.Get(b.ID()))

	// Removing an unknown ID is a no-op.
	s.Remove(a.ID())
	assert.Equal(t, 1, s.Count())
}

func TestSceneSnapshotIsolation(t *testing.T) {
	s := NewScene("main", camera.NewCamera())
	a := newTestObject()
	b := newTestObject()
	s.Add(a, b)

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	// Insertion order is preserved.
	assert.Equal(t, a.ID(), snap[0].ID())
	assert.Equal(t, b.ID(), snap[1].ID())

	// Mutating the scene after the snapshot does not change it.
	s.Remove(a.ID())
	assert.Len(t, snap, 2)
	assert.Len(t, s.Snapshot(), 1)
}

func TestSceneRemovePreservesOrder(t *testing.T) {
	s := NewScene("main", camera.NewCamera())
	a := newTestObject()
	b := newTestObject()
	c := newTestObject()
	s.Add(a, b, c)

	s.Remove(b.ID())
	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, a.ID(), snap[0].ID())
	assert.Equal(t, c.ID(), snap[1].ID())

	// Index stays consistent after the splice.
	assert.Equal(t, c, s.Get(c.ID()))
}

func TestSceneClear(t *testing.T) {
	s := NewScene("main", camera.NewCamera())
	s.Add(newTestObject(), newTestObject())

	s.Clear()
	assert.Equal(t, 0, s.Count())
	assert.Empty(t, s.Snapshot())
}

func TestSceneOptionsAndSetters(t *testing.T) {
	obj := newTestObject()
	s := NewScene("overlay", camera.NewCamera(),
		WithActive(true),
		WithObjects(obj),
	)

	assert.True(t, s.Active())
	assert.Equal(t, 1, s.Count())

	s.SetActive(false)
	assert.False(t, s.Active())

	s.SetName("hud")
	assert.Equal(t, "hud", s.Name())

	replacement := camera.NewCamera()
	s.SetCamera(replacement)
	assert.Equal(t, replacement, s.ActiveCamera())
	assert.Panics(t, func() { s.SetCamera(nil) })
}
