package object

import (
	"testing"

	"github.com/ember3d/ember-go/engine/mesh"
	"github.com/ember3d/ember-go/engine/renderer/material"
	"github.com/ember3d/ember-go/engine/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMaterial() material.Material {
	return material.NewMaterial(
		material.WithName("flat"),
		material.WithPipelineKey("flat_triangle"),
	)
}

func TestNewObjectDefaults(t *testing.T) {
	obj := NewObject(mesh.Triangle(), newTestMaterial())

	assert.NotZero(t, obj.ID())
	assert.NotEmpty(t, obj.Label())
	assert.True(t, obj.Enabled())
	require.NotNil(t, obj.Transform())
	require.NotNil(t, obj.Mesh())
	require.NotNil(t, obj.Material())
}

func TestNewObjectPanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewObject(nil, newTestMaterial()) })
	assert.Panics(t, func() { NewObject(mesh.Triangle(), nil) })
}

func TestObjectIDsUnique(t *testing.T) {
	a := NewObject(mesh.Triangle(), newTestMaterial())
	b := NewObject(mesh.Triangle(), newTestMaterial())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestObjectOptions(t *testing.T) {
	tr := transform.NewTransform(transform.WithPosition(1, 2, 3))
	obj := NewObject(mesh.Quad(), newTestMaterial(),
		WithLabel("player"),
		WithTransform(tr),
		WithEnabled(false),
	)

	assert.Equal(t, "player", obj.Label())
	assert.False(t, obj.Enabled())
	x, y, z := obj.Transform().Position()
	assert.Equal(t, float32(1), x)
	assert.Equal(t, float32(2), y)
	assert.Equal(t, float32(3), z)

	// A nil transform option keeps the default.
	fallback := NewObject(mesh.Quad(), newTestMaterial(), WithTransform(nil))
	assert.NotNil(t, fallback.Transform())
}

func TestObjectSetters(t *testing.T) {
	obj := NewObject(mesh.Triangle(), newTestMaterial())

	obj.SetEnabled(false)
	assert.False(t, obj.Enabled())
	obj.SetEnabled(true)
	assert.True(t, obj.Enabled())

	replacement := newTestMaterial()
	obj.SetMaterial(replacement)
	assert.Equal(t, replacement.ID(), obj.Material().ID())
}
