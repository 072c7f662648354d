package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/ember3d/ember-go/engine/camera"
	"github.com/ember3d/ember-go/engine/mesh"
	"github.com/ember3d/ember-go/engine/object"
	"github.com/ember3d/ember-go/engine/renderer"
	"github.com/ember3d/ember-go/engine/renderer/material"
	"github.com/ember3d/ember-go/engine/renderer/pipeline"
	"github.com/ember3d/ember-go/engine/renderer/shader"
	"github.com/ember3d/ember-go/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHeadlessEngine(t *testing.T) Engine {
	t.Helper()
	e := NewEngine()
	t.Cleanup(func() {
		e.Quit()
		e.Resources().Release()
		e.Renderer().Release()
	})
	return e
}

func TestNewEngineDefaults(t *testing.T) {
	e := newHeadlessEngine(t)

	assert.Nil(t, e.Window())
	require.NotNil(t, e.Renderer())
	require.NotNil(t, e.Resources())
	assert.Equal(t, renderer.BackendTypeHeadless, e.Renderer().BackendType())
	assert.Empty(t, e.Scenes())
}

func TestEngineSceneRegistry(t *testing.T) {
	e := newHeadlessEngine(t)

	hud := scene.NewScene("hud", camera.NewCamera())
	world := scene.NewScene("world", camera.NewCamera())

	e.AddScene(1, hud)
	e.AddScene(0, world)

	assert.Equal(t, hud, e.Scene(1))
	assert.Equal(t, world, e.Scene(0))
	assert.Nil(t, e.Scene(7))
	assert.Len(t, e.Scenes(), 2)

	// The returned map is a copy.
	delete(e.Scenes(), 0)
	assert.Len(t, e.Scenes(), 2)

	e.RemoveScene(0)
	assert.Nil(t, e.Scene(0))
	assert.Len(t, e.Scenes(), 1)
}

func TestEngineRunsHeadlessScene(t *testing.T) {
	e := newHeadlessEngine(t)

	flatVert, flatFrag := shader.FlatTriangleShaders()
	require.NoError(t, e.Renderer().RegisterPipelines(
		pipeline.NewPipeline(shader.PipelineKeyFlatTriangle,
			pipeline.WithVertexShader(flatVert),
			pipeline.WithFragmentShader(flatFrag),
		),
	))

	obj := object.NewObject(mesh.Triangle(), material.NewMaterial(
		material.WithName("flat"),
		material.WithPipelineKey(shader.PipelineKeyFlatTriangle),
	))
	e.AddScene(0, scene.NewScene("main", camera.NewCamera(),
		scene.WithActive(true),
		scene.WithObjects(obj),
	))

	var ticks, frames atomic.Int64
	e.SetTickCallback(func(float32) { ticks.Add(1) })
	e.SetRenderCallback(func(float32) { frames.Add(1) })
	e.SetTickRate(240)
	e.SetRenderFrameLimit(240)

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	// Give the loops a few iterations, then shut down.
	deadline := time.After(2 * time.Second)
	for frames.Load() < 3 || ticks.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("engine loops did not progress in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
	e.Quit()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}

	hb, ok := e.Renderer().Backend().(renderer.HeadlessBackend)
	require.True(t, ok)
	assert.Greater(t, hb.PresentedFrames(), 0)
	assert.Equal(t, 1, hb.LastFrame().Draws)
}
