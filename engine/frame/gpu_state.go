package frame

import (
	"errors"
	"fmt"

	"github.com/ember3d/ember-go/engine/camera"
	"github.com/ember3d/ember-go/engine/mesh"
	"github.com/ember3d/ember-go/engine/object"
	"github.com/ember3d/ember-go/engine/renderer/layout"
	"github.com/ember3d/ember-go/engine/renderer/material"
	"github.com/ember3d/ember-go/engine/renderer/resource"
	"github.com/ember3d/ember-go/engine/renderer/shader"
)

// Per-entity GPU state owned by the orchestrator. Domain objects never hold
// GPU handles themselves (materials may carry pre-created texture and sampler
// handles for async loads); everything created here is keyed by entity ID and
// reclaimed when the entity stops appearing in snapshots or at Release.

type meshState struct {
	vertexBuffer resource.BufferHandle
	indexBuffer  resource.BufferHandle
	indexCount   uint32
}

type materialState struct {
	texture resource.TextureHandle
	sampler resource.SamplerHandle
	group   resource.BindGroupHandle

	// Handles supplied by the material itself (async loads) are not owned and
	// must not be destroyed when this state is reclaimed.
	ownsTexture bool
	ownsSampler bool
}

type objectState struct {
	buffer resource.BufferHandle
	group  resource.BindGroupHandle

	// generation last synced to the GPU. States start at zero and transform
	// generations start at one, so a fresh state always syncs once.
	generation uint64
}

type cameraState struct {
	projectionBuffer resource.BufferHandle
	poseBuffer       resource.BufferHandle
	projectionGroup  resource.BindGroupHandle
	poseGroup        resource.BindGroupHandle

	projectionGeneration uint64
	poseGeneration       uint64
}

// drawItem is one enabled object ready to record, assembled during Update.
type drawItem struct {
	pipelineKey string
	objectID    uint64
	mesh        *meshState
	material    *materialState
	object      *objectState
}

func (o *orchestratorImpl) ensureMesh(m mesh.Mesh) (*meshState, error) {
	if st, exists := o.meshStates[m.ID()]; exists {
		return st, nil
	}

	vertexData := m.VertexData()
	vb, err := o.resources.CreateBuffer(m.Label()+"_vertices", resource.BufferKindVertex, uint64(len(vertexData)), vertexData)
	if err != nil {
		return nil, err
	}
	indexData := m.IndexData()
	ib, err := o.resources.CreateBuffer(m.Label()+"_indices", resource.BufferKindIndex, uint64(len(indexData)), indexData)
	if err != nil {
		_ = o.resources.DestroyBuffer(vb)
		return nil, err
	}

	st := &meshState{vertexBuffer: vb, indexBuffer: ib, indexCount: m.IndexCount()}
	o.meshStates[m.ID()] = st
	return st, nil
}

// ensureMaterial builds the material's texture, sampler, and group 0 binding
// group. A material whose texture is still uploading keeps a partial state
// with a zero group handle; the binding group is retried on later frames and
// ErrUploadPending is reported to the caller until the upload fence clears.
func (o *orchestratorImpl) ensureMaterial(mat material.Material) (*materialState, error) {
	st, exists := o.materialStates[mat.ID()]
	if exists && st.group != 0 {
		return st, nil
	}

	if !exists {
		st = &materialState{}
		if h := mat.TextureHandle(); h != 0 {
			st.texture = h
		} else {
			h, err := o.resources.LoadTexture(mat.Name()+"_texture", mat.TextureData())
			if err != nil {
				return nil, err
			}
			st.texture = h
			st.ownsTexture = true
		}
		if h := mat.SamplerHandle(); h != 0 {
			st.sampler = h
		} else {
			h, err := o.resources.CreateSampler(mat.Name()+"_sampler", mat.Filter())
			if err != nil {
				if st.ownsTexture {
					_ = o.resources.DestroyTexture(st.texture)
				}
				return nil, err
			}
			st.sampler = h
			st.ownsSampler = true
		}
		o.materialStates[mat.ID()] = st
	}

	group, err := o.resources.CreateBindingGroup(layout.GroupMaterial, resource.GroupResources{
		Texture: st.texture,
		Sampler: st.sampler,
	})
	if err != nil {
		return st, err
	}
	st.group = group
	return st, nil
}

func (o *orchestratorImpl) ensureObject(obj object.Object) (*objectState, error) {
	if st, exists := o.objectStates[obj.ID()]; exists {
		return st, nil
	}

	buf, err := o.resources.CreateBuffer(obj.Label()+"_pose", resource.BufferKindUniform, layout.TransformUniformSize, nil)
	if err != nil {
		return nil, err
	}
	group, err := o.resources.CreateBindingGroup(layout.GroupObjectPose, resource.GroupResources{Buffer: buf})
	if err != nil {
		_ = o.resources.DestroyBuffer(buf)
		return nil, err
	}

	st := &objectState{buffer: buf, group: group}
	o.objectStates[obj.ID()] = st
	return st, nil
}

func (o *orchestratorImpl) ensureCamera(cam camera.Camera) (*cameraState, error) {
	if st, exists := o.cameraStates[cam]; exists {
		return st, nil
	}

	projBuf, err := o.resources.CreateBuffer(cam.Label()+"_projection", resource.BufferKindUniform, layout.CameraUniformSize, nil)
	if err != nil {
		return nil, err
	}
	poseBuf, err := o.resources.CreateBuffer(cam.Label()+"_pose", resource.BufferKindUniform, layout.TransformUniformSize, nil)
	if err != nil {
		_ = o.resources.DestroyBuffer(projBuf)
		return nil, err
	}
	projGroup, err := o.resources.CreateBindingGroup(layout.GroupCameraProjection, resource.GroupResources{Buffer: projBuf})
	if err != nil {
		_ = o.resources.DestroyBuffer(poseBuf)
		_ = o.resources.DestroyBuffer(projBuf)
		return nil, err
	}
	poseGroup, err := o.resources.CreateBindingGroup(layout.GroupCameraPose, resource.GroupResources{Buffer: poseBuf})
	if err != nil {
		_ = o.resources.DestroyBindingGroup(projGroup)
		_ = o.resources.DestroyBuffer(poseBuf)
		_ = o.resources.DestroyBuffer(projBuf)
		return nil, err
	}

	st := &cameraState{
		projectionBuffer: projBuf,
		poseBuffer:       poseBuf,
		projectionGroup:  projGroup,
		poseGroup:        poseGroup,
	}
	o.cameraStates[cam] = st
	return st, nil
}

// pruneObjects reclaims per-object GPU state for objects absent from the
// latest snapshot. Binding groups go first so buffer destruction never trips
// the dangling-reference guard.
func (o *orchestratorImpl) pruneObjects(seen map[uint64]struct{}) {
	for id, st := range o.objectStates {
		if _, live := seen[id]; live {
			continue
		}
		_ = o.resources.DestroyBindingGroup(st.group)
		_ = o.resources.DestroyBuffer(st.buffer)
		delete(o.objectStates, id)
	}
}

// declaredGroups returns which fixed-layout groups the pipeline's shader pair
// declares, so Record only binds the groups a program actually uses.
func (o *orchestratorImpl) declaredGroups(pipelineKey string) ([layout.GroupCount]bool, error) {
	if cached, exists := o.pipelineGroups[pipelineKey]; exists {
		return cached, nil
	}

	var declared [layout.GroupCount]bool
	p := o.renderer.Pipeline(pipelineKey)
	if p == nil {
		return declared, fmt.Errorf("render pipeline %q not registered", pipelineKey)
	}
	for _, stage := range []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment} {
		s := p.Shader(stage)
		if s == nil {
			continue
		}
		for g := range s.BindGroupLayoutDescriptors() {
			if g >= 0 && g < layout.GroupCount {
				declared[g] = true
			}
		}
	}
	o.pipelineGroups[pipelineKey] = declared
	return declared, nil
}

// releaseStates destroys every piece of GPU state the orchestrator created,
// binding groups before the resources they reference.
func (o *orchestratorImpl) releaseStates() {
	for id, st := range o.objectStates {
		_ = o.resources.DestroyBindingGroup(st.group)
		_ = o.resources.DestroyBuffer(st.buffer)
		delete(o.objectStates, id)
	}
	for cam, st := range o.cameraStates {
		_ = o.resources.DestroyBindingGroup(st.projectionGroup)
		_ = o.resources.DestroyBindingGroup(st.poseGroup)
		_ = o.resources.DestroyBuffer(st.projectionBuffer)
		_ = o.resources.DestroyBuffer(st.poseBuffer)
		delete(o.cameraStates, cam)
	}
	for id, st := range o.materialStates {
		if st.group != 0 {
			_ = o.resources.DestroyBindingGroup(st.group)
		}
		if st.ownsTexture {
			_ = o.resources.DestroyTexture(st.texture)
		}
		if st.ownsSampler {
			_ = o.resources.DestroySampler(st.sampler)
		}
		delete(o.materialStates, id)
	}
	for id, st := range o.meshStates {
		_ = o.resources.DestroyBuffer(st.vertexBuffer)
		_ = o.resources.DestroyBuffer(st.indexBuffer)
		delete(o.meshStates, id)
	}
}

// uploadPending reports whether err is the upload fence refusing a pending
// texture. Objects behind a pending texture are skipped, not failed.
func uploadPending(err error) bool {
	return errors.Is(err, resource.ErrUploadPending)
}
