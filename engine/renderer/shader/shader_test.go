package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatTriangleProgram(t *testing.T) {
	vert, frag := FlatTriangleShaders()

	assert.Equal(t, "vs_main", vert.EntryPoint())
	assert.Equal(t, "fs_main", frag.EntryPoint())
	assert.Equal(t, ShaderTypeVertex, vert.ShaderType())
	assert.Equal(t, ShaderTypeFragment, frag.ShaderType())

	// The flat program declares no binding groups at all.
	assert.Empty(t, vert.BindGroupLayoutDescriptors())
	assert.Empty(t, frag.BindGroupLayoutDescriptors())

	// 2D vertex layout: vec2 position + vec2 uv, 16-byte stride.
	layouts := vert.VertexLayouts()
	require.Len(t, layouts, 1)
	require.Len(t, layouts[0], 1)
	assert.Equal(t, uint64(16), layouts[0][0].ArrayStride)
	require.Len(t, layouts[0][0].Attributes, 2)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layouts[0][0].Attributes[0].Format)
	assert.Equal(t, uint64(8), layouts[0][0].Attributes[1].Offset)
}

func TestTexturedQuadProgram(t *testing.T) {
	vert, frag := TexturedQuadShaders()

	// Only the fragment stage declares the material group.
	assert.Empty(t, vert.BindGroupLayoutDescriptors())

	declared := frag.BindGroupLayoutDescriptors()
	require.Len(t, declared, 1)
	material, ok := declared[0]
	require.True(t, ok)
	require.Len(t, material.Entries, 2)

	assert.Equal(t, uint32(0), material.Entries[0].Binding)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, material.Entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, material.Entries[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.ShaderStageFragment, material.Entries[0].Visibility)

	assert.Equal(t, uint32(1), material.Entries[1].Binding)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, material.Entries[1].Sampler.Type)

	assert.Equal(t, "material_texture", frag.BindGroupVarName(0, 0))
	assert.Equal(t, "material_sampler", frag.BindGroupVarName(0, 1))
}

func TestTexturedMeshProgram(t *testing.T) {
	vert, frag := TexturedMeshShaders()

	// Vertex stage declares the three uniform groups with sizes resolved from
	// the WGSL struct layouts.
	declared := vert.BindGroupLayoutDescriptors()
	require.Len(t, declared, 3)

	camera := declared[1]
	require.Len(t, camera.Entries, 1)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, camera.Entries[0].Buffer.Type)
	assert.Equal(t, uint64(64), camera.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageVertex, camera.Entries[0].Visibility)

	cameraPose := declared[2]
	require.Len(t, cameraPose.Entries, 1)
	assert.Equal(t, uint64(128), cameraPose.Entries[0].Buffer.MinBindingSize)

	objectPose := declared[3]
	require.Len(t, objectPose.Entries, 1)
	assert.Equal(t, uint64(128), objectPose.Entries[0].Buffer.MinBindingSize)

	// Fragment stage declares the material group only.
	fragDeclared := frag.BindGroupLayoutDescriptors()
	require.Len(t, fragDeclared, 1)
	_, ok := fragDeclared[0]
	assert.True(t, ok)

	// 3D vertex layout: vec3 position + vec2 uv, 20-byte stride.
	layouts := vert.VertexLayouts()
	require.Len(t, layouts, 1)
	assert.Equal(t, uint64(20), layouts[0][0].ArrayStride)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layouts[0][0].Attributes[0].Format)
	assert.Equal(t, uint64(12), layouts[0][0].Attributes[1].Offset)
}

func TestParseEntryPointIgnoresComments(t *testing.T) {
	source := `
// @vertex
// fn commented_out() {}
/* @vertex
fn also_commented() {} */
@vertex
fn real_entry() -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0);
}
`
	assert.Equal(t, "real_entry", parseEntryPoint(source, ShaderTypeVertex))
	assert.Equal(t, "", parseEntryPoint(source, ShaderTypeFragment))
}

func TestParseBindGroupUniformSize(t *testing.T) {
	source := `
struct Packed {
    a: vec3<f32>,
    b: f32,
    c: mat4x4<f32>,
}

@group(0) @binding(0) var<uniform> packed: Packed;

@fragment
fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(0.0); }
`
	declared, _ := parseBindGroupLayouts(source, wgpu.ShaderStageFragment)
	require.Len(t, declared, 1)
	require.Len(t, declared[0].Entries, 1)
	// vec3 (12, align 16) + f32 packed at offset 12, then mat4x4 at 16: 80 total.
	assert.Equal(t, uint64(80), declared[0].Entries[0].Buffer.MinBindingSize)
}

func TestNewShaderPanicsWithoutEntryPoint(t *testing.T) {
	assert.Panics(t, func() {
		NewShader("broken", ShaderTypeVertex, `
@fragment
fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(0.0); }
`)
	})
	assert.Panics(t, func() {
		NewShader("empty", ShaderTypeVertex, "")
	})
}

func TestCompileErrorMessage(t *testing.T) {
	err := &CompileError{Key: "bad_vert", Diagnostics: "unknown identifier"}
	assert.Contains(t, err.Error(), "bad_vert")
	assert.Contains(t, err.Error(), "unknown identifier")
}
