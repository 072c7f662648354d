package shader

import (
	_ "embed"
)

// Pipeline keys for the built-in reference programs.
const (
	// PipelineKeyFlatTriangle draws screen-space geometry in a constant color
	// with no binding groups.
	PipelineKeyFlatTriangle = "flat_triangle"

	// PipelineKeyTexturedQuad draws screen-space geometry sampling the
	// material group only.
	PipelineKeyTexturedQuad = "textured_quad"

	// PipelineKeyTexturedMesh draws world-space geometry through the full
	// fixed layout: material, camera projection, camera pose, object pose.
	PipelineKeyTexturedMesh = "textured_mesh"
)

//go:embed programs/flat_triangle_vert.wgsl
var flatTriangleVertSource string

//go:embed programs/flat_triangle_frag.wgsl
var flatTriangleFragSource string

//go:embed programs/textured_quad_vert.wgsl
var texturedQuadVertSource string

//go:embed programs/textured_quad_frag.wgsl
var texturedQuadFragSource string

//go:embed programs/textured_mesh_vert.wgsl
var texturedMeshVertSource string

//go:embed programs/textured_mesh_frag.wgsl
var texturedMeshFragSource string

// FlatTriangleShaders returns the vertex and fragment shaders of the
// flat-color program. The program declares no binding groups and uses the
// 2D vertex layout.
//
// Returns:
//   - Shader: the vertex shader
//   - Shader: the fragment shader
func FlatTriangleShaders() (Shader, Shader) {
	return NewShader(PipelineKeyFlatTriangle+"_vert", ShaderTypeVertex, flatTriangleVertSource),
		NewShader(PipelineKeyFlatTriangle+"_frag", ShaderTypeFragment, flatTriangleFragSource)
}

// TexturedQuadShaders returns the vertex and fragment shaders of the
// screen-space textured program. The program declares the material group
// only and uses the 2D vertex layout.
//
// Returns:
//   - Shader: the vertex shader
//   - Shader: the fragment shader
func TexturedQuadShaders() (Shader, Shader) {
	return NewShader(PipelineKeyTexturedQuad+"_vert", ShaderTypeVertex, texturedQuadVertSource),
		NewShader(PipelineKeyTexturedQuad+"_frag", ShaderTypeFragment, texturedQuadFragSource)
}

// TexturedMeshShaders returns the vertex and fragment shaders of the
// perspective textured program. The program declares all four groups of the
// fixed layout and uses the 3D vertex layout.
//
// Returns:
//   - Shader: the vertex shader
//   - Shader: the fragment shader
func TexturedMeshShaders() (Shader, Shader) {
	return NewShader(PipelineKeyTexturedMesh+"_vert", ShaderTypeVertex, texturedMeshVertSource),
		NewShader(PipelineKeyTexturedMesh+"_frag", ShaderTypeFragment, texturedMeshFragSource)
}
