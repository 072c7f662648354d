package mesh

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// GPUVertex2D is the GPU-aligned representation of a screen-space vertex.
// Matches the WGSL VertexInput struct for 2D pipelines exactly.
// Size: 16 bytes (std430 aligned, no padding required).
type GPUVertex2D struct {
	Position [2]float32 // offset 0: vertex position in clip/screen space (8 bytes)
	TexCoord [2]float32 // offset 8: UV texture coordinate (8 bytes)
}

// Size returns the size of the GPUVertex2D struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex2D) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex2D struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPUVertex2D) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.TexCoord[1]))
	return buf
}

// GPUVertex3D is the GPU-aligned representation of a world-space mesh vertex.
// Matches the WGSL VertexInput struct for 3D pipelines exactly.
// Size: 20 bytes (std430 aligned, no padding required).
type GPUVertex3D struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	TexCoord [2]float32 // offset 12: UV texture coordinate (8 bytes)
}

// Size returns the size of the GPUVertex3D struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex3D) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex3D struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 20-byte buffer ready for GPU upload.
func (g *GPUVertex3D) Marshal() []byte {
	buf := make([]byte, 20)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.TexCoord[1]))
	return buf
}

// Vertex2DLayout returns the canonical vertex buffer layout for GPUVertex2D:
// position at shader location 0, UV at location 1.
//
// Returns:
//   - wgpu.VertexBufferLayout: the 2D vertex layout
func Vertex2DLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 16,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
		},
	}
}

// Vertex3DLayout returns the canonical vertex buffer layout for GPUVertex3D:
// position at shader location 0, UV at location 1.
//
// Returns:
//   - wgpu.VertexBufferLayout: the 3D vertex layout
func Vertex3DLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 20,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
		},
	}
}
