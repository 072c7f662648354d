package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalIndicesPadding(t *testing.T) {
	// Odd index counts pad to a 4-byte multiple.
	buf := marshalIndices([]uint16{0, 1, 2})
	require.Len(t, buf, 8)
	assert.Equal(t, []byte{0, 0, 1, 0, 2, 0, 0, 0}, buf)

	buf = marshalIndices([]uint16{0, 1, 2, 0, 2, 3})
	require.Len(t, buf, 12)
}

func TestMarshalIndicesLittleEndian(t *testing.T) {
	buf := marshalIndices([]uint16{0x0102, 0x0304})
	assert.Equal(t, []byte{0x02, 0x01, 0x04, 0x03}, buf)
}

func TestNewMesh2D(t *testing.T) {
	m := NewMesh2D("tri", []GPUVertex2D{
		{Position: [2]float32{0, 0.5}, TexCoord: [2]float32{0.5, 0}},
		{Position: [2]float32{-0.5, -0.5}, TexCoord: [2]float32{0, 1}},
		{Position: [2]float32{0.5, -0.5}, TexCoord: [2]float32{1, 1}},
	}, []uint16{0, 1, 2})

	assert.Equal(t, "tri", m.Label())
	assert.Equal(t, VertexLayout2D, m.LayoutKind())
	assert.Equal(t, uint32(3), m.IndexCount())
	// 2D vertices are 16 bytes each: vec2 position + vec2 uv.
	assert.Len(t, m.VertexData(), 48)
	assert.Equal(t, uint64(16), m.VertexBufferLayout().ArrayStride)
}

func TestNewMesh3D(t *testing.T) {
	m := NewMesh3D("one", []GPUVertex3D{
		{Position: [3]float32{0, 0, 0}, TexCoord: [2]float32{0, 0}},
	}, []uint16{0})

	assert.Equal(t, VertexLayout3D, m.LayoutKind())
	// 3D vertices are 20 bytes each: vec3 position + vec2 uv.
	assert.Len(t, m.VertexData(), 20)
	assert.Equal(t, uint64(20), m.VertexBufferLayout().ArrayStride)
}

func TestMeshIDsUnique(t *testing.T) {
	a := Triangle()
	b := Triangle()
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestTrianglePrimitive(t *testing.T) {
	m := Triangle()
	assert.Equal(t, VertexLayout2D, m.LayoutKind())
	assert.Equal(t, uint32(3), m.IndexCount())
}

func TestQuadPrimitive(t *testing.T) {
	m := Quad()
	assert.Equal(t, VertexLayout2D, m.LayoutKind())
	assert.Equal(t, uint32(6), m.IndexCount())
	assert.Len(t, m.VertexData(), 4*16)
}

func TestCubePrimitive(t *testing.T) {
	m := Cube()
	assert.Equal(t, VertexLayout3D, m.LayoutKind())
	// 24 vertices (4 per face) and 36 indices (2 triangles per face).
	assert.Equal(t, uint32(36), m.IndexCount())
	assert.Len(t, m.VertexData(), 24*20)
	assert.Len(t, m.IndexData(), 72)
}
