package mesh

import (
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"
)

// VertexLayoutKind identifies which of the two canonical vertex layouts a
// mesh uses.
type VertexLayoutKind int

const (
	// VertexLayout2D is the screen-space layout: position 2D + UV.
	VertexLayout2D VertexLayoutKind = iota

	// VertexLayout3D is the world-space layout: position 3D + UV.
	VertexLayout3D
)

// meshCount tracks the number of meshes created, used for unique IDs.
var meshCount atomic.Uint64

// meshImpl is the implementation of the Mesh interface. Mesh data is
// immutable after construction; GPU buffers for it are created lazily by the
// frame orchestrator on first encounter and cached by mesh ID.
type meshImpl struct {
	id         uint64
	label      string
	layoutKind VertexLayoutKind
	vertexData []byte
	indexData  []byte
	indexCount uint32
}

// Mesh defines the interface for indexed vertex geometry staged for GPU upload.
type Mesh interface {
	// ID returns the mesh's unique identifier, used for GPU state caching.
	//
	// Returns:
	//   - uint64: the mesh ID
	ID() uint64

	// Label returns the mesh's debug label.
	//
	// Returns:
	//   - string: the label
	Label() string

	// LayoutKind returns which canonical vertex layout the mesh uses.
	//
	// Returns:
	//   - VertexLayoutKind: VertexLayout2D or VertexLayout3D
	LayoutKind() VertexLayoutKind

	// VertexBufferLayout returns the wgpu layout matching LayoutKind.
	//
	// Returns:
	//   - wgpu.VertexBufferLayout: the vertex buffer layout
	VertexBufferLayout() wgpu.VertexBufferLayout

	// VertexData returns the marshaled vertex bytes for upload.
	//
	// Returns:
	//   - []byte: the vertex buffer contents
	VertexData() []byte

	// IndexData returns the marshaled uint16 index bytes for upload.
	//
	// Returns:
	//   - []byte: the index buffer contents
	IndexData() []byte

	// IndexCount returns the number of indices to draw.
	//
	// Returns:
	//   - uint32: the index count
	IndexCount() uint32
}

var _ Mesh = &meshImpl{}

// NewMesh2D creates a mesh from screen-space vertices and uint16 indices.
//
// Parameters:
//   - label: debug label for the mesh
//   - vertices: the vertex data
//   - indices: triangle list indices into the vertex slice
//
// Returns:
//   - Mesh: the newly created mesh
func NewMesh2D(label string, vertices []GPUVertex2D, indices []uint16) Mesh {
	vertexData := make([]byte, 0, len(vertices)*16)
	for i := range vertices {
		vertexData = append(vertexData, vertices[i].Marshal()...)
	}
	return &meshImpl{
		id:         meshCount.Add(1),
		label:      label,
		layoutKind: VertexLayout2D,
		vertexData: vertexData,
		indexData:  marshalIndices(indices),
		indexCount: uint32(len(indices)),
	}
}

// NewMesh3D creates a mesh from world-space vertices and uint16 indices.
//
// Parameters:
//   - label: debug label for the mesh
//   - vertices: the vertex data
//   - indices: triangle list indices into the vertex slice
//
// Returns:
//   - Mesh: the newly created mesh
func NewMesh3D(label string, vertices []GPUVertex3D, indices []uint16) Mesh {
	vertexData := make([]byte, 0, len(vertices)*20)
	for i := range vertices {
		vertexData = append(vertexData, vertices[i].Marshal()...)
	}
	return &meshImpl{
		id:         meshCount.Add(1),
		label:      label,
		layoutKind: VertexLayout3D,
		vertexData: vertexData,
		indexData:  marshalIndices(indices),
		indexCount: uint32(len(indices)),
	}
}

// marshalIndices packs uint16 indices little-endian, padding to a 4-byte
// multiple as required for index buffer uploads.
func marshalIndices(indices []uint16) []byte {
	size := len(indices) * 2
	if size%4 != 0 {
		size += 2
	}
	buf := make([]byte, size)
	for i, idx := range indices {
		buf[i*2] = byte(idx)
		buf[i*2+1] = byte(idx >> 8)
	}
	return buf
}

func (m *meshImpl) ID() uint64 {
	return m.id
}

func (m *meshImpl) Label() string {
	return m.label
}

func (m *meshImpl) LayoutKind() VertexLayoutKind {
	return m.layoutKind
}

func (m *meshImpl) VertexBufferLayout() wgpu.VertexBufferLayout {
	if m.layoutKind == VertexLayout2D {
		return Vertex2DLayout()
	}
	return Vertex3DLayout()
}

func (m *meshImpl) VertexData() []byte {
	return m.vertexData
}

func (m *meshImpl) IndexData() []byte {
	return m.indexData
}

func (m *meshImpl) IndexCount() uint32 {
	return m.indexCount
}
