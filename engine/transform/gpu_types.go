package transform

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUTransformData is the GPU-aligned representation of an object pose uniform.
// Matches the WGSL TransformData struct layout exactly: two mat4x4<f32> fields,
// the pose matrix followed by its exact inverse.
// Size: 128 bytes (std140 aligned, no padding required).
type GPUTransformData struct {
	Transform    [16]float32 // offset  0: pose matrix, column-major (64 bytes)
	TransformInv [16]float32 // offset 64: exact inverse of the pose matrix (64 bytes)
}

// Size returns the size of the GPUTransformData struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUTransformData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUTransformData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 128-byte buffer ready for GPU upload.
func (g *GPUTransformData) Marshal() []byte {
	buf := make([]byte, 128)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(g.Transform[i]))
	}
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[64+i*4:64+(i+1)*4], math.Float32bits(g.TransformInv[i]))
	}
	return buf
}
