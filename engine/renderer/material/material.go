package material

import (
	"sync/atomic"

	"github.com/ember3d/ember-go/common"
	"github.com/ember3d/ember-go/engine/renderer/resource"
)

// materialCount tracks the number of materials created, used for unique IDs.
var materialCount atomic.Uint64

// materialImpl is the implementation of the Material interface.
type materialImpl struct {
	id          uint64
	name        string
	pipelineKey string

	texture common.TextureStagingData
	filter  common.FilterMode

	// Pre-created GPU handles. When set they take precedence over the staged
	// texture data; the frame orchestrator uploads staged data otherwise.
	textureHandle resource.TextureHandle
	samplerHandle resource.SamplerHandle
}

// Material defines the interface for a render material: the texture and
// sampler bound at group 0 plus the key of the pipeline that draws it.
//
// A material either stages pixel data for the orchestrator to upload on
// first use, or carries pre-created resource handles (e.g. from an async
// texture load).
type Material interface {
	// ID returns the material's unique identifier, used for GPU state caching.
	//
	// Returns:
	//   - uint64: the material ID
	ID() uint64

	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// SetPipelineKey sets the render pipeline key for this material.
	//
	// Parameters:
	//   - key: the pipeline key to associate with this material
	SetPipelineKey(key string)

	// TextureData retrieves the staged texture pixels pending GPU upload.
	//
	// Returns:
	//   - common.TextureStagingData: the staged pixel data
	TextureData() common.TextureStagingData

	// Filter retrieves the sampler filter mode.
	//
	// Returns:
	//   - common.FilterMode: the filter mode
	Filter() common.FilterMode

	// TextureHandle retrieves the pre-created texture handle, or 0 if the
	// material stages pixel data instead.
	//
	// Returns:
	//   - resource.TextureHandle: the texture handle or 0
	TextureHandle() resource.TextureHandle

	// SamplerHandle retrieves the pre-created sampler handle, or 0.
	//
	// Returns:
	//   - resource.SamplerHandle: the sampler handle or 0
	SamplerHandle() resource.SamplerHandle

	// SetTextureHandle sets a pre-created texture handle, typically after an
	// async upload ticket completes.
	//
	// Parameters:
	//   - h: the texture handle
	SetTextureHandle(h resource.TextureHandle)

	// SetSamplerHandle sets a pre-created sampler handle.
	//
	// Parameters:
	//   - h: the sampler handle
	SetSamplerHandle(h resource.SamplerHandle)
}

var _ Material = &materialImpl{}

// NewMaterial creates a new Material instance configured with the provided options.
// Without a texture option the material stages the default checkerboard.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &materialImpl{
		id:      materialCount.Add(1),
		texture: Checkerboard(),
		filter:  common.FilterModeBilinear,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Checkerboard returns the default 8x8 black/white checkerboard texture used
// for materials with no texture of their own.
//
// Returns:
//   - common.TextureStagingData: the checkerboard pixels
func Checkerboard() common.TextureStagingData {
	const size = 8
	pixels := make([]byte, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := byte(0)
			if (x+y)%2 == 0 {
				v = 255
			}
			i := (y*size + x) * 4
			pixels[i] = v
			pixels[i+1] = v
			pixels[i+2] = v
			pixels[i+3] = 255
		}
	}
	return common.TextureStagingData{Pixels: pixels, Width: size, Height: size}
}

func (m *materialImpl) ID() uint64 {
	return m.id
}

func (m *materialImpl) Name() string {
	return m.name
}

func (m *materialImpl) PipelineKey() string {
	return m.pipelineKey
}

func (m *materialImpl) SetPipelineKey(key string) {
	m.pipelineKey = key
}

func (m *materialImpl) TextureData() common.TextureStagingData {
	return m.texture
}

func (m *materialImpl) Filter() common.FilterMode {
	return m.filter
}

func (m *materialImpl) TextureHandle() resource.TextureHandle {
	return m.textureHandle
}

func (m *materialImpl) SamplerHandle() resource.SamplerHandle {
	return m.samplerHandle
}

func (m *materialImpl) SetTextureHandle(h resource.TextureHandle) {
	m.textureHandle = h
}

func (m *materialImpl) SetSamplerHandle(h resource.SamplerHandle) {
	m.samplerHandle = h
}
