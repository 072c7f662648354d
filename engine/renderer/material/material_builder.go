package material

import (
	"github.com/ember3d/ember-go/common"
	"github.com/ember3d/ember-go/engine/renderer/resource"
)

// MaterialBuilderOption is a functional option for configuring a Material.
type MaterialBuilderOption func(*materialImpl)

// WithName sets the material identifier.
//
// Parameters:
//   - name: the material name
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithName(name string) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.name = name
	}
}

// WithPipelineKey sets the render pipeline key this material draws with.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.pipelineKey = key
	}
}

// WithTexture stages texture pixels for upload on first use.
//
// Parameters:
//   - data: the staged RGBA pixels with dimensions
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithTexture(data common.TextureStagingData) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.texture = data
	}
}

// WithFilterMode sets the sampler filter quality.
//
// Parameters:
//   - filter: point, bilinear, or trilinear filtering
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithFilterMode(filter common.FilterMode) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.filter = filter
	}
}

// WithTextureHandle sets a pre-created texture handle, bypassing staging.
//
// Parameters:
//   - h: the texture handle
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithTextureHandle(h resource.TextureHandle) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.textureHandle = h
	}
}

// WithSamplerHandle sets a pre-created sampler handle, bypassing staging.
//
// Parameters:
//   - h: the sampler handle
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithSamplerHandle(h resource.SamplerHandle) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.samplerHandle = h
	}
}
