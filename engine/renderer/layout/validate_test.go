package layout

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// declaredFixture returns shader-style declarations matching the fixed layout
// exactly for the given groups.
func declaredFixture(groups ...int) map[int]wgpu.BindGroupLayoutDescriptor {
	l := Default()
	declared := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for _, g := range groups {
		declared[g] = l.Descriptor(g)
	}
	return declared
}

func TestValidateDeclaredFullLayout(t *testing.T) {
	l := Default()
	assert.NoError(t, l.ValidateDeclared("textured_mesh", declaredFixture(0, 1, 2, 3)))
}

func TestValidateDeclaredPrefixes(t *testing.T) {
	l := Default()

	// A pipeline may declare any contiguous prefix of the fixed groups.
	assert.NoError(t, l.ValidateDeclared("flat", declaredFixture()))
	assert.NoError(t, l.ValidateDeclared("textured", declaredFixture(0)))
	assert.NoError(t, l.ValidateDeclared("partial", declaredFixture(0, 1)))
}

func TestValidateDeclaredNonContiguous(t *testing.T) {
	l := Default()

	err := l.ValidateDeclared("skips_material", declaredFixture(1, 2))
	require.Error(t, err)
	var incompatible *IncompatibleError
	require.ErrorAs(t, err, &incompatible)
	assert.Equal(t, "skips_material", incompatible.PipelineKey)
	assert.Equal(t, -1, incompatible.Group)
}

func TestValidateDeclaredOutOfRange(t *testing.T) {
	l := Default()

	declared := declaredFixture(0, 1, 2, 3)
	declared[4] = wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex,
			Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
		}},
	}

	var incompatible *IncompatibleError
	require.ErrorAs(t, l.ValidateDeclared("too_many", declared), &incompatible)
	assert.Equal(t, -1, incompatible.Group)
}

func TestValidateDeclaredMissingBinding(t *testing.T) {
	l := Default()

	// Material group with the sampler binding missing.
	declared := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		}}},
	}

	var incompatible *IncompatibleError
	require.ErrorAs(t, l.ValidateDeclared("half_material", declared), &incompatible)
	assert.Equal(t, 0, incompatible.Group)
}

func TestValidateDeclaredWrongVisibility(t *testing.T) {
	l := Default()

	// Camera projection declared fragment-visible instead of vertex-visible.
	declared := declaredFixture(0, 1)
	desc := declared[1]
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	copy(entries, desc.Entries)
	entries[0].Visibility = wgpu.ShaderStageFragment
	declared[1] = wgpu.BindGroupLayoutDescriptor{Label: desc.Label, Entries: entries}

	var incompatible *IncompatibleError
	require.ErrorAs(t, l.ValidateDeclared("fragment_camera", declared), &incompatible)
	assert.Equal(t, 1, incompatible.Group)
}

func TestValidateDeclaredWrongUniformSize(t *testing.T) {
	l := Default()

	declared := declaredFixture(0, 1)
	desc := declared[1]
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	copy(entries, desc.Entries)
	entries[0].Buffer.MinBindingSize = 80
	declared[1] = wgpu.BindGroupLayoutDescriptor{Label: desc.Label, Entries: entries}

	var incompatible *IncompatibleError
	require.ErrorAs(t, l.ValidateDeclared("fat_camera", declared), &incompatible)
	assert.Equal(t, 1, incompatible.Group)
	assert.Contains(t, incompatible.Error(), "uniform size")
}

func TestValidateDeclaredUnknownUniformSizeAccepted(t *testing.T) {
	l := Default()

	// A shader whose uniform struct size could not be resolved declares 0,
	// which passes the structural check; the GPU validates the rest.
	declared := declaredFixture(0, 1)
	desc := declared[1]
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	copy(entries, desc.Entries)
	entries[0].Buffer.MinBindingSize = 0
	declared[1] = wgpu.BindGroupLayoutDescriptor{Label: desc.Label, Entries: entries}

	assert.NoError(t, l.ValidateDeclared("opaque_uniform", declared))
}

func TestValidateDeclaredWrongResourceType(t *testing.T) {
	l := Default()

	// Object pose group declared as a texture instead of a uniform buffer.
	declared := declaredFixture(0, 1, 2)
	declared[3] = wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		}},
	}

	var incompatible *IncompatibleError
	require.ErrorAs(t, l.ValidateDeclared("texture_pose", declared), &incompatible)
	assert.Equal(t, 3, incompatible.Group)
}

func TestDescriptorShape(t *testing.T) {
	l := Default()

	material := l.Descriptor(GroupMaterial)
	require.Len(t, material.Entries, 2)
	assert.Equal(t, wgpu.ShaderStageFragment, material.Entries[0].Visibility)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, material.Entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, material.Entries[1].Sampler.Type)

	projection := l.Descriptor(GroupCameraProjection)
	require.Len(t, projection.Entries, 1)
	assert.Equal(t, wgpu.ShaderStageVertex, projection.Entries[0].Visibility)
	assert.Equal(t, uint64(CameraUniformSize), projection.Entries[0].Buffer.MinBindingSize)

	pose := l.Descriptor(GroupObjectPose)
	assert.Equal(t, uint64(TransformUniformSize), pose.Entries[0].Buffer.MinBindingSize)
}
