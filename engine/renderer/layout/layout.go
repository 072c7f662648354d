// Package layout defines the fixed binding group layout shared by every
// render pipeline in the engine. All shaders bind against the same four
// groups, ordered by update frequency: material, camera projection, camera
// pose, object pose. Pipelines whose shaders declare anything structurally
// different are rejected before any GPU work happens.
package layout

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Group indices of the fixed layout.
const (
	// GroupMaterial is the material group: sampled texture + sampler.
	GroupMaterial = 0

	// GroupCameraProjection is the camera projection uniform group.
	GroupCameraProjection = 1

	// GroupCameraPose is the camera pose (view) uniform group.
	GroupCameraPose = 2

	// GroupObjectPose is the per-object pose uniform group.
	GroupObjectPose = 3

	// GroupCount is the total number of groups in the fixed layout.
	GroupCount = 4
)

// Uniform buffer sizes for the fixed layout's buffer-backed groups.
const (
	// CameraUniformSize is the byte size of the camera projection uniform (one mat4x4<f32>).
	CameraUniformSize = 64

	// TransformUniformSize is the byte size of a pose uniform (pose matrix + exact inverse).
	TransformUniformSize = 128
)

// BindingType classifies a resource binding within a group.
type BindingType int

const (
	// BindingTypeUniformBuffer is a uniform buffer binding.
	BindingTypeUniformBuffer BindingType = iota

	// BindingTypeTexture is a sampled 2D texture binding.
	BindingTypeTexture

	// BindingTypeSampler is a filtering sampler binding.
	BindingTypeSampler
)

// String returns a human-readable name for the binding type.
func (b BindingType) String() string {
	switch b {
	case BindingTypeUniformBuffer:
		return "uniform buffer"
	case BindingTypeTexture:
		return "texture"
	case BindingTypeSampler:
		return "sampler"
	default:
		return "unknown"
	}
}

// Binding describes a single resource slot within a binding group.
type Binding struct {
	// Binding is the binding index within the group.
	Binding uint32

	// Type is the resource classification for this slot.
	Type BindingType

	// Visibility is the exact shader stage visibility required for this slot.
	Visibility wgpu.ShaderStage

	// MinBindingSize is the required byte size for buffer bindings, 0 otherwise.
	MinBindingSize uint64
}

// Group describes the ordered bindings of one binding group.
type Group struct {
	// Label identifies the group in diagnostics and GPU labels.
	Label string

	// Bindings are the group's resource slots, ordered by binding index.
	Bindings []Binding
}

// GroupLayout is the fixed binding group layout value object. Two layouts
// are interchangeable iff they are structurally equal; the engine only ever
// constructs the one canonical layout via Default.
type GroupLayout struct {
	Groups [GroupCount]Group
}

// Default returns the engine's canonical fixed layout:
//
//	group 0: material         — binding 0 texture (fragment), binding 1 sampler (fragment)
//	group 1: camera projection — binding 0 uniform buffer, 64 B (vertex)
//	group 2: camera pose       — binding 0 uniform buffer, 128 B (vertex)
//	group 3: object pose       — binding 0 uniform buffer, 128 B (vertex)
//
// Returns:
//   - GroupLayout: the canonical layout
func Default() GroupLayout {
	return GroupLayout{
		Groups: [GroupCount]Group{
			{
				Label: "material",
				Bindings: []Binding{
					{Binding: 0, Type: BindingTypeTexture, Visibility: wgpu.ShaderStageFragment},
					{Binding: 1, Type: BindingTypeSampler, Visibility: wgpu.ShaderStageFragment},
				},
			},
			{
				Label: "camera_projection",
				Bindings: []Binding{
					{Binding: 0, Type: BindingTypeUniformBuffer, Visibility: wgpu.ShaderStageVertex, MinBindingSize: CameraUniformSize},
				},
			},
			{
				Label: "camera_pose",
				Bindings: []Binding{
					{Binding: 0, Type: BindingTypeUniformBuffer, Visibility: wgpu.ShaderStageVertex, MinBindingSize: TransformUniformSize},
				},
			},
			{
				Label: "object_pose",
				Bindings: []Binding{
					{Binding: 0, Type: BindingTypeUniformBuffer, Visibility: wgpu.ShaderStageVertex, MinBindingSize: TransformUniformSize},
				},
			},
		},
	}
}

// Descriptor builds the wgpu bind group layout descriptor for one group of
// the fixed layout.
//
// Parameters:
//   - group: the group index (0..3)
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the descriptor for the group
func (l GroupLayout) Descriptor(group int) wgpu.BindGroupLayoutDescriptor {
	g := l.Groups[group]
	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(g.Bindings))
	for _, b := range g.Bindings {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    b.Binding,
			Visibility: b.Visibility,
		}
		switch b.Type {
		case BindingTypeUniformBuffer:
			entry.Buffer = wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: b.MinBindingSize,
			}
		case BindingTypeTexture:
			entry.Texture = wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			}
		case BindingTypeSampler:
			entry.Sampler = wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeFiltering,
			}
		}
		entries = append(entries, entry)
	}
	return wgpu.BindGroupLayoutDescriptor{
		Label:   g.Label,
		Entries: entries,
	}
}
