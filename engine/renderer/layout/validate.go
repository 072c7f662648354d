package layout

import (
	"fmt"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
)

// IncompatibleError reports a structural mismatch between a shader's declared
// bindings and the fixed group layout. It is returned before any GPU pipeline
// work happens.
type IncompatibleError struct {
	// PipelineKey identifies the pipeline being validated.
	PipelineKey string

	// Group is the group index where the mismatch was found, or -1 for
	// group-set level problems (out of range, non-contiguous).
	Group int

	// Detail describes the mismatch (expected vs declared).
	Detail string
}

func (e *IncompatibleError) Error() string {
	if e.Group < 0 {
		return fmt.Sprintf("pipeline %q incompatible with fixed binding layout: %s", e.PipelineKey, e.Detail)
	}
	return fmt.Sprintf("pipeline %q incompatible with fixed binding layout at group %d: %s", e.PipelineKey, e.Group, e.Detail)
}

// ValidateDeclared checks a pipeline's merged shader binding declarations
// against the fixed layout. Shaders may declare any contiguous prefix of the
// four groups (a flat-color pipeline declares none); each declared group must
// match its fixed-layout counterpart slot-for-slot: binding index, resource
// type, and stage visibility must agree exactly.
//
// Parameters:
//   - pipelineKey: the pipeline identifier for diagnostics
//   - declared: merged bind group layout descriptors keyed by group index
//
// Returns:
//   - error: nil if compatible, otherwise an *IncompatibleError
func (l GroupLayout) ValidateDeclared(pipelineKey string, declared map[int]wgpu.BindGroupLayoutDescriptor) error {
	groups := make([]int, 0, len(declared))
	for g := range declared {
		groups = append(groups, g)
	}
	sort.Ints(groups)

	for i, g := range groups {
		if g < 0 || g >= GroupCount {
			return &IncompatibleError{
				PipelineKey: pipelineKey,
				Group:       -1,
				Detail:      fmt.Sprintf("declared group %d outside fixed layout range [0, %d)", g, GroupCount),
			}
		}
		if g != i {
			return &IncompatibleError{
				PipelineKey: pipelineKey,
				Group:       -1,
				Detail:      fmt.Sprintf("declared groups %v are not a contiguous prefix starting at 0", groups),
			}
		}
	}

	for _, g := range groups {
		if err := l.validateGroup(pipelineKey, g, declared[g]); err != nil {
			return err
		}
	}
	return nil
}

// validateGroup checks one declared group against its fixed-layout definition.
func (l GroupLayout) validateGroup(pipelineKey string, group int, desc wgpu.BindGroupLayoutDescriptor) error {
	want := l.Groups[group]
	if len(desc.Entries) != len(want.Bindings) {
		return &IncompatibleError{
			PipelineKey: pipelineKey,
			Group:       group,
			Detail:      fmt.Sprintf("expected %d bindings, shader declares %d", len(want.Bindings), len(desc.Entries)),
		}
	}

	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	copy(entries, desc.Entries)
	sort.Slice(entries, func(a, b int) bool { return entries[a].Binding < entries[b].Binding })

	for i, wantBinding := range want.Bindings {
		got := entries[i]
		if got.Binding != wantBinding.Binding {
			return &IncompatibleError{
				PipelineKey: pipelineKey,
				Group:       group,
				Detail:      fmt.Sprintf("expected binding index %d, shader declares %d", wantBinding.Binding, got.Binding),
			}
		}
		gotType, err := classifyEntry(got)
		if err != nil {
			return &IncompatibleError{
				PipelineKey: pipelineKey,
				Group:       group,
				Detail:      fmt.Sprintf("binding %d: %v", got.Binding, err),
			}
		}
		if gotType != wantBinding.Type {
			return &IncompatibleError{
				PipelineKey: pipelineKey,
				Group:       group,
				Detail:      fmt.Sprintf("binding %d: expected %s, shader declares %s", got.Binding, wantBinding.Type, gotType),
			}
		}
		if got.Visibility != wantBinding.Visibility {
			return &IncompatibleError{
				PipelineKey: pipelineKey,
				Group:       group,
				Detail:      fmt.Sprintf("binding %d: expected visibility %#x, shader declares %#x", got.Binding, wantBinding.Visibility, got.Visibility),
			}
		}
		if wantBinding.Type == BindingTypeUniformBuffer &&
			got.Buffer.MinBindingSize != 0 &&
			got.Buffer.MinBindingSize != wantBinding.MinBindingSize {
			return &IncompatibleError{
				PipelineKey: pipelineKey,
				Group:       group,
				Detail: fmt.Sprintf("binding %d: expected uniform size %d, shader declares %d",
					got.Binding, wantBinding.MinBindingSize, got.Buffer.MinBindingSize),
			}
		}
	}
	return nil
}

// classifyEntry maps a wgpu layout entry back to the coarse BindingType.
func classifyEntry(e wgpu.BindGroupLayoutEntry) (BindingType, error) {
	switch {
	case e.Buffer.Type == wgpu.BufferBindingTypeUniform:
		return BindingTypeUniformBuffer, nil
	case e.Buffer.Type != wgpu.BufferBindingTypeUndefined:
		return 0, fmt.Errorf("unsupported buffer binding type %v", e.Buffer.Type)
	case e.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
		if e.Texture.ViewDimension != wgpu.TextureViewDimension2D {
			return 0, fmt.Errorf("unsupported texture view dimension %v", e.Texture.ViewDimension)
		}
		return BindingTypeTexture, nil
	case e.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
		return BindingTypeSampler, nil
	default:
		return 0, fmt.Errorf("entry declares no recognizable resource")
	}
}
