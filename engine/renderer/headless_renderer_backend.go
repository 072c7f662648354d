package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ember3d/ember-go/common"
	"github.com/ember3d/ember-go/engine/renderer/layout"
	"github.com/ember3d/ember-go/engine/renderer/pipeline"
	"github.com/ember3d/ember-go/engine/renderer/resource"
	"github.com/ember3d/ember-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// FrameStats records what the headless backend encoded for one frame.
type FrameStats struct {
	// Draws is the number of draw commands encoded.
	Draws int

	// PipelineBinds is the number of times a pipeline was set on the pass.
	// Draws sorted by pipeline key bind each pipeline once per run.
	PipelineBinds int

	// BindGroupSets is the number of bind group slots set across all draws.
	BindGroupSets int
}

// HeadlessBackend extends RendererBackend with recording queries and surface
// error injection. It performs no GPU work: every device allocation returns an
// in-memory stand-in, and every frame operation is counted instead of encoded.
type HeadlessBackend interface {
	RendererBackend

	// InjectAcquireError arranges for the next BeginFrame to fail with the
	// given error. The error is consumed by that call.
	InjectAcquireError(err error)

	// InjectPresentError arranges for the next Present to fail with the given
	// error. The error is consumed by that call.
	InjectPresentError(err error)

	// LastFrame returns the stats recorded for the most recently ended frame.
	LastFrame() FrameStats

	// PresentedFrames returns the number of frames successfully presented.
	PresentedFrames() int

	// DiscardedFrames returns the number of frames abandoned via DiscardFrame
	// without being presented.
	DiscardedFrames() int

	// SurfaceConfigures returns the number of ConfigureSurface calls, including
	// the one made at construction.
	SurfaceConfigures() int

	// RegisteredPipelines returns the pipeline keys registered so far, in
	// registration order.
	RegisteredPipelines() []string

	// LiveResources returns the number of device resources created and not
	// yet released.
	LiveResources() int
}

// Headless native stand-ins. Only identity and metadata; no GPU state.
type headlessBuffer struct {
	label  string
	size   uint64
	usage  wgpu.BufferUsage
	writes int
}

type headlessTexture struct {
	label  string
	width  uint32
	height uint32
}

type headlessSampler struct {
	label string
}

type headlessBindGroup struct {
	label   string
	group   int
	entries int
}

type headlessPipeline struct {
	key string
}

type headlessRendererBackendImpl struct {
	mu *sync.Mutex

	width, height int
	presentMode   PresentMode
	fixedLayout   layout.GroupLayout

	registered []string

	frameActive      bool
	framePipelineKey string
	current          FrameStats
	last             FrameStats
	presented        int
	discarded        int
	configures       int

	live int

	acquireErr error
	presentErr error
}

var _ HeadlessBackend = &headlessRendererBackendImpl{}

func newHeadlessRendererBackend(width, height int) *headlessRendererBackendImpl {
	return &headlessRendererBackendImpl{
		mu:          &sync.Mutex{},
		width:       width,
		height:      height,
		fixedLayout: layout.Default(),
	}
}

func (b *headlessRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.width = width
	b.height = height
	b.configures++
}

func (b *headlessRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = mode
}

func (b *headlessRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline, layouts map[int]wgpu.BindGroupLayoutDescriptor) error {
	if p.Shader(shader.ShaderTypeVertex) == nil || p.Shader(shader.ShaderTypeFragment) == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.registered = append(b.registered, p.PipelineKey())
	p.SetPipeline(&headlessPipeline{key: p.PipelineKey()})
	return nil
}

func (b *headlessRendererBackendImpl) DestroyRenderPipeline(p pipeline.Pipeline) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := p.PipelineKey()
	for i, registered := range b.registered {
		if registered == key {
			b.registered = append(b.registered[:i], b.registered[i+1:]...)
			break
		}
	}
	p.SetPipeline(nil)
}

func (b *headlessRendererBackendImpl) CreateDeviceBuffer(label string, size uint64, usage wgpu.BufferUsage, data []byte) (any, error) {
	if size == 0 {
		return nil, fmt.Errorf("buffer %q has zero size", label)
	}
	if uint64(len(data)) > size {
		return nil, fmt.Errorf("buffer %q initial data (%d bytes) exceeds size %d", label, len(data), size)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	buf := &headlessBuffer{label: label, size: size, usage: usage}
	if len(data) > 0 {
		buf.writes = 1
	}
	b.live++
	return buf, nil
}

func (b *headlessRendererBackendImpl) WriteDeviceBuffer(native any, offset uint64, data []byte) error {
	buf, ok := native.(*headlessBuffer)
	if !ok {
		return fmt.Errorf("native %T is not a headless buffer", native)
	}
	if offset+uint64(len(data)) > buf.size {
		return fmt.Errorf("write of %d bytes at offset %d exceeds buffer %q size %d", len(data), offset, buf.label, buf.size)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	buf.writes++
	return nil
}

func (b *headlessRendererBackendImpl) CreateDeviceTexture(label string, stagingData common.TextureStagingData) (any, error) {
	if uint64(len(stagingData.Pixels)) != uint64(stagingData.Width)*uint64(stagingData.Height)*4 {
		return nil, fmt.Errorf("texture %q pixel data does not match %dx%d RGBA8", label, stagingData.Width, stagingData.Height)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.live++
	return &headlessTexture{label: label, width: stagingData.Width, height: stagingData.Height}, nil
}

func (b *headlessRendererBackendImpl) CreateDeviceSampler(label string, _ common.SamplerStagingData) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.live++
	return &headlessSampler{label: label}, nil
}

func (b *headlessRendererBackendImpl) CreateDeviceBindGroup(label string, group int, entries []resource.DeviceBindGroupEntry) (any, error) {
	if group < 0 || group >= layout.GroupCount {
		return nil, fmt.Errorf("group index %d outside fixed layout range [0, %d)", group, layout.GroupCount)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if want := len(b.fixedLayout.Groups[group].Bindings); len(entries) != want {
		return nil, fmt.Errorf("bind group %q declares %d entries, group %d requires %d", label, len(entries), group, want)
	}
	for _, entry := range entries {
		if entry.Buffer == nil && entry.TextureView == nil && entry.Sampler == nil {
			return nil, fmt.Errorf("bind group %q binding %d: no resource set", label, entry.Binding)
		}
	}

	b.live++
	return &headlessBindGroup{label: label, group: group, entries: len(entries)}, nil
}

func (b *headlessRendererBackendImpl) ReleaseDeviceResource(native any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch native.(type) {
	case *headlessBuffer, *headlessTexture, *headlessSampler, *headlessBindGroup:
		b.live--
	}
}

func (b *headlessRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.acquireErr; err != nil {
		b.acquireErr = nil
		return err
	}
	if b.frameActive {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	b.frameActive = true
	b.framePipelineKey = ""
	b.current = FrameStats{}
	return nil
}

func (b *headlessRendererBackendImpl) DrawCall(p pipeline.Pipeline, vertexBuffer, indexBuffer any, indexCount uint32, bindGroups []any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.frameActive {
		return
	}

	if key := p.PipelineKey(); key != b.framePipelineKey {
		b.current.PipelineBinds++
		b.framePipelineKey = key
	}
	for _, bg := range bindGroups {
		if bg != nil {
			b.current.BindGroupSets++
		}
	}
	b.current.Draws++
}

func (b *headlessRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.frameActive {
		return nil
	}
	b.last = b.current
	return nil
}

func (b *headlessRendererBackendImpl) DiscardFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.frameActive {
		return
	}
	b.frameActive = false
	b.framePipelineKey = ""
	b.discarded++
}

func (b *headlessRendererBackendImpl) Present() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.frameActive {
		return nil
	}
	b.frameActive = false

	if err := b.presentErr; err != nil {
		b.presentErr = nil
		return err
	}

	b.presented++
	return nil
}

func (b *headlessRendererBackendImpl) Release() {}

func (b *headlessRendererBackendImpl) InjectAcquireError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.acquireErr = err
}

func (b *headlessRendererBackendImpl) InjectPresentError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentErr = err
}

func (b *headlessRendererBackendImpl) LastFrame() FrameStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

func (b *headlessRendererBackendImpl) PresentedFrames() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.presented
}

func (b *headlessRendererBackendImpl) DiscardedFrames() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.discarded
}

func (b *headlessRendererBackendImpl) SurfaceConfigures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.configures
}

func (b *headlessRendererBackendImpl) RegisteredPipelines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, len(b.registered))
	copy(keys, b.registered)
	return keys
}

func (b *headlessRendererBackendImpl) LiveResources() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.live
}
