// Package resource owns the lifetime of every GPU resource the engine
// creates. Resources are referenced through opaque, monotonically issued
// handles; binding groups hold refcounts on the resources they reference, so
// destroying a resource that a live binding group still uses fails instead
// of leaving the GPU with a dangling reference.
package resource

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ember3d/ember-go/common"
	"github.com/ember3d/ember-go/engine/renderer/layout"
	"github.com/cogentcore/webgpu/wgpu"
)

// BufferKind classifies a GPU buffer by its usage.
type BufferKind int

const (
	// BufferKindVertex is a vertex buffer.
	BufferKindVertex BufferKind = iota

	// BufferKindIndex is an index buffer.
	BufferKindIndex

	// BufferKindUniform is a uniform buffer.
	BufferKindUniform
)

// Usage returns the wgpu buffer usage flags for this kind.
func (k BufferKind) Usage() wgpu.BufferUsage {
	switch k {
	case BufferKindVertex:
		return wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	case BufferKindIndex:
		return wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	default:
		return wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	}
}

// Handles are opaque resource identifiers issued by the Manager. Handle
// values are never reused; a destroyed resource's handle stays invalid.
type (
	// BufferHandle identifies a GPU buffer.
	BufferHandle uint64

	// TextureHandle identifies a GPU texture (and its view).
	TextureHandle uint64

	// SamplerHandle identifies a GPU sampler.
	SamplerHandle uint64

	// BindGroupHandle identifies a GPU binding group.
	BindGroupHandle uint64
)

// GroupResources names the resources bound into one binding group. Which
// fields must be set depends on the group slot of the fixed layout: the
// material group takes a texture and sampler, the uniform groups take a
// single uniform buffer.
type GroupResources struct {
	Buffer  BufferHandle
	Texture TextureHandle
	Sampler SamplerHandle
}

// DeviceBindGroupEntry is one resolved entry handed to the Device when
// creating a binding group. Exactly one of Buffer, TextureView, Sampler is
// non-nil.
type DeviceBindGroupEntry struct {
	Binding     uint32
	Buffer      any
	BufferSize  uint64
	TextureView any
	Sampler     any
}

// Device is the minimal GPU surface the Manager allocates through. Both the
// wgpu renderer backend and the headless backend implement it. Natives are
// opaque; the wgpu backend type-asserts them back to wgpu objects.
type Device interface {
	// CreateDeviceBuffer allocates a buffer and writes the initial data when non-nil.
	CreateDeviceBuffer(label string, size uint64, usage wgpu.BufferUsage, data []byte) (any, error)

	// WriteDeviceBuffer writes data into a buffer at the given offset.
	WriteDeviceBuffer(native any, offset uint64, data []byte) error

	// CreateDeviceTexture allocates an RGBA8 2D texture, uploads the pixels,
	// and returns the texture view native used for binding.
	CreateDeviceTexture(label string, data common.TextureStagingData) (any, error)

	// CreateDeviceSampler creates a sampler from the staging configuration.
	CreateDeviceSampler(label string, data common.SamplerStagingData) (any, error)

	// CreateDeviceBindGroup creates a binding group against the given fixed
	// layout group index with the resolved entries.
	CreateDeviceBindGroup(label string, group int, entries []DeviceBindGroupEntry) (any, error)

	// ReleaseDeviceResource releases a native resource previously created
	// through this device.
	ReleaseDeviceResource(native any)
}

type bufferEntry struct {
	label  string
	kind   BufferKind
	size   uint64
	native any
	refs   int
}

type textureEntry struct {
	label   string
	native  any
	refs    int
	pending bool
}

type samplerEntry struct {
	label  string
	native any
	refs   int
}

type bindGroupEntry struct {
	label  string
	group  int
	native any
	res    GroupResources
}

// managerImpl is the implementation of the Manager interface.
type managerImpl struct {
	mu *sync.Mutex

	device Device
	layout layout.GroupLayout

	nextHandle atomic.Uint64

	buffers    map[BufferHandle]*bufferEntry
	textures   map[TextureHandle]*textureEntry
	samplers   map[SamplerHandle]*samplerEntry
	bindGroups map[BindGroupHandle]*bindGroupEntry

	uploadCount atomic.Uint64

	uploads *uploadQueue
}

// Manager defines the interface for the GPU resource manager.
type Manager interface {
	// CreateBuffer allocates a GPU buffer of the given kind and size. When
	// initial data is provided it is uploaded before the handle is returned.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - kind: buffer usage classification
	//   - size: buffer size in bytes
	//   - initial: optional initial contents (may be nil)
	//
	// Returns:
	//   - BufferHandle: the handle for the new buffer
	//   - error: *AllocationError on backend failure
	CreateBuffer(label string, kind BufferKind, size uint64, initial []byte) (BufferHandle, error)

	// UpdateUniform writes new contents into a uniform buffer. The data size
	// must equal the buffer size exactly.
	//
	// Parameters:
	//   - h: the uniform buffer handle
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: ErrInvalidHandle for stale handles, ErrLayoutMismatch for size mismatches
	UpdateUniform(h BufferHandle, data []byte) error

	// CreateBindingGroup creates a binding group for one slot of the fixed
	// group layout and increments the refcount of every referenced resource.
	//
	// Parameters:
	//   - group: the fixed layout group index (0..3)
	//   - res: the resources to bind, per the group's layout
	//
	// Returns:
	//   - BindGroupHandle: the handle for the new binding group
	//   - error: ErrLayoutMismatch, ErrInvalidHandle, ErrUploadPending, or *AllocationError
	CreateBindingGroup(group int, res GroupResources) (BindGroupHandle, error)

	// LoadTexture uploads RGBA8 pixel data as a 2D texture synchronously.
	//
	// Parameters:
	//   - label: debug label for the texture
	//   - data: staged pixel data with dimensions
	//
	// Returns:
	//   - TextureHandle: the handle for the new texture
	//   - error: *AllocationError on backend failure
	LoadTexture(label string, data common.TextureStagingData) (TextureHandle, error)

	// LoadTextureAsync decodes and uploads an image on the background worker
	// pool. The returned handle is issued immediately but stays pending until
	// the ticket completes; CreateBindingGroup refuses pending textures with
	// ErrUploadPending, which makes the upload fence an ordering guarantee.
	//
	// Parameters:
	//   - label: debug label for the texture
	//   - img: image to decode (PNG/JPEG, from bytes or disk)
	//
	// Returns:
	//   - TextureHandle: the handle for the texture being uploaded
	//   - *UploadTicket: fence to wait on before binding the texture
	LoadTextureAsync(label string, img *common.ImageTexture) (TextureHandle, *UploadTicket)

	// CreateSampler creates a sampler for the given filter mode.
	//
	// Parameters:
	//   - label: debug label for the sampler
	//   - filter: coarse filter quality
	//
	// Returns:
	//   - SamplerHandle: the handle for the new sampler
	//   - error: *AllocationError on backend failure
	CreateSampler(label string, filter common.FilterMode) (SamplerHandle, error)

	// DestroyBuffer releases a buffer. Fails with *DanglingReferenceError if
	// a live binding group still references it.
	DestroyBuffer(h BufferHandle) error

	// DestroyTexture releases a texture. Fails with *DanglingReferenceError
	// if a live binding group still references it.
	DestroyTexture(h TextureHandle) error

	// DestroySampler releases a sampler. Fails with *DanglingReferenceError
	// if a live binding group still references it.
	DestroySampler(h SamplerHandle) error

	// DestroyBindingGroup releases a binding group and decrements the
	// refcounts of the resources it referenced.
	DestroyBindingGroup(h BindGroupHandle) error

	// BufferNative resolves a buffer handle to its backend native object.
	//
	// Returns:
	//   - any: the native object
	//   - bool: false if the handle is stale
	BufferNative(h BufferHandle) (any, bool)

	// BindGroupNative resolves a binding group handle to its backend native object.
	//
	// Returns:
	//   - any: the native object
	//   - bool: false if the handle is stale
	BindGroupNative(h BindGroupHandle) (any, bool)

	// UploadCount returns the total number of uniform writes issued through
	// UpdateUniform since the manager was created.
	UploadCount() uint64

	// Release destroys every live binding group and resource. Intended for
	// shutdown; individual Destroy* errors are not possible here because
	// binding groups are released first.
	Release()
}

var _ Manager = &managerImpl{}

// NewManager creates a resource manager allocating through the given device.
// Panics if device is nil: the manager is useless without one.
//
// Parameters:
//   - device: the GPU device surface to allocate through
//   - options: functional options to configure the manager
//
// Returns:
//   - Manager: the newly created manager
func NewManager(device Device, options ...ManagerBuilderOption) Manager {
	if device == nil {
		panic("resource: NewManager requires a non-nil device")
	}
	m := &managerImpl{
		mu:         &sync.Mutex{},
		device:     device,
		layout:     layout.Default(),
		buffers:    make(map[BufferHandle]*bufferEntry),
		textures:   make(map[TextureHandle]*textureEntry),
		samplers:   make(map[SamplerHandle]*samplerEntry),
		bindGroups: make(map[BindGroupHandle]*bindGroupEntry),
	}
	for _, option := range options {
		option(m)
	}
	if m.uploads == nil {
		m.uploads = newUploadQueue(defaultUploadWorkers)
	}
	return m
}

func (m *managerImpl) CreateBuffer(label string, kind BufferKind, size uint64, initial []byte) (BufferHandle, error) {
	native, err := m.device.CreateDeviceBuffer(label, size, kind.Usage(), initial)
	if err != nil {
		return 0, &AllocationError{Label: label, Err: err}
	}
	h := BufferHandle(m.nextHandle.Add(1))
	m.mu.Lock()
	m.buffers[h] = &bufferEntry{label: label, kind: kind, size: size, native: native}
	m.mu.Unlock()
	return h, nil
}

func (m *managerImpl) UpdateUniform(h BufferHandle, data []byte) error {
	m.mu.Lock()
	entry, ok := m.buffers[h]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: buffer %d", ErrInvalidHandle, h)
	}
	if uint64(len(data)) != entry.size {
		return fmt.Errorf("%w: uniform write of %d bytes into %d-byte buffer %q", ErrLayoutMismatch, len(data), entry.size, entry.label)
	}
	if err := m.device.WriteDeviceBuffer(entry.native, 0, data); err != nil {
		return fmt.Errorf("uniform write to %q failed: %w", entry.label, err)
	}
	m.uploadCount.Add(1)
	return nil
}

func (m *managerImpl) CreateBindingGroup(group int, res GroupResources) (BindGroupHandle, error) {
	if group < 0 || group >= layout.GroupCount {
		return 0, fmt.Errorf("%w: group index %d outside fixed layout range [0, %d)", ErrLayoutMismatch, group, layout.GroupCount)
	}

	m.mu.Lock()
	entries, refs, err := m.resolveGroupLocked(group, res)
	if err != nil {
		m.mu.Unlock()
		return 0, err
	}
	// Refcounts move only after every handle resolved, so a failed create
	// never leaves partial references behind.
	for _, bump := range refs {
		bump(1)
	}
	m.mu.Unlock()

	groupDef := m.layout.Groups[group]
	label := fmt.Sprintf("%s_group", groupDef.Label)
	native, err := m.device.CreateDeviceBindGroup(label, group, entries)
	if err != nil {
		m.mu.Lock()
		for _, bump := range refs {
			bump(-1)
		}
		m.mu.Unlock()
		return 0, &AllocationError{Label: label, Err: err}
	}

	h := BindGroupHandle(m.nextHandle.Add(1))
	m.mu.Lock()
	m.bindGroups[h] = &bindGroupEntry{label: label, group: group, native: native, res: res}
	m.mu.Unlock()
	return h, nil
}

// resolveGroupLocked maps GroupResources onto the fixed layout's bindings for
// the group, validating that exactly the required handles are set and live.
// Caller must hold m.mu.
func (m *managerImpl) resolveGroupLocked(group int, res GroupResources) ([]DeviceBindGroupEntry, []func(int), error) {
	groupDef := m.layout.Groups[group]
	entries := make([]DeviceBindGroupEntry, 0, len(groupDef.Bindings))
	refs := make([]func(int), 0, len(groupDef.Bindings))

	needBuffer, needTexture, needSampler := false, false, false
	for _, b := range groupDef.Bindings {
		switch b.Type {
		case layout.BindingTypeUniformBuffer:
			needBuffer = true
			if res.Buffer == 0 {
				return nil, nil, fmt.Errorf("%w: group %d (%s) requires a uniform buffer", ErrLayoutMismatch, group, groupDef.Label)
			}
			entry, ok := m.buffers[res.Buffer]
			if !ok {
				return nil, nil, fmt.Errorf("%w: buffer %d", ErrInvalidHandle, res.Buffer)
			}
			if entry.kind != BufferKindUniform {
				return nil, nil, fmt.Errorf("%w: group %d (%s) requires a uniform buffer, got kind %d", ErrLayoutMismatch, group, groupDef.Label, entry.kind)
			}
			if entry.size != b.MinBindingSize {
				return nil, nil, fmt.Errorf("%w: group %d (%s) requires a %d-byte uniform, buffer %q is %d bytes",
					ErrLayoutMismatch, group, groupDef.Label, b.MinBindingSize, entry.label, entry.size)
			}
			entries = append(entries, DeviceBindGroupEntry{Binding: b.Binding, Buffer: entry.native, BufferSize: entry.size})
			refs = append(refs, func(d int) { entry.refs += d })
		case layout.BindingTypeTexture:
			needTexture = true
			if res.Texture == 0 {
				return nil, nil, fmt.Errorf("%w: group %d (%s) requires a texture", ErrLayoutMismatch, group, groupDef.Label)
			}
			entry, ok := m.textures[res.Texture]
			if !ok {
				return nil, nil, fmt.Errorf("%w: texture %d", ErrInvalidHandle, res.Texture)
			}
			if entry.pending {
				return nil, nil, fmt.Errorf("%w: texture %q", ErrUploadPending, entry.label)
			}
			entries = append(entries, DeviceBindGroupEntry{Binding: b.Binding, TextureView: entry.native})
			refs = append(refs, func(d int) { entry.refs += d })
		case layout.BindingTypeSampler:
			needSampler = true
			if res.Sampler == 0 {
				return nil, nil, fmt.Errorf("%w: group %d (%s) requires a sampler", ErrLayoutMismatch, group, groupDef.Label)
			}
			entry, ok := m.samplers[res.Sampler]
			if !ok {
				return nil, nil, fmt.Errorf("%w: sampler %d", ErrInvalidHandle, res.Sampler)
			}
			entries = append(entries, DeviceBindGroupEntry{Binding: b.Binding, Sampler: entry.native})
			refs = append(refs, func(d int) { entry.refs += d })
		}
	}

	if !needBuffer && res.Buffer != 0 {
		return nil, nil, fmt.Errorf("%w: group %d (%s) does not take a buffer", ErrLayoutMismatch, group, groupDef.Label)
	}
	if !needTexture && res.Texture != 0 {
		return nil, nil, fmt.Errorf("%w: group %d (%s) does not take a texture", ErrLayoutMismatch, group, groupDef.Label)
	}
	if !needSampler && res.Sampler != 0 {
		return nil, nil, fmt.Errorf("%w: group %d (%s) does not take a sampler", ErrLayoutMismatch, group, groupDef.Label)
	}
	return entries, refs, nil
}

func (m *managerImpl) LoadTexture(label string, data common.TextureStagingData) (TextureHandle, error) {
	native, err := m.device.CreateDeviceTexture(label, data)
	if err != nil {
		return 0, &AllocationError{Label: label, Err: err}
	}
	h := TextureHandle(m.nextHandle.Add(1))
	m.mu.Lock()
	m.textures[h] = &textureEntry{label: label, native: native}
	m.mu.Unlock()
	return h, nil
}

func (m *managerImpl) LoadTextureAsync(label string, img *common.ImageTexture) (TextureHandle, *UploadTicket) {
	h := TextureHandle(m.nextHandle.Add(1))
	m.mu.Lock()
	m.textures[h] = &textureEntry{label: label, pending: true}
	m.mu.Unlock()

	ticket := m.uploads.submit(int(h), func() error {
		data, err := img.Decode()
		if err != nil {
			return fmt.Errorf("async texture %q: %w", label, err)
		}
		native, err := m.device.CreateDeviceTexture(label, data)
		if err != nil {
			return &AllocationError{Label: label, Err: err}
		}
		m.mu.Lock()
		entry, ok := m.textures[h]
		if ok {
			entry.native = native
			entry.pending = false
		}
		m.mu.Unlock()
		if !ok {
			m.device.ReleaseDeviceResource(native)
		}
		return nil
	})
	return h, ticket
}

func (m *managerImpl) CreateSampler(label string, filter common.FilterMode) (SamplerHandle, error) {
	native, err := m.device.CreateDeviceSampler(label, filter.SamplerData())
	if err != nil {
		return 0, &AllocationError{Label: label, Err: err}
	}
	h := SamplerHandle(m.nextHandle.Add(1))
	m.mu.Lock()
	m.samplers[h] = &samplerEntry{label: label, native: native}
	m.mu.Unlock()
	return h, nil
}

func (m *managerImpl) DestroyBuffer(h BufferHandle) error {
	m.mu.Lock()
	entry, ok := m.buffers[h]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: buffer %d", ErrInvalidHandle, h)
	}
	if entry.refs > 0 {
		refs := entry.refs
		m.mu.Unlock()
		return &DanglingReferenceError{Kind: "buffer", Label: entry.label, Refs: refs}
	}
	delete(m.buffers, h)
	m.mu.Unlock()
	m.device.ReleaseDeviceResource(entry.native)
	return nil
}

func (m *managerImpl) DestroyTexture(h TextureHandle) error {
	m.mu.Lock()
	entry, ok := m.textures[h]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: texture %d", ErrInvalidHandle, h)
	}
	if entry.refs > 0 {
		refs := entry.refs
		m.mu.Unlock()
		return &DanglingReferenceError{Kind: "texture", Label: entry.label, Refs: refs}
	}
	delete(m.textures, h)
	m.mu.Unlock()
	if entry.native != nil {
		m.device.ReleaseDeviceResource(entry.native)
	}
	return nil
}

func (m *managerImpl) DestroySampler(h SamplerHandle) error {
	m.mu.Lock()
	entry, ok := m.samplers[h]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: sampler %d", ErrInvalidHandle, h)
	}
	if entry.refs > 0 {
		refs := entry.refs
		m.mu.Unlock()
		return &DanglingReferenceError{Kind: "sampler", Label: entry.label, Refs: refs}
	}
	delete(m.samplers, h)
	m.mu.Unlock()
	m.device.ReleaseDeviceResource(entry.native)
	return nil
}

func (m *managerImpl) DestroyBindingGroup(h BindGroupHandle) error {
	m.mu.Lock()
	entry, ok := m.bindGroups[h]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: binding group %d", ErrInvalidHandle, h)
	}
	delete(m.bindGroups, h)
	if buf, exists := m.buffers[entry.res.Buffer]; exists {
		buf.refs--
	}
	if tex, exists := m.textures[entry.res.Texture]; exists {
		tex.refs--
	}
	if smp, exists := m.samplers[entry.res.Sampler]; exists {
		smp.refs--
	}
	m.mu.Unlock()
	m.device.ReleaseDeviceResource(entry.native)
	return nil
}

func (m *managerImpl) BufferNative(h BufferHandle) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.buffers[h]
	if !ok {
		return nil, false
	}
	return entry.native, true
}

func (m *managerImpl) BindGroupNative(h BindGroupHandle) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.bindGroups[h]
	if !ok {
		return nil, false
	}
	return entry.native, true
}

func (m *managerImpl) UploadCount() uint64 {
	return m.uploadCount.Load()
}

func (m *managerImpl) Release() {
	m.mu.Lock()
	bindGroups := m.bindGroups
	buffers := m.buffers
	textures := m.textures
	samplers := m.samplers
	m.bindGroups = make(map[BindGroupHandle]*bindGroupEntry)
	m.buffers = make(map[BufferHandle]*bufferEntry)
	m.textures = make(map[TextureHandle]*textureEntry)
	m.samplers = make(map[SamplerHandle]*samplerEntry)
	m.mu.Unlock()

	for _, entry := range bindGroups {
		m.device.ReleaseDeviceResource(entry.native)
	}
	for _, entry := range buffers {
		m.device.ReleaseDeviceResource(entry.native)
	}
	for _, entry := range textures {
		if entry.native != nil {
			m.device.ReleaseDeviceResource(entry.native)
		}
	}
	for _, entry := range samplers {
		m.device.ReleaseDeviceResource(entry.native)
	}
}
