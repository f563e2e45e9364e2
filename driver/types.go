// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

// Extent is a 2D pixel extent.
type Extent struct {
	Width  int
	Height int
}

// IsZero returns true if either dimension is zero (minimized window).
func (ex Extent) IsZero() bool {
	return ex.Width == 0 || ex.Height == 0
}

// ExtentUndefined is the sentinel a surface reports for CurrentExtent.Width
// when the swapchain extent is determined by the window instead.
const ExtentUndefined = 0xFFFFFFFF

// Result is the outcome of an acquire / present / submit style operation,
// mirroring the API result codes the frame protocol must distinguish.
type Result int32

const (
	// Success is full success.
	Success Result = iota

	// Suboptimal delivered a usable image that no longer matches the
	// surface exactly.  Recoverable; tolerated on acquire, triggers
	// recreation on present.
	Suboptimal

	// ErrOutOfDate means the swapchain no longer matches the surface
	// and must be recreated.  Recoverable.
	ErrOutOfDate

	// ErrSurfaceLost means the surface itself is gone.  Fatal.
	ErrSurfaceLost

	// ErrDeviceLost means the logical device is gone.  Fatal.
	ErrDeviceLost

	// ErrFailed is any other device error.  Fatal.
	ErrFailed

	ResultN
)

//go:generate stringer -type=Result

// IsError returns true for anything but Success and Suboptimal.
// ErrOutOfDate is an error in this sense, but a recoverable one:
// the frame protocol matches it explicitly before this check.
func (rs Result) IsError() bool {
	switch rs {
	case Success, Suboptimal:
		return false
	}
	return true
}

// QueueKind selects one of the three queues the application shell provides.
type QueueKind int32

const (
	// GraphicsQueue runs ray tracing and blits.
	GraphicsQueue QueueKind = iota

	// TransferQueue runs uploads and acceleration-structure builds.
	TransferQueue

	// PresentQueue presents swapchain images.
	PresentQueue

	QueueKindN
)

//go:generate stringer -type=QueueKind

// PresentMode is the swapchain presentation mode.
type PresentMode int32

const (
	// Fifo is vsync; always supported.
	Fifo PresentMode = iota

	// Mailbox is low-latency triple-buffering.
	Mailbox

	// Immediate presents without waiting; may tear.
	Immediate

	// FifoRelaxed is vsync that tears instead of stuttering when late.
	FifoRelaxed

	PresentModeN
)

//go:generate stringer -type=PresentMode

// Format is the subset of image pixel formats the frame core selects among.
type Format int32

const (
	FormatUndefined Format = iota
	FormatR8G8B8A8Unorm
	FormatR8G8B8A8Srgb
	FormatB8G8R8A8Unorm
	FormatB8G8R8A8Srgb

	FormatN
)

//go:generate stringer -type=Format

// ColorSpace is the surface color space.
type ColorSpace int32

const (
	ColorSpaceSRGBNonlinear ColorSpace = iota

	ColorSpaceN
)

// SurfaceFormat pairs a pixel format with a color space.
type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

// SurfaceCaps is the surface capability / format / present-mode query
// result consumed from the device collaborator.
type SurfaceCaps struct {
	// MinImageCount is the fewest swapchain images the device accepts.
	MinImageCount int

	// MaxImageCount is the most swapchain images the device accepts;
	// 0 means no limit.
	MaxImageCount int

	// CurrentExtent is the surface extent; Width == ExtentUndefined
	// means the window size decides.
	CurrentExtent Extent

	// MinImageExtent and MaxImageExtent bound the swapchain extent
	// when CurrentExtent is undefined.
	MinImageExtent Extent
	MaxImageExtent Extent

	// Formats are the supported surface formats, preference-ordered
	// by the device.
	Formats []SurfaceFormat

	// PresentModes are the supported present modes.  Fifo is always
	// present per the API guarantee.
	PresentModes []PresentMode
}

// ImageLayout is an image memory layout for barrier transitions.
type ImageLayout int32

const (
	LayoutUndefined ImageLayout = iota

	// LayoutGeneral is required while the ray-generation shader writes
	// the output image as a storage image.
	LayoutGeneral

	LayoutTransferSrc
	LayoutTransferDst
	LayoutPresentSrc

	ImageLayoutN
)

//go:generate stringer -type=ImageLayout

// PipeStage is a pipeline stage for barrier and submit-wait scoping.
type PipeStage uint32

const (
	StageTop PipeStage = 1 << iota
	StageRayTracing
	StageTransfer
	StageColorOutput
	StageBottom
)

// Access is a memory access scope for barriers.
type Access uint32

const (
	AccessNone        Access = 0
	AccessShaderRead  Access = 1 << iota
	AccessShaderWrite
	AccessTransferRead
	AccessTransferWrite
	AccessMemoryRead
)

// BuffUsage is a buffer usage bit set.
type BuffUsage uint32

const (
	BuffVertex BuffUsage = 1 << iota
	BuffIndex
	BuffUniform
	BuffStorage
	BuffTransferSrc
	BuffTransferDst

	// BuffDeviceAddress makes the buffer addressable by device address.
	BuffDeviceAddress

	// BuffAccelInput marks acceleration-structure build input
	// (vertex / index / instance data).
	BuffAccelInput

	// BuffAccelStore backs an acceleration structure.
	BuffAccelStore

	// BuffSBT backs a shader-binding table.
	BuffSBT
)

// MemProps is a memory property bit set.
type MemProps uint32

const (
	MemDeviceLocal MemProps = 1 << iota
	MemHostVisible
	MemHostCoherent
)

// ImageUsage is an image usage bit set.
type ImageUsage uint32

const (
	ImageColorAttachment ImageUsage = 1 << iota
	ImageStorage
	ImageTransferSrc
	ImageTransferDst
)

// ImageDesc describes a 2D image to create.
type ImageDesc struct {
	Extent Extent
	Format Format
	Usage  ImageUsage
	Props  MemProps
}

// SwapchainDesc describes a swapchain to create.
type SwapchainDesc struct {
	Extent      Extent
	Format      Format
	ColorSpace  ColorSpace
	ImageCount  int
	PresentMode PresentMode
	Usage       ImageUsage

	// Old, if non-nil, is the retired swapchain, consumed by creation.
	Old Swapchain
}

// ImageBarrier is an image layout transition with its stage/access scopes.
type ImageBarrier struct {
	Image     Image
	OldLayout ImageLayout
	NewLayout ImageLayout
	SrcStage  PipeStage
	DstStage  PipeStage
	SrcAccess Access
	DstAccess Access
}

// Submission is one frame-protocol queue submission.
type Submission struct {
	Cmd   Cmd
	Queue QueueKind

	// Wait, if non-nil, is waited on at WaitStage before execution.
	Wait      Semaphore
	WaitStage PipeStage

	// Signal, if non-nil, is signaled on completion.
	Signal Semaphore

	// Fence, if non-nil, is signaled on completion.
	Fence Fence
}

// RayProps are the device ray-tracing pipeline properties that determine
// shader-binding-table layout.
type RayProps struct {
	// HandleSize is the byte size of one shader group handle.
	HandleSize int

	// HandleAlignment is the required alignment of handles within
	// a table region.
	HandleAlignment int

	// BaseAlignment is the required alignment of region base addresses.
	BaseAlignment int
}

// ShaderKind is a ray-tracing shader stage kind.
type ShaderKind int32

const (
	RayGenShader ShaderKind = iota
	MissShader
	ClosestHitShader

	ShaderKindN
)

// ShaderStage is one pipeline stage: a kind plus its module.
type ShaderStage struct {
	Kind   ShaderKind
	Module ShaderModule
}

// ShaderUnused marks an unused stage index in a ShaderGroup.
const ShaderUnused = -1

// GroupKind is a shader group kind.
type GroupKind int32

const (
	// GroupGeneral is a ray-generation or miss group.
	GroupGeneral GroupKind = iota

	// GroupTriangles is a triangle hit group.
	GroupTriangles

	GroupKindN
)

// ShaderGroup references stages by index into RayPipelineDesc.Stages.
// Unused slots hold ShaderUnused.
type ShaderGroup struct {
	Kind       GroupKind
	General    int
	ClosestHit int
}

// RayPipelineDesc describes a ray-tracing pipeline.
type RayPipelineDesc struct {
	Stages []ShaderStage
	Groups []ShaderGroup
	Layout DescriptorLayout

	// MaxRecursion bounds recursive trace calls from hit shaders.
	MaxRecursion int
}

// SBTable locates the shader-binding table for a trace dispatch: three
// regions (ray-generation, miss, hit) at Stride intervals from the start
// of Buffer, each region Stride bytes.
type SBTable struct {
	Buffer Buffer

	// Stride is the padded group stride; also each region's size.
	Stride int
}

// DescriptorKind is a descriptor binding type.
type DescriptorKind int32

const (
	DescAccel DescriptorKind = iota
	DescStorageImage
	DescUniform

	DescriptorKindN
)

//go:generate stringer -type=DescriptorKind

// DescriptorBinding is one binding slot in a descriptor-set layout.
type DescriptorBinding struct {
	Binding int
	Kind    DescriptorKind
	Count   int

	// Stages is the shader stages that read the binding.
	Stages ShaderKind
}

// DescriptorPoolSize sizes one descriptor kind within a pool.
type DescriptorPoolSize struct {
	Kind  DescriptorKind
	Count int
}

// DescriptorWrite points one set binding at a resource.  Exactly one of
// Accel, Image, Buffer is set, per Kind.
type DescriptorWrite struct {
	Set     DescriptorSet
	Binding int
	Kind    DescriptorKind

	Accel Accel

	// Image is bound at LayoutGeneral (storage image).
	Image Image

	// Buffer is bound whole-range (uniform).
	Buffer Buffer
}

// AccelKind distinguishes bottom- and top-level acceleration structures.
type AccelKind int32

const (
	// BottomLevel indexes raw triangle geometry.
	BottomLevel AccelKind = iota

	// TopLevel indexes instances of bottom-level structures.
	TopLevel

	AccelKindN
)

//go:generate stringer -type=AccelKind

// AccelDesc describes an acceleration-structure build: triangle geometry
// for BottomLevel, an instance array for TopLevel.  Addresses refer to
// buffers created with BuffDeviceAddress | BuffAccelInput.
type AccelDesc struct {
	Kind AccelKind

	// bottom level: triangle geometry
	VertexAddr   uint64
	VertexStride int
	VertexCount  int
	IndexAddr    uint64

	// top level: packed instance records
	InstanceAddr uint64

	// PrimitiveCount is triangles for BottomLevel, instances for TopLevel.
	PrimitiveCount int
}

// AccelSizes is the result of an AccelSizes query.
type AccelSizes struct {
	// Accel is the required backing-buffer size.
	Accel int

	// Scratch is the required transient scratch-buffer size.
	Scratch int
}
