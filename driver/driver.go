// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package driver defines the device abstraction that the vtrace frame core
// is written against.  The device, its three queues (graphics, transfer,
// present), and the window surface are created by the application shell;
// a Driver wraps them and exposes exactly the operations the frame core
// needs: buffer and image allocation, swapchain management, synchronization,
// command recording and submission, and the ray-tracing extension surface
// (pipeline, shader-binding-table handles, acceleration structures).
//
// The vkd package implements Driver on Vulkan; the drivertest package
// implements it in memory for tests.
package driver

// Destroyer is anything holding device resources that must be
// released explicitly.
type Destroyer interface {
	Destroy()
}

// Driver is the complete device interface consumed by the frame core.
// All blocking calls (WaitFence, SubmitWait, WaitIdle) wait with an
// effectively infinite timeout: a wait that never completes indicates a
// fatal device condition, not a cancellable operation.
type Driver interface {
	// SurfaceCaps returns the current surface capabilities, formats and
	// present modes.  Queried fresh on every swapchain (re)creation
	// because the extent limits track the window size.
	SurfaceCaps() (SurfaceCaps, error)

	// CreateBuffer makes a buffer of given size with backing memory
	// allocated and bound.  Any allocation failure is returned, not
	// retried: it indicates unmet device requirements.
	CreateBuffer(size int, usage BuffUsage, props MemProps) (Buffer, error)

	// CreateImage makes a 2D image with backing memory and a full view.
	CreateImage(desc ImageDesc) (Image, error)

	// CreateSwapchain makes a swapchain per desc.  desc.Old, if non-nil,
	// is consumed (the backend may reuse and destroys it).
	CreateSwapchain(desc SwapchainDesc) (Swapchain, error)

	CreateSemaphore() (Semaphore, error)

	// CreateFence makes a fence, optionally already signaled so the
	// first wait on it returns immediately.
	CreateFence(signaled bool) (Fence, error)

	// WaitFence blocks until fc signals.
	WaitFence(fc Fence) error

	// ResetFence returns fc to the unsignaled state.
	ResetFence(fc Fence) error

	// NewCmd allocates a primary command buffer from the given
	// queue's pool.
	NewCmd(queue QueueKind) (Cmd, error)

	// SubmitWait submits an ended one-time command buffer on the given
	// queue, waits on a throwaway fence until it completes, then frees
	// the command buffer.  Used for uploads, layout transitions and
	// acceleration-structure builds, where completion must be observed
	// before the caller proceeds.
	SubmitWait(cmd Cmd, queue QueueKind) error

	// Submit queues an ended command buffer with the frame protocol's
	// semaphore / fence wiring.
	Submit(sub Submission) error

	// Present queues the given swapchain image for presentation after
	// wait signals.  The Result distinguishes the recoverable stale
	// codes (Suboptimal, ErrOutOfDate) from fatal ones.
	Present(sc Swapchain, imageIndex int, wait Semaphore) Result

	// WaitIdle blocks until the device is fully idle.
	WaitIdle() error

	// RayProps reports the device's ray-tracing pipeline properties,
	// needed for shader-binding-table layout.
	RayProps() (RayProps, error)

	CreateShaderModule(code []byte) (ShaderModule, error)

	CreateDescriptorLayout(bindings []DescriptorBinding) (DescriptorLayout, error)

	// CreateDescriptorPool makes a pool from which maxSets sets can be
	// allocated, with free-descriptor-set semantics so sets survive
	// repeated rewrites across swapchain recreations.
	CreateDescriptorPool(maxSets int, sizes []DescriptorPoolSize) (DescriptorPool, error)

	AllocDescriptorSets(pool DescriptorPool, layout DescriptorLayout, n int) ([]DescriptorSet, error)

	// UpdateDescriptorSets (re)points the given set bindings.  Must be
	// callable repeatedly on the same sets.
	UpdateDescriptorSets(writes []DescriptorWrite) error

	CreateRayPipeline(desc RayPipelineDesc) (Pipeline, error)

	// GroupHandles returns the packed shader-group handles for the
	// first groupCount groups of a ray pipeline, HandleSize bytes each.
	GroupHandles(pl Pipeline, groupCount int) ([]byte, error)

	// AccelSizes queries the buffer and scratch sizes required to build
	// the described acceleration structure.
	AccelSizes(desc AccelDesc) (AccelSizes, error)

	// CreateAccel creates an (unbuilt) acceleration structure of given
	// kind backed by size bytes of buf.
	CreateAccel(kind AccelKind, buf Buffer, size int) (Accel, error)
}

// Buffer is a device buffer with bound backing memory.
type Buffer interface {
	Destroyer

	// Size returns the allocated byte size.
	Size() int

	// Map returns the persistently host-mapped bytes of a host-visible
	// buffer.  The mapping stays valid until Destroy.
	Map() ([]byte, error)

	// DeviceAddress returns the buffer device address, for
	// acceleration-structure build inputs and shader-binding tables.
	DeviceAddress() uint64
}

// Image is a 2D device image with a full-range view.  For swapchain-owned
// images Destroy releases only the view; the image itself belongs to the
// swapchain.
type Image interface {
	Destroyer
	Extent() Extent
	Format() Format
}

// Swapchain owns the presentable surface images.
type Swapchain interface {
	Destroyer

	// Images returns the presentable images, count chosen by the device.
	Images() []Image

	Format() Format
	Extent() Extent
	PresentMode() PresentMode

	// Acquire gets the index of the next presentable image, signaling
	// wait when it is actually available.  Success and Suboptimal both
	// deliver a usable index.
	Acquire(wait Semaphore) (imageIndex int, res Result)
}

// Semaphore orders GPU-side work only; never observable by the CPU.
type Semaphore interface {
	Destroyer
}

// Fence orders CPU-observable completion.
type Fence interface {
	Destroyer
}

type ShaderModule interface {
	Destroyer
}

type Pipeline interface {
	Destroyer
}

type DescriptorLayout interface {
	Destroyer
}

type DescriptorPool interface {
	Destroyer
}

// DescriptorSet is freed with its pool, hence no Destroy.
type DescriptorSet interface{}

// Accel is an acceleration structure handle.  Its backing Buffer is owned
// and destroyed by whoever allocated it, after the Accel itself.
type Accel interface {
	Destroyer

	// DeviceAddress returns the acceleration structure device address,
	// referenced by top-level instance records.
	DeviceAddress() uint64
}

// Cmd is a recordable primary command buffer.  Recording calls are not
// individually fallible: errors surface at End or submission, matching
// how the underlying API defers command-buffer errors.
type Cmd interface {
	Begin() error
	End() error

	// Reset returns the buffer to the initial state for re-recording.
	Reset() error

	// CopyBuffer copies size bytes from the start of src to dst.
	CopyBuffer(src, dst Buffer, size int)

	// Barrier records an image layout transition / memory barrier.
	Barrier(br ImageBarrier)

	// BuildAccel records a build of dst per desc using scratch.
	BuildAccel(desc AccelDesc, dst Accel, scratch Buffer)

	// BindRayPipeline binds pl and its one descriptor set at the
	// ray-tracing bind point.
	BindRayPipeline(pl Pipeline, set DescriptorSet)

	// TraceRays dispatches width x height rays against the bound
	// pipeline, reading shader groups from tbl.
	TraceRays(tbl SBTable, width, height int)

	// Blit copies src (TransferSrc layout) over dst (TransferDst
	// layout) with nearest filtering, full extents.
	Blit(src, dst Image, srcExt, dstExt Extent)

	// Free releases the command buffer back to its pool.
	Free()
}
