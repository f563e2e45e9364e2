// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This is initially adapted from https://github.com/vulkan-go/asche
// Copyright © 2017 Maxim Kupriianov <max@kc.vc>, under the MIT License

// Package vkd implements driver.Driver on Vulkan via github.com/goki/vulkan.
// The application shell owns instance / device / queue creation and hands
// the ready handles to New.
//
// The goki binding predates the KHR ray-tracing and buffer-device-address
// extensions, so those entry points cannot be called through it: the shell
// supplies them as a RayProcs table (typically a small cgo shim over the
// extension function pointers).  Everything else -- buffers, memory, images,
// swapchain, synchronization, submission, presentation, descriptors -- goes
// through the binding directly.
package vkd

import (
	"errors"
	"unsafe"

	vk "github.com/goki/vulkan"

	"goki.dev/vtrace/v2/driver"
)

// extension constant values the binding does not define
const (
	descriptorTypeAccel   = 1000150000 // VK_DESCRIPTOR_TYPE_ACCELERATION_STRUCTURE_KHR
	bindPointRayTracing   = 1000165000 // VK_PIPELINE_BIND_POINT_RAY_TRACING_KHR
	shaderStageRayGenBit  = 0x00000100 // VK_SHADER_STAGE_RAYGEN_BIT_KHR
	shaderStageClosestHit = 0x00000400 // VK_SHADER_STAGE_CLOSEST_HIT_BIT_KHR
	shaderStageMissBit    = 0x00000800 // VK_SHADER_STAGE_MISS_BIT_KHR
	stageRayTracingShader = 0x00200000 // VK_PIPELINE_STAGE_RAY_TRACING_SHADER_BIT_KHR

	buffUsageDeviceAddress = 0x00020000 // VK_BUFFER_USAGE_SHADER_DEVICE_ADDRESS_BIT
	buffUsageAccelInput    = 0x00080000 // VK_BUFFER_USAGE_ACCELERATION_STRUCTURE_BUILD_INPUT_READ_ONLY_BIT_KHR
	buffUsageAccelStore    = 0x00100000 // VK_BUFFER_USAGE_ACCELERATION_STRUCTURE_STORAGE_BIT_KHR
	buffUsageSBT           = 0x00000400 // VK_BUFFER_USAGE_SHADER_BINDING_TABLE_BIT_KHR
)

// StridedRegion is one shader-binding-table region for a trace dispatch.
type StridedRegion struct {
	Addr   uint64
	Stride uint64
	Size   uint64
}

// RayProcs is the ray-tracing extension surface, supplied by the
// application shell.  All handles for acceleration structures are the
// raw 64-bit VkAccelerationStructureKHR values.
type RayProcs struct {

	// Properties queries the ray-tracing pipeline properties.
	Properties func(pd vk.PhysicalDevice) driver.RayProps

	// BufferDeviceAddress queries a buffer's device address.
	BufferDeviceAddress func(dev vk.Device, buf vk.Buffer) uint64

	// AllocFlagsInfo, if non-nil, returns a PNext chain entry enabling
	// device addresses on a memory allocation.
	AllocFlagsInfo func() unsafe.Pointer

	// AccelSizes queries required structure / scratch sizes for a build.
	AccelSizes func(dev vk.Device, desc driver.AccelDesc) driver.AccelSizes

	// CreateAccel creates a structure of the given kind over size bytes
	// of buf.
	CreateAccel func(dev vk.Device, kind driver.AccelKind, buf vk.Buffer, size int) (uint64, error)

	// DestroyAccel destroys a structure.
	DestroyAccel func(dev vk.Device, accel uint64)

	// AccelAddress queries a structure's device address.
	AccelAddress func(dev vk.Device, accel uint64) uint64

	// CmdBuildAccel records a structure build.
	CmdBuildAccel func(cmd vk.CommandBuffer, desc driver.AccelDesc, accel uint64, scratchAddr uint64)

	// CreatePipeline creates a ray-tracing pipeline over the given
	// layout and shader modules (indexed by desc.Stages order).
	CreatePipeline func(dev vk.Device, desc driver.RayPipelineDesc, layout vk.PipelineLayout, mods []vk.ShaderModule) (vk.Pipeline, error)

	// GroupHandles returns count packed group handles of size bytes each.
	GroupHandles func(dev vk.Device, pl vk.Pipeline, count, size int) ([]byte, error)

	// CmdTraceRays records a trace dispatch.
	CmdTraceRays func(cmd vk.CommandBuffer, rgen, miss, hit StridedRegion, width, height int)

	// WriteAccelDescriptor points set binding at a structure.
	WriteAccelDescriptor func(dev vk.Device, set vk.DescriptorSet, binding int, accel uint64)
}

// Queue is one device queue with its command pool, both owned by the
// application shell.
type Queue struct {
	Queue vk.Queue
	Index uint32
	Pool  vk.CommandPool
}

// Driver implements driver.Driver on a ready logical device with three
// queues (graphics, transfer, present) and a window surface.
type Driver struct {

	// physical device, for capability queries
	PhysDev vk.PhysicalDevice `desc:"physical device, for capability queries"`

	// the logical device
	Dev vk.Device `desc:"the logical device"`

	// the window surface
	Surface vk.Surface `desc:"the window surface"`

	// the three queues, indexed by driver.QueueKind
	Queues [driver.QueueKindN]Queue `desc:"the three queues, indexed by driver.QueueKind"`

	// physical device memory properties, cached at New
	MemProps vk.PhysicalDeviceMemoryProperties `desc:"physical device memory properties, cached at New"`

	// ray-tracing extension entry points
	Ray *RayProcs `desc:"ray-tracing extension entry points"`
}

// New wraps ready device handles.  ray must be fully populated: a device
// without the ray-tracing extensions cannot run this renderer at all.
func New(pd vk.PhysicalDevice, dev vk.Device, surface vk.Surface, queues [driver.QueueKindN]Queue, ray *RayProcs) (*Driver, error) {
	if ray == nil {
		return nil, errors.New("vkd: ray tracing entry points are required")
	}
	d := &Driver{PhysDev: pd, Dev: dev, Surface: surface, Queues: queues, Ray: ray}
	vk.GetPhysicalDeviceMemoryProperties(pd, &d.MemProps)
	d.MemProps.Deref()
	return d, nil
}

// SurfaceCaps queries the surface capabilities, formats and present modes
// fresh: the extent limits track the window size.
func (d *Driver) SurfaceCaps() (driver.SurfaceCaps, error) {
	var caps driver.SurfaceCaps
	var sc vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(d.PhysDev, d.Surface, &sc)
	if IsError(ret) {
		return caps, NewError(ret)
	}
	sc.Deref()
	sc.CurrentExtent.Deref()
	sc.MinImageExtent.Deref()
	sc.MaxImageExtent.Deref()
	caps.MinImageCount = int(sc.MinImageCount)
	caps.MaxImageCount = int(sc.MaxImageCount)
	if sc.CurrentExtent.Width == vk.MaxUint32 {
		caps.CurrentExtent = driver.Extent{Width: driver.ExtentUndefined, Height: driver.ExtentUndefined}
	} else {
		caps.CurrentExtent = driver.Extent{Width: int(sc.CurrentExtent.Width), Height: int(sc.CurrentExtent.Height)}
	}
	caps.MinImageExtent = driver.Extent{Width: int(sc.MinImageExtent.Width), Height: int(sc.MinImageExtent.Height)}
	caps.MaxImageExtent = driver.Extent{Width: int(sc.MaxImageExtent.Width), Height: int(sc.MaxImageExtent.Height)}

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(d.PhysDev, d.Surface, &formatCount, nil)
	formats := make([]vk.SurfaceFormat, formatCount)
	vk.GetPhysicalDeviceSurfaceFormats(d.PhysDev, d.Surface, &formatCount, formats)
	for i := range formats {
		formats[i].Deref()
		caps.Formats = append(caps.Formats, driver.SurfaceFormat{
			Format:     FmFormat(formats[i].Format),
			ColorSpace: driver.ColorSpaceSRGBNonlinear,
		})
	}

	var modeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(d.PhysDev, d.Surface, &modeCount, nil)
	modes := make([]vk.PresentMode, modeCount)
	vk.GetPhysicalDeviceSurfacePresentModes(d.PhysDev, d.Surface, &modeCount, modes)
	for _, md := range modes {
		caps.PresentModes = append(caps.PresentModes, FmPresentMode(md))
	}
	return caps, nil
}

func (d *Driver) CreateSemaphore() (driver.Semaphore, error) {
	var sem vk.Semaphore
	ret := vk.CreateSemaphore(d.Dev, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &sem)
	if IsError(ret) {
		return nil, NewError(ret)
	}
	return &Semaphore{d: d, Sem: sem}, nil
}

func (d *Driver) CreateFence(signaled bool) (driver.Fence, error) {
	var flags vk.FenceCreateFlags
	if signaled {
		flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fen vk.Fence
	ret := vk.CreateFence(d.Dev, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: flags,
	}, nil, &fen)
	if IsError(ret) {
		return nil, NewError(ret)
	}
	return &Fence{d: d, Fence: fen}, nil
}

func (d *Driver) WaitFence(fc driver.Fence) error {
	fen := fc.(*Fence)
	ret := vk.WaitForFences(d.Dev, 1, []vk.Fence{fen.Fence}, vk.True, vk.MaxUint64)
	return NewError(ret)
}

func (d *Driver) ResetFence(fc driver.Fence) error {
	fen := fc.(*Fence)
	ret := vk.ResetFences(d.Dev, 1, []vk.Fence{fen.Fence})
	return NewError(ret)
}

func (d *Driver) Submit(sub driver.Submission) error {
	cmd := sub.Cmd.(*Cmd)
	si := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmd.CB},
	}
	if sub.Wait != nil {
		si.WaitSemaphoreCount = 1
		si.PWaitSemaphores = []vk.Semaphore{sub.Wait.(*Semaphore).Sem}
		si.PWaitDstStageMask = []vk.PipelineStageFlags{ToStages(sub.WaitStage)}
	}
	if sub.Signal != nil {
		si.SignalSemaphoreCount = 1
		si.PSignalSemaphores = []vk.Semaphore{sub.Signal.(*Semaphore).Sem}
	}
	fen := vk.NullFence
	if sub.Fence != nil {
		fen = sub.Fence.(*Fence).Fence
	}
	ret := vk.QueueSubmit(d.Queues[sub.Queue].Queue, 1, []vk.SubmitInfo{si}, fen)
	return NewError(ret)
}

// SubmitWait submits an ended one-time command buffer, waits on a
// throwaway fence, and frees the buffer.
func (d *Driver) SubmitWait(cmd driver.Cmd, queue driver.QueueKind) error {
	cd := cmd.(*Cmd)
	var fen vk.Fence
	ret := vk.CreateFence(d.Dev, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}, nil, &fen)
	if IsError(ret) {
		return NewError(ret)
	}
	ret = vk.QueueSubmit(d.Queues[queue].Queue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cd.CB},
	}}, fen)
	if !IsError(ret) {
		ret = vk.WaitForFences(d.Dev, 1, []vk.Fence{fen}, vk.True, vk.MaxUint64)
	}
	vk.DestroyFence(d.Dev, fen, nil)
	cd.Free()
	return NewError(ret)
}

func (d *Driver) Present(sc driver.Swapchain, imageIndex int, wait driver.Semaphore) driver.Result {
	sw := sc.(*Swapchain)
	pi := vk.PresentInfo{
		SType:          vk.StructureTypePresentInfo,
		SwapchainCount: 1,
		PSwapchains:    []vk.Swapchain{sw.SC},
		PImageIndices:  []uint32{uint32(imageIndex)},
	}
	if wait != nil {
		pi.WaitSemaphoreCount = 1
		pi.PWaitSemaphores = []vk.Semaphore{wait.(*Semaphore).Sem}
	}
	return ToResult(vk.QueuePresent(d.Queues[driver.PresentQueue].Queue, &pi))
}

func (d *Driver) WaitIdle() error {
	return NewError(vk.DeviceWaitIdle(d.Dev))
}

func (d *Driver) RayProps() (driver.RayProps, error) {
	return d.Ray.Properties(d.PhysDev), nil
}

func (d *Driver) CreateShaderModule(code []byte) (driver.ShaderModule, error) {
	var mod vk.ShaderModule
	ret := vk.CreateShaderModule(d.Dev, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    SliceUint32(code),
	}, nil, &mod)
	if IsError(ret) {
		return nil, NewError(ret)
	}
	return &ShaderModule{d: d, Mod: mod}, nil
}

func (d *Driver) CreateDescriptorLayout(bindings []driver.DescriptorBinding) (driver.DescriptorLayout, error) {
	vbs := make([]vk.DescriptorSetLayoutBinding, len(bindings))
	for i, bd := range bindings {
		vbs[i] = vk.DescriptorSetLayoutBinding{
			Binding:         uint32(bd.Binding),
			DescriptorType:  ToDescriptorType(bd.Kind),
			DescriptorCount: uint32(bd.Count),
			StageFlags:      vk.ShaderStageFlags(ToShaderStage(bd.Stages)),
		}
	}
	var layout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(d.Dev, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(vbs)),
		PBindings:    vbs,
	}, nil, &layout)
	if IsError(ret) {
		return nil, NewError(ret)
	}
	return &DescriptorLayout{d: d, Layout: layout}, nil
}

func (d *Driver) CreateDescriptorPool(maxSets int, sizes []driver.DescriptorPoolSize) (driver.DescriptorPool, error) {
	vss := make([]vk.DescriptorPoolSize, len(sizes))
	for i, sz := range sizes {
		vss[i] = vk.DescriptorPoolSize{
			Type:            ToDescriptorType(sz.Kind),
			DescriptorCount: uint32(sz.Count),
		}
	}
	var pool vk.DescriptorPool
	ret := vk.CreateDescriptorPool(d.Dev, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       uint32(maxSets),
		PoolSizeCount: uint32(len(vss)),
		PPoolSizes:    vss,
	}, nil, &pool)
	if IsError(ret) {
		return nil, NewError(ret)
	}
	return &DescriptorPool{d: d, Pool: pool}, nil
}

func (d *Driver) AllocDescriptorSets(pool driver.DescriptorPool, layout driver.DescriptorLayout, n int) ([]driver.DescriptorSet, error) {
	pl := pool.(*DescriptorPool)
	lo := layout.(*DescriptorLayout)
	layouts := make([]vk.DescriptorSetLayout, n)
	for i := range layouts {
		layouts[i] = lo.Layout
	}
	sets := make([]vk.DescriptorSet, n)
	ret := vk.AllocateDescriptorSets(d.Dev, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pl.Pool,
		DescriptorSetCount: uint32(n),
		PSetLayouts:        layouts,
	}, &sets[0])
	if IsError(ret) {
		return nil, NewError(ret)
	}
	out := make([]driver.DescriptorSet, n)
	for i, st := range sets {
		out[i] = &Set{Set: st}
	}
	return out, nil
}

func (d *Driver) UpdateDescriptorSets(writes []driver.DescriptorWrite) error {
	var vws []vk.WriteDescriptorSet
	for _, wr := range writes {
		st := wr.Set.(*Set)
		switch wr.Kind {
		case driver.DescAccel:
			// the write payload is an extension struct the binding
			// cannot express; goes through the proc table
			d.Ray.WriteAccelDescriptor(d.Dev, st.Set, wr.Binding, wr.Accel.(*Accel).Handle)
		case driver.DescStorageImage:
			img := wr.Image.(*Image)
			vws = append(vws, vk.WriteDescriptorSet{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          st.Set,
				DstBinding:      uint32(wr.Binding),
				DescriptorCount: 1,
				DescriptorType:  vk.DescriptorTypeStorageImage,
				PImageInfo: []vk.DescriptorImageInfo{{
					ImageView:   img.View,
					ImageLayout: vk.ImageLayoutGeneral,
				}},
			})
		case driver.DescUniform:
			buf := wr.Buffer.(*Buffer)
			vws = append(vws, vk.WriteDescriptorSet{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          st.Set,
				DstBinding:      uint32(wr.Binding),
				DescriptorCount: 1,
				DescriptorType:  vk.DescriptorTypeUniformBuffer,
				PBufferInfo: []vk.DescriptorBufferInfo{{
					Buffer: buf.Buff,
					Offset: 0,
					Range:  vk.DeviceSize(buf.size),
				}},
			})
		}
	}
	if len(vws) > 0 {
		vk.UpdateDescriptorSets(d.Dev, uint32(len(vws)), vws, 0, nil)
	}
	return nil
}

func (d *Driver) CreateRayPipeline(desc driver.RayPipelineDesc) (driver.Pipeline, error) {
	lo := desc.Layout.(*DescriptorLayout)
	var plo vk.PipelineLayout
	ret := vk.CreatePipelineLayout(d.Dev, &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{lo.Layout},
	}, nil, &plo)
	if IsError(ret) {
		return nil, NewError(ret)
	}
	mods := make([]vk.ShaderModule, len(desc.Stages))
	for i, st := range desc.Stages {
		mods[i] = st.Module.(*ShaderModule).Mod
	}
	pl, err := d.Ray.CreatePipeline(d.Dev, desc, plo, mods)
	if err != nil {
		vk.DestroyPipelineLayout(d.Dev, plo, nil)
		return nil, err
	}
	return &Pipeline{d: d, Pipeline: pl, Layout: plo}, nil
}

func (d *Driver) GroupHandles(pl driver.Pipeline, groupCount int) ([]byte, error) {
	props := d.Ray.Properties(d.PhysDev)
	return d.Ray.GroupHandles(d.Dev, pl.(*Pipeline).Pipeline, groupCount, props.HandleSize)
}

func (d *Driver) AccelSizes(desc driver.AccelDesc) (driver.AccelSizes, error) {
	return d.Ray.AccelSizes(d.Dev, desc), nil
}

func (d *Driver) CreateAccel(kind driver.AccelKind, buf driver.Buffer, size int) (driver.Accel, error) {
	bf := buf.(*Buffer)
	handle, err := d.Ray.CreateAccel(d.Dev, kind, bf.Buff, size)
	if err != nil {
		return nil, err
	}
	return &Accel{d: d, Handle: handle}, nil
}

///////////////////////////////////////////////////////////////
//   small handle wrappers

type Semaphore struct {
	d   *Driver
	Sem vk.Semaphore
}

func (sm *Semaphore) Destroy() {
	vk.DestroySemaphore(sm.d.Dev, sm.Sem, nil)
}

type Fence struct {
	d     *Driver
	Fence vk.Fence
}

func (fn *Fence) Destroy() {
	vk.DestroyFence(fn.d.Dev, fn.Fence, nil)
}

type ShaderModule struct {
	d   *Driver
	Mod vk.ShaderModule
}

func (sm *ShaderModule) Destroy() {
	vk.DestroyShaderModule(sm.d.Dev, sm.Mod, nil)
}

type DescriptorLayout struct {
	d      *Driver
	Layout vk.DescriptorSetLayout
}

func (dl *DescriptorLayout) Destroy() {
	vk.DestroyDescriptorSetLayout(dl.d.Dev, dl.Layout, nil)
}

type DescriptorPool struct {
	d    *Driver
	Pool vk.DescriptorPool
}

func (dp *DescriptorPool) Destroy() {
	vk.DestroyDescriptorPool(dp.d.Dev, dp.Pool, nil)
}

// Set is a descriptor set handle; freed with its pool.
type Set struct {
	Set vk.DescriptorSet
}

type Pipeline struct {
	d        *Driver
	Pipeline vk.Pipeline
	Layout   vk.PipelineLayout
}

func (pl *Pipeline) Destroy() {
	vk.DestroyPipeline(pl.d.Dev, pl.Pipeline, nil)
	vk.DestroyPipelineLayout(pl.d.Dev, pl.Layout, nil)
}

// Accel is an acceleration structure handle from the proc table.
type Accel struct {
	d      *Driver
	Handle uint64
}

func (ac *Accel) DeviceAddress() uint64 {
	return ac.d.Ray.AccelAddress(ac.d.Dev, ac.Handle)
}

func (ac *Accel) Destroy() {
	ac.d.Ray.DestroyAccel(ac.d.Dev, ac.Handle)
}

///////////////////////////////////////////////////////////////
//   mappings

// SliceUint32 reinterprets SPIR-V bytes as the uint32 words the binding
// wants.
func SliceUint32(data []byte) []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}

// FmFormat maps a vulkan format onto the driver subset;
// unknown formats map to FormatUndefined.
func FmFormat(ft vk.Format) driver.Format {
	switch ft {
	case vk.FormatR8g8b8a8Unorm:
		return driver.FormatR8G8B8A8Unorm
	case vk.FormatR8g8b8a8Srgb:
		return driver.FormatR8G8B8A8Srgb
	case vk.FormatB8g8r8a8Unorm:
		return driver.FormatB8G8R8A8Unorm
	case vk.FormatB8g8r8a8Srgb:
		return driver.FormatB8G8R8A8Srgb
	}
	return driver.FormatUndefined
}

// ToFormat maps a driver format to the vulkan one.
func ToFormat(ft driver.Format) vk.Format {
	switch ft {
	case driver.FormatR8G8B8A8Unorm:
		return vk.FormatR8g8b8a8Unorm
	case driver.FormatR8G8B8A8Srgb:
		return vk.FormatR8g8b8a8Srgb
	case driver.FormatB8G8R8A8Unorm:
		return vk.FormatB8g8r8a8Unorm
	case driver.FormatB8G8R8A8Srgb:
		return vk.FormatB8g8r8a8Srgb
	}
	return vk.FormatUndefined
}

// FmPresentMode maps a vulkan present mode to the driver one.
func FmPresentMode(md vk.PresentMode) driver.PresentMode {
	switch md {
	case vk.PresentModeMailbox:
		return driver.Mailbox
	case vk.PresentModeImmediate:
		return driver.Immediate
	case vk.PresentModeFifoRelaxed:
		return driver.FifoRelaxed
	}
	return driver.Fifo
}

// ToPresentMode maps a driver present mode to the vulkan one.
func ToPresentMode(md driver.PresentMode) vk.PresentMode {
	switch md {
	case driver.Mailbox:
		return vk.PresentModeMailbox
	case driver.Immediate:
		return vk.PresentModeImmediate
	case driver.FifoRelaxed:
		return vk.PresentModeFifoRelaxed
	}
	return vk.PresentModeFifo
}

// ToShaderStage maps a driver shader kind to the vulkan stage flag bits.
// The ray-tracing bits are numeric: the binding predates the extension.
func ToShaderStage(kd driver.ShaderKind) vk.ShaderStageFlagBits {
	switch kd {
	case driver.MissShader:
		return shaderStageMissBit
	case driver.ClosestHitShader:
		return shaderStageClosestHit
	}
	return shaderStageRayGenBit
}

// ToDescriptorType maps a driver descriptor kind to the vulkan type.
func ToDescriptorType(kd driver.DescriptorKind) vk.DescriptorType {
	switch kd {
	case driver.DescAccel:
		return vk.DescriptorType(descriptorTypeAccel)
	case driver.DescStorageImage:
		return vk.DescriptorTypeStorageImage
	}
	return vk.DescriptorTypeUniformBuffer
}

// ToStages maps driver pipeline stage bits to vulkan stage flags.
func ToStages(st driver.PipeStage) vk.PipelineStageFlags {
	var out vk.PipelineStageFlags
	if st&driver.StageTop != 0 {
		out |= vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
	}
	if st&driver.StageRayTracing != 0 {
		out |= vk.PipelineStageFlags(stageRayTracingShader)
	}
	if st&driver.StageTransfer != 0 {
		out |= vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	}
	if st&driver.StageColorOutput != 0 {
		out |= vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	}
	if st&driver.StageBottom != 0 {
		out |= vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit)
	}
	return out
}

// ToAccess maps driver access bits to vulkan access flags.
func ToAccess(ac driver.Access) vk.AccessFlags {
	var out vk.AccessFlags
	if ac&driver.AccessShaderRead != 0 {
		out |= vk.AccessFlags(vk.AccessShaderReadBit)
	}
	if ac&driver.AccessShaderWrite != 0 {
		out |= vk.AccessFlags(vk.AccessShaderWriteBit)
	}
	if ac&driver.AccessTransferRead != 0 {
		out |= vk.AccessFlags(vk.AccessTransferReadBit)
	}
	if ac&driver.AccessTransferWrite != 0 {
		out |= vk.AccessFlags(vk.AccessTransferWriteBit)
	}
	if ac&driver.AccessMemoryRead != 0 {
		out |= vk.AccessFlags(vk.AccessMemoryReadBit)
	}
	return out
}

// ToLayout maps a driver image layout to the vulkan one.
func ToLayout(lt driver.ImageLayout) vk.ImageLayout {
	switch lt {
	case driver.LayoutGeneral:
		return vk.ImageLayoutGeneral
	case driver.LayoutTransferSrc:
		return vk.ImageLayoutTransferSrcOptimal
	case driver.LayoutTransferDst:
		return vk.ImageLayoutTransferDstOptimal
	case driver.LayoutPresentSrc:
		return vk.ImageLayoutPresentSrc
	}
	return vk.ImageLayoutUndefined
}

// ToBuffUsage maps driver buffer usage bits to vulkan usage flags,
// including the extension bit values the binding does not define.
func ToBuffUsage(us driver.BuffUsage) vk.BufferUsageFlags {
	var out vk.BufferUsageFlags
	if us&driver.BuffVertex != 0 {
		out |= vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	}
	if us&driver.BuffIndex != 0 {
		out |= vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	}
	if us&driver.BuffUniform != 0 {
		out |= vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)
	}
	if us&driver.BuffStorage != 0 {
		out |= vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit)
	}
	if us&driver.BuffTransferSrc != 0 {
		out |= vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit)
	}
	if us&driver.BuffTransferDst != 0 {
		out |= vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)
	}
	if us&driver.BuffDeviceAddress != 0 {
		out |= vk.BufferUsageFlags(buffUsageDeviceAddress)
	}
	if us&driver.BuffAccelInput != 0 {
		out |= vk.BufferUsageFlags(buffUsageAccelInput)
	}
	if us&driver.BuffAccelStore != 0 {
		out |= vk.BufferUsageFlags(buffUsageAccelStore)
	}
	if us&driver.BuffSBT != 0 {
		out |= vk.BufferUsageFlags(buffUsageSBT)
	}
	return out
}

// ToMemProps maps driver memory property bits to vulkan flags.
func ToMemProps(pr driver.MemProps) vk.MemoryPropertyFlagBits {
	var out vk.MemoryPropertyFlagBits
	if pr&driver.MemDeviceLocal != 0 {
		out |= vk.MemoryPropertyDeviceLocalBit
	}
	if pr&driver.MemHostVisible != 0 {
		out |= vk.MemoryPropertyHostVisibleBit
	}
	if pr&driver.MemHostCoherent != 0 {
		out |= vk.MemoryPropertyHostCoherentBit
	}
	return out
}

// ToImageUsage maps driver image usage bits to vulkan flags.
func ToImageUsage(us driver.ImageUsage) vk.ImageUsageFlags {
	var out vk.ImageUsageFlags
	if us&driver.ImageColorAttachment != 0 {
		out |= vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)
	}
	if us&driver.ImageStorage != 0 {
		out |= vk.ImageUsageFlags(vk.ImageUsageStorageBit)
	}
	if us&driver.ImageTransferSrc != 0 {
		out |= vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit)
	}
	if us&driver.ImageTransferDst != 0 {
		out |= vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)
	}
	return out
}
