// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package drivertest is an in-memory driver.Driver for testing the frame
// core without a GPU.  Surface capabilities, ray-tracing properties,
// acceleration-structure size queries, and the result codes of successive
// acquire / present calls are all scriptable; resources are plain structs
// tracking liveness and image layouts, and submitted command buffers
// execute synchronously so buffer copies, layout transitions and trace
// dispatches are observable immediately.  Fences still signal only on
// WaitFence, so in-flight accounting behaves like the real protocol.
package drivertest

import (
	"fmt"

	"goki.dev/vtrace/v2/driver"
)

// Trace records one TraceRays dispatch: which descriptor set was bound
// and snapshots of what it pointed at.
type Trace struct {

	// the bound descriptor set
	Set driver.DescriptorSet

	// copy of the bound uniform buffer's bytes at dispatch time
	Uniform []byte

	// the bound storage (output) image
	Output driver.Image

	// dispatch extent
	Width, Height int

	// shader-binding-table region stride used
	SBTStride int
}

// Driver implements driver.Driver in memory.  The zero value is not
// usable; call New.
type Driver struct {

	// surface capabilities returned by SurfaceCaps; mutable between calls
	// to model a resizing window
	Caps driver.SurfaceCaps

	// ray-tracing properties returned by RayProps
	Props driver.RayProps

	// AccelSizesFunc computes build sizes; the default returns sizes
	// proportional to the primitive count
	AccelSizesFunc func(desc driver.AccelDesc) driver.AccelSizes

	// AcquireScript holds result codes for successive Acquire calls;
	// exhausted entries yield Success
	AcquireScript []driver.Result

	// PresentScript holds result codes for successive Present calls;
	// exhausted entries yield Success
	PresentScript []driver.Result

	// Ops is the coarse operation log, in call order
	Ops []string

	// Errors collects protocol violations observed during execution
	// (layout mismatches, unsupported modes, use-after-destroy); tests
	// assert it stays empty
	Errors []string

	// Traces records every TraceRays dispatch
	Traces []Trace

	// creation / liveness counters
	BuffersCreated    int
	BuffersLive       int
	ImagesCreated     int
	ImagesLive        int
	SwapchainsCreated int
	AccelsCreated     int

	// acquire / present call counts
	AcquireCount int
	PresentCount int

	// in-flight accounting: submissions whose fence has not been waited
	InFlight    int
	MaxInFlight int

	nextAddr uint64
	curSet   *Set
}

// New returns a Driver with workable defaults: a 1024x768 surface with a
// fixed current extent, min 2 / max 8 images, Fifo+Mailbox, unorm+sRGB
// format, and 32-byte handles at 64-byte alignment.
func New() *Driver {
	dr := &Driver{
		Caps: driver.SurfaceCaps{
			MinImageCount:  2,
			MaxImageCount:  8,
			CurrentExtent:  driver.Extent{Width: 1024, Height: 768},
			MinImageExtent: driver.Extent{Width: 1, Height: 1},
			MaxImageExtent: driver.Extent{Width: 4096, Height: 4096},
			Formats: []driver.SurfaceFormat{
				{Format: driver.FormatR8G8B8A8Unorm, ColorSpace: driver.ColorSpaceSRGBNonlinear},
				{Format: driver.FormatB8G8R8A8Unorm, ColorSpace: driver.ColorSpaceSRGBNonlinear},
			},
			PresentModes: []driver.PresentMode{driver.Fifo, driver.Mailbox},
		},
		Props:    driver.RayProps{HandleSize: 32, HandleAlignment: 64, BaseAlignment: 64},
		nextAddr: 0x1000,
	}
	return dr
}

func (dr *Driver) op(format string, args ...any) {
	dr.Ops = append(dr.Ops, fmt.Sprintf(format, args...))
}

func (dr *Driver) fail(format string, args ...any) {
	dr.Errors = append(dr.Errors, fmt.Sprintf(format, args...))
}

func (dr *Driver) SurfaceCaps() (driver.SurfaceCaps, error) {
	dr.op("SurfaceCaps")
	return dr.Caps, nil
}

func (dr *Driver) CreateBuffer(size int, usage driver.BuffUsage, props driver.MemProps) (driver.Buffer, error) {
	dr.op("CreateBuffer size=%d", size)
	dr.BuffersCreated++
	dr.BuffersLive++
	dr.nextAddr += 0x1000
	return &Buffer{dr: dr, size: size, usage: usage, props: props,
		data: make([]byte, size), addr: dr.nextAddr, live: true}, nil
}

func (dr *Driver) CreateImage(desc driver.ImageDesc) (driver.Image, error) {
	dr.op("CreateImage %dx%d", desc.Extent.Width, desc.Extent.Height)
	dr.ImagesCreated++
	dr.ImagesLive++
	return &Image{dr: dr, extent: desc.Extent, format: desc.Format,
		Layout: driver.LayoutUndefined, live: true}, nil
}

func (dr *Driver) CreateSwapchain(desc driver.SwapchainDesc) (driver.Swapchain, error) {
	dr.op("CreateSwapchain %dx%d n=%d mode=%s", desc.Extent.Width, desc.Extent.Height, desc.ImageCount, desc.PresentMode)
	okMode := false
	for _, md := range dr.Caps.PresentModes {
		if md == desc.PresentMode {
			okMode = true
			break
		}
	}
	if !okMode {
		dr.fail("CreateSwapchain: present mode %s not supported", desc.PresentMode)
	}
	if desc.Old != nil {
		desc.Old.Destroy()
	}
	dr.SwapchainsCreated++
	sc := &Swapchain{dr: dr, desc: desc, live: true}
	sc.imgs = make([]driver.Image, desc.ImageCount)
	for i := range sc.imgs {
		dr.ImagesCreated++
		dr.ImagesLive++
		sc.imgs[i] = &Image{dr: dr, extent: desc.Extent, format: desc.Format,
			Layout: driver.LayoutUndefined, live: true, swapchain: true}
	}
	return sc, nil
}

func (dr *Driver) CreateSemaphore() (driver.Semaphore, error) {
	return &Semaphore{live: true}, nil
}

func (dr *Driver) CreateFence(signaled bool) (driver.Fence, error) {
	return &Fence{signaled: signaled, live: true}, nil
}

func (dr *Driver) WaitFence(fc driver.Fence) error {
	fn := fc.(*Fence)
	if fn.pending {
		fn.pending = false
		fn.signaled = true
		dr.InFlight--
	}
	if !fn.signaled {
		dr.fail("WaitFence: waiting on a fence that can never signal")
	}
	return nil
}

func (dr *Driver) ResetFence(fc driver.Fence) error {
	fc.(*Fence).signaled = false
	return nil
}

func (dr *Driver) NewCmd(queue driver.QueueKind) (driver.Cmd, error) {
	return &Cmd{dr: dr, queue: queue, live: true}, nil
}

func (dr *Driver) SubmitWait(cmd driver.Cmd, queue driver.QueueKind) error {
	cd := cmd.(*Cmd)
	dr.op("SubmitWait queue=%s", queue)
	if cd.recording {
		dr.fail("SubmitWait: command buffer not ended")
	}
	cd.exec()
	cd.Free()
	return nil
}

func (dr *Driver) Submit(sub driver.Submission) error {
	dr.op("Submit queue=%s", sub.Queue)
	cd := sub.Cmd.(*Cmd)
	if cd.recording {
		dr.fail("Submit: command buffer not ended")
	}
	cd.exec()
	if sub.Fence != nil {
		fn := sub.Fence.(*Fence)
		if fn.signaled || fn.pending {
			dr.fail("Submit: fence not reset")
		}
		fn.pending = true
		dr.InFlight++
		if dr.InFlight > dr.MaxInFlight {
			dr.MaxInFlight = dr.InFlight
		}
	}
	return nil
}

func (dr *Driver) Present(sc driver.Swapchain, imageIndex int, wait driver.Semaphore) driver.Result {
	dr.op("Present img=%d", imageIndex)
	sw := sc.(*Swapchain)
	if !sw.live {
		dr.fail("Present: destroyed swapchain")
	}
	if imageIndex < 0 || imageIndex >= len(sw.imgs) {
		dr.fail("Present: image index %d out of range", imageIndex)
	} else if img := sw.imgs[imageIndex].(*Image); img.Layout != driver.LayoutPresentSrc {
		dr.fail("Present: image %d layout is %s, not %s", imageIndex, img.Layout, driver.LayoutPresentSrc)
	}
	res := driver.Success
	if dr.PresentCount < len(dr.PresentScript) {
		res = dr.PresentScript[dr.PresentCount]
	}
	dr.PresentCount++
	return res
}

func (dr *Driver) WaitIdle() error {
	dr.op("WaitIdle")
	return nil
}

func (dr *Driver) RayProps() (driver.RayProps, error) {
	return dr.Props, nil
}

func (dr *Driver) CreateShaderModule(code []byte) (driver.ShaderModule, error) {
	return &ShaderModule{live: true}, nil
}

func (dr *Driver) CreateDescriptorLayout(bindings []driver.DescriptorBinding) (driver.DescriptorLayout, error) {
	return &DescriptorLayout{bindings: bindings, live: true}, nil
}

func (dr *Driver) CreateDescriptorPool(maxSets int, sizes []driver.DescriptorPoolSize) (driver.DescriptorPool, error) {
	return &DescriptorPool{maxSets: maxSets, live: true}, nil
}

func (dr *Driver) AllocDescriptorSets(pool driver.DescriptorPool, layout driver.DescriptorLayout, n int) ([]driver.DescriptorSet, error) {
	pl := pool.(*DescriptorPool)
	if pl.allocated+n > pl.maxSets {
		return nil, fmt.Errorf("drivertest: descriptor pool exhausted: %d + %d > %d", pl.allocated, n, pl.maxSets)
	}
	pl.allocated += n
	sets := make([]driver.DescriptorSet, n)
	for i := range sets {
		sets[i] = &Set{pool: pl}
	}
	return sets, nil
}

func (dr *Driver) UpdateDescriptorSets(writes []driver.DescriptorWrite) error {
	dr.op("UpdateDescriptorSets n=%d", len(writes))
	for _, wr := range writes {
		st := wr.Set.(*Set)
		switch wr.Kind {
		case driver.DescAccel:
			st.Accel = wr.Accel
		case driver.DescStorageImage:
			st.Image = wr.Image
		case driver.DescUniform:
			st.Buffer = wr.Buffer
		}
	}
	return nil
}

func (dr *Driver) CreateRayPipeline(desc driver.RayPipelineDesc) (driver.Pipeline, error) {
	dr.op("CreateRayPipeline stages=%d groups=%d depth=%d", len(desc.Stages), len(desc.Groups), desc.MaxRecursion)
	return &Pipeline{desc: desc, live: true}, nil
}

// GroupHandles returns deterministic handles: group g is HandleSize bytes
// of value g+1.
func (dr *Driver) GroupHandles(pl driver.Pipeline, groupCount int) ([]byte, error) {
	hs := dr.Props.HandleSize
	out := make([]byte, groupCount*hs)
	for g := 0; g < groupCount; g++ {
		for i := 0; i < hs; i++ {
			out[g*hs+i] = byte(g + 1)
		}
	}
	return out, nil
}

func (dr *Driver) AccelSizes(desc driver.AccelDesc) (driver.AccelSizes, error) {
	dr.op("AccelSizes kind=%s prims=%d", desc.Kind, desc.PrimitiveCount)
	if dr.AccelSizesFunc != nil {
		return dr.AccelSizesFunc(desc), nil
	}
	return driver.AccelSizes{Accel: 256 * desc.PrimitiveCount, Scratch: 64 * desc.PrimitiveCount}, nil
}

func (dr *Driver) CreateAccel(kind driver.AccelKind, buf driver.Buffer, size int) (driver.Accel, error) {
	dr.op("CreateAccel kind=%s size=%d", kind, size)
	dr.AccelsCreated++
	dr.nextAddr += 0x1000
	return &Accel{dr: dr, kind: kind, buf: buf, addr: dr.nextAddr, live: true}, nil
}

///////////////////////////////////////////////////////////////
//   resources

// Buffer is an in-memory buffer resource.
type Buffer struct {
	dr    *Driver
	size  int
	usage driver.BuffUsage
	props driver.MemProps
	data  []byte
	addr  uint64
	live  bool
}

func (bf *Buffer) Size() int { return bf.size }

// Data exposes the backing bytes for test assertions.
func (bf *Buffer) Data() []byte { return bf.data }

// Live reports whether the buffer has not been destroyed.
func (bf *Buffer) Live() bool { return bf.live }

func (bf *Buffer) Map() ([]byte, error) {
	if bf.props&driver.MemHostVisible == 0 {
		return nil, fmt.Errorf("drivertest: Map on non-host-visible buffer")
	}
	if !bf.live {
		return nil, fmt.Errorf("drivertest: Map on destroyed buffer")
	}
	return bf.data, nil
}

func (bf *Buffer) DeviceAddress() uint64 { return bf.addr }

func (bf *Buffer) Destroy() {
	if !bf.live {
		bf.dr.fail("Buffer: double destroy")
		return
	}
	bf.live = false
	bf.dr.BuffersLive--
}

// Image is an in-memory image resource that tracks its current layout
// through recorded barriers.
type Image struct {
	dr     *Driver
	extent driver.Extent
	format driver.Format

	// Layout is the image's current layout, updated as barriers execute.
	Layout driver.ImageLayout

	live      bool
	swapchain bool
}

func (im *Image) Extent() driver.Extent { return im.extent }
func (im *Image) Format() driver.Format { return im.format }

// Live reports whether the image (or its view, for swapchain images)
// has not been destroyed.
func (im *Image) Live() bool { return im.live }

func (im *Image) Destroy() {
	if !im.live {
		im.dr.fail("Image: double destroy")
		return
	}
	im.live = false
	im.dr.ImagesLive--
}

// Swapchain is an in-memory swapchain.
type Swapchain struct {
	dr   *Driver
	desc driver.SwapchainDesc
	imgs []driver.Image
	next int
	live bool
}

func (sw *Swapchain) Images() []driver.Image          { return sw.imgs }
func (sw *Swapchain) Format() driver.Format           { return sw.desc.Format }
func (sw *Swapchain) Extent() driver.Extent           { return sw.desc.Extent }
func (sw *Swapchain) PresentMode() driver.PresentMode { return sw.desc.PresentMode }

// Live reports whether the swapchain has not been destroyed.
func (sw *Swapchain) Live() bool { return sw.live }

func (sw *Swapchain) Acquire(wait driver.Semaphore) (int, driver.Result) {
	dr := sw.dr
	dr.op("Acquire")
	res := driver.Success
	if dr.AcquireCount < len(dr.AcquireScript) {
		res = dr.AcquireScript[dr.AcquireCount]
	}
	dr.AcquireCount++
	if res == driver.ErrOutOfDate {
		return 0, res
	}
	idx := sw.next
	sw.next = (sw.next + 1) % len(sw.imgs)
	return idx, res
}

func (sw *Swapchain) Destroy() {
	if !sw.live {
		sw.dr.fail("Swapchain: double destroy")
		return
	}
	sw.live = false
	for _, im := range sw.imgs {
		// images belong to the swapchain; views may already be gone
		if img := im.(*Image); img.live {
			img.live = false
			sw.dr.ImagesLive--
		}
	}
}

type Semaphore struct{ live bool }

func (sm *Semaphore) Destroy() { sm.live = false }

type Fence struct {
	signaled bool
	pending  bool
	live     bool
}

func (fn *Fence) Destroy() { fn.live = false }

type ShaderModule struct{ live bool }

func (sm *ShaderModule) Destroy() { sm.live = false }

type Pipeline struct {
	desc driver.RayPipelineDesc
	live bool
}

func (pl *Pipeline) Destroy() { pl.live = false }

type DescriptorLayout struct {
	bindings []driver.DescriptorBinding
	live     bool
}

func (dl *DescriptorLayout) Destroy() { dl.live = false }

type DescriptorPool struct {
	maxSets   int
	allocated int
	live      bool
}

func (dp *DescriptorPool) Destroy() { dp.live = false }

// Set is a descriptor set: the current {accel, image, buffer} bindings.
type Set struct {
	pool   *DescriptorPool
	Accel  driver.Accel
	Image  driver.Image
	Buffer driver.Buffer
}

// Accel is an in-memory acceleration structure.
type Accel struct {
	dr   *Driver
	kind driver.AccelKind
	buf  driver.Buffer
	addr uint64
	live bool
}

func (ac *Accel) DeviceAddress() uint64 { return ac.addr }

// Live reports whether the structure has not been destroyed.
func (ac *Accel) Live() bool { return ac.live }

func (ac *Accel) Destroy() {
	if !ac.live {
		ac.dr.fail("Accel: double destroy")
		return
	}
	ac.live = false
}

// Cmd is a command buffer recording closures that run at submission.
type Cmd struct {
	dr        *Driver
	queue     driver.QueueKind
	recording bool
	execs     []func()
	live      bool

	set *Set
	sbt driver.SBTable
}

func (cd *Cmd) Begin() error {
	if cd.recording {
		return fmt.Errorf("drivertest: Begin on recording command buffer")
	}
	cd.recording = true
	return nil
}

func (cd *Cmd) End() error {
	if !cd.recording {
		return fmt.Errorf("drivertest: End without Begin")
	}
	cd.recording = false
	return nil
}

func (cd *Cmd) Reset() error {
	cd.recording = false
	cd.execs = nil
	cd.set = nil
	return nil
}

func (cd *Cmd) exec() {
	for _, fn := range cd.execs {
		fn()
	}
	cd.execs = nil
}

func (cd *Cmd) CopyBuffer(src, dst driver.Buffer, size int) {
	sb, db := src.(*Buffer), dst.(*Buffer)
	cd.execs = append(cd.execs, func() {
		if !sb.live || !db.live {
			cd.dr.fail("CopyBuffer: destroyed buffer")
			return
		}
		copy(db.data, sb.data[:size])
	})
}

func (cd *Cmd) Barrier(br driver.ImageBarrier) {
	im := br.Image.(*Image)
	old, nw := br.OldLayout, br.NewLayout
	cd.execs = append(cd.execs, func() {
		if !im.live {
			cd.dr.fail("Barrier: destroyed image")
			return
		}
		if im.Layout != old {
			cd.dr.fail("Barrier: image layout is %s, barrier expects %s", im.Layout, old)
		}
		im.Layout = nw
	})
}

func (cd *Cmd) BuildAccel(desc driver.AccelDesc, dst driver.Accel, scratch driver.Buffer) {
	ac := dst.(*Accel)
	sc := scratch.(*Buffer)
	cd.execs = append(cd.execs, func() {
		if !ac.live {
			cd.dr.fail("BuildAccel: destroyed structure")
		}
		if !sc.live {
			cd.dr.fail("BuildAccel: destroyed scratch buffer")
		}
		cd.dr.op("BuildAccel kind=%s", desc.Kind)
	})
}

func (cd *Cmd) BindRayPipeline(pl driver.Pipeline, set driver.DescriptorSet) {
	st := set.(*Set)
	cd.execs = append(cd.execs, func() {
		cd.set = st
	})
}

func (cd *Cmd) TraceRays(tbl driver.SBTable, width, height int) {
	cd.execs = append(cd.execs, func() {
		dr := cd.dr
		if cd.set == nil {
			dr.fail("TraceRays: no pipeline bound")
			return
		}
		tr := Trace{Set: cd.set, Width: width, Height: height, SBTStride: tbl.Stride}
		if cd.set.Image != nil {
			img := cd.set.Image.(*Image)
			tr.Output = img
			if !img.live {
				dr.fail("TraceRays: output image destroyed")
			} else if img.Layout != driver.LayoutGeneral {
				dr.fail("TraceRays: output image layout is %s, not %s", img.Layout, driver.LayoutGeneral)
			}
		} else {
			dr.fail("TraceRays: no output image bound")
		}
		if cd.set.Buffer != nil {
			bf := cd.set.Buffer.(*Buffer)
			if !bf.live {
				dr.fail("TraceRays: uniform buffer destroyed")
			} else {
				tr.Uniform = append([]byte(nil), bf.data...)
			}
		} else {
			dr.fail("TraceRays: no uniform bound")
		}
		if cd.set.Accel == nil {
			dr.fail("TraceRays: no acceleration structure bound")
		} else if !cd.set.Accel.(*Accel).live {
			dr.fail("TraceRays: acceleration structure destroyed")
		}
		dr.op("TraceRays %dx%d", width, height)
		dr.Traces = append(dr.Traces, tr)
	})
}

func (cd *Cmd) Blit(src, dst driver.Image, srcExt, dstExt driver.Extent) {
	si, di := src.(*Image), dst.(*Image)
	cd.execs = append(cd.execs, func() {
		dr := cd.dr
		if !si.live || !di.live {
			dr.fail("Blit: destroyed image")
			return
		}
		if si.Layout != driver.LayoutTransferSrc {
			dr.fail("Blit: source layout is %s, not %s", si.Layout, driver.LayoutTransferSrc)
		}
		if di.Layout != driver.LayoutTransferDst {
			dr.fail("Blit: dest layout is %s, not %s", di.Layout, driver.LayoutTransferDst)
		}
		dr.op("Blit %dx%d", srcExt.Width, srcExt.Height)
	})
}

func (cd *Cmd) Free() {
	cd.live = false
	cd.execs = nil
}
