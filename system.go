// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vtrace

import (
	"fmt"

	"goki.dev/ordmap"
	"goki.dev/vtrace/v2/driver"
)

// Renderer composes the five parts of the frame core -- geometry and
// uniform buffers, ray pipeline + shader-binding table, acceleration
// structure builder, swapchain + output images, and the per-frame slots --
// and drives the per-frame protocol.  DrawFrame and RecreateSwapchain are
// the only two entry points the window-event loop calls.
//
// A single CPU thread drives submission; all concurrency is CPU/GPU
// overlap mediated by the slot fences and semaphores.  Renderer itself is
// not safe for concurrent use.
type Renderer struct {

	// the device driver
	Drv driver.Driver `desc:"the device driver"`

	// device-local mesh geometry
	Geom *GeometryBuffer `desc:"device-local mesh geometry"`

	// per-slot camera uniform buffers
	Uniforms []*UniformSlot `desc:"per-slot camera uniform buffers"`

	// ray pipeline and shader-binding table
	Pipeline *RayPipeline `desc:"ray pipeline and shader-binding table"`

	// acceleration structures and descriptor sets
	Build *Builder `desc:"acceleration structures and descriptor sets"`

	// swapchain and per-slot output images
	Swap *SwapchainState `desc:"swapchain and per-slot output images"`

	// per-frame command / sync bundles
	Slots []*FrameSlot `desc:"per-frame command / sync bundles"`

	// last known window pixel size, used when a stale swapchain code
	// forces recreation mid-frame
	WinSize driver.Extent `desc:"last known window pixel size, used when a stale swapchain code forces recreation mid-frame"`

	// total frames submitted; the active slot index is this modulo
	// MaxFramesInFlight
	FramesSubmitted uint64 `desc:"total frames submitted; the active slot index is this modulo MaxFramesInFlight"`

	// ownership tree in creation order; Shutdown destroys in reverse
	owned ordmap.Map[string, driver.Destroyer]
}

// destroyFunc adapts a closure to driver.Destroyer for the ownership tree.
type destroyFunc func()

func (df destroyFunc) Destroy() { df() }

// NewRenderer builds the whole frame core over drv: uploads mesh, creates
// the uniform slots, pipeline and shader-binding table, builds the bottom-
// then top-level acceleration structures (each fence-waited), creates the
// swapchain and output images for winSize, binds the descriptor sets, and
// creates the frame slots.  Any failure destroys everything built so far
// and is returned: construction failures indicate unmet device
// capabilities and have no degraded mode.
func NewRenderer(drv driver.Driver, mesh *Mesh, code *ShaderCode, winSize driver.Extent) (*Renderer, error) {
	ry := &Renderer{Drv: drv, WinSize: winSize}

	fail := func(err error) (*Renderer, error) {
		ry.Shutdown()
		return nil, err
	}

	var err error
	if ry.Geom, err = NewGeometryBuffer(drv, mesh); err != nil {
		return fail(err)
	}
	ry.owned.Add("geometry", ry.Geom)

	if ry.Uniforms, err = NewUniformSlots(drv, MaxFramesInFlight, CameraMatsSize); err != nil {
		return fail(err)
	}
	for i, us := range ry.Uniforms {
		ry.owned.Add(fmt.Sprintf("uniform%d", i), us)
	}

	if ry.Pipeline, err = NewRayPipeline(drv, code); err != nil {
		return fail(err)
	}
	ry.owned.Add("pipeline", ry.Pipeline)

	if ry.Build, err = NewBuilder(drv, ry.Pipeline.Layout, MaxFramesInFlight); err != nil {
		return fail(err)
	}
	ry.owned.Add("builder", ry.Build)

	if err = ry.Build.BuildBLAS(ry.Geom); err != nil {
		return fail(err)
	}
	if err = ry.Build.BuildTLAS(); err != nil {
		return fail(err)
	}

	if ry.Swap, err = NewSwapchainState(drv, winSize); err != nil {
		return fail(err)
	}
	ry.owned.Add("swapchain", ry.Swap)

	if err = ry.Build.BindDescriptorSets(ry.Uniforms, ry.Swap.Outputs); err != nil {
		return fail(err)
	}

	if ry.Slots, err = NewFrameSlots(drv, ry.Uniforms); err != nil {
		return fail(err)
	}
	for i, fs := range ry.Slots {
		fs := fs
		ry.owned.Add(fmt.Sprintf("slot%d", i), destroyFunc(func() { fs.Destroy() }))
	}
	return ry, nil
}

// DrawFrame renders and presents one frame with the given camera:
// wait on the active slot's fence, write its uniform, acquire a swapchain
// image, re-record the slot's command buffer (trace, barrier, blit,
// barrier), submit, present.  An out-of-date acquire recreates the
// swapchain and skips the frame -- rendering into a stale swapchain is
// pointless; a suboptimal acquire still renders (tolerated for a frame,
// avoiding recreation thrash on borderline resizes).  Out-of-date or
// suboptimal on present recreates.  Every other device error is fatal and
// returned: there is no safe local recovery for a lost device.
func (ry *Renderer) DrawFrame(cam *Camera) error {
	f := int(ry.FramesSubmitted % MaxFramesInFlight)
	slot := ry.Slots[f]

	// caps CPU race-ahead at MaxFramesInFlight, and guarantees the GPU
	// is done reading this slot's previous uniform contents
	if err := ry.Drv.WaitFence(slot.InFlight); err != nil {
		return err
	}

	var mats CameraMats
	cam.Mats(ry.Swap.Aspect(), &mats)
	if err := slot.Uniform.WriteBlock(mats.Bytes()); err != nil {
		return err
	}

	imgIdx, res := ry.Swap.Swapchain.Acquire(slot.ImageAvailable)
	switch res {
	case driver.ErrOutOfDate:
		_, err := ry.recreate()
		return err
	case driver.Success, driver.Suboptimal:
	default:
		return NewResultError("swapchain acquire", res)
	}

	if err := ry.record(slot, f, imgIdx); err != nil {
		return err
	}

	if err := ry.Drv.ResetFence(slot.InFlight); err != nil {
		return err
	}
	if err := ry.Drv.Submit(driver.Submission{
		Cmd:       slot.Cmd,
		Queue:     driver.GraphicsQueue,
		Wait:      slot.ImageAvailable,
		WaitStage: driver.StageColorOutput,
		Signal:    slot.RenderFinished,
		Fence:     slot.InFlight,
	}); err != nil {
		return err
	}

	res = ry.Drv.Present(ry.Swap.Swapchain, imgIdx, slot.RenderFinished)
	switch res {
	case driver.ErrOutOfDate, driver.Suboptimal:
		if _, err := ry.recreate(); err != nil {
			return err
		}
	case driver.Success:
	default:
		return NewResultError("swapchain present", res)
	}

	ry.FramesSubmitted++
	return nil
}

// record re-records slot f's command buffer for swapchain image imgIdx:
// trace into the slot's output image, transition output to transfer-src
// and the swapchain image to transfer-dst, blit, then transition both
// back to their steady-state layouts.
func (ry *Renderer) record(slot *FrameSlot, f, imgIdx int) error {
	out := ry.Swap.Outputs[f]
	swImg := ry.Swap.Images[imgIdx]
	ext := ry.Swap.Extent
	cmd := slot.Cmd

	if err := cmd.Reset(); err != nil {
		return err
	}
	if err := cmd.Begin(); err != nil {
		return err
	}

	cmd.BindRayPipeline(ry.Pipeline.Pipeline, ry.Build.Sets[f])
	cmd.TraceRays(ry.Pipeline.SBT.Table(), ext.Width, ext.Height)

	cmd.Barrier(driver.ImageBarrier{
		Image:     out,
		OldLayout: driver.LayoutGeneral,
		NewLayout: driver.LayoutTransferSrc,
		SrcStage:  driver.StageRayTracing,
		DstStage:  driver.StageTransfer,
		SrcAccess: driver.AccessShaderWrite,
		DstAccess: driver.AccessTransferRead,
	})
	cmd.Barrier(driver.ImageBarrier{
		Image:     swImg,
		OldLayout: driver.LayoutPresentSrc,
		NewLayout: driver.LayoutTransferDst,
		SrcStage:  driver.StageTop,
		DstStage:  driver.StageTransfer,
		SrcAccess: driver.AccessNone,
		DstAccess: driver.AccessTransferWrite,
	})

	cmd.Blit(out, swImg, ext, ext)

	cmd.Barrier(driver.ImageBarrier{
		Image:     swImg,
		OldLayout: driver.LayoutTransferDst,
		NewLayout: driver.LayoutPresentSrc,
		SrcStage:  driver.StageTransfer,
		DstStage:  driver.StageBottom,
		SrcAccess: driver.AccessTransferWrite,
		DstAccess: driver.AccessMemoryRead,
	})
	cmd.Barrier(driver.ImageBarrier{
		Image:     out,
		OldLayout: driver.LayoutTransferSrc,
		NewLayout: driver.LayoutGeneral,
		SrcStage:  driver.StageTransfer,
		DstStage:  driver.StageRayTracing,
		SrcAccess: driver.AccessTransferRead,
		DstAccess: driver.AccessShaderWrite,
	})

	return cmd.End()
}

// RecreateSwapchain is the resize entry point.  A zero dimension
// (minimized window) is silently absorbed: no work, no error.
func (ry *Renderer) RecreateSwapchain(size driver.Extent) error {
	if size.IsZero() {
		return nil
	}
	ry.WinSize = size
	_, err := ry.recreate()
	return err
}

// recreate rebuilds the swapchain at the last known window size and, if
// it actually rebuilt, re-points the descriptor sets at the new output
// images.  The acceleration structures, pipeline and uniform slots are
// untouched: only the swapchain side is stale.
func (ry *Renderer) recreate() (bool, error) {
	rebuilt, err := ry.Swap.Recreate(ry.WinSize)
	if err != nil || !rebuilt {
		return rebuilt, err
	}
	return true, ry.Build.BindDescriptorSets(ry.Uniforms, ry.Swap.Outputs)
}

// Shutdown waits for the device to go idle, then destroys everything in
// reverse creation order: children before parents, each resource exactly
// once.
func (ry *Renderer) Shutdown() {
	if ry.Drv == nil {
		return
	}
	ry.Drv.WaitIdle()
	for i := ry.owned.Len() - 1; i >= 0; i-- {
		ry.owned.Order[i].Val.Destroy()
	}
	ry.owned = ordmap.Map[string, driver.Destroyer]{}
	ry.Slots = nil
	ry.Swap = nil
	ry.Build = nil
	ry.Pipeline = nil
	ry.Uniforms = nil
	ry.Geom = nil
}
