// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vtrace

import (
	"errors"

	"goki.dev/vtrace/v2/driver"
)

// OutputFormat is the format of the per-frame-slot output images the
// ray-generation shader writes; also the preferred swapchain format, so
// the blit is a straight copy.
const OutputFormat = driver.FormatR8G8B8A8Unorm

// SwapchainState owns the presentable surface images plus one off-screen
// output image per in-flight frame slot.  Output images are per slot, not
// per swapchain image, because ray-tracing writes start before the
// acquired image index is known.  The whole state is recreated wholesale
// on resize; everything else holds only handles obtained from it.
type SwapchainState struct {

	// the swapchain
	Swapchain driver.Swapchain `desc:"the swapchain"`

	// presentable images, count chosen by the device
	Images []driver.Image `desc:"presentable images, count chosen by the device"`

	// per-frame-slot output images, in LayoutGeneral between frames
	Outputs []driver.Image `desc:"per-frame-slot output images, in LayoutGeneral between frames"`

	// selected surface format
	Format driver.Format `desc:"selected surface format"`

	// current swapchain extent
	Extent driver.Extent `desc:"current swapchain extent"`

	// selected present mode
	PresentMode driver.PresentMode `desc:"selected present mode"`

	drv driver.Driver
}

// NewSwapchainState creates the swapchain and output images for the given
// window pixel size, per the device's current surface capabilities.
func NewSwapchainState(drv driver.Driver, winSize driver.Extent) (*SwapchainState, error) {
	ss := &SwapchainState{drv: drv}
	if err := ss.init(winSize, nil); err != nil {
		return nil, err
	}
	return ss, nil
}

// init builds (or rebuilds, consuming old) the swapchain and everything
// owned alongside it.
func (ss *SwapchainState) init(winSize driver.Extent, old driver.Swapchain) error {
	caps, err := ss.drv.SurfaceCaps()
	if err != nil {
		return err
	}
	sf := PickSurfaceFormat(caps.Formats)
	ext := PickExtent(caps, winSize)
	if ext.IsZero() {
		return errors.New("vtrace: swapchain extent is zero")
	}

	sc, err := ss.drv.CreateSwapchain(driver.SwapchainDesc{
		Extent:      ext,
		Format:      sf.Format,
		ColorSpace:  sf.ColorSpace,
		ImageCount:  PickImageCount(caps),
		PresentMode: PickPresentMode(caps.PresentModes),
		Usage:       driver.ImageColorAttachment | driver.ImageTransferDst,
		Old:         old,
	})
	if err != nil {
		return err
	}
	ss.Swapchain = sc
	ss.Images = sc.Images()
	ss.Format = sc.Format()
	ss.Extent = sc.Extent()
	ss.PresentMode = sc.PresentMode()

	ss.Outputs = make([]driver.Image, MaxFramesInFlight)
	for i := range ss.Outputs {
		ss.Outputs[i], err = ss.drv.CreateImage(driver.ImageDesc{
			Extent: ss.Extent,
			Format: OutputFormat,
			Usage:  driver.ImageStorage | driver.ImageTransferSrc,
			Props:  driver.MemDeviceLocal,
		})
		if err != nil {
			ss.Free()
			return err
		}
	}
	if err = ss.transitionInitial(); err != nil {
		ss.Free()
		return err
	}
	return nil
}

// transitionInitial moves every new image out of LayoutUndefined via a
// throwaway command buffer: swapchain images to LayoutPresentSrc so the
// first frame's pre-blit barrier has a defined old layout, output images
// to LayoutGeneral which the first shader write expects.
func (ss *SwapchainState) transitionInitial() error {
	cmd, err := ss.drv.NewCmd(driver.GraphicsQueue)
	if err != nil {
		return err
	}
	if err = cmd.Begin(); err != nil {
		cmd.Free()
		return err
	}
	for _, img := range ss.Images {
		cmd.Barrier(driver.ImageBarrier{
			Image:     img,
			OldLayout: driver.LayoutUndefined,
			NewLayout: driver.LayoutPresentSrc,
			SrcStage:  driver.StageTop,
			DstStage:  driver.StageBottom,
			SrcAccess: driver.AccessNone,
			DstAccess: driver.AccessMemoryRead,
		})
	}
	for _, img := range ss.Outputs {
		cmd.Barrier(driver.ImageBarrier{
			Image:     img,
			OldLayout: driver.LayoutUndefined,
			NewLayout: driver.LayoutGeneral,
			SrcStage:  driver.StageTop,
			DstStage:  driver.StageRayTracing,
			SrcAccess: driver.AccessNone,
			DstAccess: driver.AccessShaderWrite,
		})
	}
	if err = cmd.End(); err != nil {
		cmd.Free()
		return err
	}
	return ss.drv.SubmitWait(cmd, driver.GraphicsQueue)
}

// Recreate tears down and rebuilds the swapchain and output images for a
// new window size.  A zero dimension (minimized window) is a silent no-op
// returning false: presenting into a zero-area surface is meaningless and
// rejected by the device.  Otherwise it waits for the device to go fully
// idle first -- recreation is rare (user-resize driven), so the coarse
// wait is the simplest correct mutual exclusion.  Returns true when the
// caller must rebind descriptor sets against the new output images.
func (ss *SwapchainState) Recreate(winSize driver.Extent) (bool, error) {
	if winSize.IsZero() {
		return false, nil
	}
	if err := ss.drv.WaitIdle(); err != nil {
		return false, err
	}
	old := ss.Swapchain
	ss.freeImages()
	ss.Swapchain = nil
	if err := ss.init(winSize, old); err != nil {
		return false, err
	}
	return true, nil
}

// freeImages destroys the output images and the swapchain image views,
// but not the swapchain object itself.
func (ss *SwapchainState) freeImages() {
	for _, img := range ss.Outputs {
		if img != nil {
			img.Destroy()
		}
	}
	ss.Outputs = nil
	for _, img := range ss.Images {
		img.Destroy() // view only; images belong to the swapchain
	}
	ss.Images = nil
}

// Free destroys everything.  The device must be idle.
func (ss *SwapchainState) Free() {
	ss.freeImages()
	if ss.Swapchain != nil {
		ss.Swapchain.Destroy()
		ss.Swapchain = nil
	}
}

func (ss *SwapchainState) Destroy() {
	ss.Free()
}

// Aspect returns the current width / height ratio.
func (ss *SwapchainState) Aspect() float32 {
	return float32(ss.Extent.Width) / float32(ss.Extent.Height)
}

// PickSurfaceFormat prefers OutputFormat with the sRGB-nonlinear color
// space, else the device's first listed format.
func PickSurfaceFormat(formats []driver.SurfaceFormat) driver.SurfaceFormat {
	for _, sf := range formats {
		if sf.Format == OutputFormat && sf.ColorSpace == driver.ColorSpaceSRGBNonlinear {
			return sf
		}
	}
	return formats[0]
}

// PickPresentMode prefers low-latency Mailbox, falling back to Fifo,
// which the API guarantees is always supported.
func PickPresentMode(modes []driver.PresentMode) driver.PresentMode {
	for _, md := range modes {
		if md == driver.Mailbox {
			return md
		}
	}
	return driver.Fifo
}

// PickExtent returns the surface's current extent, unless the device
// reports the undefined sentinel, in which case the window's pixel size
// clamped to the device min / max is used.
func PickExtent(caps driver.SurfaceCaps, winSize driver.Extent) driver.Extent {
	if caps.CurrentExtent.Width != driver.ExtentUndefined {
		return caps.CurrentExtent
	}
	ext := winSize
	if ext.Width < caps.MinImageExtent.Width {
		ext.Width = caps.MinImageExtent.Width
	} else if ext.Width > caps.MaxImageExtent.Width {
		ext.Width = caps.MaxImageExtent.Width
	}
	if ext.Height < caps.MinImageExtent.Height {
		ext.Height = caps.MinImageExtent.Height
	} else if ext.Height > caps.MaxImageExtent.Height {
		ext.Height = caps.MaxImageExtent.Height
	}
	return ext
}

// PickImageCount asks for one more than the device minimum so the app
// rarely waits on the driver, clamped to the maximum (0 = unbounded).
func PickImageCount(caps driver.SurfaceCaps) int {
	n := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && n > caps.MaxImageCount {
		n = caps.MaxImageCount
	}
	return n
}
