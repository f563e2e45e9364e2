// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vtrace

import (
	"testing"

	"goki.dev/vtrace/v2/driver"
	"goki.dev/vtrace/v2/drivertest"
)

func TestPickSurfaceFormat(t *testing.T) {
	preferred := driver.SurfaceFormat{Format: OutputFormat, ColorSpace: driver.ColorSpaceSRGBNonlinear}
	other := driver.SurfaceFormat{Format: driver.FormatB8G8R8A8Unorm, ColorSpace: driver.ColorSpaceSRGBNonlinear}

	if got := PickSurfaceFormat([]driver.SurfaceFormat{other, preferred}); got != preferred {
		t.Errorf("preferred format not selected: %+v", got)
	}
	// without the preferred pairing, first listed wins
	if got := PickSurfaceFormat([]driver.SurfaceFormat{other}); got != other {
		t.Errorf("fallback format: %+v", got)
	}
}

func TestPickPresentMode(t *testing.T) {
	if got := PickPresentMode([]driver.PresentMode{driver.Fifo, driver.Mailbox}); got != driver.Mailbox {
		t.Errorf("mailbox available: got %s", got)
	}
	if got := PickPresentMode([]driver.PresentMode{driver.Fifo, driver.Immediate}); got != driver.Fifo {
		t.Errorf("no mailbox: got %s, want %s", got, driver.Fifo)
	}
}

func TestPickExtent(t *testing.T) {
	caps := driver.SurfaceCaps{
		CurrentExtent:  driver.Extent{Width: 800, Height: 600},
		MinImageExtent: driver.Extent{Width: 100, Height: 100},
		MaxImageExtent: driver.Extent{Width: 2000, Height: 2000},
	}
	if got := PickExtent(caps, driver.Extent{Width: 5000, Height: 5000}); got != caps.CurrentExtent {
		t.Errorf("fixed extent ignored: %+v", got)
	}

	// undefined sentinel: window size clamped to the device limits
	caps.CurrentExtent = driver.Extent{Width: driver.ExtentUndefined, Height: driver.ExtentUndefined}
	if got := PickExtent(caps, driver.Extent{Width: 640, Height: 480}); got != (driver.Extent{Width: 640, Height: 480}) {
		t.Errorf("window extent: %+v", got)
	}
	if got := PickExtent(caps, driver.Extent{Width: 5000, Height: 50}); got != (driver.Extent{Width: 2000, Height: 100}) {
		t.Errorf("clamped extent: %+v", got)
	}
}

func TestPickImageCount(t *testing.T) {
	if got := PickImageCount(driver.SurfaceCaps{MinImageCount: 2, MaxImageCount: 8}); got != 3 {
		t.Errorf("min+1: got %d", got)
	}
	if got := PickImageCount(driver.SurfaceCaps{MinImageCount: 3, MaxImageCount: 3}); got != 3 {
		t.Errorf("clamped to max: got %d", got)
	}
	// zero max means unbounded
	if got := PickImageCount(driver.SurfaceCaps{MinImageCount: 4, MaxImageCount: 0}); got != 5 {
		t.Errorf("unbounded max: got %d", got)
	}
}

func TestNewSwapchainState(t *testing.T) {
	dr := drivertest.New()
	ss, err := NewSwapchainState(dr, driver.Extent{Width: 640, Height: 480})
	if err != nil {
		t.Fatalf("NewSwapchainState: %v", err)
	}
	defer ss.Destroy()

	// fixed current extent wins over the window size
	if ss.Extent != dr.Caps.CurrentExtent {
		t.Errorf("extent = %+v, want %+v", ss.Extent, dr.Caps.CurrentExtent)
	}
	if ss.Format != OutputFormat {
		t.Errorf("format = %s", ss.Format)
	}
	if ss.PresentMode != driver.Mailbox {
		t.Errorf("present mode = %s, want %s", ss.PresentMode, driver.Mailbox)
	}
	if len(ss.Images) != dr.Caps.MinImageCount+1 {
		t.Errorf("%d swapchain images, want %d", len(ss.Images), dr.Caps.MinImageCount+1)
	}
	if len(ss.Outputs) != MaxFramesInFlight {
		t.Errorf("%d output images, want %d", len(ss.Outputs), MaxFramesInFlight)
	}

	// initial transitions ran: presentable images sit in PresentSrc,
	// outputs in General
	for i, img := range ss.Images {
		if lt := img.(*drivertest.Image).Layout; lt != driver.LayoutPresentSrc {
			t.Errorf("swapchain image %d layout = %s", i, lt)
		}
	}
	for i, img := range ss.Outputs {
		if lt := img.(*drivertest.Image).Layout; lt != driver.LayoutGeneral {
			t.Errorf("output image %d layout = %s", i, lt)
		}
	}
	if len(dr.Errors) != 0 {
		t.Errorf("driver errors: %v", dr.Errors)
	}
}

func TestSwapchainRecreate(t *testing.T) {
	dr := drivertest.New()
	ss, err := NewSwapchainState(dr, driver.Extent{Width: 640, Height: 480})
	if err != nil {
		t.Fatal(err)
	}
	defer ss.Destroy()

	// minimized window: nothing happens at all
	ops := len(dr.Ops)
	rebuilt, err := ss.Recreate(driver.Extent{Width: 0, Height: 480})
	if err != nil || rebuilt {
		t.Errorf("zero-size recreate: rebuilt=%v err=%v", rebuilt, err)
	}
	if len(dr.Ops) != ops {
		t.Errorf("zero-size recreate touched the device: %v", dr.Ops[ops:])
	}

	// resized surface: rebuilt at the new capabilities
	dr.Caps.CurrentExtent = driver.Extent{Width: 300, Height: 200}
	oldSC := ss.Swapchain.(*drivertest.Swapchain)
	oldOut := ss.Outputs[0].(*drivertest.Image)
	rebuilt, err = ss.Recreate(driver.Extent{Width: 300, Height: 200})
	if err != nil || !rebuilt {
		t.Fatalf("recreate: rebuilt=%v err=%v", rebuilt, err)
	}
	if oldSC.Live() {
		t.Errorf("old swapchain still live")
	}
	if oldOut.Live() {
		t.Errorf("old output image still live")
	}
	if ss.Extent != (driver.Extent{Width: 300, Height: 200}) {
		t.Errorf("new extent = %+v", ss.Extent)
	}
	if dr.SwapchainsCreated != 2 {
		t.Errorf("swapchains created = %d, want 2", dr.SwapchainsCreated)
	}
	for i, img := range ss.Outputs {
		if lt := img.(*drivertest.Image).Layout; lt != driver.LayoutGeneral {
			t.Errorf("new output %d layout = %s", i, lt)
		}
	}
	if len(dr.Errors) != 0 {
		t.Errorf("driver errors: %v", dr.Errors)
	}

	ss.Destroy()
	if dr.ImagesLive != 0 {
		t.Errorf("images live after destroy: %d", dr.ImagesLive)
	}
}
