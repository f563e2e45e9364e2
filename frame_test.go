// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vtrace

import (
	"bytes"
	"testing"

	"goki.dev/vtrace/v2/driver"
	"goki.dev/vtrace/v2/drivertest"
)

func newTestRenderer(t *testing.T, dr *drivertest.Driver) *Renderer {
	t.Helper()
	ry, err := NewRenderer(dr, CubeMesh(), testShaderCode(),
		driver.Extent{Width: 640, Height: 480})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return ry
}

func TestDrawFrameUniforms(t *testing.T) {
	dr := drivertest.New()
	ry := newTestRenderer(t, dr)
	defer ry.Shutdown()

	cam := &Camera{}
	cam.Defaults()

	// each frame's trace must see that frame's camera block, not a stale
	// or overwritten one
	var want [][]byte
	for i := 0; i < 3; i++ {
		cam.FOV = 40 + float32(i)*10
		var mats CameraMats
		cam.Mats(ry.Swap.Aspect(), &mats)
		want = append(want, append([]byte(nil), mats.Bytes()...))
		if err := ry.DrawFrame(cam); err != nil {
			t.Fatalf("DrawFrame %d: %v", i, err)
		}
	}

	if len(dr.Traces) != 3 {
		t.Fatalf("%d traces, want 3", len(dr.Traces))
	}
	for i, tr := range dr.Traces {
		if !bytes.Equal(tr.Uniform, want[i]) {
			t.Errorf("trace %d uniform differs from frame %d camera block", i, i)
		}
		if tr.Width != ry.Swap.Extent.Width || tr.Height != ry.Swap.Extent.Height {
			t.Errorf("trace %d extent %dx%d", i, tr.Width, tr.Height)
		}
		if tr.SBTStride != ry.Pipeline.SBT.Stride {
			t.Errorf("trace %d stride %d, want %d", i, tr.SBTStride, ry.Pipeline.SBT.Stride)
		}
	}
	if len(dr.Errors) != 0 {
		t.Errorf("driver errors: %v", dr.Errors)
	}
}

func TestDrawFrameSlots(t *testing.T) {
	dr := drivertest.New()
	ry := newTestRenderer(t, dr)
	defer ry.Shutdown()

	cam := &Camera{}
	cam.Defaults()
	for i := 0; i < 5; i++ {
		if err := ry.DrawFrame(cam); err != nil {
			t.Fatalf("DrawFrame %d: %v", i, err)
		}
	}
	if ry.FramesSubmitted != 5 {
		t.Errorf("FramesSubmitted = %d", ry.FramesSubmitted)
	}

	// slots alternate 0,1,0,1,0, each frame bound to its slot's set
	for i, tr := range dr.Traces {
		if tr.Set != ry.Build.Sets[i%MaxFramesInFlight] {
			t.Errorf("frame %d used wrong descriptor set", i)
		}
	}

	// the CPU never runs more than MaxFramesInFlight submissions ahead
	if dr.MaxInFlight > MaxFramesInFlight {
		t.Errorf("max in flight = %d, want <= %d", dr.MaxInFlight, MaxFramesInFlight)
	}

	// steady state: presentables parked in PresentSrc, outputs in General
	for i, img := range ry.Swap.Images {
		if lt := img.(*drivertest.Image).Layout; lt != driver.LayoutPresentSrc {
			t.Errorf("swapchain image %d layout = %s", i, lt)
		}
	}
	for i, img := range ry.Swap.Outputs {
		if lt := img.(*drivertest.Image).Layout; lt != driver.LayoutGeneral {
			t.Errorf("output image %d layout = %s", i, lt)
		}
	}
	if len(dr.Errors) != 0 {
		t.Errorf("driver errors: %v", dr.Errors)
	}
}

func TestDrawFrameOutOfDateAcquire(t *testing.T) {
	dr := drivertest.New()
	ry := newTestRenderer(t, dr)
	defer ry.Shutdown()

	dr.AcquireScript = []driver.Result{driver.Success, driver.Success, driver.ErrOutOfDate}

	cam := &Camera{}
	cam.Defaults()
	for i := 0; i < 3; i++ {
		if err := ry.DrawFrame(cam); err != nil {
			t.Fatalf("DrawFrame %d: %v", i, err)
		}
	}

	// the out-of-date frame recreates and skips: no trace, no present,
	// counter not advanced
	if dr.SwapchainsCreated != 2 {
		t.Errorf("swapchains created = %d, want 2", dr.SwapchainsCreated)
	}
	if len(dr.Traces) != 2 {
		t.Errorf("%d traces, want 2", len(dr.Traces))
	}
	if dr.PresentCount != 2 {
		t.Errorf("%d presents, want 2", dr.PresentCount)
	}
	if ry.FramesSubmitted != 2 {
		t.Errorf("FramesSubmitted = %d, want 2", ry.FramesSubmitted)
	}

	// next frame renders normally through the new swapchain, with the
	// descriptor sets re-pointed at its output images
	if err := ry.DrawFrame(cam); err != nil {
		t.Fatalf("DrawFrame after recreate: %v", err)
	}
	if len(dr.Traces) != 3 {
		t.Fatalf("%d traces after recreate", len(dr.Traces))
	}
	if out := dr.Traces[2].Output; out != ry.Swap.Outputs[0].(*drivertest.Image) {
		t.Errorf("trace after recreate not into new output image")
	}
	if len(dr.Errors) != 0 {
		t.Errorf("driver errors: %v", dr.Errors)
	}
}

func TestDrawFrameSuboptimal(t *testing.T) {
	// suboptimal on acquire is tolerated: the frame still renders and no
	// recreation happens
	dr := drivertest.New()
	ry := newTestRenderer(t, dr)
	dr.AcquireScript = []driver.Result{driver.Suboptimal}
	cam := &Camera{}
	cam.Defaults()
	if err := ry.DrawFrame(cam); err != nil {
		t.Fatalf("DrawFrame: %v", err)
	}
	if len(dr.Traces) != 1 || dr.SwapchainsCreated != 1 || ry.FramesSubmitted != 1 {
		t.Errorf("suboptimal acquire: traces=%d swapchains=%d submitted=%d",
			len(dr.Traces), dr.SwapchainsCreated, ry.FramesSubmitted)
	}
	ry.Shutdown()

	// suboptimal on present recreates, after the frame completed
	dr = drivertest.New()
	ry = newTestRenderer(t, dr)
	dr.PresentScript = []driver.Result{driver.Suboptimal}
	if err := ry.DrawFrame(cam); err != nil {
		t.Fatalf("DrawFrame: %v", err)
	}
	if dr.SwapchainsCreated != 2 {
		t.Errorf("suboptimal present: swapchains=%d, want 2", dr.SwapchainsCreated)
	}
	if ry.FramesSubmitted != 1 {
		t.Errorf("suboptimal present: submitted=%d, want 1", ry.FramesSubmitted)
	}
	if len(dr.Errors) != 0 {
		t.Errorf("driver errors: %v", dr.Errors)
	}
	ry.Shutdown()
}

func TestRecreateSwapchainResize(t *testing.T) {
	dr := drivertest.New()
	ry := newTestRenderer(t, dr)
	defer ry.Shutdown()

	cam := &Camera{}
	cam.Defaults()
	if err := ry.DrawFrame(cam); err != nil {
		t.Fatal(err)
	}

	// minimized: silently absorbed
	if err := ry.RecreateSwapchain(driver.Extent{Width: 0, Height: 0}); err != nil {
		t.Errorf("zero-size resize: %v", err)
	}
	if dr.SwapchainsCreated != 1 {
		t.Errorf("zero-size resize recreated the swapchain")
	}

	dr.Caps.CurrentExtent = driver.Extent{Width: 320, Height: 240}
	if err := ry.RecreateSwapchain(driver.Extent{Width: 320, Height: 240}); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if dr.SwapchainsCreated != 2 {
		t.Errorf("swapchains created = %d, want 2", dr.SwapchainsCreated)
	}

	// rendering continues at the new size
	if err := ry.DrawFrame(cam); err != nil {
		t.Fatalf("DrawFrame after resize: %v", err)
	}
	last := dr.Traces[len(dr.Traces)-1]
	if last.Width != 320 || last.Height != 240 {
		t.Errorf("trace extent after resize: %dx%d", last.Width, last.Height)
	}
	if len(dr.Errors) != 0 {
		t.Errorf("driver errors: %v", dr.Errors)
	}
}

func TestRecreateSwapchainSameSize(t *testing.T) {
	dr := drivertest.New()
	ry := newTestRenderer(t, dr)
	defer ry.Shutdown()

	sz := driver.Extent{Width: 512, Height: 384}
	dr.Caps.CurrentExtent = sz
	if err := ry.RecreateSwapchain(sz); err != nil {
		t.Fatalf("first recreate: %v", err)
	}
	ext, format := ry.Swap.Extent, ry.Swap.Format

	// same size again: a full rebuild that lands in an identical
	// configuration
	if err := ry.RecreateSwapchain(sz); err != nil {
		t.Fatalf("second recreate: %v", err)
	}
	if ry.Swap.Extent != ext || ry.Swap.Format != format {
		t.Errorf("second recreate changed config: %+v %s", ry.Swap.Extent, ry.Swap.Format)
	}

	// the descriptor sets reference only the current, live output images
	for i, set := range ry.Build.Sets {
		st := set.(*drivertest.Set)
		img, ok := st.Image.(*drivertest.Image)
		if !ok || img != ry.Swap.Outputs[i].(*drivertest.Image) {
			t.Errorf("set %d not bound to current output image", i)
			continue
		}
		if !img.Live() {
			t.Errorf("set %d references a destroyed image", i)
		}
	}

	cam := &Camera{}
	cam.Defaults()
	if err := ry.DrawFrame(cam); err != nil {
		t.Fatalf("DrawFrame after recreates: %v", err)
	}
	if len(dr.Errors) != 0 {
		t.Errorf("driver errors: %v", dr.Errors)
	}
}

func TestShutdown(t *testing.T) {
	dr := drivertest.New()
	ry := newTestRenderer(t, dr)

	cam := &Camera{}
	cam.Defaults()
	for i := 0; i < 3; i++ {
		if err := ry.DrawFrame(cam); err != nil {
			t.Fatal(err)
		}
	}

	ry.Shutdown()
	if dr.BuffersLive != 0 {
		t.Errorf("buffers live after shutdown: %d", dr.BuffersLive)
	}
	if dr.ImagesLive != 0 {
		t.Errorf("images live after shutdown: %d", dr.ImagesLive)
	}
	if len(dr.Errors) != 0 {
		t.Errorf("driver errors: %v", dr.Errors)
	}

	// idempotent
	ry.Shutdown()
	if len(dr.Errors) != 0 {
		t.Errorf("driver errors after second shutdown: %v", dr.Errors)
	}
}
