// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vtrace

import (
	"goki.dev/vtrace/v2/driver"
)

// FrameSlot bundles everything one in-flight frame owns exclusively: a
// re-recordable command buffer, the two semaphores ordering GPU-side work
// (acquire -> render -> present), the in-flight fence ordering
// CPU-observable completion, and the slot's uniform buffer.  The slot's
// output image and descriptor set are held by SwapchainState and Builder
// at the same index.
//
// Slots are created once at startup, reused every MaxFramesInFlight-th
// frame, and destroyed only at shutdown.  The fence wait at the top of
// each frame serializes reuse, so no slot is ever touched by two logical
// frames at once.
type FrameSlot struct {

	// command buffer, re-recorded every use
	Cmd driver.Cmd `desc:"command buffer, re-recorded every use"`

	// signaled when the acquired swapchain image is actually available
	ImageAvailable driver.Semaphore `desc:"signaled when the acquired swapchain image is actually available"`

	// signaled when rendering is done; presentation waits on it
	RenderFinished driver.Semaphore `desc:"signaled when rendering is done; presentation waits on it"`

	// signaled when this slot's submission completes; created signaled
	// so the first wait returns immediately
	InFlight driver.Fence `desc:"signaled when this slot's submission completes; created signaled so the first wait returns immediately"`

	// this slot's camera uniform buffer
	Uniform *UniformSlot `desc:"this slot's camera uniform buffer"`
}

// NewFrameSlots creates one FrameSlot per uniform slot.
func NewFrameSlots(drv driver.Driver, uniforms []*UniformSlot) ([]*FrameSlot, error) {
	slots := make([]*FrameSlot, len(uniforms))
	for i := range slots {
		fs := &FrameSlot{Uniform: uniforms[i]}
		var err error
		if fs.Cmd, err = drv.NewCmd(driver.GraphicsQueue); err == nil {
			if fs.ImageAvailable, err = drv.CreateSemaphore(); err == nil {
				if fs.RenderFinished, err = drv.CreateSemaphore(); err == nil {
					fs.InFlight, err = drv.CreateFence(true)
				}
			}
		}
		if err != nil {
			fs.Destroy()
			for j := 0; j < i; j++ {
				slots[j].Destroy()
			}
			return nil, err
		}
		slots[i] = fs
	}
	return slots, nil
}

// Destroy releases the slot's sync objects and command buffer.  The
// Uniform is owned by the renderer's buffer layer, not destroyed here.
func (fs *FrameSlot) Destroy() {
	if fs.InFlight != nil {
		fs.InFlight.Destroy()
		fs.InFlight = nil
	}
	if fs.RenderFinished != nil {
		fs.RenderFinished.Destroy()
		fs.RenderFinished = nil
	}
	if fs.ImageAvailable != nil {
		fs.ImageAvailable.Destroy()
		fs.ImageAvailable = nil
	}
	if fs.Cmd != nil {
		fs.Cmd.Free()
		fs.Cmd = nil
	}
	fs.Uniform = nil
}
