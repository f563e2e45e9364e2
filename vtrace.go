// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vtrace is the frame-rendering core of a hardware-accelerated
// ray-tracing renderer.  It owns the GPU-visible resources (geometry
// buffers, per-frame uniform buffers, bottom- and top-level acceleration
// structures, the ray-tracing pipeline and its shader-binding table) and
// drives the per-frame protocol that submits ray-tracing work and presents
// it to a window surface.
//
// Device, instance and queue discovery, window-surface creation, and the
// scene / camera framework are external collaborators: the core consumes
// a ready driver.Driver (see the vkd package for the Vulkan one) and
// exposes two entry points to the window-event loop, Renderer.DrawFrame
// and Renderer.RecreateSwapchain.
package vtrace

// MaxFramesInFlight is how many frames the CPU may record and submit
// before being forced to wait on an in-flight fence.  This is the only
// admission-control knob: 2 = double buffering, trading latency for
// throughput.
const MaxFramesInFlight = 2
