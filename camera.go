// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vtrace

import (
	"unsafe"

	"goki.dev/mat32/v2"
)

// CameraMats is the uniform block the ray-generation shader reads to
// unproject rays: inverse view and inverse projection, 4x4 float32 each.
// The layout must match the shader byte-for-byte; no reflection is used.
type CameraMats struct {
	ViewInv mat32.Mat4
	ProjInv mat32.Mat4
}

// CameraMatsSize is the byte size of the uniform block (128).
const CameraMatsSize = int(unsafe.Sizeof(CameraMats{}))

// Bytes returns the raw block bytes for the per-frame uniform write.
func (cm *CameraMats) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(cm)), CameraMatsSize)
}

// field-of-view clamp, degrees
const (
	MinFOV = 1
	MaxFOV = 179
)

// Camera is a simple look-at camera.  The scene framework that would
// normally own this is out of scope; this is just enough to produce
// CameraMats every frame.
type Camera struct {

	// eye position
	Pos mat32.Vec3 `desc:"eye position"`

	// look-at target
	Target mat32.Vec3 `desc:"look-at target"`

	// vertical field of view in degrees, clamped to [MinFOV, MaxFOV]
	FOV float32 `desc:"vertical field of view in degrees, clamped to [MinFOV, MaxFOV]"`

	// near and far clip distances
	Near float32 `desc:"near clip distance"`
	Far  float32 `desc:"far clip distance"`
}

func (cm *Camera) Defaults() {
	cm.Pos = mat32.Vec3{X: 2, Y: -2, Z: 2}
	cm.Target = mat32.Vec3{X: 0, Y: 0, Z: 0}
	cm.FOV = 45
	cm.Near = 0.1
	cm.Far = 100
}

// Mats computes the uniform block for the given surface aspect ratio.
// The Vk perspective flavor flips Y and maps depth to 0..1, so GL-style
// geometry renders identically.
func (cm *Camera) Mats(aspect float32, mats *CameraMats) {
	fov := cm.FOV
	if fov < MinFOV {
		fov = MinFOV
	} else if fov > MaxFOV {
		fov = MaxFOV
	}

	var lookq mat32.Quat
	lookq.SetFromRotationMatrix(mat32.NewLookAt(cm.Pos, cm.Target, mat32.V3(0, 1, 0)))
	var world mat32.Mat4
	world.SetTransform(cm.Pos, lookq, mat32.Vec3{X: 1, Y: 1, Z: 1})
	// the view matrix is the inverse of the camera's world transform,
	// so the camera world transform is exactly the ViewInv the shader needs
	mats.ViewInv.CopyFrom(&world)

	var proj mat32.Mat4
	proj.SetVkPerspective(fov, aspect, cm.Near, cm.Far)
	projInv, _ := proj.Inverse()
	mats.ProjInv.CopyFrom(projInv)
}
