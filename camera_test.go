// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vtrace

import (
	"bytes"
	"testing"

	"goki.dev/mat32/v2"
)

func TestCameraMats(t *testing.T) {
	if CameraMatsSize != 128 {
		t.Fatalf("CameraMatsSize = %d, want 128", CameraMatsSize)
	}

	cam := &Camera{}
	cam.Defaults()
	var m1, m2 CameraMats
	cam.Mats(4.0/3.0, &m1)
	cam.Mats(4.0/3.0, &m2)
	if !bytes.Equal(m1.Bytes(), m2.Bytes()) {
		t.Errorf("same camera produced different blocks")
	}
	if len(m1.Bytes()) != CameraMatsSize {
		t.Errorf("block is %d bytes", len(m1.Bytes()))
	}

	// a changed field of view changes the projection side of the block
	cam.FOV = 90
	var m3 CameraMats
	cam.Mats(4.0/3.0, &m3)
	if bytes.Equal(m1.Bytes(), m3.Bytes()) {
		t.Errorf("field of view change did not change the block")
	}
	if m3.ViewInv != m1.ViewInv {
		t.Errorf("field of view change altered the view matrix")
	}

	// moving the eye changes the view side only
	cam.FOV = 45
	cam.Pos = mat32.V3(-2, 2, -2)
	var m4 CameraMats
	cam.Mats(4.0/3.0, &m4)
	if m4.ViewInv == m1.ViewInv {
		t.Errorf("eye move did not change the view matrix")
	}
	if m4.ProjInv != m1.ProjInv {
		t.Errorf("eye move altered the projection matrix")
	}
}

func TestCameraFOVClamp(t *testing.T) {
	cam := &Camera{}
	cam.Defaults()

	// out-of-range values behave exactly like the clamp bounds
	var lo, atMin CameraMats
	cam.FOV = -30
	cam.Mats(1, &lo)
	cam.FOV = MinFOV
	cam.Mats(1, &atMin)
	if !bytes.Equal(lo.Bytes(), atMin.Bytes()) {
		t.Errorf("FOV below minimum not clamped")
	}

	var hi, atMax CameraMats
	cam.FOV = 400
	cam.Mats(1, &hi)
	cam.FOV = MaxFOV
	cam.Mats(1, &atMax)
	if !bytes.Equal(hi.Bytes(), atMax.Bytes()) {
		t.Errorf("FOV above maximum not clamped")
	}
}

func TestCubeMesh(t *testing.T) {
	ms := CubeMesh()
	if len(ms.Vtx) != 24 {
		t.Errorf("%d vertices, want 24", len(ms.Vtx))
	}
	if len(ms.Idx) != 36 || ms.NTris() != 12 {
		t.Errorf("%d indices / %d tris, want 36 / 12", len(ms.Idx), ms.NTris())
	}
	for i, ix := range ms.Idx {
		if int(ix) >= len(ms.Vtx) {
			t.Errorf("index %d out of range: %d", i, ix)
		}
	}
	if len(ms.VtxBytes()) != 24*VertexSize || len(ms.IdxBytes()) != 72 {
		t.Errorf("byte sizes: %d / %d", len(ms.VtxBytes()), len(ms.IdxBytes()))
	}
}
