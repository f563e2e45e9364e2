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

func TestUploadStaged(t *testing.T) {
	dr := drivertest.New()
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	buff, err := UploadStaged(dr, data, driver.BuffVertex|driver.BuffDeviceAddress)
	if err != nil {
		t.Fatalf("UploadStaged: %v", err)
	}
	if got := buff.(*drivertest.Buffer).Data(); !bytes.Equal(got, data) {
		t.Errorf("uploaded bytes = % x, want % x", got, data)
	}
	// staging buffer destroyed before return; only the device copy lives
	if dr.BuffersCreated != 2 || dr.BuffersLive != 1 {
		t.Errorf("buffers created=%d live=%d, want 2/1", dr.BuffersCreated, dr.BuffersLive)
	}
	buff.Destroy()
	if dr.BuffersLive != 0 {
		t.Errorf("buffers live after destroy: %d", dr.BuffersLive)
	}
	if len(dr.Errors) != 0 {
		t.Errorf("driver errors: %v", dr.Errors)
	}
}

func TestNewGeometryBuffer(t *testing.T) {
	dr := drivertest.New()
	ms := CubeMesh()
	gb, err := NewGeometryBuffer(dr, ms)
	if err != nil {
		t.Fatalf("NewGeometryBuffer: %v", err)
	}
	defer gb.Destroy()

	if gb.NVtx != len(ms.Vtx) || gb.NIdx != len(ms.Idx) {
		t.Errorf("counts: %d vtx %d idx, want %d/%d", gb.NVtx, gb.NIdx, len(ms.Vtx), len(ms.Idx))
	}
	if gb.Vtx.Size() != len(ms.Vtx)*VertexSize {
		t.Errorf("vertex buffer size = %d, want %d", gb.Vtx.Size(), len(ms.Vtx)*VertexSize)
	}
	if gb.Idx.Size() != len(ms.Idx)*2 {
		t.Errorf("index buffer size = %d, want %d", gb.Idx.Size(), len(ms.Idx)*2)
	}
	if !bytes.Equal(gb.Vtx.(*drivertest.Buffer).Data(), ms.VtxBytes()) {
		t.Errorf("vertex bytes differ from mesh")
	}
	if !bytes.Equal(gb.Idx.(*drivertest.Buffer).Data(), ms.IdxBytes()) {
		t.Errorf("index bytes differ from mesh")
	}

	if _, err := NewGeometryBuffer(dr, &Mesh{}); err == nil {
		t.Errorf("empty mesh: expected error")
	}
}

func TestUniformSlots(t *testing.T) {
	dr := drivertest.New()
	slots, err := NewUniformSlots(dr, MaxFramesInFlight, CameraMatsSize)
	if err != nil {
		t.Fatalf("NewUniformSlots: %v", err)
	}
	if len(slots) != MaxFramesInFlight {
		t.Fatalf("got %d slots", len(slots))
	}

	// writes land in the persistently mapped buffer
	block := make([]byte, CameraMatsSize)
	for i := range block {
		block[i] = byte(i)
	}
	if err := slots[0].WriteBlock(block); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	if got := slots[0].Buff.(*drivertest.Buffer).Data(); !bytes.Equal(got, block) {
		t.Errorf("slot 0 bytes differ from written block")
	}
	// slot 1 untouched
	if got := slots[1].Buff.(*drivertest.Buffer).Data(); !bytes.Equal(got, make([]byte, CameraMatsSize)) {
		t.Errorf("slot 1 modified by slot 0 write")
	}

	if err := slots[0].WriteBlock(block[:8]); err == nil {
		t.Errorf("short block: expected error")
	}

	for _, us := range slots {
		us.Destroy()
	}
	if dr.BuffersLive != 0 {
		t.Errorf("buffers live after destroy: %d", dr.BuffersLive)
	}
}
