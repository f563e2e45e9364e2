// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vtrace

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"goki.dev/vtrace/v2/driver"
	"goki.dev/vtrace/v2/drivertest"
)

func TestEncodeInstance(t *testing.T) {
	const addr = 0xdeadbeef12345678
	ins := EncodeInstance(addr)
	if len(ins) != InstanceSize {
		t.Fatalf("instance record is %d bytes, want %d", len(ins), InstanceSize)
	}

	one := math.Float32bits(1)
	// identity transform diagonal at row starts 0, 20, 40
	for _, off := range []int{0, 20, 40} {
		if got := binary.LittleEndian.Uint32(ins[off:]); got != one {
			t.Errorf("transform word at %d = 0x%08x, want 1.0", off, got)
		}
	}
	// every other transform word zero
	for off := 0; off < 48; off += 4 {
		if off == 0 || off == 20 || off == 40 {
			continue
		}
		if got := binary.LittleEndian.Uint32(ins[off:]); got != 0 {
			t.Errorf("transform word at %d = 0x%08x, want 0", off, got)
		}
	}
	if got := binary.LittleEndian.Uint32(ins[48:]); got != 0xff<<24 {
		t.Errorf("index+mask word = 0x%08x, want 0x%08x", got, uint32(0xff)<<24)
	}
	if got := binary.LittleEndian.Uint32(ins[52:]); got != 0x1<<24 {
		t.Errorf("offset+flags word = 0x%08x, want 0x%08x", got, uint32(0x1)<<24)
	}
	if got := binary.LittleEndian.Uint64(ins[56:]); got != addr {
		t.Errorf("structure address = 0x%016x, want 0x%016x", got, uint64(addr))
	}
}

// newTestBuilder makes a builder plus the pipeline and geometry it needs.
func newTestBuilder(t *testing.T, dr *drivertest.Driver) (*Builder, *GeometryBuffer, *RayPipeline) {
	t.Helper()
	rp, err := NewRayPipeline(dr, testShaderCode())
	if err != nil {
		t.Fatalf("NewRayPipeline: %v", err)
	}
	gb, err := NewGeometryBuffer(dr, CubeMesh())
	if err != nil {
		t.Fatalf("NewGeometryBuffer: %v", err)
	}
	bd, err := NewBuilder(dr, rp.Layout, MaxFramesInFlight)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	return bd, gb, rp
}

func TestBuilderStates(t *testing.T) {
	dr := drivertest.New()
	bd, gb, rp := newTestBuilder(t, dr)
	defer rp.Destroy()
	defer gb.Destroy()
	defer bd.Destroy()

	// top level before bottom level is never valid
	if err := bd.BuildTLAS(); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("BuildTLAS before BuildBLAS: got %v, want ErrNotBuilt", err)
	}

	if err := bd.BuildBLAS(gb); err != nil {
		t.Fatalf("BuildBLAS: %v", err)
	}
	if bd.State != BlasBuilt || bd.BLAS == nil {
		t.Fatalf("state after BuildBLAS = %s", bd.State)
	}
	if err := bd.BuildBLAS(gb); err == nil {
		t.Errorf("repeated BuildBLAS: expected error")
	}

	liveBefore := dr.BuffersLive
	if err := bd.BuildTLAS(); err != nil {
		t.Fatalf("BuildTLAS: %v", err)
	}
	if bd.State != TlasBuilt || bd.TLAS == nil {
		t.Fatalf("state after BuildTLAS = %s", bd.State)
	}
	// instance and scratch buffers are transient: only the top-level
	// backing buffer outlives the build
	if dr.BuffersLive != liveBefore+1 {
		t.Errorf("buffers live after BuildTLAS = %d, want %d", dr.BuffersLive, liveBefore+1)
	}
	if len(dr.Errors) != 0 {
		t.Errorf("driver errors: %v", dr.Errors)
	}
}

func TestBuilderZeroSizes(t *testing.T) {
	dr := drivertest.New()
	dr.AccelSizesFunc = func(desc driver.AccelDesc) driver.AccelSizes {
		return driver.AccelSizes{}
	}
	bd, gb, rp := newTestBuilder(t, dr)
	defer rp.Destroy()
	defer gb.Destroy()
	defer bd.Destroy()

	if err := bd.BuildBLAS(gb); !errors.Is(err, ErrZeroBuildSize) {
		t.Errorf("zero sizes: got %v, want ErrZeroBuildSize", err)
	}
	if bd.State != Unbuilt {
		t.Errorf("state after failed build = %s, want %s", bd.State, Unbuilt)
	}
}

func TestBindDescriptorSets(t *testing.T) {
	dr := drivertest.New()
	bd, gb, rp := newTestBuilder(t, dr)
	defer rp.Destroy()
	defer gb.Destroy()
	defer bd.Destroy()

	uniforms, err := NewUniformSlots(dr, MaxFramesInFlight, CameraMatsSize)
	if err != nil {
		t.Fatal(err)
	}
	outputs := make([]driver.Image, MaxFramesInFlight)
	for i := range outputs {
		outputs[i], _ = dr.CreateImage(driver.ImageDesc{
			Extent: driver.Extent{Width: 64, Height: 64}, Format: OutputFormat})
	}

	// binding before the top level exists is refused
	if err := bd.BindDescriptorSets(uniforms, outputs); err == nil {
		t.Errorf("BindDescriptorSets before build: expected error")
	}

	if err := bd.BuildBLAS(gb); err != nil {
		t.Fatal(err)
	}
	if err := bd.BuildTLAS(); err != nil {
		t.Fatal(err)
	}
	if err := bd.BindDescriptorSets(uniforms, outputs); err != nil {
		t.Fatalf("BindDescriptorSets: %v", err)
	}
	if bd.State != Ready {
		t.Errorf("state = %s, want %s", bd.State, Ready)
	}
	for i, set := range bd.Sets {
		st := set.(*drivertest.Set)
		if st.Accel != bd.TLAS.Accel || st.Image != outputs[i] || st.Buffer != uniforms[i].Buff {
			t.Errorf("set %d bindings wrong", i)
		}
	}

	// re-pointing at new outputs reuses the same sets
	newOuts := make([]driver.Image, MaxFramesInFlight)
	for i := range newOuts {
		newOuts[i], _ = dr.CreateImage(driver.ImageDesc{
			Extent: driver.Extent{Width: 32, Height: 32}, Format: OutputFormat})
	}
	if err := bd.BindDescriptorSets(uniforms, newOuts); err != nil {
		t.Fatalf("rebind: %v", err)
	}
	for i, set := range bd.Sets {
		if set.(*drivertest.Set).Image != newOuts[i] {
			t.Errorf("set %d not re-pointed", i)
		}
	}

	if err := bd.BindDescriptorSets(uniforms[:1], newOuts); err == nil {
		t.Errorf("mismatched slice lengths: expected error")
	}
	if len(dr.Errors) != 0 {
		t.Errorf("driver errors: %v", dr.Errors)
	}
}
