// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vtrace

import (
	"bytes"
	"errors"
	"testing"

	"goki.dev/vtrace/v2/driver"
	"goki.dev/vtrace/v2/drivertest"
)

func TestSBTStride(t *testing.T) {
	tests := []struct {
		props driver.RayProps
		want  int
	}{
		{driver.RayProps{HandleSize: 32, HandleAlignment: 64, BaseAlignment: 64}, 64},
		{driver.RayProps{HandleSize: 32, HandleAlignment: 32, BaseAlignment: 128}, 128},
		{driver.RayProps{HandleSize: 16, HandleAlignment: 16, BaseAlignment: 32}, MinSBTStride},
		{driver.RayProps{HandleSize: 64, HandleAlignment: 256, BaseAlignment: 64}, 256},
	}
	for _, ts := range tests {
		if got := SBTStride(ts.props); got != ts.want {
			t.Errorf("SBTStride(%+v) = %d, want %d", ts.props, got, ts.want)
		}
	}
}

func TestNewRayPipeline(t *testing.T) {
	dr := drivertest.New()
	rp, err := NewRayPipeline(dr, testShaderCode())
	if err != nil {
		t.Fatalf("NewRayPipeline: %v", err)
	}
	defer rp.Destroy()

	if rp.SBT.Stride != 64 {
		t.Errorf("SBT stride = %d, want 64", rp.SBT.Stride)
	}
	if rp.SBT.HandleSize != dr.Props.HandleSize {
		t.Errorf("SBT handle size = %d, want %d", rp.SBT.HandleSize, dr.Props.HandleSize)
	}

	// each group's handle sits at g*stride, the padding after it zeroed
	data := rp.SBT.Buff.(*drivertest.Buffer).Data()
	if len(data) != NShaderGroups*rp.SBT.Stride {
		t.Fatalf("SBT buffer size = %d, want %d", len(data), NShaderGroups*rp.SBT.Stride)
	}
	hs := rp.SBT.HandleSize
	for g := 0; g < NShaderGroups; g++ {
		rec := data[g*rp.SBT.Stride : (g+1)*rp.SBT.Stride]
		want := bytes.Repeat([]byte{byte(g + 1)}, hs)
		if !bytes.Equal(rec[:hs], want) {
			t.Errorf("group %d handle = % x, want % x", g, rec[:hs], want)
		}
		for _, b := range rec[hs:] {
			if b != 0 {
				t.Errorf("group %d padding not zero", g)
				break
			}
		}
	}

	// dispatch table uses the padded stride for region stride and size
	tbl := rp.SBT.Table()
	if tbl.Stride != rp.SBT.Stride || tbl.Buffer != rp.SBT.Buff {
		t.Errorf("Table() = %+v", tbl)
	}

	if len(dr.Errors) != 0 {
		t.Errorf("driver errors: %v", dr.Errors)
	}
}

func TestNewRayPipelineBadShader(t *testing.T) {
	dr := drivertest.New()
	code := testShaderCode()
	code.ClosestHit = []byte{1, 2, 3}
	if _, err := NewRayPipeline(dr, code); !errors.Is(err, ErrShaderFormat) {
		t.Errorf("bad shader: got %v, want ErrShaderFormat", err)
	}
	if dr.BuffersLive != 0 {
		t.Errorf("buffers leaked: %d", dr.BuffersLive)
	}
}
