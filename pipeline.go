// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vtrace

import (
	"fmt"

	"goki.dev/vtrace/v2/driver"
)

// NShaderGroups is the number of shader groups in the pipeline:
// ray-generation, miss, triangle closest-hit.
const NShaderGroups = 3

// MinSBTStride is the floor on the shader-binding-table group stride,
// applied even when the device reports smaller alignments.
const MinSBTStride = 64

// SBT is the shader-binding table: one host-visible buffer holding the
// three group handles, each padded out to Stride.  The region stride and
// size handed to the trace dispatch are Stride, not the raw handle size:
// using the handle size makes the device read garbage for every group
// after the first whenever the alignment is larger.
type SBT struct {

	// table buffer, device addressable
	Buff driver.Buffer `desc:"table buffer, device addressable"`

	// padded group stride; also each region's size
	Stride int `desc:"padded group stride; also each region's size"`

	// raw handle size reported by the device
	HandleSize int `desc:"raw handle size reported by the device"`
}

// Table returns the dispatch-ready region descriptor.
func (sb *SBT) Table() driver.SBTable {
	return driver.SBTable{Buffer: sb.Buff, Stride: sb.Stride}
}

func (sb *SBT) Destroy() {
	if sb.Buff != nil {
		sb.Buff.Destroy()
		sb.Buff = nil
	}
}

// SBTStride returns the padded group stride for the given device
// properties: the maximum of the handle and base alignments, floored
// at MinSBTStride.
func SBTStride(props driver.RayProps) int {
	stride := props.HandleAlignment
	if props.BaseAlignment > stride {
		stride = props.BaseAlignment
	}
	if stride < MinSBTStride {
		stride = MinSBTStride
	}
	return stride
}

// RayPipeline owns the ray-tracing pipeline, its descriptor-set layout,
// and the shader-binding table.
type RayPipeline struct {

	// descriptor-set layout: {acceleration structure, storage image, uniform}
	Layout driver.DescriptorLayout `desc:"descriptor-set layout: {acceleration structure, storage image, uniform}"`

	// the ray-tracing pipeline
	Pipeline driver.Pipeline `desc:"the ray-tracing pipeline"`

	// the shader-binding table
	SBT SBT `desc:"the shader-binding table"`
}

// NewRayPipeline builds the pipeline from the three validated SPIR-V
// binaries: three stages, three groups (general, general, triangle-hit),
// recursion depth 1 -- no reflection or refraction bounces, a deliberate
// simplicity bound.  Shader modules are destroyed once the pipeline holds
// them.  Any failure is fatal at startup.
func NewRayPipeline(drv driver.Driver, code *ShaderCode) (*RayPipeline, error) {
	for _, c := range [][]byte{code.RayGen, code.Miss, code.ClosestHit} {
		if err := ValidateShaderCode(c); err != nil {
			return nil, err
		}
	}

	layout, err := drv.CreateDescriptorLayout([]driver.DescriptorBinding{
		{Binding: 0, Kind: driver.DescAccel, Count: 1, Stages: driver.RayGenShader},
		{Binding: 1, Kind: driver.DescStorageImage, Count: 1, Stages: driver.RayGenShader},
		{Binding: 2, Kind: driver.DescUniform, Count: 1, Stages: driver.RayGenShader},
	})
	if err != nil {
		return nil, err
	}

	var mods [NShaderGroups]driver.ShaderModule
	destroyMods := func() {
		for _, md := range mods {
			if md != nil {
				md.Destroy()
			}
		}
	}
	for i, c := range [][]byte{code.RayGen, code.Miss, code.ClosestHit} {
		mods[i], err = drv.CreateShaderModule(c)
		if err != nil {
			destroyMods()
			layout.Destroy()
			return nil, err
		}
	}

	pl, err := drv.CreateRayPipeline(driver.RayPipelineDesc{
		Stages: []driver.ShaderStage{
			{Kind: driver.RayGenShader, Module: mods[0]},
			{Kind: driver.MissShader, Module: mods[1]},
			{Kind: driver.ClosestHitShader, Module: mods[2]},
		},
		Groups: []driver.ShaderGroup{
			{Kind: driver.GroupGeneral, General: 0, ClosestHit: driver.ShaderUnused},
			{Kind: driver.GroupGeneral, General: 1, ClosestHit: driver.ShaderUnused},
			{Kind: driver.GroupTriangles, General: driver.ShaderUnused, ClosestHit: 2},
		},
		Layout:       layout,
		MaxRecursion: 1,
	})
	destroyMods()
	if err != nil {
		layout.Destroy()
		return nil, err
	}

	rp := &RayPipeline{Layout: layout, Pipeline: pl}
	if err = rp.makeSBT(drv); err != nil {
		rp.Destroy()
		return nil, err
	}
	return rp, nil
}

// makeSBT queries the group handles and packs them at the padded stride.
func (rp *RayPipeline) makeSBT(drv driver.Driver) error {
	props, err := drv.RayProps()
	if err != nil {
		return err
	}
	handles, err := drv.GroupHandles(rp.Pipeline, NShaderGroups)
	if err != nil {
		return err
	}
	if len(handles) != NShaderGroups*props.HandleSize {
		return fmt.Errorf("vtrace: group handle query returned %d bytes, want %d", len(handles), NShaderGroups*props.HandleSize)
	}

	stride := SBTStride(props)
	buff, err := drv.CreateBuffer(NShaderGroups*stride, driver.BuffSBT|driver.BuffDeviceAddress,
		driver.MemHostVisible|driver.MemHostCoherent)
	if err != nil {
		return err
	}
	mp, err := buff.Map()
	if err != nil {
		buff.Destroy()
		return err
	}
	for g := 0; g < NShaderGroups; g++ {
		copy(mp[g*stride:], handles[g*props.HandleSize:(g+1)*props.HandleSize])
	}
	rp.SBT = SBT{Buff: buff, Stride: stride, HandleSize: props.HandleSize}
	return nil
}

func (rp *RayPipeline) Destroy() {
	rp.SBT.Destroy()
	if rp.Pipeline != nil {
		rp.Pipeline.Destroy()
		rp.Pipeline = nil
	}
	if rp.Layout != nil {
		rp.Layout.Destroy()
		rp.Layout = nil
	}
}
