// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vtrace

import (
	"encoding/binary"
	"fmt"
	"math"

	"goki.dev/vtrace/v2/driver"
)

// BuildStates is the acceleration-structure builder state machine.
type BuildStates int32

const (
	// Unbuilt: nothing built yet.
	Unbuilt BuildStates = iota

	// BlasBuilt: the bottom-level structure is built and fence-complete.
	BlasBuilt

	// TlasBuilt: the top-level structure is built and fence-complete.
	TlasBuilt

	// Ready: descriptor sets are bound; tracing may begin.
	Ready

	BuildStatesN
)

//go:generate stringer -type=BuildStates

// AccelStruct is one built acceleration structure and its backing buffer.
// Instances are only ever returned from completed, fence-waited builds, so
// holding one implies the GPU-side build is done.
type AccelStruct struct {

	// bottom or top level
	Kind driver.AccelKind `desc:"bottom or top level"`

	// the structure handle
	Accel driver.Accel `desc:"the structure handle"`

	// backing buffer, owned by this structure
	Buff driver.Buffer `desc:"backing buffer, owned by this structure"`
}

func (as *AccelStruct) Destroy() {
	if as.Accel != nil {
		as.Accel.Destroy()
		as.Accel = nil
	}
	if as.Buff != nil {
		as.Buff.Destroy()
		as.Buff = nil
	}
}

// InstanceSize is the byte size of one packed top-level instance record.
const InstanceSize = 64

// instance flag: disable triangle facing cull
const instanceCullDisable = 0x1

// EncodeInstance packs one top-level instance record referencing blasAddr:
// a 3x4 row-major identity transform, custom index 0, mask 0xff,
// shader-binding-table offset 0, facing cull disabled.  The layout is the
// device's wire format, fixed at 64 bytes.
func EncodeInstance(blasAddr uint64) []byte {
	ins := make([]byte, InstanceSize)
	// rows of the identity transform: [1 0 0 0] [0 1 0 0] [0 0 1 0]
	one := math.Float32bits(1)
	binary.LittleEndian.PutUint32(ins[0:], one)
	binary.LittleEndian.PutUint32(ins[20:], one)
	binary.LittleEndian.PutUint32(ins[40:], one)
	// custom index 0 in low 24 bits, mask 0xff in high 8
	binary.LittleEndian.PutUint32(ins[48:], 0xff<<24)
	// sbt offset 0 in low 24 bits, flags in high 8
	binary.LittleEndian.PutUint32(ins[52:], instanceCullDisable<<24)
	binary.LittleEndian.PutUint64(ins[56:], blasAddr)
	return ins
}

// Builder builds the bottom-level structure from static geometry and the
// top-level structure referencing it, and owns the descriptor sets binding
// {TLAS, output image, uniform buffer} for each frame slot.
//
// Builds are synchronous from the caller's perspective even though they
// execute on the GPU: each one records a one-time command buffer, submits
// it on the transfer queue and waits on a fence before returning, because
// the top-level build reads the bottom-level structure's device address
// and must not start until that build has completed.
type Builder struct {

	// build progression: Unbuilt -> BlasBuilt -> TlasBuilt -> Ready
	State BuildStates `desc:"build progression: Unbuilt -> BlasBuilt -> TlasBuilt -> Ready"`

	// the bottom-level structure, nil until built
	BLAS *AccelStruct `desc:"the bottom-level structure, nil until built"`

	// the top-level structure, nil until built
	TLAS *AccelStruct `desc:"the top-level structure, nil until built"`

	// per-frame-slot descriptor sets
	Sets []driver.DescriptorSet `desc:"per-frame-slot descriptor sets"`

	drv    driver.Driver
	layout driver.DescriptorLayout
	pool   driver.DescriptorPool
}

// NewBuilder allocates the descriptor pool and one set per frame slot
// against the pipeline's layout.  Pool exhaustion or allocation failure
// aborts construction: it indicates an unsupported device.
func NewBuilder(drv driver.Driver, layout driver.DescriptorLayout, nFrames int) (*Builder, error) {
	pool, err := drv.CreateDescriptorPool(nFrames, []driver.DescriptorPoolSize{
		{Kind: driver.DescAccel, Count: nFrames},
		{Kind: driver.DescStorageImage, Count: nFrames},
		{Kind: driver.DescUniform, Count: nFrames},
	})
	if err != nil {
		return nil, err
	}
	sets, err := drv.AllocDescriptorSets(pool, layout, nFrames)
	if err != nil {
		pool.Destroy()
		return nil, err
	}
	return &Builder{drv: drv, layout: layout, pool: pool, Sets: sets}, nil
}

// BuildBLAS builds the bottom-level structure over geom's triangles and
// waits for completion.  Must be the first build.
func (bd *Builder) BuildBLAS(geom *GeometryBuffer) error {
	if bd.State != Unbuilt {
		return fmt.Errorf("vtrace: BuildBLAS: state is %s, not %s", bd.State, Unbuilt)
	}
	as, err := bd.buildAccel(driver.AccelDesc{
		Kind:           driver.BottomLevel,
		VertexAddr:     geom.Vtx.DeviceAddress(),
		VertexStride:   VertexSize,
		VertexCount:    geom.NVtx,
		IndexAddr:      geom.Idx.DeviceAddress(),
		PrimitiveCount: geom.NIdx / 3,
	})
	if err != nil {
		return err
	}
	bd.BLAS = as
	bd.State = BlasBuilt
	return nil
}

// BuildTLAS builds the top-level structure: a single instance referencing
// the bottom-level structure's device address, uploaded via staging, then
// built and waited on like the bottom level.  Returns ErrNotBuilt if
// BuildBLAS has not completed: an unbuilt bottom-level handle is never
// reachable from here.
func (bd *Builder) BuildTLAS() error {
	if bd.State != BlasBuilt {
		if bd.BLAS == nil {
			return ErrNotBuilt
		}
		return fmt.Errorf("vtrace: BuildTLAS: state is %s, not %s", bd.State, BlasBuilt)
	}
	ins, err := UploadStaged(bd.drv, EncodeInstance(bd.BLAS.Accel.DeviceAddress()),
		driver.BuffDeviceAddress|driver.BuffAccelInput)
	if err != nil {
		return err
	}
	as, err := bd.buildAccel(driver.AccelDesc{
		Kind:           driver.TopLevel,
		InstanceAddr:   ins.DeviceAddress(),
		PrimitiveCount: 1,
	})
	ins.Destroy() // build is fence-complete; instance data no longer read
	if err != nil {
		return err
	}
	bd.TLAS = as
	bd.State = TlasBuilt
	return nil
}

// buildAccel runs one size query + build + fence wait, freeing the
// scratch buffer after the wait.
func (bd *Builder) buildAccel(desc driver.AccelDesc) (*AccelStruct, error) {
	sizes, err := bd.drv.AccelSizes(desc)
	if err != nil {
		return nil, err
	}
	if sizes.Accel <= 0 || sizes.Scratch <= 0 {
		return nil, fmt.Errorf("%w: %s accel=%d scratch=%d", ErrZeroBuildSize, desc.Kind, sizes.Accel, sizes.Scratch)
	}

	buff, err := bd.drv.CreateBuffer(sizes.Accel,
		driver.BuffAccelStore|driver.BuffDeviceAddress, driver.MemDeviceLocal)
	if err != nil {
		return nil, err
	}
	accel, err := bd.drv.CreateAccel(desc.Kind, buff, sizes.Accel)
	if err != nil {
		buff.Destroy()
		return nil, err
	}
	as := &AccelStruct{Kind: desc.Kind, Accel: accel, Buff: buff}

	scratch, err := bd.drv.CreateBuffer(sizes.Scratch,
		driver.BuffStorage|driver.BuffDeviceAddress, driver.MemDeviceLocal)
	if err != nil {
		as.Destroy()
		return nil, err
	}

	cmd, err := bd.drv.NewCmd(driver.TransferQueue)
	if err == nil {
		if err = cmd.Begin(); err == nil {
			cmd.BuildAccel(desc, accel, scratch)
			err = cmd.End()
		}
		if err != nil {
			cmd.Free()
		} else {
			err = bd.drv.SubmitWait(cmd, driver.TransferQueue)
		}
	}
	scratch.Destroy()
	if err != nil {
		as.Destroy()
		return nil, err
	}
	return as, nil
}

// BindDescriptorSets (re)points every frame slot's descriptor set at
// {TLAS, that slot's output image view, that slot's uniform buffer}.
// Callable any number of times: swapchain recreation replaces the output
// images and must rebind without reallocating the sets.
func (bd *Builder) BindDescriptorSets(uniforms []*UniformSlot, outputs []driver.Image) error {
	if bd.State < TlasBuilt {
		return fmt.Errorf("vtrace: BindDescriptorSets: state is %s, top level not built", bd.State)
	}
	n := len(bd.Sets)
	if len(uniforms) != n || len(outputs) != n {
		return fmt.Errorf("vtrace: BindDescriptorSets: %d sets, %d uniforms, %d outputs", n, len(uniforms), len(outputs))
	}
	writes := make([]driver.DescriptorWrite, 0, 3*n)
	for i, set := range bd.Sets {
		writes = append(writes,
			driver.DescriptorWrite{Set: set, Binding: 0, Kind: driver.DescAccel, Accel: bd.TLAS.Accel},
			driver.DescriptorWrite{Set: set, Binding: 1, Kind: driver.DescStorageImage, Image: outputs[i]},
			driver.DescriptorWrite{Set: set, Binding: 2, Kind: driver.DescUniform, Buffer: uniforms[i].Buff},
		)
	}
	if err := bd.drv.UpdateDescriptorSets(writes); err != nil {
		return err
	}
	bd.State = Ready
	return nil
}

func (bd *Builder) Destroy() {
	if bd.pool != nil {
		bd.pool.Destroy() // frees the sets with it
		bd.pool = nil
		bd.Sets = nil
	}
	if bd.TLAS != nil {
		bd.TLAS.Destroy()
		bd.TLAS = nil
	}
	if bd.BLAS != nil {
		bd.BLAS.Destroy()
		bd.BLAS = nil
	}
	bd.State = Unbuilt
}
