// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vtrace

import (
	"fmt"

	"goki.dev/vtrace/v2/driver"
)

// GeometryBuffer owns the device-local vertex and index buffers for one
// static mesh, populated once via a staging upload and immutable after.
// Both carry device-address and build-input usage so the acceleration
// structure builder can reference them directly.
type GeometryBuffer struct {

	// device-local vertex buffer
	Vtx driver.Buffer `desc:"device-local vertex buffer"`

	// device-local index buffer
	Idx driver.Buffer `desc:"device-local index buffer"`

	// number of vertices
	NVtx int `desc:"number of vertices"`

	// number of indices
	NIdx int `desc:"number of indices"`
}

// NewGeometryBuffer uploads ms into new device-local buffers.  Device-local
// memory is not host writable on discrete GPUs, so each buffer goes through
// a short-lived host-visible staging buffer: write, copy on the transfer
// queue, fence wait, destroy staging.  Any failure is fatal to renderer
// construction and returned as-is.
func NewGeometryBuffer(drv driver.Driver, ms *Mesh) (*GeometryBuffer, error) {
	if len(ms.Vtx) == 0 || len(ms.Idx) == 0 {
		return nil, fmt.Errorf("vtrace: NewGeometryBuffer: empty mesh")
	}
	gb := &GeometryBuffer{NVtx: len(ms.Vtx), NIdx: len(ms.Idx)}
	accelUse := driver.BuffDeviceAddress | driver.BuffAccelInput
	var err error
	gb.Vtx, err = UploadStaged(drv, ms.VtxBytes(), driver.BuffVertex|accelUse)
	if err != nil {
		return nil, err
	}
	gb.Idx, err = UploadStaged(drv, ms.IdxBytes(), driver.BuffIndex|accelUse)
	if err != nil {
		gb.Vtx.Destroy()
		return nil, err
	}
	return gb, nil
}

func (gb *GeometryBuffer) Destroy() {
	if gb.Vtx != nil {
		gb.Vtx.Destroy()
		gb.Vtx = nil
	}
	if gb.Idx != nil {
		gb.Idx.Destroy()
		gb.Idx = nil
	}
}

// UploadStaged creates a device-local buffer with the given usage (plus
// transfer-dst) holding data, uploaded through a staging buffer that is
// destroyed before returning.  The copy runs on the transfer queue and is
// fence-waited, so the returned buffer is ready for immediate use.
func UploadStaged(drv driver.Driver, data []byte, usage driver.BuffUsage) (driver.Buffer, error) {
	stg, err := drv.CreateBuffer(len(data), driver.BuffTransferSrc, driver.MemHostVisible|driver.MemHostCoherent)
	if err != nil {
		return nil, err
	}
	defer stg.Destroy()
	mp, err := stg.Map()
	if err != nil {
		return nil, err
	}
	copy(mp, data)

	dst, err := drv.CreateBuffer(len(data), usage|driver.BuffTransferDst, driver.MemDeviceLocal)
	if err != nil {
		return nil, err
	}
	cmd, err := drv.NewCmd(driver.TransferQueue)
	if err != nil {
		dst.Destroy()
		return nil, err
	}
	if err = cmd.Begin(); err == nil {
		cmd.CopyBuffer(stg, dst, len(data))
		err = cmd.End()
	}
	if err != nil {
		cmd.Free()
		dst.Destroy()
		return nil, err
	}
	if err = drv.SubmitWait(cmd, driver.TransferQueue); err != nil {
		dst.Destroy()
		return nil, err
	}
	return dst, nil
}

// UniformSlot is one frame slot's camera uniform buffer: host coherent and
// persistently mapped for its whole lifetime, so the per-frame write is a
// plain copy with no map/unmap overhead.  The mapped region is private:
// WriteBlock is the only write path, and the frame orchestrator only calls
// it after the slot's in-flight fence has signaled, which guarantees the
// GPU is done reading the previous contents.
type UniformSlot struct {

	// uniform buffer, bound by the frame slot's descriptor set
	Buff driver.Buffer `desc:"uniform buffer, bound by the frame slot's descriptor set"`

	mapped []byte
}

// NewUniformSlots allocates n persistently-mapped uniform buffers of
// blockSize bytes, one per in-flight frame slot.
func NewUniformSlots(drv driver.Driver, n, blockSize int) ([]*UniformSlot, error) {
	slots := make([]*UniformSlot, n)
	for i := range slots {
		buff, err := drv.CreateBuffer(blockSize, driver.BuffUniform, driver.MemHostVisible|driver.MemHostCoherent)
		if err == nil {
			var mp []byte
			mp, err = buff.Map()
			if err == nil {
				slots[i] = &UniformSlot{Buff: buff, mapped: mp}
				continue
			}
			buff.Destroy()
		}
		for j := 0; j < i; j++ {
			slots[j].Destroy()
		}
		return nil, err
	}
	return slots, nil
}

// WriteBlock copies block into the mapped region.  block must be exactly
// the slot's allocated size.
func (us *UniformSlot) WriteBlock(block []byte) error {
	if len(block) != len(us.mapped) {
		return fmt.Errorf("vtrace: UniformSlot.WriteBlock: block size %d != slot size %d", len(block), len(us.mapped))
	}
	copy(us.mapped, block)
	return nil
}

func (us *UniformSlot) Destroy() {
	if us.Buff != nil {
		us.Buff.Destroy()
		us.Buff = nil
	}
	us.mapped = nil
}
