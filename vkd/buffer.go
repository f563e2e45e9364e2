// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This is initially adapted from https://github.com/vulkan-go/asche
// Copyright © 2017 Maxim Kupriianov <max@kc.vc>, under the MIT License

package vkd

import (
	"errors"
	"unsafe"

	vk "github.com/goki/vulkan"

	"goki.dev/vtrace/v2/driver"
)

// Buffer is a device buffer with its bound memory.  Host-visible buffers
// are mapped once at creation and stay mapped until Destroy.
type Buffer struct {
	d    *Driver
	Buff vk.Buffer
	Mem  vk.DeviceMemory

	size    int
	hostPtr unsafe.Pointer
	addr    uint64
}

// CreateBuffer makes a buffer of given size and usage, finds a memory type
// satisfying props, allocates, binds, and for host-visible memory maps the
// whole range persistently.  Device-address usage threads the allocation
// flags extension struct through the memory allocation.
func (d *Driver) CreateBuffer(size int, usage driver.BuffUsage, props driver.MemProps) (driver.Buffer, error) {
	if size == 0 {
		return nil, errors.New("vkd: zero-size buffer")
	}
	var buff vk.Buffer
	ret := vk.CreateBuffer(d.Dev, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Usage:       ToBuffUsage(usage),
		Size:        vk.DeviceSize(size),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buff)
	if IsError(ret) {
		return nil, NewError(ret)
	}

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.Dev, buff, &memReqs)
	memReqs.Deref()
	memType, ok := FindRequiredMemoryType(d.MemProps, vk.MemoryPropertyFlagBits(memReqs.MemoryTypeBits), ToMemProps(props))
	if !ok {
		vk.DestroyBuffer(d.Dev, buff, nil)
		return nil, errors.New("vkd: no memory type satisfies buffer requirements")
	}

	mai := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}
	if usage&driver.BuffDeviceAddress != 0 && d.Ray.AllocFlagsInfo != nil {
		mai.PNext = d.Ray.AllocFlagsInfo()
	}
	var mem vk.DeviceMemory
	ret = vk.AllocateMemory(d.Dev, &mai, nil, &mem)
	if IsError(ret) {
		vk.DestroyBuffer(d.Dev, buff, nil)
		return nil, NewError(ret)
	}
	vk.BindBufferMemory(d.Dev, buff, mem, 0)

	bf := &Buffer{d: d, Buff: buff, Mem: mem, size: size}
	if props&driver.MemHostVisible != 0 {
		var ptr unsafe.Pointer
		ret = vk.MapMemory(d.Dev, mem, 0, vk.DeviceSize(size), 0, &ptr)
		if IsError(ret) {
			bf.Destroy()
			return nil, NewError(ret)
		}
		bf.hostPtr = ptr
	}
	if usage&driver.BuffDeviceAddress != 0 {
		bf.addr = d.Ray.BufferDeviceAddress(d.Dev, buff)
	}
	return bf, nil
}

func (bf *Buffer) Size() int {
	return bf.size
}

// Map returns the persistent host mapping.
func (bf *Buffer) Map() ([]byte, error) {
	if bf.hostPtr == nil {
		return nil, errors.New("vkd: buffer is not host visible")
	}
	return unsafe.Slice((*byte)(bf.hostPtr), bf.size), nil
}

func (bf *Buffer) DeviceAddress() uint64 {
	return bf.addr
}

func (bf *Buffer) Destroy() {
	if bf.hostPtr != nil {
		vk.UnmapMemory(bf.d.Dev, bf.Mem)
		bf.hostPtr = nil
	}
	if bf.Mem != vk.NullDeviceMemory {
		vk.FreeMemory(bf.d.Dev, bf.Mem, nil)
		bf.Mem = vk.NullDeviceMemory
	}
	if bf.Buff != vk.NullBuffer {
		vk.DestroyBuffer(bf.d.Dev, bf.Buff, nil)
		bf.Buff = vk.NullBuffer
	}
}

// FindRequiredMemoryType finds a memory type in props among the candidate
// bits in deviceRequirements that has all the hostRequirements flags.
func FindRequiredMemoryType(props vk.PhysicalDeviceMemoryProperties,
	deviceRequirements, hostRequirements vk.MemoryPropertyFlagBits) (uint32, bool) {

	for i := uint32(0); i < vk.MaxMemoryTypes; i++ {
		if deviceRequirements&(vk.MemoryPropertyFlagBits(1)<<i) != 0 {
			props.MemoryTypes[i].Deref()
			flags := props.MemoryTypes[i].PropertyFlags
			if flags&vk.MemoryPropertyFlags(hostRequirements) == vk.MemoryPropertyFlags(hostRequirements) {
				return i, true
			}
		}
	}
	return 0, false
}
