// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This is initially adapted from https://github.com/vulkan-go/asche
// Copyright © 2017 Maxim Kupriianov <max@kc.vc>, under the MIT License

package vkd

import (
	vk "github.com/goki/vulkan"

	"goki.dev/vtrace/v2/driver"
)

// Cmd is a primary command buffer from one of the shell's pools.
type Cmd struct {
	d    *Driver
	CB   vk.CommandBuffer
	pool vk.CommandPool
}

// NewCmd allocates a primary command buffer from the given queue's pool.
// The pool must carry the reset-command-buffer flag: frame buffers are
// re-recorded individually every use.
func (d *Driver) NewCmd(queue driver.QueueKind) (driver.Cmd, error) {
	pool := d.Queues[queue].Pool
	cmdBuff := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(d.Dev, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, cmdBuff)
	if IsError(ret) {
		return nil, NewError(ret)
	}
	return &Cmd{d: d, CB: cmdBuff[0], pool: pool}, nil
}

func (cm *Cmd) Begin() error {
	ret := vk.BeginCommandBuffer(cm.CB, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	})
	return NewError(ret)
}

func (cm *Cmd) End() error {
	return NewError(vk.EndCommandBuffer(cm.CB))
}

func (cm *Cmd) Reset() error {
	return NewError(vk.ResetCommandBuffer(cm.CB, 0))
}

func (cm *Cmd) CopyBuffer(src, dst driver.Buffer, size int) {
	vk.CmdCopyBuffer(cm.CB, src.(*Buffer).Buff, dst.(*Buffer).Buff, 1, []vk.BufferCopy{{
		Size: vk.DeviceSize(size),
	}})
}

// colorRange is the full single-mip single-layer color subresource range
// every image in the frame core uses.
var colorRange = vk.ImageSubresourceRange{
	AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
	LevelCount: 1,
	LayerCount: 1,
}

func (cm *Cmd) Barrier(br driver.ImageBarrier) {
	vk.CmdPipelineBarrier(cm.CB,
		ToStages(br.SrcStage), ToStages(br.DstStage),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{{
			SType:               vk.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       ToAccess(br.SrcAccess),
			DstAccessMask:       ToAccess(br.DstAccess),
			OldLayout:           ToLayout(br.OldLayout),
			NewLayout:           ToLayout(br.NewLayout),
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               br.Image.(*Image).Img,
			SubresourceRange:    colorRange,
		}})
}

func (cm *Cmd) BuildAccel(desc driver.AccelDesc, dst driver.Accel, scratch driver.Buffer) {
	cm.d.Ray.CmdBuildAccel(cm.CB, desc, dst.(*Accel).Handle, scratch.DeviceAddress())
}

func (cm *Cmd) BindRayPipeline(pl driver.Pipeline, set driver.DescriptorSet) {
	vpl := pl.(*Pipeline)
	vk.CmdBindPipeline(cm.CB, vk.PipelineBindPoint(bindPointRayTracing), vpl.Pipeline)
	vk.CmdBindDescriptorSets(cm.CB, vk.PipelineBindPoint(bindPointRayTracing),
		vpl.Layout, 0, 1, []vk.DescriptorSet{set.(*Set).Set}, 0, nil)
}

// TraceRays dispatches against the three table regions: ray generation at
// the table start, miss and hit each one stride further in.
func (cm *Cmd) TraceRays(tbl driver.SBTable, width, height int) {
	base := tbl.Buffer.DeviceAddress()
	stride := uint64(tbl.Stride)
	region := func(i int) StridedRegion {
		return StridedRegion{Addr: base + uint64(i)*stride, Stride: stride, Size: stride}
	}
	cm.d.Ray.CmdTraceRays(cm.CB, region(0), region(1), region(2), width, height)
}

func (cm *Cmd) Blit(src, dst driver.Image, srcExt, dstExt driver.Extent) {
	layers := vk.ImageSubresourceLayers{
		AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
		LayerCount: 1,
	}
	vk.CmdBlitImage(cm.CB,
		src.(*Image).Img, vk.ImageLayoutTransferSrcOptimal,
		dst.(*Image).Img, vk.ImageLayoutTransferDstOptimal,
		1, []vk.ImageBlit{{
			SrcSubresource: layers,
			SrcOffsets: [2]vk.Offset3D{
				{},
				{X: int32(srcExt.Width), Y: int32(srcExt.Height), Z: 1},
			},
			DstSubresource: layers,
			DstOffsets: [2]vk.Offset3D{
				{},
				{X: int32(dstExt.Width), Y: int32(dstExt.Height), Z: 1},
			},
		}}, vk.FilterNearest)
}

func (cm *Cmd) Free() {
	if cm.CB == nil {
		return
	}
	vk.FreeCommandBuffers(cm.d.Dev, cm.pool, 1, []vk.CommandBuffer{cm.CB})
	cm.CB = nil
}
