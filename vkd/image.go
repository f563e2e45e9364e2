// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This is initially adapted from https://github.com/vulkan-go/asche
// Copyright © 2017 Maxim Kupriianov <max@kc.vc>, under the MIT License

package vkd

import (
	"errors"

	vk "github.com/goki/vulkan"

	"goki.dev/vtrace/v2/driver"
)

// Image is a 2D image with a full-range color view.  owned reports
// whether the image and memory belong to us: swapchain images carry
// only the view.
type Image struct {
	d     *Driver
	Img   vk.Image
	Mem   vk.DeviceMemory
	View  vk.ImageView
	owned bool

	extent driver.Extent
	format driver.Format
}

// CreateImage makes a 2D image per desc with memory bound and a
// full-range view.
func (d *Driver) CreateImage(desc driver.ImageDesc) (driver.Image, error) {
	var img vk.Image
	ret := vk.CreateImage(d.Dev, &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    ToFormat(desc.Format),
		Extent: vk.Extent3D{
			Width:  uint32(desc.Extent.Width),
			Height: uint32(desc.Extent.Height),
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         ToImageUsage(desc.Usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &img)
	if IsError(ret) {
		return nil, NewError(ret)
	}

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.Dev, img, &memReqs)
	memReqs.Deref()
	memType, ok := FindRequiredMemoryType(d.MemProps, vk.MemoryPropertyFlagBits(memReqs.MemoryTypeBits), ToMemProps(desc.Props))
	if !ok {
		vk.DestroyImage(d.Dev, img, nil)
		return nil, errors.New("vkd: no memory type satisfies image requirements")
	}
	var mem vk.DeviceMemory
	ret = vk.AllocateMemory(d.Dev, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &mem)
	if IsError(ret) {
		vk.DestroyImage(d.Dev, img, nil)
		return nil, NewError(ret)
	}
	vk.BindImageMemory(d.Dev, img, mem, 0)

	im := &Image{d: d, Img: img, Mem: mem, owned: true, extent: desc.Extent, format: desc.Format}
	if err := im.initView(); err != nil {
		im.Destroy()
		return nil, err
	}
	return im, nil
}

// initView makes the full-range color view over Img.
func (im *Image) initView() error {
	var view vk.ImageView
	ret := vk.CreateImageView(im.d.Dev, &vk.ImageViewCreateInfo{
		SType:  vk.StructureTypeImageViewCreateInfo,
		Format: ToFormat(im.format),
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
		ViewType: vk.ImageViewType2d,
		Image:    im.Img,
	}, nil, &view)
	if IsError(ret) {
		return NewError(ret)
	}
	im.View = view
	return nil
}

func (im *Image) Extent() driver.Extent {
	return im.extent
}

func (im *Image) Format() driver.Format {
	return im.format
}

// Destroy releases the view, and the image and memory if owned.
// Swapchain image handles belong to the swapchain.
func (im *Image) Destroy() {
	if im.View != vk.NullImageView {
		vk.DestroyImageView(im.d.Dev, im.View, nil)
		im.View = vk.NullImageView
	}
	if !im.owned {
		return
	}
	if im.Mem != vk.NullDeviceMemory {
		vk.FreeMemory(im.d.Dev, im.Mem, nil)
		im.Mem = vk.NullDeviceMemory
	}
	if im.Img != vk.NullImage {
		vk.DestroyImage(im.d.Dev, im.Img, nil)
		im.Img = vk.NullImage
	}
}

// Swapchain wraps a vulkan swapchain and its images.
type Swapchain struct {
	d   *Driver
	SC  vk.Swapchain
	Imi []driver.Image

	format driver.Format
	extent driver.Extent
	mode   driver.PresentMode
}

// CreateSwapchain makes a swapchain per desc, destroying desc.Old after
// handing it to the device for reuse.  Transform and composite alpha are
// chosen from what the surface supports, preferring identity and opaque.
func (d *Driver) CreateSwapchain(desc driver.SwapchainDesc) (driver.Swapchain, error) {
	var sc vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(d.PhysDev, d.Surface, &sc)
	if IsError(ret) {
		return nil, NewError(ret)
	}
	sc.Deref()

	preTransform := sc.CurrentTransform
	if vk.SurfaceTransformFlagBits(sc.SupportedTransforms)&vk.SurfaceTransformIdentityBit != 0 {
		preTransform = vk.SurfaceTransformIdentityBit
	}

	compositeAlpha := vk.CompositeAlphaOpaqueBit
	compositeAlphaFlags := []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	}
	for _, af := range compositeAlphaFlags {
		if sc.SupportedCompositeAlpha&vk.CompositeAlphaFlags(af) != 0 {
			compositeAlpha = af
			break
		}
	}

	oldSwapchain := vk.NullSwapchain
	if desc.Old != nil {
		oldSwapchain = desc.Old.(*Swapchain).SC
	}
	var swapchain vk.Swapchain
	ret = vk.CreateSwapchain(d.Dev, &vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         d.Surface,
		MinImageCount:   uint32(desc.ImageCount),
		ImageFormat:     ToFormat(desc.Format),
		ImageColorSpace: vk.ColorSpaceSrgbNonlinear,
		ImageExtent: vk.Extent2D{
			Width:  uint32(desc.Extent.Width),
			Height: uint32(desc.Extent.Height),
		},
		ImageUsage:       ToImageUsage(desc.Usage),
		PreTransform:     preTransform,
		CompositeAlpha:   compositeAlpha,
		ImageArrayLayers: 1,
		ImageSharingMode: vk.SharingModeExclusive,
		PresentMode:      ToPresentMode(desc.PresentMode),
		OldSwapchain:     oldSwapchain,
		Clipped:          vk.True,
	}, nil, &swapchain)
	if oldSwapchain != vk.NullSwapchain {
		vk.DestroySwapchain(d.Dev, oldSwapchain, nil)
	}
	if IsError(ret) {
		return nil, NewError(ret)
	}

	sw := &Swapchain{d: d, SC: swapchain, format: desc.Format, extent: desc.Extent, mode: desc.PresentMode}

	var imageCount uint32
	ret = vk.GetSwapchainImages(d.Dev, swapchain, &imageCount, nil)
	if IsError(ret) {
		sw.Destroy()
		return nil, NewError(ret)
	}
	scImages := make([]vk.Image, imageCount)
	ret = vk.GetSwapchainImages(d.Dev, swapchain, &imageCount, scImages)
	if IsError(ret) {
		sw.Destroy()
		return nil, NewError(ret)
	}
	for _, img := range scImages {
		im := &Image{d: d, Img: img, extent: desc.Extent, format: desc.Format}
		if err := im.initView(); err != nil {
			sw.Destroy()
			return nil, err
		}
		sw.Imi = append(sw.Imi, im)
	}
	return sw, nil
}

func (sw *Swapchain) Images() []driver.Image {
	return sw.Imi
}

func (sw *Swapchain) Format() driver.Format {
	return sw.format
}

func (sw *Swapchain) Extent() driver.Extent {
	return sw.extent
}

func (sw *Swapchain) PresentMode() driver.PresentMode {
	return sw.mode
}

// Acquire gets the next presentable image index, signaling wait when the
// image is actually available.
func (sw *Swapchain) Acquire(wait driver.Semaphore) (int, driver.Result) {
	var idx uint32
	sem := vk.NullSemaphore
	if wait != nil {
		sem = wait.(*Semaphore).Sem
	}
	ret := vk.AcquireNextImage(sw.d.Dev, sw.SC, vk.MaxUint64, sem, vk.NullFence, &idx)
	return int(idx), ToResult(ret)
}

// Destroy releases the swapchain handle.  The image views are destroyed
// by their holder before this.
func (sw *Swapchain) Destroy() {
	if sw.SC != vk.NullSwapchain {
		vk.DestroySwapchain(sw.d.Dev, sw.SC, nil)
		sw.SC = vk.NullSwapchain
	}
	sw.Imi = nil
}
