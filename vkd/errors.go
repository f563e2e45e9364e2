// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This is initially adapted from https://github.com/vulkan-go/asche
// Copyright © 2017 Maxim Kupriianov <max@kc.vc>, under the MIT License

package vkd

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"goki.dev/vtrace/v2/driver"
)

// NewError returns an error for a non-success vulkan result, else nil.
func NewError(ret vk.Result) error {
	if ret != vk.Success {
		return fmt.Errorf("vkd: vulkan error: %d", ret)
	}
	return nil
}

// IsError returns true if the vulkan result is not success.
func IsError(ret vk.Result) bool {
	return ret != vk.Success
}

// IfPanic panics on a non-nil error, running any finalizers first.
// Only for conditions that indicate a programming error, not a
// device condition.
func IfPanic(err error, finalizers ...func()) {
	if err == nil {
		return
	}
	for _, fn := range finalizers {
		fn()
	}
	panic(err)
}

// ToResult maps a vulkan result onto the driver result codes the frame
// protocol distinguishes.
func ToResult(ret vk.Result) driver.Result {
	switch ret {
	case vk.Success:
		return driver.Success
	case vk.Suboptimal:
		return driver.Suboptimal
	case vk.ErrorOutOfDate:
		return driver.ErrOutOfDate
	case vk.ErrorSurfaceLost:
		return driver.ErrSurfaceLost
	case vk.ErrorDeviceLost:
		return driver.ErrDeviceLost
	}
	return driver.ErrFailed
}
