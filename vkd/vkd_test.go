// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkd

import (
	"testing"

	vk "github.com/goki/vulkan"

	"goki.dev/vtrace/v2/driver"
)

func TestToShaderStage(t *testing.T) {
	tests := []struct {
		kind driver.ShaderKind
		want vk.ShaderStageFlagBits
	}{
		{driver.RayGenShader, shaderStageRayGenBit},
		{driver.MissShader, shaderStageMissBit},
		{driver.ClosestHitShader, shaderStageClosestHit},
	}
	for _, tt := range tests {
		if got := ToShaderStage(tt.kind); got != tt.want {
			t.Errorf("ToShaderStage(%d) = %#x, want %#x", tt.kind, got, tt.want)
		}
	}
}
