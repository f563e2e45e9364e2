// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vtrace

import (
	"errors"
	"fmt"

	"goki.dev/vtrace/v2/driver"
)

var (
	// ErrShaderFormat is returned for a shader binary that is not valid
	// SPIR-V (wrong magic number or length not a multiple of 4).
	ErrShaderFormat = errors.New("shader binary is not valid SPIR-V")

	// ErrZeroBuildSize is returned when the device reports zero required
	// sizes for a non-empty acceleration-structure build.  This indicates
	// an unsupported device, not a recoverable condition.
	ErrZeroBuildSize = errors.New("acceleration structure build size query returned zero")

	// ErrNotBuilt is returned when a top-level build is requested before
	// the bottom-level structure exists.
	ErrNotBuilt = errors.New("bottom level acceleration structure not built")
)

// ResultError wraps a fatal driver result code with the operation that
// produced it.  The recoverable swapchain codes (Suboptimal, ErrOutOfDate)
// are never wrapped: the frame protocol handles them before this point.
type ResultError struct {
	Op  string
	Res driver.Result
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("vtrace: %s failed: %s", e.Op, e.Res)
}

// NewResultError returns a ResultError for op and res, or nil if res is
// not an error.
func NewResultError(op string, res driver.Result) error {
	if !res.IsError() {
		return nil
	}
	return &ResultError{Op: op, Res: res}
}
