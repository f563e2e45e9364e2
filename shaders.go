// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vtrace

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// ShaderMagic is the SPIR-V magic number, first word of any valid binary.
const ShaderMagic = 0x07230203

// standard relative paths of the three precompiled shader binaries
const (
	RayGenShaderFile     = "raytrace.rgen.spv"
	MissShaderFile       = "raytrace.rmiss.spv"
	ClosestHitShaderFile = "raytrace.rchit.spv"
)

// ShaderCode holds the three validated SPIR-V binaries the pipeline needs.
type ShaderCode struct {
	RayGen     []byte
	Miss       []byte
	ClosestHit []byte
}

// ValidateShaderCode checks that code is plausibly SPIR-V: non-empty,
// length a multiple of the 4-byte word size, and the magic number first.
func ValidateShaderCode(code []byte) error {
	if len(code) == 0 || len(code)%4 != 0 {
		return fmt.Errorf("%w: length %d is not a positive multiple of 4", ErrShaderFormat, len(code))
	}
	if magic := binary.LittleEndian.Uint32(code); magic != ShaderMagic {
		return fmt.Errorf("%w: magic 0x%08x != 0x%08x", ErrShaderFormat, magic, uint32(ShaderMagic))
	}
	return nil
}

// ReadShaderFile reads and validates one SPIR-V binary.  A missing or
// corrupt file is fatal at startup: there is no degraded mode.
func ReadShaderFile(fname string) ([]byte, error) {
	code, err := os.ReadFile(fname)
	if err != nil {
		return nil, fmt.Errorf("vtrace: shader %s: %w", fname, err)
	}
	if err := ValidateShaderCode(code); err != nil {
		return nil, fmt.Errorf("vtrace: shader %s: %w", fname, err)
	}
	return code, nil
}

// ReadShaderDir reads the three shader binaries from their standard
// file names under dir.
func ReadShaderDir(dir string) (*ShaderCode, error) {
	sc := &ShaderCode{}
	var err error
	if sc.RayGen, err = ReadShaderFile(filepath.Join(dir, RayGenShaderFile)); err != nil {
		return nil, err
	}
	if sc.Miss, err = ReadShaderFile(filepath.Join(dir, MissShaderFile)); err != nil {
		return nil, err
	}
	if sc.ClosestHit, err = ReadShaderFile(filepath.Join(dir, ClosestHitShaderFile)); err != nil {
		return nil, err
	}
	return sc, nil
}
