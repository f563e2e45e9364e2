// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vtrace

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// testShader returns a minimal valid SPIR-V binary: magic plus nwords-1
// arbitrary words.
func testShader(nwords int) []byte {
	code := make([]byte, 4*nwords)
	binary.LittleEndian.PutUint32(code, ShaderMagic)
	for i := 1; i < nwords; i++ {
		binary.LittleEndian.PutUint32(code[4*i:], uint32(i))
	}
	return code
}

// testShaderCode returns a full valid shader set for pipeline tests.
func testShaderCode() *ShaderCode {
	return &ShaderCode{
		RayGen:     testShader(4),
		Miss:       testShader(5),
		ClosestHit: testShader(6),
	}
}

func TestValidateShaderCode(t *testing.T) {
	if err := ValidateShaderCode(testShader(2)); err != nil {
		t.Errorf("valid shader rejected: %v", err)
	}
	if err := ValidateShaderCode(nil); !errors.Is(err, ErrShaderFormat) {
		t.Errorf("empty shader: got %v, want ErrShaderFormat", err)
	}
	if err := ValidateShaderCode([]byte{1, 2, 3}); !errors.Is(err, ErrShaderFormat) {
		t.Errorf("odd length shader: got %v, want ErrShaderFormat", err)
	}
	bad := testShader(2)
	bad[3] = 0x42
	if err := ValidateShaderCode(bad); !errors.Is(err, ErrShaderFormat) {
		t.Errorf("bad magic: got %v, want ErrShaderFormat", err)
	}
}

func TestReadShaderDir(t *testing.T) {
	dir := t.TempDir()
	for i, fn := range []string{RayGenShaderFile, MissShaderFile, ClosestHitShaderFile} {
		if err := os.WriteFile(filepath.Join(dir, fn), testShader(4+i), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	sc, err := ReadShaderDir(dir)
	if err != nil {
		t.Fatalf("ReadShaderDir: %v", err)
	}
	if len(sc.RayGen) != 16 || len(sc.Miss) != 20 || len(sc.ClosestHit) != 24 {
		t.Errorf("shader sizes: %d %d %d", len(sc.RayGen), len(sc.Miss), len(sc.ClosestHit))
	}

	// corrupt one file: whole read fails
	if err := os.WriteFile(filepath.Join(dir, MissShaderFile), []byte{1, 2, 3, 4}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadShaderDir(dir); !errors.Is(err, ErrShaderFormat) {
		t.Errorf("corrupt shader: got %v, want ErrShaderFormat", err)
	}

	if _, err := ReadShaderFile(filepath.Join(dir, "nosuch.spv")); err == nil {
		t.Errorf("missing file: expected error")
	}
}
