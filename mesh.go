// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vtrace

import (
	"unsafe"

	"goki.dev/mat32/v2"
)

// Vertex is the geometry vertex layout: position and color, matching the
// closest-hit shader's vertex fetch byte-for-byte.
type Vertex struct {
	Pos   mat32.Vec3
	Color mat32.Vec3
}

// VertexSize is the byte stride of one Vertex.
const VertexSize = int(unsafe.Sizeof(Vertex{}))

// Mesh is static triangle geometry: a vertex array and a uint16 index
// array, immutable once uploaded.
type Mesh struct {
	Vtx []Vertex
	Idx []uint16
}

// NTris returns the triangle count.
func (ms *Mesh) NTris() int {
	return len(ms.Idx) / 3
}

// VtxBytes returns the raw vertex bytes for upload.
func (ms *Mesh) VtxBytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&ms.Vtx[0])), len(ms.Vtx)*VertexSize)
}

// IdxBytes returns the raw index bytes for upload.
func (ms *Mesh) IdxBytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&ms.Idx[0])), len(ms.Idx)*2)
}

// CubeMesh returns the unit cube: 24 vertices (4 per face, so each face
// gets its own colors) and 36 indices.
func CubeMesh() *Mesh {
	return &Mesh{
		Vtx: []Vertex{
			// front
			{Pos: mat32.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, Color: mat32.Vec3{X: 1, Y: 0, Z: 0}},
			{Pos: mat32.Vec3{X: 0.5, Y: -0.5, Z: 0.5}, Color: mat32.Vec3{X: 0, Y: 1, Z: 0}},
			{Pos: mat32.Vec3{X: -0.5, Y: -0.5, Z: 0.5}, Color: mat32.Vec3{X: 0, Y: 0, Z: 1}},
			{Pos: mat32.Vec3{X: -0.5, Y: 0.5, Z: 0.5}, Color: mat32.Vec3{X: 1, Y: 0, Z: 1}},
			// back
			{Pos: mat32.Vec3{X: -0.5, Y: 0.5, Z: -0.5}, Color: mat32.Vec3{X: 1, Y: 0, Z: 0}},
			{Pos: mat32.Vec3{X: -0.5, Y: -0.5, Z: -0.5}, Color: mat32.Vec3{X: 0, Y: 1, Z: 0}},
			{Pos: mat32.Vec3{X: 0.5, Y: -0.5, Z: -0.5}, Color: mat32.Vec3{X: 0, Y: 0, Z: 1}},
			{Pos: mat32.Vec3{X: 0.5, Y: 0.5, Z: -0.5}, Color: mat32.Vec3{X: 1, Y: 0, Z: 1}},
			// bottom
			{Pos: mat32.Vec3{X: 0.5, Y: 0.5, Z: -0.5}, Color: mat32.Vec3{X: 1, Y: 0, Z: 0}},
			{Pos: mat32.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, Color: mat32.Vec3{X: 0, Y: 1, Z: 0}},
			{Pos: mat32.Vec3{X: -0.5, Y: 0.5, Z: 0.5}, Color: mat32.Vec3{X: 0, Y: 0, Z: 1}},
			{Pos: mat32.Vec3{X: -0.5, Y: 0.5, Z: -0.5}, Color: mat32.Vec3{X: 1, Y: 0, Z: 1}},
			// top
			{Pos: mat32.Vec3{X: 0.5, Y: -0.5, Z: 0.5}, Color: mat32.Vec3{X: 1, Y: 0, Z: 0}},
			{Pos: mat32.Vec3{X: 0.5, Y: -0.5, Z: -0.5}, Color: mat32.Vec3{X: 0, Y: 1, Z: 0}},
			{Pos: mat32.Vec3{X: -0.5, Y: -0.5, Z: -0.5}, Color: mat32.Vec3{X: 0, Y: 0, Z: 1}},
			{Pos: mat32.Vec3{X: -0.5, Y: -0.5, Z: 0.5}, Color: mat32.Vec3{X: 1, Y: 0, Z: 1}},
			// right
			{Pos: mat32.Vec3{X: 0.5, Y: 0.5, Z: -0.5}, Color: mat32.Vec3{X: 1, Y: 0, Z: 0}},
			{Pos: mat32.Vec3{X: 0.5, Y: -0.5, Z: -0.5}, Color: mat32.Vec3{X: 0, Y: 1, Z: 0}},
			{Pos: mat32.Vec3{X: 0.5, Y: -0.5, Z: 0.5}, Color: mat32.Vec3{X: 0, Y: 0, Z: 1}},
			{Pos: mat32.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, Color: mat32.Vec3{X: 1, Y: 0, Z: 1}},
			// left
			{Pos: mat32.Vec3{X: -0.5, Y: 0.5, Z: 0.5}, Color: mat32.Vec3{X: 1, Y: 0, Z: 0}},
			{Pos: mat32.Vec3{X: -0.5, Y: -0.5, Z: 0.5}, Color: mat32.Vec3{X: 0, Y: 1, Z: 0}},
			{Pos: mat32.Vec3{X: -0.5, Y: -0.5, Z: -0.5}, Color: mat32.Vec3{X: 0, Y: 0, Z: 1}},
			{Pos: mat32.Vec3{X: -0.5, Y: 0.5, Z: -0.5}, Color: mat32.Vec3{X: 1, Y: 0, Z: 1}},
		},
		Idx: []uint16{
			0, 1, 2, 0, 2, 3, // front
			4, 5, 6, 4, 6, 7, // back
			8, 9, 10, 8, 10, 11, // bottom
			12, 13, 14, 12, 14, 15, // top
			16, 17, 18, 16, 18, 19, // right
			20, 21, 22, 20, 22, 23, // left
		},
	}
}
