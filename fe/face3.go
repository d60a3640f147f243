// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fe

import "github.com/cpmech/gosl/chk"

// RefFaceQuadrature is a quadrature rule on the reference square [-1,1]^2
// used for integrals over hexahedron faces.
type RefFaceQuadrature struct {
	Pts []QuadPoint
	W   []float64
}

// NewFaceQuadrature4 returns the 2x2 Gaussian face rule.
func NewFaceQuadrature4() (o *RefFaceQuadrature) {
	pts1, w1 := gauss1D(2)
	pts, w := tensorProduct(pts1, w1)
	return &RefFaceQuadrature{Pts: pts, W: w}
}

// NewFaceQuadrature100 returns the 10x10 uniform face rule, used on basal
// faces crossed by the grounding line where the integrand jumps.
func NewFaceQuadrature100() (o *RefFaceQuadrature) {
	pts1, w1 := uniform1D(10)
	pts, w := tensorProduct(pts1, w1)
	return &RefFaceQuadrature{Pts: pts, W: w}
}

// Element3Face evaluates shape functions, area-scaled weights and outward
// unit normals on one face of a hexahedral terrain-following element. Reset
// repositions it to a face of the element last given nodal elevations.
type Element3Face struct {
	dx, dy float64
	ref    *RefFaceQuadrature

	face    int
	W       []float64   // weights scaled by the surface element
	Chi     [][]float64 // [point][element-local node] shape function values
	Normals []Vec3      // outward unit normal per point
}

// NewElement3Face creates a face view for dx-by-dy elements.
func NewElement3Face(dx, dy float64, ref *RefFaceQuadrature) (o *Element3Face) {
	o = &Element3Face{dx: dx, dy: dy, ref: ref}
	nq := len(ref.Pts)
	o.W = make([]float64, nq)
	o.Normals = make([]Vec3, nq)
	o.Chi = make([][]float64, nq)
	for q := 0; q < nq; q++ {
		o.Chi[q] = make([]float64, Q13DNumChi)
	}
	return
}

// Npts returns the number of quadrature points per face.
func (o *Element3Face) Npts() int { return len(o.W) }

// facePoint maps a reference-square point onto face f of the reference
// cube, returning the 3D point and the two free reference directions (as
// axis indices 0,1,2) whose tangent cross product points toward the
// positive fixed axis.
func facePoint(f int, pt QuadPoint) (p QuadPoint3, a, b int, sign float64) {
	switch f {
	case 0:
		return QuadPoint3{-1, pt.Xi, pt.Eta}, 1, 2, -1
	case 1:
		return QuadPoint3{1, pt.Xi, pt.Eta}, 1, 2, 1
	case 2:
		return QuadPoint3{pt.Xi, -1, pt.Eta}, 2, 0, -1
	case 3:
		return QuadPoint3{pt.Xi, 1, pt.Eta}, 2, 0, 1
	case 4:
		return QuadPoint3{pt.Xi, pt.Eta, -1}, 0, 1, -1
	case 5:
		return QuadPoint3{pt.Xi, pt.Eta, 1}, 0, 1, 1
	}
	chk.Panic("invalid hexahedron face index: %d", f)
	return
}

// Reset positions the face view on face f of the element with nodal
// elevations z and recomputes shape function values, weights (scaled so the
// weights of a face sum to its physical area) and outward unit normals.
func (o *Element3Face) Reset(f int, z []float64) {
	chk.IntAssert(len(z), Q13DNumChi)
	o.face = f

	hx := 0.5 * o.dx
	hy := 0.5 * o.dy

	for q := 0; q < len(o.W); q++ {
		p, a, b, sign := facePoint(f, o.ref.Pts[q])

		// elevation gradient in reference coordinates
		var dz [3]float64
		for n := 0; n < Q13DNumChi; n++ {
			g := ChiQ13D(n, p)
			dz[0] += g.Dx * z[n]
			dz[1] += g.Dy * z[n]
			dz[2] += g.Dz * z[n]
			o.Chi[q][n] = g.Val
		}

		// physical tangent vectors along the two free reference directions
		ta := tangent(a, hx, hy, dz)
		tb := tangent(b, hx, hy, dz)

		// surface element and outward unit normal
		c := cross(ta, tb)
		mag := c.Magnitude()
		if mag == 0 {
			chk.Panic("degenerate face %d: zero surface element", f)
		}
		o.W[q] = o.ref.W[q] * mag
		o.Normals[q] = Vec3{sign * c.X / mag, sign * c.Y / mag, sign * c.Z / mag}
	}
}

// tangent returns the derivative of the physical coordinate map along
// reference axis number a.
func tangent(a int, hx, hy float64, dz [3]float64) Vec3 {
	switch a {
	case 0:
		return Vec3{hx, 0, dz[0]}
	case 1:
		return Vec3{0, hy, dz[1]}
	}
	return Vec3{0, 0, dz[2]}
}

// Evaluate interpolates a scalar nodal quantity to the face quadrature
// points.
func (o *Element3Face) Evaluate(nodal, vals []float64) {
	for q := 0; q < len(o.W); q++ {
		var v float64
		for n := 0; n < Q13DNumChi; n++ {
			v += o.Chi[q][n] * nodal[n]
		}
		vals[q] = v
	}
}
