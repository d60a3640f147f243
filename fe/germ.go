// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fe implements the finite-element kernel: reference-element shape
// functions (Q1 quadrilateral/hexahedron, P1 triangle, Q0 constant),
// quadrature rules with weights pre-scaled by the Jacobian of the map to
// physical coordinates, element scratchpads used during assembly, and the
// symmetric Dirichlet enforcement protocol.
package fe

import "github.com/cpmech/gosl/chk"

// Germ holds the value and physical partial derivatives of one shape
// function at one quadrature point.
type Germ struct {
	Val float64 // value
	Dx  float64 // ∂/∂x
	Dy  float64 // ∂/∂y
	Dz  float64 // ∂/∂z (zero for 2D elements)
}

// QuadPoint is a point on the 2D reference element.
type QuadPoint struct {
	Xi, Eta float64
}

// QuadPoint3 is a point on the 3D reference element.
type QuadPoint3 struct {
	Xi, Eta, Zeta float64
}

// numbers of shape functions
const (
	Q0NumChi   = 4 // Q0: one indicator per quadrant of the reference square
	Q1NumChi   = 4
	P1NumChi   = 3
	Q13DNumChi = 8
)

// numbers of element sides/faces
const (
	Q1NumSides = 4
	P1NumSides = 3
	Q13DNFaces = 6
)

// reference coordinates of Q1 nodes, counter-clockwise from the lower left
var (
	q1xi  = [4]float64{-1, 1, 1, -1}
	q1eta = [4]float64{-1, -1, 1, 1}
)

// ChiQ0 evaluates the piecewise-constant shape function k at pt. Each
// function is the indicator of one quadrant of the reference square.
func ChiQ0(k int, pt QuadPoint) (g Germ) {
	if k < 0 || k >= Q0NumChi {
		chk.Panic("invalid Q0 shape function index: %d", k)
	}
	if (k == 0 && pt.Xi <= 0 && pt.Eta <= 0) ||
		(k == 1 && pt.Xi > 0 && pt.Eta <= 0) ||
		(k == 2 && pt.Xi > 0 && pt.Eta > 0) ||
		(k == 3 && pt.Xi <= 0 && pt.Eta > 0) {
		g.Val = 1
	}
	return
}

// ChiQ1 evaluates the bilinear shape function k at pt on the reference
// square with nodes (-1,-1), (1,-1), (1,1), (-1,1).
func ChiQ1(k int, pt QuadPoint) (g Germ) {
	if k < 0 || k >= Q1NumChi {
		chk.Panic("invalid Q1 shape function index: %d", k)
	}
	g.Val = 0.25 * (1 + q1xi[k]*pt.Xi) * (1 + q1eta[k]*pt.Eta)
	g.Dx = 0.25 * q1xi[k] * (1 + q1eta[k]*pt.Eta)
	g.Dy = 0.25 * q1eta[k] * (1 + q1xi[k]*pt.Xi)
	return
}

// ChiP1 evaluates the linear shape function k at pt on the reference
// triangle with nodes (0,0), (1,0), (0,1). Index 3 is the dummy shape
// function used when a P1 element is embedded in a Q1 element.
func ChiP1(k int, pt QuadPoint) Germ {
	switch k {
	case 0:
		return Germ{Val: 1 - pt.Xi - pt.Eta, Dx: -1, Dy: -1}
	case 1:
		return Germ{Val: pt.Xi, Dx: 1}
	case 2:
		return Germ{Val: pt.Eta, Dy: 1}
	case 3:
		return Germ{}
	}
	chk.Panic("invalid P1 shape function index: %d", k)
	return Germ{}
}

// reference coordinates of Q1 hexahedron nodes: 0..3 bottom face
// (counter-clockwise from the lower left), 4..7 directly above them
var (
	q13dxi   = [8]float64{-1, 1, 1, -1, -1, 1, 1, -1}
	q13deta  = [8]float64{-1, -1, 1, 1, -1, -1, 1, 1}
	q13dzeta = [8]float64{-1, -1, -1, -1, 1, 1, 1, 1}
)

// Q13DIncidentNodes lists the element-local nodes of each hexahedron face,
// in the order west, east, south, north, bottom, top.
var Q13DIncidentNodes = [Q13DNFaces][4]int{
	{0, 3, 7, 4}, // west  (xi = -1)
	{1, 2, 6, 5}, // east  (xi = +1)
	{0, 1, 5, 4}, // south (eta = -1)
	{3, 2, 6, 7}, // north (eta = +1)
	{0, 1, 2, 3}, // bottom (zeta = -1)
	{4, 5, 6, 7}, // top    (zeta = +1)
}

// BottomFace is the index of the basal face of a hexahedral element.
const BottomFace = 4

// ChiQ13D evaluates the trilinear shape function k at pt on the reference
// cube [-1,1]^3.
func ChiQ13D(k int, pt QuadPoint3) (g Germ) {
	if k < 0 || k >= Q13DNumChi {
		chk.Panic("invalid Q1 3D shape function index: %d", k)
	}
	g.Val = 0.125 * (1 + q13dxi[k]*pt.Xi) * (1 + q13deta[k]*pt.Eta) * (1 + q13dzeta[k]*pt.Zeta)
	g.Dx = 0.125 * q13dxi[k] * (1 + q13deta[k]*pt.Eta) * (1 + q13dzeta[k]*pt.Zeta)
	g.Dy = 0.125 * q13deta[k] * (1 + q13dxi[k]*pt.Xi) * (1 + q13dzeta[k]*pt.Zeta)
	g.Dz = 0.125 * q13dzeta[k] * (1 + q13dxi[k]*pt.Xi) * (1 + q13deta[k]*pt.Eta)
	return
}

// 2x2 helpers shared by the quadrature constructors

func det2(J [2][2]float64) float64 {
	return J[0][0]*J[1][1] - J[1][0]*J[0][1]
}

func inv2(J [2][2]float64) (Jinv [2][2]float64) {
	d := det2(J)
	if d == 0 {
		chk.Panic("singular element map Jacobian")
	}
	Jinv[0][0] = J[1][1] / d
	Jinv[0][1] = -J[0][1] / d
	Jinv[1][0] = -J[1][0] / d
	Jinv[1][1] = J[0][0] / d
	return
}

// mulGerm converts reference-space derivatives into physical-space
// derivatives using the inverse of the map Jacobian.
func mulGerm(Jinv [2][2]float64, g Germ) Germ {
	return Germ{
		Val: g.Val,
		Dx:  g.Dx*Jinv[0][0] + g.Dy*Jinv[0][1],
		Dy:  g.Dx*Jinv[1][0] + g.Dy*Jinv[1][1],
	}
}
