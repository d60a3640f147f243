// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fe

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Vec2 is a 2-component vector (velocity, normal).
type Vec2 struct {
	U, V float64
}

// Magnitude returns the Euclidean norm.
func (a Vec2) Magnitude() float64 { return math.Hypot(a.U, a.V) }

// Q1SideNodes lists the element-local nodes of each side of a Q1 element,
// in the order south, east, north, west.
var Q1SideNodes = [Q1NumSides][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}

// Q1SideNormals gives the outward unit normal of each side of an
// axis-aligned Q1 element, in the order south, east, north, west.
var Q1SideNormals = [Q1NumSides]Vec2{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// P1SideNodes lists the Q1-numbered nodes of each side of the four P1
// triangles embedded in a Q1 element.
var P1SideNodes = [4][P1NumSides][2]int{
	{{0, 1}, {1, 3}, {3, 0}},
	{{0, 1}, {1, 2}, {2, 0}},
	{{1, 2}, {2, 3}, {3, 1}},
	{{2, 3}, {3, 0}, {0, 2}},
}

// P1SideNormals returns the outward unit normals of the sides of the P1
// triangle number n in a dx-by-dy Q1 element. Diagonal sides depend on the
// element aspect ratio.
func P1SideNormals(n int, dx, dy float64) [P1NumSides]Vec2 {
	south := Vec2{0, -1}
	east := Vec2{1, 0}
	north := Vec2{0, 1}
	west := Vec2{-1, 0}

	// diagonal normals, outward for triangles 0 and 1
	n13 := Vec2{1, dx / dy}
	n20 := Vec2{-1, dx / dy}
	m13, m20 := n13.Magnitude(), n20.Magnitude()
	n13 = Vec2{n13.U / m13, n13.V / m13}
	n20 = Vec2{n20.U / m20, n20.V / m20}

	switch n {
	case 0:
		return [P1NumSides]Vec2{south, n13, west}
	case 1:
		return [P1NumSides]Vec2{south, east, n20}
	case 2:
		return [P1NumSides]Vec2{east, north, {-n13.U, -n13.V}}
	case 3:
		return [P1NumSides]Vec2{north, west, {-n20.U, -n20.V}}
	}
	chk.Panic("invalid P1 element index: %d", n)
	return [P1NumSides]Vec2{}
}

// BoundaryQuadrature2 is the 2-point Gaussian quadrature on the sides of a
// Q1 element. Weights include the length element of the side so that the
// weights of a side sum to its physical length; germs carry physical
// derivatives and are indexed by the two nodes incident to the side.
type BoundaryQuadrature2 struct {
	W     [Q1NumSides][2]float64
	Germs [Q1NumSides][2][2]Germ // [side][point][incident node]
}

// Npts returns the number of quadrature points per side.
func (o *BoundaryQuadrature2) Npts() int { return 2 }

// Normal returns the outward unit normal of the given side.
func (o *BoundaryQuadrature2) Normal(side int) Vec2 { return Q1SideNormals[side] }

// NewBoundaryQuadrature2 builds the side quadrature for a dx-by-dy Q1
// element (in coordinates scaled by the given factor).
func NewBoundaryQuadrature2(dx, dy, scaling float64) (o *BoundaryQuadrature2) {
	o = new(BoundaryQuadrature2)

	J := q1Jacobian(dx, dy, scaling)
	Jinv := inv2(J)

	// derivative of the side parameterization with respect to the
	// parameter t in [-1,1]
	drStar := [Q1NumSides]Vec2{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

	pts1, w1 := gauss1D(2)

	for side := 0; side < Q1NumSides; side++ {
		// side length element via the chain rule
		dr := Vec2{
			U: drStar[side].U*J[0][0] + drStar[side].V*J[0][1],
			V: drStar[side].U*J[1][0] + drStar[side].V*J[1][1],
		}
		for q := 0; q < 2; q++ {
			pt := q1SidePoint(side, pts1[q])
			o.W[side][q] = w1[q] * dr.Magnitude()
			for k := 0; k < 2; k++ {
				o.Germs[side][q][k] = mulGerm(Jinv, ChiQ1(Q1SideNodes[side][k], pt))
			}
		}
	}
	return
}

// q1SidePoint parameterizes side points of the reference square by
// t in [-1,1].
func q1SidePoint(side int, t float64) QuadPoint {
	L := 0.5 * (t + 1)
	j0 := side
	j1 := (side + 1) % Q1NumChi
	return QuadPoint{
		Xi:  (1-L)*q1xi[j0] + L*q1xi[j1],
		Eta: (1-L)*q1eta[j0] + L*q1eta[j1],
	}
}
