// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fe

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// ShapeFunction2 evaluates one 2D reference-element shape function.
type ShapeFunction2 func(k int, pt QuadPoint) Germ

// Quadrature holds a 2D quadrature rule bound to a fixed element geometry:
// per-point weights (pre-scaled by the determinant of the map Jacobian, so
// that the weights sum to the physical element area) and the germs of every
// shape function with derivatives already converted to physical space.
type Quadrature struct {
	W     []float64 // scaled weights
	Germs [][]Germ  // [point][shape function]
}

// Npts returns the number of quadrature points.
func (o *Quadrature) Npts() int { return len(o.W) }

// NumChi returns the number of shape functions.
func (o *Quadrature) NumChi() int { return len(o.Germs[0]) }

// initialize computes germs and scaled weights. The map Jacobian J must not
// depend on the quadrature point (axis-aligned structured elements).
func (o *Quadrature) initialize(f ShapeFunction2, nchi int, J [2][2]float64, pts []QuadPoint, w []float64) {
	chk.IntAssert(len(pts), len(w))
	Jinv := inv2(J)
	Jdet := det2(J)
	n := len(pts)
	o.W = make([]float64, n)
	o.Germs = make([][]Germ, n)
	for q := 0; q < n; q++ {
		o.W[q] = Jdet * w[q]
		o.Germs[q] = make([]Germ, nchi)
		for k := 0; k < nchi; k++ {
			o.Germs[q][k] = mulGerm(Jinv, f(k, pts[q]))
		}
	}
}

// q1Jacobian returns the (diagonal, constant) Jacobian of the map from the
// reference square [-1,1]^2 to a dx-by-dy physical element. The scaling
// factor allows solving in scaled coordinates.
func q1Jacobian(dx, dy, scaling float64) [2][2]float64 {
	return [2][2]float64{{0.5 * dx / scaling, 0}, {0, 0.5 * dy / scaling}}
}

// tensorProduct builds a 2D tensor-product rule from a 1D rule, using the
// same 1D rule in both directions.
func tensorProduct(pts1, w1 []float64) (pts []QuadPoint, w []float64) {
	n := len(pts1)
	pts = make([]QuadPoint, n*n)
	w = make([]float64, n*n)
	q := 0
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			pts[q] = QuadPoint{Xi: pts1[i], Eta: pts1[j]}
			w[q] = w1[i] * w1[j]
			q++
		}
	}
	return
}

// gauss1D returns the n-point Gaussian rule on [-1,1] for n up to 4.
func gauss1D(n int) (pts, w []float64) {
	switch n {
	case 1:
		return []float64{0}, []float64{2}
	case 2:
		a := 1.0 / math.Sqrt(3.0)
		return []float64{-a, a}, []float64{1, 1}
	case 3:
		b := math.Sqrt(0.6)
		w1, w2 := 5.0/9.0, 8.0/9.0
		return []float64{-b, 0, b}, []float64{w1, w2, w1}
	case 4:
		a := math.Sqrt(3.0/7.0 - (2.0/7.0)*math.Sqrt(6.0/5.0))
		b := math.Sqrt(3.0/7.0 + (2.0/7.0)*math.Sqrt(6.0/5.0))
		w1 := (18.0 + math.Sqrt(30.0)) / 36.0
		w2 := (18.0 - math.Sqrt(30.0)) / 36.0
		return []float64{-b, -a, a, b}, []float64{w2, w1, w1, w2}
	}
	chk.Panic("no %d-point 1D Gaussian rule available", n)
	return
}

// uniform1D returns an n-point uniform (midpoint) rule on [-1,1], used to
// integrate discontinuous indicator functions.
func uniform1D(n int) (pts, w []float64) {
	pts = make([]float64, n)
	w = make([]float64, n)
	d := 2.0 / float64(n)
	for k := 0; k < n; k++ {
		pts[k] = -1 + d*(float64(k)+0.5)
		w[k] = d
	}
	return
}

// newQ1Gauss builds an n-by-n Gaussian rule on a Q1 element.
func newQ1Gauss(n int, dx, dy, scaling float64) (o *Quadrature) {
	pts1, w1 := gauss1D(n)
	pts, w := tensorProduct(pts1, w1)
	o = new(Quadrature)
	o.initialize(ChiQ1, Q1NumChi, q1Jacobian(dx, dy, scaling), pts, w)
	return
}

// NewQ1Quadrature1 returns the midpoint rule on a Q1 element.
func NewQ1Quadrature1(dx, dy, scaling float64) *Quadrature {
	return newQ1Gauss(1, dx, dy, scaling)
}

// NewQ1Quadrature4 returns the 2x2 Gaussian rule on a Q1 element.
func NewQ1Quadrature4(dx, dy, scaling float64) *Quadrature {
	return newQ1Gauss(2, dx, dy, scaling)
}

// NewQ1Quadrature9 returns the 3x3 Gaussian rule on a Q1 element.
func NewQ1Quadrature9(dx, dy, scaling float64) *Quadrature {
	return newQ1Gauss(3, dx, dy, scaling)
}

// NewQ1Quadrature16 returns the 4x4 Gaussian rule on a Q1 element.
func NewQ1Quadrature16(dx, dy, scaling float64) *Quadrature {
	return newQ1Gauss(4, dx, dy, scaling)
}

// NewQ1Quadrature1e4 returns the 100x100 uniform rule on a Q1 element, for
// integrands with jump discontinuities inside the element.
func NewQ1Quadrature1e4(dx, dy, scaling float64) (o *Quadrature) {
	pts1, w1 := uniform1D(100)
	pts, w := tensorProduct(pts1, w1)
	o = new(Quadrature)
	o.initialize(ChiQ1, Q1NumChi, q1Jacobian(dx, dy, scaling), pts, w)
	return
}

// NewQ0Quadrature1e4 returns the 100x100 uniform rule with piecewise
// constant shape functions.
func NewQ0Quadrature1e4(dx, dy, scaling float64) (o *Quadrature) {
	pts1, w1 := uniform1D(100)
	pts, w := tensorProduct(pts1, w1)
	o = new(Quadrature)
	o.initialize(ChiQ0, Q0NumChi, q1Jacobian(dx, dy, scaling), pts, w)
	return
}

// p1Jacobian returns the Jacobian of the map from the reference triangle to
// the physical triangle n of a Q1 element split along a diagonal. The four
// triangles are numbered by the node at the right angle.
func p1Jacobian(n int, dx, dy, scaling float64) [2][2]float64 {
	switch n {
	case 0:
		return [2][2]float64{{dx / scaling, 0}, {0, dy / scaling}}
	case 1:
		return [2][2]float64{{0, dy / scaling}, {-dx / scaling, 0}}
	case 2:
		return [2][2]float64{{-dx / scaling, 0}, {0, -dy / scaling}}
	case 3:
		return [2][2]float64{{0, -dy / scaling}, {dx / scaling, 0}}
	}
	chk.Panic("invalid P1 element index: %d", n)
	return [2][2]float64{}
}

// NewP1Quadrature3 returns the symmetric 3-point rule on the P1 triangle
// number n embedded in a dx-by-dy Q1 element. Germs are stored using Q1
// node numbering: the entry of the node opposite the diagonal is the dummy
// (identically zero) shape function.
func NewP1Quadrature3(n int, dx, dy, scaling float64) (o *Quadrature) {
	pts := []QuadPoint{
		{Xi: 2.0 / 3.0, Eta: 1.0 / 6.0},
		{Xi: 1.0 / 6.0, Eta: 2.0 / 3.0},
		{Xi: 1.0 / 6.0, Eta: 1.0 / 6.0},
	}
	w := []float64{1.0 / 6.0, 1.0 / 6.0, 1.0 / 6.0}
	o = new(Quadrature)
	o.initialize(ChiP1, Q1NumChi, p1Jacobian(n, dx, dy, scaling), pts, w)

	// permute germs so they are indexed by Q1 element-local node numbers;
	// X marks the dummy shape function
	X := 3
	perm := [4][4]int{
		{0, 1, X, 2},
		{2, 0, 1, X},
		{X, 2, 0, 1},
		{1, X, 2, 0},
	}
	var tmp [4]Germ
	for q := 0; q < o.Npts(); q++ {
		for k := 0; k < Q1NumChi; k++ {
			tmp[k] = o.Germs[q][perm[n][k]]
		}
		copy(o.Germs[q], tmp[:])
	}
	return
}
