// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fe

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func sumWeights(q *Quadrature) (sum float64) {
	for _, w := range q.W {
		sum += w
	}
	return
}

func Test_quad01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("quad01. quadrature weights sum to the element area")

	dx, dy := 1000.0, 750.0
	area := dx * dy

	chk.Float64(tst, "Q1 1pt", 1e-9, sumWeights(NewQ1Quadrature1(dx, dy, 1)), area)
	chk.Float64(tst, "Q1 4pt", 1e-9, sumWeights(NewQ1Quadrature4(dx, dy, 1)), area)
	chk.Float64(tst, "Q1 9pt", 1e-9, sumWeights(NewQ1Quadrature9(dx, dy, 1)), area)
	chk.Float64(tst, "Q1 16pt", 1e-9, sumWeights(NewQ1Quadrature16(dx, dy, 1)), area)
	chk.Float64(tst, "Q1 1e4pt", 1e-9, sumWeights(NewQ1Quadrature1e4(dx, dy, 1)), area)
	chk.Float64(tst, "Q0 1e4pt", 1e-9, sumWeights(NewQ0Quadrature1e4(dx, dy, 1)), area)

	// the four triangles each cover half of the element
	for n := 0; n < 4; n++ {
		chk.Float64(tst, io.Sf("P1 3pt (%d)", n), 1e-9, sumWeights(NewP1Quadrature3(n, dx, dy, 1)), area/2)
	}

	// scaled coordinates divide lengths by the scaling factor
	L := 100.0
	chk.Float64(tst, "Q1 4pt scaled", 1e-12, sumWeights(NewQ1Quadrature4(dx, dy, L)), area/(L*L))
}

func Test_quad02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("quad02. shape functions: partition of unity, exact gradients")

	dx, dy := 3.0, 1.5
	q := NewQ1Quadrature9(dx, dy, 1)

	// nodal coordinates of a dx-by-dy element at the origin
	xn := []float64{0, dx, dx, 0}
	yn := []float64{0, 0, dy, dy}

	for iq := 0; iq < q.Npts(); iq++ {
		var sum, sumDx, sumDy float64
		var gx, gy float64
		for k := 0; k < Q1NumChi; k++ {
			g := q.Germs[iq][k]
			sum += g.Val
			sumDx += g.Dx
			sumDy += g.Dy
			// interpolate u = 2x - 3y, whose gradient is exact for Q1
			u := 2*xn[k] - 3*yn[k]
			gx += g.Dx * u
			gy += g.Dy * u
		}
		chk.Float64(tst, "sum chi", 1e-14, sum, 1.0)
		chk.Float64(tst, "sum dchi/dx", 1e-14, sumDx, 0)
		chk.Float64(tst, "sum dchi/dy", 1e-14, sumDy, 0)
		chk.Float64(tst, "du/dx", 1e-13, gx, 2.0)
		chk.Float64(tst, "du/dy", 1e-13, gy, -3.0)
	}
}

func Test_quad03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("quad03. P1 germs use Q1 node numbering with one dummy")

	dx, dy := 2.0, 2.0
	dummy := [4]int{2, 3, 0, 1} // node opposite the diagonal of triangle n

	for n := 0; n < 4; n++ {
		q := NewP1Quadrature3(n, dx, dy, 1)
		for iq := 0; iq < q.Npts(); iq++ {
			var sum float64
			for k := 0; k < Q1NumChi; k++ {
				g := q.Germs[iq][k]
				sum += g.Val
				if k == dummy[n] {
					chk.Float64(tst, io.Sf("dummy val (n=%d)", n), 1e-15, g.Val, 0)
					chk.Float64(tst, io.Sf("dummy dx (n=%d)", n), 1e-15, g.Dx, 0)
					chk.Float64(tst, io.Sf("dummy dy (n=%d)", n), 1e-15, g.Dy, 0)
				}
			}
			chk.Float64(tst, "sum chi", 1e-14, sum, 1.0)
		}
	}
}

func Test_quad04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("quad04. boundary quadrature: side lengths and normals")

	dx, dy := 4.0, 3.0
	bq := NewBoundaryQuadrature2(dx, dy, 1)

	lengths := []float64{dx, dy, dx, dy} // south, east, north, west
	for side := 0; side < Q1NumSides; side++ {
		var sum float64
		for iq := 0; iq < bq.Npts(); iq++ {
			sum += bq.W[side][iq]
		}
		chk.Float64(tst, io.Sf("side %d length", side), 1e-13, sum, lengths[side])

		n := bq.Normal(side)
		chk.Float64(tst, io.Sf("side %d |n|", side), 1e-15, n.Magnitude(), 1.0)
	}

	// P1 diagonal normals are unit and orthogonal to the diagonal
	for n := 0; n < 4; n++ {
		normals := P1SideNormals(n, dx, dy)
		for s := 0; s < P1NumSides; s++ {
			chk.Float64(tst, io.Sf("P1 %d side %d |n|", n, s), 1e-15, normals[s].Magnitude(), 1.0)
		}
	}
	diag := Vec2{dx, dy} // direction of the 1-3 diagonal
	n13 := P1SideNormals(0, dx, dy)[1]
	chk.Float64(tst, "n13 . diag", 1e-14, n13.U*diag.U+n13.V*diag.V, 0)
}

func Test_quad05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("quad05. Gaussian rules integrate polynomials exactly")

	dx, dy := 2.0, 2.0
	q := NewQ1Quadrature4(dx, dy, 1)

	// integrate f(xi,eta) interpolated from nodal values of x*y over
	// [-1,1]^2: Q1 interpolation of x*y is exact, integral is 0
	xn := []float64{-1, 1, 1, -1}
	yn := []float64{-1, -1, 1, 1}
	var integral float64
	for iq := 0; iq < q.Npts(); iq++ {
		var f float64
		for k := 0; k < Q1NumChi; k++ {
			f += q.Germs[iq][k].Val * xn[k] * yn[k]
		}
		integral += q.W[iq] * f
	}
	chk.Float64(tst, "int xy", 1e-14, integral, 0)

	// integrate x^2 (again exactly representable through nodal products)
	integral = 0
	for iq := 0; iq < q.Npts(); iq++ {
		var x float64
		for k := 0; k < Q1NumChi; k++ {
			x += q.Germs[iq][k].Val * xn[k]
		}
		integral += q.W[iq] * x * x
	}
	chk.Float64(tst, "int x^2", 1e-13, integral, 4.0/3.0)

	if math.IsNaN(integral) {
		tst.Errorf("quadrature produced NaN")
	}
}
