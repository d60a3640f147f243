// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fe

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/sebastianbeyer/pism/grid"
)

// Vec3 is a 3-component vector.
type Vec3 struct {
	X, Y, Z float64
}

// Magnitude returns the Euclidean norm.
func (a Vec3) Magnitude() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

func cross(a, b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

// RefQuadrature3 is a quadrature rule on the reference cube [-1,1]^3. The
// germs and weights on a physical element depend on its nodal elevations
// and are computed by Element3.Reset.
type RefQuadrature3 struct {
	Pts []QuadPoint3
	W   []float64
}

// NewQ13DQuadrature8 returns the 2x2x2 Gaussian rule on the reference cube.
func NewQ13DQuadrature8() (o *RefQuadrature3) {
	pts1, w1 := gauss1D(2)
	return tensorProduct3(pts1, w1)
}

// NewQ13DQuadrature27 returns the 3x3x3 Gaussian rule on the reference cube.
func NewQ13DQuadrature27() (o *RefQuadrature3) {
	pts1, w1 := gauss1D(3)
	return tensorProduct3(pts1, w1)
}

func tensorProduct3(pts1, w1 []float64) (o *RefQuadrature3) {
	n := len(pts1)
	o = new(RefQuadrature3)
	o.Pts = make([]QuadPoint3, n*n*n)
	o.W = make([]float64, n*n*n)
	q := 0
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				o.Pts[q] = QuadPoint3{Xi: pts1[i], Eta: pts1[j], Zeta: pts1[k]}
				o.W[q] = w1[i] * w1[j] * w1[k]
				q++
			}
		}
	}
	return
}

// Element3 is a transient view over one hexahedral element of an extruded
// ice column grid. The horizontal map Jacobian is constant (axis-aligned
// dx-by-dy elements) but the vertical Jacobian is position dependent
// because node elevations follow the terrain (sigma coordinates), so germs
// and weights are recomputed at every Reset.
type Element3 struct {
	G  *grid.Grid
	Mz int

	ref  *RefQuadrature3
	refG [][]Germ // reference-space germs, computed once

	// current element state
	W     []float64 // weights scaled by the map Jacobian determinant
	Germs [][]Germ  // physical-space germs

	i, j, k  int
	zNodal   [Q13DNumChi]float64
	nodeI    [Q13DNumChi]int
	nodeJ    [Q13DNumChi]int
	nodeK    [Q13DNumChi]int
	rowValid [Q13DNumChi]bool
	colValid [Q13DNumChi]bool
}

// NewElement3 creates an element view for a grid extruded to mz vertical
// levels, bound to a reference quadrature.
func NewElement3(g *grid.Grid, mz int, ref *RefQuadrature3) (o *Element3) {
	if mz < 2 {
		chk.Panic("ice column needs at least 2 vertical levels. mz=%d is invalid", mz)
	}
	o = &Element3{G: g, Mz: mz, ref: ref}
	nq := len(ref.Pts)
	o.refG = make([][]Germ, nq)
	o.Germs = make([][]Germ, nq)
	o.W = make([]float64, nq)
	for q := 0; q < nq; q++ {
		o.refG[q] = make([]Germ, Q13DNumChi)
		o.Germs[q] = make([]Germ, Q13DNumChi)
		for n := 0; n < Q13DNumChi; n++ {
			o.refG[q][n] = ChiQ13D(n, ref.Pts[q])
		}
	}
	return
}

// Npts returns the number of quadrature points.
func (o *Element3) Npts() int { return len(o.W) }

// Reset positions the element at lower-south-west node (i,j,k), takes the
// nodal elevations z (Q13D node numbering) and recomputes physical germs
// and scaled weights. All rows and columns are marked valid. A column with
// non-increasing nodal elevations is a degenerate element and panics.
func (o *Element3) Reset(i, j, k int, z []float64) {
	chk.IntAssert(len(z), Q13DNumChi)
	o.i, o.j, o.k = i, j, k
	for n := 0; n < Q13DNumChi; n++ {
		o.zNodal[n] = z[n]
		o.nodeI[n] = o.G.WrapX(i + iOffset[n%4])
		o.nodeJ[n] = o.G.WrapY(j + jOffset[n%4])
		o.nodeK[n] = k + n/4
		o.rowValid[n] = true
		o.colValid[n] = true
	}

	hx := 0.5 * o.G.Dx
	hy := 0.5 * o.G.Dy

	for q := 0; q < len(o.W); q++ {
		// vertical part of the map Jacobian at this quadrature point
		var dzdxi, dzdeta, dzdzeta float64
		for n := 0; n < Q13DNumChi; n++ {
			g := o.refG[q][n]
			dzdxi += g.Dx * z[n]
			dzdeta += g.Dy * z[n]
			dzdzeta += g.Dz * z[n]
		}
		if dzdzeta <= 0 {
			chk.Panic("degenerate element at (%d,%d,%d): column elevations are not increasing", i, j, k)
		}

		o.W[q] = o.ref.W[q] * hx * hy * dzdzeta

		for n := 0; n < Q13DNumChi; n++ {
			g := o.refG[q][n]
			dz := g.Dz / dzdzeta
			o.Germs[q][n] = Germ{
				Val: g.Val,
				Dx:  (g.Dx - dzdxi*dz) / hx,
				Dy:  (g.Dy - dzdeta*dz) / hy,
				Dz:  dz,
			}
		}
	}
}

// Node returns the global indices of element-local node n.
func (o *Element3) Node(n int) (i, j, k int) {
	return o.nodeI[n], o.nodeJ[n], o.nodeK[n]
}

// X returns the x-coordinate of element-local node n.
func (o *Element3) X(n int) float64 { return o.G.X(o.nodeI[n]) }

// Y returns the y-coordinate of element-local node n.
func (o *Element3) Y(n int) float64 { return o.G.Y(o.nodeJ[n]) }

// Z returns the elevation of element-local node n.
func (o *Element3) Z(n int) float64 { return o.zNodal[n] }

// GlobalIndex returns the flat global index of element-local node n, with
// vertical level varying slowest.
func (o *Element3) GlobalIndex(n int) int {
	return (o.nodeK[n]*o.G.My+o.nodeJ[n])*o.G.Mx + o.nodeI[n]
}

// MarkRowInvalid excludes the rows of node n from contribution scattering.
func (o *Element3) MarkRowInvalid(n int) { o.rowValid[n] = false }

// MarkColInvalid excludes the columns of node n from Jacobian scattering.
func (o *Element3) MarkColInvalid(n int) { o.colValid[n] = false }

// NodalValues gathers the element-local values of a flat global 3D field
// with ndof unknowns per node into dst (length 8*ndof).
func (o *Element3) NodalValues(f []float64, ndof int, dst []float64) {
	for n := 0; n < Q13DNumChi; n++ {
		idx := o.GlobalIndex(n)
		for d := 0; d < ndof; d++ {
			dst[n*ndof+d] = f[idx*ndof+d]
		}
	}
}

// NodalValues2D gathers values of a flat global 2D field (one value per
// horizontal location) at the element's nodes.
func (o *Element3) NodalValues2D(f []float64, dst []float64) {
	for n := 0; n < Q13DNumChi; n++ {
		dst[n] = f[o.G.NodeIndex(o.nodeI[n], o.nodeJ[n])]
	}
}

// AddToRhs sums the element-local residual (length 8*ndof) into the global
// vector, skipping rows marked invalid.
func (o *Element3) AddToRhs(fb []float64, ndof int, rlocal []float64) {
	for n := 0; n < Q13DNumChi; n++ {
		if !o.rowValid[n] {
			continue
		}
		idx := o.GlobalIndex(n)
		for d := 0; d < ndof; d++ {
			fb[idx*ndof+d] += rlocal[n*ndof+d]
		}
	}
}

// AddToKb sums the element-local stiffness matrix (8*ndof by 8*ndof) into
// the global triplet, skipping rows and columns marked invalid.
func (o *Element3) AddToKb(Kb MatrixPutter, ndof int, K [][]float64) {
	for t := 0; t < Q13DNumChi; t++ {
		if !o.rowValid[t] {
			continue
		}
		for s := 0; s < Q13DNumChi; s++ {
			if !o.colValid[s] {
				continue
			}
			row := o.GlobalIndex(t) * ndof
			col := o.GlobalIndex(s) * ndof
			for a := 0; a < ndof; a++ {
				for b := 0; b < ndof; b++ {
					Kb.Put(row+a, col+b, K[t*ndof+a][s*ndof+b])
				}
			}
		}
	}
}

// Evaluate interpolates a scalar nodal quantity and its physical
// derivatives to the quadrature points. Any of the output slices may be
// nil.
func (o *Element3) Evaluate(nodal []float64, vals, dx, dy, dz []float64) {
	for q := 0; q < len(o.W); q++ {
		var v, vx, vy, vz float64
		for n := 0; n < Q13DNumChi; n++ {
			g := o.Germs[q][n]
			v += g.Val * nodal[n]
			vx += g.Dx * nodal[n]
			vy += g.Dy * nodal[n]
			vz += g.Dz * nodal[n]
		}
		if vals != nil {
			vals[q] = v
		}
		if dx != nil {
			dx[q] = vx
		}
		if dy != nil {
			dy[q] = vy
		}
		if dz != nil {
			dz[q] = vz
		}
	}
}
