// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fe

import (
	"github.com/sebastianbeyer/pism/grid"
)

// MatrixPutter receives triplet entries during Jacobian assembly. It is
// satisfied by la.Triplet and by wrappers tracking extra information such
// as the matrix diagonal.
type MatrixPutter interface {
	Put(i, j int, x float64)
}

// element-local node offsets relative to the lower-left node
var (
	iOffset = [4]int{0, 1, 1, 0}
	jOffset = [4]int{0, 0, 1, 1}
)

// Element2 is a transient view over one Q1 element of a 2D grid, used to
// gather nodal values and to scatter element-local contributions into
// global residual vectors and Jacobian triplets. Reset repositions it
// without allocation; its lifetime is one assembly pass.
type Element2 struct {
	G *grid.Grid
	Q *Quadrature

	i, j     int
	nodeI    [4]int
	nodeJ    [4]int
	rowValid [4]bool
	colValid [4]bool
}

// NewElement2 creates an element view bound to a grid and a quadrature.
func NewElement2(g *grid.Grid, q *Quadrature) (o *Element2) {
	o = &Element2{G: g, Q: q}
	o.Reset(g.Xs, g.Ys)
	return
}

// Reset positions the element at lower-left node (i,j) and marks all rows
// and columns valid.
func (o *Element2) Reset(i, j int) {
	o.i, o.j = i, j
	for n := 0; n < Q1NumChi; n++ {
		o.nodeI[n] = o.G.WrapX(i + iOffset[n])
		o.nodeJ[n] = o.G.WrapY(j + jOffset[n])
		o.rowValid[n] = true
		o.colValid[n] = true
	}
}

// Node returns the global indices of element-local node n.
func (o *Element2) Node(n int) (i, j int) { return o.nodeI[n], o.nodeJ[n] }

// MarkRowInvalid excludes the rows of node n from contribution scattering.
func (o *Element2) MarkRowInvalid(n int) { o.rowValid[n] = false }

// MarkColInvalid excludes the columns of node n from Jacobian scattering.
func (o *Element2) MarkColInvalid(n int) { o.colValid[n] = false }

// RowValid reports whether the rows of node n receive contributions.
func (o *Element2) RowValid(n int) bool { return o.rowValid[n] }

// NodalValues gathers the element-local values of a flat global field with
// ndof unknowns per node into dst (length 4*ndof).
func (o *Element2) NodalValues(f []float64, ndof int, dst []float64) {
	for n := 0; n < Q1NumChi; n++ {
		idx := o.G.NodeIndex(o.nodeI[n], o.nodeJ[n])
		for d := 0; d < ndof; d++ {
			dst[n*ndof+d] = f[idx*ndof+d]
		}
	}
}

// AddToRhs sums the element-local residual (length 4*ndof) into the global
// vector, skipping rows marked invalid.
func (o *Element2) AddToRhs(fb []float64, ndof int, rlocal []float64) {
	for n := 0; n < Q1NumChi; n++ {
		if !o.rowValid[n] {
			continue
		}
		idx := o.G.NodeIndex(o.nodeI[n], o.nodeJ[n])
		for d := 0; d < ndof; d++ {
			fb[idx*ndof+d] += rlocal[n*ndof+d]
		}
	}
}

// AddToKb sums the element-local stiffness matrix (4*ndof by 4*ndof) into
// the global triplet, skipping rows and columns marked invalid.
func (o *Element2) AddToKb(Kb MatrixPutter, ndof int, K [][]float64) {
	for t := 0; t < Q1NumChi; t++ {
		if !o.rowValid[t] {
			continue
		}
		for s := 0; s < Q1NumChi; s++ {
			if !o.colValid[s] {
				continue
			}
			row := o.G.NodeIndex(o.nodeI[t], o.nodeJ[t]) * ndof
			col := o.G.NodeIndex(o.nodeI[s], o.nodeJ[s]) * ndof
			for a := 0; a < ndof; a++ {
				for b := 0; b < ndof; b++ {
					Kb.Put(row+a, col+b, K[t*ndof+a][s*ndof+b])
				}
			}
		}
	}
}

// Evaluate interpolates a scalar nodal quantity (Q1 node numbering) and its
// physical derivatives to the quadrature points. Any of the output slices
// may be nil.
func (o *Element2) Evaluate(nodal []float64, vals, dx, dy []float64) {
	for q := 0; q < o.Q.Npts(); q++ {
		var v, vx, vy float64
		for k := 0; k < Q1NumChi; k++ {
			g := o.Q.Germs[q][k]
			v += g.Val * nodal[k]
			vx += g.Dx * nodal[k]
			vy += g.Dy * nodal[k]
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
	}
}
