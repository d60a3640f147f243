// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fe

import (
	"github.com/cpmech/gosl/chk"

	"github.com/sebastianbeyer/pism/grid"
)

// DirichletScalar enforces prescribed values of a scalar unknown on a set
// of flagged 2D grid nodes without breaking the symmetry of the assembled
// matrix. The element loop first calls Constrain so flagged rows and
// columns receive no contributions; FixResidual and FixJacobian then insert
// the weight-scaled constraint equations. Flags and values are replicated
// on every process, so the fixed rows are identical everywhere.
type DirichletScalar struct {
	G      *grid.Grid
	Flags  []bool    // per-node Dirichlet indicator, length Mx*My
	Values []float64 // prescribed values, may be nil for homogeneous use
	Weight float64   // diagonal scaling of the constraint equations
}

// NewDirichletScalar creates the enforcement helper. values may be nil when
// only the homogeneous variants are used.
func NewDirichletScalar(g *grid.Grid, flags []bool, values []float64, weight float64) *DirichletScalar {
	chk.IntAssert(len(flags), g.NumNodes())
	if values != nil {
		chk.IntAssert(len(values), g.NumNodes())
	}
	return &DirichletScalar{G: g, Flags: flags, Values: values, Weight: weight}
}

// Constrain marks rows and columns of the element's flagged nodes invalid
// so that normal assembly never touches them.
func (o *DirichletScalar) Constrain(e *Element2) {
	for n := 0; n < Q1NumChi; n++ {
		i, j := e.Node(n)
		if o.Flags[o.G.NodeIndex(i, j)] {
			e.MarkRowInvalid(n)
			e.MarkColInvalid(n)
		}
	}
}

// Enforce overwrites the element-local nodal values at flagged nodes with
// the prescribed values, so quadrature-point evaluation sees boundary data.
func (o *DirichletScalar) Enforce(e *Element2, xNodal []float64) {
	for n := 0; n < Q1NumChi; n++ {
		i, j := e.Node(n)
		idx := o.G.NodeIndex(i, j)
		if o.Flags[idx] {
			xNodal[n] = o.Values[idx]
		}
	}
}

// EnforceHomogeneous overwrites the element-local nodal values at flagged
// nodes with zero, for solves whose unknown is a correction relative to a
// boundary-condition-satisfying state.
func (o *DirichletScalar) EnforceHomogeneous(e *Element2, xNodal []float64) {
	for n := 0; n < Q1NumChi; n++ {
		i, j := e.Node(n)
		if o.Flags[o.G.NodeIndex(i, j)] {
			xNodal[n] = 0
		}
	}
}

// FixResidual overwrites the residual at flagged nodes with
// weight*(iterate - prescribed value).
func (o *DirichletScalar) FixResidual(x, r []float64) {
	for idx, flagged := range o.Flags {
		if flagged {
			r[idx] = o.Weight * (x[idx] - o.Values[idx])
		}
	}
}

// FixResidualHomogeneous zeroes the residual at flagged nodes.
func (o *DirichletScalar) FixResidualHomogeneous(r []float64) {
	for idx, flagged := range o.Flags {
		if flagged {
			r[idx] = 0
		}
	}
}

// FixJacobian inserts the weight on the diagonal of flagged rows. Normal
// assembly left these rows and columns empty, so symmetry is preserved.
// Entries are inserted only for nodes owned by this process: the sparse
// solver sums contributions across processes and each constraint must
// appear exactly once.
func (o *DirichletScalar) FixJacobian(Kb MatrixPutter) {
	o.G.Points(func(i, j int) {
		idx := o.G.NodeIndex(i, j)
		if o.Flags[idx] {
			Kb.Put(idx, idx, o.Weight)
		}
	})
}

// DirichletVector is the 2-unknowns-per-node version of DirichletScalar,
// used by plane-stress models solving for horizontal velocity.
type DirichletVector struct {
	G      *grid.Grid
	Flags  []bool
	Values []Vec2
	Weight float64
}

// NewDirichletVector creates the enforcement helper. values may be nil when
// only the homogeneous variants are used.
func NewDirichletVector(g *grid.Grid, flags []bool, values []Vec2, weight float64) *DirichletVector {
	chk.IntAssert(len(flags), g.NumNodes())
	if values != nil {
		chk.IntAssert(len(values), g.NumNodes())
	}
	return &DirichletVector{G: g, Flags: flags, Values: values, Weight: weight}
}

// Constrain marks rows and columns of the element's flagged nodes invalid.
func (o *DirichletVector) Constrain(e *Element2) {
	for n := 0; n < Q1NumChi; n++ {
		i, j := e.Node(n)
		if o.Flags[o.G.NodeIndex(i, j)] {
			e.MarkRowInvalid(n)
			e.MarkColInvalid(n)
		}
	}
}

// Enforce overwrites element-local nodal velocities at flagged nodes with
// the prescribed values. xNodal is interleaved (u0,v0,u1,v1,...).
func (o *DirichletVector) Enforce(e *Element2, xNodal []float64) {
	for n := 0; n < Q1NumChi; n++ {
		i, j := e.Node(n)
		idx := o.G.NodeIndex(i, j)
		if o.Flags[idx] {
			xNodal[2*n] = o.Values[idx].U
			xNodal[2*n+1] = o.Values[idx].V
		}
	}
}

// EnforceHomogeneous overwrites element-local nodal velocities at flagged
// nodes with zero.
func (o *DirichletVector) EnforceHomogeneous(e *Element2, xNodal []float64) {
	for n := 0; n < Q1NumChi; n++ {
		i, j := e.Node(n)
		if o.Flags[o.G.NodeIndex(i, j)] {
			xNodal[2*n] = 0
			xNodal[2*n+1] = 0
		}
	}
}

// FixResidual overwrites the residual at flagged nodes with
// weight*(iterate - prescribed value), componentwise.
func (o *DirichletVector) FixResidual(x, r []float64) {
	for idx, flagged := range o.Flags {
		if flagged {
			r[2*idx] = o.Weight * (x[2*idx] - o.Values[idx].U)
			r[2*idx+1] = o.Weight * (x[2*idx+1] - o.Values[idx].V)
		}
	}
}

// FixResidualHomogeneous zeroes the residual at flagged nodes.
func (o *DirichletVector) FixResidualHomogeneous(r []float64) {
	for idx, flagged := range o.Flags {
		if flagged {
			r[2*idx] = 0
			r[2*idx+1] = 0
		}
	}
}

// FixJacobian inserts weight*I (2 by 2) on the diagonal block of flagged
// rows owned by this process.
func (o *DirichletVector) FixJacobian(Kb MatrixPutter) {
	o.G.Points(func(i, j int) {
		idx := o.G.NodeIndex(i, j)
		if o.Flags[idx] {
			Kb.Put(2*idx, 2*idx, o.Weight)
			Kb.Put(2*idx+1, 2*idx+1, o.Weight)
		}
	})
}
