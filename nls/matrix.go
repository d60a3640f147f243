// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nls implements the nonlinear solver used by the stress balance
// models: a Newton iteration with residual-based convergence control and,
// optionally, a geometric multigrid solver for the linearized systems.
package nls

import (
	"github.com/cpmech/gosl/la"
)

// Matrix accumulates Jacobian entries in triplet form and tracks the matrix
// diagonal, which the multigrid smoother needs.
type Matrix struct {
	T la.Triplet

	n    int
	diag []float64
}

// Init allocates space for an n by n matrix with at most nnz entries
func (o *Matrix) Init(n, nnz int) {
	o.n = n
	o.T.Init(n, n, nnz)
	o.diag = make([]float64, n)
}

// Start resets the matrix for a new assembly pass
func (o *Matrix) Start() {
	o.T.Start()
	la.VecFill(o.diag, 0)
}

// Put adds v to entry (r,c)
func (o *Matrix) Put(r, c int, v float64) {
	o.T.Put(r, c, v)
	if r == c {
		o.diag[r] += v
	}
}

// Size returns the matrix dimension
func (o *Matrix) Size() int { return o.n }

// Diagonal returns the accumulated matrix diagonal
func (o *Matrix) Diagonal() []float64 { return o.diag }

// ToMatrix returns the compressed-column form of the assembled matrix
func (o *Matrix) ToMatrix() *la.CCMatrix { return o.T.ToMatrix(nil) }
