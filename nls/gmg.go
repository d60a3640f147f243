// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nls

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/mpi"

	"github.com/sebastianbeyer/pism/mg"
)

// LevelJacobian assembles the Jacobian of hierarchy level l into Kb,
// linearized about yl, the solution injected onto that level. Kb.Start has
// been called already.
type LevelJacobian func(l int, yl []float64, Kb *Matrix) error

// GMG solves linearized systems with a geometric multigrid V-cycle: damped
// Jacobi smoothing on every level, rediscretized coarse operators, and a
// direct solve on the coarsest grid. It runs on a single process.
type GMG struct {
	H   *mg.Hierarchy
	Asm LevelJacobian

	NsmoothPre  int     // pre-smoothing sweeps
	NsmoothPost int     // post-smoothing sweeps
	Omega       float64 // Jacobi damping
	Ncycmax     int     // max number of V-cycles
	Tol         float64 // relative residual tolerance

	mats []*Matrix
	ccm  []*la.CCMatrix
	ys   [][]float64 // per-level solutions (linearization points)
	xs   [][]float64 // per-level corrections
	bs   [][]float64 // per-level right-hand sides
	rs   [][]float64 // per-level residuals

	lis      la.LinSol
	initLSol bool
}

// NewGMG allocates a multigrid solver on hierarchy h. nnz[l] bounds the
// number of Jacobian entries on level l.
func NewGMG(h *mg.Hierarchy, nnz []int, asm LevelJacobian) (o *GMG) {
	if mpi.IsOn() && mpi.Size() > 1 {
		chk.Panic("the multigrid solver cannot run distributed")
	}
	chk.IntAssert(len(nnz), h.NLevels())
	o = &GMG{
		H:           h,
		Asm:         asm,
		NsmoothPre:  2,
		NsmoothPost: 2,
		Omega:       0.8,
		Ncycmax:     30,
		Tol:         1e-8,
		lis:         la.GetSolver("umfpack"),
		initLSol:    true,
	}
	nl := h.NLevels()
	o.mats = make([]*Matrix, nl)
	o.ccm = make([]*la.CCMatrix, nl)
	for l := 0; l < nl; l++ {
		n := h.NumUnknowns(l)
		o.mats[l] = new(Matrix)
		o.mats[l].Init(n, nnz[l])
		o.ys = append(o.ys, make([]float64, n))
		o.xs = append(o.xs, make([]float64, n))
		o.bs = append(o.bs, make([]float64, n))
		o.rs = append(o.rs, make([]float64, n))
	}
	return
}

// Free releases linear solver resources
func (o *GMG) Free() {
	o.lis.Free()
}

// ResetPattern forces re-initialisation of the coarse direct solver before
// the next solve. Callers whose Jacobian sparsity pattern changes between
// solves must call this.
func (o *GMG) ResetPattern() {
	o.lis.Free()
	o.lis = la.GetSolver("umfpack")
	o.initLSol = true
}

// Solve computes w approximating the solution of K*w = fb, where K is the
// finest-level Jacobian linearized about y.
func (o *GMG) Solve(w, fb, y []float64) (err error) {

	nl := o.H.NLevels()

	// inject the linearization point onto every level
	la.VecCopy(o.ys[0], 1, y)
	for l := 0; l+1 < nl; l++ {
		o.H.InjectSolution(l, o.ys[l+1], o.ys[l])
	}

	// assemble the per-level operators
	for l := 0; l < nl; l++ {
		o.mats[l].Start()
		if err = o.Asm(l, o.ys[l], o.mats[l]); err != nil {
			return
		}
		o.ccm[l] = o.mats[l].ToMatrix()
	}

	// factorise the coarsest operator
	last := nl - 1
	if o.initLSol {
		if err = o.lis.InitR(&o.mats[last].T, false, false, false); err != nil {
			return chk.Err("cannot initialise coarse solver:\n%v", err)
		}
		o.initLSol = false
	}
	if err = o.lis.Fact(); err != nil {
		return chk.Err("coarse factorisation failed:\n%v", err)
	}

	// V-cycles until the relative residual drops below Tol
	la.VecFill(w, 0)
	fb0 := la.VecLargest(fb, 1)
	if fb0 == 0 {
		return
	}
	for cyc := 0; cyc < o.Ncycmax; cyc++ {
		if err = o.vcycle(0, w, fb); err != nil {
			return
		}
		o.residual(0, o.rs[0], fb, w)
		if la.VecLargest(o.rs[0], 1) < o.Tol*fb0 {
			return
		}
	}
	return chk.Err("multigrid did not reduce the residual by %g within %d cycles", o.Tol, o.Ncycmax)
}

// residual computes r := b - K*x on level l
func (o *GMG) residual(l int, r, b, x []float64) {
	la.VecCopy(r, 1, b)
	la.SpMatVecMulAdd(r, -1, o.ccm[l], x)
}

// smooth performs one damped Jacobi sweep on level l
func (o *GMG) smooth(l int, x, b []float64) {
	o.residual(l, o.rs[l], b, x)
	diag := o.mats[l].Diagonal()
	for i, d := range diag {
		if d == 0 {
			chk.Panic("zero diagonal entry at row %d of level %d", i, l)
		}
		x[i] += o.Omega * o.rs[l][i] / d
	}
}

// vcycle improves x approximating K*x = b on level l
func (o *GMG) vcycle(l int, x, b []float64) (err error) {

	// coarsest level: direct solve
	if l == o.H.NLevels()-1 {
		return o.lis.SolveR(x, b, false)
	}

	// pre-smoothing
	for s := 0; s < o.NsmoothPre; s++ {
		o.smooth(l, x, b)
	}

	// restrict the residual
	o.residual(l, o.rs[l], b, x)
	o.H.RestrictResidual(l, o.bs[l+1], o.rs[l])

	// coarse-grid correction
	la.VecFill(o.xs[l+1], 0)
	if err = o.vcycle(l+1, o.xs[l+1], o.bs[l+1]); err != nil {
		return
	}
	o.H.Prolong(l, x, o.xs[l+1])

	// post-smoothing
	for s := 0; s < o.NsmoothPost; s++ {
		o.smooth(l, x, b)
	}
	return
}
