// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nls

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/mpi"
)

// Residual computes fb := R(y). On distributed runs every process fills in
// the contributions of its own elements; the solver joins the partial sums.
type Residual func(y, fb []float64) error

// PostReduce runs after the partial residuals have been joined. Rows that
// must be set identically on every process rather than summed, such as
// Dirichlet rows, are written here.
type PostReduce func(y, fb []float64)

// Jacobian assembles dR/dy at y into Kb. Kb.Start has been called already.
// On distributed runs every process puts the entries of its own elements;
// the linear solver sums duplicates.
type Jacobian func(y []float64, Kb *Matrix, firstIt bool) error

// Config holds the parameters of the Newton iteration
type Config struct {
	NmaxIt  int     // max number of iterations
	FbTol   float64 // tolerance for convergence on fb
	FbMin   float64 // minimum value of fb
	DvgCtrl bool    // stop on divergence instead of iterating until NmaxIt
	NdvgMax int     // max number of continued divergence

	LinSol    string // "umfpack" or "mumps"
	Symmetric bool   // assembled matrices are symmetric
	Verbose   bool   // linear solver verbosity
	Timing    bool   // linear solver timing
	ShowR     bool   // show residuals during iterations
}

// NewConfig returns a configuration with default values
func NewConfig() *Config {
	return &Config{
		NmaxIt:  20,
		FbTol:   1e-8,
		FbMin:   1e-14,
		DvgCtrl: true,
		NdvgMax: 20,
		LinSol:  "umfpack",
	}
}

// Newton solves R(y) = 0 given callbacks computing the residual and the
// Jacobian. The iteration converges when the largest residual component
// drops below FbTol times its initial value, or below FbMin.
type Newton struct {
	Conf *Config

	n     int
	resid Residual
	jac   Jacobian

	Fb, Wb []float64
	Kb     *Matrix
	Gmg    *GMG       // when set (serial runs only), replaces the direct solver
	Post   PostReduce // optional; writes replicated rows after the join

	lis      la.LinSol
	initLSol bool
}

// NewNewton allocates a solver for n unknowns with at most nnz Jacobian
// entries per process.
func NewNewton(conf *Config, n, nnz int, resid Residual, jac Jacobian) (o *Newton) {
	if conf == nil {
		conf = NewConfig()
	}
	o = &Newton{
		Conf:     conf,
		n:        n,
		resid:    resid,
		jac:      jac,
		Fb:       make([]float64, n),
		Wb:       make([]float64, n),
		Kb:       new(Matrix),
		initLSol: true,
	}
	o.Kb.Init(n, nnz)
	if mpi.IsOn() && conf.LinSol == "umfpack" && mpi.Size() > 1 {
		chk.Panic("umfpack cannot handle distributed matrices; use mumps instead")
	}
	o.lis = la.GetSolver(conf.LinSol)
	return
}

// Free releases linear solver resources
func (o *Newton) Free() {
	o.lis.Free()
}

// ResetPattern forces re-initialisation of the linear solver before the
// next solve. Callers whose Jacobian sparsity pattern changes between
// solves (e.g. with the ice extent) must call this.
func (o *Newton) ResetPattern() {
	o.lis.Free()
	o.lis = la.GetSolver(o.Conf.LinSol)
	o.initLSol = true
}

// call runs a callback, converting panics into errors so that all processes
// reach the collective error check below even when one of them fails.
func call(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = chk.Err("%v", r)
		}
	}()
	return f()
}

// checkCollective makes an error on any process an error on every process
func checkCollective(err error) error {
	if !mpi.IsOn() || mpi.Size() < 2 {
		return err
	}
	flag := []float64{0}
	if err != nil {
		flag[0] = 1
	}
	work := []float64{0}
	mpi.AllReduceSum(flag, work)
	if flag[0] > 0 {
		if err != nil {
			return err
		}
		return chk.Err("a peer process failed during assembly")
	}
	return nil
}

// Solve performs the Newton iteration starting from (and updating) y.
// It returns the number of iterations taken.
func (o *Newton) Solve(y []float64) (it int, err error) {

	var largFb, largFb0, prevFb float64
	ndvg := 0

	if o.Conf.ShowR {
		io.Pf("%4s%23s\n", "it", "largFb")
	}

	for it = 0; it < o.Conf.NmaxIt; it++ {

		// compute residual
		la.VecFill(o.Fb, 0)
		err = checkCollective(call(func() error { return o.resid(y, o.Fb) }))
		if err != nil {
			return
		}

		// join all partial sums of fb
		if mpi.IsOn() && mpi.Size() > 1 {
			mpi.AllReduceSum(o.Fb, o.Wb)
		}
		if o.Post != nil {
			o.Post(y, o.Fb)
		}

		// check convergence on fb
		largFb = la.VecLargest(o.Fb, 1)
		if o.Conf.ShowR {
			io.Pf("%4d%23.15e\n", it, largFb)
		}
		if it == 0 {
			largFb0 = largFb
		} else {
			if largFb < o.Conf.FbTol*largFb0 {
				return
			}
			if largFb < o.Conf.FbMin {
				return
			}
			if largFb > prevFb {
				ndvg++
				if o.Conf.DvgCtrl && ndvg > o.Conf.NdvgMax {
					err = chk.Err("iterations diverging after %d steps: %g > %g", it, largFb, prevFb)
					return
				}
			}
		}
		prevFb = largFb

		// solve for wb := δy
		if o.Gmg != nil {

			// the multigrid solver assembles its own per-level matrices
			err = call(func() error { return o.Gmg.Solve(o.Wb, o.Fb, y) })
			if err != nil {
				return
			}

		} else {

			// assemble Jacobian matrix
			o.Kb.Start()
			err = checkCollective(call(func() error { return o.jac(y, o.Kb, it == 0) }))
			if err != nil {
				return
			}
			if o.initLSol {
				err = o.lis.InitR(&o.Kb.T, o.Conf.Symmetric, o.Conf.Verbose, o.Conf.Timing)
				if err != nil {
					return it, chk.Err("cannot initialise linear solver:\n%v", err)
				}
				o.initLSol = false
			}
			err = o.lis.Fact()
			if err != nil {
				return it, chk.Err("factorisation failed:\n%v", err)
			}
			err = o.lis.SolveR(o.Wb, o.Fb, false)
			if err != nil {
				return it, chk.Err("linear solve failed:\n%v", err)
			}
		}

		// update primary variables (K*wb = R, so y -= wb)
		for i := 0; i < o.n; i++ {
			y[i] -= o.Wb[i]
		}
	}

	err = chk.Err("convergence cannot be achieved within %d iterations. largFb=%g largFb0=%g", o.Conf.NmaxIt, largFb, largFb0)
	return
}
