// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nls

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"

	"github.com/sebastianbeyer/pism/grid"
	"github.com/sebastianbeyer/pism/mg"
)

func verbose() bool {
	chk.Verbose = io.Verbose
	return chk.Verbose
}

func Test_nls01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("nls01. newton iteration on a small nonlinear system")

	// R0 = y0^2 + y1 - 3
	// R1 = y0 + y1^2 - 5      solution: y = (1, 2)
	resid := func(y, fb []float64) error {
		fb[0] += y[0]*y[0] + y[1] - 3.0
		fb[1] += y[0] + y[1]*y[1] - 5.0
		return nil
	}
	jac := func(y []float64, Kb *Matrix, firstIt bool) error {
		Kb.Put(0, 0, 2.0*y[0])
		Kb.Put(0, 1, 1.0)
		Kb.Put(1, 0, 1.0)
		Kb.Put(1, 1, 2.0*y[1])
		return nil
	}

	conf := NewConfig()
	sol := NewNewton(conf, 2, 4, resid, jac)
	defer sol.Free()

	y := []float64{0.5, 1.5}
	it, err := sol.Solve(y)
	if err != nil {
		tst.Errorf("Solve failed: %v", err)
		return
	}
	io.Pforan("converged after %d iterations\n", it)
	chk.Array(tst, "y", 1e-8, y, []float64{1, 2})
	if it < 1 || it > conf.NmaxIt {
		tst.Errorf("unexpected iteration count: %d", it)
	}

	// a callback panic becomes an error, not a crash
	bad := NewNewton(conf, 2, 4, func(y, fb []float64) error {
		chk.Panic("synthetic failure")
		return nil
	}, jac)
	defer bad.Free()
	if _, err := bad.Solve([]float64{0, 0}); err == nil {
		tst.Errorf("a panicking callback must surface as an error")
	}
}

func Test_nls02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("nls02. multigrid solve of a Poisson problem")

	mx := grid.PadForMultigrid(16, 3, 2) // 17
	g := grid.NewGrid2D(mx, mx, 0, 1, 0, 1, false, false, 1, 0, 1)
	h := mg.NewHierarchy(g, 1, 3, 2, 1)

	onBoundary := func(gl *grid.Grid, i, j int) bool {
		return i == 0 || j == 0 || i == gl.Mx-1 || j == gl.My-1
	}

	// five-point Laplacian with identity rows on the boundary
	asm := func(l int, yl []float64, Kb *Matrix) error {
		gl := h.Levels[l].G
		cx := 1.0 / (gl.Dx * gl.Dx)
		cy := 1.0 / (gl.Dy * gl.Dy)
		for j := 0; j < gl.My; j++ {
			for i := 0; i < gl.Mx; i++ {
				row := gl.NodeIndex(i, j)
				if onBoundary(gl, i, j) {
					Kb.Put(row, row, 1.0)
					continue
				}
				Kb.Put(row, row, 2.0*cx+2.0*cy)
				Kb.Put(row, gl.NodeIndex(i-1, j), -cx)
				Kb.Put(row, gl.NodeIndex(i+1, j), -cx)
				Kb.Put(row, gl.NodeIndex(i, j-1), -cy)
				Kb.Put(row, gl.NodeIndex(i, j+1), -cy)
			}
		}
		return nil
	}

	nnz := make([]int, h.NLevels())
	for l := range nnz {
		nnz[l] = 5 * h.NumUnknowns(l)
	}
	gmg := NewGMG(h, nnz, asm)
	defer gmg.Free()

	// solve the linear problem A*y = f through the Newton loop
	n := h.NumUnknowns(0)
	f := make([]float64, n)
	for j := 1; j < g.My-1; j++ {
		for i := 1; i < g.Mx-1; i++ {
			f[g.NodeIndex(i, j)] = 1.0
		}
	}
	Ay := make([]float64, n)
	applyA := func(y []float64) {
		la.VecFill(Ay, 0)
		m := new(Matrix)
		m.Init(n, 5*n)
		asm(0, y, m)
		la.SpMatVecMulAdd(Ay, 1, m.ToMatrix(), y)
	}
	resid := func(y, fb []float64) error {
		applyA(y)
		for i := 0; i < n; i++ {
			fb[i] += Ay[i] - f[i]
		}
		return nil
	}

	sol := NewNewton(NewConfig(), n, 1, resid, nil)
	defer sol.Free()
	sol.Gmg = gmg

	y := make([]float64, n)
	it, err := sol.Solve(y)
	if err != nil {
		tst.Errorf("Solve failed: %v", err)
		return
	}
	io.Pforan("converged after %d iterations\n", it)

	// the discrete solution satisfies the system
	applyA(y)
	for i := 0; i < n; i++ {
		if math.Abs(Ay[i]-f[i]) > 1e-6 {
			tst.Errorf("residual too large at row %d: %g", i, Ay[i]-f[i])
			return
		}
	}

	// boundary rows stay at zero and the center is positive
	chk.Float64(tst, "y at corner", 1e-15, y[g.NodeIndex(0, 0)], 0)
	if y[g.NodeIndex(g.Mx/2, g.My/2)] <= 0 {
		tst.Errorf("solution must be positive inside the domain")
	}
}
