// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blatter

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"

	"github.com/sebastianbeyer/pism/grid"
	"github.com/sebastianbeyer/pism/nls"
	"github.com/sebastianbeyer/pism/stress"
)

func verbose() bool {
	chk.Verbose = io.Verbose
	return chk.Verbose
}

// solvePoisson runs the scalar verification problem on an m by m by m grid
// and returns the max-norm error.
func solvePoisson(tst *testing.T, m, nlevels int) float64 {
	g := grid.NewGrid2D(m, m, -1, 1, -1, 1, false, false, 1, 0, 1)
	cfg := stress.NewConfig()
	cfg.Mz = m
	cfg.NLevels = nlevels
	o, err := NewPoisson(g, cfg)
	if err != nil {
		tst.Fatalf("NewPoisson failed: %v", err)
	}
	defer o.Free()
	if err := o.Update(nil); err != nil {
		tst.Fatalf("Update failed: %v", err)
	}
	return o.MaxError()
}

func Test_poisson01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("poisson01. manufactured solution and grid convergence")

	err9 := solvePoisson(tst, 9, 1)
	err17 := solvePoisson(tst, 17, 1)
	io.Pforan("max errors: 9^3 %g   17^3 %g\n", err9, err17)

	if err9 > 0.1 {
		tst.Errorf("9^3 error too large: %g", err9)
	}
	if err17 > 0.6*err9 {
		tst.Errorf("halving the spacing must shrink the error: %g -> %g", err9, err17)
	}
}

func Test_poisson02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("poisson02. factory allocation and the multigrid solver")

	g := grid.NewGrid2D(9, 9, -1, 1, -1, 1, false, false, 1, 0, 1)
	cfg := stress.NewConfig()
	cfg.Mz = 9
	cfg.NLevels = 2
	m, err := stress.New("poisson", g, cfg)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}
	p := m.(*Poisson)
	defer p.Free()
	if err := p.Update(nil); err != nil {
		tst.Fatalf("Update failed: %v", err)
	}
	io.Pforan("max error with multigrid: %g\n", p.MaxError())
	if p.MaxError() > 0.1 {
		tst.Errorf("error too large: %g", p.MaxError())
	}
}

// solveTest1 runs the first verification case on an m by m horizontal grid
// and returns the max-norm error of the 3D velocity.
func solveTest1(tst *testing.T, m int) float64 {
	g := grid.NewGrid2D(m, m, 0, 1, 0, 1, false, false, 1, 0, 1)
	B := 1.0
	o, err := NewTest1(g, Test1Config(3), B)
	if err != nil {
		tst.Fatalf("NewTest1 failed: %v", err)
	}
	defer o.Free()

	nn := g.NumNodes()
	in := &stress.Inputs{
		Bed:       make([]float64, nn),
		Thickness: make([]float64, nn),
		Hardness:  make([]float64, nn),
		Tauc:      make([]float64, nn),
		SeaLevel:  -1000.0,
	}
	for n := 0; n < nn; n++ {
		in.Thickness[n] = 1.0
		in.Hardness[n] = B
	}
	if err := o.Update(in); err != nil {
		tst.Fatalf("Update failed: %v", err)
	}
	return o.Test1Error()
}

func Test_blatter01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("blatter01. exponential exact solution, linear flow law")

	err9 := solveTest1(tst, 9)
	err17 := solveTest1(tst, 17)
	io.Pforan("max errors: 9x9 %g   17x17 %g\n", err9, err17)

	if err9 > 0.6 {
		tst.Errorf("9x9 error too large: %g", err9)
	}
	if err17 > 0.7*err9 {
		tst.Errorf("halving the spacing must shrink the error: %g -> %g", err9, err17)
	}
}

// fdModel builds a small first-order model with order-one scales mixing
// exterior, grounded and floating columns, so the assembly crosses the
// grounding line and writes penalty rows.
func fdModel(tst *testing.T) (*Blatter, *grid.Grid) {
	g := grid.NewGrid2D(6, 5, 0, 5, 0, 4, false, false, 1, 0, 1)
	cfg := stress.NewConfig()
	cfg.Mz = 3
	cfg.MinThickness = 0.1
	cfg.FlowPrms = fun.Prms{
		&fun.Prm{N: "n", V: 3.0},
		&fun.Prm{N: "eps", V: 0.1},
	}
	cfg.SlidingPrms = fun.Prms{
		&fun.Prm{N: "q", V: 0.75},
		&fun.Prm{N: "uthreshold", V: 1.0},
		&fun.Prm{N: "eps", V: 0.1},
	}
	o, err := New(g, cfg)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}

	nn := g.NumNodes()
	in := &stress.Inputs{
		Bed:       make([]float64, nn),
		Thickness: make([]float64, nn),
		Hardness:  make([]float64, nn),
		Tauc:      make([]float64, nn),
		SeaLevel:  0,
	}
	for j := 0; j < g.My; j++ {
		for i := 0; i < g.Mx; i++ {
			n := g.NodeIndex(i, j)
			in.Bed[n] = 0.2 - 0.4*g.X(i)
			if i > 0 {
				in.Thickness[n] = 1.0
			}
			in.Hardness[n] = 1.0
			in.Tauc[n] = 1.0
		}
	}
	o.setGeometry(in)
	return o, g
}

func Test_blatter02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("blatter02. analytical Jacobian vs finite differences")

	m, g := fdModel(tst)
	defer m.Free()
	n3 := m.h.NumUnknowns(0)

	// a smooth nonzero iterate
	y := make([]float64, n3)
	for i := range y {
		y[i] = 0.05*math.Sin(1.7*float64(i)) + 0.02*math.Cos(0.3*float64(i))
	}

	assemble := func(y []float64) []float64 {
		fb := make([]float64, n3)
		if err := m.residual(y, fb); err != nil {
			tst.Fatalf("residual failed: %v", err)
		}
		m.fixResidual(y, fb)
		return fb
	}

	nnz := g.Mx * g.My * (m.cfg.Mz - 1) * 16 * 16
	Kb := new(nls.Matrix)
	Kb.Init(n3, nnz+n3)
	Kb.Start()
	if err := m.jacobianFinest(y, Kb, true); err != nil {
		tst.Fatalf("jacobian failed: %v", err)
	}
	A := Kb.ToMatrix()

	// the assembled matrix must be symmetric
	x := make([]float64, n3)
	for i := range x {
		x[i] = math.Cos(0.9 * float64(i))
	}
	ax := make([]float64, n3)
	atx := make([]float64, n3)
	la.SpMatVecMulAdd(ax, 1, A, x)
	la.SpMatTrVecMulAdd(atx, 1, A, x)
	chk.Array(tst, "K symmetry", 1e-11, ax, atx)

	// columns of the matrix against central differences of the residual
	h := 1e-5
	yp := make([]float64, n3)
	ym := make([]float64, n3)
	fd := make([]float64, n3)
	col := make([]float64, n3)
	ej := make([]float64, n3)
	for jc := 0; jc < n3; jc++ {
		copy(yp, y)
		copy(ym, y)
		yp[jc] += h
		ym[jc] -= h
		rp := assemble(yp)
		rm := assemble(ym)
		for i := range fd {
			fd[i] = (rp[i] - rm[i]) / (2.0 * h)
		}
		la.VecFill(col, 0)
		ej[jc] = 1
		la.SpMatVecMulAdd(col, 1, A, ej)
		ej[jc] = 0
		chk.Array(tst, io.Sf("column %3d", jc), 2e-6, col, fd)
	}
}

func Test_blatter03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("blatter03. flat-surface slab through the factory, multigrid")

	g := grid.NewGrid2D(9, 9, 0, 8e4, 0, 8e4, false, false, 1, 0, 1)
	cfg := stress.NewConfig()
	cfg.Mz = 3
	cfg.NLevels = 2
	m, err := stress.New("blatter", g, cfg)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}
	defer m.(*Blatter).Free()

	// grounded ice over a compensated bed: the surface is flat even at
	// the margin, so the driving stress vanishes and the ice stays put
	nn := g.NumNodes()
	in := &stress.Inputs{
		Bed:       make([]float64, nn),
		Thickness: make([]float64, nn),
		Hardness:  make([]float64, nn),
		Tauc:      make([]float64, nn),
		SeaLevel:  0,
	}
	for j := 1; j < g.My-1; j++ {
		for i := 1; i < g.Mx-1; i++ {
			in.Thickness[g.NodeIndex(i, j)] = 500.0
		}
	}
	for n := 0; n < nn; n++ {
		in.Bed[n] = 3500.0 - in.Thickness[n]
		in.Hardness[n] = 1e8
		in.Tauc[n] = 1e5
	}
	if err := m.Update(in); err != nil {
		tst.Fatalf("Update failed: %v", err)
	}
	if stress.MaxSpeed(m) > 1e-10 {
		tst.Errorf("ice with a flat surface must not move: max speed %g", stress.MaxSpeed(m))
	}
	b := m.(*Blatter)
	if len(b.BasalU()) != nn || len(b.BasalV()) != nn {
		tst.Errorf("basal velocity has the wrong size")
	}
}
