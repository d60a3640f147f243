// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mg

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"

	"github.com/sebastianbeyer/pism/geom"
	"github.com/sebastianbeyer/pism/grid"
)

func verbose() bool {
	chk.Verbose = io.Verbose
	return chk.Verbose
}

func Test_mg01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mg01. hierarchy construction and geometry restriction")

	mx := grid.PadForMultigrid(16, 3, 2) // 17
	my := grid.PadForMultigrid(16, 3, 2)
	g := grid.NewGrid2D(mx, my, 0, 1.6e6, 0, 1.6e6, false, false, 1, 0, 1)

	h := NewHierarchy(g, 4, 3, 2, 2)
	chk.IntAssert(h.NLevels(), 3)
	chk.IntAssert(h.Finest().G.Mx, 17)
	chk.IntAssert(h.Levels[1].G.Mx, 9)
	chk.IntAssert(h.Coarsest().G.Mx, 5)
	if h.Coarsest().P != nil {
		tst.Errorf("coarsest level must not carry a prolongation operator")
	}

	nn := g.NumNodes()
	bed := make([]float64, nn)
	H := make([]float64, nn)
	B := make([]float64, nn)
	tauc := make([]float64, nn)
	for j := 0; j < g.My; j++ {
		for i := 0; i < g.Mx; i++ {
			n := g.NodeIndex(i, j)
			bed[n] = float64(10*i + j)
			B[n] = 1e8
			tauc[n] = 5e4
			if i <= 8 {
				H[n] = 1000.0
			}
		}
	}
	hooked := 0
	h.AddRestrictHook(func(fine, coarse *Level) { hooked++ })
	h.SetGeometry(bed, H, B, tauc, 1.0)
	chk.IntAssert(hooked, 2)

	// injected values coincide with every second fine node
	l1 := h.Levels[1]
	for J := 0; J < l1.G.My; J++ {
		for I := 0; I < l1.G.Mx; I++ {
			chk.Float64(tst, io.Sf("bed(%d,%d)", I, J), 1e-15,
				l1.Bed[l1.G.NodeIndex(I, J)], bed[g.NodeIndex(2*I, 2*J)])
		}
	}

	// the coarse levels see the same ice margin
	lc := h.Coarsest()
	for J := 0; J < lc.G.My; J++ {
		if lc.NodeType[lc.G.NodeIndex(1, J)] != geom.Interior {
			tst.Errorf("coarse node (1,%d) must be interior", J)
		}
		if lc.NodeType[lc.G.NodeIndex(4, J)] != geom.Exterior {
			tst.Errorf("coarse node (4,%d) must be exterior", J)
		}
	}
}

func Test_mg02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mg02. prolongation and residual restriction")

	g := grid.NewGrid2D(5, 5, 0, 4, 0, 4, false, false, 1, 0, 1)
	mz, ndof := 2, 1
	h := NewHierarchy(g, mz, 2, 2, ndof)

	nf := h.NumUnknowns(0)
	nc := h.NumUnknowns(1)
	chk.IntAssert(nf, 5*5*2)
	chk.IntAssert(nc, 3*3*2)

	// a constant is reproduced exactly
	uc := make([]float64, nc)
	la.VecFill(uc, 3.5)
	u := make([]float64, nf)
	h.Prolong(0, u, uc)
	for n := 0; n < nf; n++ {
		chk.Float64(tst, io.Sf("const u[%d]", n), 1e-15, u[n], 3.5)
	}

	// a linear coarse field interpolates linearly
	// index layout is ((k*My+j)*Mx+i)*ndof+d
	gc := h.Levels[1].G
	idxc := func(i, j, k int) int { return (k*gc.My+j)*gc.Mx + i }
	idxf := func(i, j, k int) int { return (k*g.My+j)*g.Mx + i }
	for k := 0; k < mz; k++ {
		for J := 0; J < gc.My; J++ {
			for I := 0; I < gc.Mx; I++ {
				uc[idxc(I, J, k)] = gc.X(I)
			}
		}
	}
	la.VecFill(u, 0)
	h.Prolong(0, u, uc)
	for k := 0; k < mz; k++ {
		for j := 0; j < g.My; j++ {
			for i := 0; i < g.Mx; i++ {
				chk.Float64(tst, io.Sf("u(%d,%d,%d)", i, j, k), 1e-14, u[idxf(i, j, k)], g.X(i))
			}
		}
	}

	// restriction is the transpose: a fine delta at a coinciding node
	// lands with weight one on the matching coarse node
	r := make([]float64, nf)
	rc := make([]float64, nc)
	r[idxf(2, 2, 1)] = 1.0
	h.RestrictResidual(0, rc, r)
	chk.Float64(tst, "rc at (1,1,1)", 1e-15, rc[idxc(1, 1, 1)], 1.0)
}
