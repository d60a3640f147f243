// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_grid01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("grid01. decomposition covers the index space")

	for _, size := range []int{1, 2, 3, 4, 6, 7} {
		for _, mx := range []int{5, 11, 16} {
			my := 9
			count := make([]int, mx*my)
			nElems := 0
			for rank := 0; rank < size; rank++ {
				g := NewGrid2D(mx, my, -1, 1, -1, 1, false, false, 1, rank, size)
				g.Points(func(i, j int) {
					count[g.NodeIndex(i, j)]++
				})
				g.Elements(func(i, j int) {
					nElems++
				})
			}
			for n := 0; n < mx*my; n++ {
				if count[n] != 1 {
					tst.Errorf("size=%d mx=%d: node %d visited %d times", size, mx, n, count[n])
					return
				}
			}
			chk.IntAssert(nElems, (mx-1)*(my-1))
		}
	}
}

func Test_grid02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("grid02. ghosted iteration: clipping and wrapping")

	// bounded axes clip at the global range
	g := NewGrid2D(6, 5, 0, 5, 0, 4, false, false, 2, 0, 1)
	n := 0
	g.PointsWithGhosts(2, func(i, j int) {
		n++
		if i < 0 || i > 5 || j < 0 || j > 4 {
			tst.Errorf("out-of-range ghost node (%d,%d)", i, j)
		}
	})
	chk.IntAssert(n, 6*5)

	// periodic axes wrap modulo the global extent
	gp := NewGrid2D(6, 5, 0, 6, 0, 5, true, true, 1, 0, 1)
	seen := map[[2]int]int{}
	gp.PointsWithGhosts(1, func(i, j int) {
		seen[[2]int{i, j}]++
	})
	// halo columns -1 and 6 wrap onto 5 and 0, so wrapped edge nodes are
	// visited more than once but never out of range
	for ij := range seen {
		if ij[0] < 0 || ij[0] > 5 || ij[1] < 0 || ij[1] > 4 {
			tst.Errorf("unwrapped ghost node (%d,%d)", ij[0], ij[1])
		}
	}

	// requesting more halo than allocated is a programming error
	defer func() {
		if recover() == nil {
			tst.Errorf("width beyond the allocated halo must panic")
		}
	}()
	g.PointsWithGhosts(3, func(i, j int) {})
}

func Test_grid03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("grid03. coordinates, radius and null strip")

	g := NewGrid2D(5, 5, -2, 2, -2, 2, false, false, 1, 0, 1)
	chk.Float64(tst, "dx", 1e-15, g.Dx, 1.0)
	chk.Float64(tst, "dy", 1e-15, g.Dy, 1.0)
	chk.Float64(tst, "x0", 1e-15, g.X(0), -2.0)
	chk.Float64(tst, "x4", 1e-15, g.X(4), 2.0)
	chk.Float64(tst, "r22", 1e-15, g.Radius(2, 2), 0.0)
	chk.Float64(tst, "r42", 1e-15, g.Radius(4, 2), 2.0)

	if !g.InNullStrip(0, 2, 0.5) {
		tst.Errorf("edge node must be inside the null strip")
	}
	if g.InNullStrip(2, 2, 0.5) {
		tst.Errorf("centre node must be outside the null strip")
	}
	if g.InNullStrip(0, 0, 0) {
		tst.Errorf("zero-width null strip must be empty")
	}
}

func Test_grid04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("grid04. multigrid padding and coarsening")

	// (mx-1) already divisible: no padding
	chk.IntAssert(PadForMultigrid(17, 3, 2), 17)
	// pad on the upper edge only
	chk.IntAssert(PadForMultigrid(15, 3, 2), 17)
	chk.IntAssert(PadForMultigrid(18, 4, 2), 25)
	chk.IntAssert(PadForMultigrid(10, 1, 2), 10)

	g := NewGrid2D(17, 17, -1, 1, -1, 1, false, false, 1, 0, 1)
	c := g.Coarsen(2)
	chk.IntAssert(c.Mx, 9)
	chk.IntAssert(c.My, 9)
	chk.Float64(tst, "cdx", 1e-15, c.Dx, 2*g.Dx)
	chk.Float64(tst, "xmax", 1e-15, c.X(c.Mx-1), g.X(g.Mx-1))

	cc := c.Coarsen(2)
	chk.IntAssert(cc.Mx, 5)
}

func Test_grid05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("grid05. terrain-following vertical coordinate")

	b, H := -100.0, 400.0
	mz := 5
	chk.Float64(tst, "z0", 1e-15, SigmaZ(b, H, mz, 0), -100.0)
	chk.Float64(tst, "z4", 1e-15, SigmaZ(b, H, mz, mz-1), 300.0)
	chk.Float64(tst, "z2", 1e-15, SigmaZ(b, H, mz, 2), 100.0)

	// zero thickness collapses the column onto the bed
	for k := 0; k < mz; k++ {
		chk.Float64(tst, io.Sf("flat z%d", k), 1e-15, SigmaZ(b, 0, mz, k), b)
	}
}
