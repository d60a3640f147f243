// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/sebastianbeyer/pism/grid"
)

func verbose() bool {
	chk.Verbose = io.Verbose
	return chk.Verbose
}

func testGrid(mx, my int) *grid.Grid {
	return grid.NewGrid2D(mx, my, 0, float64(mx-1), 0, float64(my-1), false, false, 1, 0, 1)
}

func Test_geom01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("geom01. node classification of a step function")

	g := testGrid(7, 7)
	H := make([]float64, g.NumNodes())
	types := make([]NodeType, g.NumNodes())

	// ice occupies i <= 3, full height
	for j := 0; j < g.My; j++ {
		for i := 0; i <= 3; i++ {
			H[g.NodeIndex(i, j)] = 100.0
		}
	}
	ClassifyNodes(g, H, 1.0, types)

	for j := 0; j < g.My; j++ {
		for i := 0; i < g.Mx; i++ {
			t := types[g.NodeIndex(i, j)]
			var want NodeType
			switch {
			case i < 3:
				want = Interior
			case i == 3:
				want = Boundary
			case i == 4:
				want = Exterior
			default:
				want = Exterior
			}
			if t != want {
				tst.Errorf("node (%d,%d): %v != %v", i, j, t, want)
			}
		}
	}

	// reclassification with unchanged thickness gives the same answer
	again := make([]NodeType, g.NumNodes())
	ClassifyNodes(g, H, 1.0, again)
	for n := 0; n < g.NumNodes(); n++ {
		if again[n] != types[n] {
			tst.Errorf("classification is not reproducible at node %d", n)
		}
	}

	if !ExteriorElement([]NodeType{Interior, Boundary, Exterior, Interior}) {
		tst.Errorf("element with an exterior node must be excluded")
	}
	if ExteriorElement([]NodeType{Interior, Boundary, Boundary, Interior}) {
		tst.Errorf("element without exterior nodes must be assembled")
	}
}

func Test_geom02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("geom02. fully icy and ice-free grids")

	g := testGrid(5, 4)
	H := make([]float64, g.NumNodes())
	types := make([]NodeType, g.NumNodes())

	ClassifyNodes(g, H, 1.0, types)
	for n, t := range types {
		if t != Exterior {
			tst.Errorf("ice-free grid: node %d is %v, not exterior", n, t)
		}
	}

	for n := range H {
		H[n] = 50.0
	}
	ClassifyNodes(g, H, 1.0, types)
	for n, t := range types {
		if t != Interior {
			tst.Errorf("fully icy grid: node %d is %v, not interior", n, t)
		}
	}
}

func Test_geom03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("geom03. cell type mask and floatation")

	g := testGrid(4, 2)
	colBed := []float64{100, -100, -2000, -2000}
	colH := []float64{0, 500, 1000, 0}
	bed := make([]float64, g.NumNodes())
	H := make([]float64, g.NumNodes())
	mask := make([]CellType, g.NumNodes())
	for j := 0; j < g.My; j++ {
		for i := 0; i < g.Mx; i++ {
			bed[g.NodeIndex(i, j)] = colBed[i]
			H[g.NodeIndex(i, j)] = colH[i]
		}
	}

	ComputeMask(g, bed, H, 0, 1.0, mask)

	want := []CellType{IceFreeBedrock, Grounded, Floating, IceFreeOcean}
	for i := range want {
		if mask[g.NodeIndex(i, 0)] != want[i] {
			tst.Errorf("cell %d: %v != %v", i, mask[g.NodeIndex(i, 0)], want[i])
		}
	}

	// grounded cells have non-positive floatation, floating cells positive
	if Floatation(bed[1], H[1], 0) > 0 {
		tst.Errorf("cell 1 must be grounded")
	}
	if Floatation(bed[2], H[2], 0) <= 0 {
		tst.Errorf("cell 2 must be floating")
	}
	// neutral buoyancy counts as grounded
	b, h := -910.0, 1028.0
	chk.Float64(tst, "floatation at neutral buoyancy", 1e-12, Floatation(b, h, 0), 0)
	for n := 0; n < g.NumNodes(); n++ {
		bed[n], H[n] = b, h
	}
	ComputeMask(g, bed, H, 0, 1.0, mask)
	if mask[0] != Grounded {
		tst.Errorf("neutral buoyancy: %v != grounded", mask[0])
	}
}

func Test_geom04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("geom04. removing narrow ice tongues")

	g := testGrid(5, 5)
	nn := g.NumNodes()
	seaLevel := 0.0

	build := func(icy map[[2]int]float64) (bed, H []float64, mask []CellType) {
		bed = make([]float64, nn)
		H = make([]float64, nn)
		mask = make([]CellType, nn)
		for n := range bed {
			bed[n] = -2000 // deep ocean everywhere
		}
		for ij, h := range icy {
			H[g.NodeIndex(ij[0], ij[1])] = h
		}
		ComputeMask(g, bed, H, seaLevel, 1.0, mask)
		return
	}

	// an icy column at i=1 with a one-cell-wide tongue pointing east:
	// only the tip at (3,2) goes
	cells := map[[2]int]float64{
		{1, 1}: 200, {1, 2}: 200, {1, 3}: 200,
		{2, 2}: 200, {3, 2}: 200,
	}
	bed, H, mask := build(cells)
	RemoveNarrowTongues(g, mask, bed, seaLevel, H)
	chk.Float64(tst, "tip thickness", 1e-15, H[g.NodeIndex(3, 2)], 0)
	for ij := range cells {
		if ij == [2]int{3, 2} {
			continue
		}
		if H[g.NodeIndex(ij[0], ij[1])] == 0 {
			tst.Errorf("only the tip of the tongue may be removed, lost (%d,%d)", ij[0], ij[1])
		}
	}

	// ice in a corner flanking the connection keeps the tip
	cells[[2]int{2, 3}] = 200
	bed, H, mask = build(cells)
	RemoveNarrowTongues(g, mask, bed, seaLevel, H)
	if H[g.NodeIndex(3, 2)] == 0 {
		tst.Errorf("tip with an icy flanking corner must survive")
	}

	// an isolated floating nose with open water on all sides goes too
	bed, H, mask = build(map[[2]int]float64{{2, 2}: 200})
	RemoveNarrowTongues(g, mask, bed, seaLevel, H)
	chk.Float64(tst, "floating nose thickness", 1e-15, H[g.NodeIndex(2, 2)], 0)

	// the middle of a one-cell-wide strip has two opposite icy neighbors
	// and survives
	bed, H, mask = build(map[[2]int]float64{{1, 2}: 200, {2, 2}: 200, {3, 2}: 200})
	RemoveNarrowTongues(g, mask, bed, seaLevel, H)
	if H[g.NodeIndex(2, 2)] == 0 {
		tst.Errorf("cell with two opposite icy neighbors must survive")
	}

	// a grounded nose below sea level surrounded by ocean is removed
	bed3 := make([]float64, nn)
	H3 := make([]float64, nn)
	mask3 := make([]CellType, nn)
	for n := range bed3 {
		bed3[n] = -100
	}
	H3[g.NodeIndex(2, 2)] = 200
	ComputeMask(g, bed3, H3, seaLevel, 1.0, mask3)
	if mask3[g.NodeIndex(2, 2)] != Grounded {
		tst.Errorf("nose cell must be grounded, is %v", mask3[g.NodeIndex(2, 2)])
	}
	RemoveNarrowTongues(g, mask3, bed3, seaLevel, H3)
	chk.Float64(tst, "grounded nose thickness", 1e-15, H3[g.NodeIndex(2, 2)], 0)

	// grounded ice on bed above sea level is never removed
	bed2 := make([]float64, nn)
	H2 := make([]float64, nn)
	mask2 := make([]CellType, nn)
	for n := range bed2 {
		bed2[n] = 100
	}
	H2[g.NodeIndex(2, 2)] = 50
	ComputeMask(g, bed2, H2, seaLevel, 1.0, mask2)
	RemoveNarrowTongues(g, mask2, bed2, seaLevel, H2)
	if H2[g.NodeIndex(2, 2)] == 0 {
		tst.Errorf("grounded ice above sea level must survive")
	}
}
