// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"github.com/cpmech/gosl/chk"

	"github.com/sebastianbeyer/pism/grid"
)

// boxStencil holds a flag for the eight neighbors of a cell.
type boxStencil struct {
	n, e, s, w, ne, nw, se, sw bool
}

// RemoveNarrowTongues zeroes the thickness at tips of one-cell-wide ice
// tongues. A tongue tip is an icy cell connected to ice through exactly one
// of its four edge neighbors while the two corners flanking that neighbor
// and the three remaining edge neighbors are all ice free:
//
//	O O ?
//	X X O
//	O O ?
//
// An isolated nose, an icy cell with all four edge neighbors ice free, is
// removed as well.
//
// Grounded tips are removed only when the surrounding cells are ice-free
// ocean; floating tips when they are ice free of either kind. Grounded ice
// on bed at or above sea level is never touched. Decisions use the mask, not
// the thickness, so the thickness can be updated in place without depending
// on traversal order. The caller recomputes the mask afterwards.
func RemoveNarrowTongues(g *grid.Grid, mask []CellType, bed []float64, seaLevel float64, thickness []float64) {
	chk.IntAssert(len(mask), g.NumNodes())
	chk.IntAssert(len(bed), g.NumNodes())
	chk.IntAssert(len(thickness), g.NumNodes())

	cell := func(i, j int) CellType {
		return mask[g.NodeIndex(g.WrapX(i), g.WrapY(j))]
	}

	for j := 0; j < g.My; j++ {
		for i := 0; i < g.Mx; i++ {
			idx := g.NodeIndex(i, j)
			if mask[idx].IceFree() || (mask[idx] == Grounded && bed[idx] >= seaLevel) {
				continue
			}

			var free boxStencil
			if mask[idx] == Grounded {
				// grounded tips are removed only if surrounded by open water
				free.n = cell(i, j+1) == IceFreeOcean
				free.e = cell(i+1, j) == IceFreeOcean
				free.s = cell(i, j-1) == IceFreeOcean
				free.w = cell(i-1, j) == IceFreeOcean
				free.ne = cell(i+1, j+1) == IceFreeOcean
				free.nw = cell(i-1, j+1) == IceFreeOcean
				free.se = cell(i+1, j-1) == IceFreeOcean
				free.sw = cell(i-1, j-1) == IceFreeOcean
			} else {
				free.n = cell(i, j+1).IceFree()
				free.e = cell(i+1, j).IceFree()
				free.s = cell(i, j-1).IceFree()
				free.w = cell(i-1, j).IceFree()
				free.ne = cell(i+1, j+1).IceFree()
				free.nw = cell(i-1, j+1).IceFree()
				free.se = cell(i+1, j-1).IceFree()
				free.sw = cell(i-1, j-1).IceFree()
			}

			if (!free.w && free.nw && free.sw && free.n && free.s && free.e) ||
				(!free.n && free.nw && free.ne && free.w && free.e && free.s) ||
				(!free.e && free.ne && free.se && free.n && free.s && free.w) ||
				(!free.s && free.sw && free.se && free.w && free.e && free.n) ||
				(free.n && free.e && free.s && free.w) {
				thickness[idx] = 0
			}
		}
	}
}
