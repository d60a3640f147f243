// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"github.com/cpmech/gosl/chk"

	"github.com/sebastianbeyer/pism/grid"
)

// Densities of ice and sea water [kg/m3] used by the floatation criterion.
const (
	RhoIce   = 910.0
	RhoOcean = 1028.0
)

// CellType describes one cell of the ice cover mask.
type CellType int8

const (
	// IceFreeBedrock is ice-free land above sea level.
	IceFreeBedrock CellType = iota
	// Grounded is ice resting on the bed.
	Grounded
	// Floating is ice shelf (ice thinner than the floatation thickness).
	Floating
	// IceFreeOcean is open water.
	IceFreeOcean
)

func (t CellType) String() string {
	switch t {
	case IceFreeBedrock:
		return "ice_free_bedrock"
	case Grounded:
		return "grounded_ice"
	case Floating:
		return "floating_ice"
	case IceFreeOcean:
		return "ice_free_ocean"
	}
	return "unknown"
}

// IceFree reports whether the cell carries no ice.
func (t CellType) IceFree() bool { return t == IceFreeBedrock || t == IceFreeOcean }

// Icy reports whether the cell carries ice, grounded or floating.
func (t CellType) Icy() bool { return t == Grounded || t == Floating }

// Floatation returns the floatation function at a point: positive where ice
// of thickness H over bed elevation b floats in water at seaLevel, negative
// or zero where it is grounded. The zero level set is the grounding line.
func Floatation(bed, thickness, seaLevel float64) float64 {
	return (seaLevel-bed)*(RhoOcean/RhoIce) - thickness
}

// Surface returns the ice surface elevation: bed plus thickness where the
// ice is grounded, the freeboard above sea level where it floats.
func Surface(bed, thickness, seaLevel float64) float64 {
	if Floatation(bed, thickness, seaLevel) > 0 {
		return seaLevel + thickness*(1.0-RhoIce/RhoOcean)
	}
	return bed + thickness
}

// ComputeMask classifies every cell of the grid from the bed elevation and
// ice thickness fields using the floatation criterion. Cells with less than
// minThickness of ice are ice-free; they are ocean where the bed is below
// sea level and bedrock otherwise.
func ComputeMask(g *grid.Grid, bed, thickness []float64, seaLevel, minThickness float64, mask []CellType) {
	chk.IntAssert(len(bed), g.NumNodes())
	chk.IntAssert(len(thickness), g.NumNodes())
	chk.IntAssert(len(mask), g.NumNodes())
	for n := 0; n < g.NumNodes(); n++ {
		switch {
		case thickness[n] < minThickness:
			if bed[n] < seaLevel {
				mask[n] = IceFreeOcean
			} else {
				mask[n] = IceFreeBedrock
			}
		case Floatation(bed[n], thickness[n], seaLevel) > 0:
			mask[n] = Floating
		default:
			mask[n] = Grounded
		}
	}
}
