// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mg manages the hierarchy of grids used by the geometric multigrid
// preconditioner: per-level copies of the geometry fields, restriction of
// those fields from fine to coarse levels, and bilinear prolongation
// operators for solution corrections.
package mg

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/sebastianbeyer/pism/geom"
	"github.com/sebastianbeyer/pism/grid"
)

// Level holds one grid of the multigrid hierarchy together with the
// geometry fields restricted to it.
type Level struct {
	G  *grid.Grid
	Mz int // number of vertical nodes for 3D solves on this level

	Bed       []float64 // bed elevation
	Thickness []float64 // ice thickness
	Hardness  []float64 // vertically averaged ice hardness
	Tauc      []float64 // basal yield stress
	NodeType  []geom.NodeType

	// P interpolates corrections from the next coarser level onto this
	// level; nil on the coarsest level. Rows and columns are 3D node
	// indices times the number of unknowns per node.
	P *la.CCMatrix

	pT la.Triplet
}

// newLevel allocates a level and its fields for grid g
func newLevel(g *grid.Grid, mz int) *Level {
	nn := g.NumNodes()
	return &Level{
		G:         g,
		Mz:        mz,
		Bed:       make([]float64, nn),
		Thickness: make([]float64, nn),
		Hardness:  make([]float64, nn),
		Tauc:      make([]float64, nn),
		NodeType:  make([]geom.NodeType, nn),
	}
}

// RestrictHook is called after the geometry fields have been injected into
// a coarser level, before node types are recomputed there.
type RestrictHook func(fine, coarse *Level)

// Hierarchy holds the grids of a geometric multigrid preconditioner,
// finest first.
type Hierarchy struct {
	Levels []*Level
	Factor int
	Ndof   int // unknowns per 3D node

	hooks []RestrictHook
}

// NewHierarchy builds nLevels grids by repeatedly coarsening the fine grid
// by the given factor and assembles the prolongation operator of every
// level. The fine grid extents must be compatible; see PadForMultigrid.
// With nLevels=1 the hierarchy degenerates to the fine grid alone.
func NewHierarchy(fine *grid.Grid, mz, nLevels, factor, ndof int) (o *Hierarchy) {
	if nLevels < 1 {
		chk.Panic("number of multigrid levels must be at least 1. nLevels=%d is invalid", nLevels)
	}
	if factor < 2 && nLevels > 1 {
		chk.Panic("coarsening factor must be at least 2. factor=%d is invalid", factor)
	}
	if ndof < 1 {
		chk.Panic("number of unknowns per node must be at least 1. ndof=%d is invalid", ndof)
	}
	o = &Hierarchy{Factor: factor, Ndof: ndof}
	o.Levels = append(o.Levels, newLevel(fine, mz))
	for l := 1; l < nLevels; l++ {
		g := o.Levels[l-1].G.Coarsen(factor)
		o.Levels = append(o.Levels, newLevel(g, mz))
		buildProlongation(o.Levels[l-1], o.Levels[l], factor, ndof)
	}
	return
}

// NLevels returns the number of levels in the hierarchy
func (o *Hierarchy) NLevels() int { return len(o.Levels) }

// Finest returns the finest level
func (o *Hierarchy) Finest() *Level { return o.Levels[0] }

// Coarsest returns the coarsest level
func (o *Hierarchy) Coarsest() *Level { return o.Levels[len(o.Levels)-1] }

// AddRestrictHook registers a hook to run during Restrict on every pair of
// adjacent levels, finest pair first.
func (o *Hierarchy) AddRestrictHook(hook RestrictHook) {
	o.hooks = append(o.hooks, hook)
}

// SetGeometry copies the geometry fields onto the finest level and
// restricts them down the hierarchy. Node types are recomputed on every
// level from the restricted thickness, so the coarse problems see the same
// ice extent the fine problem does.
func (o *Hierarchy) SetGeometry(bed, thickness, hardness, tauc []float64, minThickness float64) {
	fine := o.Levels[0]
	nn := fine.G.NumNodes()
	chk.IntAssert(len(bed), nn)
	chk.IntAssert(len(thickness), nn)
	chk.IntAssert(len(hardness), nn)
	chk.IntAssert(len(tauc), nn)
	la.VecCopy(fine.Bed, 1, bed)
	la.VecCopy(fine.Thickness, 1, thickness)
	la.VecCopy(fine.Hardness, 1, hardness)
	la.VecCopy(fine.Tauc, 1, tauc)
	geom.ClassifyNodes(fine.G, fine.Thickness, minThickness, fine.NodeType)
	o.Restrict(minThickness)
}

// Restrict injects the geometry fields of every level into the next
// coarser one and reclassifies the coarse nodes.
func (o *Hierarchy) Restrict(minThickness float64) {
	for l := 1; l < len(o.Levels); l++ {
		fine, coarse := o.Levels[l-1], o.Levels[l]
		injectField(fine.G, coarse.G, o.Factor, fine.Bed, coarse.Bed)
		injectField(fine.G, coarse.G, o.Factor, fine.Thickness, coarse.Thickness)
		injectField(fine.G, coarse.G, o.Factor, fine.Hardness, coarse.Hardness)
		injectField(fine.G, coarse.G, o.Factor, fine.Tauc, coarse.Tauc)
		for _, hook := range o.hooks {
			hook(fine, coarse)
		}
		geom.ClassifyNodes(coarse.G, coarse.Thickness, minThickness, coarse.NodeType)
	}
}

// injectField restricts a nodal field by injection: coarse nodes coincide
// with every factor-th fine node.
func injectField(fine, coarse *grid.Grid, factor int, src, dst []float64) {
	for J := 0; J < coarse.My; J++ {
		for I := 0; I < coarse.Mx; I++ {
			dst[coarse.NodeIndex(I, J)] = src[fine.NodeIndex(I*factor, J*factor)]
		}
	}
}

// Prolong interpolates a coarse-level correction onto level l (u += P*uc)
func (o *Hierarchy) Prolong(l int, u, uc []float64) {
	la.SpMatVecMulAdd(u, 1, o.Levels[l].P, uc)
}

// RestrictResidual restricts a fine residual onto the next coarser level
// using the transpose of the prolongation operator (rc = Pt*r).
func (o *Hierarchy) RestrictResidual(l int, rc, r []float64) {
	la.VecFill(rc, 0)
	la.SpMatTrVecMulAdd(rc, 1, o.Levels[l].P, r)
}

// InjectSolution restricts a solution vector from level l to the next
// coarser level by injection. Coarse problems of the nonlinear multigrid
// cycle are linearized about the injected fine solution.
func (o *Hierarchy) InjectSolution(l int, uc, u []float64) {
	fine, coarse := o.Levels[l], o.Levels[l+1]
	gf, gc := fine.G, coarse.G
	f := o.Factor
	for k := 0; k < coarse.Mz; k++ {
		for J := 0; J < gc.My; J++ {
			for I := 0; I < gc.Mx; I++ {
				src := ((k*gf.My+J*f)*gf.Mx + I*f) * o.Ndof
				dst := ((k*gc.My+J)*gc.Mx + I) * o.Ndof
				for d := 0; d < o.Ndof; d++ {
					uc[dst+d] = u[src+d]
				}
			}
		}
	}
}

// NumUnknowns returns the size of the solution vector on level l
func (o *Hierarchy) NumUnknowns(l int) int {
	lev := o.Levels[l]
	return lev.G.NumNodes() * lev.Mz * o.Ndof
}

// buildProlongation assembles the bilinear interpolation operator taking
// corrections from the coarse grid onto the fine grid, column by column in
// the horizontal and identically for every vertical layer and unknown.
func buildProlongation(fine, coarse *Level, factor, ndof int) {
	gf, gc := fine.G, coarse.G
	nFine := gf.NumNodes() * fine.Mz * ndof
	nCoarse := gc.NumNodes() * coarse.Mz * ndof
	fine.pT.Init(nFine, nCoarse, gf.NumNodes()*fine.Mz*ndof*4)

	idx3 := func(g *grid.Grid, i, j, k, d int) int {
		return ((k*g.My+j)*g.Mx+i)*ndof + d
	}

	f := float64(factor)
	for j := 0; j < gf.My; j++ {
		J0 := j / factor
		wy := float64(j%factor) / f
		J1 := J0
		if wy > 0 {
			J1 = J0 + 1
		}
		for i := 0; i < gf.Mx; i++ {
			I0 := i / factor
			wx := float64(i%factor) / f
			I1 := I0
			if wx > 0 {
				I1 = I0 + 1
			}
			for k := 0; k < fine.Mz; k++ {
				for d := 0; d < ndof; d++ {
					row := idx3(gf, i, j, k, d)
					fine.pT.Put(row, idx3(gc, I0, J0, k, d), (1-wx)*(1-wy))
					if wx > 0 {
						fine.pT.Put(row, idx3(gc, I1, J0, k, d), wx*(1-wy))
					}
					if wy > 0 {
						fine.pT.Put(row, idx3(gc, I0, J1, k, d), (1-wx)*wy)
					}
					if wx > 0 && wy > 0 {
						fine.pT.Put(row, idx3(gc, I1, J1, k, d), wx*wy)
					}
				}
			}
		}
	}
	fine.P = fine.pT.ToMatrix(nil)
}
