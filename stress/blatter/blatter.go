// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package blatter implements the 3D first-order momentum balance: a
// nonlinear viscous problem for the horizontal velocity on a
// terrain-following extruded grid, solved with Newton iterations and an
// optional geometric multigrid preconditioner. The package also contains
// the scalar Poisson solver used to verify the assembly and multigrid
// plumbing. Both models register themselves with the stress factory.
package blatter

import (
	"github.com/cpmech/gosl/la"

	"github.com/sebastianbeyer/pism/fe"
	"github.com/sebastianbeyer/pism/geom"
	"github.com/sebastianbeyer/pism/grid"
	"github.com/sebastianbeyer/pism/mg"
	"github.com/sebastianbeyer/pism/nls"
	"github.com/sebastianbeyer/pism/rheo"
	"github.com/sebastianbeyer/pism/stress"
)

func init() {
	stress.Register("blatter", func(g *grid.Grid, cfg *stress.Config) (stress.StressBalance, error) {
		return New(g, cfg)
	})
	stress.Register("poisson", func(g *grid.Grid, cfg *stress.Config) (stress.StressBalance, error) {
		return NewPoisson(g, cfg)
	})
}

// horizontal offsets of the four columns of an element, counter-clockwise
// from the lower left
var (
	colIOffset = [4]int{0, 1, 1, 0}
	colJOffset = [4]int{0, 0, 1, 1}
)

// Blatter solves the first-order momentum balance. Each vertical column of
// the extruded grid carries Mz nodes with two unknowns per node; columns
// whose ice is thinner than the configured minimum are classified exterior
// and pinned to zero with weight-scaled identity equations, so the system
// stays square and well conditioned as the ice extent evolves.
type Blatter struct {
	g    *grid.Grid
	cfg  *stress.Config
	flow rheo.FlowLaw
	slid rheo.SlidingLaw

	h      *mg.Hierarchy
	solver *nls.Newton
	gmg    *nls.GMG

	// per level element and basal face views; the coarser grids have
	// larger horizontal spacing
	elems   []*fe.Element3
	face4   []*fe.Element3Face
	face100 []*fe.Element3Face

	seaLevel   float64
	floatation [][]float64 // per level, per column
	sx, sy     []float64   // surface gradient on the finest level

	y      []float64 // 3D iterate, interleaved (u,v); kept as initial guess
	u, v   []float64 // vertically averaged velocity
	ub, vb []float64 // basal velocity

	work *scratch

	// boundary condition hooks used by the verification cases; all nil
	// for the production model
	dirichletNode func(g *grid.Grid, mz, i, j, k int) bool
	velocityBC    func(x, y, z float64) (u, v float64)
	bodyForce     func(x, y, z float64) (fu, fv float64)
}

// scratch holds quadrature point workspaces shared by the residual and
// Jacobian loops; sized for the largest face rule.
type scratch struct {
	u, ux, uy, uz []float64
	v, vx, vy, vz []float64
	B, sx, sy     []float64
	xq, yq, zq    []float64
	tauc, flo, s  []float64
}

func newScratch(n int) *scratch {
	w := new(scratch)
	for _, p := range []*[]float64{
		&w.u, &w.ux, &w.uy, &w.uz,
		&w.v, &w.vx, &w.vy, &w.vz,
		&w.B, &w.sx, &w.sy,
		&w.xq, &w.yq, &w.zq,
		&w.tauc, &w.flo, &w.s,
	} {
		*p = make([]float64, n)
	}
	return w
}

// New allocates a first-order model on grid g. With cfg.NLevels > 1 the
// Newton steps are solved by geometric multigrid; the grid extents must
// then be compatible with the coarsening factor (see grid.PadForMultigrid).
func New(g *grid.Grid, cfg *stress.Config) (*Blatter, error) {
	flow, err := rheo.NewFlowLaw(cfg.FlowLaw, cfg.FlowPrms)
	if err != nil {
		return nil, err
	}
	slid, err := rheo.NewSlidingLaw(cfg.SlidingLaw, cfg.SlidingPrms)
	if err != nil {
		return nil, err
	}
	o := &Blatter{g: g, cfg: cfg, flow: flow, slid: slid}
	o.h = mg.NewHierarchy(g, cfg.Mz, cfg.NLevels, cfg.CoarseningFactor, 2)

	ref := fe.NewQ13DQuadrature8()
	nl := o.h.NLevels()
	nnz := make([]int, nl)
	for l := 0; l < nl; l++ {
		lg := o.h.Levels[l].G
		o.elems = append(o.elems, fe.NewElement3(lg, cfg.Mz, ref))
		o.face4 = append(o.face4, fe.NewElement3Face(lg.Dx, lg.Dy, fe.NewFaceQuadrature4()))
		o.face100 = append(o.face100, fe.NewElement3Face(lg.Dx, lg.Dy, fe.NewFaceQuadrature100()))
		o.floatation = append(o.floatation, make([]float64, lg.NumNodes()))

		// every element column contributes (Mz-1) dense 16 by 16
		// blocks; exterior and Dirichlet nodes get diagonal entries
		blk := 2 * fe.Q13DNumChi
		nnz[l] = (lg.Xm+1)*(lg.Ym+1)*(cfg.Mz-1)*blk*blk + o.h.NumUnknowns(l)
	}

	nn := g.NumNodes()
	n3 := o.h.NumUnknowns(0)
	o.y = make([]float64, n3)
	o.u = make([]float64, nn)
	o.v = make([]float64, nn)
	o.ub = make([]float64, nn)
	o.vb = make([]float64, nn)
	o.sx = make([]float64, nn)
	o.sy = make([]float64, nn)
	o.work = newScratch(o.face100[0].Npts())

	o.solver = nls.NewNewton(cfg.Solver, n3, nnz[0], o.residual, o.jacobianFinest)
	o.solver.Post = o.fixResidual
	if cfg.NLevels > 1 {
		o.gmg = nls.NewGMG(o.h, nnz, o.assembleJacobian)
		o.solver.Gmg = o.gmg
	}
	return o, nil
}

// Free releases solver resources
func (o *Blatter) Free() {
	o.solver.Free()
	if o.gmg != nil {
		o.gmg.Free()
	}
}

func (o *Blatter) VelocityU() []float64 { return o.u }
func (o *Blatter) VelocityV() []float64 { return o.v }

// BasalU and BasalV return the velocity at the base of the ice
func (o *Blatter) BasalU() []float64 { return o.ub }
func (o *Blatter) BasalV() []float64 { return o.vb }

// Solution returns the 3D iterate, interleaved (u,v) per node with the
// vertical level varying slowest.
func (o *Blatter) Solution() []float64 { return o.y }

// Update recomputes the velocity for the given geometry
func (o *Blatter) Update(in *stress.Inputs) error {
	if err := in.Validate(o.g); err != nil {
		return err
	}
	o.setGeometry(in)

	// the element skip pattern follows the ice extent
	o.solver.ResetPattern()
	if o.gmg != nil {
		o.gmg.ResetPattern()
	}

	y := make([]float64, len(o.y))
	la.VecCopy(y, 1, o.y)
	if _, err := o.solver.Solve(y); err != nil {
		return err
	}
	la.VecCopy(o.y, 1, y)
	o.extractVelocity()
	return nil
}

// setGeometry distributes the geometry over the level hierarchy and
// refreshes the derived fields.
func (o *Blatter) setGeometry(in *stress.Inputs) {
	o.seaLevel = in.SeaLevel
	o.h.SetGeometry(in.Bed, in.Thickness, in.Hardness, in.Tauc, o.cfg.MinThickness)
	for l, lev := range o.h.Levels {
		for n := range o.floatation[l] {
			o.floatation[l][n] = geom.Floatation(lev.Bed[n], lev.Thickness[n], in.SeaLevel)
		}
	}
	o.refreshSurfaceGradient()
}

// refreshSurfaceGradient recomputes the nodal surface gradient on the
// finest level and zeroes the iterate of exterior columns.
func (o *Blatter) refreshSurfaceGradient() {
	lev := o.h.Finest()
	g := lev.G
	mz := o.cfg.Mz
	nn := g.NumNodes()
	s := func(i, j int) float64 {
		n := g.NodeIndex(g.WrapX(i), g.WrapY(j))
		return geom.Surface(lev.Bed[n], lev.Thickness[n], o.seaLevel)
	}
	for j := 0; j < g.My; j++ {
		for i := 0; i < g.Mx; i++ {
			n := g.NodeIndex(i, j)
			if g.PeriodicX {
				o.sx[n] = (s(i+1, j) - s(i-1, j)) / (2.0 * g.Dx)
			} else {
				iw, ie := g.WrapX(i-1), g.WrapX(i+1)
				o.sx[n] = (s(ie, j) - s(iw, j)) / (float64(ie-iw) * g.Dx)
			}
			if g.PeriodicY {
				o.sy[n] = (s(i, j+1) - s(i, j-1)) / (2.0 * g.Dy)
			} else {
				js, jn := g.WrapY(j-1), g.WrapY(j+1)
				o.sy[n] = (s(i, jn) - s(i, js)) / (float64(jn-js) * g.Dy)
			}
			if lev.NodeType[n] == geom.Exterior {
				for k := 0; k < mz; k++ {
					eq := 2 * (k*nn + n)
					o.y[eq] = 0
					o.y[eq+1] = 0
				}
			}
		}
	}
}

// extractVelocity computes the vertically averaged (trapezoid over the
// sigma levels) and basal velocities from the 3D solution.
func (o *Blatter) extractVelocity() {
	g := o.g
	mz := o.cfg.Mz
	nn := g.NumNodes()
	dz := 1.0 / float64(mz-1)
	for n := 0; n < nn; n++ {
		var su, sv float64
		for k := 0; k < mz; k++ {
			w := dz
			if k == 0 || k == mz-1 {
				w = 0.5 * dz
			}
			eq := 2 * (k*nn + n)
			su += w * o.y[eq]
			sv += w * o.y[eq+1]
		}
		o.u[n] = su
		o.v[n] = sv
		o.ub[n] = o.y[2*n]
		o.vb[n] = o.y[2*n+1]
	}
}

// columnBase returns the elevation of the base of an ice column: the bed
// where the ice is grounded, the bottom of the shelf where it floats.
func (o *Blatter) columnBase(bed, H float64) float64 {
	return geom.Surface(bed, H, o.seaLevel) - H
}

// columnThickness clamps the ice thickness so the extruded columns of
// assembled elements at the margin never degenerate.
func (o *Blatter) columnThickness(H float64) float64 {
	if H < o.cfg.MinThickness {
		return o.cfg.MinThickness
	}
	return H
}

// penaltyScale is the weight of the identity-like equations pinning
// exterior and Dirichlet nodes, chosen so their relative conditioning
// matches the neighbouring element equations.
func (o *Blatter) penaltyScale(g *grid.Grid, H float64) float64 {
	dz := o.columnThickness(H) / float64(o.cfg.Mz-1)
	return g.Dx * g.Dy * dz * (1.0/(g.Dx*g.Dx) + 1.0/(g.Dy*g.Dy) + 1.0/(dz*dz))
}

// columns returns the 2D node indices of the four columns of the element
// at lower-left node (i,j) of level grid g.
func columns(g *grid.Grid, i, j int) (cols [4]int) {
	for c := 0; c < 4; c++ {
		cols[c] = g.NodeIndex(g.WrapX(i+colIOffset[c]), g.WrapY(j+colJOffset[c]))
	}
	return
}

// exteriorElement reports whether any column of the element is exterior
func exteriorElement(lev *mg.Level, cols [4]int) bool {
	for _, n := range cols {
		if lev.NodeType[n] == geom.Exterior {
			return true
		}
	}
	return false
}

// groundingLine reports whether the floatation function changes sign
// among the columns, in which case basal integrals use the dense uniform
// face rule to resolve the jump in the drag integrand.
func groundingLine(flo []float64, cols [4]int) bool {
	var pos, neg bool
	for _, n := range cols {
		if flo[n] > 0 {
			pos = true
		} else {
			neg = true
		}
	}
	return pos && neg
}

// fixResidual writes the replicated rows of the joined residual: identity
// penalty equations at exterior columns and the Dirichlet constraint rows
// of verification cases. These rows are set, not summed, so they run after
// the cross-process join.
func (o *Blatter) fixResidual(y, fb []float64) {
	lev := o.h.Finest()
	g := lev.G
	mz := o.cfg.Mz
	nn := g.NumNodes()
	for j := 0; j < g.My; j++ {
		for i := 0; i < g.Mx; i++ {
			n := g.NodeIndex(i, j)
			ext := lev.NodeType[n] == geom.Exterior
			if !ext && o.dirichletNode == nil {
				continue
			}
			w := o.penaltyScale(g, lev.Thickness[n])
			for k := 0; k < mz; k++ {
				eq := 2 * (k*nn + n)
				switch {
				case ext:
					fb[eq] = w * y[eq]
					fb[eq+1] = w * y[eq+1]
				case o.dirichletNode(g, mz, i, j, k):
					z := grid.SigmaZ(o.columnBase(lev.Bed[n], lev.Thickness[n]), o.columnThickness(lev.Thickness[n]), mz, k)
					ue, ve := o.velocityBC(g.X(i), g.Y(j), z)
					fb[eq] = w * (y[eq] - ue)
					fb[eq+1] = w * (y[eq+1] - ve)
				}
			}
		}
	}
}
