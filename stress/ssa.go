// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stress

import (
	"github.com/cpmech/gosl/la"

	"github.com/sebastianbeyer/pism/fe"
	"github.com/sebastianbeyer/pism/geom"
	"github.com/sebastianbeyer/pism/grid"
	"github.com/sebastianbeyer/pism/nls"
	"github.com/sebastianbeyer/pism/rheo"
)

func init() {
	Register("ssa", NewSSA)
}

// SSA solves the shallow-shelf approximation: a 2D plane-stress problem
// for the horizontal velocity with nonlinear viscosity and basal drag.
// Elements touching an exterior node are excluded; exterior velocities are
// pinned to zero with weight-scaled identity equations.
type SSA struct {
	g    *grid.Grid
	cfg  *Config
	flow rheo.FlowLaw
	slid rheo.SlidingLaw

	quad   *fe.Quadrature
	elem   *fe.Element2
	solver *nls.Newton

	// geometry-derived fields, refreshed by Update
	in       *Inputs
	nodeType []geom.NodeType
	mask     []geom.CellType
	taudX    []float64
	taudY    []float64
	flags    []bool
	zeroBC   []fe.Vec2
	dir      *fe.DirichletVector

	y    []float64 // interleaved (u0,v0,u1,v1,...), kept as initial guess
	u, v []float64
}

// NewSSA allocates a shallow-shelf model
func NewSSA(g *grid.Grid, cfg *Config) (StressBalance, error) {
	flow, err := rheo.NewFlowLaw(cfg.FlowLaw, cfg.FlowPrms)
	if err != nil {
		return nil, err
	}
	slid, err := rheo.NewSlidingLaw(cfg.SlidingLaw, cfg.SlidingPrms)
	if err != nil {
		return nil, err
	}
	nn := g.NumNodes()
	o := &SSA{
		g:        g,
		cfg:      cfg,
		flow:     flow,
		slid:     slid,
		quad:     fe.NewQ1Quadrature4(g.Dx, g.Dy, 1.0),
		nodeType: make([]geom.NodeType, nn),
		mask:     make([]geom.CellType, nn),
		taudX:    make([]float64, nn),
		taudY:    make([]float64, nn),
		flags:    make([]bool, nn),
		zeroBC:   make([]fe.Vec2, nn),
		y:        make([]float64, 2*nn),
		u:        make([]float64, nn),
		v:        make([]float64, nn),
	}
	o.elem = fe.NewElement2(g, o.quad)
	weight := g.Dx * g.Dy * (1.0/(g.Dx*g.Dx) + 1.0/(g.Dy*g.Dy))
	o.dir = fe.NewDirichletVector(g, o.flags, o.zeroBC, weight)

	// every element contributes a dense 8x8 block; exterior nodes get
	// 2x2 identity blocks
	nElems := (g.Xm + 1) * (g.Ym + 1)
	nnz := nElems*64 + 2*nn
	o.solver = nls.NewNewton(cfg.Solver, 2*nn, nnz, o.residual, o.jacobian)
	o.solver.Post = func(y, fb []float64) { o.dir.FixResidual(y, fb) }
	return o, nil
}

// Free releases solver resources
func (o *SSA) Free() { o.solver.Free() }

func (o *SSA) VelocityU() []float64 { return o.u }
func (o *SSA) VelocityV() []float64 { return o.v }

// Update recomputes the velocity for the given geometry
func (o *SSA) Update(in *Inputs) error {
	if err := in.Validate(o.g); err != nil {
		return err
	}
	o.in = in
	g := o.g

	geom.ClassifyNodes(g, in.Thickness, o.cfg.MinThickness, o.nodeType)
	geom.ComputeMask(g, in.Bed, in.Thickness, in.SeaLevel, o.cfg.MinThickness, o.mask)
	for j := 0; j < g.My; j++ {
		for i := 0; i < g.Mx; i++ {
			idx := g.NodeIndex(i, j)
			o.taudX[idx], o.taudY[idx] = drivingStress(g, in.Bed, in.Thickness, in.SeaLevel, i, j)
			o.flags[idx] = o.nodeType[idx] == geom.Exterior
			if o.flags[idx] {
				o.y[2*idx] = 0
				o.y[2*idx+1] = 0
			}
		}
	}

	// the element skip pattern follows the ice extent
	o.solver.ResetPattern()

	y := make([]float64, len(o.y))
	la.VecCopy(y, 1, o.y)
	if _, err := o.solver.Solve(y); err != nil {
		return err
	}
	la.VecCopy(o.y, 1, y)
	for n := 0; n < g.NumNodes(); n++ {
		o.u[n] = y[2*n]
		o.v[n] = y[2*n+1]
	}
	return nil
}

// assembled reports whether the element at lower-left node (i,j) carries
// ice equations, and positions the element view there.
func (o *SSA) assembled(i, j int) bool {
	o.elem.Reset(i, j)
	for n := 0; n < fe.Q1NumChi; n++ {
		ii, jj := o.elem.Node(n)
		if o.nodeType[o.g.NodeIndex(ii, jj)] == geom.Exterior {
			return false
		}
	}
	return true
}

// grounded reports whether all four element nodes are grounded ice, in
// which case the element contributes basal drag.
func (o *SSA) grounded() bool {
	for n := 0; n < fe.Q1NumChi; n++ {
		ii, jj := o.elem.Node(n)
		if o.mask[o.g.NodeIndex(ii, jj)] != geom.Grounded {
			return false
		}
	}
	return true
}

// pointwise holds the element fields interpolated to one quadrature point
type ssaPoint struct {
	u, ux, uy float64
	v, vx, vy float64
	H, B      float64
	tauc      float64
	tdx, tdy  float64
}

// gather interpolates the element fields to all quadrature points
func (o *SSA) gather(y []float64, pts []ssaPoint) {
	np := o.quad.Npts()
	var yl [2 * fe.Q1NumChi]float64
	var un, vn, Hn, Bn, tn, txn, tyn [fe.Q1NumChi]float64
	o.elem.NodalValues(y, 2, yl[:])
	for n := 0; n < fe.Q1NumChi; n++ {
		un[n], vn[n] = yl[2*n], yl[2*n+1]
		ii, jj := o.elem.Node(n)
		idx := o.g.NodeIndex(ii, jj)
		Hn[n] = o.in.Thickness[idx]
		Bn[n] = o.in.Hardness[idx]
		tn[n] = o.in.Tauc[idx]
		txn[n] = o.taudX[idx]
		tyn[n] = o.taudY[idx]
	}
	u := make([]float64, np)
	ux := make([]float64, np)
	uy := make([]float64, np)
	v := make([]float64, np)
	vx := make([]float64, np)
	vy := make([]float64, np)
	H := make([]float64, np)
	B := make([]float64, np)
	tc := make([]float64, np)
	tx := make([]float64, np)
	ty := make([]float64, np)
	o.elem.Evaluate(un[:], u, ux, uy)
	o.elem.Evaluate(vn[:], v, vx, vy)
	o.elem.Evaluate(Hn[:], H, nil, nil)
	o.elem.Evaluate(Bn[:], B, nil, nil)
	o.elem.Evaluate(tn[:], tc, nil, nil)
	o.elem.Evaluate(txn[:], tx, nil, nil)
	o.elem.Evaluate(tyn[:], ty, nil, nil)
	for q := 0; q < np; q++ {
		pts[q] = ssaPoint{
			u: u[q], ux: ux[q], uy: uy[q],
			v: v[q], vx: vx[q], vy: vy[q],
			H: H[q], B: B[q], tauc: tc[q],
			tdx: tx[q], tdy: ty[q],
		}
	}
}

// secondInvariant2D returns the membrane strain rate invariant
func secondInvariant2D(p *ssaPoint) float64 {
	return p.ux*p.ux + p.vy*p.vy + p.ux*p.vy + 0.25*(p.uy+p.vx)*(p.uy+p.vx)
}

// residual assembles fb := R(y)
func (o *SSA) residual(y, fb []float64) error {
	g := o.g
	np := o.quad.Npts()
	pts := make([]ssaPoint, np)
	var rl [2 * fe.Q1NumChi]float64

	g.Elements(func(i, j int) {
		if !o.assembled(i, j) {
			return
		}
		o.dir.Constrain(o.elem)
		o.gather(y, pts)
		withDrag := o.grounded()

		for n := range rl {
			rl[n] = 0
		}
		for q := 0; q < np; q++ {
			p := &pts[q]
			eta, _ := o.flow.EffectiveViscosity(p.B, secondInvariant2D(p))
			nuH := eta * p.H
			var beta float64
			if withDrag {
				beta, _ = o.slid.DragWithDerivative(p.tauc, p.u, p.v)
			}
			W := o.quad.W[q]
			for t := 0; t < fe.Q1NumChi; t++ {
				psi := o.quad.Germs[q][t]
				rl[2*t] += W * (nuH*(psi.Dx*(4.0*p.ux+2.0*p.vy)+psi.Dy*(p.uy+p.vx)) +
					psi.Val*(beta*p.u-p.tdx))
				rl[2*t+1] += W * (nuH*(psi.Dy*(4.0*p.vy+2.0*p.ux)+psi.Dx*(p.uy+p.vx)) +
					psi.Val*(beta*p.v-p.tdy))
			}
		}
		o.elem.AddToRhs(fb, 2, rl[:])
	})
	return nil
}

// jacobian assembles the Picard linearization: viscosity and drag frozen
// at the current iterate.
func (o *SSA) jacobian(y []float64, Kb *nls.Matrix, firstIt bool) error {
	g := o.g
	np := o.quad.Npts()
	pts := make([]ssaPoint, np)
	K := la.MatAlloc(2*fe.Q1NumChi, 2*fe.Q1NumChi)

	g.Elements(func(i, j int) {
		if !o.assembled(i, j) {
			return
		}
		o.dir.Constrain(o.elem)
		o.gather(y, pts)
		withDrag := o.grounded()

		la.MatFill(K, 0)
		for q := 0; q < np; q++ {
			p := &pts[q]
			eta, _ := o.flow.EffectiveViscosity(p.B, secondInvariant2D(p))
			nuH := eta * p.H
			var beta float64
			if withDrag {
				beta, _ = o.slid.DragWithDerivative(p.tauc, p.u, p.v)
			}
			W := o.quad.W[q]
			for t := 0; t < fe.Q1NumChi; t++ {
				psi := o.quad.Germs[q][t]
				for s := 0; s < fe.Q1NumChi; s++ {
					phi := o.quad.Germs[q][s]
					bp := beta * psi.Val * phi.Val
					K[2*t][2*s] += W * (nuH*(4.0*psi.Dx*phi.Dx+psi.Dy*phi.Dy) + bp)
					K[2*t][2*s+1] += W * nuH * (2.0*psi.Dx*phi.Dy + psi.Dy*phi.Dx)
					K[2*t+1][2*s] += W * nuH * (2.0*psi.Dy*phi.Dx + psi.Dx*phi.Dy)
					K[2*t+1][2*s+1] += W * (nuH*(4.0*psi.Dy*phi.Dy+psi.Dx*phi.Dx) + bp)
				}
			}
		}
		o.elem.AddToKb(Kb, 2, K)
	})
	o.dir.FixJacobian(Kb)
	return nil
}
