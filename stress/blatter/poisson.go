// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blatter

import (
	"math"

	"github.com/cpmech/gosl/la"

	"github.com/sebastianbeyer/pism/fe"
	"github.com/sebastianbeyer/pism/grid"
	"github.com/sebastianbeyer/pism/mg"
	"github.com/sebastianbeyer/pism/nls"
	"github.com/sebastianbeyer/pism/stress"
)

// Poisson solves a 3D Poisson problem with a manufactured solution on the
// same terrain-following extruded grid, element kernel and multigrid
// plumbing the first-order model uses, exercising all of it with a known
// answer. The domain mimics an ice patch: bed b = -1 + x + y, thickness
// H = 1 + x^2 + y^2 over [-1,1] x [-1,1].
//
// Dirichlet values of the exact solution are imposed on the i = Mx-1,
// j = My-1 and k = Mz-1 planes; the i = 0, j = 0 and k = 0 planes carry
// Neumann data.
type Poisson struct {
	g   *grid.Grid
	cfg *stress.Config

	h      *mg.Hierarchy
	solver *nls.Newton
	gmg    *nls.GMG

	elems []*fe.Element3
	face  *fe.Element3Face
	scr   *scratch

	y      []float64 // 3D solution, vertical level varying slowest
	u, v   []float64
	maxErr float64
}

// NewPoisson allocates the verification solver. The grid should cover
// [-1,1] x [-1,1]; degrees of freedom per node is one.
func NewPoisson(g *grid.Grid, cfg *stress.Config) (*Poisson, error) {
	o := &Poisson{g: g, cfg: cfg}
	o.h = mg.NewHierarchy(g, cfg.Mz, cfg.NLevels, cfg.CoarseningFactor, 1)

	ref := fe.NewQ13DQuadrature8()
	nl := o.h.NLevels()
	nnz := make([]int, nl)
	for l := 0; l < nl; l++ {
		lg := o.h.Levels[l].G
		o.elems = append(o.elems, fe.NewElement3(lg, cfg.Mz, ref))
		blk := fe.Q13DNumChi
		nnz[l] = (lg.Xm+1)*(lg.Ym+1)*(cfg.Mz-1)*blk*blk + o.h.NumUnknowns(l)
	}
	o.face = fe.NewElement3Face(g.Dx, g.Dy, fe.NewFaceQuadrature4())
	o.scr = newScratch(o.elems[0].Npts())

	n3 := o.h.NumUnknowns(0)
	o.y = make([]float64, n3)
	o.u = make([]float64, g.NumNodes())
	o.v = make([]float64, g.NumNodes())

	o.solver = nls.NewNewton(cfg.Solver, n3, nnz[0], o.residual, o.jacobianFinest)
	o.solver.Post = o.fixResidual
	if cfg.NLevels > 1 {
		o.gmg = nls.NewGMG(o.h, nnz, o.assembleJacobian)
		o.solver.Gmg = o.gmg
	}
	return o, nil
}

// Free releases solver resources
func (o *Poisson) Free() {
	o.solver.Free()
	if o.gmg != nil {
		o.gmg.Free()
	}
}

func (o *Poisson) VelocityU() []float64 { return o.u }
func (o *Poisson) VelocityV() []float64 { return o.v }

// Solution returns the 3D solution, vertical level varying slowest
func (o *Poisson) Solution() []float64 { return o.y }

// MaxError returns the max-norm difference between the last solution and
// the exact one.
func (o *Poisson) MaxError() float64 { return o.maxErr }

// manufactured problem: geometry, exact solution, source and Neumann data

func poissonBed(x, y float64) float64 { return -1.0 + x + y }

func poissonThickness(x, y float64) float64 { return 1.0 + x*x + y*y }

// PoissonExact is the exact solution of the verification problem
func PoissonExact(x, y, z float64) float64 {
	return x*y*(z+1)*(z+1) + 2.0*(y+1)/((y+1)*(y+1)+(x+2)*(x+2))
}

// poissonSource is F = -(u_xx + u_yy + u_zz) of the exact solution
func poissonSource(x, y, z float64) float64 {
	return -2.0 * x * y
}

// poissonNeumann evaluates the Neumann data on the i=0, j=0 and k=0
// boundary planes; b is the bed elevation below the point.
func poissonNeumann(x, y, z, b float64) float64 {
	den := (y+1)*(y+1) + (x+2)*(x+2)
	ux := y*(z+1)*(z+1) - 4.0*(x+2)*(y+1)/(den*den)
	uy := x*(z+1)*(z+1) + 2.0/den - 4.0*(y+1)*(y+1)/(den*den)
	uz := 2.0 * x * y * (z + 1)

	eps := 1e-12
	switch {
	case math.Abs(x+1) < eps:
		return ux
	case math.Abs(y+1) < eps:
		return uy
	case math.Abs(z-b) < eps:
		// normal to the bottom surface {-b_x, -b_y, 1}, magnitude sqrt(3)
		return (-ux - uy + uz) / math.Sqrt(3)
	}
	return 0
}

func poissonDirichletNode(g *grid.Grid, mz, i, j, k int) bool {
	return i == g.Mx-1 || j == g.My-1 || k == mz-1
}

func poissonNeumannNode(i, j, k int) bool {
	return i == 0 || j == 0 || k == 0
}

// Update solves the verification problem. The manufactured geometry
// replaces the inputs, which may be nil.
func (o *Poisson) Update(in *stress.Inputs) error {
	g := o.g
	lev := o.h.Finest()
	for j := 0; j < g.My; j++ {
		for i := 0; i < g.Mx; i++ {
			n := g.NodeIndex(i, j)
			lev.Bed[n] = poissonBed(g.X(i), g.Y(j))
			lev.Thickness[n] = poissonThickness(g.X(i), g.Y(j))
		}
	}
	o.h.SetGeometry(lev.Bed, lev.Thickness, lev.Hardness, lev.Tauc, 0)

	o.solver.ResetPattern()
	if o.gmg != nil {
		o.gmg.ResetPattern()
	}
	la.VecFill(o.y, 0)
	if _, err := o.solver.Solve(o.y); err != nil {
		return err
	}

	// max-norm error and the top-surface slice reported as "velocity"
	mz := o.cfg.Mz
	nn := g.NumNodes()
	o.maxErr = 0
	for j := 0; j < g.My; j++ {
		for i := 0; i < g.Mx; i++ {
			n := g.NodeIndex(i, j)
			b, H := lev.Bed[n], lev.Thickness[n]
			for k := 0; k < mz; k++ {
				diff := math.Abs(o.y[k*nn+n] - PoissonExact(g.X(i), g.Y(j), grid.SigmaZ(b, H, mz, k)))
				if diff > o.maxErr {
					o.maxErr = diff
				}
			}
			o.u[n] = o.y[(mz-1)*nn+n]
		}
	}
	return nil
}

// fixResidual writes the Dirichlet rows after the cross-process join
func (o *Poisson) fixResidual(y, fb []float64) {
	lev := o.h.Finest()
	g := lev.G
	mz := o.cfg.Mz
	nn := g.NumNodes()
	for j := 0; j < g.My; j++ {
		for i := 0; i < g.Mx; i++ {
			n := g.NodeIndex(i, j)
			b, H := lev.Bed[n], lev.Thickness[n]
			for k := 0; k < mz; k++ {
				if poissonDirichletNode(g, mz, i, j, k) {
					eq := k*nn + n
					fb[eq] = y[eq] - PoissonExact(g.X(i), g.Y(j), grid.SigmaZ(b, H, mz, k))
				}
			}
		}
	}
}

// residual assembles fb := R(y) on the finest level
func (o *Poisson) residual(y, fb []float64) error {
	lev := o.h.Finest()
	g := lev.G
	e := o.elems[0]
	mz := o.cfg.Mz
	np := e.Npts()
	w := o.scr

	var rl, un, zn, bn, xn, yn [fe.Q13DNumChi]float64

	g.Elements(func(i, j int) {
		cols := columns(g, i, j)
		for k := 0; k < mz-1; k++ {
			for n := 0; n < fe.Q13DNumChi; n++ {
				col := cols[n%4]
				bn[n] = lev.Bed[col]
				zn[n] = grid.SigmaZ(lev.Bed[col], lev.Thickness[col], mz, k+n/4)
			}
			e.Reset(i, j, k, zn[:])
			e.NodalValues(y, 1, un[:])
			for n := 0; n < fe.Q13DNumChi; n++ {
				xn[n] = e.X(n)
				yn[n] = e.Y(n)
				ii, jj, kk := e.Node(n)
				if poissonDirichletNode(g, mz, ii, jj, kk) {
					e.MarkRowInvalid(n)
					un[n] = PoissonExact(xn[n], yn[n], zn[n])
				}
			}

			e.Evaluate(un[:], w.u, w.ux, w.uy, w.uz)
			e.Evaluate(xn[:], w.xq, nil, nil, nil)
			e.Evaluate(yn[:], w.yq, nil, nil, nil)
			e.Evaluate(zn[:], w.zq, nil, nil, nil)

			for n := range rl {
				rl[n] = 0
			}
			for q := 0; q < np; q++ {
				W := e.W[q]
				F := poissonSource(w.xq[q], w.yq[q], w.zq[q])
				for t := 0; t < fe.Q13DNumChi; t++ {
					psi := e.Germs[q][t]
					rl[t] += W * (w.ux[q]*psi.Dx + w.uy[q]*psi.Dy + w.uz[q]*psi.Dz - F*psi.Val)
				}
			}

			// Neumann faces: all four face nodes on a Neumann
			// boundary plane. Nodes shared with a Dirichlet plane
			// stay Dirichlet because their rows are invalid.
			for f := 0; f < fe.Q13DNFaces; f++ {
				neumann := true
				for _, n := range fe.Q13DIncidentNodes[f] {
					ii, jj, kk := e.Node(n)
					if !poissonNeumannNode(ii, jj, kk) {
						neumann = false
						break
					}
				}
				if !neumann {
					continue
				}
				o.face.Reset(f, zn[:])
				o.face.Evaluate(xn[:], w.xq)
				o.face.Evaluate(yn[:], w.yq)
				o.face.Evaluate(zn[:], w.zq)
				o.face.Evaluate(bn[:], w.s)
				for q := 0; q < o.face.Npts(); q++ {
					W := o.face.W[q]
					G := poissonNeumann(w.xq[q], w.yq[q], w.zq[q], w.s[q])
					for t := 0; t < fe.Q13DNumChi; t++ {
						rl[t] += W * o.face.Chi[q][t] * G
					}
				}
			}

			e.AddToRhs(fb, 1, rl[:])
		}
	})
	return nil
}

func (o *Poisson) jacobianFinest(y []float64, Kb *nls.Matrix, firstIt bool) error {
	return o.assembleJacobian(0, y, Kb)
}

// assembleJacobian builds the (constant) stiffness matrix of level l
func (o *Poisson) assembleJacobian(l int, yl []float64, Kb *nls.Matrix) error {
	lev := o.h.Levels[l]
	g := lev.G
	e := o.elems[l]
	mz := o.cfg.Mz
	nn := g.NumNodes()

	K := la.MatAlloc(fe.Q13DNumChi, fe.Q13DNumChi)
	var zn [fe.Q13DNumChi]float64

	g.Elements(func(i, j int) {
		cols := columns(g, i, j)
		for k := 0; k < mz-1; k++ {
			for n := 0; n < fe.Q13DNumChi; n++ {
				col := cols[n%4]
				zn[n] = grid.SigmaZ(lev.Bed[col], lev.Thickness[col], mz, k+n/4)
			}
			e.Reset(i, j, k, zn[:])
			for n := 0; n < fe.Q13DNumChi; n++ {
				ii, jj, kk := e.Node(n)
				if poissonDirichletNode(g, mz, ii, jj, kk) {
					e.MarkRowInvalid(n)
					e.MarkColInvalid(n)
				}
			}
			la.MatFill(K, 0)
			for q := 0; q < e.Npts(); q++ {
				W := e.W[q]
				for t := 0; t < fe.Q13DNumChi; t++ {
					psi := e.Germs[q][t]
					for s := 0; s < fe.Q13DNumChi; s++ {
						phi := e.Germs[q][s]
						K[t][s] += W * (psi.Dx*phi.Dx + psi.Dy*phi.Dy + psi.Dz*phi.Dz)
					}
				}
			}
			e.AddToKb(Kb, 1, K)
		}
	})

	g.Points(func(i, j int) {
		n := g.NodeIndex(i, j)
		for k := 0; k < mz; k++ {
			if poissonDirichletNode(g, mz, i, j, k) {
				eq := k*nn + n
				Kb.Put(eq, eq, 1.0)
			}
		}
	})
	return nil
}
