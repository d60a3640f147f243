// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blatter

import (
	"github.com/sebastianbeyer/pism/fe"
	"github.com/sebastianbeyer/pism/geom"
	"github.com/sebastianbeyer/pism/grid"
	"github.com/sebastianbeyer/pism/mg"
	"github.com/sebastianbeyer/pism/stress"
)

// secondInvariant returns the first-order approximation of the strain
// rate invariant from the velocity gradient at one quadrature point.
func secondInvariant(ux, uy, uz, vx, vy, vz float64) float64 {
	return ux*ux + vy*vy + ux*vy + 0.25*((uy+vx)*(uy+vx)+uz*uz+vz*vz)
}

// residual assembles fb := R(y) on the finest level. Exterior penalty and
// Dirichlet rows are written by fixResidual after the cross-process join.
func (o *Blatter) residual(y, fb []float64) error {
	lev := o.h.Finest()
	g := lev.G
	e := o.elems[0]
	mz := o.cfg.Mz
	np := e.Npts()
	w := o.work

	var rl [2 * fe.Q13DNumChi]float64
	var yn [2 * fe.Q13DNumChi]float64
	var un, vn, zn, Bn, sxn, syn, xn, ycn [fe.Q13DNumChi]float64
	var taucN, floN, surfN [fe.Q13DNumChi]float64

	g.Elements(func(i, j int) {
		cols := columns(g, i, j)
		if exteriorElement(lev, cols) {
			return
		}
		for c, n := range cols {
			taucN[c+4] = lev.Tauc[n]
			taucN[c] = taucN[c+4]
			floN[c+4] = o.floatation[0][n]
			floN[c] = floN[c+4]
			surfN[c+4] = geom.Surface(lev.Bed[n], lev.Thickness[n], o.seaLevel)
			surfN[c] = surfN[c+4]
		}
		gl := groundingLine(o.floatation[0], cols)

		for k := 0; k < mz-1; k++ {
			for n := 0; n < fe.Q13DNumChi; n++ {
				col := cols[n%4]
				zn[n] = grid.SigmaZ(o.columnBase(lev.Bed[col], lev.Thickness[col]), o.columnThickness(lev.Thickness[col]), mz, k+n/4)
				Bn[n] = lev.Hardness[col]
				sxn[n] = o.sx[col]
				syn[n] = o.sy[col]
			}
			e.Reset(i, j, k, zn[:])
			e.NodalValues(y, 2, yn[:])
			for n := 0; n < fe.Q13DNumChi; n++ {
				xn[n] = e.X(n)
				ycn[n] = e.Y(n)
				if o.dirichletNode != nil {
					ii, jj, kk := e.Node(n)
					if o.dirichletNode(g, mz, ii, jj, kk) {
						e.MarkRowInvalid(n)
						yn[2*n], yn[2*n+1] = o.velocityBC(xn[n], ycn[n], zn[n])
					}
				}
				un[n], vn[n] = yn[2*n], yn[2*n+1]
			}

			e.Evaluate(un[:], w.u, w.ux, w.uy, w.uz)
			e.Evaluate(vn[:], w.v, w.vx, w.vy, w.vz)
			e.Evaluate(Bn[:], w.B, nil, nil, nil)
			if o.bodyForce != nil {
				e.Evaluate(xn[:], w.xq, nil, nil, nil)
				e.Evaluate(ycn[:], w.yq, nil, nil, nil)
				e.Evaluate(zn[:], w.zq, nil, nil, nil)
			} else {
				e.Evaluate(sxn[:], w.sx, nil, nil, nil)
				e.Evaluate(syn[:], w.sy, nil, nil, nil)
			}

			for n := range rl {
				rl[n] = 0
			}
			for q := 0; q < np; q++ {
				gamma := secondInvariant(w.ux[q], w.uy[q], w.uz[q], w.vx[q], w.vy[q], w.vz[q])
				eta, _ := o.flow.EffectiveViscosity(w.B[q], gamma)

				// body force: driving stress in production runs,
				// the manufactured source in verification cases
				var fu, fv float64
				if o.bodyForce != nil {
					fu, fv = o.bodyForce(w.xq[q], w.yq[q], w.zq[q])
				} else {
					rg := geom.RhoIce * stress.Gravity
					fu = -rg * w.sx[q]
					fv = -rg * w.sy[q]
				}

				W := e.W[q]
				for t := 0; t < fe.Q13DNumChi; t++ {
					psi := e.Germs[q][t]
					rl[2*t] += W * (eta*(psi.Dx*(4.0*w.ux[q]+2.0*w.vy[q])+
						psi.Dy*(w.uy[q]+w.vx[q])+
						psi.Dz*w.uz[q]) - fu*psi.Val)
					rl[2*t+1] += W * (eta*(psi.Dy*(4.0*w.vy[q]+2.0*w.ux[q])+
						psi.Dx*(w.uy[q]+w.vx[q])+
						psi.Dz*w.vz[q]) - fv*psi.Val)
				}
			}

			// basal sliding on the bottom face of grounded columns
			if k == 0 {
				face := o.face4[0]
				if gl {
					face = o.face100[0]
				}
				face.Reset(fe.BottomFace, zn[:])
				o.residualBasal(face, un[:], vn[:], taucN[:], floN[:], rl[:])
			}

			// ice front pressure imbalance on marine boundary faces
			o.residualLateral(lev, cols, zn[:], surfN[:], rl[:])

			e.AddToRhs(fb, 2, rl[:])
		}
	})
	return nil
}

// residualBasal adds the drag of the basal sliding law to the residual of
// the bottom face. Floating parts of the face contribute nothing.
func (o *Blatter) residualBasal(face *fe.Element3Face, un, vn, taucN, floN, rl []float64) {
	w := o.work
	face.Evaluate(un, w.u)
	face.Evaluate(vn, w.v)
	face.Evaluate(taucN, w.tauc)
	face.Evaluate(floN, w.flo)
	for q := 0; q < face.Npts(); q++ {
		if w.flo[q] > 0 {
			continue
		}
		beta, _ := o.slid.DragWithDerivative(w.tauc[q], w.u[q], w.v[q])
		W := face.W[q]
		for t := 0; t < fe.Q13DNumChi; t++ {
			p := face.Chi[q][t]
			rl[2*t] += W * p * beta * w.u[q]
			rl[2*t+1] += W * p * beta * w.v[q]
		}
	}
}

// residualLateral adds the depth-dependent normal stress imbalance at the
// marine ice front to the residual: cryostatic pressure inside minus ocean
// pressure outside. A lateral face belongs to the front when all of its
// columns are boundary columns with the ice bottom below sea level.
func (o *Blatter) residualLateral(lev *mg.Level, cols [4]int, zn, surfN, rl []float64) {
	w := o.work
	face := o.face4[0]
	rhog := geom.RhoIce * stress.Gravity
	rhowg := geom.RhoOcean * stress.Gravity

	for f := 0; f < 4; f++ {
		marine := true
		for _, n := range fe.Q13DIncidentNodes[f] {
			col := cols[n%4]
			if lev.NodeType[col] != geom.Boundary {
				marine = false
				break
			}
			bottom := o.columnBase(lev.Bed[col], lev.Thickness[col])
			if bottom >= o.seaLevel {
				marine = false
				break
			}
		}
		if !marine {
			continue
		}

		face.Reset(f, zn)
		face.Evaluate(surfN, w.s)
		face.Evaluate(zn, w.zq)
		for q := 0; q < face.Npts(); q++ {
			z := w.zq[q]
			pIce := rhog * (w.s[q] - z)
			pWater := 0.0
			if z < o.seaLevel {
				pWater = rhowg * (o.seaLevel - z)
			}
			p := pIce - pWater
			W := face.W[q]
			nrm := face.Normals[q]
			for t := 0; t < fe.Q13DNumChi; t++ {
				psi := face.Chi[q][t]
				rl[2*t] -= W * psi * p * nrm.X
				rl[2*t+1] -= W * psi * p * nrm.Y
			}
		}
	}
}
