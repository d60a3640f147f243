// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blatter

import (
	"github.com/cpmech/gosl/la"

	"github.com/sebastianbeyer/pism/fe"
	"github.com/sebastianbeyer/pism/geom"
	"github.com/sebastianbeyer/pism/grid"
	"github.com/sebastianbeyer/pism/nls"
)

// jacobianFinest is the direct-solver callback; the multigrid solver goes
// through assembleJacobian level by level instead.
func (o *Blatter) jacobianFinest(y []float64, Kb *nls.Matrix, firstIt bool) error {
	return o.assembleJacobian(0, y, Kb)
}

// assembleJacobian builds the Jacobian of level l linearized about yl. The
// element blocks are symmetric: the upper triangle is computed and the
// lower one filled by reflection before insertion.
func (o *Blatter) assembleJacobian(l int, yl []float64, Kb *nls.Matrix) error {
	lev := o.h.Levels[l]
	g := lev.G
	e := o.elems[l]
	mz := o.cfg.Mz
	nn := g.NumNodes()

	K := la.MatAlloc(2*fe.Q13DNumChi, 2*fe.Q13DNumChi)
	var yn [2 * fe.Q13DNumChi]float64
	var un, vn, zn, Bn [fe.Q13DNumChi]float64
	var taucN, floN [fe.Q13DNumChi]float64

	g.Elements(func(i, j int) {
		cols := columns(g, i, j)
		if exteriorElement(lev, cols) {
			return
		}
		for c, n := range cols {
			taucN[c+4] = lev.Tauc[n]
			taucN[c] = taucN[c+4]
			floN[c+4] = o.floatation[l][n]
			floN[c] = floN[c+4]
		}
		gl := groundingLine(o.floatation[l], cols)

		for k := 0; k < mz-1; k++ {
			for n := 0; n < fe.Q13DNumChi; n++ {
				col := cols[n%4]
				zn[n] = grid.SigmaZ(o.columnBase(lev.Bed[col], lev.Thickness[col]), o.columnThickness(lev.Thickness[col]), mz, k+n/4)
				Bn[n] = lev.Hardness[col]
			}
			e.Reset(i, j, k, zn[:])
			e.NodalValues(yl, 2, yn[:])
			for n := 0; n < fe.Q13DNumChi; n++ {
				if o.dirichletNode != nil {
					ii, jj, kk := e.Node(n)
					if o.dirichletNode(g, mz, ii, jj, kk) {
						e.MarkRowInvalid(n)
						e.MarkColInvalid(n)
						yn[2*n], yn[2*n+1] = o.velocityBC(e.X(n), e.Y(n), zn[n])
					}
				}
				un[n], vn[n] = yn[2*n], yn[2*n+1]
			}

			la.MatFill(K, 0)
			o.jacobianVolume(e, un[:], vn[:], Bn[:], K)

			if k == 0 {
				face := o.face4[l]
				if gl {
					face = o.face100[l]
				}
				face.Reset(fe.BottomFace, zn[:])
				o.jacobianBasal(face, un[:], vn[:], taucN[:], floN[:], K)
			}

			// the element block is symmetric; reflect the upper
			// triangle into the lower one
			for t := 0; t < fe.Q13DNumChi; t++ {
				for s := 0; s < t; s++ {
					K[2*t][2*s] = K[2*s][2*t]
					K[2*t+1][2*s] = K[2*s][2*t+1]
					K[2*t][2*s+1] = K[2*s+1][2*t]
					K[2*t+1][2*s+1] = K[2*s+1][2*t+1]
				}
			}
			e.AddToKb(Kb, 2, K)
		}
	})

	// identity rows at exterior and Dirichlet nodes, inserted once by the
	// owning process
	g.Points(func(i, j int) {
		n := g.NodeIndex(i, j)
		ext := lev.NodeType[n] == geom.Exterior
		if !ext && o.dirichletNode == nil {
			return
		}
		w := o.penaltyScale(g, lev.Thickness[n])
		for k := 0; k < mz; k++ {
			if ext || o.dirichletNode(g, mz, i, j, k) {
				eq := 2 * (k*nn + n)
				Kb.Put(eq, eq, w)
				Kb.Put(eq+1, eq+1, w)
			}
		}
	})
	return nil
}

// jacobianVolume adds the viscous part of the element Jacobian: the Picard
// block plus the Newton terms from the viscosity derivative. Only the
// upper triangle is written.
func (o *Blatter) jacobianVolume(e *fe.Element3, un, vn, Bn []float64, K [][]float64) {
	w := o.work
	e.Evaluate(un, w.u, w.ux, w.uy, w.uz)
	e.Evaluate(vn, w.v, w.vx, w.vy, w.vz)
	e.Evaluate(Bn, w.B, nil, nil, nil)

	for q := 0; q < e.Npts(); q++ {
		ux, uy, uz := w.ux[q], w.uy[q], w.uz[q]
		vx, vy, vz := w.vx[q], w.vy[q], w.vz[q]
		gamma := secondInvariant(ux, uy, uz, vx, vy, vz)
		eta, deta := o.flow.EffectiveViscosity(w.B[q], gamma)
		W := e.W[q]

		for t := 0; t < fe.Q13DNumChi; t++ {
			psi := e.Germs[q][t]
			for s := t; s < fe.Q13DNumChi; s++ {
				phi := e.Germs[q][s]

				gammaU := 2.0*ux*phi.Dx + vy*phi.Dx + 0.5*phi.Dy*(uy+vx) + 0.5*uz*phi.Dz
				gammaV := 2.0*vy*phi.Dy + ux*phi.Dy + 0.5*phi.Dx*(uy+vx) + 0.5*vz*phi.Dz
				etaU := deta * gammaU
				etaV := deta * gammaV

				// Picard part
				K[2*t][2*s] += W * eta * (4.0*psi.Dx*phi.Dx + psi.Dy*phi.Dy + psi.Dz*phi.Dz)
				K[2*t][2*s+1] += W * eta * (2.0*psi.Dx*phi.Dy + psi.Dy*phi.Dx)
				K[2*t+1][2*s] += W * eta * (2.0*psi.Dy*phi.Dx + psi.Dx*phi.Dy)
				K[2*t+1][2*s+1] += W * eta * (4.0*psi.Dy*phi.Dy + psi.Dx*phi.Dx + psi.Dz*phi.Dz)

				// Newton terms
				ru := psi.Dx*(4.0*ux+2.0*vy) + psi.Dy*(uy+vx) + psi.Dz*uz
				rv := psi.Dx*(uy+vx) + psi.Dy*(4.0*vy+2.0*ux) + psi.Dz*vz
				K[2*t][2*s] += W * etaU * ru
				K[2*t][2*s+1] += W * etaV * ru
				K[2*t+1][2*s] += W * etaU * rv
				K[2*t+1][2*s+1] += W * etaV * rv
			}
		}
	}
}

// jacobianBasal adds the drag derivative blocks of the basal sliding law
// on the bottom face of grounded columns. The block is symmetric, so the
// full write here survives the reflection of the upper triangle.
func (o *Blatter) jacobianBasal(face *fe.Element3Face, un, vn, taucN, floN []float64, K [][]float64) {
	w := o.work
	face.Evaluate(un, w.u)
	face.Evaluate(vn, w.v)
	face.Evaluate(taucN, w.tauc)
	face.Evaluate(floN, w.flo)

	for q := 0; q < face.Npts(); q++ {
		if w.flo[q] > 0 {
			continue
		}
		beta, dbeta := o.slid.DragWithDerivative(w.tauc[q], w.u[q], w.v[q])
		W := face.W[q]
		for t := 0; t < fe.Q13DNumChi; t++ {
			psi := face.Chi[q][t]
			for s := 0; s < fe.Q13DNumChi; s++ {
				p := psi * face.Chi[q][s]
				K[2*t][2*s] += W * p * (beta + dbeta*w.u[q]*w.u[q])
				K[2*t][2*s+1] += W * p * dbeta * w.u[q] * w.v[q]
				K[2*t+1][2*s] += W * p * dbeta * w.v[q] * w.u[q]
				K[2*t+1][2*s+1] += W * p * (beta + dbeta*w.v[q]*w.v[q])
			}
		}
	}
}
