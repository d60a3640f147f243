// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

import "github.com/cpmech/gosl/chk"

// Points visits every node owned by this process exactly once, row-major.
func (o *Grid) Points(visit func(i, j int)) {
	for j := o.Ys; j < o.Ys+o.Ym; j++ {
		for i := o.Xs; i < o.Xs+o.Xm; i++ {
			visit(i, j)
		}
	}
}

// PointsWithGhosts visits the owned nodes plus a halo of width w in each
// direction. On bounded axes the halo is clipped to the global range; on
// periodic axes indices wrap modulo the global extent and are reported
// wrapped. Requesting a width beyond the allocated halo is a programming
// error.
func (o *Grid) PointsWithGhosts(w int, visit func(i, j int)) {
	if w > o.GhostWidth {
		chk.Panic("stencil width %d exceeds the allocated ghost width %d", w, o.GhostWidth)
	}
	ilo, ihi := o.haloRange(o.Xs, o.Xm, o.Mx, o.PeriodicX, w)
	jlo, jhi := o.haloRange(o.Ys, o.Ym, o.My, o.PeriodicY, w)
	for j := jlo; j < jhi; j++ {
		for i := ilo; i < ihi; i++ {
			visit(o.WrapX(i), o.WrapY(j))
		}
	}
}

// Elements visits every element assigned to this process. Elements are
// identified by their lower-left node and belong to the process owning that
// node, so the element sets of all processes are disjoint and their union
// covers the whole grid; global contributions can then be joined by a plain
// sum across processes. On bounded axes the node at the global upper edge
// starts no element.
func (o *Grid) Elements(visit func(i, j int)) {
	ilo, ihi := o.elementRange(o.Xs, o.Xm, o.Mx, o.PeriodicX)
	jlo, jhi := o.elementRange(o.Ys, o.Ym, o.My, o.PeriodicY)
	for j := jlo; j < jhi; j++ {
		for i := ilo; i < ihi; i++ {
			visit(i, j)
		}
	}
}

func (o *Grid) haloRange(s, m, gm int, periodic bool, w int) (lo, hi int) {
	lo, hi = s-w, s+m+w
	if !periodic {
		if lo < 0 {
			lo = 0
		}
		if hi > gm {
			hi = gm
		}
	}
	return
}

func (o *Grid) elementRange(s, m, gm int, periodic bool) (lo, hi int) {
	lo, hi = s, s+m
	if !periodic && hi > gm-1 {
		hi = gm - 1
	}
	return
}
