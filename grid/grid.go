// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package grid implements the structured computational grid: global extents,
// physical bounds, periodicity, the per-process block decomposition with a
// ghost halo, and the index-space iteration primitives used by assembly.
package grid

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Grid holds one level of the structured rectangular grid. Instances are
// immutable after construction; coarsened copies are distinct instances
// created with Coarsen.
type Grid struct {

	// global extents and physical domain
	Mx, My     int     // number of grid nodes in each horizontal direction
	Xmin, Xmax float64 // x bounds
	Ymin, Ymax float64 // y bounds
	Dx, Dy     float64 // grid spacings

	// periodicity
	PeriodicX bool // wrap indices modulo Mx
	PeriodicY bool // wrap indices modulo My

	// decomposition
	Rank, Size int // this process and the number of processes
	Xs, Xm     int // owned x-range [Xs, Xs+Xm)
	Ys, Ym     int // owned y-range [Ys, Ys+Ym)

	// ghost halo width available to stencil consumers
	GhostWidth int
}

// NewGrid2D creates one level of the grid and computes the block
// decomposition for the given process. Panics on invalid input since a
// malformed grid is a programming error, not a runtime condition.
//  mx, my     -- global number of nodes (≥ 2 each)
//  ghostWidth -- halo width pre-declared by the widest stencil consumer
//  rank, size -- identity of this process within the fixed process set
func NewGrid2D(mx, my int, xmin, xmax, ymin, ymax float64, periodicX, periodicY bool, ghostWidth, rank, size int) (o *Grid) {
	if mx < 2 || my < 2 {
		chk.Panic("grid needs at least 2x2 nodes. mx=%d my=%d is invalid", mx, my)
	}
	if xmax <= xmin || ymax <= ymin {
		chk.Panic("domain bounds are inverted or empty: x=[%g,%g] y=[%g,%g]", xmin, xmax, ymin, ymax)
	}
	if ghostWidth < 0 {
		chk.Panic("ghost width cannot be negative: %d", ghostWidth)
	}
	if size < 1 || rank < 0 || rank >= size {
		chk.Panic("invalid process set: rank=%d size=%d", rank, size)
	}
	o = new(Grid)
	o.Mx, o.My = mx, my
	o.Xmin, o.Xmax = xmin, xmax
	o.Ymin, o.Ymax = ymin, ymax
	o.PeriodicX, o.PeriodicY = periodicX, periodicY
	if periodicX {
		o.Dx = (xmax - xmin) / float64(mx)
	} else {
		o.Dx = (xmax - xmin) / float64(mx-1)
	}
	if periodicY {
		o.Dy = (ymax - ymin) / float64(my)
	} else {
		o.Dy = (ymax - ymin) / float64(my-1)
	}
	o.Rank, o.Size = rank, size
	o.GhostWidth = ghostWidth

	// near-square 2D factorisation of the process set, then even index
	// splits with the remainder spread over the first blocks
	px, py := factorise(size, mx, my)
	o.Xs, o.Xm = split(mx, px, rank%px)
	o.Ys, o.Ym = split(my, py, rank/px)
	if o.Xm < 1 || o.Ym < 1 {
		chk.Panic("grid %dx%d is too small for %d processes", mx, my, size)
	}
	return
}

// Coarsen creates the next-coarser grid level. (Mx-1) and (My-1) must be
// divisible by the coarsening factor.
func (o *Grid) Coarsen(factor int) *Grid {
	if factor < 2 {
		chk.Panic("coarsening factor must be at least 2. factor=%d is invalid", factor)
	}
	if (o.Mx-1)%factor != 0 || (o.My-1)%factor != 0 {
		chk.Panic("grid %dx%d cannot be coarsened by %d: interior not divisible", o.Mx, o.My, factor)
	}
	mx := (o.Mx-1)/factor + 1
	my := (o.My-1)/factor + 1
	return NewGrid2D(mx, my, o.Xmin, o.Xmax, o.Ymin, o.Ymax, o.PeriodicX, o.PeriodicY, o.GhostWidth, o.Rank, o.Size)
}

// PadForMultigrid returns the smallest m ≥ mx such that (m-1) is divisible
// by factor^(levels-1). Padding is added on the upper domain edge only so
// the lower bound stays fixed.
func PadForMultigrid(mx, levels, factor int) int {
	if levels < 1 || factor < 2 {
		chk.Panic("invalid multigrid setup: levels=%d factor=%d", levels, factor)
	}
	d := 1
	for l := 1; l < levels; l++ {
		d *= factor
	}
	r := (mx - 1) % d
	if r == 0 {
		return mx
	}
	return mx + d - r
}

// X returns the x-coordinate of node column i.
func (o *Grid) X(i int) float64 { return o.Xmin + float64(i)*o.Dx }

// Y returns the y-coordinate of node row j.
func (o *Grid) Y(j int) float64 { return o.Ymin + float64(j)*o.Dy }

// Radius returns the distance of node (i,j) from the coordinate origin.
func (o *Grid) Radius(i, j int) float64 {
	x, y := o.X(i), o.Y(j)
	return math.Sqrt(x*x + y*y)
}

// InNullStrip reports whether node (i,j) lies within the given physical
// distance of the domain edge.
func (o *Grid) InNullStrip(i, j int, width float64) bool {
	if width <= 0 {
		return false
	}
	x, y := o.X(i), o.Y(j)
	return x <= o.Xmin+width || x >= o.Xmax-width ||
		y <= o.Ymin+width || y >= o.Ymax-width
}

// SigmaZ returns the physical elevation of vertical node k in an ice column
// with bed elevation b and thickness H, using Mz equally spaced levels of
// the terrain-following vertical coordinate.
func SigmaZ(b, H float64, mz, k int) float64 {
	if mz < 2 {
		chk.Panic("ice column needs at least 2 vertical levels. mz=%d is invalid", mz)
	}
	return b + H*float64(k)/float64(mz-1)
}

// WrapX maps an x-index into the valid global range, wrapping on periodic
// grids and clipping otherwise.
func (o *Grid) WrapX(i int) int { return wrap(i, o.Mx, o.PeriodicX) }

// WrapY maps a y-index into the valid global range, wrapping on periodic
// grids and clipping otherwise.
func (o *Grid) WrapY(j int) int { return wrap(j, o.My, o.PeriodicY) }

// NumNodes returns the global number of horizontal grid nodes.
func (o *Grid) NumNodes() int { return o.Mx * o.My }

// NodeIndex returns the global row-major index of node (i,j).
func (o *Grid) NodeIndex(i, j int) int { return j*o.Mx + i }

// Owns reports whether node (i,j) belongs to this process.
func (o *Grid) Owns(i, j int) bool {
	return i >= o.Xs && i < o.Xs+o.Xm && j >= o.Ys && j < o.Ys+o.Ym
}

func wrap(i, m int, periodic bool) int {
	if periodic {
		i %= m
		if i < 0 {
			i += m
		}
		return i
	}
	if i < 0 {
		return 0
	}
	if i > m-1 {
		return m - 1
	}
	return i
}

// split computes an even partition of n indices into nparts contiguous
// blocks, assigning the remainder to the first blocks.
func split(n, nparts, part int) (start, count int) {
	count = n / nparts
	rem := n % nparts
	start = part*count + imin(part, rem)
	if part < rem {
		count++
	}
	return
}

// factorise picks the process-grid shape px*py == size that best matches
// the aspect ratio of the index space.
func factorise(size, mx, my int) (px, py int) {
	px, py = 1, size
	best := math.Inf(1)
	for p := 1; p <= size; p++ {
		if size%p != 0 {
			continue
		}
		q := size / p
		if p > mx || q > my {
			continue
		}
		d := math.Abs(float64(mx)/float64(p) - float64(my)/float64(q))
		if d < best {
			best = d
			px, py = p, q
		}
	}
	return
}

func imin(a, b int) int {
	if a < b {
		return a
	}
	return b
}
