// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geom derives solver-facing quantities from the evolving ice
// geometry: the per-node classification driven by ice thickness, the cell
// type mask based on the floatation criterion, and the narrow ice tongue
// cleanup applied after mass-continuity steps.
package geom

import (
	"github.com/cpmech/gosl/chk"

	"github.com/sebastianbeyer/pism/grid"
)

// NodeType classifies grid nodes by the ice cover of their incident
// elements.
type NodeType int8

const (
	// Interior nodes have only icy incident elements.
	Interior NodeType = iota
	// Boundary nodes have both icy and ice-free incident elements.
	Boundary
	// Exterior nodes have no icy incident elements; elements with an
	// exterior node are excluded from assembly and the corresponding
	// unknowns get identity-like equations.
	Exterior
)

func (t NodeType) String() string {
	switch t {
	case Interior:
		return "interior"
	case Boundary:
		return "boundary"
	case Exterior:
		return "exterior"
	}
	return "unknown"
}

// elementIsIcy reports whether all four nodes of the element with
// lower-left node (i,j) carry at least the minimum thickness.
func elementIsIcy(g *grid.Grid, thickness []float64, i, j int, minThickness float64) bool {
	for n := 0; n < 4; n++ {
		ii := g.WrapX(i + n%2)
		jj := g.WrapY(j + n/2)
		if thickness[g.NodeIndex(ii, jj)] < minThickness {
			return false
		}
	}
	return true
}

// ClassifyNodes recomputes the node classification of every node from the
// (fully replicated) thickness field. A node with four icy incident
// elements is interior, with none exterior, otherwise boundary. Incident
// element indices are clamped at the edges of bounded grids, so edge nodes
// inside a fully icy region classify as interior. The result is a pure
// function of the thickness field: reclassification with unchanged
// thickness yields identical classes.
func ClassifyNodes(g *grid.Grid, thickness []float64, minThickness float64, result []NodeType) {
	chk.IntAssert(len(thickness), g.NumNodes())
	chk.IntAssert(len(result), g.NumNodes())
	if minThickness < 0 {
		chk.Panic("minimum ice thickness cannot be negative: %g", minThickness)
	}
	for j := 0; j < g.My; j++ {
		for i := 0; i < g.Mx; i++ {
			nIcy := 0
			for dj := -1; dj <= 0; dj++ {
				for di := -1; di <= 0; di++ {
					if elementIsIcy(g, thickness, g.WrapX(i+di), g.WrapY(j+dj), minThickness) {
						nIcy++
					}
				}
			}
			var t NodeType
			switch nIcy {
			case 4:
				t = Interior
			case 0:
				t = Exterior
			default:
				t = Boundary
			}
			result[g.NodeIndex(i, j)] = t
		}
	}
}

// ExteriorElement reports whether any of the given nodal classifications is
// exterior, in which case the element is skipped entirely during assembly.
func ExteriorElement(nodeTypes []NodeType) bool {
	for _, t := range nodeTypes {
		if t == Exterior {
			return true
		}
	}
	return false
}
