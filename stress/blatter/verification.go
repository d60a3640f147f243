// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blatter

import (
	"math"

	"github.com/cpmech/gosl/fun"

	"github.com/sebastianbeyer/pism/grid"
	"github.com/sebastianbeyer/pism/stress"
)

// Test1Exact is the exact solution of the first verification case:
//
//	u = exp(x) * sin(2 pi y)
//	v = exp(x) * cos(2 pi y)
//
// on the domain [0,1] x [0,1] x [0,1] with bed 0 and thickness 1. The
// solution does not depend on z; Dirichlet values are imposed on the
// lateral boundary and the top and bottom boundaries are natural.
func Test1Exact(x, y float64) (u, v float64) {
	e := math.Exp(x)
	return e * math.Sin(2.0 * math.Pi * y), e * math.Cos(2.0 * math.Pi * y)
}

// Test1Config returns a configuration for the first verification case:
// a linear (exponent 1) flow law so the viscosity is the constant B/2.
func Test1Config(mz int) *stress.Config {
	cfg := stress.NewConfig()
	cfg.Mz = mz
	cfg.MinThickness = 0.1
	cfg.FlowPrms = fun.Prms{
		&fun.Prm{N: "n", V: 1.0},
		&fun.Prm{N: "eps", V: 1e-12},
	}
	return cfg
}

// NewTest1 allocates a first-order model configured for the first
// verification case with constant hardness B. Callers drive it with
// Update on inputs of bed 0, thickness 1, hardness B, yield stress 0 and
// a deeply negative sea level.
func NewTest1(g *grid.Grid, cfg *stress.Config, B float64) (*Blatter, error) {
	o, err := New(g, cfg)
	if err != nil {
		return nil, err
	}
	o.dirichletNode = func(lg *grid.Grid, mz, i, j, k int) bool {
		return i == 0 || i == lg.Mx-1 || j == 0 || j == lg.My-1
	}
	o.velocityBC = func(x, y, z float64) (u, v float64) {
		return Test1Exact(x, y)
	}

	// the body force balancing the exact solution at constant
	// viscosity eta = B/2
	eta := 0.5 * B
	pi := math.Pi
	cu := eta * (4.0*pi*pi + 6.0*pi - 4.0)
	cv := eta * (16.0*pi*pi - 6.0*pi - 1.0)
	o.bodyForce = func(x, y, z float64) (fu, fv float64) {
		ue, ve := Test1Exact(x, y)
		return cu * ue, cv * ve
	}
	return o, nil
}

// Test1Error returns the max-norm difference between the 3D solution and
// the exact one.
func (o *Blatter) Test1Error() (maxErr float64) {
	g := o.g
	nn := g.NumNodes()
	for j := 0; j < g.My; j++ {
		for i := 0; i < g.Mx; i++ {
			n := g.NodeIndex(i, j)
			ue, ve := Test1Exact(g.X(i), g.Y(j))
			for k := 0; k < o.cfg.Mz; k++ {
				eq := 2 * (k*nn + n)
				du := math.Abs(o.y[eq] - ue)
				dv := math.Abs(o.y[eq+1] - ve)
				if du > maxErr {
					maxErr = du
				}
				if dv > maxErr {
					maxErr = dv
				}
			}
		}
	}
	return
}
