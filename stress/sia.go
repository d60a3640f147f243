// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stress

import (
	"math"

	"github.com/sebastianbeyer/pism/geom"
	"github.com/sebastianbeyer/pism/grid"
	"github.com/sebastianbeyer/pism/rheo"
)

// Zero is the trivial stress balance: no motion
type Zero struct {
	u, v []float64
}

func init() {
	Register("none", func(g *grid.Grid, cfg *Config) (StressBalance, error) {
		nn := g.NumNodes()
		return &Zero{u: make([]float64, nn), v: make([]float64, nn)}, nil
	})
	Register("sia", NewSIA)
}

func (o *Zero) Update(in *Inputs) error { return nil }
func (o *Zero) VelocityU() []float64    { return o.u }
func (o *Zero) VelocityV() []float64    { return o.v }

// SIA computes the vertically averaged velocity of the shallow-ice
// approximation, a local function of the driving stress:
//
//	ubar = -2 A (rho g)^n / (n+2) * H^(n+1) |grad s|^(n-1) grad s
type SIA struct {
	g    *grid.Grid
	cfg  *Config
	law  rheo.FlowLaw
	u, v []float64
}

// NewSIA allocates a shallow-ice model
func NewSIA(g *grid.Grid, cfg *Config) (StressBalance, error) {
	law, err := rheo.NewFlowLaw(cfg.FlowLaw, cfg.FlowPrms)
	if err != nil {
		return nil, err
	}
	nn := g.NumNodes()
	return &SIA{
		g:   g,
		cfg: cfg,
		law: law,
		u:   make([]float64, nn),
		v:   make([]float64, nn),
	}, nil
}

// Update recomputes the velocity field
func (o *SIA) Update(in *Inputs) error {
	if err := in.Validate(o.g); err != nil {
		return err
	}
	g := o.g
	n := o.law.Exponent()
	for j := 0; j < g.My; j++ {
		for i := 0; i < g.Mx; i++ {
			idx := g.NodeIndex(i, j)
			H := in.Thickness[idx]
			if H < o.cfg.MinThickness {
				o.u[idx], o.v[idx] = 0, 0
				continue
			}
			tdx, tdy := drivingStress(g, in.Bed, in.Thickness, in.SeaLevel, i, j)
			rgH := geom.RhoIce * Gravity * H
			gradS := math.Sqrt(tdx*tdx+tdy*tdy) / rgH
			A := math.Pow(in.Hardness[idx], -n) // softness from hardness
			c := 2.0 * A * math.Pow(rgH*gradS, n-1.0) * H / (n + 2.0)
			o.u[idx] = c * tdx
			o.v[idx] = c * tdy
		}
	}
	return nil
}

func (o *SIA) VelocityU() []float64 { return o.u }
func (o *SIA) VelocityV() []float64 { return o.v }
