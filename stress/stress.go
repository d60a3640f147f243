// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stress defines the stress balance capability: models computing
// ice velocity from the current geometry. Model implementations register
// themselves with the factory; the shallow models live here, the 3D
// first-order model in the blatter subpackage.
package stress

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"

	"github.com/sebastianbeyer/pism/geom"
	"github.com/sebastianbeyer/pism/grid"
	"github.com/sebastianbeyer/pism/nls"
)

// Gravity is the acceleration due to gravity [m/s2]
const Gravity = 9.81

// Inputs holds the geometry fields a stress balance solve consumes. All
// fields are nodal and replicated on every process.
type Inputs struct {
	Bed       []float64 // bed elevation [m]
	Thickness []float64 // ice thickness [m]
	Hardness  []float64 // vertically averaged ice hardness [Pa s^(1/n)]
	Tauc      []float64 // basal yield stress [Pa]
	SeaLevel  float64   // sea level elevation [m]
}

// Validate checks the sizes and signs of the input fields
func (o *Inputs) Validate(g *grid.Grid) error {
	nn := g.NumNodes()
	if len(o.Bed) != nn || len(o.Thickness) != nn || len(o.Hardness) != nn || len(o.Tauc) != nn {
		return chk.Err("input fields must have %d nodes: bed=%d thickness=%d hardness=%d tauc=%d",
			nn, len(o.Bed), len(o.Thickness), len(o.Hardness), len(o.Tauc))
	}
	for n, h := range o.Thickness {
		if h < 0 {
			return chk.Err("ice thickness cannot be negative: H[%d]=%g", n, h)
		}
	}
	return nil
}

// StressBalance computes ice velocity from geometry
type StressBalance interface {

	// Update recomputes the velocity for the given geometry. On failure
	// the previously computed velocity is kept.
	Update(in *Inputs) error

	// VelocityU and VelocityV return the vertically averaged velocity
	// components on grid nodes [m/s]
	VelocityU() []float64
	VelocityV() []float64
}

// Config collects the parameters shared by the stress balance models
type Config struct {
	Mz               int     // vertical nodes of 3D models
	NLevels          int     // multigrid levels (1 disables multigrid)
	CoarseningFactor int     // multigrid coarsening factor
	MinThickness     float64 // ice extent threshold [m]

	FlowLaw     string
	FlowPrms    fun.Prms
	SlidingLaw  string
	SlidingPrms fun.Prms

	Solver *nls.Config
}

// NewConfig returns a configuration with default values
func NewConfig() *Config {
	return &Config{
		Mz:               9,
		NLevels:          1,
		CoarseningFactor: 2,
		MinThickness:     10.0,
		FlowLaw:          "glen",
		SlidingLaw:       "pseudo_plastic",
		Solver:           nls.NewConfig(),
	}
}

// Validate checks the configuration
func (o *Config) Validate() error {
	if o.Mz < 2 {
		return chk.Err("3D models need at least 2 vertical nodes. mz=%d is invalid", o.Mz)
	}
	if o.NLevels < 1 {
		return chk.Err("number of multigrid levels must be at least 1. nlevels=%d is invalid", o.NLevels)
	}
	if o.NLevels > 1 && o.CoarseningFactor < 2 {
		return chk.Err("coarsening factor must be at least 2. factor=%d is invalid", o.CoarseningFactor)
	}
	if o.MinThickness < 0 {
		return chk.Err("ice extent threshold cannot be negative: %g", o.MinThickness)
	}
	return nil
}

// Allocator creates a stress balance model
type Allocator func(g *grid.Grid, cfg *Config) (StressBalance, error)

// allocators holds all available models
var allocators = map[string]Allocator{}

// Register adds a model to the factory. Model subpackages call it from
// their init functions.
func Register(name string, alloc Allocator) {
	if _, ok := allocators[name]; ok {
		chk.Panic("stress balance model %q is already registered", name)
	}
	allocators[name] = alloc
}

// New allocates a stress balance model by name
func New(name string, g *grid.Grid, cfg *Config) (StressBalance, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	alloc, ok := allocators[name]
	if !ok {
		return nil, chk.Err("stress balance model %q is not available", name)
	}
	return alloc(g, cfg)
}

// drivingStress computes the driving stress components at node (i,j) from
// centered differences of the surface elevation, one-sided at the domain
// edges of bounded grids.
func drivingStress(g *grid.Grid, bed, thickness []float64, seaLevel float64, i, j int) (tdx, tdy float64) {
	H := thickness[g.NodeIndex(i, j)]
	if H <= 0 {
		return 0, 0
	}
	s := func(i, j int) float64 {
		n := g.NodeIndex(g.WrapX(i), g.WrapY(j))
		return geom.Surface(bed[n], thickness[n], seaLevel)
	}
	var dsdx, dsdy float64
	if g.PeriodicX {
		dsdx = (s(i+1, j) - s(i-1, j)) / (2.0 * g.Dx)
	} else {
		iw, ie := g.WrapX(i-1), g.WrapX(i+1)
		dsdx = (s(ie, j) - s(iw, j)) / (float64(ie-iw) * g.Dx)
	}
	if g.PeriodicY {
		dsdy = (s(i, j+1) - s(i, j-1)) / (2.0 * g.Dy)
	} else {
		js, jn := g.WrapY(j-1), g.WrapY(j+1)
		dsdy = (s(i, jn) - s(i, js)) / (float64(jn-js) * g.Dy)
	}
	rg := geom.RhoIce * Gravity
	return -rg * H * dsdx, -rg * H * dsdy
}

// MaxSpeed returns the largest velocity magnitude of a model [m/s]
func MaxSpeed(m StressBalance) (mx float64) {
	u, v := m.VelocityU(), m.VelocityV()
	for n := range u {
		s := math.Sqrt(u[n]*u[n] + v[n]*v[n])
		if s > mx {
			mx = s
		}
	}
	return
}
