// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from a (.sim) JSON file
package inp

import (
	"encoding/json"
	goio "io"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"

	"github.com/sebastianbeyer/pism/grid"
	"github.com/sebastianbeyer/pism/stress"
)

// Data holds global data for simulations
type Data struct {
	Desc   string `json:"desc"`   // description of simulation
	DirOut string `json:"dirout"` // directory for output; e.g. /tmp/pism
}

// GridData holds the definition of the structured computational grid
type GridData struct {
	Mx         int     `json:"mx"`         // number of nodes along x
	My         int     `json:"my"`         // number of nodes along y
	Xmin       float64 `json:"xmin"`       // domain bounds [m]
	Xmax       float64 `json:"xmax"`       //
	Ymin       float64 `json:"ymin"`       //
	Ymax       float64 `json:"ymax"`       //
	PeriodicX  bool    `json:"periodicx"`  // periodic along x
	PeriodicY  bool    `json:"periodicy"`  // periodic along y
	GhostWidth int     `json:"ghostwidth"` // stencil width of the ghost exchange
}

// GeomData names the functions giving the initial geometry fields and sets
// the sea level. The functions are evaluated at the node coordinates.
type GeomData struct {
	SeaLevel  float64 `json:"sealevel"`  // sea level elevation [m]
	Bed       string  `json:"bed"`       // function name: bed elevation [m]
	Thickness string  `json:"thickness"` // function name: ice thickness [m]
	Hardness  string  `json:"hardness"`  // function name: vertically averaged hardness
	Tauc      string  `json:"tauc"`      // function name: basal yield stress [Pa]
}

// LinSolData holds data for linear solvers
type LinSolData struct {
	Name      string `json:"name"`      // "mumps" or "umfpack"
	Symmetric bool   `json:"symmetric"` // use symmetric solver
	Verbose   bool   `json:"verbose"`   // verbose?
	Timing    bool   `json:"timing"`    // show timing statistics
}

// SolverData holds the Newton iteration data
type SolverData struct {
	NmaxIt  int     `json:"nmaxit"`  // number of max iterations
	FbTol   float64 `json:"fbtol"`   // tolerance for convergence on fb
	FbMin   float64 `json:"fbmin"`   // minimum value of fb
	DvgCtrl bool    `json:"dvgctrl"` // use divergence control
	NdvgMax int     `json:"ndvgmax"` // max number of continued divergence
	ShowR   bool    `json:"showr"`   // show residual
}

// StressData selects and configures the stress balance model
type StressData struct {
	Model            string   `json:"model"`            // "none", "sia", "ssa" or "blatter"
	Mz               int      `json:"mz"`               // vertical nodes of 3D models
	NLevels          int      `json:"nlevels"`          // multigrid levels (1 disables multigrid)
	CoarseningFactor int      `json:"coarsening"`       // multigrid coarsening factor
	MinThickness     float64  `json:"minthickness"`     // ice extent threshold [m]
	FlowLaw          string   `json:"flowlaw"`          // flow law name
	FlowPrms         fun.Prms `json:"flowprms"`         // flow law parameters
	SlidingLaw       string   `json:"slidinglaw"`       // sliding law name
	SlidingPrms      fun.Prms `json:"slidingprms"`      // sliding law parameters
}

// Simulation holds all simulation data
type Simulation struct {

	// input
	Data      Data       `json:"data"`      // stores global simulation data
	Functions FuncsData  `json:"functions"` // stores the geometry functions
	Grid      GridData   `json:"grid"`      // grid definition
	Geom      GeomData   `json:"geometry"`  // geometry fields and sea level
	LinSol    LinSolData `json:"linsol"`    // linear solver data
	Solver    SolverData `json:"solver"`    // Newton solver data
	Stress    StressData `json:"stress"`    // stress balance model data

	// derived
	DirOut string // directory to save results
	Key    string // simulation key; e.g. mysim01.sim => mysim01 or mysim01-alias
}

// ReadSim reads all simulation data from a .sim JSON file
func ReadSim(simfilepath, alias string, erasePrev, createDirOut bool) *Simulation {

	// new sim
	var o Simulation

	// read file
	b, err := io.ReadFile(simfilepath)
	if err != nil {
		chk.Panic("ReadSim: cannot read simulation file %q", simfilepath)
	}

	// set default values
	o.Grid.SetDefault()
	o.Solver.SetDefault()
	o.LinSol.SetDefault()
	o.Stress.SetDefault()

	// decode
	err = json.Unmarshal(b, &o)
	if err != nil {
		chk.Panic("ReadSim: cannot unmarshal simulation file %q", simfilepath)
	}

	// filename key
	fn := filepath.Base(simfilepath)
	fnkey := io.FnKey(fn)
	o.Key = fnkey
	if alias != "" {
		o.Key += "-" + alias
	}

	// output directory
	o.DirOut = o.Data.DirOut
	if o.DirOut == "" {
		o.DirOut = "/tmp/pism/" + fnkey
	}

	// create directory
	if createDirOut {
		err = os.MkdirAll(o.DirOut, 0777)
		if err != nil {
			chk.Panic("cannot create directory for output results (%s): %v", o.DirOut, err)
		}
	}

	// erase previous simulation results
	if erasePrev {
		io.RemoveAll(io.Sf("%s/%s*", o.DirOut, fnkey))
	}

	// validate
	if o.Grid.Mx < 2 || o.Grid.My < 2 {
		chk.Panic("ReadSim: grid needs at least 2x2 nodes. mx=%d my=%d is invalid", o.Grid.Mx, o.Grid.My)
	}
	if o.Stress.Model == "" {
		chk.Panic("ReadSim: the stress balance model name cannot be empty")
	}

	// results
	return &o
}

// MakeGrid allocates the computational grid of this simulation; on
// distributed runs each process gets its own portion.
func (o *Simulation) MakeGrid() *grid.Grid {
	rank, size := 0, 1
	if mpi.IsOn() {
		rank, size = mpi.Rank(), mpi.Size()
	}
	d := &o.Grid
	return grid.NewGrid2D(d.Mx, d.My, d.Xmin, d.Xmax, d.Ymin, d.Ymax,
		d.PeriodicX, d.PeriodicY, d.GhostWidth, rank, size)
}

// StressConfig builds the stress balance configuration
func (o *Simulation) StressConfig() *stress.Config {
	cfg := stress.NewConfig()
	cfg.Mz = o.Stress.Mz
	cfg.NLevels = o.Stress.NLevels
	cfg.CoarseningFactor = o.Stress.CoarseningFactor
	cfg.MinThickness = o.Stress.MinThickness
	cfg.FlowLaw = o.Stress.FlowLaw
	cfg.FlowPrms = o.Stress.FlowPrms
	cfg.SlidingLaw = o.Stress.SlidingLaw
	cfg.SlidingPrms = o.Stress.SlidingPrms

	s := cfg.Solver
	s.NmaxIt = o.Solver.NmaxIt
	s.FbTol = o.Solver.FbTol
	s.FbMin = o.Solver.FbMin
	s.DvgCtrl = o.Solver.DvgCtrl
	s.NdvgMax = o.Solver.NdvgMax
	s.ShowR = o.Solver.ShowR
	s.LinSol = o.LinSol.Name
	s.Symmetric = o.LinSol.Symmetric
	s.Verbose = o.LinSol.Verbose
	s.Timing = o.LinSol.Timing
	return cfg
}

// MakeInputs evaluates the geometry functions at the nodes of grid g
func (o *Simulation) MakeInputs(g *grid.Grid) (in *stress.Inputs, err error) {
	nn := g.NumNodes()
	in = &stress.Inputs{
		Bed:       make([]float64, nn),
		Thickness: make([]float64, nn),
		Hardness:  make([]float64, nn),
		Tauc:      make([]float64, nn),
		SeaLevel:  o.Geom.SeaLevel,
	}
	for _, fld := range []struct {
		name string
		vals []float64
	}{
		{o.Geom.Bed, in.Bed},
		{o.Geom.Thickness, in.Thickness},
		{o.Geom.Hardness, in.Hardness},
		{o.Geom.Tauc, in.Tauc},
	} {
		var fcn fun.Func
		fcn, err = o.Functions.Get(fld.name)
		if err != nil {
			return
		}
		x := []float64{0, 0}
		for j := 0; j < g.My; j++ {
			for i := 0; i < g.Mx; i++ {
				x[0], x[1] = g.X(i), g.Y(j)
				fld.vals[g.NodeIndex(i, j)] = fcn.F(0, x)
			}
		}
	}
	return
}

// GetInfo returns formatted information
func (o *Simulation) GetInfo(w goio.Writer) (err error) {
	b, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return
}

// extra settings //////////////////////////////////////////////////////////////////////////////////

// SetDefault sets defaults values
func (o *GridData) SetDefault() {
	o.GhostWidth = 1
}

// SetDefault sets defaults values
func (o *LinSolData) SetDefault() {
	o.Name = "umfpack"
}

// SetDefault set defaults values
func (o *SolverData) SetDefault() {
	o.NmaxIt = 20
	o.FbTol = 1e-8
	o.FbMin = 1e-14
	o.DvgCtrl = true
	o.NdvgMax = 20
}

// SetDefault sets defaults values
func (o *StressData) SetDefault() {
	o.Model = "blatter"
	o.Mz = 9
	o.NLevels = 1
	o.CoarseningFactor = 2
	o.MinThickness = 10.0
	o.FlowLaw = "glen"
	o.SlidingLaw = "pseudo_plastic"
}
