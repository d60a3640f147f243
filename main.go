// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"

	"github.com/sebastianbeyer/pism/grid"
	"github.com/sebastianbeyer/pism/inp"
	"github.com/sebastianbeyer/pism/out"
	"github.com/sebastianbeyer/pism/rheo"
	"github.com/sebastianbeyer/pism/stress"
	"github.com/sebastianbeyer/pism/stress/blatter"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			if mpi.Rank() == 0 {
				io.PfRed("\nERROR: %v\n", err)
				io.Pf("See location of error below:\n")
				chk.Verbose = true
				for i := 5; i > 3; i-- {
					chk.CallerInfo(i)
				}
			}
		}
		mpi.Stop(false)
	}()
	mpi.Start(false)

	// read input parameters
	fnamepath, fnkey := io.ArgToFilename(0, "", ".sim", false)
	verbose := io.ArgToBool(1, true)
	erasePrev := io.ArgToBool(2, true)
	encoder := io.ArgToString(3, "json")

	// message
	if mpi.Rank() == 0 && verbose {
		io.PfWhite("\nPISM-Go -- ice sheet stress balance\n")
		io.Pf("Copyright 2017 The PISM-Go Authors. All rights reserved.\n")
		io.Pf("Use of this source code is governed by a BSD-style\n")
		io.Pf("license that can be found in the LICENSE file.\n")

		io.Pf("\n%v\n", io.ArgsTable("INPUT ARGUMENTS",
			"filename path (empty = verification)", "fnamepath", fnamepath,
			"show messages", "verbose", verbose,
			"erase previous results", "erasePrev", erasePrev,
			"results encoder", "encoder", encoder,
		))
	}

	// without a simulation file, run the verification cases
	if fnkey == "" {
		runVerification()
		return
	}

	// simulation data
	sim := inp.ReadSim(fnamepath, "", erasePrev, mpi.Rank() == 0)
	g := sim.MakeGrid()
	cfg := sim.StressConfig()

	// model and geometry
	m, err := stress.New(sim.Stress.Model, g, cfg)
	if err != nil {
		chk.Panic("cannot allocate stress balance model:\n%v", err)
	}
	in, err := sim.MakeInputs(g)
	if err != nil {
		chk.Panic("cannot build geometry fields:\n%v", err)
	}

	// solve
	err = m.Update(in)
	if err != nil {
		chk.Panic("stress balance solve failed:\n%v", err)
	}

	// report and save results
	if mpi.Rank() == 0 {
		if verbose {
			io.Pf("\nmax vertically averaged speed: %g m/year\n", stress.MaxSpeed(m)*rheo.SecPerYear)
		}
		r := out.Collect(sim.Key, g, in, m)
		err = r.Save(sim.DirOut, encoder)
		if err != nil {
			chk.Panic("cannot save results:\n%v", err)
		}
		if verbose {
			io.Pf("results saved to %s\n", sim.DirOut)
		}
	}
}

// runVerification solves the manufactured cases on a sequence of grids and
// prints the max-norm errors.
func runVerification() {
	root := mpi.Rank() == 0

	if root {
		io.Pfcyan("\nPoisson problem, manufactured solution\n")
		io.Pf("%6s%23s\n", "m", "max error")
	}
	for _, m := range []int{9, 17, 33} {
		g := grid.NewGrid2D(m, m, -1, 1, -1, 1, false, false, 1, mpi.Rank(), mpi.Size())
		cfg := stress.NewConfig()
		cfg.Mz = m
		p, err := blatter.NewPoisson(g, cfg)
		if err != nil {
			chk.Panic("cannot allocate Poisson solver:\n%v", err)
		}
		if err := p.Update(nil); err != nil {
			chk.Panic("Poisson solve failed:\n%v", err)
		}
		if root {
			io.Pf("%6d%23.15e\n", m, p.MaxError())
		}
		p.Free()
	}

	if root {
		io.Pfcyan("\nfirst-order momentum balance, exponential exact solution\n")
		io.Pf("%6s%23s\n", "m", "max error")
	}
	for _, m := range []int{9, 17, 33} {
		g := grid.NewGrid2D(m, m, 0, 1, 0, 1, false, false, 1, mpi.Rank(), mpi.Size())
		B := 1.0
		b, err := blatter.NewTest1(g, blatter.Test1Config(3), B)
		if err != nil {
			chk.Panic("cannot allocate first-order solver:\n%v", err)
		}
		nn := g.NumNodes()
		in := &stress.Inputs{
			Bed:       make([]float64, nn),
			Thickness: make([]float64, nn),
			Hardness:  make([]float64, nn),
			Tauc:      make([]float64, nn),
			SeaLevel:  -1000.0,
		}
		for n := 0; n < nn; n++ {
			in.Thickness[n] = 1.0
			in.Hardness[n] = B
		}
		if err := b.Update(in); err != nil {
			chk.Panic("first-order solve failed:\n%v", err)
		}
		if root {
			io.Pf("%6d%23.15e\n", m, b.Test1Error())
		}
		b.Free()
	}
}
