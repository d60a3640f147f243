// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"os"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func verbose() bool {
	chk.Verbose = io.Verbose
	return chk.Verbose
}

func Test_read01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("read01. reading a simulation file")

	sim := ReadSim("data/slab.sim", "", false, false)
	if verbose() {
		sim.GetInfo(os.Stdout)
		io.Pf("\n")
	}

	chk.IntAssert(sim.Grid.Mx, 17)
	chk.IntAssert(sim.Grid.My, 17)
	chk.Float64(tst, "xmax", 1e-15, sim.Grid.Xmax, 8e4)
	chk.IntAssert(sim.Grid.GhostWidth, 1)

	// overridden and default solver values
	chk.IntAssert(sim.Solver.NmaxIt, 30)
	chk.Float64(tst, "fbtol", 1e-15, sim.Solver.FbTol, 1e-10)
	chk.Float64(tst, "fbmin", 1e-15, sim.Solver.FbMin, 1e-14)
	if !sim.Solver.DvgCtrl {
		tst.Errorf("divergence control must default to true")
	}
	if sim.LinSol.Name != "umfpack" {
		tst.Errorf("linear solver name read incorrectly: %q", sim.LinSol.Name)
	}

	// stress balance block
	if sim.Stress.Model != "blatter" {
		tst.Errorf("model read incorrectly: %q", sim.Stress.Model)
	}
	chk.IntAssert(sim.Stress.Mz, 5)
	chk.IntAssert(sim.Stress.NLevels, 2)
	chk.Float64(tst, "minthickness", 1e-15, sim.Stress.MinThickness, 10.0)

	cfg := sim.StressConfig()
	if err := cfg.Validate(); err != nil {
		tst.Errorf("configuration must be valid: %v", err)
	}
	chk.IntAssert(cfg.Solver.NmaxIt, 30)

	// geometry functions evaluated over the grid
	g := sim.MakeGrid()
	in, err := sim.MakeInputs(g)
	if err != nil {
		tst.Errorf("MakeInputs failed: %v", err)
		return
	}
	if err := in.Validate(g); err != nil {
		tst.Errorf("inputs must be valid: %v", err)
	}
	chk.Float64(tst, "bed", 1e-15, in.Bed[0], 100.0)
	chk.Float64(tst, "thickness", 1e-15, in.Thickness[g.NumNodes()-1], 500.0)
	chk.Float64(tst, "tauc", 1e-15, in.Tauc[g.NumNodes()/2], 1e5)
}

func Test_read02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("read02. simulation key and bad function names")

	sim := ReadSim("data/slab.sim", "alias", false, false)
	if sim.Key != "slab-alias" {
		tst.Errorf("simulation key derived incorrectly: %q", sim.Key)
	}

	sim.Geom.Bed = "nonesuch"
	g := sim.MakeGrid()
	if _, err := sim.MakeInputs(g); err == nil {
		tst.Errorf("unknown function name must be reported")
	}
}
