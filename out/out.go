// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package out implements output handling: saving, loading and extracting
// velocity fields computed by the stress balance models.
package out

import (
	"bytes"
	"encoding/gob"
	"encoding/json"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/sebastianbeyer/pism/grid"
	"github.com/sebastianbeyer/pism/stress"
)

// Results holds the velocity fields of one stress balance solve together
// with the geometry they were computed on.
type Results struct {
	Key string // simulation key

	// grid
	Mx, My     int
	Xmin, Xmax float64
	Ymin, Ymax float64

	// geometry
	Bed       []float64
	Thickness []float64
	SeaLevel  float64

	// velocities
	U, V   []float64 // vertically averaged [m/s]
	Ub, Vb []float64 // basal; nil for 2D models
}

// Collect gathers the results of a solved model
func Collect(key string, g *grid.Grid, in *stress.Inputs, m stress.StressBalance) *Results {
	r := &Results{
		Key: key,
		Mx:  g.Mx, My: g.My,
		Xmin: g.Xmin, Xmax: g.Xmax,
		Ymin: g.Ymin, Ymax: g.Ymax,
		Bed:       in.Bed,
		Thickness: in.Thickness,
		SeaLevel:  in.SeaLevel,
		U:         m.VelocityU(),
		V:         m.VelocityV(),
	}
	type basal interface {
		BasalU() []float64
		BasalV() []float64
	}
	if b, ok := m.(basal); ok {
		r.Ub, r.Vb = b.BasalU(), b.BasalV()
	}
	return r
}

// Save writes the results to dirout using the given encoder ("json" or "gob")
func (o *Results) Save(dirout, encoder string) (err error) {
	var b []byte
	switch encoder {
	case "json":
		b, err = json.MarshalIndent(o, "", "  ")
		if err != nil {
			return chk.Err("cannot encode results: %v", err)
		}
	case "gob", "":
		var buf bytes.Buffer
		err = gob.NewEncoder(&buf).Encode(o)
		if err != nil {
			return chk.Err("cannot encode results: %v", err)
		}
		b = buf.Bytes()
		encoder = "gob"
	default:
		return chk.Err("encoder %q is not available", encoder)
	}
	io.WriteFileD(dirout, io.Sf("%s-vel.%s", o.Key, encoder), bytes.NewBuffer(b))
	return
}

// Load reads results written by Save
func Load(path string) (o *Results, err error) {
	b, err := io.ReadFile(path)
	if err != nil {
		return nil, chk.Err("cannot read results file %q", path)
	}
	o = new(Results)
	switch {
	case io.FnExt(path) == ".json":
		err = json.Unmarshal(b, o)
	default:
		err = gob.NewDecoder(bytes.NewReader(b)).Decode(o)
	}
	if err != nil {
		return nil, chk.Err("cannot decode results file %q: %v", path, err)
	}
	return
}

// node returns the index of node (i,j)
func (o *Results) node(i, j int) int { return j*o.Mx + i }

// AlongX extracts the x coordinates and the (u,v) velocity along the row j
func (o *Results) AlongX(j int) (x, u, v []float64) {
	dx := (o.Xmax - o.Xmin) / float64(o.Mx-1)
	x = make([]float64, o.Mx)
	u = make([]float64, o.Mx)
	v = make([]float64, o.Mx)
	for i := 0; i < o.Mx; i++ {
		n := o.node(i, j)
		x[i] = o.Xmin + float64(i)*dx
		u[i], v[i] = o.U[n], o.V[n]
	}
	return
}

// AlongY extracts the y coordinates and the (u,v) velocity along the column i
func (o *Results) AlongY(i int) (y, u, v []float64) {
	dy := (o.Ymax - o.Ymin) / float64(o.My-1)
	y = make([]float64, o.My)
	u = make([]float64, o.My)
	v = make([]float64, o.My)
	for j := 0; j < o.My; j++ {
		n := o.node(i, j)
		y[j] = o.Ymin + float64(j)*dy
		u[j], v[j] = o.U[n], o.V[n]
	}
	return
}
