// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
)

// FuncData holds the definition of a named function. The geometry fields of
// a simulation (bed elevation, ice thickness, hardness, yield stress) refer
// to these by name and evaluate them over the grid.
type FuncData struct {
	Name string   `json:"name"` // name of function. ex: zero, bed, thickness
	Type string   `json:"type"` // type of function. ex: cte, pts, exc1
	Prms fun.Prms `json:"prms"` // parameters
}

// FuncsData holds all named functions of a simulation
type FuncsData []*FuncData

// Get returns a function by name
func (o FuncsData) Get(name string) (fcn fun.Func, err error) {
	if name == "zero" || name == "none" {
		fcn = &fun.Cte{}
		return
	}
	for _, f := range o {
		if f.Name == name {
			fcn, err = fun.New(f.Type, f.Prms)
			if err != nil {
				err = chk.Err("cannot get function named %q because of the following error:\n%v", name, err)
			}
			return
		}
	}
	err = chk.Err("cannot find function named %q\n", name)
	return
}

// String prints one function
func (o FuncData) String() string {
	return io.Sf("    {\"name\":%q, \"type\":%q, \"nprms\":%d}", o.Name, o.Type, len(o.Prms))
}
