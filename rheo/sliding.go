// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rheo

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// SlidingLaw defines basal sliding laws giving the drag coefficient beta in
// tau_b = -beta * u for basal velocity (u,v) and yield stress tauc.
type SlidingLaw interface {
	Init(prms fun.Prms) error // Init initialises this structure
	GetPrms() fun.Prms        // gets (an example) of parameters

	// DragWithDerivative returns beta and dbeta such that the derivative
	// of the drag term is
	//
	//	d(beta*u_i)/d(u_j) = beta*delta_ij + dbeta*u_i*u_j
	DragWithDerivative(tauc, u, v float64) (beta, dbeta float64)
}

// NewSlidingLaw allocates and initialises a sliding law from the database
func NewSlidingLaw(name string, prms fun.Prms) (law SlidingLaw, err error) {
	allocator, ok := slidingAllocators[name]
	if !ok {
		return nil, chk.Err("sliding law %q is not available in rheo database", name)
	}
	law = allocator()
	err = law.Init(prms)
	return
}

// slidingAllocators holds all available sliding laws
var slidingAllocators = map[string]func() SlidingLaw{}

// PseudoPlastic implements the pseudo-plastic sliding law
//
//	beta = tauc * |u|_reg^(q-1) / uthreshold^q
//
// with |u|_reg^2 = u^2 + v^2 + eps^2. The exponent q interpolates between
// linear viscous sliding (q=1) and the purely plastic limit (q=0).
type PseudoPlastic struct {
	Q          float64 // sliding exponent
	UThreshold float64 // threshold speed [m/s]
	Eps        float64 // speed regularization [m/s]
}

// add model to factory
func init() {
	slidingAllocators["pseudo_plastic"] = func() SlidingLaw { return new(PseudoPlastic) }
}

// Init initialises model
func (o *PseudoPlastic) Init(prms fun.Prms) (err error) {
	o.Q = 0.25
	o.UThreshold = 100.0 / SecPerYear
	o.Eps = 0.01 / SecPerYear
	for _, p := range prms {
		switch p.N {
		case "q":
			o.Q = p.V
		case "uthreshold":
			o.UThreshold = p.V
		case "eps":
			o.Eps = p.V
		default:
			return chk.Err("pseudo_plastic: parameter named %q is invalid", p.N)
		}
	}
	if o.UThreshold <= 0 {
		return chk.Err("pseudo_plastic: threshold speed must be positive. uthreshold=%g is invalid", o.UThreshold)
	}
	if o.Eps <= 0 {
		return chk.Err("pseudo_plastic: regularization must be positive. eps=%g is invalid", o.Eps)
	}
	return
}

// GetPrms gets (an example) of parameters
func (o PseudoPlastic) GetPrms() fun.Prms {
	return []*fun.Prm{
		&fun.Prm{N: "q", V: 0.25},
		&fun.Prm{N: "uthreshold", V: 100.0 / SecPerYear},
		&fun.Prm{N: "eps", V: 0.01 / SecPerYear},
	}
}

// DragWithDerivative returns beta and dbeta (see SlidingLaw)
func (o PseudoPlastic) DragWithDerivative(tauc, u, v float64) (beta, dbeta float64) {
	magSq := u*u + v*v + o.Eps*o.Eps
	beta = tauc * math.Pow(magSq, 0.5*(o.Q-1.0)) / math.Pow(o.UThreshold, o.Q)
	dbeta = (o.Q - 1.0) * beta / magSq
	return
}
