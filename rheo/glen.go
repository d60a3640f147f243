// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rheo

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// GlenIce implements the isothermal Glen flow law
//
//	eta = (B/2) * (gamma + eps)^((1-n)/(2n))
//
// where B is the ice hardness, gamma the second invariant of the strain
// rate tensor and eps the Schoof regularization keeping the viscosity
// finite at zero strain rate.
type GlenIce struct {
	N   float64 // stress exponent
	Eps float64 // Schoof regularization of gamma [1/s2]

	power float64 // (1-n)/(2n)
}

// add model to factory
func init() {
	flowAllocators["glen"] = func() FlowLaw { return new(GlenIce) }
	flowAllocators["isothermal_glen"] = func() FlowLaw { return new(GlenIce) }
}

// Init initialises model
func (o *GlenIce) Init(prms fun.Prms) (err error) {
	o.N = 3.0
	eps := 1e-5 / SecPerYear // strain rate of 10 micrometer/year per meter
	o.Eps = eps * eps
	for _, p := range prms {
		switch p.N {
		case "n":
			o.N = p.V
		case "eps":
			o.Eps = p.V
		default:
			return chk.Err("glen: parameter named %q is invalid", p.N)
		}
	}
	if o.N <= 0 {
		return chk.Err("glen: stress exponent must be positive. n=%g is invalid", o.N)
	}
	if o.Eps <= 0 {
		return chk.Err("glen: regularization must be positive. eps=%g is invalid", o.Eps)
	}
	o.power = (1.0 - o.N) / (2.0 * o.N)
	return
}

// GetPrms gets (an example) of parameters
func (o GlenIce) GetPrms() fun.Prms {
	return []*fun.Prm{
		&fun.Prm{N: "n", V: 3.0},
		&fun.Prm{N: "eps", V: 1e-25},
	}
}

// Exponent returns the stress exponent n
func (o GlenIce) Exponent() float64 { return o.N }

// EffectiveViscosity returns eta and deta = d(eta)/d(gamma)
func (o GlenIce) EffectiveViscosity(B, gamma float64) (eta, deta float64) {
	eta = 0.5 * B * math.Pow(o.Eps+gamma, o.power)
	deta = o.power * eta / (o.Eps + gamma)
	return
}

// HardnessFromSoftness returns B = A^(-1/n)
func (o GlenIce) HardnessFromSoftness(A float64) float64 {
	return math.Pow(A, -1.0/o.N)
}
