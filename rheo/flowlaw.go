// Copyright 2017 The PISM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rheo implements constitutive models for ice: flow laws relating
// the effective strain rate to the effective viscosity, and basal sliding
// laws relating the sliding velocity to the basal drag.
package rheo

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// SecPerYear is the number of seconds in a 365.2524-day year.
const SecPerYear = 3.15569259747e7

// FlowLaw defines ice flow laws written in terms of the ice hardness B and
// the regularized second invariant gamma of the strain rate tensor.
type FlowLaw interface {
	Init(prms fun.Prms) error // Init initialises this structure
	GetPrms() fun.Prms        // gets (an example) of parameters
	Exponent() float64        // Exponent returns the stress exponent n

	// EffectiveViscosity returns the effective viscosity eta and its
	// derivative deta = d(eta)/d(gamma) for hardness B
	EffectiveViscosity(B, gamma float64) (eta, deta float64)

	// HardnessFromSoftness converts the softness A (as in the isothermal
	// law) to the hardness B used by EffectiveViscosity
	HardnessFromSoftness(A float64) float64
}

// NewFlowLaw allocates and initialises a flow law from the database
func NewFlowLaw(name string, prms fun.Prms) (law FlowLaw, err error) {
	allocator, ok := flowAllocators[name]
	if !ok {
		return nil, chk.Err("flow law %q is not available in rheo database", name)
	}
	law = allocator()
	err = law.Init(prms)
	return
}

// flowAllocators holds all available flow laws
var flowAllocators = map[string]func() FlowLaw{}
