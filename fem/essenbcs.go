// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"sort"

	"github.com/cpmech/gosl/fun"
)

// BcRule is the value rule of one essential boundary condition:
//
//	value(t, x) = (A*x + B*y + C) * Mult(t)
//
// Mult is an optional time multiplier; nil means 1.
type BcRule struct {
	A, B, C float64  // coefficients of the linear rule over boundary coordinates
	Mult    fun.Func // optional time multiplier
}

// Value computes the prescribed value at time t and coordinates x
func (o BcRule) Value(t float64, x []float64) (res float64) {
	res = o.A*x[0] + o.B*x[1] + o.C
	if o.Mult != nil {
		res *= o.Mult.F(t, x)
	}
	return
}

// EssenBcs records essential (Dirichlet-type) boundary conditions as a
// mapping from boundary edge tags to value rules. DOFs on tagged edges are
// eliminated from the free set by the Space.
type EssenBcs struct {
	rules map[int]BcRule
}

// NewEssenBcs returns an empty set of essential boundary conditions
func NewEssenBcs() *EssenBcs {
	return &EssenBcs{rules: make(map[int]BcRule)}
}

// Set records the value rule for one boundary edge tag.
// Setting the same tag twice is a configuration error.
func (o *EssenBcs) Set(tag int, rule BcRule) error {
	if tag == 0 {
		return errCfg("essential boundary conditions cannot use tag 0 (untagged edges)")
	}
	if _, ok := o.rules[tag]; ok {
		return errCfg("essential boundary condition with tag %d is set already", tag)
	}
	o.rules[tag] = rule
	return nil
}

// Get returns the rule for a tag and whether it exists
func (o *EssenBcs) Get(tag int) (BcRule, bool) {
	r, ok := o.rules[tag]
	return r, ok
}

// Tags returns all constrained tags, sorted for deterministic elimination
func (o *EssenBcs) Tags() (tags []int) {
	for tag := range o.rules {
		tags = append(tags, tag)
	}
	sort.Ints(tags)
	return
}
