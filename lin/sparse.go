// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lin

import (
	"github.com/cpmech/gosl/la"

	"github.com/gonfem/gonfem/inp"
)

// Sparse wraps the gosl sparse direct solvers (e.g. UMFPACK, MUMPS)
type Sparse struct {
	name string
	kb   *la.Triplet
	cfg  inp.LinSolData
	ls   la.LinSol
}

// set factory
func init() {
	for _, name := range []string{"umfpack", "mumps"} {
		name := name
		allocators[name] = func(kb *la.Triplet, cfg *inp.LinSolData) Solver {
			o := &Sparse{name: name, kb: kb}
			if cfg != nil {
				o.cfg = *cfg
			}
			return o
		}
	}
}

// Init performs the symbolic initialization from the assembled triplet
func (o *Sparse) Init() error {
	o.ls = la.GetSolver(o.name)
	err := o.ls.InitR(o.kb, o.cfg.Symmetric, o.cfg.Verbose, o.cfg.Timing)
	if err != nil {
		return &LinearSolveError{o.name, err}
	}
	return nil
}

// Fact performs the numeric factorization of the current triplet values
func (o *Sparse) Fact() error {
	err := o.ls.Fact()
	if err != nil {
		return &LinearSolveError{o.name, err}
	}
	return nil
}

// Solve solves A x = b using the last factorization
func (o *Sparse) Solve(x, b []float64) error {
	err := o.ls.SolveR(x, b, false)
	if err != nil {
		return &LinearSolveError{o.name, err}
	}
	return nil
}

// Free releases the native backend resources
func (o *Sparse) Free() {
	if o.ls != nil {
		o.ls.Free()
		o.ls = nil
	}
}
