// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package lin implements linear-solver bindings selected by backend name.
// Every backend is bound at construction to the sparse triplet holding the
// Jacobian; Init performs the one-time symbolic setup, Fact re-reads the
// current triplet values and factorizes, Solve computes x in A x = b, and
// Free releases backend resources.
package lin

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"

	"github.com/gonfem/gonfem/inp"
)

// Solver is the linear-solve capability consumed by the Newton driver
type Solver interface {
	Init() error                // one-time setup after the triplet has been assembled once
	Fact() error                // factorize the current triplet values
	Solve(x, b []float64) error // solve A x = b
	Free()                      // release backend resources
}

// LinearSolveError indicates a backend failure: singular or ill-conditioned
// system, or backend-reported non-convergence
type LinearSolveError struct {
	Backend string // backend name
	Reason  error  // backend-reported cause
}

// Error returns the error message
func (e *LinearSolveError) Error() string {
	return io.Sf("linear solver %q failed: %v", e.Backend, e.Reason)
}

// Unwrap returns the backend-reported cause
func (e *LinearSolveError) Unwrap() error { return e.Reason }

// New allocates a solver by backend name, bound to the given triplet
func New(name string, kb *la.Triplet, cfg *inp.LinSolData) (Solver, error) {
	alloc, ok := allocators[name]
	if !ok {
		return nil, chk.Err("cannot find linear solver named %q", name)
	}
	if kb == nil {
		return nil, chk.Err("triplet must not be nil when allocating linear solver %q", name)
	}
	return alloc(kb, cfg), nil
}

// allocators holds all available solver backends
var allocators = make(map[string]func(kb *la.Triplet, cfg *inp.LinSolData) Solver)
