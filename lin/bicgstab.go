// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lin

import (
	"github.com/cpmech/gosl/la"
	"github.com/vladimir-ch/iterative"

	"github.com/gonfem/gonfem/inp"
)

// BiCGStab solves the system iteratively, without factorizing, using the
// stabilized bi-conjugate gradient method over the compressed sparse matrix
type BiCGStab struct {
	kb *la.Triplet
	cc *la.CCMatrix
}

// set factory
func init() {
	allocators["bicgstab"] = func(kb *la.Triplet, cfg *inp.LinSolData) Solver {
		return &BiCGStab{kb: kb}
	}
}

// Init is a no-op; the method is matrix-free
func (o *BiCGStab) Init() error { return nil }

// Fact compresses the current triplet values
func (o *BiCGStab) Fact() error {
	o.cc = o.kb.ToMatrix(nil)
	return nil
}

// Solve solves A x = b iteratively
func (o *BiCGStab) Solve(x, b []float64) error {
	matvec := func(dst, src []float64) {
		la.VecFill(dst, 0)
		la.SpMatVecMulAdd(dst, 1, o.cc, src)
	}
	res, err := iterative.LinearSolve(iterative.MatrixOps{MatVec: matvec}, b, &iterative.BiCGStab{}, iterative.Settings{})
	if err != nil {
		return &LinearSolveError{"bicgstab", err}
	}
	copy(x, res.X)
	return nil
}

// Free releases the compressed matrix
func (o *BiCGStab) Free() {
	o.cc = nil
}
