// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lin

import (
	"github.com/cpmech/gosl/la"
	"gonum.org/v1/gonum/mat"

	"github.com/gonfem/gonfem/inp"
)

// Dense solves the system by dense LU factorization
type Dense struct {
	kb *la.Triplet
	a  *mat.Dense
	lu *mat.LU
	n  int
}

// set factory
func init() {
	allocators["dense"] = func(kb *la.Triplet, cfg *inp.LinSolData) Solver {
		return &Dense{kb: kb}
	}
}

// Init prepares the dense matrix storage
func (o *Dense) Init() error {
	d := o.kb.ToMatrix(nil).ToDense()
	o.n = len(d)
	o.a = mat.NewDense(o.n, o.n, nil)
	o.lu = new(mat.LU)
	return nil
}

// Fact converts the triplet to dense storage and factorizes
func (o *Dense) Fact() error {
	d := o.kb.ToMatrix(nil).ToDense()
	for i := 0; i < o.n; i++ {
		for j := 0; j < o.n; j++ {
			o.a.Set(i, j, d[i][j])
		}
	}
	o.lu.Factorize(o.a)
	return nil
}

// Solve solves A x = b using the last factorization
func (o *Dense) Solve(x, b []float64) error {
	xv := mat.NewVecDense(len(x), x)
	bv := mat.NewVecDense(len(b), b)
	err := o.lu.SolveVecTo(xv, false, bv)
	if err != nil {
		return &LinearSolveError{"dense", err}
	}
	return nil
}

// Free releases the dense storage
func (o *Dense) Free() {
	o.a = nil
	o.lu = nil
}
