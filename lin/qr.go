// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lin

import (
	"github.com/cpmech/gosl/la"
	"gonum.org/v1/gonum/mat"

	"github.com/gonfem/gonfem/inp"
)

// QR solves the system by dense QR factorization. Slower than LU but more
// robust on poorly conditioned systems.
type QR struct {
	kb *la.Triplet
	a  *mat.Dense
	qr *mat.QR
	n  int
}

// set factory
func init() {
	allocators["qr"] = func(kb *la.Triplet, cfg *inp.LinSolData) Solver {
		return &QR{kb: kb}
	}
}

// Init prepares the dense matrix storage
func (o *QR) Init() error {
	d := o.kb.ToMatrix(nil).ToDense()
	o.n = len(d)
	o.a = mat.NewDense(o.n, o.n, nil)
	o.qr = new(mat.QR)
	return nil
}

// Fact converts the triplet to dense storage and factorizes
func (o *QR) Fact() error {
	d := o.kb.ToMatrix(nil).ToDense()
	for i := 0; i < o.n; i++ {
		for j := 0; j < o.n; j++ {
			o.a.Set(i, j, d[i][j])
		}
	}
	o.qr.Factorize(o.a)
	return nil
}

// Solve solves A x = b using the last factorization
func (o *QR) Solve(x, b []float64) error {
	xv := mat.NewVecDense(len(x), x)
	bv := mat.NewVecDense(len(b), b)
	err := o.qr.SolveVecTo(xv, false, bv)
	if err != nil {
		return &LinearSolveError{"qr", err}
	}
	return nil
}

// Free releases the dense storage
func (o *QR) Free() {
	o.a = nil
	o.qr = nil
}
