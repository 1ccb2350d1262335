// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package shp implements the one-dimensional shape machinery used to build
// tensor-product bases on quadrilaterals: Gauss-Legendre quadrature,
// Gauss-Lobatto-Legendre nodes and barycentric Lagrange interpolation
package shp

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/integrate/quad"
)

// GaussLegendre returns the n Gauss-Legendre points and weights on [-1,1]
func GaussLegendre(n int) (x, w []float64) {
	if n < 1 {
		chk.Panic("number of Gauss points must be at least 1. n=%d is invalid", n)
	}
	x = make([]float64, n)
	w = make([]float64, n)
	quad.Legendre{}.FixedLocations(x, w, -1, 1)
	return
}

// LobattoNodes returns the p+1 Gauss-Lobatto-Legendre points on [-1,1].
// The interior points are the roots of P'_p, computed by Newton iteration
// from Chebyshev-Gauss-Lobatto initial guesses.
func LobattoNodes(p int) (x []float64) {
	if p < 1 {
		chk.Panic("polynomial order must be at least 1. p=%d is invalid", p)
	}
	x = make([]float64, p+1)
	x[0] = -1
	x[p] = 1
	for i := 1; i < p; i++ {
		xi := -math.Cos(math.Pi * float64(i) / float64(p))
		for k := 0; k < 50; k++ {
			d1, d2 := legendreDerivs(p, xi)
			dx := d1 / d2
			xi -= dx
			if math.Abs(dx) < 1e-15 {
				break
			}
		}
		x[i] = xi
	}
	return
}

// legendreDerivs returns the first and second derivatives of the Legendre
// polynomial P_p at x, for x strictly inside (-1,1)
func legendreDerivs(p int, x float64) (d1, d2 float64) {
	pm, pp := 1.0, x // P_0, P_1
	for k := 2; k <= p; k++ {
		pm, pp = pp, (float64(2*k-1)*x*pp-float64(k-1)*pm)/float64(k)
	}
	n := float64(p)
	omx2 := 1 - x*x
	d1 = n * (pm - x*pp) / omx2
	d2 = (2*x*d1 - n*(n+1)*pp) / omx2
	return
}
