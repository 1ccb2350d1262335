// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Interp implements 1D Lagrange interpolation over Gauss-Lobatto-Legendre
// nodes by means of barycentric weights
type Interp struct {
	P  int       // polynomial order
	Xn []float64 // p+1 nodes on [-1,1]
	Wb []float64 // barycentric weights
}

// NewInterp returns a new interpolator of order p over GLL nodes
func NewInterp(p int) (o *Interp) {
	o = new(Interp)
	o.P = p
	o.Xn = LobattoNodes(p)
	o.Wb = BaryWeights(o.Xn)
	return
}

// BaryWeights computes the barycentric weights for the given nodes
func BaryWeights(xn []float64) (wb []float64) {
	n := len(xn)
	wb = make([]float64, n)
	for i := 0; i < n; i++ {
		wb[i] = 1
		for j := 0; j < n; j++ {
			if j != i {
				wb[i] /= xn[i] - xn[j]
			}
		}
	}
	return
}

// Eval computes the values and first derivatives of all p+1 Lagrange basis
// polynomials at station x
func (o *Interp) Eval(x float64) (phi, dphi []float64) {
	n := len(o.Xn)
	phi = make([]float64, n)
	dphi = make([]float64, n)

	// x coincides with a node
	if k := o.nodeIndex(x); k >= 0 {
		phi[k] = 1
		for i := 0; i < n; i++ {
			if i != k {
				dphi[i] = (o.Wb[i] / o.Wb[k]) / (o.Xn[k] - o.Xn[i])
				dphi[k] -= dphi[i]
			}
		}
		return
	}

	// barycentric evaluation: phi_i = l(x) w_i/(x-x_i) with l(x) = prod(x-x_j),
	// hence phi'_i = phi_i * sum_{j!=i} 1/(x-x_j)
	var den, sum float64
	for j := 0; j < n; j++ {
		den += o.Wb[j] / (x - o.Xn[j])
		sum += 1.0 / (x - o.Xn[j])
	}
	for i := 0; i < n; i++ {
		phi[i] = (o.Wb[i] / (x - o.Xn[i])) / den
		dphi[i] = phi[i] * (sum - 1.0/(x-o.Xn[i]))
	}
	return
}

// nodeIndex returns the index of the node coinciding with x, or -1
func (o *Interp) nodeIndex(x float64) int {
	for i, xi := range o.Xn {
		if math.Abs(x-xi) < 1e-14 {
			return i
		}
	}
	return -1
}

// Table holds basis values and derivatives evaluated at a set of stations
type Table struct {
	Phi  [][]float64 // [nstations][p+1] basis values
	Dphi [][]float64 // [nstations][p+1] basis first derivatives
}

// NewTable evaluates the interpolator at all given stations
func NewTable(o *Interp, stations []float64) (t *Table) {
	if len(stations) < 1 {
		chk.Panic("at least one station is required to build a table")
	}
	t = new(Table)
	t.Phi = make([][]float64, len(stations))
	t.Dphi = make([][]float64, len(stations))
	for q, x := range stations {
		t.Phi[q], t.Dphi[q] = o.Eval(x)
	}
	return
}
