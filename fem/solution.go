// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/gonfem/gonfem/inp"
)

// locTol is the tolerance on local coordinates when locating a point in a cell
const locTol = 1e-8

// Solution is a field materialized from a converged coefficient vector.
// It owns a copy of the coefficients and remains valid after the space is
// renumbered or the driver is rerun.
type Solution struct {
	spc *Space
	rev int
	y   []float64
}

// VectorToSolution materializes a coefficient vector over a space
func VectorToSolution(y []float64, spc *Space) (*Solution, error) {
	if len(y) != spc.NumDofs() {
		return nil, &DimensionError{len(y), spc.NumDofs()}
	}
	o := &Solution{spc: spc, rev: spc.Rev}
	o.y = make([]float64, len(y))
	copy(o.y, y)
	return o, nil
}

// NumDofs returns the number of free DOFs of this solution
func (o *Solution) NumDofs() int { return len(o.y) }

// Coefficients returns a copy of the free coefficients
func (o *Solution) Coefficients() []float64 {
	c := make([]float64, len(o.y))
	copy(c, o.y)
	return c
}

// Sum returns the sum of the free coefficients
func (o *Solution) Sum() (sum float64) {
	for _, v := range o.y {
		sum += v
	}
	return
}

// Eval evaluates the field at global coordinates x. The point must lie
// inside the mesh (within a small tolerance of a cell).
func (o *Solution) Eval(x []float64) (val float64, err error) {
	if len(x) != 2 {
		return 0, errCfg("evaluation point must have 2 coordinates. %d is invalid", len(x))
	}
	if o.spc.Rev != o.rev {
		return 0, errCfg("space was renumbered after the solution was materialized")
	}
	cid, xi, eta, found := o.locate(x)
	if !found {
		return 0, errCfg("point (%g,%g) is outside the mesh", x[0], x[1])
	}

	// tensor-product basis at the local coordinates
	spc := o.spc
	ip := spc.Interp()
	phiXi, _ := ip.Eval(xi)
	phiEta, _ := ip.Eval(eta)
	np := spc.P + 1
	slots := spc.cellSlots[cid]
	for j := 0; j < np; j++ {
		for i := 0; i < np; i++ {
			s := slots[i+j*np]
			var c float64
			if f := spc.slot2free[s]; f >= 0 {
				c = o.y[f]
			} else {
				c = spc.slotVal[s]
			}
			val += c * phiXi[i] * phiEta[j]
		}
	}
	return
}

// locate finds the cell containing x and the local coordinates of x in it,
// inverting the bilinear geometry mapping with Newton iterations
func (o *Solution) locate(x []float64) (cid int, xi, eta float64, found bool) {
	msh := o.spc.Msh
	for _, c := range msh.Cells {
		if xi, eta, ok := invBilinear(msh, c, x); ok {
			return c.Id, xi, eta, true
		}
	}
	return 0, 0, 0, false
}

// invBilinear inverts the bilinear mapping of one cell. ok is false when the
// resulting local coordinates fall outside the reference square.
func invBilinear(msh *inp.Mesh, c *inp.Cell, x []float64) (xi, eta float64, ok bool) {
	var xc [4][]float64
	for v := 0; v < 4; v++ {
		xc[v] = msh.Verts[c.Verts[v]].C
	}
	for it := 0; it < 20; it++ {
		n := [4]float64{(1 - xi) * (1 - eta) / 4, (1 + xi) * (1 - eta) / 4, (1 + xi) * (1 + eta) / 4, (1 - xi) * (1 + eta) / 4}
		dnxi := [4]float64{-(1 - eta) / 4, (1 - eta) / 4, (1 + eta) / 4, -(1 + eta) / 4}
		dneta := [4]float64{-(1 - xi) / 4, -(1 + xi) / 4, (1 + xi) / 4, (1 - xi) / 4}
		var rx, ry, j00, j01, j10, j11 float64
		for v := 0; v < 4; v++ {
			rx += n[v] * xc[v][0]
			ry += n[v] * xc[v][1]
			j00 += dnxi[v] * xc[v][0]
			j01 += dneta[v] * xc[v][0]
			j10 += dnxi[v] * xc[v][1]
			j11 += dneta[v] * xc[v][1]
		}
		rx -= x[0]
		ry -= x[1]
		if math.Abs(rx) < 1e-12 && math.Abs(ry) < 1e-12 {
			break
		}
		det := j00*j11 - j01*j10
		if math.Abs(det) < 1e-14 {
			return 0, 0, false
		}
		xi -= (j11*rx - j01*ry) / det
		eta -= (-j10*rx + j00*ry) / det
	}
	if xi < -1-locTol || xi > 1+locTol || eta < -1-locTol || eta > 1+locTol {
		return 0, 0, false
	}
	return xi, eta, true
}
