// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package fem implements the nonlinear finite element solve core: the DOF
// space with essential boundary condition elimination, the discrete problem
// assembling residual and Jacobian from a weak form, the Newton driver, and
// the solution materialization
package fem

import (
	"math"

	"github.com/gonfem/gonfem/inp"
	"github.com/gonfem/gonfem/shp"
)

// MaxOrder is the highest supported uniform approximation order
const MaxOrder = 10

// bcValTol is the tolerance used to detect conflicting prescribed values
// where two tagged edges share a vertex
const bcValTol = 1e-10

// Space enumerates the free degrees of freedom of a scalar field discretized
// with a tensor-product Lagrange basis over Gauss-Lobatto-Legendre nodes on
// a conforming quadrilateral mesh. DOFs on edges constrained by the
// essential boundary conditions are eliminated from the free set.
//
// The numbering is a pure function of (mesh, order, essential BCs) and is
// recomputed in full by SetUniformOrder. A Space must not be mutated while
// a Problem bound to it is in use.
type Space struct {
	Msh  *inp.Mesh // mesh (referenced, not owned)
	Ebcs *EssenBcs // essential boundary conditions (referenced, not owned)
	P    int       // current uniform order
	Tbc  float64   // time at which essential-bc value rules are evaluated
	Rev  int       // numbering revision; incremented by every renumbering

	// derived numbering
	ip        *shp.Interp // 1D interpolator over the p+1 GLL nodes
	ndof      int         // number of free DOFs
	nslots    int         // total DOF slots: free + constrained
	cellSlots [][]int     // [ncells][(p+1)^2] global slot per local node i+j*(p+1)
	slot2free []int       // [nslots] free DOF index, or -1 for constrained slots
	slotFixed []bool      // [nslots] slot is constrained
	slotVal   []float64   // [nslots] prescribed value at constrained slots
	slotX     [][]float64 // [nslots] coordinates of the node carrying each slot
}

// NewSpace returns a space over the given mesh with uniform order p.
// ebcs may be nil for a fully unconstrained field.
func NewSpace(msh *inp.Mesh, ebcs *EssenBcs, p int) (*Space, error) {
	o := &Space{Msh: msh, Ebcs: ebcs}
	if err := o.SetUniformOrder(p); err != nil {
		return nil, err
	}
	return o, nil
}

// NumDofs returns the current number of free DOFs
func (o *Space) NumDofs() int { return o.ndof }

// Interp returns the 1D interpolator over the current GLL nodes
func (o *Space) Interp() *shp.Interp { return o.ip }

// SetUniformOrder sets every cell's approximation order to p and recomputes
// the whole DOF numbering, eliminating DOFs fixed by the essential BCs.
// The numbering is built aside and committed at once, so a failure leaves
// the previous numbering intact and usable.
func (o *Space) SetUniformOrder(p int) (err error) {

	// check
	if p < 1 || p > MaxOrder {
		return errCfg("approximation order must be within [1,%d]. p=%d is invalid", MaxOrder, p)
	}
	ip := shp.NewInterp(p)

	// slot layout: vertex slots, then edge-interior slots, then cell-interior slots
	msh := o.Msh
	np := p + 1
	nextSlot := len(msh.Verts)
	edgeBase := make(map[[2]int]int)
	for _, c := range msh.Cells {
		for e := 0; e < 4; e++ {
			k := ekey(c.EdgeVerts(e))
			if _, ok := edgeBase[k]; !ok {
				edgeBase[k] = nextSlot
				nextSlot += p - 1
			}
		}
	}
	cellBase := make([]int, len(msh.Cells))
	for i := range msh.Cells {
		cellBase[i] = nextSlot
		nextSlot += (p - 1) * (p - 1)
	}
	nslots := nextSlot

	// node coordinates per slot
	slotX := make([][]float64, nslots)
	for _, v := range msh.Verts {
		slotX[v.Id] = v.C
	}
	for k, base := range edgeBase {
		a, b := msh.Verts[k[0]].C, msh.Verts[k[1]].C
		for g := 1; g < p; g++ {
			s := (ip.Xn[g] + 1) / 2
			slotX[base+g-1] = []float64{a[0] + s*(b[0]-a[0]), a[1] + s*(b[1]-a[1])}
		}
	}

	// per-cell local-to-slot maps; edge slots are oriented from the lower to
	// the higher vertex id so neighbouring cells agree
	cellSlots := make([][]int, len(msh.Cells))
	for cid, c := range msh.Cells {
		slots := make([]int, np*np)
		slots[0] = c.Verts[0]
		slots[p] = c.Verts[1]
		slots[p+p*np] = c.Verts[2]
		slots[p*np] = c.Verts[3]
		for e := 0; e < 4; e++ {
			va, vb := c.EdgeVerts(e)
			base := edgeBase[ekey(va, vb)]
			for k := 1; k < p; k++ {
				var loc int
				switch e {
				case 0:
					loc = k
				case 1:
					loc = p + k*np
				case 2:
					loc = (p - k) + p*np
				case 3:
					loc = (p - k) * np
				}
				if va < vb {
					slots[loc] = base + k - 1
				} else {
					slots[loc] = base + (p - 1) - k
				}
			}
		}
		for j := 1; j < p; j++ {
			for i := 1; i < p; i++ {
				slot := cellBase[cid] + (i - 1) + (j - 1)*(p-1)
				slots[i+j*np] = slot
				slotX[slot] = o.bilinear(c, ip.Xn[i], ip.Xn[j])
			}
		}
		cellSlots[cid] = slots
	}

	// eliminate DOFs on constrained edges: vertex slots come from the mesh's
	// tag-to-vertices map, edge-interior slots from the tag-to-edges map
	slotFixed := make([]bool, nslots)
	slotVal := make([]float64, nslots)
	if o.Ebcs != nil {
		for _, tag := range o.Ebcs.Tags() {
			verts, ok := msh.EdgeTag2verts[tag]
			if !ok {
				return errCfg("cannot find edges with tag %d to apply essential boundary conditions", tag)
			}
			rule, _ := o.Ebcs.Get(tag)
			slots := make([]int, len(verts)) // vertex slot id coincides with vertex id
			copy(slots, verts)
			for _, pair := range msh.EdgeTag2cells[tag] {
				base := edgeBase[ekey(pair.C.EdgeVerts(pair.Eid))]
				for g := 1; g < p; g++ {
					slots = append(slots, base+g-1)
				}
			}
			for _, s := range slots {
				val := rule.Value(o.Tbc, slotX[s])
				if slotFixed[s] && math.Abs(slotVal[s]-val) > bcValTol {
					return errCfg("conflicting essential boundary conditions at x=%v: %g != %g", slotX[s], slotVal[s], val)
				}
				slotFixed[s] = true
				slotVal[s] = val
			}
		}
	}

	// number free DOFs
	slot2free := make([]int, nslots)
	ndof := 0
	for s := 0; s < nslots; s++ {
		if slotFixed[s] {
			slot2free[s] = -1
		} else {
			slot2free[s] = ndof
			ndof++
		}
	}

	// commit
	o.P = p
	o.Rev++
	o.ip = ip
	o.ndof = ndof
	o.nslots = nslots
	o.cellSlots = cellSlots
	o.slot2free = slot2free
	o.slotFixed = slotFixed
	o.slotVal = slotVal
	o.slotX = slotX
	return
}

// bilinear maps local coordinates (xi,eta) in [-1,1]^2 to global coordinates
// using the cell's four corner vertices
func (o *Space) bilinear(c *inp.Cell, xi, eta float64) []float64 {
	n0 := (1 - xi) * (1 - eta) / 4
	n1 := (1 + xi) * (1 - eta) / 4
	n2 := (1 + xi) * (1 + eta) / 4
	n3 := (1 - xi) * (1 + eta) / 4
	x := make([]float64, 2)
	for d := 0; d < 2; d++ {
		x[d] = n0*o.Msh.Verts[c.Verts[0]].C[d] +
			n1*o.Msh.Verts[c.Verts[1]].C[d] +
			n2*o.Msh.Verts[c.Verts[2]].C[d] +
			n3*o.Msh.Verts[c.Verts[3]].C[d]
	}
	return x
}

// ekey returns the canonical (sorted) key of an edge
func ekey(va, vb int) [2]int {
	if va < vb {
		return [2]int{va, vb}
	}
	return [2]int{vb, va}
}
