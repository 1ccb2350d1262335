// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/cpmech/gosl/la"

	"github.com/gonfem/gonfem/inp"
	"github.com/gonfem/gonfem/rpt"
	"github.com/gonfem/gonfem/shp"
	"github.com/gonfem/gonfem/wfm"
)

// detJratioMax is the per-cell ratio of largest to smallest Jacobian
// determinant above which an integration-quality warning is reported
const detJratioMax = 1e6

// Problem is the discrete problem: the assembly facade binding a weak form
// to a space. Assemble produces the global Jacobian matrix and residual
// vector for a given coefficient vector. Both the weak form and the space
// are referenced, not copied, and must not change while the problem is in
// use; the problem binds to the space numbering revision at construction.
type Problem struct {
	Wf  *wfm.WeakForm // weak form (referenced)
	Spc *Space        // DOF space (referenced)
	Rpt *rpt.Reporter // optional diagnostics sink

	// bound numbering
	rev  int // space revision this problem is bound to
	p    int // approximation order
	ndof int // number of free DOFs

	// linear system; cleared and refilled by every Assemble call
	kb *la.Triplet
	rb []float64

	// integration tables and work buffers
	xg, wg  []float64  // 1D Gauss-Legendre stations and weights
	tab     *shp.Table // 1D basis values/derivatives at the stations
	cc      []float64  // [np*np] local coefficients
	phi     []float64  // [np*np] 2D basis values at one integration point
	gx, gy  []float64  // [np*np] 2D basis gradient components
	kloc    []float64  // local Jacobian, accumulated over integration points
	rloc    []float64  // local residual, accumulated over integration points
	matVol  map[int][]*wfm.MatFormVol
	vecVol  map[int][]*wfm.VecFormVol
	matSurf map[int][]*wfm.MatFormSurf
	vecSurf map[int][]*wfm.VecFormSurf
}

// NewProblem binds a weak form to a space.
// Forms referencing tags absent from the mesh are a configuration error.
func NewProblem(wf *wfm.WeakForm, spc *Space, rep *rpt.Reporter) (o *Problem, err error) {

	// check form tags against the mesh
	msh := spc.Msh
	for _, tag := range wf.VolTags() {
		if _, ok := msh.CellTag2cells[tag]; !ok {
			return nil, errCfg("weak form %q references inexistent region tag %d", wf.Name, tag)
		}
	}
	for _, tag := range wf.SurfTags() {
		if _, ok := msh.EdgeTag2cells[tag]; !ok {
			return nil, errCfg("weak form %q references inexistent edge tag %d", wf.Name, tag)
		}
	}

	// bind to the current space numbering
	o = &Problem{Wf: wf, Spc: spc, Rpt: rep}
	o.rev = spc.Rev
	o.p = spc.P
	o.ndof = spc.NumDofs()

	// forms by tag
	o.matVol = make(map[int][]*wfm.MatFormVol)
	for _, f := range wf.MatVol {
		o.matVol[f.Tag] = append(o.matVol[f.Tag], f)
	}
	o.vecVol = make(map[int][]*wfm.VecFormVol)
	for _, f := range wf.VecVol {
		o.vecVol[f.Tag] = append(o.vecVol[f.Tag], f)
	}
	o.matSurf = make(map[int][]*wfm.MatFormSurf)
	for _, f := range wf.MatSurf {
		o.matSurf[f.Tag] = append(o.matSurf[f.Tag], f)
	}
	o.vecSurf = make(map[int][]*wfm.VecFormSurf)
	for _, f := range wf.VecSurf {
		o.vecSurf[f.Tag] = append(o.vecSurf[f.Tag], f)
	}

	// integration tables: p+2 Gauss points per direction
	o.xg, o.wg = shp.GaussLegendre(o.p + 2)
	o.tab = shp.NewTable(spc.Interp(), o.xg)

	// work buffers
	np := o.p + 1
	nn := np * np
	o.cc = make([]float64, nn)
	o.phi = make([]float64, nn)
	o.gx = make([]float64, nn)
	o.gy = make([]float64, nn)
	o.kloc = make([]float64, nn*nn)
	o.rloc = make([]float64, nn)

	// linear system
	nnz := 0
	for cid := range msh.Cells {
		nfree := 0
		for _, s := range spc.cellSlots[cid] {
			if spc.slot2free[s] >= 0 {
				nfree++
			}
		}
		nnz += nfree * nfree
	}
	for _, tag := range wf.SurfTags() {
		nnz += len(msh.EdgeTag2cells[tag]) * np * np
	}
	if nnz < 1 {
		nnz = 1
	}
	o.kb = new(la.Triplet)
	o.kb.Init(o.ndof, o.ndof, nnz)
	o.rb = make([]float64, o.ndof)
	return
}

// NumDofs returns the number of free DOFs this problem is bound to
func (o *Problem) NumDofs() int { return o.ndof }

// Jacobian returns the global Jacobian triplet. Valid after Assemble and
// until the next Assemble call.
func (o *Problem) Jacobian() *la.Triplet { return o.kb }

// Residual returns the global residual vector. Valid after Assemble and
// until the next Assemble call.
func (o *Problem) Residual() []float64 { return o.rb }

// Assemble evaluates all contributors of the weak form at the field state
// given by the coefficient vector y and accumulates the global Jacobian and
// residual. Repeated calls with identical input produce identical output.
func (o *Problem) Assemble(y []float64) (err error) {

	// check
	if len(y) != o.ndof {
		return &DimensionError{len(y), o.ndof}
	}
	if o.Spc.Rev != o.rev {
		return errAsm("space was renumbered after the problem was bound. revision %d != %d", o.Spc.Rev, o.rev)
	}
	msh := o.Spc.Msh
	for tag := range msh.CellTag2cells {
		if len(o.matVol[tag]) == 0 {
			return errAsm("no volumetric contributor is defined for region with tag %d", tag)
		}
	}

	// clear
	o.kb.Start()
	la.VecFill(o.rb, 0)

	// volumetric contributions
	for cid, c := range msh.Cells {
		err = o.assembleCell(cid, c, y)
		if err != nil {
			return
		}
	}

	// boundary contributions
	for _, tag := range o.Wf.SurfTags() {
		for _, pair := range msh.EdgeTag2cells[tag] {
			o.assembleEdge(tag, pair, y)
		}
	}
	return
}

// assembleCell integrates the volumetric contributions of one cell
func (o *Problem) assembleCell(cid int, c *inp.Cell, y []float64) error {

	// local coefficients: free values from y, constrained from prescribed values
	spc := o.Spc
	slots := spc.cellSlots[cid]
	for a, s := range slots {
		if f := spc.slot2free[s]; f >= 0 {
			o.cc[a] = y[f]
		} else {
			o.cc[a] = spc.slotVal[s]
		}
	}

	// integration loop: accumulate the local matrix and vector over all
	// integration points; the global system receives each entry once
	mats := o.matVol[c.Tag]
	vecs := o.vecVol[c.Tag]
	np := o.p + 1
	nn := np * np
	la.VecFill(o.kloc, 0)
	la.VecFill(o.rloc, 0)
	ng := len(o.xg)
	var st wfm.State
	var detmin, detmax float64
	gv := make([]float64, 2)
	gu := make([]float64, 2)
	for qj := 0; qj < ng; qj++ {
		for qi := 0; qi < ng; qi++ {

			// bilinear geometry: coordinates and Jacobian of the mapping
			x, jac, detJ := o.geom(c, o.xg[qi], o.xg[qj])
			if detJ <= 0 {
				return errAsm("cell %d is degenerate or inverted (detJ=%g)", cid, detJ)
			}
			if qi == 0 && qj == 0 {
				detmin, detmax = detJ, detJ
			} else {
				detmin = minF(detmin, detJ)
				detmax = maxF(detmax, detJ)
			}

			// basis values, gradients and field state at this point
			i00, i01 := jac[3]/detJ, -jac[1]/detJ // inverse of the mapping Jacobian
			i10, i11 := -jac[2]/detJ, jac[0]/detJ
			var u, gux, guy float64
			for j := 0; j < np; j++ {
				for i := 0; i < np; i++ {
					a := i + j*np
					o.phi[a] = o.tab.Phi[qi][i] * o.tab.Phi[qj][j]
					dxi := o.tab.Dphi[qi][i] * o.tab.Phi[qj][j]
					det := o.tab.Phi[qi][i] * o.tab.Dphi[qj][j]
					o.gx[a] = dxi*i00 + det*i10
					o.gy[a] = dxi*i01 + det*i11
					u += o.cc[a] * o.phi[a]
					gux += o.cc[a] * o.gx[a]
					guy += o.cc[a] * o.gy[a]
				}
			}
			st.X = x
			st.U = u
			st.GradU = []float64{gux, guy}

			// accumulate
			wdet := o.wg[qi] * o.wg[qj] * detJ
			for a := 0; a < nn; a++ {
				if spc.slot2free[slots[a]] < 0 {
					continue
				}
				gv[0], gv[1] = o.gx[a], o.gy[a]
				var r float64
				for _, f := range vecs {
					r += f.Fcn(&st, o.phi[a], gv)
				}
				o.rloc[a] += wdet * r
				for b := 0; b < nn; b++ {
					if spc.slot2free[slots[b]] < 0 {
						continue
					}
					gu[0], gu[1] = o.gx[b], o.gy[b]
					var k float64
					for _, f := range mats {
						k += f.Fcn(&st, o.phi[b], gu, o.phi[a], gv)
					}
					o.kloc[a*nn+b] += wdet * k
				}
			}
		}
	}

	// add local contributions to the global system
	for a := 0; a < nn; a++ {
		I := spc.slot2free[slots[a]]
		if I < 0 {
			continue
		}
		o.rb[I] += o.rloc[a]
		for b := 0; b < nn; b++ {
			J := spc.slot2free[slots[b]]
			if J < 0 {
				continue
			}
			o.kb.Put(I, J, o.kloc[a*nn+b])
		}
	}

	// integration-quality diagnostic
	if detmin > 0 && detmax/detmin > detJratioMax {
		o.Rpt.WarnIntg("cell %d has a highly distorted geometry mapping (detJ ratio=%g)", cid, detmax/detmin)
	}
	return nil
}

// edgeLine returns the local node index of the k-th node along the
// traversal of a cell's local edge, k in [0,p]
func (o *Problem) edgeLine(eid, k int) int {
	np := o.p + 1
	switch eid {
	case 0:
		return k
	case 1:
		return o.p + k*np
	case 2:
		return (o.p - k) + o.p*np
	}
	return (o.p - k) * np
}

// assembleEdge integrates the boundary contributions of one tagged cell edge
func (o *Problem) assembleEdge(tag int, pair inp.CellEdgeId, y []float64) {

	// straight edge geometry
	spc := o.Spc
	c, eid := pair.C, pair.Eid
	va, vb := c.EdgeVerts(eid)
	a, b := spc.Msh.Verts[va].C, spc.Msh.Verts[vb].C
	dx, dy := b[0]-a[0], b[1]-a[1]
	halflen := 0.5 * math.Sqrt(dx*dx+dy*dy)

	// local coefficients along the edge line
	slots := spc.cellSlots[c.Id]
	np := o.p + 1
	cl := make([]float64, np)
	lineSlots := make([]int, np)
	for k := 0; k < np; k++ {
		s := slots[o.edgeLine(eid, k)]
		lineSlots[k] = s
		if f := spc.slot2free[s]; f >= 0 {
			cl[k] = y[f]
		} else {
			cl[k] = spc.slotVal[s]
		}
	}

	// integration loop: only the basis functions of the edge-line nodes are
	// nonzero on the edge, and their restriction is the 1D Lagrange basis.
	// the local matrix and vector are accumulated first to keep a single
	// global entry per pair of edge nodes
	mats := o.matSurf[tag]
	vecs := o.vecSurf[tag]
	kle := o.kloc[:np*np]
	rle := o.rloc[:np]
	la.VecFill(kle, 0)
	la.VecFill(rle, 0)
	ng := len(o.xg)
	var st wfm.State
	for q := 0; q < ng; q++ {
		phi := o.tab.Phi[q]
		s := (o.xg[q] + 1) / 2
		var u float64
		for k := 0; k < np; k++ {
			u += cl[k] * phi[k]
		}
		st.X = []float64{a[0] + s*dx, a[1] + s*dy}
		st.U = u
		st.GradU = nil
		w := o.wg[q] * halflen
		for i := 0; i < np; i++ {
			if spc.slot2free[lineSlots[i]] < 0 {
				continue
			}
			var r float64
			for _, f := range vecs {
				r += f.Fcn(&st, phi[i])
			}
			rle[i] += w * r
			for j := 0; j < np; j++ {
				if spc.slot2free[lineSlots[j]] < 0 {
					continue
				}
				var k float64
				for _, f := range mats {
					k += f.Fcn(&st, phi[j], phi[i])
				}
				kle[i*np+j] += w * k
			}
		}
	}

	// add local contributions to the global system
	for i := 0; i < np; i++ {
		I := spc.slot2free[lineSlots[i]]
		if I < 0 {
			continue
		}
		o.rb[I] += rle[i]
		for j := 0; j < np; j++ {
			J := spc.slot2free[lineSlots[j]]
			if J < 0 {
				continue
			}
			o.kb.Put(I, J, kle[i*np+j])
		}
	}
}

// geom computes the global coordinates, the Jacobian of the bilinear
// geometry mapping [J00 J01 J10 J11] with Jdk = dx_d/dxi_k, and its
// determinant at local coordinates (xi,eta)
func (o *Problem) geom(c *inp.Cell, xi, eta float64) (x []float64, jac [4]float64, detJ float64) {
	n := [4]float64{(1 - xi) * (1 - eta) / 4, (1 + xi) * (1 - eta) / 4, (1 + xi) * (1 + eta) / 4, (1 - xi) * (1 + eta) / 4}
	dnxi := [4]float64{-(1 - eta) / 4, (1 - eta) / 4, (1 + eta) / 4, -(1 + eta) / 4}
	dneta := [4]float64{-(1 - xi) / 4, -(1 + xi) / 4, (1 + xi) / 4, (1 - xi) / 4}
	x = make([]float64, 2)
	for v := 0; v < 4; v++ {
		xc := o.Spc.Msh.Verts[c.Verts[v]].C
		x[0] += n[v] * xc[0]
		x[1] += n[v] * xc[1]
		jac[0] += dnxi[v] * xc[0]  // dx/dxi
		jac[1] += dneta[v] * xc[0] // dx/deta
		jac[2] += dnxi[v] * xc[1]  // dy/dxi
		jac[3] += dneta[v] * xc[1] // dy/deta
	}
	detJ = jac[0]*jac[3] - jac[1]*jac[2]
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
