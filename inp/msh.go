// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from mesh and simulation files
package inp

import (
	"encoding/json"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
)

// Vert holds vertex data
type Vert struct {
	Id  int       // id
	Tag int       // tag
	C   []float64 // coordinates (size==2)
}

// Cell holds quadrilateral cell data.
// Local edges are numbered 0:bottom(v0-v1) 1:right(v1-v2) 2:top(v2-v3) 3:left(v3-v0)
type Cell struct {
	Id    int   // id
	Tag   int   // tag; defines the material region this cell belongs to
	Verts []int // vertices (size==4, counter-clockwise)
	ETags []int // edge tags (size==4); 0 means interior/untagged edge
}

// CellEdgeId holds a cell and one of its local edge ids
type CellEdgeId struct {
	C   *Cell // cell
	Eid int   // local edge id
}

// Mesh holds a conforming 2D quadrilateral mesh for FE analyses
type Mesh struct {

	// from JSON
	Verts []*Vert // vertices
	Cells []*Cell // cells

	// derived
	FnamePath  string  // complete filename path
	Ndim       int     // space dimension
	Xmin, Xmax float64 // min and max x-coordinate
	Ymin, Ymax float64 // min and max y-coordinate

	// derived: maps
	CellTag2cells map[int][]*Cell       // cell tag => set of cells
	EdgeTag2cells map[int][]CellEdgeId  // edge tag => set of (cell, local edge id)
	EdgeTag2verts map[int][]int         // edge tag => vertices on tagged edges
}

// edgeLocVerts gives the local vertex indices of each local edge
var edgeLocVerts = [4][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}

// EdgeVerts returns the two global vertex ids of a cell's local edge
func (o *Cell) EdgeVerts(eid int) (va, vb int) {
	return o.Verts[edgeLocVerts[eid][0]], o.Verts[edgeLocVerts[eid][1]]
}

// ReadMsh reads a mesh from a JSON file
func ReadMsh(dir, fn string) (o *Mesh, err error) {

	// read file
	o = new(Mesh)
	o.FnamePath = filepath.Join(dir, fn)
	b, err := io.ReadFile(o.FnamePath)
	if err != nil {
		return nil, chk.Err("cannot read mesh file %q:\n%v", o.FnamePath, err)
	}

	// decode
	err = json.Unmarshal(b, o)
	if err != nil {
		return nil, chk.Err("cannot unmarshal mesh file %q:\n%v", o.FnamePath, err)
	}

	// derived data
	err = o.CalcDerived()
	if err != nil {
		return nil, err
	}
	return
}

// CalcDerived checks the input data and computes derived quantities and maps
func (o *Mesh) CalcDerived() (err error) {

	// check
	if len(o.Verts) < 4 {
		return chk.Err("mesh must have at least 4 vertices. %d is invalid", len(o.Verts))
	}
	if len(o.Cells) < 1 {
		return chk.Err("mesh must have at least 1 cell. %d is invalid", len(o.Cells))
	}

	// vertex related derived data
	o.Ndim = 2
	o.Xmin = o.Verts[0].C[0]
	o.Ymin = o.Verts[0].C[1]
	o.Xmax = o.Xmin
	o.Ymax = o.Ymin
	for i, v := range o.Verts {
		if v.Id != i {
			return chk.Err("vertex ids must coincide with positions in the list of vertices. %d != %d", v.Id, i)
		}
		if len(v.C) != 2 {
			return chk.Err("vertex %d must have 2 coordinates. %d is invalid", v.Id, len(v.C))
		}
		o.Xmin = min(o.Xmin, v.C[0])
		o.Xmax = max(o.Xmax, v.C[0])
		o.Ymin = min(o.Ymin, v.C[1])
		o.Ymax = max(o.Ymax, v.C[1])
	}

	// cell related derived data
	o.CellTag2cells = make(map[int][]*Cell)
	o.EdgeTag2cells = make(map[int][]CellEdgeId)
	o.EdgeTag2verts = make(map[int][]int)
	for i, c := range o.Cells {
		if c.Id != i {
			return chk.Err("cell ids must coincide with positions in the list of cells. %d != %d", c.Id, i)
		}
		if len(c.Verts) != 4 {
			return chk.Err("cell %d must have 4 vertices. %d is invalid", c.Id, len(c.Verts))
		}
		for _, v := range c.Verts {
			if v < 0 || v >= len(o.Verts) {
				return chk.Err("cell %d refers to inexistent vertex %d", c.Id, v)
			}
		}
		if len(c.ETags) == 0 {
			c.ETags = make([]int, 4)
		}
		if len(c.ETags) != 4 {
			return chk.Err("cell %d must have 4 edge tags. %d is invalid", c.Id, len(c.ETags))
		}
		o.CellTag2cells[c.Tag] = append(o.CellTag2cells[c.Tag], c)
		for eid, tag := range c.ETags {
			if tag == 0 {
				continue
			}
			o.EdgeTag2cells[tag] = append(o.EdgeTag2cells[tag], CellEdgeId{c, eid})
			va, vb := c.EdgeVerts(eid)
			o.EdgeTag2verts[tag] = append(o.EdgeTag2verts[tag], va, vb)
		}
	}

	// remove duplicates
	for tag, verts := range o.EdgeTag2verts {
		o.EdgeTag2verts[tag] = utl.IntUnique(verts)
	}
	return
}

// GenQuadMesh generates a structured mesh of nx by ny quadrilaterals over the
// rectangle [x0,x0+lx] x [y0,y0+ly].
//  ctag  -- cell tag per grid position (i,j); nil means tag = -1 everywhere
//  etags -- boundary edge tags: [bottom, right, top, left]; 0 disables a side
func GenQuadMesh(x0, y0, lx, ly float64, nx, ny int, ctag func(i, j int) int, etags [4]int) *Mesh {
	if nx < 1 || ny < 1 {
		chk.Panic("number of divisions must be at least 1. nx=%d, ny=%d are invalid", nx, ny)
	}
	o := new(Mesh)

	// vertices
	xx := utl.LinSpace(x0, x0+lx, nx+1)
	yy := utl.LinSpace(y0, y0+ly, ny+1)
	o.Verts = make([]*Vert, (nx+1)*(ny+1))
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			id := i + j*(nx+1)
			o.Verts[id] = &Vert{Id: id, C: []float64{xx[i], yy[j]}}
		}
	}

	// cells
	o.Cells = make([]*Cell, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			id := i + j*nx
			tag := -1
			if ctag != nil {
				tag = ctag(i, j)
			}
			v0 := i + j*(nx+1)
			c := &Cell{
				Id:    id,
				Tag:   tag,
				Verts: []int{v0, v0 + 1, v0 + nx + 2, v0 + nx + 1},
				ETags: make([]int, 4),
			}
			if j == 0 {
				c.ETags[0] = etags[0]
			}
			if i == nx-1 {
				c.ETags[1] = etags[1]
			}
			if j == ny-1 {
				c.ETags[2] = etags[2]
			}
			if i == 0 {
				c.ETags[3] = etags[3]
			}
			o.Cells[id] = c
		}
	}

	// derived data
	err := o.CalcDerived()
	if err != nil {
		chk.Panic("generated mesh is inconsistent:\n%v", err)
	}
	return o
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
