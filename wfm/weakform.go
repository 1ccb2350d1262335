// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package wfm implements weak forms: named collections of volumetric and
// boundary integral contributors evaluated at integration points
package wfm

// State holds the current field state at an integration point
type State struct {
	X     []float64 // coordinates of the integration point
	U     float64   // field value interpolated from the current coefficients
	GradU []float64 // field gradient interpolated from the current coefficients
}

// MatVolFcn is the integrand of a volumetric Jacobian contribution.
//  u, gu -- value and gradient of the trial basis function
//  v, gv -- value and gradient of the test basis function
type MatVolFcn func(s *State, u float64, gu []float64, v float64, gv []float64) float64

// VecVolFcn is the integrand of a volumetric residual contribution.
//  v, gv -- value and gradient of the test basis function
type VecVolFcn func(s *State, v float64, gv []float64) float64

// MatSurfFcn is the integrand of a boundary Jacobian contribution
type MatSurfFcn func(s *State, u, v float64) float64

// VecSurfFcn is the integrand of a boundary residual contribution
type VecSurfFcn func(s *State, v float64) float64

// MatFormVol is a volumetric Jacobian contributor applying to one region
type MatFormVol struct {
	Tag int // cell tag of the region this form applies to
	Fcn MatVolFcn
}

// VecFormVol is a volumetric residual contributor applying to one region
type VecFormVol struct {
	Tag int
	Fcn VecVolFcn
}

// MatFormSurf is a boundary Jacobian contributor applying to one edge tag
type MatFormSurf struct {
	Tag int // edge tag this form applies to
	Fcn MatSurfFcn
}

// VecFormSurf is a boundary residual contributor applying to one edge tag
type VecFormSurf struct {
	Tag int
	Fcn VecSurfFcn
}

// WeakForm holds an ordered collection of integral contributors.
// A weak form must not be modified while a problem bound to it is in use.
type WeakForm struct {
	Name    string
	MatVol  []*MatFormVol
	VecVol  []*VecFormVol
	MatSurf []*MatFormSurf
	VecSurf []*VecFormSurf
}

// New returns a new, empty weak form
func New(name string) *WeakForm {
	return &WeakForm{Name: name}
}

// AddMatFormVol appends a volumetric Jacobian contributor
func (o *WeakForm) AddMatFormVol(tag int, f MatVolFcn) {
	o.MatVol = append(o.MatVol, &MatFormVol{tag, f})
}

// AddVecFormVol appends a volumetric residual contributor
func (o *WeakForm) AddVecFormVol(tag int, f VecVolFcn) {
	o.VecVol = append(o.VecVol, &VecFormVol{tag, f})
}

// AddMatFormSurf appends a boundary Jacobian contributor
func (o *WeakForm) AddMatFormSurf(tag int, f MatSurfFcn) {
	o.MatSurf = append(o.MatSurf, &MatFormSurf{tag, f})
}

// AddVecFormSurf appends a boundary residual contributor
func (o *WeakForm) AddVecFormSurf(tag int, f VecSurfFcn) {
	o.VecSurf = append(o.VecSurf, &VecFormSurf{tag, f})
}

// VolTags returns the set of distinct region tags referenced by volumetric forms
func (o *WeakForm) VolTags() (tags []int) {
	seen := make(map[int]bool)
	for _, f := range o.MatVol {
		if !seen[f.Tag] {
			seen[f.Tag] = true
			tags = append(tags, f.Tag)
		}
	}
	for _, f := range o.VecVol {
		if !seen[f.Tag] {
			seen[f.Tag] = true
			tags = append(tags, f.Tag)
		}
	}
	return
}

// SurfTags returns the set of distinct edge tags referenced by boundary forms
func (o *WeakForm) SurfTags() (tags []int) {
	seen := make(map[int]bool)
	for _, f := range o.MatSurf {
		if !seen[f.Tag] {
			seen[f.Tag] = true
			tags = append(tags, f.Tag)
		}
	}
	for _, f := range o.VecSurf {
		if !seen[f.Tag] {
			seen[f.Tag] = true
			tags = append(tags, f.Tag)
		}
	}
	return
}
