// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wfm

// AddDiffusion appends the weak form of the diffusion operator
//
//	-div(lam(u) grad(u)) = src
//
// on the region with the given cell tag.
//  lam  -- conductivity as a function of the field value
//  dlam -- derivative of lam with respect to u; nil for constant conductivity
//  src  -- constant volumetric source
func (o *WeakForm) AddDiffusion(tag int, lam func(u float64) float64, dlam func(u float64) float64, src float64) {
	o.AddMatFormVol(tag, func(s *State, u float64, gu []float64, v float64, gv []float64) float64 {
		res := lam(s.U) * (gu[0]*gv[0] + gu[1]*gv[1])
		if dlam != nil {
			res += dlam(s.U) * u * (s.GradU[0]*gv[0] + s.GradU[1]*gv[1])
		}
		return res
	})
	o.AddVecFormVol(tag, func(s *State, v float64, gv []float64) float64 {
		return lam(s.U)*(s.GradU[0]*gv[0]+s.GradU[1]*gv[1]) - src*v
	})
}

// AddConstDiffusion appends the diffusion weak form with constant conductivity
func (o *WeakForm) AddConstDiffusion(tag int, lam, src float64) {
	o.AddDiffusion(tag, func(u float64) float64 { return lam }, nil, src)
}

// AddNewtonBc appends the "newton" (Robin) boundary condition
//
//	lam du/dn = -alpha (u - text)
//
// on edges with the given tag.
//  alpha -- heat transfer coefficient
//  text  -- exterior value
func (o *WeakForm) AddNewtonBc(tag int, alpha, text float64) {
	o.AddMatFormSurf(tag, func(s *State, u, v float64) float64 {
		return alpha * u * v
	})
	o.AddVecFormSurf(tag, func(s *State, v float64) float64 {
		return alpha * (s.U - text) * v
	})
}

// AddFluxBc appends the natural (Neumann) boundary condition lam du/dn = g
// on edges with the given tag
func (o *WeakForm) AddFluxBc(tag int, g float64) {
	o.AddVecFormSurf(tag, func(s *State, v float64) float64 {
		return -g * v
	})
}
