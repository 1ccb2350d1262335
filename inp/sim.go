// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"encoding/json"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// SolverData holds the configuration of the nonlinear solver
type SolverData struct {
	NmaxIt  int     // maximum number of iterations
	Atol    float64 // absolute tolerance for the correction norm
	Rtol    float64 // relative tolerance for the correction norm
	FbTol   float64 // tolerance on the residual norm, relative to the first residual
	FbMin   float64 // smallest residual norm; smaller values mean convergence
	Itol    float64 // tolerance on the scaled RMS norm of the correction
	DmpFac  float64 // damping factor scaling each correction; 0 or 1 means full Newton steps
	DvgCtrl bool    // stop early when residual or correction norms grow
	CteTg   bool    // constant tangent: assemble and factorize the Jacobian on the first iteration only
}

// SetDefaults sets default values
func (o *SolverData) SetDefaults() {
	o.NmaxIt = 20
	o.Atol = 1e-8
	o.Rtol = 1e-8
	o.FbTol = 1e-8
	o.FbMin = 1e-13
	o.Itol = 1e-8
	o.DmpFac = 1
}

// LinSolData holds the configuration of the linear solver binding
type LinSolData struct {
	Name      string // backend name; e.g. "dense", "qr", "bicgstab", "umfpack"
	Symmetric bool   // assume symmetric system
	Verbose   bool   // verbose backend output
	Timing    bool   // show backend timing
}

// SetDefaults sets default values
func (o *LinSolData) SetDefaults() {
	o.Name = "dense"
}

// Simulation holds all simulation configuration data
type Simulation struct {
	Key    string     // simulation key; e.g. used to name output
	Solver SolverData // nonlinear solver configuration
	LinSol LinSolData // linear solver configuration

	// derived
	FnamePath string // complete filename path, when read from a file
}

// NewSimulation returns a simulation structure with default values
func NewSimulation() (o *Simulation) {
	o = new(Simulation)
	o.Solver.SetDefaults()
	o.LinSol.SetDefaults()
	return
}

// ReadSim reads simulation configuration from a JSON file.
// Fields absent from the file keep their default values.
func ReadSim(dir, fn string) (o *Simulation, err error) {

	// new simulation with default values
	o = NewSimulation()
	o.FnamePath = filepath.Join(dir, fn)

	// read file
	b, err := io.ReadFile(o.FnamePath)
	if err != nil {
		return nil, chk.Err("cannot read simulation file %q:\n%v", o.FnamePath, err)
	}

	// decode
	err = json.Unmarshal(b, o)
	if err != nil {
		return nil, chk.Err("cannot unmarshal simulation file %q:\n%v", o.FnamePath, err)
	}

	// check
	if o.Solver.NmaxIt < 1 {
		return nil, chk.Err("number of iterations must be at least 1. NmaxIt=%d is invalid", o.Solver.NmaxIt)
	}
	return
}
