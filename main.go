// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Gonfem solves a stationary heat problem on a two-material square plate
// with Newton (Robin) boundary conditions on the right and top edges and
// fixed temperature on the bottom and left edges, for a sequence of
// increasing approximation orders.
package main

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"

	"github.com/gonfem/gonfem/fem"
	"github.com/gonfem/gonfem/inp"
	"github.com/gonfem/gonfem/lin"
	"github.com/gonfem/gonfem/rpt"
	"github.com/gonfem/gonfem/wfm"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("\nERROR: %v\n", err)
			io.Pf("See location of error below:\n")
			chk.Verbose = true
			for i := 5; i > 3; i-- {
				chk.CallerInfo(i)
			}
		}
	}()

	// read input parameters
	simfn := io.ArgToString(0, "")
	verbose := io.ArgToBool(1, true)
	pmax := io.ArgToInt(2, 4)
	nx := io.ArgToInt(3, 4)

	// message
	if verbose {
		io.Pf("\nGonfem -- Nonlinear Finite Element Solve Core\n")
		io.Pf("Copyright 2026 The Gonfem Authors. All rights reserved.\n")
		io.Pf("Use of this source code is governed by a BSD-style\n")
		io.Pf("license that can be found in the LICENSE file.\n")

		io.Pf("\n%v\n", io.ArgsTable("INPUT ARGUMENTS",
			"simulation file (optional)", "simfn", simfn,
			"show messages", "verbose", verbose,
			"largest approximation order", "pmax", pmax,
			"number of divisions per side", "nx", nx,
		))
	}

	// simulation configuration
	var sim *inp.Simulation
	var err error
	if simfn == "" {
		sim = inp.NewSimulation()
		sim.Key = "plate"
	} else {
		sim, err = inp.ReadSim("", simfn)
		if err != nil {
			chk.Panic("cannot read simulation configuration:\n%v", err)
		}
	}

	// reporter
	rep := rpt.NewReporter(rpt.Config{Info: verbose, Verbose: verbose})

	// mesh: unit plate, aluminium on the left half and copper on the right
	msh := inp.GenQuadMesh(0, 0, 1, 1, nx, nx, func(i, j int) int {
		if i < nx/2 {
			return -1
		}
		return -2
	}, [4]int{-10, -11, -12, -13})

	// essential conditions: 20 degrees on the bottom and left edges
	ebcs := fem.NewEssenBcs()
	err = ebcs.Set(-10, fem.BcRule{C: 20, Mult: &fun.Cte{C: 1}})
	if err != nil {
		chk.Panic("cannot set essential conditions:\n%v", err)
	}
	err = ebcs.Set(-13, fem.BcRule{C: 20})
	if err != nil {
		chk.Panic("cannot set essential conditions:\n%v", err)
	}

	// weak form: heat conduction with Newton cooling on the right and top edges
	wf := wfm.New("plate")
	wf.AddConstDiffusion(-1, 236, 0) // aluminium
	wf.AddConstDiffusion(-2, 386, 0) // copper
	wf.AddNewtonBc(-11, 5, 50)
	wf.AddNewtonBc(-12, 5, 50)

	// solve for a sequence of orders
	io.Pf("\n%6s%10s%8s%14s\n", "order", "ndofs", "its", "sum(y)")
	for p := 1; p <= pmax; p++ {

		// space and problem
		spc, err := fem.NewSpace(msh, ebcs, p)
		if err != nil {
			chk.Panic("cannot create space:\n%v", err)
		}
		prob, err := fem.NewProblem(wf, spc, rep)
		if err != nil {
			chk.Panic("cannot create problem:\n%v", err)
		}

		// linear solver and driver
		lis, err := lin.New(sim.LinSol.Name, prob.Jacobian(), &sim.LinSol)
		if err != nil {
			chk.Panic("cannot create linear solver:\n%v", err)
		}
		drv, err := fem.NewDriver[float64](&sim.Solver, prob, lis, rep)
		if err != nil {
			chk.Panic("cannot create driver:\n%v", err)
		}

		// solve
		y := make([]float64, prob.NumDofs())
		err = drv.Run(y)
		if err != nil {
			drv.Free()
			chk.Panic("Run failed at order %d:\n%v", p, err)
		}

		// report
		sol, err := fem.VectorToSolution(y, spc)
		if err != nil {
			drv.Free()
			chk.Panic("cannot materialize solution:\n%v", err)
		}
		io.Pf("%6d%10d%8d%14.6f\n", p, sol.NumDofs(), drv.It, sol.Sum())
		drv.Free()
	}
}
