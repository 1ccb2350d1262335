// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"errors"
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/gonfem/gonfem/inp"
	"github.com/gonfem/gonfem/lin"
	"github.com/gonfem/gonfem/wfm"
)

// plateWf returns the weak form of the two-material plate problem: heat
// conduction with Newton cooling on the right and top edges
func plateWf() *wfm.WeakForm {
	wf := wfm.New("plate")
	wf.AddConstDiffusion(-1, 236, 0)
	wf.AddConstDiffusion(-2, 386, 0)
	wf.AddNewtonBc(-11, 5, 50)
	wf.AddNewtonBc(-12, 5, 50)
	return wf
}

// plateMesh returns a 2x2 two-material mesh on the unit square
func plateMesh() *inp.Mesh {
	return inp.GenQuadMesh(0, 0, 1, 1, 2, 2, func(i, j int) int {
		if i < 1 {
			return -1
		}
		return -2
	}, [4]int{-10, -11, -12, -13})
}

// plateEbcs returns fixed temperature on the bottom and left edges
func plateEbcs() *EssenBcs {
	ebcs := NewEssenBcs()
	ebcs.Set(-10, BcRule{C: 20})
	ebcs.Set(-13, BcRule{C: 20})
	return ebcs
}

// solvePlate runs the plate problem with the given order and backend
func solvePlate(tst *testing.T, p int, backend string) (*Driver[float64], []float64, *Space) {
	spc, err := NewSpace(plateMesh(), plateEbcs(), p)
	if err != nil {
		tst.Fatalf("cannot create space:\n%v", err)
	}
	prob, err := NewProblem(plateWf(), spc, nil)
	if err != nil {
		tst.Fatalf("cannot create problem:\n%v", err)
	}
	lis, err := lin.New(backend, prob.Jacobian(), nil)
	if err != nil {
		tst.Fatalf("cannot create linear solver:\n%v", err)
	}
	drv, err := NewDriver[float64](nil, prob, lis, nil)
	if err != nil {
		tst.Fatalf("cannot create driver:\n%v", err)
	}
	y := make([]float64, prob.NumDofs())
	err = drv.Run(y)
	if err != nil {
		tst.Fatalf("Run failed:\n%v", err)
	}
	return drv, y, spc
}

func Test_driver01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("driver01. linear problem converges in one step")

	for _, p := range []int{1, 2, 3, 5, 10} {
		drv, y, spc := solvePlate(tst, p, "dense")
		defer drv.Free()
		if drv.Status != StatConverged {
			tst.Errorf("test failed: status must be %v. %v is invalid", StatConverged, drv.Status)
			return
		}
		if drv.It > 3 {
			tst.Errorf("test failed: linear problem must converge within 3 iterations. It=%d", drv.It)
			return
		}

		// the temperature stays between the wall value and the exterior value
		sol, err := VectorToSolution(y, spc)
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
		for _, c := range sol.Coefficients() {
			if c < 20-1e-8 || c > 50+1e-8 {
				tst.Errorf("test failed: coefficient %v outside [20,50]", c)
				return
			}
		}
		io.Pforan("p=%-2d ndof=%-4d It=%d sum=%g\n", p, sol.NumDofs(), drv.It, sol.Sum())
	}
}

func Test_driver02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("driver02. backend interchangeability")

	drvA, yA, _ := solvePlate(tst, 2, "dense")
	defer drvA.Free()
	drvB, yB, _ := solvePlate(tst, 2, "qr")
	defer drvB.Free()
	drvC, yC, _ := solvePlate(tst, 2, "bicgstab")
	defer drvC.Free()

	chk.Vector(tst, "dense vs qr", 1e-8, yB, yA)
	chk.Vector(tst, "dense vs bicgstab", 1e-5, yC, yA)
}

func Test_driver03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("driver03. rerun from a converged state")

	drv, y, spc := solvePlate(tst, 3, "dense")
	defer drv.Free()
	y0 := make([]float64, len(y))
	copy(y0, y)

	// a second run takes a single, vanishing iteration. The increment check
	// needs tolerances above roundoff level since the initial residual of
	// this run is already at the floor of the first solve.
	conf := new(inp.SolverData)
	conf.SetDefaults()
	conf.Atol = 1e-5
	conf.Rtol = 1e-5
	conf.Itol = 1e-5
	prob, err := NewProblem(plateWf(), spc, nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	lis, err := lin.New("dense", prob.Jacobian(), nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	drv2, err := NewDriver[float64](conf, prob, lis, nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	defer drv2.Free()
	err = drv2.Run(y)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if drv2.Status != StatConverged {
		tst.Errorf("test failed: status must be %v. %v is invalid", StatConverged, drv2.Status)
		return
	}
	chk.IntAssert(drv2.It, 1)
	chk.Vector(tst, "y unchanged", 1e-8, y, y0)
}

func Test_driver04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("driver04. nonlinear conductivity")

	// lam(u) = 1 + u^2 with boundary data keeping u in [1,2]
	msh := testMesh()
	ebcs := NewEssenBcs()
	ebcs.Set(-10, BcRule{C: 1})
	ebcs.Set(-13, BcRule{C: 1})
	wf := wfm.New("nonlinear")
	wf.AddDiffusion(-1,
		func(u float64) float64 { return 1 + u*u },
		func(u float64) float64 { return 2 * u },
		0)
	wf.AddNewtonBc(-11, 1, 2)
	wf.AddNewtonBc(-12, 1, 2)

	spc, err := NewSpace(msh, ebcs, 3)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	prob, err := NewProblem(wf, spc, nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	lis, err := lin.New("dense", prob.Jacobian(), nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	drv, err := NewDriver[float64](nil, prob, lis, nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	defer drv.Free()

	y := make([]float64, prob.NumDofs())
	err = drv.Run(y)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if drv.Status != StatConverged {
		tst.Errorf("test failed: status must be %v. %v is invalid", StatConverged, drv.Status)
		return
	}
	if drv.It >= 10 {
		tst.Errorf("test failed: Newton must converge in fewer than 10 iterations. It=%d", drv.It)
		return
	}
	for _, c := range y {
		if c < 1-1e-8 || c > 2+1e-8 {
			tst.Errorf("test failed: coefficient %v outside [1,2]", c)
			return
		}
	}

	// damped iterations reach the same root
	conf := new(inp.SolverData)
	conf.SetDefaults()
	conf.DmpFac = 0.8
	conf.NmaxIt = 40
	drv2, err := NewDriver[float64](conf, prob, lis, nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	y2 := make([]float64, prob.NumDofs())
	err = drv2.Run(y2)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Vector(tst, "damped root", 1e-6, y2, y)
}

func Test_driver05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("driver05. iteration exhaustion")

	msh := testMesh()
	ebcs := NewEssenBcs()
	ebcs.Set(-10, BcRule{C: 1})
	wf := wfm.New("nonlinear")
	wf.AddDiffusion(-1,
		func(u float64) float64 { return 1 + u*u },
		func(u float64) float64 { return 2 * u },
		5)

	spc, err := NewSpace(msh, ebcs, 2)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	prob, err := NewProblem(wf, spc, nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	lis, err := lin.New("dense", prob.Jacobian(), nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	conf := new(inp.SolverData)
	conf.SetDefaults()
	conf.NmaxIt = 1
	drv, err := NewDriver[float64](conf, prob, lis, nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	defer drv.Free()

	y := make([]float64, prob.NumDofs())
	err = drv.Run(y)
	var dverr *DivergedError
	if err == nil || !errors.As(err, &dverr) {
		tst.Errorf("test failed: DivergedError due to iteration exhaustion was not raised")
		return
	}
	if drv.Status != StatDiverged {
		tst.Errorf("test failed: status must be %v. %v is invalid", StatDiverged, drv.Status)
	}
}

func Test_driver06(tst *testing.T) {

	//verbose()
	chk.PrintTitle("driver06. singular Jacobian")

	msh := testMesh()
	wf := wfm.New("degenerate")
	wf.AddMatFormVol(-1, func(s *wfm.State, u float64, gu []float64, v float64, gv []float64) float64 {
		return 0
	})
	wf.AddVecFormVol(-1, func(s *wfm.State, v float64, gv []float64) float64 {
		return v
	})

	spc, err := NewSpace(msh, nil, 1)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	prob, err := NewProblem(wf, spc, nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	lis, err := lin.New("dense", prob.Jacobian(), nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	drv, err := NewDriver[float64](nil, prob, lis, nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	defer drv.Free()

	y := make([]float64, prob.NumDofs())
	err = drv.Run(y)
	var ferr *FailedError
	if err == nil || !errors.As(err, &ferr) {
		tst.Errorf("test failed: FailedError due to a singular Jacobian was not raised")
		return
	}
	var lerr *lin.LinearSolveError
	if !errors.As(err, &lerr) {
		tst.Errorf("test failed: the failure must carry the linear solver error")
		return
	}
	if drv.Status != StatFailed {
		tst.Errorf("test failed: status must be %v. %v is invalid", StatFailed, drv.Status)
	}
}

// cxProb is a one-DOF complex problem F(y) = y^2 - c with Jacobian 2y
type cxProb struct {
	c   complex128
	jac complex128
	rb  []complex128
}

func (o *cxProb) NumDofs() int { return 1 }

func (o *cxProb) Assemble(y []complex128) error {
	if len(y) != 1 {
		return &DimensionError{len(y), 1}
	}
	o.jac = 2 * y[0]
	o.rb = []complex128{y[0]*y[0] - o.c}
	return nil
}

func (o *cxProb) Residual() []complex128 { return o.rb }

// cxSolver inverts the 1x1 complex Jacobian directly
type cxSolver struct {
	prob *cxProb
}

func (o *cxSolver) Init() error { return nil }
func (o *cxSolver) Fact() error { return nil }
func (o *cxSolver) Free()       {}

func (o *cxSolver) Solve(x, b []complex128) error {
	if o.prob.jac == 0 {
		return errors.New("singular Jacobian")
	}
	x[0] = b[0] / o.prob.jac
	return nil
}

func Test_driver07(tst *testing.T) {

	//verbose()
	chk.PrintTitle("driver07. complex scalar field")

	prob := &cxProb{c: complex(0, 2)} // roots are ±(1+i)
	drv, err := NewDriver[complex128](nil, prob, &cxSolver{prob}, nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	y := []complex128{complex(1, 0.5)}
	err = drv.Run(y)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if drv.Status != StatConverged {
		tst.Errorf("test failed: status must be %v. %v is invalid", StatConverged, drv.Status)
		return
	}
	r := y[0] * y[0]
	if math.Abs(real(r)-0) > 1e-10 || math.Abs(imag(r)-2) > 1e-10 {
		tst.Errorf("test failed: y^2 must equal 2i. %v is invalid", r)
	}
}

// seqProb is a scripted one-DOF problem whose residual follows a fixed
// sequence, one value per Assemble call; the last value repeats
type seqProb struct {
	vals []float64
	k    int
	rb   []float64
}

func (o *seqProb) NumDofs() int { return 1 }

func (o *seqProb) Assemble(y []float64) error {
	i := o.k
	if i >= len(o.vals) {
		i = len(o.vals) - 1
	}
	o.rb = []float64{o.vals[i]}
	o.k++
	return nil
}

func (o *seqProb) Residual() []float64 { return o.rb }

// unitSolver stands for an identity Jacobian and counts Fact and Solve calls
type unitSolver struct {
	nfact, nsolve int
}

func (o *unitSolver) Init() error { return nil }
func (o *unitSolver) Fact() error { o.nfact++; return nil }
func (o *unitSolver) Free()       {}

func (o *unitSolver) Solve(x, b []float64) error {
	o.nsolve++
	copy(x, b)
	return nil
}

func Test_driver08(tst *testing.T) {

	//verbose()
	chk.PrintTitle("driver08. divergence control")

	conf := new(inp.SolverData)
	conf.SetDefaults()
	conf.DvgCtrl = true

	// a residual growing on the second iteration stops the solve
	drv, err := NewDriver[float64](conf, &seqProb{vals: []float64{1, 0.5, 0.7}}, &unitSolver{}, nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	y := []float64{0}
	err = drv.Run(y)
	var dverr *DivergedError
	if err == nil || !errors.As(err, &dverr) {
		tst.Errorf("test failed: DivergedError due to a growing residual was not raised")
		return
	}
	if drv.Status != StatDiverged {
		tst.Errorf("test failed: status must be %v. %v is invalid", StatDiverged, drv.Status)
		return
	}
	chk.IntAssert(drv.It, 2)

	// a rise on the first iteration is tolerated: the residual of iteration
	// zero is not a meaningful reference yet
	drv2, err := NewDriver[float64](conf, &seqProb{vals: []float64{1, 1.5, 0}}, &unitSolver{}, nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	y = []float64{0}
	err = drv2.Run(y)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if drv2.Status != StatConverged {
		tst.Errorf("test failed: status must be %v. %v is invalid", StatConverged, drv2.Status)
		return
	}
	chk.IntAssert(drv2.It, 2)
}

func Test_driver09(tst *testing.T) {

	//verbose()
	chk.PrintTitle("driver09. constant tangent reuses the factorization")

	conf := new(inp.SolverData)
	conf.SetDefaults()
	conf.CteTg = true

	lis := new(unitSolver)
	drv, err := NewDriver[float64](conf, &seqProb{vals: []float64{1, 0.5, 0.2, 0}}, lis, nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	y := []float64{0}
	err = drv.Run(y)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if drv.Status != StatConverged {
		tst.Errorf("test failed: status must be %v. %v is invalid", StatConverged, drv.Status)
		return
	}
	chk.IntAssert(lis.nfact, 1)
	chk.IntAssert(lis.nsolve, 3)
}
