// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"
	"math/cmplx"
	"time"

	"github.com/gonfem/gonfem/inp"
	"github.com/gonfem/gonfem/rpt"
)

// Scalar is the admissible scalar field type of a Newton solve
type Scalar interface {
	float64 | complex128
}

// DiscreteProblem produces the Jacobian and residual of a nonlinear
// algebraic system F(y) = 0 for a given coefficient vector
type DiscreteProblem[S Scalar] interface {
	NumDofs() int
	Assemble(y []S) error
	Residual() []S
}

// LinSolver solves the linearized system of one Newton iteration. Init is
// called once, after the first assembly; Fact and Solve once per iteration.
type LinSolver[S Scalar] interface {
	Init() error
	Fact() error
	Solve(x, b []S) error
	Free()
}

// Driver runs Newton-Raphson iterations on a discrete problem.
// After Run, Status, It, LargFb and Ldu report the outcome of the solve.
type Driver[S Scalar] struct {

	// input
	Conf *inp.SolverData    // iteration constants
	Prob DiscreteProblem[S] // problem being solved
	Lis  LinSolver[S]       // linear solver
	Rpt  *rpt.Reporter      // optional diagnostics sink

	// state
	Status Status  // outcome of the last Run
	It     int     // number of iterations performed by the last Run
	LargFb float64 // largest residual component at the last iteration
	Ldu    float64 // RMS norm of the last increment, scaled by Atol/Rtol

	// derived
	initLSol bool // linear solver still needs Init
	fb       []S  // negative residual
	wb       []S  // increment workspace
}

// NewDriver returns a Newton driver. conf may be nil for default constants.
func NewDriver[S Scalar](conf *inp.SolverData, prob DiscreteProblem[S], lis LinSolver[S], rep *rpt.Reporter) (*Driver[S], error) {
	if prob == nil {
		return nil, errCfg("driver requires a discrete problem")
	}
	if lis == nil {
		return nil, errCfg("driver requires a linear solver")
	}
	if conf == nil {
		conf = new(inp.SolverData)
		conf.SetDefaults()
	}
	if conf.NmaxIt < 1 {
		return nil, errCfg("driver requires NmaxIt ≥ 1. NmaxIt=%d is invalid", conf.NmaxIt)
	}
	ndof := prob.NumDofs()
	o := &Driver[S]{Conf: conf, Prob: prob, Lis: lis, Rpt: rep}
	o.initLSol = true
	o.fb = make([]S, ndof)
	o.wb = make([]S, ndof)
	return o, nil
}

// Run performs Newton-Raphson iterations, updating y in place until the
// residual and increment tolerances are met. On success y holds the root and
// Status is StatConverged; otherwise y holds the last iterate and the error
// is a DivergedError, a FailedError or an AssemblyError.
func (o *Driver[S]) Run(y []S) (err error) {

	o.Status = StatInit
	o.It = 0
	o.LargFb = 0
	o.Ldu = 0
	var largFb0 float64
	var prevFb float64

	for o.It = 0; o.It < o.Conf.NmaxIt; o.It++ {

		// assemble Jacobian and residual
		t0 := time.Now()
		err = o.Prob.Assemble(y)
		if err != nil {
			o.Status = StatFailed
			return
		}
		o.Status = StatIterating
		rb := o.Prob.Residual()
		for i := 0; i < len(rb); i++ {
			o.fb[i] = -rb[i]
		}
		o.Rpt.TimeLog("assemble", time.Since(t0))

		// residual checks
		o.LargFb = vecLargest(o.fb)
		if o.It == 0 {
			largFb0 = o.LargFb
		} else {
			if o.LargFb < o.Conf.FbMin {
				o.Status = StatConverged
				o.Rpt.Info("converged: it=%d largFb=%g < FbMin", o.It, o.LargFb)
				return nil
			}
			if o.LargFb < o.Conf.FbTol*largFb0 {
				o.Status = StatConverged
				o.Rpt.Info("converged: it=%d largFb=%g < FbTol*largFb0", o.It, o.LargFb)
				return nil
			}
			// divergence control kicks in from the second iteration on
			if o.Conf.DvgCtrl && o.It > 1 && o.LargFb > prevFb {
				o.Status = StatDiverged
				err = &DivergedError{o.It, o.LargFb, o.Ldu, "residual is growing"}
				return
			}
		}
		prevFb = o.LargFb
		o.Rpt.Verb("it=%-2d largFb=%-13.6e Ldu=%-13.6e", o.It, o.LargFb, o.Ldu)

		// initialize linear solver
		if o.initLSol {
			err = o.Lis.Init()
			if err != nil {
				o.Status = StatFailed
				return &FailedError{o.It, o.LargFb, err}
			}
			o.initLSol = false
		}

		// factorize; with a constant tangent the factors of iteration 0 are reused
		if !o.Conf.CteTg || o.It == 0 {
			t0 = time.Now()
			err = o.Lis.Fact()
			if err != nil {
				o.Status = StatFailed
				return &FailedError{o.It, o.LargFb, err}
			}
			o.Rpt.TimeLog("factorize", time.Since(t0))
		}

		// solve linearized system
		t0 = time.Now()
		err = o.Lis.Solve(o.wb, o.fb)
		if err != nil {
			o.Status = StatFailed
			return &FailedError{o.It, o.LargFb, err}
		}
		o.Rpt.TimeLog("solve", time.Since(t0))

		// update solution
		dmp := 1.0
		if o.Conf.DmpFac > 0 && o.Conf.DmpFac < 1 {
			dmp = o.Conf.DmpFac
		}
		for i := 0; i < len(y); i++ {
			y[i] += scScale(dmp, o.wb[i])
		}

		// increment check
		o.Ldu = rmsErr(o.wb, o.Conf.Atol, o.Conf.Rtol, y)
		o.Rpt.Trace("it=%-2d dmp=%g Ldu=%-13.6e", o.It, dmp, o.Ldu)
		if o.Ldu < o.Conf.Itol {
			o.It++
			o.Status = StatConverged
			o.Rpt.Info("converged: it=%d Ldu=%g < Itol", o.It, o.Ldu)
			return nil
		}
	}

	// iterations did not converge
	o.Status = StatDiverged
	err = &DivergedError{o.It, o.LargFb, o.Ldu, "maximum number of iterations reached"}
	return
}

// Free releases resources held by the linear solver
func (o *Driver[S]) Free() {
	if o.Lis != nil {
		o.Lis.Free()
	}
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

// scAbs returns the modulus of a scalar
func scAbs[S Scalar](v S) float64 {
	switch w := any(v).(type) {
	case float64:
		return math.Abs(w)
	case complex128:
		return cmplx.Abs(w)
	}
	return 0
}

// scScale multiplies a scalar by a real factor
func scScale[S Scalar](m float64, v S) S {
	switch w := any(v).(type) {
	case float64:
		return any(m * w).(S)
	case complex128:
		return any(complex(m, 0) * w).(S)
	}
	return v
}

// vecLargest returns the largest modulus among the components of a vector
func vecLargest[S Scalar](v []S) (largest float64) {
	for i := 0; i < len(v); i++ {
		if a := scAbs(v[i]); a > largest {
			largest = a
		}
	}
	return
}

// rmsErr returns the RMS norm of w with components scaled by atol + rtol*|y|
func rmsErr[S Scalar](w []S, atol, rtol float64, y []S) float64 {
	if len(w) == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < len(w); i++ {
		e := scAbs(w[i]) / (atol + rtol*scAbs(y[i]))
		sum += e * e
	}
	return math.Sqrt(sum / float64(len(w)))
}
