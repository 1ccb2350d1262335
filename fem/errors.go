// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/io"
)

// ConfigurationError indicates invalid setup data: an order outside the
// supported range, an unknown boundary marker, or conflicting constraints.
// Configuration errors are caller bugs and must not be retried.
type ConfigurationError struct {
	Msg string
}

// Error returns the error message
func (e *ConfigurationError) Error() string { return e.Msg }

// errCfg returns a new ConfigurationError
func errCfg(msg string, prm ...interface{}) error {
	return &ConfigurationError{io.Sf(msg, prm...)}
}

// DimensionError indicates a coefficient vector whose length does not match
// the current number of DOFs
type DimensionError struct {
	Len  int // given length
	Ndof int // expected length
}

// Error returns the error message
func (e *DimensionError) Error() string {
	return io.Sf("coefficient vector length must equal the number of DOFs. %d != %d", e.Len, e.Ndof)
}

// AssemblyError indicates that residual/Jacobian assembly cannot proceed:
// a mesh region without volumetric contributors, a degenerate cell, or a
// space mutated while a problem bound to it was in use
type AssemblyError struct {
	Msg string
}

// Error returns the error message
func (e *AssemblyError) Error() string { return e.Msg }

// errAsm returns a new AssemblyError
func errAsm(msg string, prm ...interface{}) error {
	return &AssemblyError{io.Sf(msg, prm...)}
}

// DivergedError indicates that the maximum number of iterations was reached,
// or that divergence control detected growing norms, without meeting the
// tolerances. The caller may retry with a different initial guess, damping,
// or iteration limit.
type DivergedError struct {
	It     int     // iterations performed
	LargFb float64 // last residual inf-norm achieved
	Ldu    float64 // last correction norm achieved
	Msg    string  // why the iteration was declared diverging
}

// Error returns the error message
func (e *DivergedError) Error() string {
	return io.Sf("Newton iterations diverged after %d iterations (%s). largFb=%g, Ldu=%g", e.It, e.Msg, e.LargFb, e.Ldu)
}

// FailedError indicates that the linear solver failed, terminating the
// current Newton attempt. Distinct from DivergedError.
type FailedError struct {
	It     int     // iteration at which the failure happened
	LargFb float64 // last residual inf-norm achieved
	Cause  error   // the underlying failure
}

// Error returns the error message
func (e *FailedError) Error() string {
	return io.Sf("Newton iteration %d failed: %v. largFb=%g", e.It, e.Cause, e.LargFb)
}

// Unwrap returns the underlying failure
func (e *FailedError) Unwrap() error { return e.Cause }

// Status represents the state of the Newton driver
type Status int

// driver states
const (
	StatInit      Status = iota // not run yet
	StatIterating               // running
	StatConverged               // tolerances met
	StatDiverged                // iteration limit reached or norms growing
	StatFailed                  // assembly or linear-solve failure
)

// String returns a human readable status
func (s Status) String() string {
	switch s {
	case StatInit:
		return "init"
	case StatIterating:
		return "iterating"
	case StatConverged:
		return "converged"
	case StatDiverged:
		return "diverged"
	case StatFailed:
		return "failed"
	}
	return io.Sf("unknown(%d)", int(s))
}
