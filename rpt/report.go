// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package rpt implements the event reporter consulted by the solver core.
// Each reporting level is switched on or off by ordinary runtime
// configuration held in Config; there are no compile-time flags and no
// package-level mutable state.
package rpt

import (
	"time"

	"github.com/cpmech/gosl/io"
)

// Config holds the runtime switches deciding which events are emitted
type Config struct {
	Warn     bool // general warnings
	WarnIntg bool // warnings about numerical-integration quality
	Info     bool // progress information
	Verbose  bool // detailed progress information
	Trace    bool // execution tracing
	Time     bool // time-measurement reports
	Debug    bool // debugging messages
}

// Reporter emits events according to its configuration. The zero value and
// the nil pointer are both valid and emit nothing, so callees may hold a
// Reporter without checking for one.
type Reporter struct {
	Conf Config
}

// NewReporter returns a reporter with the given configuration
func NewReporter(conf Config) *Reporter {
	return &Reporter{Conf: conf}
}

// Warn reports a general warning
func (o *Reporter) Warn(msg string, prm ...interface{}) {
	if o == nil || !o.Conf.Warn {
		return
	}
	io.Pfyel("W "+msg+"\n", prm...)
}

// WarnIntg reports a non-fatal numerical-integration quality issue.
// These are diagnostics only; they never affect convergence decisions.
func (o *Reporter) WarnIntg(msg string, prm ...interface{}) {
	if o == nil || !o.Conf.WarnIntg {
		return
	}
	io.Pfyel("W(intg) "+msg+"\n", prm...)
}

// Info reports progress information
func (o *Reporter) Info(msg string, prm ...interface{}) {
	if o == nil || !o.Conf.Info {
		return
	}
	io.Pf("I "+msg+"\n", prm...)
}

// Verb reports detailed progress information
func (o *Reporter) Verb(msg string, prm ...interface{}) {
	if o == nil || !o.Conf.Verbose {
		return
	}
	io.Pfgrey("V "+msg+"\n", prm...)
}

// Trace reports execution tracing
func (o *Reporter) Trace(msg string, prm ...interface{}) {
	if o == nil || !o.Conf.Trace {
		return
	}
	io.Pfgrey("R "+msg+"\n", prm...)
}

// TimeLog reports the duration of a named step
func (o *Reporter) TimeLog(name string, elapsed time.Duration) {
	if o == nil || !o.Conf.Time {
		return
	}
	io.Pfcyan("T %s = %v\n", name, elapsed)
}

// Debug reports a debugging message
func (o *Reporter) Debug(msg string, prm ...interface{}) {
	if o == nil || !o.Conf.Debug {
		return
	}
	io.Pforan("D "+msg+"\n", prm...)
}
