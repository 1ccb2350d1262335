// Copyright 2026 The Gonfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lin

import (
	"errors"
	"testing"

	"github.com/cpmech/gosl/la"
	"github.com/stretchr/testify/require"
)

// newTriplet3 returns the triplet of a well-conditioned 3x3 system with
// solution x = {1, 2, 3} for b = {7, 10, 14}
func newTriplet3() *la.Triplet {
	kb := new(la.Triplet)
	kb.Init(3, 3, 9)
	kb.Put(0, 0, 2)
	kb.Put(0, 1, 1)
	kb.Put(0, 2, 1)
	kb.Put(1, 0, 1)
	kb.Put(1, 1, 3)
	kb.Put(1, 2, 1)
	kb.Put(2, 0, 0)
	kb.Put(2, 1, 1)
	kb.Put(2, 2, 4)
	return kb
}

func TestBackends(t *testing.T) {

	b := []float64{7, 10, 14}
	want := []float64{1, 2, 3}

	for _, name := range []string{"dense", "qr", "bicgstab"} {
		kb := newTriplet3()
		s, err := New(name, kb, nil)
		require.NoError(t, err, name)
		require.NoError(t, s.Init(), name)
		require.NoError(t, s.Fact(), name)
		x := make([]float64, 3)
		require.NoError(t, s.Solve(x, b), name)
		for i := range want {
			require.InDelta(t, want[i], x[i], 1e-6, "%s x[%d]", name, i)
		}
		s.Free()
	}
}

func TestRefactorize(t *testing.T) {

	// the same solver instance must follow value changes in the triplet
	kb := newTriplet3()
	s, err := New("dense", kb, nil)
	require.NoError(t, err)
	require.NoError(t, s.Init())
	require.NoError(t, s.Fact())
	x := make([]float64, 3)
	require.NoError(t, s.Solve(x, []float64{7, 10, 14}))
	require.InDelta(t, 1, x[0], 1e-12)

	// scale the system by 2
	kb.Start()
	kb.Put(0, 0, 4)
	kb.Put(0, 1, 2)
	kb.Put(0, 2, 2)
	kb.Put(1, 0, 2)
	kb.Put(1, 1, 6)
	kb.Put(1, 2, 2)
	kb.Put(2, 0, 0)
	kb.Put(2, 1, 2)
	kb.Put(2, 2, 8)
	require.NoError(t, s.Fact())
	require.NoError(t, s.Solve(x, []float64{14, 20, 28}))
	require.InDelta(t, 1, x[0], 1e-12)
	require.InDelta(t, 2, x[1], 1e-12)
	require.InDelta(t, 3, x[2], 1e-12)
	s.Free()
}

func TestSingular(t *testing.T) {

	// a singular matrix must be reported as a LinearSolveError
	kb := new(la.Triplet)
	kb.Init(2, 2, 4)
	kb.Put(0, 0, 1)
	kb.Put(0, 1, 2)
	kb.Put(1, 0, 2)
	kb.Put(1, 1, 4)

	s, err := New("dense", kb, nil)
	require.NoError(t, err)
	require.NoError(t, s.Init())
	require.NoError(t, s.Fact())
	x := make([]float64, 2)
	err = s.Solve(x, []float64{1, 1})
	require.Error(t, err)
	var lerr *LinearSolveError
	require.True(t, errors.As(err, &lerr))
	require.Equal(t, "dense", lerr.Backend)
	s.Free()
}

func TestUnknownBackend(t *testing.T) {

	kb := newTriplet3()
	_, err := New("inexistent", kb, nil)
	require.Error(t, err)

	_, err = New("dense", nil, nil)
	require.Error(t, err)
}
