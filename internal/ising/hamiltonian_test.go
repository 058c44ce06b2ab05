package ising

import (
	"errors"
	"math"
	"testing"
)

func TestEnergyAllDown(t *testing.T) {
	h := &Hamiltonian{
		Biases: []float64{-1.0, -1.0, -3.0},
		Couplings: []Coupling{
			{I: 0, J: 1, Strength: -1.0},
			{I: 1, J: 2, Strength: 2.0},
			{I: 0, J: 2, Strength: 2.0},
		},
	}

	energy, err := h.Energy(make(State, 3))
	if err != nil {
		t.Fatalf("Energy returned error: %v", err)
	}
	if energy != -8.0 {
		t.Errorf("Expected energy -8.0 for all-down state, got %f", energy)
	}
}

func TestEnergyLengthMismatch(t *testing.T) {
	h := &Hamiltonian{Biases: []float64{1.0, -1.0}}

	_, err := h.Energy(make(State, 3))
	var lengthErr *LengthError
	if !errors.As(err, &lengthErr) {
		t.Fatalf("Expected LengthError, got %v", err)
	}
	if lengthErr.Got != 3 || lengthErr.Want != 2 {
		t.Errorf("Unexpected error fields: %+v", lengthErr)
	}
}

func TestValidateDanglingCoupling(t *testing.T) {
	h := &Hamiltonian{
		Biases:    []float64{0.0, 0.0},
		Couplings: []Coupling{{I: 0, J: 5, Strength: 1.0}},
	}

	err := h.Validate()
	var indexErr *IndexError
	if !errors.As(err, &indexErr) {
		t.Fatalf("Expected IndexError, got %v", err)
	}
	if indexErr.Index != 5 {
		t.Errorf("Expected offending index 5, got %d", indexErr.Index)
	}
}

func TestValidateSelfCoupling(t *testing.T) {
	h := &Hamiltonian{
		Biases:    []float64{0.0},
		Couplings: []Coupling{{I: 0, J: 0, Strength: 1.0}},
	}

	if err := h.Validate(); err == nil {
		t.Error("Expected error for self coupling, got nil")
	}
}

func TestLocalFieldMatchesFlipDelta(t *testing.T) {
	h := &Hamiltonian{
		Biases: []float64{0.5, -0.25, 1.0},
		Couplings: []Coupling{
			{I: 0, J: 1, Strength: -0.5},
			{I: 1, J: 2, Strength: 1.5},
		},
	}
	state := State{true, false, true}

	for i := range state {
		before, err := h.Energy(state)
		if err != nil {
			t.Fatalf("Energy: %v", err)
		}
		field, err := h.LocalField(state, i)
		if err != nil {
			t.Fatalf("LocalField: %v", err)
		}

		flipped := state.Clone()
		flipped[i] = !flipped[i]
		after, err := h.Energy(flipped)
		if err != nil {
			t.Fatalf("Energy: %v", err)
		}

		want := 2 * spinValue(state[i]) * field
		if math.Abs((after-before)-want) > Epsilon {
			t.Errorf("Spin %d: flip delta %f, local field predicts %f", i, after-before, want)
		}
	}
}

func TestBitStateRoundTrip(t *testing.T) {
	state := State{true, false, false, true, true}
	bits := BitStateFrom(state)

	if bits.Len() != 5 {
		t.Fatalf("Expected 5 spins, got %d", bits.Len())
	}
	for i, up := range state {
		if bits.Get(i) != up {
			t.Errorf("Spin %d: expected %v, got %v", i, up, bits.Get(i))
		}
	}

	expanded := bits.Expand()
	for i := range state {
		if expanded[i] != state[i] {
			t.Errorf("Expand mismatch at %d", i)
		}
	}

	other := bits.Clone()
	other.Flip(2)
	if bits.Get(2) {
		t.Error("Flip on clone must not affect the original")
	}
	if other.Key() == bits.Key() {
		t.Error("Distinct patterns must have distinct keys")
	}
}
