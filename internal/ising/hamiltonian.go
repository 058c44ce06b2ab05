package ising

import "fmt"

// Epsilon is the fixed tolerance used when comparing energies for ties.
// It is deliberately not configurable so that ground-state sets stay
// reproducible across runs.
const Epsilon = 1e-9

// Coupling is a pairwise interaction term between two distinct spins.
// The order of I and J carries no meaning: J(i,j) == J(j,i).
type Coupling struct {
	I        int     `json:"i"`
	J        int     `json:"j"`
	Strength float64 `json:"strength"`
}

// Hamiltonian is the energy function of a two-local spin glass, defined
// by a per-spin bias vector h and a coupling list J:
//
//	E(s) = -sum_i h_i*s_i - sum_{i<j} J_ij*s_i*s_j
//
// with s_i in {-1, +1}. Ground states are the configurations minimizing E.
// Both slices are treated as immutable once handed to a solver.
type Hamiltonian struct {
	Biases    []float64  `json:"biases"`
	Couplings []Coupling `json:"couplings"`
}

// Spins returns the number of spins in the system.
func (h *Hamiltonian) Spins() int { return len(h.Biases) }

// Validate checks the structural invariants: every coupling must reference
// two distinct spins that exist in the bias vector.
func (h *Hamiltonian) Validate() error {
	n := len(h.Biases)
	for _, c := range h.Couplings {
		if c.I < 0 || c.I >= n {
			return &IndexError{Index: c.I, Spins: n}
		}
		if c.J < 0 || c.J >= n {
			return &IndexError{Index: c.J, Spins: n}
		}
		if c.I == c.J {
			return fmt.Errorf("self coupling on spin %d", c.I)
		}
	}
	return nil
}

// Energy evaluates E(s) from scratch in O(n + |J|).
func (h *Hamiltonian) Energy(s State) (float64, error) {
	if len(s) != len(h.Biases) {
		return 0, &LengthError{Got: len(s), Want: len(h.Biases)}
	}
	if err := h.Validate(); err != nil {
		return 0, err
	}
	var energy float64
	for i, bias := range h.Biases {
		energy -= bias * spinValue(s[i])
	}
	for _, c := range h.Couplings {
		energy -= c.Strength * spinValue(s[c.I]) * spinValue(s[c.J])
	}
	return energy, nil
}

// LocalField computes the field acting on spin i: h_i plus the sum of
// coupling strengths to its neighbors weighted by their current values.
// Flipping spin i changes the energy by 2*s_i*LocalField(i).
func (h *Hamiltonian) LocalField(s State, i int) (float64, error) {
	if len(s) != len(h.Biases) {
		return 0, &LengthError{Got: len(s), Want: len(h.Biases)}
	}
	if i < 0 || i >= len(h.Biases) {
		return 0, &IndexError{Index: i, Spins: len(h.Biases)}
	}
	field := h.Biases[i]
	for _, c := range h.Couplings {
		switch i {
		case c.I:
			field += c.Strength * spinValue(s[c.J])
		case c.J:
			field += c.Strength * spinValue(s[c.I])
		}
	}
	return field, nil
}

// IndexError reports a spin index outside the bias vector.
type IndexError struct {
	Index int
	Spins int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("spin index %d out of range for %d spins", e.Index, e.Spins)
}

// LengthError reports a configuration whose length does not match the
// bias vector.
type LengthError struct {
	Got  int
	Want int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("state has %d spins, hamiltonian has %d", e.Got, e.Want)
}
