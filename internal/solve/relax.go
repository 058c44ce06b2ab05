package solve

import (
	"github.com/brurucy/ernst/internal/ising"
	"github.com/brurucy/ernst/internal/opt"
)

// Relax approximates a ground state by relaxing the spins to the
// continuous box [-1, 1]^n, minimizing the relaxed energy with a
// black-box optimizer, rounding the result back to +/-1, and polishing
// it with greedy single-flip descent on the incremental engine.
//
// The relaxed landscape is not the discrete one, so this is a heuristic:
// it returns a single low-energy configuration, not a ground-state set.
func Relax(h *ising.Hamiltonian, optimizer opt.Optimizer) (Result, error) {
	n := h.Spins()
	if n == 0 {
		return Result{}, ErrNoSpins
	}
	if err := h.Validate(); err != nil {
		return Result{}, err
	}

	eval := func(x []float64) float64 {
		var energy float64
		for i, bias := range h.Biases {
			energy -= bias * x[i]
		}
		for _, c := range h.Couplings {
			energy -= c.Strength * x[c.I] * x[c.J]
		}
		return energy
	}

	lower := make([]float64, n)
	upper := make([]float64, n)
	for i := range lower {
		lower[i] = -1
		upper[i] = 1
	}

	position, _, err := optimizer.Run(eval, lower, upper, n)
	if err != nil {
		return Result{}, err
	}

	rounded := make(ising.State, n)
	for i, x := range position {
		rounded[i] = x >= 0
	}

	eng, err := ising.NewEngine(h, rounded)
	if err != nil {
		return Result{}, err
	}

	// Greedy descent: keep committing strictly improving flips until the
	// configuration is locally optimal.
	for improved := true; improved; {
		improved = false
		for i := 0; i < n; i++ {
			if eng.ProposeFlip(i) < -ising.Epsilon {
				eng.CommitFlip(i)
				improved = true
			}
		}
	}

	return Result{Energy: eng.Energy(), State: eng.State()}, nil
}
