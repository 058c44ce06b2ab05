package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/brurucy/ernst/internal/ising"
)

// loadProblem reads a Hamiltonian from a JSON file of the form
// {"biases": [...], "couplings": [{"i":0,"j":1,"strength":-1.0}, ...]}.
func loadProblem(path string) (ising.Hamiltonian, error) {
	var h ising.Hamiltonian

	data, err := os.ReadFile(path)
	if err != nil {
		return h, fmt.Errorf("failed to read problem file: %w", err)
	}

	if err := json.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("failed to parse problem file: %w", err)
	}

	if h.Spins() == 0 {
		return h, fmt.Errorf("problem file %s defines no spins", path)
	}
	if err := h.Validate(); err != nil {
		return h, fmt.Errorf("invalid problem: %w", err)
	}

	return h, nil
}

// formatSpins renders a configuration as a compact +/- string, up
// meaning +1 and down meaning -1.
func formatSpins(s ising.State) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, up := range s {
		if up {
			b.WriteByte('+')
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}
