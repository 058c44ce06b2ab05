package solve

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/brurucy/ernst/internal/ising"
)

// MaxExactSpins is the default safety ceiling for exhaustive search.
// Enumeration visits 2^n configurations, which stops being tractable in
// the low forties even with O(degree) incremental updates.
const MaxExactSpins = 40

// ErrNoSpins is returned when a solver is handed an empty system.
var ErrNoSpins = errors.New("hamiltonian has no spins")

// SizeLimitError reports an exhaustive search request beyond the ceiling.
type SizeLimitError struct {
	Spins int
	Limit int
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("exhaustive search over %d spins exceeds the %d-spin ceiling", e.Spins, e.Limit)
}

// Result is a configuration together with its energy.
type Result struct {
	Energy float64     `json:"energy"`
	State  ising.State `json:"state"`
}

// GroundStates returns every configuration achieving the minimum energy
// of the Hamiltonian, in the order they are discovered. Enumeration
// follows the reflected binary (Gray code) ordering, so consecutive
// configurations differ by exactly one spin and each step costs only an
// incremental O(degree) update. Energies within ising.Epsilon of the
// running minimum count as ties.
func GroundStates(h *ising.Hamiltonian) ([]Result, error) {
	return GroundStatesLimited(h, MaxExactSpins)
}

// GroundStatesLimited is GroundStates with a caller-chosen spin ceiling.
func GroundStatesLimited(h *ising.Hamiltonian, maxSpins int) ([]Result, error) {
	n := h.Spins()
	if n == 0 {
		return nil, ErrNoSpins
	}
	if n > maxSpins {
		return nil, &SizeLimitError{Spins: n, Limit: maxSpins}
	}

	eng, err := ising.NewEngine(h, nil)
	if err != nil {
		return nil, err
	}

	lowest := eng.Energy()
	found := []foundState{{energy: lowest, bits: eng.Bits()}}

	for i := uint64(1); i < uint64(1)<<uint(n); i++ {
		// Consecutive Gray codes differ in exactly one bit.
		flipped := bits.TrailingZeros64(grayCode(i-1) ^ grayCode(i))
		eng.CommitFlip(flipped)

		energy := eng.Energy()
		if math.Abs(energy-lowest) < ising.Epsilon {
			found = append(found, foundState{energy: energy, bits: eng.Bits()})
		} else if energy < lowest {
			lowest = energy
			found = found[:0]
			found = append(found, foundState{energy: energy, bits: eng.Bits()})
		}
	}

	results := make([]Result, len(found))
	for i, f := range found {
		results[i] = Result{Energy: f.energy, State: f.bits.Expand()}
	}
	return results, nil
}

type foundState struct {
	energy float64
	bits   ising.BitState
}

func grayCode(n uint64) uint64 {
	return n ^ (n >> 1)
}
