package solve

import (
	"errors"
	"math"
	"math/bits"
	"math/rand"
	"reflect"
	"testing"

	"github.com/brurucy/ernst/internal/ising"
)

func TestGroundStatesTwoSpinScenario(t *testing.T) {
	// h = [1, -1], J = [(0, 1, 2)]. All four configurations by hand:
	//   (-1,-1): E = -0 - 2 = -2
	//   (+1,-1): E = -2 + 2 =  0
	//   (-1,+1): E = +2 + 2 =  4
	//   (+1,+1): E = -0 - 2 = -2
	// so the minimum -2 is shared by the two aligned configurations.
	h := &ising.Hamiltonian{
		Biases:    []float64{1.0, -1.0},
		Couplings: []ising.Coupling{{I: 0, J: 1, Strength: 2.0}},
	}

	results, err := GroundStates(h)
	if err != nil {
		t.Fatalf("GroundStates: %v", err)
	}

	expected := []Result{
		{Energy: -2.0, State: ising.State{false, false}},
		{Energy: -2.0, State: ising.State{true, true}},
	}
	if !reflect.DeepEqual(results, expected) {
		t.Errorf("Expected %v, got %v", expected, results)
	}
}

func TestGroundStatesCopy(t *testing.T) {
	h := &ising.Hamiltonian{
		Biases:    []float64{0.0, 0.0},
		Couplings: []ising.Coupling{{I: 0, J: 1, Strength: 1.0}},
	}

	results, err := GroundStates(h)
	if err != nil {
		t.Fatalf("GroundStates: %v", err)
	}

	expected := []Result{
		{Energy: -1.0, State: ising.State{false, false}},
		{Energy: -1.0, State: ising.State{true, true}},
	}
	if !reflect.DeepEqual(results, expected) {
		t.Errorf("Expected %v, got %v", expected, results)
	}
}

func TestGroundStatesAndWidget(t *testing.T) {
	// Three-spin AND widget: inputs 0, 1 and output 2.
	h := &ising.Hamiltonian{
		Biases: []float64{0.5, 0.5, -1.0},
		Couplings: []ising.Coupling{
			{I: 0, J: 1, Strength: -0.5},
			{I: 0, J: 2, Strength: 1.0},
			{I: 1, J: 2, Strength: 1.0},
		},
	}

	results, err := GroundStates(h)
	if err != nil {
		t.Fatalf("GroundStates: %v", err)
	}

	expected := []Result{
		{Energy: -1.5, State: ising.State{false, false, false}},
		{Energy: -1.5, State: ising.State{true, false, false}},
		{Energy: -1.5, State: ising.State{false, true, false}},
		{Energy: -1.5, State: ising.State{true, true, true}},
	}
	if !reflect.DeepEqual(results, expected) {
		t.Errorf("Expected %v, got %v", expected, results)
	}
}

func TestGroundStatesCopyChain(t *testing.T) {
	h := &ising.Hamiltonian{
		Biases: []float64{0.0, 0.0, 0.0, 0.0},
		Couplings: []ising.Coupling{
			{I: 0, J: 1, Strength: 1.0},
			{I: 1, J: 2, Strength: 1.0},
			{I: 2, J: 3, Strength: 1.0},
		},
	}

	results, err := GroundStates(h)
	if err != nil {
		t.Fatalf("GroundStates: %v", err)
	}

	expected := []Result{
		{Energy: -3.0, State: ising.State{false, false, false, false}},
		{Energy: -3.0, State: ising.State{true, true, true, true}},
	}
	if !reflect.DeepEqual(results, expected) {
		t.Errorf("Expected %v, got %v", expected, results)
	}
}

// Completeness against an independent brute force without incremental
// tricks, on random small systems.
func TestGroundStatesMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for trial := 0; trial < 10; trial++ {
		n := 2 + rng.Intn(9)
		h := &ising.Hamiltonian{Biases: make([]float64, n)}
		for i := range h.Biases {
			h.Biases[i] = rng.NormFloat64()
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if rng.Float64() < 0.5 {
					h.Couplings = append(h.Couplings, ising.Coupling{I: i, J: j, Strength: rng.NormFloat64()})
				}
			}
		}

		minEnergy := math.Inf(1)
		expected := map[string]bool{}
		for mask := 0; mask < 1<<n; mask++ {
			state := make(ising.State, n)
			for i := range state {
				state[i] = mask&(1<<i) != 0
			}
			energy, err := h.Energy(state)
			if err != nil {
				t.Fatalf("Energy: %v", err)
			}
			if energy < minEnergy-ising.Epsilon {
				minEnergy = energy
				expected = map[string]bool{ising.BitStateFrom(state).Key(): true}
			} else if math.Abs(energy-minEnergy) < ising.Epsilon {
				expected[ising.BitStateFrom(state).Key()] = true
			}
		}

		results, err := GroundStates(h)
		if err != nil {
			t.Fatalf("GroundStates: %v", err)
		}
		if len(results) != len(expected) {
			t.Fatalf("Trial %d: expected %d ground states, got %d", trial, len(expected), len(results))
		}
		for _, r := range results {
			if math.Abs(r.Energy-minEnergy) > 1e-6 {
				t.Errorf("Trial %d: energy %f differs from brute-force minimum %f", trial, r.Energy, minEnergy)
			}
			if !expected[ising.BitStateFrom(r.State).Key()] {
				t.Errorf("Trial %d: unexpected ground state %v", trial, r.State)
			}
		}
	}
}

func TestGrayCodeSingleFlip(t *testing.T) {
	for i := uint64(1); i < 1<<12; i++ {
		diff := grayCode(i-1) ^ grayCode(i)
		if bits.OnesCount64(diff) != 1 {
			t.Fatalf("Gray codes %d and %d differ in %d bits", i-1, i, bits.OnesCount64(diff))
		}
	}
}

func TestGroundStatesSizeLimit(t *testing.T) {
	h := &ising.Hamiltonian{Biases: make([]float64, 8)}

	_, err := GroundStatesLimited(h, 4)
	var sizeErr *SizeLimitError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("Expected SizeLimitError, got %v", err)
	}
	if sizeErr.Spins != 8 || sizeErr.Limit != 4 {
		t.Errorf("Unexpected error fields: %+v", sizeErr)
	}
}

func TestGroundStatesNoSpins(t *testing.T) {
	if _, err := GroundStates(&ising.Hamiltonian{}); !errors.Is(err, ErrNoSpins) {
		t.Errorf("Expected ErrNoSpins, got %v", err)
	}
}
