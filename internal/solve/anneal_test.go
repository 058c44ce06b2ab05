package solve

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/brurucy/ernst/internal/ising"
)

// Chained OR network (two binary ORs over three inputs), 6 spins with 8
// ground states at energy -4.
func chainedOr() *ising.Hamiltonian {
	return &ising.Hamiltonian{
		Biases: []float64{-0.5, -0.5, 1.0, -0.5, -0.5, 1.0},
		Couplings: []ising.Coupling{
			{I: 0, J: 1, Strength: -0.5},
			{I: 0, J: 2, Strength: 1.0},
			{I: 1, J: 2, Strength: 1.0},
			{I: 2, J: 3, Strength: 1.0},
			{I: 3, J: 4, Strength: -0.5},
			{I: 4, J: 5, Strength: 1.0},
			{I: 3, J: 5, Strength: 1.0},
		},
	}
}

func coolConfig(seed int64) AnnealConfig {
	return AnnealConfig{
		InitialTemperature: 1.0,
		FinalTemperature:   0.001,
		SweepsPerStep:      1,
		TemperatureSteps:   5000,
		Seed:               &seed,
	}
}

func TestAnnealFindsGroundEnergy(t *testing.T) {
	results, err := Anneal(chainedOr(), coolConfig(42))
	if err != nil {
		t.Fatalf("Anneal: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Expected at least one discovery")
	}

	for _, r := range results {
		if math.Abs(r.Energy-(-4.0)) > 1e-6 {
			t.Errorf("Result energy %f, expected the ground energy -4", r.Energy)
		}
		fresh, err := chainedOr().Energy(r.State)
		if err != nil {
			t.Fatalf("Energy: %v", err)
		}
		if math.Abs(fresh-r.Energy) > 1e-6 {
			t.Errorf("Reported energy %f does not match state energy %f", r.Energy, fresh)
		}
	}
}

func TestAnnealDeterministicUnderSeed(t *testing.T) {
	first, err := Anneal(chainedOr(), coolConfig(7))
	if err != nil {
		t.Fatalf("Anneal: %v", err)
	}
	second, err := Anneal(chainedOr(), coolConfig(7))
	if err != nil {
		t.Fatalf("Anneal: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("Same seed must reproduce identical discoveries")
	}
}

func TestAnnealTraceMonotonicImprovement(t *testing.T) {
	cfg := coolConfig(3)
	cfg.Trace = true

	results, err := Anneal(chainedOr(), cfg)
	if err != nil {
		t.Fatalf("Anneal: %v", err)
	}

	history := BestEnergyHistory(results)
	lastSweep := -1
	for i := 1; i < len(history); i++ {
		if history[i] > history[i-1] {
			t.Fatalf("Best energy increased at discovery %d: %f -> %f", i, history[i-1], history[i])
		}
	}
	for _, r := range results {
		if r.Sweep < lastSweep {
			t.Fatalf("Discovery sweeps out of order: %d after %d", r.Sweep, lastSweep)
		}
		lastSweep = r.Sweep
	}
}

func TestAnnealDistinctTies(t *testing.T) {
	cfg := coolConfig(11)
	results, err := Anneal(chainedOr(), cfg)
	if err != nil {
		t.Fatalf("Anneal: %v", err)
	}

	seen := map[string]bool{}
	for _, r := range results {
		key := ising.BitStateFrom(r.State).Key()
		if seen[key] {
			t.Errorf("Configuration reported twice: %v", r.State)
		}
		seen[key] = true
	}
}

func TestAnnealConfigValidation(t *testing.T) {
	base := DefaultAnnealConfig()

	cases := []struct {
		name   string
		mutate func(*AnnealConfig)
	}{
		{"final above initial", func(c *AnnealConfig) { c.FinalTemperature = c.InitialTemperature + 1 }},
		{"zero sweeps", func(c *AnnealConfig) { c.SweepsPerStep = 0 }},
		{"zero steps", func(c *AnnealConfig) { c.TemperatureSteps = 0 }},
		{"negative initial", func(c *AnnealConfig) { c.InitialTemperature = -1 }},
		{"negative patience", func(c *AnnealConfig) { c.Patience = -2 }},
	}
	for _, tc := range cases {
		cfg := base
		tc.mutate(&cfg)
		_, err := Anneal(chainedOr(), cfg)
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("%s: expected ConfigError, got %v", tc.name, err)
		}
	}
}

func TestAnnealNoSpins(t *testing.T) {
	if _, err := Anneal(&ising.Hamiltonian{}, DefaultAnnealConfig()); !errors.Is(err, ErrNoSpins) {
		t.Errorf("Expected ErrNoSpins, got %v", err)
	}
}

func TestAnnealProgressCallback(t *testing.T) {
	cfg := coolConfig(5)
	cfg.TemperatureSteps = 50

	var calls int
	lastBest := math.Inf(1)
	cfg.Progress = func(sweep int, best float64, state ising.State) {
		calls++
		if best > lastBest+ising.Epsilon {
			t.Errorf("Best energy regressed in progress callback: %f -> %f", lastBest, best)
		}
		if len(state) != 6 {
			t.Errorf("Expected a 6-spin best state, got %d spins", len(state))
		}
		lastBest = best
	}

	if _, err := Anneal(chainedOr(), cfg); err != nil {
		t.Fatalf("Anneal: %v", err)
	}
	if calls != 50 {
		t.Errorf("Expected 50 progress calls, got %d", calls)
	}
}

func TestAnnealPatienceStopsEarly(t *testing.T) {
	cfg := coolConfig(5)
	cfg.TemperatureSteps = 100000
	cfg.Patience = 20

	var calls int
	cfg.Progress = func(int, float64, ising.State) { calls++ }

	if _, err := Anneal(chainedOr(), cfg); err != nil {
		t.Fatalf("Anneal: %v", err)
	}
	if calls == 100000 {
		t.Error("Expected early stop well before the full schedule")
	}
}

func TestAnnealResumesFromInitialState(t *testing.T) {
	h := chainedOr()
	cfg := coolConfig(9)
	cfg.Initial = ising.State{true, true, true, true, true, true}
	cfg.TemperatureSteps = 10

	results, err := Anneal(h, cfg)
	if err != nil {
		t.Fatalf("Anneal: %v", err)
	}
	// The all-up configuration is itself a ground state of the chained OR,
	// so the first discovery is recorded at sweep zero.
	if results[0].Sweep != 0 {
		t.Errorf("Expected first discovery at sweep 0, got %d", results[0].Sweep)
	}
}
