package solve

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"

	"github.com/emirpasic/gods/sets/linkedhashset"

	"github.com/brurucy/ernst/internal/ising"
)

// AnnealConfig parameterizes a simulated annealing run.
//
// The temperature decays geometrically from InitialTemperature to
// FinalTemperature over TemperatureSteps steps; at each step the solver
// performs SweepsPerStep sweeps, and one sweep proposes a flip for every
// spin in fixed index order.
type AnnealConfig struct {
	InitialTemperature float64 `json:"initialTemperature"`
	FinalTemperature   float64 `json:"finalTemperature"`
	SweepsPerStep      int     `json:"sweepsPerStep"`
	TemperatureSteps   int     `json:"temperatureSteps"`

	// Seed makes the run reproducible. When nil, a seed is drawn from a
	// non-deterministic source.
	Seed *int64 `json:"seed,omitempty"`

	// Trace keeps every new-best discovery instead of only the final
	// lowest-energy tie set.
	Trace bool `json:"trace,omitempty"`

	// Patience stops the run early after this many temperature steps
	// without a meaningful improvement of the best energy. Zero disables
	// early stopping.
	Patience int `json:"patience,omitempty"`

	// Initial sets the starting configuration; nil means all spins down.
	Initial ising.State `json:"-"`

	// Progress, when set, is invoked after every temperature step with the
	// number of completed sweeps and the best energy and state seen so
	// far. The state is shared; callers must not mutate it.
	Progress func(sweep int, bestEnergy float64, bestState ising.State) `json:"-"`
}

// DefaultAnnealConfig mirrors the historical defaults: a hot start at
// 273.15 cooling to 0.015 over 1000 steps, seeded for reproducibility.
func DefaultAnnealConfig() AnnealConfig {
	seed := int64(42)
	return AnnealConfig{
		InitialTemperature: 273.15,
		FinalTemperature:   0.015,
		SweepsPerStep:      1,
		TemperatureSteps:   1000,
		Seed:               &seed,
	}
}

// TotalSweeps returns the sweep budget of the configured schedule.
func (c *AnnealConfig) TotalSweeps() int {
	return c.SweepsPerStep * c.TemperatureSteps
}

// Validate rejects schedules that cannot anneal: non-positive budgets or
// a final temperature that does not sit strictly below the initial one.
func (c *AnnealConfig) Validate() error {
	if c.InitialTemperature <= 0 {
		return &ConfigError{Field: "InitialTemperature", Reason: "must be positive"}
	}
	if c.FinalTemperature <= 0 {
		return &ConfigError{Field: "FinalTemperature", Reason: "must be positive"}
	}
	if c.FinalTemperature >= c.InitialTemperature {
		return &ConfigError{Field: "FinalTemperature", Reason: "must be below InitialTemperature"}
	}
	if c.SweepsPerStep <= 0 {
		return &ConfigError{Field: "SweepsPerStep", Reason: "must be positive"}
	}
	if c.TemperatureSteps <= 0 {
		return &ConfigError{Field: "TemperatureSteps", Reason: "must be positive"}
	}
	if c.Patience < 0 {
		return &ConfigError{Field: "Patience", Reason: "cannot be negative"}
	}
	return nil
}

// ConfigError reports an invalid annealing parameter.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid annealing config: %s %s", e.Field, e.Reason)
}

// AnnealResult is a low-energy discovery tagged with the sweep at which
// it was first observed.
type AnnealResult struct {
	Energy float64     `json:"energy"`
	State  ising.State `json:"state"`
	Sweep  int         `json:"sweep"`
}

// Anneal runs a Metropolis search over the Hamiltonian and returns the
// best-energy discoveries in the order they occurred. A flip with
// non-positive delta is always accepted; an uphill flip is accepted with
// probability exp(-delta/T). Distinct configurations tied with the best
// energy (within ising.Epsilon) are all reported.
func Anneal(h *ising.Hamiltonian, cfg AnnealConfig) ([]AnnealResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := h.Spins()
	if n == 0 {
		return nil, ErrNoSpins
	}
	eng, err := ising.NewEngine(h, cfg.Initial)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seedOf(cfg.Seed)))
	cooling := math.Pow(cfg.FinalTemperature/cfg.InitialTemperature, 1/float64(cfg.TemperatureSteps))
	temperature := cfg.InitialTemperature

	best := eng.Energy()
	seen := linkedhashset.New(eng.Bits().Key())
	results := []AnnealResult{{Energy: best, State: eng.State(), Sweep: 0}}

	tracker := newImprovementTracker(cfg.Patience, best)

	sweep := 0
	for step := 0; step < cfg.TemperatureSteps; step++ {
		for pass := 0; pass < cfg.SweepsPerStep; pass++ {
			sweep++
			for i := 0; i < n; i++ {
				delta := eng.ProposeFlip(i)
				if delta > 0 && rng.Float64() >= math.Exp(-delta/temperature) {
					continue
				}
				eng.CommitFlip(i)

				energy := eng.Energy()
				if energy < best-ising.Epsilon {
					best = energy
					if !cfg.Trace {
						results = results[:0]
						seen.Clear()
					}
					seen.Add(eng.Bits().Key())
					results = append(results, AnnealResult{Energy: energy, State: eng.State(), Sweep: sweep})
				} else if math.Abs(energy-best) <= ising.Epsilon {
					if key := eng.Bits().Key(); !seen.Contains(key) {
						seen.Add(key)
						results = append(results, AnnealResult{Energy: energy, State: eng.State(), Sweep: sweep})
					}
				}
			}
		}
		if cfg.Progress != nil {
			cfg.Progress(sweep, best, results[len(results)-1].State)
		}
		if tracker.stalled(best) {
			break
		}
		temperature *= cooling
	}

	return results, nil
}

// seedOf resolves an optional seed, drawing from crypto/rand when the
// caller did not pin one.
func seedOf(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// An exhausted entropy source leaves nothing sensible to do.
		panic(fmt.Sprintf("reading random seed: %v", err))
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}
