package solve

import (
	"log/slog"
	"math"
)

// improvementThreshold is the smallest energy drop that counts as
// progress when early stopping is enabled.
const improvementThreshold = 1e-6

// improvementTracker watches the best energy across temperature steps and
// flags convergence once no meaningful drop has happened for a configured
// number of steps (the patience). A patience of zero never stalls.
type improvementTracker struct {
	patience   int
	lastBest   float64
	staleSteps int
}

func newImprovementTracker(patience int, initial float64) *improvementTracker {
	return &improvementTracker{patience: patience, lastBest: initial}
}

// stalled records the best energy after a temperature step and reports
// whether the run should stop early.
func (t *improvementTracker) stalled(best float64) bool {
	if t.patience <= 0 {
		return false
	}
	if t.lastBest-best > improvementThreshold {
		t.lastBest = best
		t.staleSteps = 0
		return false
	}
	t.staleSteps++
	if t.staleSteps >= t.patience {
		slog.Debug("Annealing converged early",
			"stale_steps", t.staleSteps,
			"best_energy", best,
		)
		return true
	}
	return false
}

// BestEnergyHistory extracts the non-increasing best-energy sequence from
// an ordered discovery list, useful for convergence plots.
func BestEnergyHistory(results []AnnealResult) []float64 {
	history := make([]float64, 0, len(results))
	best := math.Inf(1)
	for _, r := range results {
		if r.Energy < best {
			best = r.Energy
		}
		history = append(history, best)
	}
	return history
}
