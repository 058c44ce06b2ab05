package opt

// Optimizer is a continuous black-box minimizer over a bounded box.
type Optimizer interface {
	// Run minimizes eval over the box spanned by lower and upper and
	// returns the best position found together with its cost.
	Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64, error)
}
