package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/brurucy/ernst/internal/solve"
	"github.com/spf13/cobra"
)

var (
	solveProblemPath string
	solveMaxSpins    int
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Find all ground states by exhaustive search",
	Long: `Enumerates every configuration of the problem in Gray-code order and
reports all configurations achieving the minimum energy. Exact but
exponential; refuses systems above the spin ceiling.`,
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVar(&solveProblemPath, "problem", "", "Problem JSON file (required)")
	solveCmd.Flags().IntVar(&solveMaxSpins, "max-spins", solve.MaxExactSpins, "Spin ceiling for exhaustive search")

	solveCmd.MarkFlagRequired("problem")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	problem, err := loadProblem(solveProblemPath)
	if err != nil {
		return err
	}

	slog.Info("Starting exhaustive search", "spins", problem.Spins(), "couplings", len(problem.Couplings))

	start := time.Now()
	results, err := solve.GroundStatesLimited(&problem, solveMaxSpins)
	if err != nil {
		return fmt.Errorf("exhaustive search failed: %w", err)
	}
	elapsed := time.Since(start)

	slog.Info("Search complete",
		"elapsed", elapsed,
		"ground_energy", results[0].Energy,
		"ground_states", len(results),
	)

	fmt.Printf("Ground energy: %.6f (%d state(s), %s)\n", results[0].Energy, len(results), elapsed.Round(time.Millisecond))
	for _, r := range results {
		fmt.Printf("  %s\n", formatSpins(r.State))
	}

	return nil
}
