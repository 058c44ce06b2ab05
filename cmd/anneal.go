package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/brurucy/ernst/internal/ising"
	"github.com/brurucy/ernst/internal/solve"
	"github.com/brurucy/ernst/internal/store"
	"github.com/spf13/cobra"
)

var (
	annealProblemPath string
	annealInitialTemp float64
	annealFinalTemp   float64
	annealSteps       int
	annealSweeps      int
	annealSeed        int64
	annealTrace       bool
	annealPatience    int
	annealDataDir     string
	annealJobID       string
)

var annealCmd = &cobra.Command{
	Use:   "anneal",
	Short: "Search for low-energy states by simulated annealing",
	Long: `Runs a Metropolis walk over the problem under a geometric cooling
schedule and reports the best configurations found. Stochastic but
scales to systems far beyond the reach of exhaustive search.`,
	RunE: runAnneal,
}

func init() {
	defaults := solve.DefaultAnnealConfig()

	annealCmd.Flags().StringVar(&annealProblemPath, "problem", "", "Problem JSON file (required)")
	annealCmd.Flags().Float64Var(&annealInitialTemp, "initial-temp", defaults.InitialTemperature, "Initial temperature")
	annealCmd.Flags().Float64Var(&annealFinalTemp, "final-temp", defaults.FinalTemperature, "Final temperature")
	annealCmd.Flags().IntVar(&annealSteps, "steps", defaults.TemperatureSteps, "Temperature steps")
	annealCmd.Flags().IntVar(&annealSweeps, "sweeps", defaults.SweepsPerStep, "Sweeps per temperature step")
	annealCmd.Flags().Int64Var(&annealSeed, "seed", *defaults.Seed, "Random seed")
	annealCmd.Flags().BoolVar(&annealTrace, "trace", false, "Keep every new-best discovery, not just the final tie set")
	annealCmd.Flags().IntVar(&annealPatience, "patience", 0, "Stop after N steps without improvement (0 = run full schedule)")
	annealCmd.Flags().StringVar(&annealDataDir, "data-dir", "", "Persist checkpoint and trace under this directory")
	annealCmd.Flags().StringVar(&annealJobID, "job-id", "local", "Job ID used for persisted artifacts")

	annealCmd.MarkFlagRequired("problem")
	rootCmd.AddCommand(annealCmd)
}

func runAnneal(cmd *cobra.Command, args []string) error {
	problem, err := loadProblem(annealProblemPath)
	if err != nil {
		return err
	}

	seed := annealSeed
	cfg := solve.AnnealConfig{
		InitialTemperature: annealInitialTemp,
		FinalTemperature:   annealFinalTemp,
		SweepsPerStep:      annealSweeps,
		TemperatureSteps:   annealSteps,
		Seed:               &seed,
		Trace:              annealTrace,
		Patience:           annealPatience,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	slog.Info("Starting annealing",
		"spins", problem.Spins(),
		"couplings", len(problem.Couplings),
		"initial_temp", cfg.InitialTemperature,
		"final_temp", cfg.FinalTemperature,
		"total_sweeps", cfg.TotalSweeps(),
	)

	initial := make(ising.State, problem.Spins())
	initialEnergy, err := problem.Energy(initial)
	if err != nil {
		return fmt.Errorf("failed to evaluate initial state: %w", err)
	}

	start := time.Now()
	results, err := solve.Anneal(&problem, cfg)
	if err != nil {
		return fmt.Errorf("annealing failed: %w", err)
	}
	elapsed := time.Since(start)

	best := results[len(results)-1]
	sps := float64(cfg.TotalSweeps()) / elapsed.Seconds()

	slog.Info("Annealing complete",
		"elapsed", elapsed,
		"initial_energy", initialEnergy,
		"best_energy", best.Energy,
		"discoveries", len(results),
		"sweeps_per_second", fmt.Sprintf("%.0f", sps),
	)

	fmt.Printf("Energy %.2f -> %.2f over %d sweeps (%.0f sweeps/sec)\n", initialEnergy, best.Energy, cfg.TotalSweeps(), sps)
	for _, r := range results {
		fmt.Printf("  sweep %6d  %.6f  %s\n", r.Sweep, r.Energy, formatSpins(r.State))
	}

	if annealDataDir != "" {
		if err := persistRun(annealDataDir, annealJobID, problem, cfg, initialEnergy, results); err != nil {
			return fmt.Errorf("failed to persist run: %w", err)
		}
		fmt.Printf("Persisted checkpoint and trace for job %s under %s\n", annealJobID, annealDataDir)
	}

	return nil
}

// persistRun saves the run's best state as a checkpoint and its discovery
// history as a trace, using the same layout the server writes.
func persistRun(dataDir, jobID string, problem ising.Hamiltonian, cfg solve.AnnealConfig, initialEnergy float64, results []solve.AnnealResult) error {
	checkpointStore, err := store.NewFSStore(dataDir)
	if err != nil {
		return err
	}

	best := results[len(results)-1]
	config := store.JobConfig{Problem: problem, Anneal: cfg}
	checkpoint := store.NewCheckpoint(jobID, best.State, best.Energy, initialEnergy, cfg.TotalSweeps(), config)
	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return err
	}

	writer, err := store.NewTraceWriter(dataDir, jobID, false)
	if err != nil {
		return err
	}
	defer writer.Close()

	now := time.Now()
	for _, r := range results {
		entry := store.TraceEntry{
			Sweep:     r.Sweep,
			Energy:    r.Energy,
			Timestamp: now,
			State:     r.State,
		}
		if err := writer.Write(entry); err != nil {
			return err
		}
	}
	return writer.Flush()
}
