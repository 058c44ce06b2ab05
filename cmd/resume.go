package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/brurucy/ernst/internal/solve"
	"github.com/brurucy/ernst/internal/store"
	"github.com/spf13/cobra"
)

var (
	resumeDataDir     string
	resumeBadger      bool
	resumeInitialTemp float64
	resumeFinalTemp   float64
	resumeSteps       int
	resumeSweeps      int
	resumeSeed        int64
	resumePatience    int
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume annealing from a checkpoint",
	Long: `Loads a job's checkpoint and continues annealing from its best state.
The schedule restarts from the initial temperature (the random walk is
not replayed), but the best energy never regresses and sweep counts
accumulate across runs. Schedule flags override the stored schedule.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for checkpoint storage")
	resumeCmd.Flags().BoolVar(&resumeBadger, "badger", false, "Read checkpoints from an embedded Badger database")
	resumeCmd.Flags().Float64Var(&resumeInitialTemp, "initial-temp", 0, "Override initial temperature")
	resumeCmd.Flags().Float64Var(&resumeFinalTemp, "final-temp", 0, "Override final temperature")
	resumeCmd.Flags().IntVar(&resumeSteps, "steps", 0, "Override temperature steps")
	resumeCmd.Flags().IntVar(&resumeSweeps, "sweeps", 0, "Override sweeps per temperature step")
	resumeCmd.Flags().Int64Var(&resumeSeed, "seed", 0, "Override random seed")
	resumeCmd.Flags().IntVar(&resumePatience, "patience", 0, "Override patience")

	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	checkpointStore, err := openStore(resumeDataDir, resumeBadger)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint store: %w", err)
	}
	defer checkpointStore.Close()

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("checkpoint is corrupt: %w", err)
	}

	// Apply schedule overrides on top of the stored configuration. The
	// problem itself is taken from the checkpoint and cannot change.
	config := checkpoint.Config
	if cmd.Flags().Changed("initial-temp") {
		config.Anneal.InitialTemperature = resumeInitialTemp
	}
	if cmd.Flags().Changed("final-temp") {
		config.Anneal.FinalTemperature = resumeFinalTemp
	}
	if cmd.Flags().Changed("steps") {
		config.Anneal.TemperatureSteps = resumeSteps
	}
	if cmd.Flags().Changed("sweeps") {
		config.Anneal.SweepsPerStep = resumeSweeps
	}
	if cmd.Flags().Changed("seed") {
		seed := resumeSeed
		config.Anneal.Seed = &seed
	}
	if cmd.Flags().Changed("patience") {
		config.Anneal.Patience = resumePatience
	}

	if err := checkpoint.IsCompatible(config); err != nil {
		return fmt.Errorf("checkpoint is incompatible with the requested run: %w", err)
	}
	if err := config.Anneal.Validate(); err != nil {
		return err
	}

	slog.Info("Resuming job",
		"job_id", jobID,
		"spins", config.Problem.Spins(),
		"checkpoint_sweep", checkpoint.Sweep,
		"checkpoint_energy", checkpoint.BestEnergy,
	)

	cfg := config.Anneal
	cfg.Initial = checkpoint.BestState

	start := time.Now()
	results, err := solve.Anneal(&config.Problem, cfg)
	if err != nil {
		return fmt.Errorf("annealing failed: %w", err)
	}
	elapsed := time.Since(start)

	best := results[len(results)-1]
	totalSweep := checkpoint.Sweep + cfg.TotalSweeps()

	slog.Info("Resume complete",
		"job_id", jobID,
		"elapsed", elapsed,
		"previous_best", checkpoint.BestEnergy,
		"best_energy", best.Energy,
		"total_sweeps", totalSweep,
	)

	// Starting from the stored best state, the walk can only hold or
	// improve the best energy.
	updated := store.NewCheckpoint(jobID, best.State, best.Energy, checkpoint.InitialEnergy, totalSweep, config)
	if err := checkpointStore.SaveCheckpoint(jobID, updated); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	if err := appendResumeTrace(resumeDataDir, jobID, checkpoint.Sweep, results); err != nil {
		slog.Warn("Failed to append trace", "job_id", jobID, "error", err)
	}

	fmt.Printf("Energy %.2f -> %.2f at sweep %d (total)\n", checkpoint.BestEnergy, best.Energy, totalSweep)
	for _, r := range results {
		fmt.Printf("  sweep %6d  %.6f  %s\n", checkpoint.Sweep+r.Sweep, r.Energy, formatSpins(r.State))
	}

	return nil
}

// appendResumeTrace extends the job's trace with this run's discoveries,
// shifting sweep numbers so they continue the original run's count.
func appendResumeTrace(dataDir, jobID string, sweepOffset int, results []solve.AnnealResult) error {
	writer, err := store.NewTraceWriter(dataDir, jobID, true)
	if err != nil {
		return err
	}
	defer writer.Close()

	now := time.Now()
	for _, r := range results {
		entry := store.TraceEntry{
			Sweep:     sweepOffset + r.Sweep,
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
