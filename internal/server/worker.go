package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brurucy/ernst/internal/ising"
	"github.com/brurucy/ernst/internal/solve"
	"github.com/brurucy/ernst/internal/store"
)

// runJob executes an annealing job in the background.
// If checkpointStore is not nil, the final best state is persisted, and
// jobs with checkpointInterval > 0 also save periodic checkpoints.
// If traceDir is non-empty, the job's discoveries are written to a
// trace.jsonl under it.
func runJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, traceDir, jobID string) error {
	// Get the job
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	// Update state to running
	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	problem := job.Config.Problem
	slog.Info("Starting job", "job_id", jobID, "spins", problem.Spins(), "couplings", len(problem.Couplings))

	if err := problem.Validate(); err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("invalid problem: %w", err))
		return err
	}

	cfg := job.Config.Anneal
	if err := cfg.Validate(); err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("invalid schedule: %w", err))
		return err
	}

	// Seed the job's energy fields from the starting state so progress
	// events are meaningful before the first improvement.
	initial := cfg.Initial
	if initial == nil {
		initial = make(ising.State, problem.Spins())
	}
	initialEnergy, err := problem.Energy(initial)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to evaluate initial state: %w", err))
		return err
	}

	jm.UpdateJob(jobID, func(j *Job) {
		j.InitialEnergy = initialEnergy
		j.BestEnergy = initialEnergy
	})

	// Stream best-so-far into the job as the walk progresses, cloning
	// the state so checkpoints never race the annealer.
	cfg.Progress = func(sweep int, best float64, state ising.State) {
		snapshot := state.Clone()
		jm.UpdateJob(jobID, func(j *Job) {
			j.Sweeps = sweep
			j.BestEnergy = best
			j.BestState = snapshot
		})
	}

	start := time.Now()

	// Check for cancellation before starting expensive operation
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	// Start progress monitoring goroutine
	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, start, progressDone)

	// Start checkpoint monitoring goroutine if enabled. The done channel
	// is closed exactly once after the run, whether or not anyone
	// listens on it.
	checkpointDone := make(chan struct{})
	if checkpointStore != nil && job.Config.CheckpointInterval > 0 {
		go monitorCheckpoints(ctx, jm, checkpointStore, jobID, checkpointDone)
	}

	results, err := solve.Anneal(&problem, cfg)

	close(progressDone)
	close(checkpointDone)
	elapsed := time.Since(start)

	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	// Check for cancellation after the run
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	best := results[len(results)-1]
	totalSweeps := cfg.TotalSweeps()

	// Update job with results
	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Results = results
		j.BestState = best.State
		j.BestEnergy = best.Energy
		j.Sweeps = totalSweeps
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	sps := float64(totalSweeps) / elapsed.Seconds()

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"initial_energy", initialEnergy,
		"best_energy", best.Energy,
		"ground_states", len(results),
		"sweeps_per_second", sps,
	)

	if traceDir != "" {
		if err := writeTrace(traceDir, jobID, results); err != nil {
			slog.Warn("Failed to write trace", "job_id", jobID, "error", err)
		}
	}

	// Persist the final best state so the job can be inspected or
	// resumed after a restart.
	if checkpointStore != nil {
		if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
			slog.Warn("Failed to save final checkpoint", "job_id", jobID, "error", err)
		}
	}

	// Broadcast final completion event
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:        jobID,
		State:        StateCompleted,
		Sweeps:       totalSweeps,
		BestEnergy:   best.Energy,
		SweepsPerSec: sps,
		Timestamp:    time.Now(),
	})

	return nil
}

// monitorProgress periodically broadcasts progress events while the job runs
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, startTime time.Time, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Throttle to 2 updates per second
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Get current job state
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}

			elapsed := time.Since(startTime).Seconds()

			var sps float64
			if elapsed > 0 && job.Sweeps > 0 {
				sps = float64(job.Sweeps) / elapsed
			}

			// Broadcast progress event
			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:        jobID,
				State:        job.State,
				Sweeps:       job.Sweeps,
				BestEnergy:   job.BestEnergy,
				SweepsPerSec: sps,
				Timestamp:    time.Now(),
			})
		}
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}

// monitorCheckpoints periodically saves checkpoints while the job runs
func monitorCheckpoints(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string, done chan struct{}) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return
	}

	interval := time.Duration(job.Config.CheckpointInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
				slog.Error("Failed to save checkpoint", "job_id", jobID, "error", err)
			}
		}
	}
}

// saveCheckpoint saves a checkpoint for the given job
func saveCheckpoint(jm *JobManager, checkpointStore store.Store, jobID string) error {
	// Get current job state
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	// Skip if the annealer has not reported a best state yet.
	if len(job.BestState) == 0 {
		slog.Debug("Skipping checkpoint, no best state yet", "job_id", jobID)
		return nil
	}

	checkpoint := store.NewCheckpoint(
		jobID,
		job.BestState,
		job.BestEnergy,
		job.InitialEnergy,
		job.Sweeps,
		job.Config,
	)

	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved",
		"job_id", jobID,
		"sweep", job.Sweeps,
		"best_energy", job.BestEnergy,
	)

	return nil
}

// writeTrace records the job's discovery history as JSONL.
func writeTrace(traceDir, jobID string, results []solve.AnnealResult) error {
	writer, err := store.NewTraceWriter(traceDir, jobID, false)
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
