package store

import (
	"fmt"
	"time"

	"github.com/brurucy/ernst/internal/ising"
	"github.com/brurucy/ernst/internal/solve"
)

// JobConfig holds everything needed to re-run an annealing job: the
// problem itself and the schedule. It lives in this package (rather
// than server) to avoid import cycles.
type JobConfig struct {
	Problem ising.Hamiltonian  `json:"problem"`
	Anneal  solve.AnnealConfig `json:"anneal"`

	// CheckpointInterval is how often (in seconds) the running job
	// persists its best state. 0 disables periodic checkpointing.
	CheckpointInterval int `json:"checkpointInterval,omitempty"`
}

// Checkpoint represents a saved annealing state that can be resumed later.
// All fields are serialized to JSON for persistence.
//
// The checkpoint saves the BEST STATE found so far, but does NOT save the
// random generator state or the current (non-best) walker position. On
// resume the annealer restarts its schedule from the checkpointed best
// state, so:
//
//   - The best energy never gets worse across a resume.
//   - A resumed run is not a bit-for-bit continuation of the interrupted
//     one; the temperature ladder restarts and the walk diverges.
//   - Sweep counts accumulate across resumes for reporting only.
//
// Persisting the generator would tie the format to a specific RNG and
// still not make resumes exact once the schedule restarts, so it is
// deliberately left out.
type Checkpoint struct {
	// JobID is the unique identifier for this annealing job.
	JobID string `json:"jobId"`

	// BestState is the lowest-energy spin assignment seen so far.
	BestState ising.State `json:"bestState"`

	// BestEnergy is the energy of BestState.
	BestEnergy float64 `json:"bestEnergy"`

	// InitialEnergy is the energy of the job's starting state, kept for
	// improvement tracking.
	InitialEnergy float64 `json:"initialEnergy"`

	// Sweep is the number of completed sweeps when this checkpoint was
	// created, accumulated across resumes.
	Sweep int `json:"sweep"`

	// Timestamp records when this checkpoint was created.
	Timestamp time.Time `json:"timestamp"`

	// Config holds the job configuration, needed for validation during
	// resume: a checkpoint is only resumable against the same problem.
	Config JobConfig `json:"config"`
}

// CheckpointInfo contains metadata about a checkpoint without the full
// state vector. Used for listing checkpoints efficiently.
type CheckpointInfo struct {
	JobID       string    `json:"jobId"`
	BestEnergy  float64   `json:"bestEnergy"`
	Sweep       int       `json:"sweep"`
	Timestamp   time.Time `json:"timestamp"`
	Spins       int       `json:"spins"`
	Couplings   int       `json:"couplings"`
	TotalSweeps int       `json:"totalSweeps"`
}

// NewCheckpoint creates a checkpoint from job state.
func NewCheckpoint(jobID string, bestState ising.State, bestEnergy, initialEnergy float64, sweep int, config JobConfig) *Checkpoint {
	return &Checkpoint{
		JobID:         jobID,
		BestState:     bestState,
		BestEnergy:    bestEnergy,
		InitialEnergy: initialEnergy,
		Sweep:         sweep,
		Timestamp:     time.Now(),
		Config:        config,
	}
}

// ToInfo converts a full Checkpoint to CheckpointInfo (metadata only).
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:       c.JobID,
		BestEnergy:  c.BestEnergy,
		Sweep:       c.Sweep,
		Timestamp:   c.Timestamp,
		Spins:       c.Config.Problem.Spins(),
		Couplings:   len(c.Config.Problem.Couplings),
		TotalSweeps: c.Config.Anneal.TotalSweeps(),
	}
}

// Validate checks if the checkpoint has valid data.
// Returns an error if any required field is missing or invalid.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if len(c.BestState) == 0 {
		return &ValidationError{Field: "BestState", Reason: "cannot be empty"}
	}
	if c.Sweep < 0 {
		return &ValidationError{Field: "Sweep", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if err := c.Config.Problem.Validate(); err != nil {
		return &ValidationError{Field: "Config.Problem", Reason: err.Error()}
	}
	if err := c.Config.Anneal.Validate(); err != nil {
		return &ValidationError{Field: "Config.Anneal", Reason: err.Error()}
	}
	if len(c.BestState) != c.Config.Problem.Spins() {
		return &ValidationError{
			Field:  "BestState",
			Reason: fmt.Sprintf("length mismatch: %d spins saved for a %d-spin problem", len(c.BestState), c.Config.Problem.Spins()),
		}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks if this checkpoint can be resumed with the given
// config. The problem must be structurally identical; the schedule may
// differ (a resume is allowed to cool differently).
func (c *Checkpoint) IsCompatible(config JobConfig) error {
	if c.Config.Problem.Spins() != config.Problem.Spins() {
		return &CompatibilityError{
			Field:    "Problem.Spins",
			Expected: fmt.Sprintf("%d", c.Config.Problem.Spins()),
			Actual:   fmt.Sprintf("%d", config.Problem.Spins()),
		}
	}
	if len(c.Config.Problem.Couplings) != len(config.Problem.Couplings) {
		return &CompatibilityError{
			Field:    "Problem.Couplings",
			Expected: fmt.Sprintf("%d", len(c.Config.Problem.Couplings)),
			Actual:   fmt.Sprintf("%d", len(config.Problem.Couplings)),
		}
	}
	for i, coupling := range c.Config.Problem.Couplings {
		if config.Problem.Couplings[i] != coupling {
			return &CompatibilityError{
				Field:    fmt.Sprintf("Problem.Couplings[%d]", i),
				Expected: fmt.Sprintf("%+v", coupling),
				Actual:   fmt.Sprintf("%+v", config.Problem.Couplings[i]),
			}
		}
	}
	for i, bias := range c.Config.Problem.Biases {
		if config.Problem.Biases[i] != bias {
			return &CompatibilityError{
				Field:    fmt.Sprintf("Problem.Biases[%d]", i),
				Expected: fmt.Sprintf("%g", bias),
				Actual:   fmt.Sprintf("%g", config.Problem.Biases[i]),
			}
		}
	}
	return nil
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
