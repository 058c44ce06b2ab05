package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/brurucy/ernst/internal/ising"
	"github.com/brurucy/ernst/internal/solve"
)

// testProblem is the three-spin system used throughout this package's
// tests: all-down is its unique ground state at energy -8.
func testProblem() ising.Hamiltonian {
	return ising.Hamiltonian{
		Biases: []float64{-1.0, -1.0, -3.0},
		Couplings: []ising.Coupling{
			{I: 0, J: 1, Strength: -1.0},
			{I: 1, J: 2, Strength: 2.0},
			{I: 0, J: 2, Strength: 2.0},
		},
	}
}

func testJobConfig() JobConfig {
	return JobConfig{
		Problem: testProblem(),
		Anneal:  solve.DefaultAnnealConfig(),
	}
}

func TestCheckpoint_JSONSerialization(t *testing.T) {
	original := &Checkpoint{
		JobID:         "test-job-123",
		BestState:     ising.State{false, false, false},
		BestEnergy:    -8.0,
		InitialEnergy: 0.0,
		Sweep:         500,
		Timestamp:     time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC),
		Config:        testJobConfig(),
	}

	// Serialize to JSON
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Failed to marshal checkpoint: %v", err)
	}

	// Deserialize from JSON
	var restored Checkpoint
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Failed to unmarshal checkpoint: %v", err)
	}

	// Verify all fields match
	if restored.JobID != original.JobID {
		t.Errorf("JobID mismatch: expected %s, got %s", original.JobID, restored.JobID)
	}
	if restored.BestEnergy != original.BestEnergy {
		t.Errorf("BestEnergy mismatch: expected %f, got %f", original.BestEnergy, restored.BestEnergy)
	}
	if restored.InitialEnergy != original.InitialEnergy {
		t.Errorf("InitialEnergy mismatch: expected %f, got %f", original.InitialEnergy, restored.InitialEnergy)
	}
	if restored.Sweep != original.Sweep {
		t.Errorf("Sweep mismatch: expected %d, got %d", original.Sweep, restored.Sweep)
	}
	if !restored.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp mismatch: expected %v, got %v", original.Timestamp, restored.Timestamp)
	}
	if len(restored.BestState) != len(original.BestState) {
		t.Fatalf("BestState length mismatch: expected %d, got %d", len(original.BestState), len(restored.BestState))
	}
	for i := range original.BestState {
		if restored.BestState[i] != original.BestState[i] {
			t.Errorf("BestState[%d] mismatch", i)
		}
	}
	if restored.Config.Problem.Spins() != original.Config.Problem.Spins() {
		t.Errorf("Config.Problem spin count mismatch")
	}
	if len(restored.Config.Problem.Couplings) != len(original.Config.Problem.Couplings) {
		t.Errorf("Config.Problem coupling count mismatch")
	}
	if restored.Config.Anneal.TemperatureSteps != original.Config.Anneal.TemperatureSteps {
		t.Errorf("Config.Anneal.TemperatureSteps mismatch")
	}
}

func TestCheckpoint_JSONIndented(t *testing.T) {
	checkpoint := NewCheckpoint("test-job", ising.State{true, true, false}, -4.0, 0.0, 100, testJobConfig())

	// Serialize with indentation (like FSStore does)
	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal with indent: %v", err)
	}

	var restored Checkpoint
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Failed to unmarshal indented JSON: %v", err)
	}

	if restored.JobID != checkpoint.JobID {
		t.Errorf("JobID mismatch after indented serialization")
	}
}

func TestCheckpoint_Validate_Valid(t *testing.T) {
	checkpoint := NewCheckpoint("valid-job", ising.State{false, false, false}, -8.0, 0.0, 100, testJobConfig())

	if err := checkpoint.Validate(); err != nil {
		t.Errorf("Valid checkpoint should not have validation error: %v", err)
	}
}

func TestCheckpoint_Validate_EmptyJobID(t *testing.T) {
	checkpoint := NewCheckpoint("", ising.State{false, false, false}, -8.0, 0.0, 100, testJobConfig())

	err := checkpoint.Validate()
	if err == nil {
		t.Fatal("Expected validation error for empty JobID")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("Expected ValidationError, got %T", err)
	}
}

func TestCheckpoint_Validate_EmptyBestState(t *testing.T) {
	checkpoint := NewCheckpoint("test", nil, -8.0, 0.0, 100, testJobConfig())

	if err := checkpoint.Validate(); err == nil {
		t.Fatal("Expected validation error for empty BestState")
	}
}

func TestCheckpoint_Validate_StateLengthMismatch(t *testing.T) {
	// Two saved spins for a three-spin problem.
	checkpoint := NewCheckpoint("test", ising.State{false, true}, -8.0, 0.0, 100, testJobConfig())

	if err := checkpoint.Validate(); err == nil {
		t.Fatal("Expected validation error for state length mismatch")
	}
}

func TestCheckpoint_Validate_NegativeSweep(t *testing.T) {
	checkpoint := NewCheckpoint("test", ising.State{false, false, false}, -8.0, 0.0, -10, testJobConfig())

	if err := checkpoint.Validate(); err == nil {
		t.Fatal("Expected validation error for negative sweep")
	}
}

func TestCheckpoint_Validate_ZeroTimestamp(t *testing.T) {
	checkpoint := NewCheckpoint("test", ising.State{false, false, false}, -8.0, 0.0, 100, testJobConfig())
	checkpoint.Timestamp = time.Time{}

	if err := checkpoint.Validate(); err == nil {
		t.Fatal("Expected validation error for zero timestamp")
	}
}

func TestCheckpoint_Validate_InvalidProblem(t *testing.T) {
	config := testJobConfig()
	config.Problem.Couplings = append(config.Problem.Couplings, ising.Coupling{I: 0, J: 9, Strength: 1.0})
	checkpoint := NewCheckpoint("test", ising.State{false, false, false}, -8.0, 0.0, 100, config)

	if err := checkpoint.Validate(); err == nil {
		t.Fatal("Expected validation error for dangling coupling")
	}
}

func TestCheckpoint_Validate_InvalidSchedule(t *testing.T) {
	config := testJobConfig()
	config.Anneal.TemperatureSteps = 0
	checkpoint := NewCheckpoint("test", ising.State{false, false, false}, -8.0, 0.0, 100, config)

	if err := checkpoint.Validate(); err == nil {
		t.Fatal("Expected validation error for zero-step schedule")
	}
}

func TestCheckpoint_IsCompatible_Compatible(t *testing.T) {
	checkpoint := &Checkpoint{Config: testJobConfig()}

	if err := checkpoint.IsCompatible(testJobConfig()); err != nil {
		t.Errorf("Compatible configs should not return error: %v", err)
	}
}

func TestCheckpoint_IsCompatible_ScheduleMayDiffer(t *testing.T) {
	checkpoint := &Checkpoint{Config: testJobConfig()}

	// A resume is allowed to cool on a different schedule.
	config := testJobConfig()
	config.Anneal.TemperatureSteps = 5000
	config.Anneal.InitialTemperature = 10.0

	if err := checkpoint.IsCompatible(config); err != nil {
		t.Errorf("Schedule changes should be compatible: %v", err)
	}
}

func TestCheckpoint_IsCompatible_DifferentSpins(t *testing.T) {
	checkpoint := &Checkpoint{Config: testJobConfig()}

	config := testJobConfig()
	config.Problem.Biases = append(config.Problem.Biases, 1.0)

	err := checkpoint.IsCompatible(config)
	if err == nil {
		t.Fatal("Expected compatibility error for different spin count")
	}
	if _, ok := err.(*CompatibilityError); !ok {
		t.Errorf("Expected CompatibilityError, got %T", err)
	}
}

func TestCheckpoint_IsCompatible_DifferentCoupling(t *testing.T) {
	checkpoint := &Checkpoint{Config: testJobConfig()}

	config := testJobConfig()
	config.Problem.Couplings[1].Strength = -2.0

	if err := checkpoint.IsCompatible(config); err == nil {
		t.Fatal("Expected compatibility error for changed coupling")
	}
}

func TestCheckpoint_IsCompatible_DifferentBias(t *testing.T) {
	checkpoint := &Checkpoint{Config: testJobConfig()}

	config := testJobConfig()
	config.Problem.Biases[2] = 3.0

	if err := checkpoint.IsCompatible(config); err == nil {
		t.Fatal("Expected compatibility error for changed bias")
	}
}

func TestCheckpointInfo_FromCheckpoint(t *testing.T) {
	checkpoint := NewCheckpoint("test-job", ising.State{false, false, false}, -8.0, 0.0, 500, testJobConfig())

	info := checkpoint.ToInfo()

	if info.JobID != checkpoint.JobID {
		t.Errorf("JobID mismatch: expected %s, got %s", checkpoint.JobID, info.JobID)
	}
	if info.BestEnergy != checkpoint.BestEnergy {
		t.Errorf("BestEnergy mismatch: expected %f, got %f", checkpoint.BestEnergy, info.BestEnergy)
	}
	if info.Sweep != checkpoint.Sweep {
		t.Errorf("Sweep mismatch: expected %d, got %d", checkpoint.Sweep, info.Sweep)
	}
	if !info.Timestamp.Equal(checkpoint.Timestamp) {
		t.Errorf("Timestamp mismatch")
	}
	if info.Spins != 3 {
		t.Errorf("Spins mismatch: expected 3, got %d", info.Spins)
	}
	if info.Couplings != 3 {
		t.Errorf("Couplings mismatch: expected 3, got %d", info.Couplings)
	}
	if info.TotalSweeps != checkpoint.Config.Anneal.TotalSweeps() {
		t.Errorf("TotalSweeps mismatch: expected %d, got %d", checkpoint.Config.Anneal.TotalSweeps(), info.TotalSweeps)
	}
}

func TestNewCheckpoint(t *testing.T) {
	checkpoint := NewCheckpoint("test-job", ising.State{true, false, true}, -4.5, 2.0, 500, testJobConfig())

	if checkpoint.JobID != "test-job" {
		t.Errorf("JobID mismatch: got %s", checkpoint.JobID)
	}
	if checkpoint.BestEnergy != -4.5 {
		t.Errorf("BestEnergy mismatch: got %f", checkpoint.BestEnergy)
	}
	if checkpoint.Sweep != 500 {
		t.Errorf("Sweep mismatch: got %d", checkpoint.Sweep)
	}
	if checkpoint.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if len(checkpoint.BestState) != 3 {
		t.Errorf("BestState length mismatch")
	}
}
