package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brurucy/ernst/internal/ising"
)

func writeProblemFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "problem.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write problem file: %v", err)
	}
	return path
}

func TestLoadProblem(t *testing.T) {
	path := writeProblemFile(t, `{
		"biases": [-1.0, -1.0, -3.0],
		"couplings": [
			{"i": 0, "j": 1, "strength": -1.0},
			{"i": 1, "j": 2, "strength": 2.0},
			{"i": 0, "j": 2, "strength": 2.0}
		]
	}`)

	h, err := loadProblem(path)
	if err != nil {
		t.Fatalf("loadProblem failed: %v", err)
	}

	if h.Spins() != 3 {
		t.Errorf("Expected 3 spins, got %d", h.Spins())
	}
	if len(h.Couplings) != 3 {
		t.Errorf("Expected 3 couplings, got %d", len(h.Couplings))
	}

	energy, err := h.Energy(ising.State{false, false, false})
	if err != nil {
		t.Fatalf("Energy failed: %v", err)
	}
	if energy != -8.0 {
		t.Errorf("Expected ground energy -8, got %f", energy)
	}
}

func TestLoadProblem_MissingFile(t *testing.T) {
	if _, err := loadProblem(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadProblem_InvalidJSON(t *testing.T) {
	path := writeProblemFile(t, `{"biases": [`)
	if _, err := loadProblem(path); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestLoadProblem_NoSpins(t *testing.T) {
	path := writeProblemFile(t, `{"biases": [], "couplings": []}`)
	if _, err := loadProblem(path); err == nil {
		t.Error("Expected error for a problem with no spins")
	}
}

func TestLoadProblem_DanglingCoupling(t *testing.T) {
	path := writeProblemFile(t, `{
		"biases": [1.0, 1.0],
		"couplings": [{"i": 0, "j": 5, "strength": 1.0}]
	}`)
	if _, err := loadProblem(path); err == nil {
		t.Error("Expected error for a coupling referencing a missing spin")
	}
}

func TestFormatSpins(t *testing.T) {
	got := formatSpins(ising.State{true, false, true, false})
	if got != "+-+-" {
		t.Errorf("formatSpins = %q, expected %q", got, "+-+-")
	}
}
