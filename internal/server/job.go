package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/brurucy/ernst/internal/ising"
	"github.com/brurucy/ernst/internal/solve"
	"github.com/brurucy/ernst/internal/store"
	"github.com/google/uuid"
)

// JobState represents the current state of a job
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
	StateCancelled JobState = "cancelled"
)

// JobConfig is an alias to avoid duplication with store.JobConfig
type JobConfig = store.JobConfig

// Job represents an annealing job
type Job struct {
	ID            string               `json:"id"`
	State         JobState             `json:"state"`
	Config        JobConfig            `json:"config"`
	BestState     ising.State          `json:"bestState,omitempty"`
	BestEnergy    float64              `json:"bestEnergy"`
	InitialEnergy float64              `json:"initialEnergy"`
	Sweeps        int                  `json:"sweeps"`
	Results       []solve.AnnealResult `json:"results,omitempty"`
	StartTime     time.Time            `json:"startTime"`
	EndTime       *time.Time           `json:"endTime,omitempty"`
	Error         string               `json:"error,omitempty"`
}

// JobManager manages the lifecycle of jobs. Accessors hand out copies
// of the stored jobs: the worker mutates them through UpdateJob while
// handlers encode them outside the lock, so sharing pointers would
// race. Slice fields are only ever replaced wholesale, never mutated
// in place, which makes a shallow copy safe.
type JobManager struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	broadcaster *EventBroadcaster
}

// NewJobManager creates a new JobManager
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:        make(map[string]*Job),
		broadcaster: NewEventBroadcaster(),
	}
}

// CreateJob creates a new job with the given configuration
func (jm *JobManager) CreateJob(config JobConfig) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    config,
		StartTime: time.Now(),
	}

	jm.jobs[job.ID] = job

	snapshot := *job
	return &snapshot
}

// GetJob retrieves a copy of a job by ID
func (jm *JobManager) GetJob(id string) (*Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[id]
	if !exists {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

// ListJobs returns copies of all jobs
func (jm *JobManager) ListJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]*Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		snapshot := *job
		jobs = append(jobs, &snapshot)
	}
	return jobs
}

// UpdateJob atomically updates a job using the provided function
func (jm *JobManager) UpdateJob(id string, updateFn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}

	updateFn(job)
	return nil
}

// GetRunningJobs returns copies of all jobs currently in the running state
func (jm *JobManager) GetRunningJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	runningJobs := make([]*Job, 0)
	for _, job := range jm.jobs {
		if job.State == StateRunning {
			snapshot := *job
			runningJobs = append(runningJobs, &snapshot)
		}
	}
	return runningJobs
}
