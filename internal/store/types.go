package store

import (
	"time"

	"github.com/rob-mau/hippopt/internal/nd"
)

// RunConfig holds the configuration a run was solved with.
type RunConfig struct {
	Problem string  `json:"problem"` // e.g. "pointmass-reach"
	Knots   int     `json:"knots,omitempty"`
	DT      float64 `json:"dt,omitempty"`
	Iters   int     `json:"iters"`
	PopSize int     `json:"popSize"`
	Seed    int64   `json:"seed"`
}

// RunRecord is a persisted solved run: the cost, the flattened solution
// leaves, and enough configuration to reproduce it. The record stores
// the leaf values keyed by tree path (e.g. "knots[2].position"); the
// tree itself is an in-process structure and is not serialized.
type RunRecord struct {
	// RunID is the unique identifier for this run
	RunID string `json:"runId"`

	// Cost is the objective value at the solution
	Cost float64 `json:"cost"`

	// Iterations is the number of best-cost improvements recorded
	// during the solve (the trace length)
	Iterations int `json:"iterations"`

	// Elapsed is the wall-clock duration of the solve in nanoseconds
	Elapsed time.Duration `json:"elapsed"`

	// Timestamp records when the run completed
	Timestamp time.Time `json:"timestamp"`

	// Leaves maps solution-tree paths to their solved values
	Leaves map[string]*nd.Array `json:"leaves"`

	// Config holds the run configuration
	Config RunConfig `json:"config"`
}

// RunInfo contains metadata about a run without the leaf data.
// Used for listing runs without loading full solution values.
type RunInfo struct {
	RunID     string    `json:"runId"`
	Problem   string    `json:"problem"`
	Cost      float64   `json:"cost"`
	Leaves    int       `json:"leaves"`
	Timestamp time.Time `json:"timestamp"`
}

// ToInfo converts a full RunRecord to RunInfo (metadata only).
func (r *RunRecord) ToInfo() RunInfo {
	return RunInfo{
		RunID:     r.RunID,
		Problem:   r.Config.Problem,
		Cost:      r.Cost,
		Leaves:    len(r.Leaves),
		Timestamp: r.Timestamp,
	}
}

// Validate checks that the record has valid data.
func (r *RunRecord) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if r.Config.Problem == "" {
		return &ValidationError{Field: "Config.Problem", Reason: "cannot be empty"}
	}
	for path, value := range r.Leaves {
		if value == nil || len(value.Dims) == 0 {
			return &ValidationError{Field: "Leaves[" + path + "]", Reason: "cannot be empty"}
		}
	}
	return nil
}

// ValidationError represents a run record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
