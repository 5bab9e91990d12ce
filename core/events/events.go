// Package events defines the domain events published on the internal event
// bus (internal/eventbus) during a run: solver attempts, fallbacks, and
// stage completion, replacing the dispatch-signal events this repo grew
// from.
package events

import "time"

// Stage identifies which pipeline stage an event concerns.
type Stage string

const (
	StageAllocation Stage = "allocation"
	StageCharge     Stage = "charge"
	StageCoordinator Stage = "coordinator"
)

// SolverAttempted is published once for each stage the run's mode includes,
// just before the coordinator runs, whether or not that stage then invokes
// its primary (LP) solver.
type SolverAttempted struct {
	Stage     Stage
	RunID     string
	Timestamp time.Time
}

// SolverFellBack is published when a stage's primary solver failed or timed
// out and the greedy fallback ran instead.
type SolverFellBack struct {
	Stage     Stage
	RunID     string
	Reason    string
	Timestamp time.Time
}

// QualityGateFailed is published when an allocation result's aggregate
// score fell below the configured threshold.
type QualityGateFailed struct {
	RunID     string
	Score     float64
	Threshold float64
	Timestamp time.Time
}

// StageCompleted is published when a stage finishes, successfully or not.
type StageCompleted struct {
	Stage           Stage
	RunID           string
	DurationSeconds float64
	Fallback        bool
	Timestamp       time.Time
}
