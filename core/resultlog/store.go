// Package resultlog persists allocation and charge run outcomes to an
// append-only JSONL log, queryable by time range and site.
package resultlog

import (
	"context"
	"time"

	"github.com/fleetgrid/evsched/core/model"
)

// Record captures one run's inputs and outputs for later inspection.
type Record struct {
	Timestamp        time.Time              `json:"timestamp"`
	RunID            string                 `json:"run_id"`
	SiteID           string                 `json:"site_id"`
	Mode             string                 `json:"mode"`
	AllocationResult *model.AllocationResult `json:"allocation_result,omitempty"`
	ChargePlan       *model.ChargePlan       `json:"charge_plan,omitempty"`
	ObjectiveValue   float64                `json:"objective_value"`
}

// Query filters records by time range and site.
type Query struct {
	Start  time.Time
	End    time.Time
	SiteID string
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
