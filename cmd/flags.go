package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/fleetgrid/evsched/app"
	"github.com/fleetgrid/evsched/core/coordinator"
	"github.com/fleetgrid/evsched/core/model"
)

var (
	siteID              string
	startTimeStr        string
	windowHours         int
	allocationWeight    float64
	schedulingWeight    float64
	targetSoC           float64
	siteCapacity        float64
	allocationTimeLimit time.Duration
	schedulingTimeLimit time.Duration
	modeFlag            string
)

// addRunFlags registers the driver-surface flags shared by every
// subcommand.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&siteID, "site-id", "", "site identifier (required)")
	cmd.Flags().StringVar(&startTimeStr, "start-time", "", "run start time, RFC3339 (default: now)")
	cmd.Flags().IntVar(&windowHours, "window-hours", 0, "planning horizon in hours (default from site config)")
	cmd.Flags().Float64Var(&allocationWeight, "allocation-weight", 1.0, "alpha weight on the allocation term")
	cmd.Flags().Float64Var(&schedulingWeight, "scheduling-weight", 1.0, "beta weight on the scheduling term")
	cmd.Flags().Float64Var(&targetSoC, "target-soc", 0, "target state of charge percent (default from site config)")
	cmd.Flags().Float64Var(&siteCapacity, "site-capacity", 0, "site charging capacity in kW (default from site config)")
	cmd.Flags().DurationVar(&allocationTimeLimit, "allocation-time-limit", 30*time.Second, "allocation solver time limit")
	cmd.Flags().DurationVar(&schedulingTimeLimit, "scheduling-time-limit", 300*time.Second, "charge solver time limit")
	_ = cmd.MarkFlagRequired("site-id")
}

// runParamsFromFlags validates and assembles app.RunParams for mode, or
// returns a *model.RunError classified ConfigError on invalid input (spec
// §6.4 exit code 1).
func runParamsFromFlags(mode coordinator.Mode) (app.RunParams, error) {
	if siteID == "" {
		return app.RunParams{}, model.NewRunError(model.KindConfigError, "site-id is required")
	}
	start := time.Now().UTC()
	if startTimeStr != "" {
		t, err := time.Parse(time.RFC3339, startTimeStr)
		if err != nil {
			return app.RunParams{}, model.NewRunError(model.KindConfigError, "invalid --start-time: %w", err)
		}
		start = t
	}
	return app.RunParams{
		SiteID:              siteID,
		StartTime:           start,
		WindowHours:         windowHours,
		Mode:                mode,
		AllocationWeight:    allocationWeight,
		SchedulingWeight:    schedulingWeight,
		TargetSoCPercent:    targetSoC,
		SiteCapacityKW:      siteCapacity,
		AllocationTimeLimit: allocationTimeLimit,
		SchedulingTimeLimit: schedulingTimeLimit,
	}, nil
}

func parseMode(s string) (coordinator.Mode, error) {
	switch coordinator.Mode(s) {
	case coordinator.AllocationOnly, coordinator.SchedulingOnly, coordinator.Integrated:
		return coordinator.Mode(s), nil
	default:
		return "", model.NewRunError(model.KindConfigError, "invalid --mode %q", s)
	}
}

// exitCodeFor maps a run error to the driver-surface exit code.
func exitCodeFor(err error) int {
	return app.ExitCode(err)
}
