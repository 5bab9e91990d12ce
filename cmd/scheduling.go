package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fleetgrid/evsched/core/coordinator"
)

var schedulingCmd = &cobra.Command{
	Use:   "scheduling",
	Short: "Run the Charge Optimizer only",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCoordinator(cmd, coordinator.SchedulingOnly)
	},
}
