package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fleetgrid/evsched/core/coordinator"
)

var allocationCmd = &cobra.Command{
	Use:   "allocation",
	Short: "Run the Allocation Optimizer only",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCoordinator(cmd, coordinator.AllocationOnly)
	},
}
