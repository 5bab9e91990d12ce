package cmd

import (
	"github.com/spf13/cobra"
)

var unifiedCmd = &cobra.Command{
	Use:   "unified",
	Short: "Run the Unified Coordinator in the mode named by --mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := parseMode(modeFlag)
		if err != nil {
			return err
		}
		return runCoordinator(cmd, mode)
	},
}
