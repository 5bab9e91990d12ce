package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "evsched",
	Short:         "EV fleet allocation and charge-scheduling optimization core",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	addRunFlags(allocationCmd)
	addRunFlags(schedulingCmd)
	addRunFlags(unifiedCmd)
	unifiedCmd.Flags().StringVar(&modeFlag, "mode", "integrated", "one of allocation_only, scheduling_only, integrated")

	rootCmd.AddCommand(allocationCmd)
	rootCmd.AddCommand(schedulingCmd)
	rootCmd.AddCommand(unifiedCmd)
}

// Execute runs the CLI and exits the process with the exit code:
// 0 success (possibly a degraded fallback), 1 invalid arguments, 2 no
// feasible result, 3 external dependency failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
