package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/flowbaker/agentflow/internal/initialization"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "agentflow",
		Short: "Agentflow workflow orchestrator CLI",
		Long: `Agentflow is a multi-agent workflow orchestrator: it plans a goal into a
DAG of agent nodes, schedules them topologically, and executes each node via a
data-source adapter, a generative-AI call, or both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	container, err := initialization.NewContainer(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(NewRunCommand(container))
	rootCmd.AddCommand(NewPlanCommand(container))
	rootCmd.AddCommand(NewLayoutCommand(container))
	rootCmd.AddCommand(NewServeCommand(container))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
