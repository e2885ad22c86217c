package main

import (
	"github.com/spf13/cobra"

	"github.com/muneeb-ds/ai-travel-advisor/internal/planner"
)

var refineThreadID string

var refineCmd = &cobra.Command{
	Use:   "refine --thread <id> \"<adjustment>\"",
	Short: "Refine an existing plan conversationally",
	Long: `Refine applies the request as a delta over the thread's current
constraints: only the fields the new message mentions change, everything
else persists. Requires a session backend that outlives the process
(session.backend: sqlite) to refine across CLI invocations.`,
	Example: `  advisor refine --thread 7d8a… "actually make it 4 days"
  advisor refine --thread 7d8a… "keep it under $1500"`,
	Args: cobra.ExactArgs(1),
	RunE: runRefine,
}

func init() {
	refineCmd.Flags().StringVar(&refineThreadID, "thread", "", "thread ID from a prior 'advisor plan'")
	_ = refineCmd.MarkFlagRequired("thread")
}

func runRefine(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.planner.Refine(cmd.Context(), refineThreadID, args[0])
	if err != nil {
		if planner.IsAmbiguous(err) {
			cmd.PrintErrf("Your request is ambiguous: %v\nPlease rephrase and try again.\n", err)
			return nil
		}
		return err
	}

	return renderResult(cmd, result)
}
