package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/muneeb-ds/ai-travel-advisor/internal/planner"
)

var (
	planThreadID string
	planDeadline time.Duration
)

var planCmd = &cobra.Command{
	Use:   "plan \"<request>\"",
	Short: "Plan a trip from a free-form request",
	Long: `Plan runs one full planning pass: constraint extraction, slot filling
via tool calls, validation, bounded repair, and synthesis. The thread ID it
prints can be passed to 'advisor refine' to adjust the plan conversationally.`,
	Example: `  advisor plan "5 days in Tokyo in mid October, $2000, we love traditional culture"
  advisor plan --deadline 30s "weekend in Kyoto"`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planThreadID, "thread", "", "thread ID to plan under (default: a new one)")
	planCmd.Flags().DurationVar(&planDeadline, "deadline", 0, "override the end-to-end planning deadline")
}

func runPlan(cmd *cobra.Command, args []string) error {
	var opts []planner.Option
	if planDeadline > 0 {
		opts = append(opts, planner.WithOverallDeadline(planDeadline))
	}

	a, err := buildApp(opts...)
	if err != nil {
		return err
	}
	defer a.close()

	threadID := planThreadID
	if threadID == "" {
		threadID = uuid.New().String()
	}

	result, err := a.planner.Plan(cmd.Context(), threadID, args[0])
	if err != nil {
		if planner.IsAmbiguous(err) {
			cmd.PrintErrf("Your request is ambiguous: %v\nPlease rephrase and try again.\n", err)
			return nil
		}
		return err
	}

	return renderResult(cmd, result)
}
