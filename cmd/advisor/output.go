package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/muneeb-ds/ai-travel-advisor/internal/planner"
)

// renderResult prints a planning result as JSON or as a human-readable
// itinerary with its audit trail.
func renderResult(cmd *cobra.Command, result *planner.PlanningResult) error {
	if jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Thread: %s (constraints v%d)\n\n", result.ThreadID, result.ConstraintVersion)
	fmt.Fprintln(out, result.Explanation)

	for _, day := range result.Itinerary.Days {
		fmt.Fprintf(out, "\n%s", day.Date)
		if day.Destination != "" {
			fmt.Fprintf(out, "  %s", day.Destination)
		}
		fmt.Fprintln(out)

		w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
		for _, entry := range day.Entries {
			if entry.Unfilled {
				fmt.Fprintf(w, "  %s\t%s\t%s\t(unresolved: %s)\n", entry.TimeOfDay, entry.Category, entry.Title, entry.Gap)
				continue
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", entry.TimeOfDay, entry.Category, entry.Title, entry.Cost.String())
		}
		w.Flush()
	}
	fmt.Fprintf(out, "\nTotal: %s   Quality: %.2f\n", result.Itinerary.TotalCost.String(), result.QualityScore)

	if len(result.Citations) > 0 {
		fmt.Fprintln(out, "\nSources:")
		for _, c := range result.Citations {
			fmt.Fprintf(out, "  [%s] %s (%s)\n", c.Ref, c.Title, c.Source)
		}
	}

	if len(result.Violations) > 0 {
		fmt.Fprintln(out, "\nUnresolved constraints:")
		for _, v := range result.Violations {
			fmt.Fprintf(out, "  [%s/%s] %s\n", v.Severity, v.Type, v.Description)
		}
	}

	if len(result.Decisions) > 0 && verbose {
		fmt.Fprintln(out, "\nRepair decisions:")
		for _, d := range result.Decisions {
			fmt.Fprintf(out, "  round %d %s: %s\n", d.Round, d.Kind, d.Rationale)
		}
	}

	for _, annotation := range result.Annotations {
		switch annotation {
		case planner.AnnotationDeadlineExceeded:
			fmt.Fprintln(out, "\nNote: the planning deadline was reached; this is the best plan found in time.")
		case planner.AnnotationRepairExhausted:
			fmt.Fprintln(out, "\nNote: some constraints could not be satisfied; consider relaxing one of them.")
		}
	}

	return nil
}
