package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/hr-attrition/internal/cli"
	"github.com/Veraticus/hr-attrition/internal/common"
	"github.com/Veraticus/hr-attrition/internal/insights"
	"github.com/Veraticus/hr-attrition/internal/storage"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report [name]",
		Short: "Summarize the workforce or show one associate",
		Long: `Without arguments, print headcount breakdowns by department, recruitment
source, gender, location and termination reason. With a name, print that
associate's insight card.`,
		RunE: runReport,
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(strings.Join(args, " "))

	return withStore(cmd, func(store *storage.SQLiteStorage, collection string) error {
		records, err := store.GetRecords(cmd.Context(), collection)
		if err != nil {
			return fmt.Errorf("failed to get records: %w", err)
		}

		out := cmd.OutOrStdout()
		if name == "" {
			fmt.Fprintln(out, cli.FormatTitle("Workforce Report"))
			fmt.Fprintln(out, cli.RenderSummary(insights.Summarize(records)))
			return nil
		}

		r, ok := insights.FindByName(records, name)
		if !ok {
			return common.NewUserError(fmt.Sprintf("associate %q not found", name), common.ErrNotFound)
		}
		fmt.Fprintln(out, cli.RenderCard(insights.NewCard(r)))
		return nil
	})
}
