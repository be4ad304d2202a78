package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/hr-attrition/internal/cli"
	"github.com/Veraticus/hr-attrition/internal/ingest"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

const maxWarningsShown = 10

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import associates from a .csv or .xlsx file",
		Long: `Load associate records from a spreadsheet into the collection.

Headers are mapped onto the standard field names (EmpID becomes associate_id,
RecruitmentSource becomes recruitment, and so on). Dates are rewritten as
dd-mm-yyyy and rows without an associate id or name are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("dry-run", false, "Show what would be imported without saving")
	cmd.Flags().Bool("replace", false, "Replace the existing collection in a single transaction")
	cmd.Flags().Int("batch-size", 100, "Records saved per transaction")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	replace, _ := cmd.Flags().GetBool("replace")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	if batchSize <= 0 {
		batchSize = 100
	}

	result, err := ingest.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	fmt.Fprintln(out, cli.FormatTitle("Importing "+args[0]))
	fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d rows read (%s, %s), %d valid, %d skipped",
		result.Rows, result.Format, result.Encoding, len(result.Records), result.Dropped)))
	printImportWarnings(cmd, result.Warnings)

	if dryRun {
		fmt.Fprintln(out, cli.FormatWarning("Dry run mode - not saving to database"))
		preview := result.Records
		if len(preview) > 10 {
			preview = preview[:10]
		}
		fmt.Fprintln(out, cli.RenderRecords(preview))
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStore(store)

	bar := progressbar.NewOptions(len(result.Records),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Saving records..."),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())

	if replace {
		ctx := handler.HandleInterrupts(cmd.Context(), "Import", "The existing collection was left unchanged")
		defer handler.Stop()

		removed, err := store.ReplaceRecords(ctx, cfg.Collection, result.Records)
		if err != nil {
			return fmt.Errorf("failed to replace collection: %w", err)
		}
		slog.Info("Replaced collection", "collection", cfg.Collection, "removed", removed)
		if err := bar.Add(len(result.Records)); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Replaced %d records in %s with %d imported records",
			removed, cfg.Collection, len(result.Records))))
		return nil
	}

	ctx := handler.HandleInterrupts(cmd.Context(), "Import", "Batches saved before the interrupt were kept")
	defer handler.Stop()

	saved := 0
	for start := 0; start < len(result.Records); start += batchSize {
		end := min(start+batchSize, len(result.Records))
		n, err := store.SaveRecords(ctx, cfg.Collection, result.Records[start:end])
		if err != nil {
			return fmt.Errorf("failed to save records (%d saved before the failure): %w", saved, err)
		}
		saved += n
		if err := bar.Add(n); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d records into %s", saved, cfg.Collection)))
	return nil
}

func printImportWarnings(cmd *cobra.Command, warnings []ingest.Warning) {
	out := cmd.OutOrStdout()
	for i, w := range warnings {
		if i == maxWarningsShown {
			fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("... and %d more", len(warnings)-maxWarningsShown)))
			return
		}
		fmt.Fprintln(out, cli.FormatWarning(w.String()))
	}
}
