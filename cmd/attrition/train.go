package main

import (
	"fmt"

	"github.com/Veraticus/hr-attrition/internal/cli"
	"github.com/Veraticus/hr-attrition/internal/engine"
	"github.com/spf13/cobra"
)

func trainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the attrition model",
		Long: `Fit the attrition classifier on every record in the collection and
replace the saved model.

Associates whose employment status is "Active" are labeled as staying and
everyone else as leaving. When either group is too small for a held-out
split the model is fit on all records and no metrics are reported.`,
		Args: cobra.NoArgs,
		RunE: runTrain,
	}

	cmd.Flags().Int("history", 0, "show the last N training runs instead of training")

	return cmd
}

func runTrain(cmd *cobra.Command, _ []string) error {
	eng, store, err := initEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore(store)

	out := cmd.OutOrStdout()

	if history, _ := cmd.Flags().GetInt("history"); history > 0 {
		runs, err := store.ListTrainingRuns(cmd.Context(), history)
		if err != nil {
			return fmt.Errorf("failed to list training runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Fprintln(out, cli.InfoStyle.Render("No training runs yet. Use 'attrition train' to fit a model."))
			return nil
		}
		fmt.Fprintln(out, cli.FormatTitle("Training History"))
		fmt.Fprintln(out, cli.RenderTrainingRuns(runs))
		return nil
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := handler.HandleInterrupts(cmd.Context(), "Training", "The previous model was kept")
	defer handler.Stop()

	result, err := eng.Train(ctx)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	printTrainResult(cmd, eng, result)
	return nil
}

func printTrainResult(cmd *cobra.Command, eng *engine.Engine, result *engine.TrainResult) {
	out := cmd.OutOrStdout()
	a := result.Artifacts

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Trained model %s on %d %s records (%d features)",
		a.ID, a.Samples, eng.Collection(), len(a.Columns))))
	fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("stayed: %d, left: %d",
		result.ClassCounts[0], result.ClassCounts[1])))

	if result.Warning != nil {
		fmt.Fprintln(out, cli.FormatWarning(result.Warning.Error()))
		return
	}
	if result.Report != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.RenderReport(result.Report))
	}
}
