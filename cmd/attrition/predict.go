package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/hr-attrition/internal/cli"
	"github.com/Veraticus/hr-attrition/internal/common"
	"github.com/Veraticus/hr-attrition/internal/model"
	"github.com/spf13/cobra"
)

func predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict <name-or-id>",
		Short: "Score an associate's attrition risk",
		Long: `Look up an associate by exact name, name ignoring case, or associate id
and score them with the saved model.

Use --retrain to fit a fresh model on the current records first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runPredict,
	}

	cmd.Flags().Bool("retrain", false, "train on the current records before predicting")

	return cmd
}

func runPredict(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	key := strings.TrimSpace(strings.Join(args, " "))
	retrain, _ := cmd.Flags().GetBool("retrain")

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store)

	var (
		prediction *model.Prediction
		found      bool
	)
	if retrain {
		p, ok, train, err := eng.TrainAndPredict(ctx, key)
		if err != nil {
			return predictError(err)
		}
		if train != nil && train.Warning != nil {
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(train.Warning.Error()))
		}
		prediction, found = p, ok
	} else {
		prediction, found, err = eng.Predict(ctx, key)
		if err != nil {
			return predictError(err)
		}
	}

	if !found {
		return common.NewUserError(fmt.Sprintf("associate %q not found", key), common.ErrNotFound)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderPrediction(prediction))
	return nil
}

func predictError(err error) error {
	switch {
	case errors.Is(err, common.ErrArtifactsMissing):
		return common.NewUserError("no trained model, run 'attrition train' first", err)
	case errors.Is(err, common.ErrSchemaDrift):
		return common.NewUserError("records changed shape since training, run 'attrition train' again", err)
	default:
		return fmt.Errorf("prediction failed: %w", err)
	}
}
