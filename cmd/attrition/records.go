package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/hr-attrition/internal/cli"
	"github.com/Veraticus/hr-attrition/internal/common"
	"github.com/Veraticus/hr-attrition/internal/model"
	"github.com/Veraticus/hr-attrition/internal/storage"
	"github.com/spf13/cobra"
)

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage associate records",
		Long:  `List, inspect, add, update and delete records in the collection.`,
	}

	// Subcommands
	cmd.AddCommand(recordsListCmd())
	cmd.AddCommand(recordsShowCmd())
	cmd.AddCommand(recordsAddCmd())
	cmd.AddCommand(recordsUpdateCmd())
	cmd.AddCommand(recordsDeleteCmd())

	return cmd
}

// withStore opens the record store for the duration of fn.
func withStore(cmd *cobra.Command, fn func(store *storage.SQLiteStorage, collection string) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStore(store)

	return fn(store, cfg.Collection)
}

func recordsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return withStore(cmd, func(store *storage.SQLiteStorage, collection string) error {
				records, err := store.GetRecords(cmd.Context(), collection)
				if err != nil {
					return fmt.Errorf("failed to get records: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, cli.InfoStyle.Render("No records found. Use 'attrition import' to load a spreadsheet."))
					return nil
				}

				total := len(records)
				if limit > 0 && len(records) > limit {
					records = records[:limit]
				}
				fmt.Fprintln(out, cli.FormatCollectionTitle(collection, total))
				fmt.Fprintln(out, cli.RenderRecords(records))
				return nil
			})
		},
	}

	cmd.Flags().Int("limit", 0, "show at most N records")

	return cmd
}

func recordsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name-or-id>",
		Short: "Show every field of a record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.Join(args, " ")
			return withStore(cmd, func(store *storage.SQLiteStorage, collection string) error {
				r, err := store.FindRecord(cmd.Context(), collection, key)
				if err != nil {
					return notFound(key, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(cli.PeopleIcon+" "+r.Name(), cli.RenderRecord(r)))
				return nil
			})
		},
	}
}

func recordsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a record",
		Long: `Add a record from field=value pairs, for example:

  attrition records add --set associate_name="Ann Lee" --set associate_id=10001 --set department=IT`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pairs, _ := cmd.Flags().GetStringArray("set")
			fields, err := parseAssignments(pairs)
			if err != nil {
				return err
			}
			record := make(model.Record, len(fields))
			for k, v := range fields {
				if v != nil {
					record[k] = v
				}
			}
			if record.Name() == "" {
				return common.NewUserError("a record needs an associate_name", storage.ErrInvalidRecord)
			}

			return withStore(cmd, func(store *storage.SQLiteStorage, collection string) error {
				if _, err := store.SaveRecords(cmd.Context(), collection, []model.Record{record}); err != nil {
					return fmt.Errorf("failed to save record: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s to %s", record.Name(), collection)))
				return nil
			})
		},
	}

	cmd.Flags().StringArray("set", nil, "field=value to set (repeatable)")

	return cmd
}

func recordsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <name-or-id>",
		Short: "Update fields of a record",
		Long: `Merge field=value pairs into a record. An empty value removes the field:

  attrition records update "Ann Lee" --set department=Sales --set special_project=`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.Join(args, " ")
			pairs, _ := cmd.Flags().GetStringArray("set")
			fields, err := parseAssignments(pairs)
			if err != nil {
				return err
			}
			if len(fields) == 0 {
				return common.NewUserError("nothing to update, pass at least one --set field=value", storage.ErrEmptySlice)
			}

			return withStore(cmd, func(store *storage.SQLiteStorage, collection string) error {
				if err := store.UpdateRecord(cmd.Context(), collection, key, fields); err != nil {
					return notFound(key, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Updated "+key))
				return nil
			})
		},
	}

	cmd.Flags().StringArray("set", nil, "field=value to set, empty value removes the field (repeatable)")

	return cmd
}

func recordsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name-or-id>",
		Short: "Delete a record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.Join(args, " ")
			yes, _ := cmd.Flags().GetBool("yes")

			return withStore(cmd, func(store *storage.SQLiteStorage, collection string) error {
				r, err := store.FindRecord(cmd.Context(), collection, key)
				if err != nil {
					return notFound(key, err)
				}

				if !yes {
					confirmer := cli.NewConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
					ok, err := confirmer.Confirm(cmd.Context(), fmt.Sprintf("Delete %s from %s?", r.Name(), collection))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted"))
						return nil
					}
				}

				if err := store.DeleteRecord(cmd.Context(), collection, key); err != nil {
					return fmt.Errorf("failed to delete record: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted "+r.Name()))
				return nil
			})
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "delete without asking")

	return cmd
}

func notFound(key string, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(fmt.Sprintf("record %q not found", key), err)
	}
	return err
}
