package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkTableCmd = &cobra.Command{
	Use:   "check-table",
	Short: "Validate the DynamoDB table schema",
	Long:  `Describes the table and checks its keys, status and location index.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newDynamoStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if err := store.Init(cmd.Context(), false); err != nil {
			return fmt.Errorf("table %s is not usable: %w", cfg.TableName, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "table %s OK\n", cfg.TableName)
		return nil
	},
}
