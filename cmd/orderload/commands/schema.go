package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/pebble-orders/cmd/orderload/output"
	"github.com/marshallshelly/pebble-orders/pkg/migration"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the DDL run by reset",
	Long:  `Print the DROP and CREATE statements a reset runs, in order. The database is not contacted.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSchema()
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema() error {
	reg, err := newRegistry()
	if err != nil {
		return err
	}

	plan, err := migration.NewManager(nil, reg, nil).Plan()
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(plan)
	}

	_, err = fmt.Fprintln(output.Out, plan.String())
	return err
}
