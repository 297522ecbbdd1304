package commands

import (
	"github.com/spf13/cobra"

	"github.com/marshallshelly/pebble-orders/cmd/orderload/output"
	"github.com/marshallshelly/pebble-orders/pkg/etl"
	"github.com/marshallshelly/pebble-orders/pkg/seed"
)

var withSeed bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate the order tables",
	Long: `Drop every order table and create it again, empty.

With --seed a small sample dataset is loaded afterwards in one transaction.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReset(cmd)
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVar(&withSeed, "seed", false, "Load the sample dataset after the reset")
}

type resetResult struct {
	Tables []string        `json:"tables"`
	Seed   *etl.FileResult `json:"seed,omitempty"`
}

func runReset(cmd *cobra.Command) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := connect(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.manager.Reset(ctx); err != nil {
		return err
	}

	result := resetResult{Tables: a.registry.Names()}
	if withSeed {
		res, err := seed.Run(ctx, etl.NewLoader(a.db, a.registry, a.logger))
		result.Seed = &res
		if err != nil {
			if jsonOutput {
				_ = output.JSON(result)
			}
			return err
		}
	}

	if jsonOutput {
		return output.JSON(result)
	}

	output.Success("Recreated %d tables", len(result.Tables))
	if result.Seed != nil {
		output.Success("Seeded %d records, %d order items", result.Seed.Records, result.Seed.Items)
	}
	return nil
}
