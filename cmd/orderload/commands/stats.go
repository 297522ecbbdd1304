package commands

import (
	"github.com/spf13/cobra"

	"github.com/marshallshelly/pebble-orders/cmd/orderload/output"
	"github.com/marshallshelly/pebble-orders/pkg/builder"
	"github.com/marshallshelly/pebble-orders/pkg/etl"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts per table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats(cmd)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := connect(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	counts, err := etl.Counts(ctx, builder.New(a.db, a.registry))
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(counts)
	}
	output.Counts(counts)
	return nil
}
