package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marshallshelly/pebble-orders/cmd/orderload/output"
	"github.com/marshallshelly/pebble-orders/cmd/orderload/tui"
	"github.com/marshallshelly/pebble-orders/pkg/etl"
)

var (
	dataRoot        string
	pattern         string
	keepSchema      bool
	continueOnError bool
	interactive     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Reset the schema and load every JSON file under the data root",
	Long: `Reset the order tables, then load every matching file found under the data root.

Each file is loaded in its own transaction. By default the run stops at the first file
that fails; with --continue-on-error the failing file is rolled back, reported and skipped.
Use --keep-schema to append to the existing tables instead of resetting them.`,
	Example: `  orderload ingest --root ./data
  orderload ingest --root ./exports --keep-schema --continue-on-error
  orderload ingest -i`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&dataRoot, "root", "./data", "Directory searched recursively for data files")
	ingestCmd.Flags().StringVar(&pattern, "pattern", "*.json", "File name pattern")
	ingestCmd.Flags().BoolVar(&keepSchema, "keep-schema", false, "Do not reset the schema before loading")
	ingestCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Skip failing files instead of stopping")
	ingestCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Show an interactive progress UI")
}

func runIngest(cmd *cobra.Command) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := connect(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	if !keepSchema {
		if err := a.manager.Reset(ctx); err != nil {
			return err
		}
	}

	policy := etl.FailFast
	if a.cfg.Ingest.ContinueOnError {
		policy = etl.ContinueOnError
	}

	// Log lines would tear the alternate screen.
	logger := a.logger
	if interactive {
		logger = zap.NewNop()
	}

	loader := etl.NewLoader(a.db, a.registry, logger)
	run := func(ctx context.Context, progress func(etl.Progress)) (*etl.Report, error) {
		ing := etl.NewIngester(loader,
			etl.WithPolicy(policy),
			etl.WithPattern(a.cfg.Data.Pattern),
			etl.WithLogger(logger),
			etl.WithProgress(progress),
		)
		return ing.Run(ctx, a.cfg.Data.Root)
	}

	var report *etl.Report
	if interactive {
		report, err = tui.RunIngestUI(ctx, a.cfg.Data.Root, run)
	} else {
		report, err = run(ctx, nil)
	}

	if jsonOutput {
		if report != nil {
			if encErr := output.JSON(report); encErr != nil && err == nil {
				err = encErr
			}
		}
		return err
	}

	output.Section("Ingest " + a.cfg.Data.Root)
	output.Report(report)
	if err == nil {
		output.Success("All files loaded")
	}
	return err
}
