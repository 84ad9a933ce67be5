package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"anomdet/pkg/bench"
	"anomdet/pkg/detectors"
	"anomdet/pkg/detectors/iforest"
)

var benchOpts struct {
	db       string
	labelCol int
	noHeader bool
}

var benchCmd = &cobra.Command{
	Use:   "bench <labeled-data>",
	Short: "Run the per-class anomaly benchmark and report ROC AUC",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadInput(args[0], benchOpts.labelCol, benchOpts.noHeader)
		if err != nil {
			return err
		}

		factory := func(seed int64) detectors.Detector {
			opts := append(cfg.Model.ForestOptions(), iforest.WithSeed(seed))
			return iforest.New(opts...)
		}

		runner := bench.NewRunner(cfg.Bench.BenchConfig(), factory, logger)
		res, err := runner.Run(d)
		if err != nil {
			return err
		}

		fmt.Printf("mean AUC over %d runs: %.4f\n", len(res.Runs), res.MeanAUC)

		if benchOpts.db != "" {
			store, err := bench.OpenStore(benchOpts.db)
			if err != nil {
				return err
			}
			defer store.Close()

			name := filepath.Base(args[0])
			if err := store.SaveResult(name, res); err != nil {
				return err
			}
			logger.Info("benchmark stored",
				zap.String("db", benchOpts.db),
				zap.String("dataset", name),
				zap.Float64("mean_auc", res.MeanAUC),
			)
		}

		return nil
	},
}

func init() {
	benchCmd.Flags().StringVar(&benchOpts.db, "db", "", "SQLite file for storing results (empty disables)")
	benchCmd.Flags().IntVar(&benchOpts.labelCol, "label-col", 0, "label column index")
	benchCmd.Flags().BoolVar(&benchOpts.noHeader, "no-header", false, "CSV input has no header row")
	rootCmd.AddCommand(benchCmd)
}
