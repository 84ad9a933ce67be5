package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"anomdet/pkg/dataset"
	dcsv "anomdet/pkg/dataset/csv"
)

var cacheOpts struct {
	labelCol int
	noHeader bool
}

var cacheCmd = &cobra.Command{
	Use:   "cache <in.csv> <out.dat>",
	Short: "Parse a CSV once and write a binary cache for fast reloads",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []dcsv.Option
		if cacheOpts.labelCol >= 0 {
			opts = append(opts, dcsv.WithLabelColumn(cacheOpts.labelCol))
		}
		if cacheOpts.noHeader {
			opts = append(opts, dcsv.WithHeader(false))
		}

		d, err := dataset.BuildCache(args[0], args[1], opts...)
		if err != nil {
			return err
		}

		logger.Info("binary cache written",
			zap.String("from", args[0]),
			zap.String("to", args[1]),
			zap.Int("rows", d.Rows()),
			zap.Int("cols", d.Cols()),
		)
		return nil
	},
}

func init() {
	cacheCmd.Flags().IntVar(&cacheOpts.labelCol, "label-col", -1, "label column index, -1 for none")
	cacheCmd.Flags().BoolVar(&cacheOpts.noHeader, "no-header", false, "CSV input has no header row")
	rootCmd.AddCommand(cacheCmd)
}
