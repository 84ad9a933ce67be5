// Command anomdet scores, benchmarks and visualizes tabular anomaly data
// with an isolation forest.
package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"anomdet/internal/config"
	"anomdet/internal/logutil"
	"anomdet/pkg/dataset"
	dcsv "anomdet/pkg/dataset/csv"
	"anomdet/pkg/dataset/pcap"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "anomdet",
	Short:         "Isolation-forest anomaly scoring",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return err
			}
		} else {
			cfg = config.Default()
		}

		logger, err = logutil.New(cfg.Log)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to YAML config file")
}

// loadInput reads the sample matrix at path. PCAP captures go through the
// packet feature extractor; .dat files are binary caches; everything else
// is parsed as CSV with the given header/label settings.
func loadInput(path string, labelCol int, noHeader bool) (*dataset.Dataset, error) {
	if strings.EqualFold(filepath.Ext(path), ".pcap") {
		r, err := pcap.NewFileReader(path)
		if err != nil {
			return nil, err
		}
		defer r.Close()

		X, err := r.Read()
		if err != nil {
			return nil, err
		}
		return &dataset.Dataset{X: X}, nil
	}

	var opts []dcsv.Option
	if labelCol >= 0 {
		opts = append(opts, dcsv.WithLabelColumn(labelCol))
	}
	if noHeader {
		opts = append(opts, dcsv.WithHeader(false))
	}

	loader, err := dataset.NewLoader(4, opts...)
	if err != nil {
		return nil, err
	}
	return loader.Load(path)
}
