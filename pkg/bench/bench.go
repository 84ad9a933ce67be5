// Package bench evaluates anomaly detectors on labeled datasets.
//
// The protocol follows the classic digits setup: each class takes a turn as
// the "normal" class, every other class counts as anomalous, and stratified
// train/test splits are drawn at a fixed anomaly ratio. The detector never
// sees labels; they are used only to build splits and score the ranking.
package bench

import (
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"anomdet/pkg/dataset"
	"anomdet/pkg/detectors"
)

// Config controls the benchmark protocol.
type Config struct {
	// Iterations repeats the whole per-class loop.
	Iterations int
	// TrainSamples and TestSamples size each split.
	TrainSamples int
	TestSamples  int
	// AnomalyRatio is the fraction of each split drawn from the anomalous
	// classes.
	AnomalyRatio float64
	// Seed drives split drawing and per-run detector seeds.
	Seed int64
}

// DefaultConfig mirrors the historical digits benchmark settings.
func DefaultConfig() Config {
	return Config{
		Iterations:   1,
		TrainSamples: 1000,
		TestSamples:  1000,
		AnomalyRatio: 0.05,
		Seed:         1,
	}
}

// DetectorFactory builds a fresh detector for one benchmark run, seeded so
// runs stay reproducible under a fixed Config.Seed.
type DetectorFactory func(seed int64) detectors.Detector

// Run is the outcome of one fit/predict cycle.
type Run struct {
	Iteration   int
	NormalClass int
	AUC         float64
}

// Result aggregates all runs of a benchmark.
type Result struct {
	Runs    []Run
	MeanAUC float64
}

// Runner executes the benchmark protocol.
type Runner struct {
	cfg     Config
	factory DetectorFactory
	log     *zap.Logger
}

// NewRunner creates a Runner. A nil logger disables logging.
func NewRunner(cfg Config, factory DetectorFactory, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{cfg: cfg, factory: factory, log: log}
}

// Run benchmarks the factory's detector on d, which must carry labels.
func (r *Runner) Run(d *dataset.Dataset) (*Result, error) {
	if d.Labels == nil {
		return nil, errors.New("bench: dataset has no labels")
	}
	if r.cfg.Iterations <= 0 || r.cfg.TrainSamples <= 0 || r.cfg.TestSamples <= 0 {
		return nil, fmt.Errorf("bench: non-positive iteration or split size")
	}
	if r.cfg.AnomalyRatio < 0 || r.cfg.AnomalyRatio >= 1 {
		return nil, fmt.Errorf("bench: anomaly ratio %v outside [0, 1)", r.cfg.AnomalyRatio)
	}

	rng := rand.New(rand.NewSource(r.cfg.Seed))

	nTrainNormal := int(float64(r.cfg.TrainSamples) * (1 - r.cfg.AnomalyRatio))
	nTrainAnomaly := r.cfg.TrainSamples - nTrainNormal
	nTestNormal := int(float64(r.cfg.TestSamples) * (1 - r.cfg.AnomalyRatio))
	nTestAnomaly := r.cfg.TestSamples - nTestNormal

	classes := dataset.Classes(d.Labels)

	result := &Result{}
	for iter := 0; iter < r.cfg.Iterations; iter++ {
		for _, normalClass := range classes {
			// Binary relabel: 1 = anomalous (any other class).
			binY := make([]int, len(d.Labels))
			for i, label := range d.Labels {
				if label != normalClass {
					binY[i] = 1
				}
			}

			trainIdx, err := dataset.StratifiedIndices(
				[]int{1, 0}, binY, []int{nTrainAnomaly, nTrainNormal}, rng)
			if err != nil {
				return nil, fmt.Errorf("bench: train split for class %d: %w", normalClass, err)
			}
			testIdx, err := dataset.StratifiedIndices(
				[]int{1, 0}, binY, []int{nTestAnomaly, nTestNormal}, rng)
			if err != nil {
				return nil, fmt.Errorf("bench: test split for class %d: %w", normalClass, err)
			}

			det := r.factory(rng.Int63())
			if err := det.Fit(dataset.Take(d.X, trainIdx)); err != nil {
				return nil, fmt.Errorf("bench: fit for class %d: %w", normalClass, err)
			}

			scores, err := det.Predict(dataset.Take(d.X, testIdx))
			if err != nil {
				return nil, fmt.Errorf("bench: predict for class %d: %w", normalClass, err)
			}

			truth := make([]bool, len(testIdx))
			for i, idx := range testIdx {
				truth[i] = binY[idx] == 1
			}

			auc := AUC(scores, truth)
			result.Runs = append(result.Runs, Run{
				Iteration:   iter,
				NormalClass: normalClass,
				AUC:         auc,
			})

			r.log.Info("benchmark run complete",
				zap.Int("iteration", iter),
				zap.Int("normal_class", normalClass),
				zap.Float64("auc", auc),
			)
		}
	}

	var sum float64
	for _, run := range result.Runs {
		sum += run.AUC
	}
	result.MeanAUC = sum / float64(len(result.Runs))

	return result, nil
}
