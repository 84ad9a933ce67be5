// Package iforest implements the Isolation Forest algorithm for anomaly detection.
//
// An ensemble of randomly grown partitioning trees isolates points by
// recursive axis-aligned splits over random subsamples; points that separate
// after few splits score close to 1, points deep in the bulk of the data
// score near or below 0.5.
package iforest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"anomdet/pkg/detectors"
)

var (
	// ErrInvalidConfig reports a non-positive tree count or subsample size,
	// or a negative height limit.
	ErrInvalidConfig = errors.New("iforest: invalid configuration")

	// ErrNotFitted reports a Predict call before any successful Fit.
	ErrNotFitted = errors.New("iforest: model not fitted")

	// ErrDimensionMismatch reports a query row whose column count differs
	// from the training matrix.
	ErrDimensionMismatch = errors.New("iforest: feature dimension mismatch")
)

var _ detectors.StreamDetector = (*IsolationForest)(nil)

// IsolationForest implements unsupervised anomaly scoring using isolation
// trees. Configure it with options, call Fit once, then Predict any number
// of times; Predict never mutates the forest.
type IsolationForest struct {
	mu sync.RWMutex

	// Configuration
	numTrees      int
	subsampleSize float64
	heightLimit   int
	autoHeight    bool
	rng           *rand.Rand
	workers       int

	// Fitted state
	trees     []*tree
	psi       int
	nFeatures int
	norm      float64 // c(psi)
	fitted    bool
}

// Option configures an IsolationForest.
type Option func(*IsolationForest)

// WithTrees sets the ensemble size.
func WithTrees(n int) Option {
	return func(f *IsolationForest) {
		f.numTrees = n
	}
}

// WithSubsampleSize sets the per-tree subsample size: a value in (0, 1]
// is a fraction of the training rows, a value above 1 an absolute row count.
func WithSubsampleSize(s float64) Option {
	return func(f *IsolationForest) {
		f.subsampleSize = s
	}
}

// WithHeightLimit fixes the maximum tree depth instead of deriving
// ceil(log2(psi)) at fit time.
func WithHeightLimit(h int) Option {
	return func(f *IsolationForest) {
		f.heightLimit = h
		f.autoHeight = false
	}
}

// WithSeed seeds a forest-owned random generator for reproducible fits.
func WithSeed(seed int64) Option {
	return func(f *IsolationForest) {
		f.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRandomSource injects an explicit generator. The forest takes ownership:
// draws during Fit are sequenced in fixed tree order, so sharing the
// generator with concurrent users breaks reproducibility.
func WithRandomSource(rng *rand.Rand) Option {
	return func(f *IsolationForest) {
		f.rng = rng
	}
}

// WithWorkers bounds the number of goroutines used to score query rows in
// Predict. Rows are scored independently and written to fixed positions, so
// results are identical to the sequential default.
func WithWorkers(n int) Option {
	return func(f *IsolationForest) {
		f.workers = n
	}
}

// New creates an IsolationForest with the given options.
func New(opts ...Option) *IsolationForest {
	f := &IsolationForest{
		numTrees:      20,
		subsampleSize: 0.25,
		autoHeight:    true,
		workers:       1,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *IsolationForest) validate() error {
	if f.numTrees <= 0 {
		return fmt.Errorf("%w: num trees %d", ErrInvalidConfig, f.numTrees)
	}
	if f.subsampleSize <= 0 {
		return fmt.Errorf("%w: subsample size %v", ErrInvalidConfig, f.subsampleSize)
	}
	if !f.autoHeight && f.heightLimit < 0 {
		return fmt.Errorf("%w: height limit %d", ErrInvalidConfig, f.heightLimit)
	}
	return nil
}

// Fit trains the forest on data, an m x n matrix of rows. Any labels are
// ignored; the model is unsupervised. Calling Fit again discards all trees
// and rebuilds from the new data.
func (f *IsolationForest) Fit(data [][]float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.validate(); err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("iforest: empty training matrix")
	}

	m := len(data)
	nFeatures := len(data[0])
	if nFeatures == 0 {
		return errors.New("iforest: training matrix has no features")
	}

	// A fractional subsample size is resolved against m; anything above 1
	// is taken as an absolute row count, truncated and clamped to m.
	var psi int
	if f.subsampleSize <= 1.0 {
		psi = int(math.Ceil(f.subsampleSize * float64(m)))
	} else {
		psi = int(f.subsampleSize)
	}
	if psi > m {
		psi = m
	}

	// The auto limit is derived from psi on every Fit; an explicit limit
	// is used as configured.
	heightLimit := f.heightLimit
	if f.autoHeight {
		heightLimit = int(math.Ceil(math.Log2(float64(psi))))
	}

	if f.rng == nil {
		f.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	trees := make([]*tree, f.numTrees)
	sample := make([][]float64, psi)
	for i := range trees {
		indices := f.rng.Perm(m)[:psi]
		for j, idx := range indices {
			sample[j] = data[idx]
		}
		trees[i] = growTree(sample, heightLimit, f.rng)
	}

	f.trees = trees
	f.psi = psi
	f.nFeatures = nFeatures
	f.norm = expectedPathLength(psi)
	f.fitted = true

	return nil
}

// Predict returns one anomaly score in (0, 1] per query row. Higher scores
// mean shorter average isolation paths, i.e. more anomalous points.
func (f *IsolationForest) Predict(data [][]float64) ([]float64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.fitted {
		return nil, ErrNotFitted
	}
	for i, row := range data {
		if len(row) != f.nFeatures {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d",
				ErrDimensionMismatch, i, len(row), f.nFeatures)
		}
	}

	scores := make([]float64, len(data))

	if f.workers > 1 {
		var eg errgroup.Group
		eg.SetLimit(f.workers)
		for i, row := range data {
			i, row := i, row
			eg.Go(func() error {
				scores[i] = f.scoreRow(row)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
		return scores, nil
	}

	for i, row := range data {
		scores[i] = f.scoreRow(row)
	}
	return scores, nil
}

// PredictOne returns the anomaly score for a single query row.
func (f *IsolationForest) PredictOne(row []float64) (float64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.fitted {
		return 0, ErrNotFitted
	}
	if len(row) != f.nFeatures {
		return 0, fmt.Errorf("%w: row has %d features, want %d",
			ErrDimensionMismatch, len(row), f.nFeatures)
	}
	return f.scoreRow(row), nil
}

// scoreRow aggregates bias-corrected path lengths over all trees and maps
// the normalized mean through 2^(-x). Callers hold at least a read lock.
func (f *IsolationForest) scoreRow(row []float64) float64 {
	var sum float64
	for _, t := range f.trees {
		length, leafSize := t.pathLength(row)
		sum += float64(length) + expectedPathLength(leafSize)
	}
	mean := sum / float64(len(f.trees))
	return math.Exp2(-mean / f.norm)
}

// ScoreStream scores samples from a channel until the input closes or the
// context is cancelled. Samples at or above threshold are flagged anomalous.
func (f *IsolationForest) ScoreStream(ctx context.Context, threshold float64, input <-chan []float64, output chan<- detectors.Score) error {
	f.mu.RLock()
	fitted := f.fitted
	f.mu.RUnlock()
	if !fitted {
		return ErrNotFitted
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case row, ok := <-input:
			if !ok {
				return nil
			}

			score, err := f.PredictOne(row)
			if err != nil {
				return err
			}

			select {
			case output <- detectors.Score{
				Value:     score,
				IsAnomaly: score >= threshold,
				Features:  row,
			}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Psi returns the resolved subsample size from the last Fit.
func (f *IsolationForest) Psi() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.psi
}
