package iforest

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anomdet/pkg/detectors"
)

func TestNewDefaults(t *testing.T) {
	f := New()
	assert.Equal(t, 20, f.numTrees)
	assert.Equal(t, 0.25, f.subsampleSize)
	assert.True(t, f.autoHeight)
	assert.Nil(t, f.rng)
}

func TestFitValidation(t *testing.T) {
	data := generateTestData(50, 3, 1)

	tests := []struct {
		name string
		opts []Option
		data [][]float64
	}{
		{name: "zero trees", opts: []Option{WithTrees(0)}, data: data},
		{name: "negative trees", opts: []Option{WithTrees(-5)}, data: data},
		{name: "zero subsample", opts: []Option{WithSubsampleSize(0)}, data: data},
		{name: "negative subsample", opts: []Option{WithSubsampleSize(-0.5)}, data: data},
		{name: "negative height limit", opts: []Option{WithHeightLimit(-1)}, data: data},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.opts...)
			assert.ErrorIs(t, f.Fit(tt.data), ErrInvalidConfig)
		})
	}

	t.Run("empty matrix", func(t *testing.T) {
		assert.Error(t, New().Fit(nil))
	})
}

func TestPsiResolution(t *testing.T) {
	tests := []struct {
		name          string
		subsampleSize float64
		m             int
		wantPsi       int
	}{
		{name: "quarter of 100", subsampleSize: 0.25, m: 100, wantPsi: 25},
		{name: "ceil of fraction", subsampleSize: 0.25, m: 101, wantPsi: 26},
		{name: "full sample", subsampleSize: 1.0, m: 20, wantPsi: 20},
		{name: "absolute count", subsampleSize: 10, m: 50, wantPsi: 10},
		{name: "absolute clamped to m", subsampleSize: 500, m: 100, wantPsi: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(WithSubsampleSize(tt.subsampleSize), WithSeed(42))
			require.NoError(t, f.Fit(generateTestData(tt.m, 2, 7)))
			assert.Equal(t, tt.wantPsi, f.Psi())
		})
	}
}

func TestPredictBeforeFit(t *testing.T) {
	f := New()

	_, err := f.Predict(generateTestData(5, 2, 1))
	assert.ErrorIs(t, err, ErrNotFitted)

	_, err = f.PredictOne([]float64{1, 2})
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestPredictDimensionMismatch(t *testing.T) {
	f := New(WithSeed(42))
	require.NoError(t, f.Fit(generateTestData(100, 3, 1)))

	_, err := f.Predict([][]float64{{1, 2}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = f.PredictOne([]float64{1, 2, 3, 4})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestPredictScoreRange(t *testing.T) {
	train := generateTestData(400, 5, 11)
	f := New(WithTrees(50), WithSubsampleSize(64), WithSeed(42))
	require.NoError(t, f.Fit(train))

	scores, err := f.Predict(generateTestData(100, 5, 12))
	require.NoError(t, err)
	require.Len(t, scores, 100)

	for _, score := range scores {
		assert.Greater(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestPredictSeparatesOutlier(t *testing.T) {
	// 19 points clustered near the origin plus one far outlier. With the
	// full sample per tree, the outlier must outrank every clustered point.
	rng := rand.New(rand.NewSource(7))
	data := make([][]float64, 0, 20)
	for i := 0; i < 19; i++ {
		data = append(data, []float64{rng.NormFloat64() * 0.1, rng.NormFloat64() * 0.1})
	}
	data = append(data, []float64{100, 100})

	f := New(WithTrees(50), WithSubsampleSize(1.0), WithSeed(42))
	require.NoError(t, f.Fit(data))

	scores, err := f.Predict(data)
	require.NoError(t, err)

	outlier := scores[19]
	for i, score := range scores[:19] {
		assert.Greater(t, outlier, score, "outlier must outrank clustered point %d", i)
	}
}

func TestFitPredictDeterministic(t *testing.T) {
	data := generateTestData(300, 4, 21)
	queries := generateTestData(50, 4, 22)

	a := New(WithTrees(30), WithSeed(1234))
	b := New(WithTrees(30), WithSeed(1234))
	require.NoError(t, a.Fit(data))
	require.NoError(t, b.Fit(data))

	scoresA, err := a.Predict(queries)
	require.NoError(t, err)
	scoresB, err := b.Predict(queries)
	require.NoError(t, err)

	assert.Equal(t, scoresA, scoresB, "identical seeds must give bit-identical scores")
}

func TestPredictParallelMatchesSequential(t *testing.T) {
	data := generateTestData(300, 4, 31)
	queries := generateTestData(200, 4, 32)

	seq := New(WithTrees(25), WithSeed(55))
	par := New(WithTrees(25), WithSeed(55), WithWorkers(8))
	require.NoError(t, seq.Fit(data))
	require.NoError(t, par.Fit(data))

	seqScores, err := seq.Predict(queries)
	require.NoError(t, err)
	parScores, err := par.Predict(queries)
	require.NoError(t, err)

	assert.Equal(t, seqScores, parScores)
}

func TestRefitRebuilds(t *testing.T) {
	f := New(WithTrees(10), WithSeed(42))

	require.NoError(t, f.Fit(generateTestData(100, 3, 41)))
	require.NoError(t, f.Fit(generateTestData(80, 5, 42)))

	// The forest now answers for the second matrix only.
	_, err := f.PredictOne([]float64{0, 0, 0, 0, 0})
	assert.NoError(t, err)

	_, err = f.PredictOne([]float64{0, 0, 0})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 20, f.Psi())
}

func TestScoreStream(t *testing.T) {
	f := New(WithTrees(20), WithSeed(42))
	require.NoError(t, f.Fit(generateTestData(200, 3, 51)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	input := make(chan []float64, 4)
	output := make(chan detectors.Score, 4)

	done := make(chan error, 1)
	go func() {
		done <- f.ScoreStream(ctx, 0.6, input, output)
	}()

	samples := [][]float64{
		{0.1, 0.1, 0.1},
		{100, 100, 100},
		{-0.2, 0.3, 0.1},
	}
	for _, sample := range samples {
		input <- sample
	}
	close(input)

	require.NoError(t, <-done)
	close(output)

	var results []detectors.Score
	for score := range output {
		results = append(results, score)
	}
	require.Len(t, results, len(samples))

	for _, res := range results {
		assert.Greater(t, res.Value, 0.0)
		assert.LessOrEqual(t, res.Value, 1.0)
		assert.Equal(t, res.Value >= 0.6, res.IsAnomaly)
	}
}

func TestScoreStreamBeforeFit(t *testing.T) {
	f := New()
	err := f.ScoreStream(context.Background(), 0.5, nil, nil)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func BenchmarkFit(b *testing.B) {
	data := generateTestData(10000, 10, 1)
	f := New(WithTrees(100), WithSubsampleSize(256), WithSeed(42))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Fit(data)
	}
}

func BenchmarkPredict(b *testing.B) {
	train := generateTestData(5000, 10, 1)
	queries := generateTestData(1000, 10, 2)

	f := New(WithTrees(100), WithSubsampleSize(256), WithSeed(42))
	f.Fit(train)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Predict(queries)
	}
}

func generateTestData(n, features int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	data := make([][]float64, n)
	for i := 0; i < n; i++ {
		data[i] = make([]float64, features)
		for j := 0; j < features; j++ {
			data[i][j] = rng.NormFloat64()
		}
	}
	return data
}
