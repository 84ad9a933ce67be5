// Package detectors defines the contract shared by anomaly scoring models.
package detectors

import "context"

// Detector is the fit/predict contract consumed by dataset loading,
// benchmarking and visualization.
type Detector interface {
	// Fit trains the detector on an m x n matrix where each row is a
	// sample and each column a feature. Detectors are unsupervised; any
	// labels travel outside this interface.
	Fit(data [][]float64) error

	// Predict returns one anomaly score per row, each in (0, 1].
	// Higher values indicate anomalies. Fit must have succeeded first.
	Predict(data [][]float64) ([]float64, error)

	// PredictOne returns the anomaly score for a single sample.
	PredictOne(row []float64) (float64, error)
}

// StreamDetector extends Detector with channel-based scoring.
type StreamDetector interface {
	Detector

	// ScoreStream scores samples from input until it closes or ctx is
	// cancelled, flagging samples at or above threshold as anomalous.
	ScoreStream(ctx context.Context, threshold float64, input <-chan []float64, output chan<- Score) error
}

// Score is a single streaming scoring result.
type Score struct {
	// Value is the anomaly score in (0, 1].
	Value float64
	// IsAnomaly indicates the score reached the caller's threshold.
	IsAnomaly bool
	// Features is the scored input row.
	Features []float64
}
