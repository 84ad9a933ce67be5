// Package dataset provides matrix sources, stratified sampling and caching
// for anomaly-detection inputs.
package dataset

import "context"

// Source reads sample matrices from files or capture devices.
type Source interface {
	// Read returns the complete matrix, one row per sample.
	Read() ([][]float64, error)

	// Stream returns a channel of rows for incremental scoring.
	Stream(ctx context.Context) (<-chan []float64, error)

	// Close releases resources.
	Close() error
}

// Dataset is a sample matrix with optional integer class labels.
// Labels is nil for unlabeled data, otherwise len(Labels) == len(X).
type Dataset struct {
	X      [][]float64
	Labels []int
}

// Rows returns the number of samples.
func (d *Dataset) Rows() int { return len(d.X) }

// Cols returns the number of features, 0 for an empty dataset.
func (d *Dataset) Cols() int {
	if len(d.X) == 0 {
		return 0
	}
	return len(d.X[0])
}
