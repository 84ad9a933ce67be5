// Package csv reads tabular sample matrices from CSV files.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
)

// Reader reads a CSV file into a row-major float matrix. A label column can
// be split out for labeled datasets such as the digits training file, whose
// first column is the class.
type Reader struct {
	file      *os.File
	reader    *csv.Reader
	hasHeader bool
	labelCol  int
	headers   []string
	labels    []int
}

// Option configures a CSV reader.
type Option func(*Reader)

// WithHeader indicates whether the CSV has a header row.
func WithHeader(has bool) Option {
	return func(r *Reader) {
		r.hasHeader = has
	}
}

// WithLabelColumn marks column i as an integer class label. The column is
// removed from the returned matrix and exposed through Labels.
func WithLabelColumn(i int) Option {
	return func(r *Reader) {
		r.labelCol = i
	}
}

// NewReader opens a CSV file. By default the first row is treated as a
// header and no label column is assumed.
func NewReader(filename string, opts ...Option) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		file:      file,
		reader:    csv.NewReader(file),
		hasHeader: true,
		labelCol:  -1,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.hasHeader {
		headers, err := r.reader.Read()
		if err != nil {
			file.Close()
			return nil, err
		}
		r.headers = headers
	}

	return r, nil
}

// Headers returns the column headers, including any label column.
func (r *Reader) Headers() []string {
	return r.headers
}

// Labels returns the label column values gathered by Read, or nil when no
// label column was configured.
func (r *Reader) Labels() []int {
	return r.labels
}

// Read returns the remaining rows as a float matrix. Malformed rows are
// skipped. When a label column is configured its values accumulate in
// Labels, aligned with the returned rows.
func (r *Reader) Read() ([][]float64, error) {
	var data [][]float64

	for {
		record, err := r.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row, label, err := r.parseRecord(record)
		if err != nil {
			continue
		}
		data = append(data, row)
		if r.labelCol >= 0 {
			r.labels = append(r.labels, label)
		}
	}

	return data, nil
}

// Stream returns a channel of feature rows for incremental scoring. Label
// columns are dropped from streamed rows.
func (r *Reader) Stream(ctx context.Context) (<-chan []float64, error) {
	out := make(chan []float64, 100)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				record, err := r.reader.Read()
				if err == io.EOF {
					return
				}
				if err != nil {
					continue
				}

				row, _, err := r.parseRecord(record)
				if err != nil {
					continue
				}

				select {
				case out <- row:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close releases resources.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// parseRecord converts one CSV record to a feature row, splitting off the
// label column when one is configured.
func (r *Reader) parseRecord(record []string) ([]float64, int, error) {
	if len(record) == 0 {
		return nil, 0, errors.New("empty row")
	}
	if r.labelCol >= len(record) {
		return nil, 0, errors.New("label column out of range")
	}

	var label int
	row := make([]float64, 0, len(record))
	for i, val := range record {
		if i == r.labelCol {
			l, err := strconv.Atoi(val)
			if err != nil {
				return nil, 0, err
			}
			label = l
			continue
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, 0, err
		}
		row = append(row, f)
	}
	return row, label, nil
}
