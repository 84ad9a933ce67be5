package vis

import (
	"fmt"
	"os"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ScoreChart builds a ranked anomaly-score curve: scores sorted descending
// against their rank, with a horizontal threshold line. The visible knee
// between the anomalous head and the normal tail is what makes a threshold
// choice defensible.
func ScoreChart(scores []float64, threshold float64) chart.Chart {
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	xs := make([]float64, len(sorted))
	thresh := make([]float64, len(sorted))
	for i := range xs {
		xs[i] = float64(i + 1)
		thresh[i] = threshold
	}

	return chart.Chart{
		Title: "Ranked anomaly scores",
		XAxis: chart.XAxis{Name: "rank"},
		YAxis: chart.YAxis{Name: "score"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "score",
				XValues: xs,
				YValues: sorted,
			},
			chart.ContinuousSeries{
				Name:    "threshold",
				XValues: xs,
				YValues: thresh,
				Style: chart.Style{
					StrokeColor:     drawing.ColorRed,
					StrokeDashArray: []float64{4, 4},
				},
			},
		},
	}
}

// WriteScoreChartPNG renders the ranked-score curve to path as PNG.
func WriteScoreChartPNG(path string, scores []float64, threshold float64) error {
	if len(scores) == 0 {
		return fmt.Errorf("vis: no scores to chart")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	graph := ScoreChart(scores, threshold)
	return graph.Render(chart.PNG, f)
}
