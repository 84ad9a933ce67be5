package bench

import (
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// AUC returns the area under the ROC curve for anomaly scores against
// binary ground truth, where true marks a real anomaly. A detector that
// ranks every anomaly above every normal point scores 1; random ranking
// scores about 0.5.
func AUC(scores []float64, anomalous []bool) float64 {
	y := make([]float64, len(scores))
	copy(y, scores)
	classes := make([]bool, len(anomalous))
	copy(classes, anomalous)

	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}
