package ml

import (
	"fmt"
	"sort"
	"strings"
)

// ClassMetrics holds per-class precision, recall and F1.
type ClassMetrics struct {
	Label     int
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report summarizes classifier quality on a held-out set.
type Report struct {
	Classes []ClassMetrics
	Labels  []int
	// Confusion[i][j] counts rows of true label Labels[i] predicted as Labels[j].
	Confusion   [][]int
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
	Accuracy    float64
	Support     int
}

// Evaluate compares true and predicted labels.
func Evaluate(yTrue, yPred []int) (*Report, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("%w: %d true labels, %d predictions", ErrDimension, len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return nil, ErrEmptyInput
	}

	seen := make(map[int]bool)
	for i := range yTrue {
		seen[yTrue[i]] = true
		seen[yPred[i]] = true
	}
	labels := make([]int, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	index := make(map[int]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}

	confusion := make([][]int, len(labels))
	for i := range confusion {
		confusion[i] = make([]int, len(labels))
	}
	correct := 0
	for i := range yTrue {
		confusion[index[yTrue[i]]][index[yPred[i]]]++
		if yTrue[i] == yPred[i] {
			correct++
		}
	}

	report := &Report{
		Labels:    labels,
		Confusion: confusion,
		Accuracy:  float64(correct) / float64(len(yTrue)),
		Support:   len(yTrue),
	}

	for i, label := range labels {
		tp := confusion[i][i]
		predicted, actual := 0, 0
		for j := range labels {
			predicted += confusion[j][i]
			actual += confusion[i][j]
		}

		m := ClassMetrics{
			Label:     label,
			Precision: safeDiv(float64(tp), float64(predicted)),
			Recall:    safeDiv(float64(tp), float64(actual)),
			Support:   actual,
		}
		m.F1 = safeDiv(2*m.Precision*m.Recall, m.Precision+m.Recall)
		report.Classes = append(report.Classes, m)

		report.MacroAvg.Precision += m.Precision
		report.MacroAvg.Recall += m.Recall
		report.MacroAvg.F1 += m.F1
		w := float64(m.Support)
		report.WeightedAvg.Precision += w * m.Precision
		report.WeightedAvg.Recall += w * m.Recall
		report.WeightedAvg.F1 += w * m.F1
	}

	k := float64(len(labels))
	total := float64(len(yTrue))
	report.MacroAvg.Precision /= k
	report.MacroAvg.Recall /= k
	report.MacroAvg.F1 /= k
	report.MacroAvg.Support = len(yTrue)
	report.WeightedAvg.Precision /= total
	report.WeightedAvg.Recall /= total
	report.WeightedAvg.F1 /= total
	report.WeightedAvg.Support = len(yTrue)

	return report, nil
}

// String renders the report as a fixed-width table followed by the
// confusion matrix.
func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%14s %9s %9s %9s %9s\n", "", "precision", "recall", "f1-score", "support")
	for _, m := range r.Classes {
		fmt.Fprintf(&b, "%14d %9.2f %9.2f %9.2f %9d\n", m.Label, m.Precision, m.Recall, m.F1, m.Support)
	}
	fmt.Fprintf(&b, "\n%14s %9s %9s %9.2f %9d\n", "accuracy", "", "", r.Accuracy, r.Support)
	fmt.Fprintf(&b, "%14s %9.2f %9.2f %9.2f %9d\n", "macro avg", r.MacroAvg.Precision, r.MacroAvg.Recall, r.MacroAvg.F1, r.MacroAvg.Support)
	fmt.Fprintf(&b, "%14s %9.2f %9.2f %9.2f %9d\n", "weighted avg", r.WeightedAvg.Precision, r.WeightedAvg.Recall, r.WeightedAvg.F1, r.WeightedAvg.Support)

	b.WriteString("\nconfusion matrix (rows true, columns predicted)\n")
	for _, row := range r.Confusion {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprintf("%4d", v)
		}
		b.WriteString("[" + strings.Join(cells, " ") + "]\n")
	}

	return b.String()
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
