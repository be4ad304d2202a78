package model

// Risk labels shown for a prediction.
const (
	RiskHigh = "High Risk"
	RiskLow  = "Low Risk"
)

// RiskLabel maps a predicted class to its display label.
func RiskLabel(class int) string {
	if class == 1 {
		return RiskHigh
	}
	return RiskLow
}

// Prediction is the attrition-risk result for one associate.
type Prediction struct {
	Details     Record
	Name        string
	Label       string
	ModelID     string
	Probability float64 // percent, 0-100, two decimals
	Class       int
}
