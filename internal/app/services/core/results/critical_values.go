package results

import (
	"labtrace-service/internal/app/models"
	"strings"
)

// criticalThreshold bounds a single analyte. A reported value at or beyond
// either bound is clinically urgent and forces the review gate.
type criticalThreshold struct {
	Low  float64
	High float64
}

// criticalThresholds is keyed by analyte code as reported by lab partners.
// Bounds follow commonly published critical ("panic") ranges.
var criticalThresholds = map[string]criticalThreshold{
	"K":     {Low: 2.8, High: 6.2},   // potassium, mmol/L
	"NA":    {Low: 120, High: 160},   // sodium, mmol/L
	"CA":    {Low: 1.6, High: 3.3},   // calcium, mmol/L
	"GLU":   {Low: 2.2, High: 25.0},  // glucose, mmol/L
	"HGB":   {Low: 66, High: 199},    // hemoglobin, g/L
	"WBC":   {Low: 2.0, High: 30.0},  // white cells, 10^9/L
	"PLT":   {Low: 40, High: 1000},   // platelets, 10^9/L
	"CREA":  {Low: 0, High: 650},     // creatinine, umol/L
	"TROPI": {Low: 0, High: 0.04},    // troponin I, ug/L
	"INR":   {Low: 0, High: 4.5},
	"PH":    {Low: 7.2, High: 7.6},   // arterial blood gas
	"PCO2":  {Low: 2.6, High: 9.3},   // kPa
}

// EvaluateValues flags each value against its reference range and the
// critical threshold table. Pure function of its input; the returned boolean
// reports whether any value crossed a critical bound.
func EvaluateValues(values []models.ResultValue) ([]models.ResultValue, bool) {
	hasCritical := false
	evaluated := make([]models.ResultValue, len(values))

	for i, v := range values {
		v.Abnormal = isOutsideRange(v)
		v.Critical = isCritical(v)
		if v.Critical {
			v.Abnormal = true
			hasCritical = true
		}
		evaluated[i] = v
	}

	return evaluated, hasCritical
}

func isOutsideRange(v models.ResultValue) bool {
	if v.RefLow == 0 && v.RefHigh == 0 {
		return false
	}
	return v.Value < v.RefLow || v.Value > v.RefHigh
}

// A zero bound disables that side of the check; troponin has no critical low.
func isCritical(v models.ResultValue) bool {
	threshold, ok := criticalThresholds[strings.ToUpper(strings.TrimSpace(v.Code))]
	if !ok {
		return false
	}
	if threshold.Low > 0 && v.Value <= threshold.Low {
		return true
	}
	return threshold.High > 0 && v.Value >= threshold.High
}
