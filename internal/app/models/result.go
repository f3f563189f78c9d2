package models

import (
	"time"
)

// ResultValue is a single reported analyte value with the reference range
// reported by the lab.
type ResultValue struct {
	Code     string  `json:"code"`
	Name     string  `json:"name,omitempty"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit,omitempty"`
	RefLow   float64 `json:"ref_low"`
	RefHigh  float64 `json:"ref_high"`
	Abnormal bool    `json:"abnormal"`
	Critical bool    `json:"critical"`
}

type Result struct {
	ID                string        `json:"id"`
	OrderID           string        `json:"order_id"`
	ExternalRef       string        `json:"external_ref"`
	Values            []ResultValue `json:"values"`
	HasCriticalValues bool          `json:"has_critical_values"`
	IsReviewed        bool          `json:"is_reviewed"`
	ReviewedBy        *string       `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time    `json:"reviewed_at,omitempty"`
	ReadyNotifiedAt   *time.Time    `json:"ready_notified_at,omitempty"`
	ReceivedAt        time.Time     `json:"received_at"`
}

// IsGated reports whether the result is hidden from its owning patient: a
// critical result stays invisible until a reviewer has signed it off.
func (r *Result) IsGated() bool {
	return r.HasCriticalValues && !r.IsReviewed
}
