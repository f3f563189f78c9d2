package requests

// LabResultWebhook is the structured-results payload shape. The HL7 form is
// parsed into the same struct by the results service before validation.
type LabResultWebhook struct {
	OrderNumber string            `json:"order_number" validate:"required"`
	ExternalRef string            `json:"external_ref" validate:"required,max=128"`
	ReportedAt  string            `json:"reported_at,omitempty"`
	Values      []LabReportedValue `json:"values" validate:"required,min=1,dive"`
}

type LabReportedValue struct {
	Code    string  `json:"code" validate:"required,max=32"`
	Name    string  `json:"name,omitempty"`
	Value   float64 `json:"value"`
	Unit    string  `json:"unit,omitempty"`
	RefLow  float64 `json:"ref_low"`
	RefHigh float64 `json:"ref_high"`
}
