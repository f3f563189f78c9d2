package responses

import (
	"labtrace-service/internal/app/models"
	"time"
)

type Result struct {
	ID                string               `json:"id"`
	OrderID           string               `json:"order_id"`
	ExternalRef       string               `json:"external_ref"`
	Values            []models.ResultValue `json:"values"`
	HasCriticalValues bool                 `json:"has_critical_values"`
	IsReviewed        bool                 `json:"is_reviewed"`
	ReviewedBy        *string              `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time           `json:"reviewed_at,omitempty"`
	ReceivedAt        time.Time            `json:"received_at"`
}

type IngestResult struct {
	ResultID  string `json:"result_id"`
	Duplicate bool   `json:"duplicate"`
}
