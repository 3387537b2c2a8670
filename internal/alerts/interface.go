package alerts

import "github.com/equityscope/newsradar/internal/models"

// Sender defines the contract for alert transport. Delivery is best-effort:
// a transport failure is reported but never invalidates the scan result that
// produced the payload.
type Sender interface {
	SendAlert(payload *models.AlertPayload) error
}
