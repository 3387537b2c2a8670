package alerts

import (
	"fmt"
	"time"

	"github.com/equityscope/newsradar/internal/models"
	"github.com/google/uuid"
)

// BuildPayload decides whether an alert should fire for a filtered result set
// and constructs the payload when it should. Returns nil when the policy is
// disabled or the result set is empty. Pure decision and construction; no
// network I/O happens here.
func BuildPayload(records []models.HeadlineRecord, groupName string, policy models.AlertPolicy) *models.AlertPayload {
	if !policy.Enabled || policy.Trigger == models.TriggerNever {
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	limit := policy.PayloadLimit
	if limit <= 0 || limit > len(records) {
		limit = len(records)
	}

	headlines := make([]string, 0, limit)
	for _, r := range records[:limit] {
		label := r.Company
		if label == "" {
			label = r.Source
		}
		line := fmt.Sprintf("%s: %s", label, r.Headline)
		if r.HasKnownDate() {
			line += " (" + r.DisplayDate + ")"
		}
		headlines = append(headlines, line)
	}

	return &models.AlertPayload{
		ID:          uuid.NewString(),
		Group:       groupName,
		Count:       len(records),
		Headlines:   headlines,
		GeneratedAt: time.Now().UTC(),
	}
}
