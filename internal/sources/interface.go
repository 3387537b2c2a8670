package sources

import (
	"context"

	"github.com/equityscope/newsradar/internal/models"
)

// Fetcher defines the contract for pulling raw entries from one feed source.
// Failures are returned as a tagged FetchError and never panic or abort
// sibling fetches; a failed fetch yields zero entries.
type Fetcher interface {
	Fetch(ctx context.Context, source models.FeedSource, term string) ([]models.RawEntry, *models.FetchError)
}
