package search

import (
	"context"

	"productwatch/internal/models"
)

// Searcher finds candidate product pages for a keyword restricted to the given
// site domains. An empty candidate list and an error are both treated as "no
// results" by the pipeline.
type Searcher interface {
	Search(ctx context.Context, keyword string, sites []string) ([]models.Candidate, error)
}
