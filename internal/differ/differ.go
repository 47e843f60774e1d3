package differ

import (
	"context"
	"math"

	"productwatch/internal/models"

	"github.com/rs/zerolog"
)

// priceEpsilon bounds float comparison noise when deciding whether a price
// actually moved.
const priceEpsilon = 1e-9

// BaselineSource provides the latest stored probe result per URL for a task.
type BaselineSource interface {
	LatestResultsByURL(ctx context.Context, taskID string) (map[string]models.ProbeResult, error)
}

// Differ compares fresh probe results against the latest stored state per
// (task, URL) and derives notification-worthy change events.
type Differ struct {
	store  BaselineSource
	logger zerolog.Logger
}

// NewDiffer creates a differ backed by the given store.
func NewDiffer(store BaselineSource, logger zerolog.Logger) *Differ {
	return &Differ{
		store:  store,
		logger: logger.With().Str("component", "Differ").Logger(),
	}
}

// Diff derives change events for one run's probe results. The baseline is the
// most recent stored result per URL, loaded before this run's results are
// appended. Candidates supplies the search titles for event rendering, keyed
// by URL; URLs without an entry fall back to the probe title.
//
// Diff is a pure comparison against the baseline: running it twice with the
// same inputs yields the same events, and results with no state transition
// yield none.
func (d *Differ) Diff(ctx context.Context, taskID string, results []models.ProbeResult, candidates map[string]models.Candidate) ([]models.ChangeEvent, error) {
	baseline, err := d.store.LatestResultsByURL(ctx, taskID)
	if err != nil {
		return nil, err
	}

	var events []models.ChangeEvent
	for _, current := range results {
		event, ok := d.compare(taskID, current, baseline, candidates)
		if !ok {
			continue
		}
		d.logger.Info().
			Str("task_id", taskID).
			Str("url", current.URL).
			Str("event", string(event.Type)).
			Msg("Detected change event")
		events = append(events, event)
	}
	return events, nil
}

func (d *Differ) compare(taskID string, current models.ProbeResult, baseline map[string]models.ProbeResult, candidates map[string]models.Candidate) (models.ChangeEvent, bool) {
	// Failed fetches and unparseable pages make no availability claim, so
	// they never produce an event and never flip a previously-available URL.
	if current.Outcome != models.ProbeOutcomeOK || !current.IsAvailable {
		return models.ChangeEvent{}, false
	}

	candidate, seen := candidates[current.URL]
	if !seen || candidate.Title == "" {
		candidate = models.Candidate{Title: current.Title, URL: current.URL}
	}

	previous, known := baseline[current.URL]
	if !known {
		return models.ChangeEvent{
			Type:      models.EventNewProductAvailable,
			TaskID:    taskID,
			Candidate: candidate,
			Current:   current,
			NewPrice:  current.Price,
		}, true
	}

	if !previous.IsAvailable {
		return models.ChangeEvent{
			Type:      models.EventBecameAvailable,
			TaskID:    taskID,
			Candidate: candidate,
			Current:   current,
			OldPrice:  previous.Price,
			NewPrice:  current.Price,
		}, true
	}

	if previous.Price != nil && current.Price != nil &&
		math.Abs(*previous.Price-*current.Price) > priceEpsilon {
		return models.ChangeEvent{
			Type:      models.EventPriceChanged,
			TaskID:    taskID,
			Candidate: candidate,
			Current:   current,
			OldPrice:  previous.Price,
			NewPrice:  current.Price,
		}, true
	}

	return models.ChangeEvent{}, false
}
