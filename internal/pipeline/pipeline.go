package pipeline

import (
	"context"
	"time"

	"productwatch/internal/config"
	"productwatch/internal/differ"
	"productwatch/internal/models"
	"productwatch/internal/notifier"
	"productwatch/internal/probe"
	"productwatch/internal/relevance"
	"productwatch/internal/search"
	"productwatch/internal/urlhandler"

	"github.com/rs/zerolog"
)

// ResultWriter persists probe results as append-only history rows.
type ResultWriter interface {
	AppendProbeResult(ctx context.Context, taskID string, result models.ProbeResult) error
}

// Pipeline executes one full check run for a task: search, relevance
// filtering, availability probing, change detection, and notification
// dispatch. A failure in any single candidate or collaborator is isolated;
// only a search failure ends the run early, since there is nothing to check
// without candidates.
type Pipeline struct {
	cfg        config.PipelineConfig
	searcher   search.Searcher
	filter     relevance.Filter
	prober     probe.Fetcher
	differ     *differ.Differ
	dispatcher *notifier.Dispatcher
	store      ResultWriter
	logger     zerolog.Logger
}

// NewPipeline wires the per-task check pipeline.
func NewPipeline(
	cfg config.PipelineConfig,
	searcher search.Searcher,
	filter relevance.Filter,
	prober probe.Fetcher,
	d *differ.Differ,
	dispatcher *notifier.Dispatcher,
	store ResultWriter,
	logger zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		searcher:   searcher,
		filter:     filter,
		prober:     prober,
		differ:     d,
		dispatcher: dispatcher,
		store:      store,
		logger:     logger.With().Str("component", "Pipeline").Logger(),
	}
}

// Run executes one check for the task and returns a report of what happened.
// The report always comes back non-nil, with Error set when the run could not
// produce results.
func (p *Pipeline) Run(ctx context.Context, task *models.MonitoringTask) *models.PipelineReport {
	start := time.Now()
	report := &models.PipelineReport{TaskID: task.ID, Keyword: task.Keyword}
	defer func() { report.Duration = time.Since(start) }()

	taskLogger := p.logger.With().Str("task_id", task.ID).Str("keyword", task.Keyword).Logger()

	candidates, err := p.searcher.Search(ctx, task.Keyword, task.TargetSites)
	if err != nil {
		taskLogger.Error().Err(err).Msg("Search failed, ending run")
		report.Error = err.Error()
		report.NoResults = true
		return report
	}
	candidates = dedupCandidates(candidates)
	report.Searched = len(candidates)
	if len(candidates) == 0 {
		taskLogger.Info().Msg("Search returned no candidates")
		report.NoResults = true
		return report
	}

	// First-ever runs get a wider candidate cap so the initial baseline
	// covers more of the listing surface.
	candidateCap := p.cfg.RecurringCandidateCap
	if task.LastCheckedAt == nil {
		candidateCap = p.cfg.FirstRunCandidateCap
	}
	if len(candidates) > candidateCap {
		candidates = candidates[:candidateCap]
	}

	relevant := p.filterCandidates(ctx, taskLogger, task, candidates)
	report.Filtered = len(relevant)
	if len(relevant) == 0 {
		taskLogger.Info().Int("searched", report.Searched).Msg("No relevant candidates after filtering")
		report.NoResults = true
		return report
	}

	byURL := make(map[string]models.Candidate, len(relevant))
	for i, candidate := range relevant {
		if i > 0 {
			if !sleepCtx(ctx, p.cfg.ProbeDelay()) {
				report.Error = ctx.Err().Error()
				return report
			}
		}
		byURL[candidate.URL] = candidate

		result := p.prober.Check(ctx, candidate.URL)
		if result.Title == "" {
			result.Title = candidate.Title
		}
		report.Results = append(report.Results, result)
		report.Checked++
		if result.IsAvailable {
			report.Available++
		}
	}

	// Diff against stored state before this run's results are appended.
	events, err := p.differ.Diff(ctx, task.ID, report.Results, byURL)
	if err != nil {
		taskLogger.Error().Err(err).Msg("Change detection failed")
	} else {
		report.Events = events
	}

	for _, result := range report.Results {
		if err := p.store.AppendProbeResult(ctx, task.ID, result); err != nil {
			taskLogger.Error().Err(err).Str("url", result.URL).Msg("Failed to persist probe result")
		}
	}

	if len(report.Events) > 0 {
		p.dispatcher.DispatchEvents(ctx, task, report.Events)
	}

	taskLogger.Info().
		Int("searched", report.Searched).
		Int("filtered", report.Filtered).
		Int("checked", report.Checked).
		Int("available", report.Available).
		Int("events", len(report.Events)).
		Dur("duration", time.Since(start)).
		Msg("Pipeline run complete")
	return report
}

// filterCandidates applies the relevance filter to each candidate in order.
// A filter error counts the candidate as relevant: missing a real product
// page is worse than probing a false positive.
func (p *Pipeline) filterCandidates(ctx context.Context, taskLogger zerolog.Logger, task *models.MonitoringTask, candidates []models.Candidate) []models.Candidate {
	var relevant []models.Candidate
	for i, candidate := range candidates {
		if i > 0 {
			if !sleepCtx(ctx, p.cfg.RelevanceDelay()) {
				break
			}
		}

		ok, err := p.filter.IsRelevant(ctx, candidate.URL, task.Keyword, task.TargetSites)
		if err != nil {
			taskLogger.Warn().Err(err).Str("url", candidate.URL).Msg("Relevance check failed, treating as relevant")
			ok = true
		}
		if ok {
			relevant = append(relevant, candidate)
		}
	}
	return relevant
}

// dedupCandidates drops candidates whose normalized URL was already seen,
// preserving search order.
func dedupCandidates(candidates []models.Candidate) []models.Candidate {
	seen := make(map[string]bool, len(candidates))
	var unique []models.Candidate
	for _, candidate := range candidates {
		normalized, err := urlhandler.NormalizeURL(candidate.URL)
		if err != nil {
			continue
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		unique = append(unique, candidate)
	}
	return unique
}

// sleepCtx waits for d unless the context ends first. Returns false when the
// context ended.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
