package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"productwatch/internal/classifier"
	"productwatch/internal/config"
	"productwatch/internal/errorwrapper"
	"productwatch/internal/models"
	"productwatch/internal/urlhandler"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// Fetcher fetches one candidate product page with bounded retries and hands
// the content to a site classifier. All expected failure modes are folded into
// the returned result's outcome tag; Check never returns an error.
type Fetcher interface {
	Check(ctx context.Context, pageURL string) models.ProbeResult
}

// Prober is the HTTP-backed Fetcher implementation.
type Prober struct {
	cfg        config.ProbeConfig
	httpClient *http.Client
	registry   *classifier.Registry
	logger     zerolog.Logger
	// now is swappable for tests
	now func() time.Time
}

// NewProber creates a Prober with its own HTTP client. The per-attempt timeout
// lives on the client so a hung fetch can never stall a worker past it.
func NewProber(cfg config.ProbeConfig, registry *classifier.Registry, logger zerolog.Logger) *Prober {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
	}
	return &Prober{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout(),
			Transport: transport,
		},
		registry: registry,
		logger:   logger.With().Str("component", "Prober").Logger(),
		now:      time.Now,
	}
}

// Check fetches and classifies a single URL. It retries transport failures and
// non-2xx terminal responses up to MaxRetries times with exponential backoff,
// then records a fetch_failed outcome. A fetch failure makes no availability
// claim; IsAvailable=false is a storage convention only.
func (p *Prober) Check(ctx context.Context, pageURL string) models.ProbeResult {
	var lastErr error

	for attempt := 1; attempt <= p.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			if err := p.waitBackoff(ctx, attempt-1); err != nil {
				lastErr = err
				break
			}
		}

		body, statusCode, err := p.fetch(ctx, pageURL)
		if err != nil {
			lastErr = err
			p.logger.Warn().
				Str("url", pageURL).
				Int("attempt", attempt).
				Int("max_retries", p.cfg.MaxRetries).
				Err(err).
				Msg("Fetch attempt failed")
			continue
		}

		result := p.classify(pageURL, body)
		result.Details["response_code"] = statusCode
		result.Details["attempt"] = attempt
		return result
	}

	p.logger.Warn().
		Str("url", pageURL).
		Int("attempts", p.cfg.MaxRetries).
		Err(lastErr).
		Msg("All fetch attempts exhausted")

	fetchErr := errorwrapper.NewTransientFetchError(pageURL, p.cfg.MaxRetries, lastErr)
	return models.ProbeResult{
		URL:         pageURL,
		IsAvailable: false,
		Price:       nil,
		Details:     map[string]interface{}{"error": fetchErr.Error()},
		Timestamp:   p.now(),
		Outcome:     models.ProbeOutcomeFetchFailed,
	}
}

// fetch performs one HTTP GET attempt. Redirects are followed; any terminal
// status outside 2xx counts as a failed attempt.
func (p *Prober) fetch(ctx context.Context, pageURL string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", 0, errorwrapper.WrapError(err, "failed to build request")
	}
	p.setHeaders(req, pageURL)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", 0, errorwrapper.WrapError(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", resp.StatusCode, errorwrapper.NewError("unexpected status %d", resp.StatusCode)
	}

	doc := new(strings.Builder)
	if _, err := copyBody(doc, resp); err != nil {
		return "", resp.StatusCode, errorwrapper.WrapError(err, "failed to read response body")
	}
	return doc.String(), resp.StatusCode, nil
}

func (p *Prober) setHeaders(req *http.Request, pageURL string) {
	req.Header.Set("User-Agent", p.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.9,en;q=0.8")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	domain, err := urlhandler.ExtractDomain(pageURL)
	if err != nil {
		return
	}
	// Some sites behave differently without these.
	if strings.Contains(domain, "amazon") {
		req.Header.Set("Accept-Language", "ja,en;q=0.9")
	} else if strings.Contains(domain, "louisvuitton") {
		req.Header.Set("Cache-Control", "no-cache")
	}
}

// classify hands the page to the registry's classifier for the URL's domain.
// Classifier errors and panics degrade to a parse_unavailable outcome.
func (p *Prober) classify(pageURL, body string) (result models.ProbeResult) {
	result = models.ProbeResult{
		URL:       pageURL,
		Details:   map[string]interface{}{},
		Timestamp: p.now(),
	}

	defer func() {
		if r := recover(); r != nil {
			classErr := errorwrapper.NewClassificationError(pageURL, fmt.Errorf("classifier panic: %v", r))
			p.logger.Error().Str("url", pageURL).Msg(classErr.Error())
			result.IsAvailable = false
			result.Price = nil
			result.Details = map[string]interface{}{"error": classErr.Error()}
			result.Outcome = models.ProbeOutcomeParseUnavailable
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		classErr := errorwrapper.NewClassificationError(pageURL, err)
		p.logger.Warn().Str("url", pageURL).Err(err).Msg("Failed to parse page HTML")
		result.Details["error"] = classErr.Error()
		result.Outcome = models.ProbeOutcomeParseUnavailable
		return result
	}

	siteClassifier := p.registry.ForURL(pageURL)
	classification, err := siteClassifier.Classify(doc, pageURL)
	if err != nil {
		classErr := errorwrapper.NewClassificationError(pageURL, err)
		p.logger.Warn().Str("url", pageURL).Str("classifier", siteClassifier.Name()).Err(err).Msg("Classification failed")
		result.Details["error"] = classErr.Error()
		result.Outcome = models.ProbeOutcomeParseUnavailable
		return result
	}

	result.IsAvailable = classification.IsAvailable
	result.Price = classification.Price
	result.Details = classification.Details()
	result.Details["classifier"] = siteClassifier.Name()
	result.Outcome = models.ProbeOutcomeOK

	p.logger.Debug().
		Str("url", pageURL).
		Str("classifier", siteClassifier.Name()).
		Bool("is_available", classification.IsAvailable).
		Msg("Page classified")
	return result
}

// maxBodyBytes caps how much of a product page is read for classification.
const maxBodyBytes = 4 << 20

func copyBody(dst io.Writer, resp *http.Response) (int64, error) {
	return io.Copy(dst, io.LimitReader(resp.Body, maxBodyBytes))
}

// waitBackoff sleeps the exponential backoff delay for the given completed
// attempt count, respecting context cancellation. Delay doubles per attempt:
// base, 2*base, 4*base...
func (p *Prober) waitBackoff(ctx context.Context, completedAttempts int) error {
	delay := time.Duration(math.Pow(2, float64(completedAttempts-1))) * p.cfg.BaseBackoff()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
