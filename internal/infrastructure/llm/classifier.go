package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"RegulatorScanner/internal/config"
	"RegulatorScanner/internal/domain"
	"RegulatorScanner/internal/ports"
)

const (
	// Articles below this length carry too little signal to classify.
	minTextForAnalysis = 100
	// Extra backoff applied once when the provider signals rate limiting.
	rateLimitBackoff = 30 * time.Second
)

// Classifier enriches articles through an OpenAI-compatible chat-completions
// API: one call each for summary, impact rating, and industry tags, with a
// fixed delay between calls to respect provider quotas. Enrichment is
// advisory; every failure path fills documented defaults and moves on.
type Classifier struct {
	endpoint       string
	model          string
	apiKey         string
	rateLimitDelay time.Duration
	maxPromptChars int
	httpClient     *http.Client
	logger         *slog.Logger
}

var _ ports.Enricher = (*Classifier)(nil)

// NewClassifier builds a client from configuration. An empty API key yields
// a globally disabled engine that only hands out defaults.
func NewClassifier(cfg config.OpenAIConfig, logger *slog.Logger) *Classifier {
	maxChars := cfg.MaxPromptChars
	if maxChars <= 0 {
		maxChars = 6000
	}
	return &Classifier{
		endpoint:       cfg.Endpoint,
		model:          cfg.Model,
		apiKey:         cfg.APIKey,
		rateLimitDelay: cfg.RateLimitDelay.Std(),
		maxPromptChars: maxChars,
		httpClient:     &http.Client{Timeout: 60 * time.Second},
		logger:         logger,
	}
}

// Enabled reports whether the engine has a credential to work with.
func (c *Classifier) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Enrich assigns summary, impact, and industries to the article in place.
// Already-enriched articles are left untouched.
func (c *Classifier) Enrich(ctx context.Context, article *domain.Article) {
	if article == nil || article.Enriched() {
		return
	}

	if !c.Enabled() {
		applyDefaults(article,
			"AI analysis not available (no API key configured)",
			domain.RatingNotRated,
			"AI analysis not available")
		return
	}

	if !usableText(article.FullText) {
		applyDefaults(article,
			"Insufficient article text for AI analysis",
			domain.RatingNotRated,
			"Insufficient text for assessment")
		return
	}

	c.enrichSummary(ctx, article)
	c.pause(ctx)
	c.enrichImpact(ctx, article)
	c.pause(ctx)
	c.enrichIndustries(ctx, article)
}

func (c *Classifier) enrichSummary(ctx context.Context, article *domain.Article) {
	reply, err := c.complete(ctx, summaryPrompt(article, c.maxPromptChars))
	if err != nil {
		c.warn("summary call failed", article, err)
		article.AISummary = "AI summary unavailable"
		return
	}

	summary := strings.TrimSpace(reply)
	if summary == "" {
		summary = "AI summary unavailable"
	}
	article.AISummary = summary
}

func (c *Classifier) enrichImpact(ctx context.Context, article *domain.Article) {
	reply, err := c.complete(ctx, impactPrompt(article, c.maxPromptChars))
	if err != nil {
		c.warn("impact call failed", article, err)
		article.Impact = domain.Impact{
			Rating:     domain.RatingFailed,
			Rationale:  "Risk assessment unavailable",
			Confidence: domain.ConfidenceNotAvailable,
		}
		return
	}

	article.Impact = parseImpact(reply)
}

func (c *Classifier) enrichIndustries(ctx context.Context, article *domain.Article) {
	reply, err := c.complete(ctx, industryPrompt(article, c.maxPromptChars))
	if err != nil {
		c.warn("industry call failed", article, err)
		article.Industries = []string{domain.IndustryOther}
		article.IndustryRationale = "Industry classification unavailable"
		article.IndustryConfidence = domain.ConfidenceNotAvailable
		return
	}

	industries, rationale, confidence := parseIndustries(reply)
	article.Industries = industries
	article.IndustryRationale = rationale
	article.IndustryConfidence = confidence
}

// complete posts one prompt and returns the assistant's reply text. A 429
// gets a single long backoff and retry before counting as a failure.
func (c *Classifier) complete(ctx context.Context, prompt string) (string, error) {
	reply, status, err := c.completeOnce(ctx, prompt)
	if status == http.StatusTooManyRequests {
		if sleepErr := sleepCtx(ctx, rateLimitBackoff); sleepErr != nil {
			return "", sleepErr
		}
		reply, _, err = c.completeOnce(ctx, prompt)
	}
	return reply, err
}

func (c *Classifier) completeOnce(ctx context.Context, prompt string) (string, int, error) {
	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": "You analyse Australian financial regulator media releases."},
			{"role": "user", "content": prompt},
		},
	})
	if err != nil {
		return "", 0, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("call completion api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", resp.StatusCode, fmt.Errorf("completion api %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", resp.StatusCode, fmt.Errorf("completion response has no choices")
	}

	return parsed.Choices[0].Message.Content, resp.StatusCode, nil
}

func (c *Classifier) pause(ctx context.Context) {
	_ = sleepCtx(ctx, c.rateLimitDelay)
}

func (c *Classifier) warn(msg string, article *domain.Article, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, "link", article.Link, "error", err)
	}
}

func applyDefaults(article *domain.Article, summary, rating, rationale string) {
	article.AISummary = summary
	article.Impact = domain.Impact{
		Rating:     rating,
		Rationale:  rationale,
		Confidence: domain.ConfidenceNotAvailable,
	}
	article.Industries = []string{domain.IndustryOther}
	article.IndustryRationale = rationale
	article.IndustryConfidence = domain.ConfidenceNotAvailable
}

func usableText(text string) bool {
	if len(text) < minTextForAnalysis {
		return false
	}
	if strings.HasPrefix(text, "Error fetching content") {
		return false
	}
	if text == "Content not available" {
		return false
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
