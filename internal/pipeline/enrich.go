package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bumuk-library/leadctl/internal/config"
	"github.com/bumuk-library/leadctl/internal/model"
	"github.com/bumuk-library/leadctl/internal/resilience"
	"github.com/bumuk-library/leadctl/pkg/anthropic"
)

const enrichSystemPrompt = `You are a marketing analyst for a library business. ` +
	`You segment leads and recommend engagement strategies. ` +
	`Respond with a single JSON object and nothing else.`

// Enricher adds AI-generated insights to leads. Enrichment is additive: it
// never modifies fields the pipeline computed, and a failed call leaves the
// lead untouched.
type Enricher struct {
	client  anthropic.Client
	cfg     config.AnthropicConfig
	limiter *rate.Limiter
	retry   resilience.RetryConfig
	usage   anthropic.TokenUsage
}

// NewEnricher builds an Enricher around an Anthropic client.
func NewEnricher(client anthropic.Client, cfg config.AnthropicConfig) *Enricher {
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 1
	}
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("anthropic", "enrich")
	return &Enricher{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(perSec), 1),
		retry:   retry,
	}
}

// Usage reports cumulative token consumption across all enrichment calls.
func (e *Enricher) Usage() anthropic.TokenUsage {
	return e.usage
}

// EnrichAll enriches every lead in place. Per-lead failures are logged and
// skipped; only a canceled context aborts the loop.
func (e *Enricher) EnrichAll(ctx context.Context, leads []model.Lead) error {
	total := len(leads)
	enriched := 0
	for i := range leads {
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}

		ins, err := e.enrichOne(ctx, &leads[i])
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			zap.L().Warn("lead enrichment failed",
				zap.String("full_name", leads[i].FullName),
				zap.Error(err))
			continue
		}
		leads[i].Enrichment = ins
		enriched++

		if (i+1)%5 == 0 {
			zap.L().Info("enrichment progress",
				zap.Int("processed", i+1),
				zap.Int("total", total))
		}
	}

	zap.L().Info("enrichment complete",
		zap.Int("enriched", enriched),
		zap.Int("total", total),
		zap.Int64("input_tokens", e.usage.InputTokens),
		zap.Int64("output_tokens", e.usage.OutputTokens))

	return nil
}

func (e *Enricher) enrichOne(ctx context.Context, lead *model.Lead) (*model.Enrichment, error) {
	timeout := time.Duration(e.cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	temp := e.cfg.Temperature
	req := anthropic.MessageRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		System:      enrichSystemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildEnrichPrompt(lead)},
		},
	}

	// Each attempt gets its own timeout so a retry after a slow failure
	// still has the full window.
	resp, err := resilience.Do(ctx, e.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return e.client.CreateMessage(callCtx, req)
	})
	if err != nil {
		return nil, err
	}
	e.usage.Add(resp.Usage)

	return parseEnrichment(resp.Text)
}

func buildEnrichPrompt(lead *model.Lead) string {
	var sb strings.Builder
	sb.WriteString("Analyze this lead for a library business and provide:\n")
	sb.WriteString("1. Customer segment (parent, student, professional, senior, family, individual, etc.)\n")
	sb.WriteString("2. Potential value (Low/Medium/High based on usage patterns and family size)\n")
	sb.WriteString("3. Recommended engagement strategy\n")
	sb.WriteString("4. Key library benefits to highlight for this customer type\n\n")

	sb.WriteString("Lead information:\n")
	fmt.Fprintf(&sb, "Name: %s\n", orNA(lead.FullName))
	fmt.Fprintf(&sb, "Email: %s\n", orNA(lead.Email))
	fmt.Fprintf(&sb, "Phone: %s\n", orNA(lead.PhoneNumber))
	fmt.Fprintf(&sb, "City: %s\n", orNA(lead.City))
	fmt.Fprintf(&sb, "Child Age: %s\n", orNA(lead.ChildAge))
	fmt.Fprintf(&sb, "Lead Type: %s\n", orNA(lead.LeadType))
	fmt.Fprintf(&sb, "Source Sheet: %s\n", orNA(lead.SourceSheet))

	sb.WriteString("\nRespond in JSON format:\n")
	sb.WriteString(`{"customer_segment": "string", "potential_value": "Low/Medium/High", `)
	sb.WriteString(`"engagement_strategy": "string", "benefits": ["benefit1", "benefit2", "benefit3"]}`)

	return sb.String()
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

// parseEnrichment decodes the model's JSON reply, filling defaults for any
// missing fields.
func parseEnrichment(text string) (*model.Enrichment, error) {
	cleaned := cleanJSON(text)

	var raw struct {
		CustomerSegment    string   `json:"customer_segment"`
		PotentialValue     string   `json:"potential_value"`
		EngagementStrategy string   `json:"engagement_strategy"`
		Benefits           []string `json:"benefits"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, eris.Wrap(err, "pipeline: parse enrichment JSON")
	}

	ins := &model.Enrichment{
		CustomerSegment:    raw.CustomerSegment,
		PotentialValue:     raw.PotentialValue,
		EngagementStrategy: raw.EngagementStrategy,
		Benefits:           raw.Benefits,
	}
	if ins.CustomerSegment == "" {
		ins.CustomerSegment = "Unknown"
	}
	if ins.PotentialValue == "" {
		ins.PotentialValue = "Medium"
	}
	if ins.EngagementStrategy == "" {
		ins.EngagementStrategy = "Standard"
	}
	return ins, nil
}

// cleanJSON strips markdown fences and extracts the JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
