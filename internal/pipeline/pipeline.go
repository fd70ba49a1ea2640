// Package pipeline implements the lead cleaning pipeline: column
// normalization, field cleaning, deduplication, scoring, and optional AI
// enrichment.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bumuk-library/leadctl/internal/config"
	"github.com/bumuk-library/leadctl/internal/model"
	"github.com/bumuk-library/leadctl/internal/sheet"
)

// Pipeline runs the cleaning stages over a workbook's sheets.
type Pipeline struct {
	cfg       *config.Config
	rules     []ColumnRule
	overrides []SheetOverride
	enricher  *Enricher
	now       func() time.Time
}

// Option configures optional Pipeline behavior.
type Option func(*Pipeline)

// WithEnricher enables the AI enrichment stage.
func WithEnricher(e *Enricher) Option {
	return func(p *Pipeline) { p.enricher = e }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a Pipeline with the default column rules and sheet overrides.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		rules:     DefaultColumnRules(),
		overrides: DefaultSheetOverrides(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result summarizes one pipeline run.
type Result struct {
	Leads []model.Lead
	// Log records one human-readable line per stage, in order.
	Log []string

	RawRows    int
	Duplicates int
	Enriched   int
}

// Run executes the pipeline over the given sheets.
func (p *Pipeline) Run(ctx context.Context, sheets []sheet.Sheet) (*Result, error) {
	start := time.Now()
	log := zap.L()
	log.Info("pipeline: starting", zap.Int("sheets", len(sheets)))

	result := &Result{}
	stageLog := func(format string, args ...any) {
		result.Log = append(result.Log, fmt.Sprintf(format, args...))
	}

	records, err := NormalizeColumns(sheets, p.rules, p.overrides)
	if err != nil {
		return nil, &StageError{Stage: "normalize_columns", Err: err}
	}
	result.RawRows = len(records)
	stageLog("normalized %d sheets into %d rows", len(sheets), len(records))

	records = CleanPhones(records)
	records = CleanEmails(records)
	records = CleanNames(records)
	records = CleanAddresses(records)
	stageLog("cleaned phone, email, name, and address fields")

	deduped := Deduplicate(records, p.cfg.Pipeline.SheetPriority)
	result.Duplicates = len(records) - len(deduped)
	stageLog("removed %d duplicates, %d leads remain", result.Duplicates, len(deduped))

	leads := AttachMetadata(deduped, p.cfg.Pipeline.Scoring, p.now())
	stageLog("scored %d leads", len(leads))

	if p.enricher != nil {
		if err := p.enricher.EnrichAll(ctx, leads); err != nil {
			return nil, &StageError{Stage: "enrich", Err: err}
		}
		for i := range leads {
			if leads[i].Enrichment != nil {
				result.Enriched++
			}
		}
		stageLog("enriched %d of %d leads", result.Enriched, len(leads))
	}

	result.Leads = leads

	log.Info("pipeline: complete",
		zap.Int("raw_rows", result.RawRows),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("leads", len(leads)),
		zap.Int("enriched", result.Enriched),
		zap.Duration("duration", time.Since(start)))

	return result, nil
}
