package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"zillow-finder/models"
	"zillow-finder/utils"
)

// QueryInterpreter converts free text into a StructuredFilter.
type QueryInterpreter interface {
	Interpret(ctx context.Context, text string) (models.StructuredFilter, error)
}

// SearchExecutor fetches the summary rows behind a search URL. It blocks
// until the full list is available.
type SearchExecutor interface {
	ScrapeSearch(ctx context.Context, url string, maxPages int) ([]models.SummaryRow, error)
}

// DetailExecutor fetches detail records for a batch of canonical URLs. The
// returned order need not match urls, and records may be missing.
type DetailExecutor interface {
	ScrapeDetails(ctx context.Context, urls []string) ([]models.DetailRecord, error)
}

// Pipeline runs one query from free text to ranked listing cards.
type Pipeline struct {
	interpreter QueryInterpreter
	search      SearchExecutor
	details     DetailExecutor
	builder     *SearchURLBuilder
	validator   *DetailURLValidator
	merger      *Merger
	maxPages    int
	logger      *utils.Logger
}

// PipelineOptions wires a Pipeline.
type PipelineOptions struct {
	Interpreter QueryInterpreter
	Search      SearchExecutor
	Details     DetailExecutor
	Builder     *SearchURLBuilder
	Validator   *DetailURLValidator
	Merger      *Merger
	MaxPages    int
	Logger      *utils.Logger
}

// NewPipeline creates a Pipeline from opts.
func NewPipeline(opts PipelineOptions) *Pipeline {
	return &Pipeline{
		interpreter: opts.Interpreter,
		search:      opts.Search,
		details:     opts.Details,
		builder:     opts.Builder,
		validator:   opts.Validator,
		merger:      opts.Merger,
		maxPages:    opts.MaxPages,
		logger:      opts.Logger,
	}
}

// ProcessQuery interprets text, searches, fetches details, merges, filters
// by the query's price cap and ranks. It stops at the first terminal failure
// and returns a *PipelineError naming the stage.
func (p *Pipeline) ProcessQuery(ctx context.Context, text string) (*models.SearchResult, error) {
	res := &models.SearchResult{
		RunID:     uuid.NewString(),
		Query:     text,
		CreatedAt: time.Now(),
	}
	p.logger.Info("User query: %s", text)

	if ceiling, ok := PriceCeiling(text); ok {
		res.Ceiling = &ceiling
		p.logger.Info("Price cap: $%d", ceiling)
	}

	filter, err := p.interpreter.Interpret(ctx, text)
	if err != nil {
		p.logger.Error("Interpretation failed: %v", err)
		return nil, pipelineErr(ErrNotInterpretable, err)
	}
	res.Filter = filter

	searchURL, ok := p.builder.Build(filter)
	if !ok {
		p.logger.Error("Cannot build search URL from %+v", filter)
		return nil, pipelineErr(ErrNoLocation, nil)
	}
	res.SearchURL = searchURL
	p.logger.Info("Search URL: %s", searchURL)

	rows, err := p.search.ScrapeSearch(ctx, searchURL, p.maxPages)
	if err != nil {
		p.logger.Error("Search scrape failed: %v", err)
		return nil, pipelineErr(ErrSearchFailure, err)
	}
	res.Fetched = len(rows)
	p.logger.Info("Listings fetched: %d", len(rows))

	detailURLs := p.validator.SelectForDetailFetch(rows)
	p.logger.Info("Detail scrape batch: %d URLs", len(detailURLs))

	var records []models.DetailRecord
	if len(detailURLs) > 0 {
		records, err = p.details.ScrapeDetails(ctx, detailURLs)
		if err != nil {
			p.logger.Error("Detail scrape failed: %v", err)
			return nil, pipelineErr(ErrDetailFailure, err)
		}
		p.logger.Info("Detail scrape done: %d records", len(records))
	}

	cards := p.merger.Merge(rows, p.merger.IndexDetails(records))
	if res.Ceiling != nil {
		cards = ApplyCeiling(cards, *res.Ceiling)
	}
	p.logger.Info("Listings after price filter: %d", len(cards))

	res.Cards = Rank(cards)
	if len(res.Cards) == 0 {
		p.logger.Warn("Zero listings after validation/price filter")
	}
	return res, nil
}
