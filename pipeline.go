package gridimpact

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// PipelineOption configures a Pipeline.
type PipelineOption func(p *Pipeline)

// WithSources appends sources, ingested in the given order.
func WithSources(sources ...Source) PipelineOption {
	return func(p *Pipeline) {
		p.sources = append(p.sources, sources...)
	}
}

// WithImpactTable sets the impact vectors of every energy.
func WithImpactTable(table *ImpactTable) PipelineOption {
	return func(p *Pipeline) {
		p.table = table
	}
}

// WithYears bounds the periods of the run. A zero maxYear means the current year.
func WithYears(minYear, maxYear int) PipelineOption {
	return func(p *Pipeline) {
		p.minYear = minYear
		if maxYear > 0 {
			p.maxYear = maxYear
		}
	}
}

// Pipeline ingests every source, fills gaps, derives impacts and blends
// imports. It is the single writer of the store it builds.
type Pipeline struct {
	sources []Source
	table   *ImpactTable
	minYear int
	maxYear int
}

// SourceReport summarizes the ingestion of one source.
type SourceReport struct {
	Name     string        `json:"name"`
	Lines    int           `json:"lines"`
	Deleted  int           `json:"deleted"`
	Passes   []PassReport  `json:"-"`
	Duration time.Duration `json:"duration_ns"`
}

// Report summarizes a pipeline run.
type Report struct {
	Range      Range
	Sources    []SourceReport
	Blended    int
	Aggregates int
}

// NewPipeline returns a pipeline covering 2019 to the current year.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		sources: make([]Source, 0),
		minYear: 2019,
		maxYear: time.Now().UTC().Year(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run builds the store from scratch. Any error aborts the whole run: the
// returned store must not be exported.
func (p *Pipeline) Run(ctx context.Context) (*Store, *Report, error) {
	if p.table == nil {
		return nil, nil, fmt.Errorf("impact table is not set")
	}
	if len(p.sources) == 0 {
		return nil, nil, fmt.Errorf("no source configured")
	}
	if p.minYear > p.maxYear {
		return nil, nil, fmt.Errorf("min year %d is after max year %d", p.minYear, p.maxYear)
	}

	store := NewStore()
	r := Range{MinYear: p.minYear, MaxYear: p.maxYear, LastMonth: 12}
	report := &Report{}

	for _, source := range p.sources {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		start := time.Now()
		slog.Info("ingesting source", "source", source.Name())
		lines, err := source.Ingest(ctx, store, r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to ingest %s: %w", source.Name(), err)
		}

		deleted := store.DeleteDead()
		passes, err := store.Fill(r, FillPasses)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fill gaps after %s: %w", source.Name(), err)
		}

		sourceReport := SourceReport{
			Name:     source.Name(),
			Lines:    lines,
			Deleted:  deleted,
			Passes:   passes,
			Duration: time.Since(start),
		}
		report.Sources = append(report.Sources, sourceReport)
		slog.Info("source ingested", "source", source.Name(), "lines", lines, "deleted", deleted, "additions", sourceReport.Additions(), "regions", store.String())
	}

	r = store.Range(r.MinYear, r.MaxYear)

	slog.Info("deriving impacts and green ratios")
	store.Derive(p.table)

	blended, err := store.BlendImports(p.table)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to blend imports: %w", err)
	}
	slog.Info("energy imports taken into account", "updates", blended)

	report.Range = r
	report.Blended = blended
	report.Aggregates = store.Len()

	return store, report, nil
}

// Additions returns the number of aggregates synthesized after the source.
func (r SourceReport) Additions() int {
	additions := 0
	for _, pass := range r.Passes {
		additions += pass.Additions
	}
	return additions
}
