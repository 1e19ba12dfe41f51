// Package statcan ingests the monthly electricity generation of Canadian
// provinces and territories published by Statistics Canada (table 25-10-0015).
package statcan

import (
	"context"
	"fmt"
	"log/slog"

	gridimpact "github.com/superdango/grid-impact"
	"github.com/superdango/grid-impact/internal/fetch"
	"github.com/superdango/grid-impact/internal/records"
	"github.com/superdango/grid-impact/model/regions"
)

const (
	TableURL   = "https://www150.statcan.gc.ca/n1/tbl/csv/25100015-eng.zip"
	TableEntry = "25100015.csv"

	country         = gridimpact.Region("CA")
	allProducers    = "Total all classes of electricity producer"
	totalGeneration = "Total all types of electricity generation"
	combustibles    = "Total electricity production from combustible fuels"
)

var generationTypes = map[string]gridimpact.Energy{
	"Hydraulic turbine":     gridimpact.Hydro,
	"Wind power turbine":    gridimpact.Wind,
	"Solar":                 gridimpact.Solar,
	"Nuclear steam turbine": gridimpact.Nuclear,
}

type Option func(s *Source)

func WithClient(client *fetch.Client) Option {
	return func(s *Source) {
		s.client = client
	}
}

func WithCatalog(catalog *regions.Catalog) Option {
	return func(s *Source) {
		s.catalog = catalog
	}
}

// WithTable sets the URL of the zipped table and the name of its data entry.
func WithTable(url, entry string) Option {
	return func(s *Source) {
		s.url = url
		s.entry = entry
	}
}

type Source struct {
	client  *fetch.Client
	catalog *regions.Catalog
	url     string
	entry   string
}

func New(opts ...Option) *Source {
	s := &Source{
		client:  fetch.NewClient(),
		catalog: regions.Default(),
		url:     TableURL,
		entry:   TableEntry,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Source) Name() string {
	return "statcan"
}

type row struct {
	RefDate   string `mapstructure:"ref_date"`
	Geo       string `mapstructure:"geo"`
	Producers string `mapstructure:"class_of_electricity_producer"`
	Type      string `mapstructure:"type_of_electricity_generation"`
	Value     any    `mapstructure:"value"`
}

// amount returns the value of the row. Unavailable or suppressed values are
// written as symbols like ".." or "x".
func (r row) amount() (gridimpact.TWh, bool) {
	value, ok := r.Value.(float64)
	return gridimpact.MWh(value), ok
}

// Ingest accumulates provincial amounts then turns them into shares. The
// national mix of the same period must already be in the store to split
// combustible fuels.
func (s *Source) Ingest(ctx context.Context, store *gridimpact.Store, r gridimpact.Range) (int, error) {
	slog.Info("fetching energy data", "source", s.Name(), "url", s.url)

	body, err := s.client.ZipEntry(ctx, s.url, s.entry)
	if err != nil {
		return 0, &gridimpact.SourceErr{Err: err, Source: s.Name(), Operation: "download"}
	}
	defer body.Close()

	lines := 0
	_, err = records.Read(body, func(rec records.Record) error {
		ingested, err := s.ingestRecord(store, r, rec)
		if ingested {
			lines++
		}
		return err
	})
	if err != nil {
		return lines, &gridimpact.SourceErr{Err: err, Source: s.Name(), Operation: "ingest"}
	}

	finalized := store.FinalizeSubdivisions(country)
	slog.Info("energy data processed", "source", s.Name(), "lines", lines, "finalized", finalized)

	return lines, nil
}

func (s *Source) ingestRecord(store *gridimpact.Store, r gridimpact.Range, rec records.Record) (bool, error) {
	var line row
	if err := records.Decode(rec, &line); err != nil {
		return false, err
	}

	amount, available := line.amount()
	if line.Producers != allProducers || line.Geo == "Canada" || !available {
		return false, nil
	}

	period, err := gridimpact.ParsePeriod(line.RefDate)
	if err != nil || period.Granularity() != gridimpact.Monthly || !r.Contains(period) {
		return false, nil
	}

	energy, direct := generationTypes[line.Type]
	if !direct && line.Type != totalGeneration && line.Type != combustibles {
		return false, nil
	}

	region, err := s.catalog.SubdivisionByName(country, line.Geo)
	if err != nil {
		return false, fmt.Errorf("province %s: %w", line.Geo, err)
	}

	store.ObservePeriod(period)
	a := store.Upsert(region, period)

	switch {
	case direct:
		a.AddAmount(energy, amount)
	case line.Type == totalGeneration:
		a.Generated = max(amount, 0)
	default:
		for energy, share := range combustibleShares(store, period) {
			a.AddAmount(energy, gridimpact.TWh(amount.Float64()*share))
		}
	}

	return true, nil
}

// combustibleShares splits combustible generation like the national mix of
// period does. Without national data, everything is accounted as other fossil.
func combustibleShares(store *gridimpact.Store, period gridimpact.Period) map[gridimpact.Energy]float64 {
	national, found := store.Get(country, period)
	if !found {
		return map[gridimpact.Energy]float64{gridimpact.OtherFossil: 1}
	}

	total := 0.
	for _, energy := range gridimpact.Combustibles {
		total += national.Mix[energy]
	}
	if total <= 0 {
		return map[gridimpact.Energy]float64{gridimpact.OtherFossil: 1}
	}

	shares := make(map[gridimpact.Energy]float64, len(gridimpact.Combustibles))
	for _, energy := range gridimpact.Combustibles {
		shares[energy] = national.Mix[energy] / total
	}
	return shares
}
