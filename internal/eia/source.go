// Package eia ingests the monthly electricity generation of US states from
// the U.S. Energy Information Administration API.
package eia

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	gridimpact "github.com/superdango/grid-impact"
	"github.com/superdango/grid-impact/internal/fetch"
	"github.com/superdango/grid-impact/internal/records"
	"github.com/superdango/grid-impact/model/regions"
)

const (
	BaseURL = "https://api.eia.gov/v2/electricity/electric-power-operational-data/data/"

	country       = gridimpact.Region("US")
	allSectors    = "99"
	allFuels      = "ALL"
	defaultLength = 5000
)

// fuels maps EIA fuel type codes to energies. Aggregated codes (FOS, REN,
// COL...) are left out so that no generation is counted twice.
var fuels = map[string]gridimpact.Energy{
	"COW": gridimpact.Coal,
	"NG":  gridimpact.Gas,
	"OOG": gridimpact.OtherFossil,
	"PET": gridimpact.OtherFossil,
	"OTH": gridimpact.OtherFossil,
	"NUC": gridimpact.Nuclear,
	"HYC": gridimpact.Hydro,
	"HPS": gridimpact.Hydro,
	"WND": gridimpact.Wind,
	"SUN": gridimpact.Solar,
	"WWW": gridimpact.Bioenergy,
	"WAS": gridimpact.Bioenergy,
	"GEO": gridimpact.OtherRenewables,
}

// ErrMissingAPIKey is returned by New without an API key.
var ErrMissingAPIKey = errors.New("eia api key is not set")

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

func WithAPIKey(key string) Option {
	return func(s *Source) {
		s.apiKey = key
	}
}

func WithBaseURL(baseURL string) Option {
	return func(s *Source) {
		s.baseURL = baseURL
	}
}

// WithPageLength sets the number of rows requested per page.
func WithPageLength(length int) Option {
	return func(s *Source) {
		s.length = length
	}
}

type Source struct {
	client  *fetch.Client
	catalog *regions.Catalog
	apiKey  string
	baseURL string
	length  int
}

func New(opts ...Option) (*Source, error) {
	s := &Source{
		client:  fetch.NewClient(),
		catalog: regions.Default(),
		baseURL: BaseURL,
		length:  defaultLength,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if s.length <= 0 {
		return nil, fmt.Errorf("invalid page length %d", s.length)
	}

	return s, nil
}

func (s *Source) Name() string {
	return "eia"
}

type page struct {
	Response struct {
		Total int   `mapstructure:"total"`
		Data  []row `mapstructure:"data"`
	} `mapstructure:"response"`
}

type row struct {
	Period     string   `mapstructure:"period"`
	Location   string   `mapstructure:"location"`
	FuelType   string   `mapstructure:"fueltypeid"`
	Generation *float64 `mapstructure:"generation"`
}

func (s *Source) pageURL(r gridimpact.Range, offset int) string {
	query := url.Values{}
	query.Set("api_key", s.apiKey)
	query.Set("frequency", "monthly")
	query.Set("data[0]", "generation")
	query.Set("facets[sectorid][]", allSectors)
	query.Set("start", string(gridimpact.MonthPeriod(r.MinYear, 1)))
	query.Set("end", string(gridimpact.MonthPeriod(r.MaxYear, 12)))
	query.Set("sort[0][column]", "period")
	query.Set("sort[0][direction]", "asc")
	query.Set("offset", strconv.Itoa(offset))
	query.Set("length", strconv.Itoa(s.length))
	return s.baseURL + "?" + query.Encode()
}

// Ingest requests pages until an empty one is returned, then turns the
// accumulated state amounts into shares.
func (s *Source) Ingest(ctx context.Context, store *gridimpact.Store, r gridimpact.Range) (int, error) {
	slog.Info("fetching energy data", "source", s.Name(), "url", s.baseURL)

	lines := 0
	for offset := 0; ; {
		raw, err := fetch.GetJSON[map[string]any](ctx, s.client, s.pageURL(r, offset))
		if err != nil {
			return lines, &gridimpact.SourceErr{Err: err, Source: s.Name(), Operation: "download"}
		}

		var p page
		if err := records.Decode(raw, &p); err != nil {
			return lines, &gridimpact.SourceErr{Err: err, Source: s.Name(), Operation: "decode"}
		}
		if len(p.Response.Data) == 0 {
			break
		}

		for _, line := range p.Response.Data {
			ingested, err := s.ingestRow(store, r, line)
			if err != nil {
				return lines, &gridimpact.SourceErr{Err: err, Source: s.Name(), Operation: "ingest"}
			}
			if ingested {
				lines++
			}
		}

		offset += len(p.Response.Data)
		slog.Debug("energy data page processed", "source", s.Name(), "offset", offset, "total", p.Response.Total)
	}

	finalized := store.FinalizeSubdivisions(country)
	slog.Info("energy data processed", "source", s.Name(), "lines", lines, "finalized", finalized)

	return lines, nil
}

func (s *Source) ingestRow(store *gridimpact.Store, r gridimpact.Range, line row) (bool, error) {
	// regions and the national total are written with other codes
	if len(line.Location) != 2 || line.Location == string(country) || line.Generation == nil {
		return false, nil
	}

	energy, categorized := fuels[line.FuelType]
	if !categorized && line.FuelType != allFuels {
		return false, nil
	}

	period, err := gridimpact.ParsePeriod(line.Period)
	if err != nil || !r.Contains(period) {
		return false, nil
	}

	subdivision, err := s.catalog.Subdivision(gridimpact.Subdivision(country, line.Location))
	if err != nil {
		return false, err
	}

	store.ObservePeriod(period)
	a := store.Upsert(subdivision.Region(), period)
	amount := gridimpact.ThousandMWh(*line.Generation)
	if categorized {
		a.AddAmount(energy, amount)
	} else {
		a.Generated = max(amount, 0)
	}

	return true, nil
}
