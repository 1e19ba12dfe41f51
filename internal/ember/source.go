// Package ember ingests the yearly and monthly electricity data published
// by Ember for every country, continent and the world.
package ember

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	gridimpact "github.com/superdango/grid-impact"
	"github.com/superdango/grid-impact/internal/fetch"
	"github.com/superdango/grid-impact/internal/records"
	"github.com/superdango/grid-impact/model/regions"
)

const (
	Domain      = "https://ember-climate.org"
	YearlyPage  = Domain + "/data-catalogue/yearly-electricity-data/"
	MonthlyPage = Domain + "/data-catalogue/monthly-electricity-data/"
)

var linkPattern = regexp.MustCompile(`/app/uploads/[^/]+/[^/]+/[^.]+\.csv`)

type Option func(s *Source)

// WithClient sets the HTTP client used to download the feeds.
func WithClient(client *fetch.Client) Option {
	return func(s *Source) {
		s.client = client
	}
}

// WithCatalog sets the catalog resolving alpha-3 country codes.
func WithCatalog(catalog *regions.Catalog) Option {
	return func(s *Source) {
		s.catalog = catalog
	}
}

// WithPages sets the data catalogue pages the feed links are scraped from.
func WithPages(pages ...string) Option {
	return func(s *Source) {
		s.pages = pages
	}
}

// WithFeeds sets direct feed URLs. Pages are not scraped when feeds are set.
func WithFeeds(feeds ...string) Option {
	return func(s *Source) {
		s.feeds = feeds
	}
}

// Source reads the yearly feed then the monthly one.
type Source struct {
	client  *fetch.Client
	catalog *regions.Catalog
	pages   []string
	feeds   []string
}

func New(opts ...Option) *Source {
	s := &Source{
		client:  fetch.NewClient(),
		catalog: regions.Default(),
		pages:   []string{YearlyPage, MonthlyPage},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Source) Name() string {
	return "ember"
}

// row is one line of a yearly or monthly feed. Yearly feeds set Year,
// monthly feeds set Date.
type row struct {
	CountryCode string    `mapstructure:"country_code"`
	Area        string    `mapstructure:"area"`
	AreaType    string    `mapstructure:"area_type"`
	EmberRegion string    `mapstructure:"ember_region"`
	Year        int       `mapstructure:"year"`
	Date        time.Time `mapstructure:"date"`
	Category    string    `mapstructure:"category"`
	Subcategory string    `mapstructure:"subcategory"`
	Variable    string    `mapstructure:"variable"`
	Unit        string    `mapstructure:"unit"`
	Value       *float64  `mapstructure:"value"`
}

func (r row) period() (gridimpact.Period, bool) {
	switch {
	case r.Year > 0:
		return gridimpact.YearPeriod(r.Year), true
	case !r.Date.IsZero():
		return gridimpact.DatePeriod(r.Date), true
	}
	return "", false
}

func (r row) isCountry() bool {
	return strings.HasPrefix(r.AreaType, "Country")
}

func (s *Source) Ingest(ctx context.Context, store *gridimpact.Store, r gridimpact.Range) (int, error) {
	feeds := s.feeds
	if len(feeds) == 0 {
		for _, page := range s.pages {
			feed, err := s.client.Scrape(ctx, page, linkPattern)
			if err != nil {
				return 0, &gridimpact.SourceErr{Err: err, Source: s.Name(), Operation: "scrape"}
			}
			feeds = append(feeds, feed)
		}
	}

	total := 0
	for _, feed := range feeds {
		lines, err := s.ingestFeed(ctx, store, r, feed)
		total += lines
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

func (s *Source) ingestFeed(ctx context.Context, store *gridimpact.Store, r gridimpact.Range, feed string) (int, error) {
	slog.Info("fetching energy data", "source", s.Name(), "url", feed)

	body, err := s.client.Open(ctx, feed)
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
		return lines, &gridimpact.SourceErr{Err: err, Source: s.Name(), Operation: "ingest " + feed}
	}

	slog.Info("energy data processed", "source", s.Name(), "url", feed, "lines", lines)
	return lines, nil
}

// ingestRecord applies one row to the store and reports whether it was kept.
func (s *Source) ingestRecord(store *gridimpact.Store, r gridimpact.Range, rec records.Record) (bool, error) {
	var line row
	if err := records.Decode(rec, &line); err != nil {
		return false, err
	}

	period, found := line.period()
	if !found || !r.Contains(period) {
		return false, nil
	}

	region := gridimpact.Region(line.Area)
	if line.isCountry() {
		country, err := s.catalog.CountryByAlpha3(line.CountryCode)
		if err != nil {
			return false, fmt.Errorf("area %s: %w", line.Area, err)
		}
		region = country.Region()
	} else if region.Class() != gridimpact.WorldClass && region.Class() != gridimpact.ContinentClass {
		// aggregates of countries other than continents, the EU or G20 for example
		return false, nil
	}

	store.ObservePeriod(period)
	if line.isCountry() {
		store.SetContinent(region, gridimpact.Region(line.EmberRegion))
	}

	if line.Value == nil {
		return false, nil
	}
	value := *line.Value

	switch {
	case line.Category == "Electricity generation" && line.Subcategory == "Fuel" && line.Unit == "%":
		energy, found := gridimpact.ParseEnergy(line.Variable)
		if !found {
			return false, nil
		}
		store.Upsert(region, period).SetShare(energy, value/100)
	case line.Category == "Electricity generation" && line.Subcategory == "Total" && line.Unit == "TWh":
		store.Upsert(region, period).Generated = gridimpact.TWh(value)
	case line.Category == "Electricity imports" && line.Unit == "TWh":
		// net exporters report negative imports
		store.Upsert(region, period).Imported = gridimpact.TWh(max(value, 0))
	default:
		return false, nil
	}

	return true, nil
}
