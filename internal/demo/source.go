// Package demo generates a deterministic synthetic feed used to run the
// pipeline without network access.
package demo

import (
	"context"
	"math/rand/v2"

	gridimpact "github.com/superdango/grid-impact"
	"github.com/superdango/grid-impact/model/regions"
)

// baseMix is the mix every generated region starts from before noise.
var baseMix = gridimpact.Mix{
	gridimpact.Bioenergy:       0.02,
	gridimpact.Coal:            0.35,
	gridimpact.Gas:             0.23,
	gridimpact.Hydro:           0.15,
	gridimpact.Nuclear:         0.09,
	gridimpact.OtherFossil:     0.03,
	gridimpact.OtherRenewables: 0.01,
	gridimpact.Solar:           0.05,
	gridimpact.Wind:            0.07,
}

type Option func(s *Source)

// WithSeed changes the generated values. The same seed always generates the
// same feed.
func WithSeed(seed uint64) Option {
	return func(s *Source) {
		s.seed = seed
	}
}

// WithCountries limits the feed to the first n countries of the catalog.
func WithCountries(n int) Option {
	return func(s *Source) {
		s.countries = n
	}
}

// WithLastMonth sets the last month published for the last year of the range.
func WithLastMonth(month int) Option {
	return func(s *Source) {
		s.lastMonth = month
	}
}

func WithCatalog(catalog *regions.Catalog) Option {
	return func(s *Source) {
		s.catalog = catalog
	}
}

// Source implements gridimpact.Source with fictive data.
type Source struct {
	catalog   *regions.Catalog
	seed      uint64
	countries int
	lastMonth int
}

func New(opts ...Option) *Source {
	s := &Source{
		catalog:   regions.Default(),
		seed:      2922,
		countries: 20,
		lastMonth: 12,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Source) Name() string {
	return "demo"
}

func (s *Source) Ingest(ctx context.Context, store *gridimpact.Store, r gridimpact.Range) (int, error) {
	rng := rand.New(rand.NewPCG(s.seed, s.seed))

	areas := append([]gridimpact.Region{gridimpact.World}, gridimpact.Continents...)
	countries := s.catalog.Countries()
	countries = countries[:min(s.countries, len(countries))]

	lines := 0
	for year := r.MinYear; year <= r.MaxYear; year++ {
		if err := ctx.Err(); err != nil {
			return lines, err
		}

		lastMonth := 12
		if year == r.MaxYear {
			lastMonth = s.lastMonth
		}

		for _, area := range areas {
			lines += s.generate(rng, store, area, year, lastMonth, 10_000)
		}
		for _, country := range countries {
			store.SetContinent(country.Region(), country.Continent)
			lines += s.generate(rng, store, country.Region(), year, lastMonth, 100)
		}
	}

	return lines, nil
}

// generate writes the yearly aggregate of region and its monthly ones up to
// lastMonth. It returns the number of aggregates written.
func (s *Source) generate(rng *rand.Rand, store *gridimpact.Store, region gridimpact.Region, year, lastMonth int, scale float64) int {
	yearly := store.Upsert(region, gridimpact.YearPeriod(year))
	yearly.Mix = noisyMix(rng, 0)
	yearly.Generated = gridimpact.TWh(scale * (0.5 + rng.Float64()))
	if region.Class() == gridimpact.CountryClass {
		yearly.Imported = gridimpact.TWh(scale * 0.1 * rng.Float64())
	}

	for month := 1; month <= lastMonth; month++ {
		period := gridimpact.MonthPeriod(year, month)
		store.ObservePeriod(period)

		monthly := store.Upsert(region, period)
		monthly.Mix = noisyMix(rng, month)
		monthly.Generated = yearly.Generated / 12
		monthly.Imported = yearly.Imported / 12
	}

	return lastMonth + 1
}

// noisyMix varies the base mix randomly, solar following the seasons when
// month is set.
func noisyMix(rng *rand.Rand, month int) gridimpact.Mix {
	monthlySolarCoefficient := map[int]float64{
		1: 0.4, 2: 0.5, 3: 0.8, 4: 1.0, 5: 1.3, 6: 1.5,
		7: 1.6, 8: 1.4, 9: 1.1, 10: 0.8, 11: 0.5, 12: 0.4,
	}

	mix := baseMix
	for _, energy := range gridimpact.Energies {
		mix[energy] *= 0.5 + rng.Float64()
	}
	if coefficient, found := monthlySolarCoefficient[month]; found {
		mix[gridimpact.Solar] *= coefficient
	}
	return mix.Normalize()
}
