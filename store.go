package gridimpact

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Store maps regions and periods to their aggregate. It also owns the
// country to continent associations observed during ingestion. A Store has a
// single writer: the pipeline stage currently running.
type Store struct {
	aggregates map[Region]map[Period]*Aggregate
	continents map[Region]Region
	lastMonths map[int]int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		aggregates: make(map[Region]map[Period]*Aggregate),
		continents: make(map[Region]Region),
		lastMonths: make(map[int]int),
	}
}

// Get returns the aggregate of region at period. The returned aggregate is
// owned by the store and may be mutated in place.
func (s *Store) Get(region Region, period Period) (*Aggregate, bool) {
	periods, found := s.aggregates[region]
	if !found {
		return nil, false
	}
	a, found := periods[period]
	return a, found
}

// Set stores a copy of a for region at period, replacing any previous value.
func (s *Store) Set(region Region, period Period, a Aggregate) {
	periods, found := s.aggregates[region]
	if !found {
		periods = make(map[Period]*Aggregate)
		s.aggregates[region] = periods
	}
	periods[period] = &a
}

// Upsert returns the aggregate of region at period, creating an empty one on
// first observation.
func (s *Store) Upsert(region Region, period Period) *Aggregate {
	if a, found := s.Get(region, period); found {
		return a
	}
	s.Set(region, period, Aggregate{})
	a, _ := s.Get(region, period)
	return a
}

// Delete removes the aggregate of region at period. Regions left without
// periods are removed too.
func (s *Store) Delete(region Region, period Period) {
	periods, found := s.aggregates[region]
	if !found {
		return
	}
	delete(periods, period)
	if len(periods) == 0 {
		delete(s.aggregates, region)
	}
}

// DeleteDead removes every aggregate without generation, imports or mix and
// returns how many were removed.
func (s *Store) DeleteDead() int {
	deleted := 0
	for _, region := range s.Regions() {
		for _, period := range s.Periods(region) {
			if a, _ := s.Get(region, period); a.IsDead() {
				s.Delete(region, period)
				deleted++
			}
		}
	}
	return deleted
}

// Len returns the number of aggregates.
func (s *Store) Len() int {
	n := 0
	for _, periods := range s.aggregates {
		n += len(periods)
	}
	return n
}

// Regions returns the regions of the given classes, every region when no class
// is given, sorted.
func (s *Store) Regions(classes ...Class) []Region {
	regions := make([]Region, 0, len(s.aggregates))
	for region := range s.aggregates {
		if len(classes) > 0 && !slices.Contains(classes, region.Class()) {
			continue
		}
		regions = append(regions, region)
	}
	slices.Sort(regions)
	return regions
}

// Periods returns the periods of region in chronological order.
func (s *Store) Periods(region Region) []Period {
	return slices.Sorted(maps.Keys(s.aggregates[region]))
}

// ForEach calls fn for every aggregate, regions sorted and periods in
// chronological order.
func (s *Store) ForEach(fn func(region Region, period Period, a *Aggregate)) {
	for _, region := range s.Regions() {
		for _, period := range s.Periods(region) {
			fn(region, period, s.aggregates[region][period])
		}
	}
}

// SetContinent records the continent of country. The first association wins.
func (s *Store) SetContinent(country, continent Region) {
	if continent == "" {
		return
	}
	if _, found := s.continents[country]; found {
		return
	}
	s.continents[country] = continent
}

// Continent returns the continent recorded for country.
func (s *Store) Continent(country Region) (Region, bool) {
	continent, found := s.continents[country]
	return continent, found
}

// ObservePeriod records that source data exists for p.
func (s *Store) ObservePeriod(p Period) {
	if p.Granularity() != Monthly {
		return
	}
	s.lastMonths[p.Year()] = max(s.lastMonths[p.Year()], p.Month())
}

// LastMonth returns the latest month observed in year, 0 if none.
func (s *Store) LastMonth(year int) int {
	return s.lastMonths[year]
}

// Range returns the range from minYear to maxYear, published up to the last
// month observed in maxYear.
func (s *Store) Range(minYear, maxYear int) Range {
	return Range{MinYear: minYear, MaxYear: maxYear, LastMonth: s.LastMonth(maxYear)}
}

// Parents returns the fallback chain of region, closest parent first. A
// country without a recorded continent falls back to the world directly.
func (s *Store) Parents(region Region) []Region {
	switch region.Class() {
	case SubdivisionClass:
		country := region.Country()
		return append([]Region{country}, s.Parents(country)...)
	case CountryClass:
		if continent, found := s.continents[region]; found {
			return []Region{continent, World}
		}
		return []Region{World}
	case ContinentClass:
		return []Region{World}
	}
	return nil
}

// Parent returns the closest parent of region holding an aggregate at period.
func (s *Store) Parent(region Region, period Period) (Region, *Aggregate, bool) {
	for _, parent := range s.Parents(region) {
		if a, found := s.Get(parent, period); found {
			return parent, a, true
		}
	}
	return "", nil, false
}

// String returns a short description used in logs.
func (s *Store) String() string {
	counts := make([]string, 0, len(Classes))
	for _, class := range Classes {
		counts = append(counts, fmt.Sprintf("%s=%d", class, len(s.Regions(class))))
	}
	return strings.Join(counts, " ")
}
