package gridimpact

import (
	"fmt"
	"log/slog"
)

// Pass scopes one gap-filling sweep to a granularity and a region class.
type Pass struct {
	Granularity Granularity
	Class       Class
}

func (p Pass) String() string {
	return p.Granularity.String() + " " + p.Class.String()
}

// FillPasses is the order in which gaps are filled. Each pass relies on the
// previous ones: subdivisions need complete countries, countries complete
// continents, and monthly passes need the yearly aggregate of the same region.
var FillPasses = []Pass{
	{Yearly, WorldClass},
	{Yearly, ContinentClass},
	{Yearly, CountryClass},
	{Yearly, SubdivisionClass},
	{Monthly, WorldClass},
	{Monthly, ContinentClass},
	{Monthly, CountryClass},
	{Monthly, SubdivisionClass},
}

// PassReport counts the aggregates synthesized by one pass.
type PassReport struct {
	Pass      Pass
	Regions   int
	Additions int
}

// Fill synthesizes every aggregate missing from the region by period grid,
// running passes in order. Existing aggregates are never modified.
func (s *Store) Fill(r Range, passes []Pass) ([]PassReport, error) {
	reports := make([]PassReport, 0, len(passes))
	for _, pass := range passes {
		report := PassReport{Pass: pass}
		periods := r.Periods(pass.Granularity)
		for _, region := range s.Regions(pass.Class) {
			report.Regions++
			var last *Aggregate
			for _, period := range periods {
				if a, found := s.Get(region, period); found {
					last = a
					continue
				}

				synthesized, err := s.synthesize(region, period, last)
				if err != nil {
					return reports, fmt.Errorf("failed to fill %s pass: %w", pass, err)
				}
				s.Set(region, period, synthesized)
				last, _ = s.Get(region, period)
				report.Additions++
			}
		}
		slog.Debug("filled missing data", "pass", pass.String(), "regions", report.Regions, "additions", report.Additions)
		reports = append(reports, report)
	}
	return reports, nil
}

// synthesize builds the aggregate of region at period from, in order: the last
// known aggregate of the same pass, a twelfth of the yearly aggregate of a
// monthly period, the closest parent region at the same period.
func (s *Store) synthesize(region Region, period Period, last *Aggregate) (Aggregate, error) {
	if last != nil {
		return *last, nil
	}

	if period.Granularity() == Monthly {
		yearly, found := s.Get(region, period.YearPeriod())
		if !found {
			return Aggregate{}, fmt.Errorf("%w: region %s has no yearly data for %s", ErrMissingParent, region, period)
		}
		return yearly.MonthShare(), nil
	}

	if _, parent, found := s.Parent(region, period); found {
		return parent.Inherit(), nil
	}

	return Aggregate{}, fmt.Errorf("%w: region %s period %s", ErrMissingParent, region, period)
}
