package gridimpact

// FinalizeSubdivisions turns the absolute amounts accumulated for the
// subdivisions of country into shares, and estimates their imports as the
// country imports scaled by the subdivision share of national generation.
// It returns the number of aggregates finalized.
func (s *Store) FinalizeSubdivisions(country Region) int {
	finalized := 0
	for _, region := range s.Regions(SubdivisionClass) {
		if region.Country() != country {
			continue
		}
		for _, period := range s.Periods(region) {
			a, _ := s.Get(region, period)
			if a.Generated == 0 {
				a.Generated = TWh(a.Mix.Sum())
			}
			a.Mix = a.Mix.Normalize()

			a.Imported = 0
			if national, found := s.Get(country, period); found && national.Generated > PlaceholderTWh {
				a.Imported = national.Imported * a.Generated / national.Generated
			}
			finalized++
		}
	}
	return finalized
}

// Derive normalizes every mix and computes green ratios and impact vectors.
func (s *Store) Derive(table *ImpactTable) {
	s.ForEach(func(_ Region, _ Period, a *Aggregate) {
		a.Derive(table)
	})
}
