package gridimpact

import "fmt"

// BlendImports mixes into every importing country the mix of its continent,
// weighted by the imported share of the electricity it consumes. Continents
// and the world are self-sufficient by definition and subdivisions do not
// track imports. Green impacts are blended with the same weights, only among
// the sides having green generation. It returns the number of aggregates
// updated.
func (s *Store) BlendImports(table *ImpactTable) (int, error) {
	updates := 0
	for _, region := range s.Regions(CountryClass) {
		for _, period := range s.Periods(region) {
			a, _ := s.Get(region, period)
			if a.Imported <= 0 {
				continue
			}

			_, continental, found := s.Parent(region, period)
			if !found {
				return updates, fmt.Errorf("%w: no continent data to blend imports of %s at %s", ErrMissingParent, region, period)
			}

			consumed := a.Consumed().Float64()
			local := a.Generated.Float64() / consumed
			imported := a.Imported.Float64() / consumed

			green := blendGreen(a, local, continental, imported)
			a.Mix = BlendMix(a.Mix, local, continental.Mix, imported)
			a.Derive(table)
			a.Green = green
			updates++
		}
	}
	return updates, nil
}

func blendGreen(a *Aggregate, local float64, continental *Aggregate, imported float64) Impacts {
	switch {
	case continental.GreenRatio <= 0:
		return a.Green
	case a.GreenRatio <= 0:
		return continental.Green
	}
	return CombineImpacts(a.Green, local, continental.Green, imported)
}
