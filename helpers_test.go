package gridimpact_test

import (
	"context"

	gridimpact "github.com/superdango/grid-impact"
)

func testImpactTable() *gridimpact.ImpactTable {
	table := new(gridimpact.ImpactTable)
	for i, e := range gridimpact.Energies {
		for j := range gridimpact.ImpactCategories {
			table[e][j] = float64(i+1) * float64(j+1) / 100
		}
	}
	table[gridimpact.Coal][gridimpact.GWP] = 1
	table[gridimpact.Gas][gridimpact.GWP] = 0.5
	table[gridimpact.Hydro][gridimpact.GWP] = 0.02
	table[gridimpact.Wind][gridimpact.GWP] = 0.01
	return table
}

func mixOf(shares map[gridimpact.Energy]float64) gridimpact.Mix {
	var m gridimpact.Mix
	for e, v := range shares {
		m[e] = v
	}
	return m
}

type observation struct {
	region    gridimpact.Region
	period    gridimpact.Period
	continent gridimpact.Region
	mix       gridimpact.Mix
	generated gridimpact.TWh
	imported  gridimpact.TWh
}

// fakeSource ingests a fixed list of observations.
type fakeSource struct {
	name         string
	observations []observation
	finalize     []gridimpact.Region
	err          error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Ingest(ctx context.Context, store *gridimpact.Store, r gridimpact.Range) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	for _, o := range f.observations {
		if !r.Contains(o.period) {
			continue
		}
		store.ObservePeriod(o.period)
		store.SetContinent(o.region, o.continent)
		a := store.Upsert(o.region, o.period)
		a.Mix = o.mix
		a.Generated = o.generated
		a.Imported = o.imported
	}
	for _, country := range f.finalize {
		store.FinalizeSubdivisions(country)
	}
	return len(f.observations), nil
}
