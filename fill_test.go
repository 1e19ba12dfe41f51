package gridimpact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gridimpact "github.com/superdango/grid-impact"
)

var (
	coalMix  = mixOf(map[gridimpact.Energy]float64{gridimpact.Coal: 1})
	gasMix   = mixOf(map[gridimpact.Energy]float64{gridimpact.Gas: 1})
	windMix  = mixOf(map[gridimpact.Energy]float64{gridimpact.Wind: 1})
	hydroMix = mixOf(map[gridimpact.Energy]float64{gridimpact.Hydro: 1})
)

func sparseStore() *gridimpact.Store {
	store := gridimpact.NewStore()
	store.SetContinent("FR", "Europe")
	store.SetContinent("DE", "Europe")

	store.Set(gridimpact.World, "2021", gridimpact.Aggregate{Mix: gasMix, Generated: 100})
	store.Set(gridimpact.World, "2021-01", gridimpact.Aggregate{Mix: gasMix, Generated: 8})
	store.Set("Europe", "2022", gridimpact.Aggregate{Mix: windMix, Generated: 50})
	store.Set("FR", "2021", gridimpact.Aggregate{Mix: coalMix, Generated: 10, Imported: 1})
	store.Set("FR", "2022-06", gridimpact.Aggregate{Mix: hydroMix, Generated: 2})
	store.Set("DE", "2022", gridimpact.Aggregate{Mix: windMix, Generated: 20})
	store.Set("US", "2021", gridimpact.Aggregate{Mix: windMix, Generated: 30})
	store.Set("US-TX", "2022-03", gridimpact.Aggregate{Mix: gasMix, Generated: 5})
	store.Set("BR", "2022-02", gridimpact.Aggregate{Mix: hydroMix, Generated: 4})
	return store
}

var fillRange = gridimpact.Range{MinYear: 2021, MaxYear: 2022, LastMonth: 12}

func TestFillCompleteness(t *testing.T) {
	store := sparseStore()
	_, err := store.Fill(fillRange, gridimpact.FillPasses)
	require.NoError(t, err)

	for _, region := range store.Regions() {
		for _, g := range []gridimpact.Granularity{gridimpact.Yearly, gridimpact.Monthly} {
			for _, period := range fillRange.Periods(g) {
				_, found := store.Get(region, period)
				assert.True(t, found, "%s %s", region, period)
			}
		}
	}
}

func TestFillFallbackChain(t *testing.T) {
	store := sparseStore()
	reports, err := store.Fill(fillRange, gridimpact.FillPasses)
	require.NoError(t, err)
	require.Len(t, reports, len(gridimpact.FillPasses))

	// last known good is carried forward
	world, _ := store.Get(gridimpact.World, "2022")
	assert.Equal(t, gasMix, world.Mix)
	assert.Equal(t, gridimpact.TWh(100), world.Generated)

	// a continent without earlier data inherits the world
	europe, _ := store.Get("Europe", "2021")
	assert.Equal(t, gasMix, europe.Mix)
	assert.Equal(t, gridimpact.PlaceholderTWh, europe.Generated)
	assert.Equal(t, gridimpact.TWh(0), europe.Imported)

	// a country inherits its continent
	de, _ := store.Get("DE", "2021")
	assert.Equal(t, gasMix, de.Mix)
	assert.Equal(t, gridimpact.PlaceholderTWh, de.Generated)

	// a country without recorded continent inherits the world
	br, _ := store.Get("BR", "2021")
	assert.Equal(t, gasMix, br.Mix)
	br, _ = store.Get("BR", "2022")
	assert.Equal(t, gasMix, br.Mix)

	// a subdivision inherits its country
	tx, _ := store.Get("US-TX", "2021")
	assert.Equal(t, windMix, tx.Mix)
	assert.Equal(t, gridimpact.PlaceholderTWh, tx.Generated)

	// the first month of a region takes a twelfth of its yearly aggregate
	fr, _ := store.Get("FR", "2021-01")
	assert.Equal(t, coalMix, fr.Mix)
	assert.InDelta(t, 10.0/12, fr.Generated.Float64(), 1e-12)
	assert.InDelta(t, 1.0/12, fr.Imported.Float64(), 1e-12)
	fr, _ = store.Get("FR", "2021-12")
	assert.InDelta(t, 10.0/12, fr.Generated.Float64(), 1e-12)

	// then months carry the last known one, observed data included
	fr, _ = store.Get("FR", "2022-05")
	assert.Equal(t, coalMix, fr.Mix)
	fr, _ = store.Get("FR", "2022-07")
	assert.Equal(t, hydroMix, fr.Mix)

	// months before the first observation carry the yearly aggregate
	tx, _ = store.Get("US-TX", "2021-01")
	assert.Equal(t, windMix, tx.Mix)
	assert.Equal(t, gridimpact.PlaceholderTWh, tx.Generated)
	tx, _ = store.Get("US-TX", "2022-02")
	assert.Equal(t, windMix, tx.Mix)
	tx, _ = store.Get("US-TX", "2022-03")
	assert.Equal(t, gridimpact.TWh(5), tx.Generated)
}

func TestFillReports(t *testing.T) {
	store := gridimpact.NewStore()
	store.Set(gridimpact.World, "2021", gridimpact.Aggregate{Mix: gasMix, Generated: 1})

	reports, err := store.Fill(gridimpact.Range{MinYear: 2021, MaxYear: 2021}, gridimpact.FillPasses)
	require.NoError(t, err)
	assert.Equal(t, gridimpact.Pass{Granularity: gridimpact.Yearly, Class: gridimpact.WorldClass}, reports[0].Pass)
	assert.Equal(t, 0, reports[0].Additions)
	assert.Equal(t, 1, reports[0].Regions)
	assert.Equal(t, 12, reports[4].Additions)
	assert.Equal(t, "monthly world", reports[4].Pass.String())
}

func TestFillMissingParent(t *testing.T) {
	store := gridimpact.NewStore()
	store.Set(gridimpact.World, "2022", gridimpact.Aggregate{Mix: gasMix, Generated: 1})

	_, err := store.Fill(fillRange, gridimpact.FillPasses)
	assert.ErrorIs(t, err, gridimpact.ErrMissingParent)

	store = gridimpact.NewStore()
	store.Set("FR", "2022", gridimpact.Aggregate{Mix: gasMix, Generated: 1})
	_, err = store.Fill(fillRange, gridimpact.FillPasses)
	assert.ErrorIs(t, err, gridimpact.ErrMissingParent)
}

func TestFillMonthlyWithoutYearly(t *testing.T) {
	store := gridimpact.NewStore()
	store.Set(gridimpact.World, "2021-02", gridimpact.Aggregate{Mix: gasMix, Generated: 1})

	monthlyOnly := []gridimpact.Pass{{Granularity: gridimpact.Monthly, Class: gridimpact.WorldClass}}
	_, err := store.Fill(gridimpact.Range{MinYear: 2021, MaxYear: 2021}, monthlyOnly)
	assert.ErrorIs(t, err, gridimpact.ErrMissingParent)
}

func TestFillDeterminism(t *testing.T) {
	first, second := sparseStore(), sparseStore()
	_, err := first.Fill(fillRange, gridimpact.FillPasses)
	require.NoError(t, err)
	_, err = second.Fill(fillRange, gridimpact.FillPasses)
	require.NoError(t, err)

	require.Equal(t, first.Regions(), second.Regions())
	first.ForEach(func(region gridimpact.Region, period gridimpact.Period, a *gridimpact.Aggregate) {
		b, found := second.Get(region, period)
		require.True(t, found)
		assert.Equal(t, *a, *b, "%s %s", region, period)
	})

	// filling a complete store adds nothing
	reports, err := first.Fill(fillRange, gridimpact.FillPasses)
	require.NoError(t, err)
	for _, report := range reports {
		assert.Zero(t, report.Additions, report.Pass.String())
	}
}
