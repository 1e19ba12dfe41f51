package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gridimpact "github.com/superdango/grid-impact"
)

func TestIngest(t *testing.T) {
	r := gridimpact.Range{MinYear: 2022, MaxYear: 2023}
	source := New(WithCountries(3), WithLastMonth(6))
	assert.Equal(t, "demo", source.Name())

	store := gridimpact.NewStore()
	lines, err := source.Ingest(t.Context(), store, r)
	require.NoError(t, err)

	// world, continents and countries, 13 aggregates in 2022 and 7 in 2023
	assert.Equal(t, (1+7+3)*(13+7), lines)
	assert.Equal(t, lines, store.Len())
	assert.Equal(t, 6, store.LastMonth(2023))
	assert.Len(t, store.Regions(gridimpact.CountryClass), 3)

	for _, country := range store.Regions(gridimpact.CountryClass) {
		_, found := store.Continent(country)
		assert.True(t, found, country)
	}

	store.ForEach(func(region gridimpact.Region, period gridimpact.Period, a *gridimpact.Aggregate) {
		assert.InDelta(t, 1, a.Mix.Sum(), 1e-9, "%s %s", region, period)
		assert.Positive(t, a.Generated.Float64())
		assert.False(t, a.IsDead())
	})
}

func TestIngestDeterminism(t *testing.T) {
	r := gridimpact.Range{MinYear: 2022, MaxYear: 2022}

	first, second := gridimpact.NewStore(), gridimpact.NewStore()
	_, err := New().Ingest(t.Context(), first, r)
	require.NoError(t, err)
	_, err = New().Ingest(t.Context(), second, r)
	require.NoError(t, err)

	first.ForEach(func(region gridimpact.Region, period gridimpact.Period, a *gridimpact.Aggregate) {
		b, found := second.Get(region, period)
		require.True(t, found)
		assert.Equal(t, *a, *b)
	})

	other := gridimpact.NewStore()
	_, err = New(WithSeed(1)).Ingest(t.Context(), other, r)
	require.NoError(t, err)
	a, _ := first.Get(gridimpact.World, "2022")
	b, _ := other.Get(gridimpact.World, "2022")
	assert.NotEqual(t, a.Mix, b.Mix)
}
