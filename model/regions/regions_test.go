package regions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gridimpact "github.com/superdango/grid-impact"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := Default()

	france, err := catalog.CountryByAlpha3("FRA")
	require.NoError(t, err)
	assert.Equal(t, gridimpact.Region("FR"), france.Region())
	assert.Equal(t, gridimpact.Region("Europe"), france.Continent)

	kosovo, err := catalog.CountryByAlpha3("XKX")
	require.NoError(t, err)
	assert.Equal(t, "XK", kosovo.Alpha2)

	_, err = catalog.CountryByAlpha3("ZZZ")
	assert.ErrorIs(t, err, gridimpact.ErrUnknownRegion)

	us, found := catalog.Country("US")
	assert.True(t, found)
	assert.Equal(t, "USA", us.Alpha3)

	for _, country := range catalog.Countries() {
		assert.Equal(t, gridimpact.CountryClass, country.Region().Class(), country.Name)
	}

	assert.Len(t, catalog.Subdivisions("US"), 52)
	assert.Len(t, catalog.Subdivisions("CA"), 13)
	assert.Empty(t, catalog.Subdivisions("FR"))
	for _, subdivision := range catalog.Subdivisions("US") {
		assert.Equal(t, gridimpact.SubdivisionClass, subdivision.Region().Class(), subdivision.Name)
	}
}

func TestSubdivision(t *testing.T) {
	catalog := Default()

	texas, err := catalog.Subdivision("US-TX")
	require.NoError(t, err)
	assert.Equal(t, "Texas", texas.Name)

	_, err = catalog.Subdivision("US-XX")
	assert.ErrorIs(t, err, gridimpact.ErrUnknownRegion)

	_, err = catalog.Subdivision("US")
	assert.ErrorIs(t, err, gridimpact.ErrUnknownRegion)
}

func TestSubdivisionByName(t *testing.T) {
	catalog := Default()

	tests := []struct {
		name string
		want gridimpact.Region
	}{
		{name: "Ontario", want: "CA-ON"},
		{name: "british columbia", want: "CA-BC"},
		{name: "Quebec", want: "CA-QC"},
		{name: "Newfoundland", want: "CA-NL"},
		{name: "Northwest Territories", want: "CA-NT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region, err := catalog.SubdivisionByName("CA", tt.name)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, region)
		})
	}

	_, err := catalog.SubdivisionByName("CA", "Canada")
	assert.ErrorIs(t, err, gridimpact.ErrUnknownRegion)

	_, err = catalog.SubdivisionByName("FR", "Ontario")
	assert.ErrorIs(t, err, gridimpact.ErrUnknownRegion)
}
